package routes

import (
	"context"
	"errors"
	"sort"
	"testing"

	"flight_routes/internal/storage"
)

func plausibleRecord(callsign string, plausible int) RouteRecord {
	return RouteRecord{
		AirportCodesIATA: "AAA-BBB",
		AirportCodes:     "AAAA-BBBB",
		Callsign:         callsign,
		Plausible:        plausible,
	}
}

func TestAllCallsigns(t *testing.T) {
	ms := newMockStore()
	ms.put("AFR136", plausibleRecord("AFR136", 1))
	ms.put("DLH430", plausibleRecord("DLH430", 0))
	// Unrelated keys in the same store must not leak into the listing.
	ms.data["other:AFR136"] = "x"

	callsigns, err := NewResolver(ms).AllCallsigns(context.Background())
	if err != nil {
		t.Fatalf("AllCallsigns failed: %v", err)
	}

	sort.Strings(callsigns)
	want := []string{"AFR136", "DLH430"}
	if len(callsigns) != len(want) {
		t.Fatalf("got %d callsigns %v, want %v", len(callsigns), callsigns, want)
	}
	for i := range want {
		if callsigns[i] != want[i] {
			t.Errorf("callsigns[%d] = %q, want %q", i, callsigns[i], want[i])
		}
	}
}

func TestAllCallsignsEmptyStore(t *testing.T) {
	callsigns, err := NewResolver(newMockStore()).AllCallsigns(context.Background())
	if err != nil {
		t.Fatalf("AllCallsigns failed: %v", err)
	}
	if callsigns == nil || len(callsigns) != 0 {
		t.Errorf("got %v, want empty non-nil slice", callsigns)
	}
}

func TestPlausibilityPartition(t *testing.T) {
	ms := newMockStore()
	plausible := []string{"AFR136", "DLH430", "BAW1"}
	unplausible := []string{"KLM000", "RYR9XYZ8"}
	for _, cs := range plausible {
		ms.put(cs, plausibleRecord(cs, 1))
	}
	for _, cs := range unplausible {
		ms.put(cs, plausibleRecord(cs, 0))
	}
	// A key that vanishes between SCAN and MGET is skipped, not an error.
	ms.ghosts[storage.RouteKey("EZY5GH")] = true

	r := NewResolver(ms)

	gotPlausible, err := r.CallsignsByPlausibility(context.Background(), 1)
	if err != nil {
		t.Fatalf("CallsignsByPlausibility(1) failed: %v", err)
	}
	gotUnplausible, err := r.CallsignsByPlausibility(context.Background(), 0)
	if err != nil {
		t.Fatalf("CallsignsByPlausibility(0) failed: %v", err)
	}

	if len(gotPlausible) != len(plausible) {
		t.Errorf("plausible: got %v, want %d entries", gotPlausible, len(plausible))
	}
	if len(gotUnplausible) != len(unplausible) {
		t.Errorf("unplausible: got %v, want %d entries", gotUnplausible, len(unplausible))
	}

	// The two lists must partition the surviving records: no overlap.
	seen := make(map[string]bool)
	for _, cs := range gotPlausible {
		seen[cs] = true
	}
	for _, cs := range gotUnplausible {
		if seen[cs] {
			t.Errorf("callsign %q in both plausibility lists", cs)
		}
	}
}

func TestCallsignsByPlausibilityMalformedValue(t *testing.T) {
	ms := newMockStore()
	ms.put("AFR136", plausibleRecord("AFR136", 1))
	ms.putRaw("DLH430", "###")

	_, err := NewResolver(ms).CallsignsByPlausibility(context.Background(), 1)
	if !errors.Is(err, ErrMalformedRecord) {
		t.Errorf("error = %v, want ErrMalformedRecord", err)
	}
}

func TestCallsignsByPlausibilityStoreFault(t *testing.T) {
	ms := newMockStore()
	ms.failErr = storage.ErrUnavailable

	_, err := NewResolver(ms).CallsignsByPlausibility(context.Background(), 1)
	if !errors.Is(err, storage.ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}
