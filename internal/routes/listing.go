package routes

import (
	"context"
	"encoding/json"
	"fmt"

	"flight_routes/internal/storage"
)

// AllCallsigns returns every callsign present in the store. Keys are
// streamed from the store; only the stripped callsigns are buffered.
func (r *Resolver) AllCallsigns(ctx context.Context) ([]string, error) {
	callsigns := []string{}
	err := r.store.ScanKeys(ctx, storage.RouteKeyPrefix+"*", func(key string) error {
		callsigns = append(callsigns, storage.CallsignFromKey(key))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return callsigns, nil
}

// CallsignsByPlausibility returns the callsigns whose stored record has the
// given plausible flag (1 or 0).
//
// All keys are collected first, then fetched with a single MGET. A key that
// existed during the scan but vanished before the MGET comes back nil and
// is skipped; deletion between the two steps is not an error.
func (r *Resolver) CallsignsByPlausibility(ctx context.Context, plausible int) ([]string, error) {
	var keys []string
	err := r.store.ScanKeys(ctx, storage.RouteKeyPrefix+"*", func(key string) error {
		keys = append(keys, key)
		return nil
	})
	if err != nil {
		return nil, err
	}

	vals, err := r.store.MGet(ctx, keys)
	if err != nil {
		return nil, err
	}

	callsigns := []string{}
	for i, val := range vals {
		if val == nil {
			continue
		}
		var rec RouteRecord
		if err := json.Unmarshal([]byte(*val), &rec); err != nil {
			return nil, fmt.Errorf("%w: key %s: %v", ErrMalformedRecord, keys[i], err)
		}
		if rec.Plausible == plausible {
			callsigns = append(callsigns, storage.CallsignFromKey(keys[i]))
		}
	}
	return callsigns, nil
}
