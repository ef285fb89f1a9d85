package routes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"flight_routes/internal/storage"
)

// ErrMalformedRecord indicates a stored value could not be parsed into a
// RouteRecord. This is a data-integrity fault from the route pipeline, not
// a client error, and is never converted into an "unknown" result.
var ErrMalformedRecord = errors.New("malformed route record in store")

// ErrTooManyPlanes indicates a batch exceeded the configured plane limit.
// The batch is rejected before any store access.
var ErrTooManyPlanes = errors.New("plane list exceeds the configured limit")

// Resolver looks up routes in the backing store.
type Resolver struct {
	store storage.RouteStore
}

// NewResolver creates a Resolver on top of a RouteStore.
func NewResolver(store storage.RouteStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the stored route for a callsign, or the default unknown
// record when no entry exists. Absence is a normal outcome, not an error.
func (r *Resolver) Resolve(ctx context.Context, callsign string) (RouteRecord, error) {
	val, ok, err := r.store.Get(ctx, storage.RouteKey(callsign))
	if err != nil {
		return RouteRecord{}, err
	}
	if !ok {
		return UnknownRoute(callsign), nil
	}

	var rec RouteRecord
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return RouteRecord{}, fmt.Errorf("%w: callsign %s: %v", ErrMalformedRecord, callsign, err)
	}
	return rec, nil
}

// ResolveBatch resolves the callsigns of the given planes concurrently.
//
// Planes with invalid callsigns are dropped silently, so the output can be
// shorter than the input. The output order follows the order of the valid
// input planes regardless of which lookup completes first. Duplicate
// callsigns are resolved independently, one output record per occurrence.
// Any store or data fault fails the whole batch: the response schema has
// no per-item error slot, so there is no partial success.
func (r *Resolver) ResolveBatch(ctx context.Context, planes []PlaneInstance, limit int) ([]RouteRecord, error) {
	if len(planes) > limit {
		return nil, ErrTooManyPlanes
	}

	var callsigns []string
	for _, p := range planes {
		if ValidCallsign(p.Callsign) {
			callsigns = append(callsigns, p.Callsign)
		}
	}

	results := make([]RouteRecord, len(callsigns))
	g, ctx := errgroup.WithContext(ctx)
	for i, callsign := range callsigns {
		g.Go(func() error {
			rec, err := r.Resolve(ctx, callsign)
			if err != nil {
				return err
			}
			results[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// SetRoute persists a record verbatim under its callsign, unconditionally
// overwriting any prior value. Last writer wins.
func (r *Resolver) SetRoute(ctx context.Context, rec RouteRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode route for %s: %w", rec.Callsign, err)
	}
	return r.store.Set(ctx, storage.RouteKey(rec.Callsign), string(data))
}
