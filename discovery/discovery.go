// Package discovery finds how many segments a resource has using as few probes as possible.
//
// The origin has no listing, so the boundary is located in two phases: an exponential
// search brackets the last present segment, then a binary search pins it down.
// Both phases work in 1-based ordinals; the resource maps them to segment ids.
package discovery

import (
	"context"
	"errors"
	"fmt"

	"github.com/segrab-cli/segrab/log"
	"github.com/segrab-cli/segrab/probe"
	"github.com/segrab-cli/segrab/source"
)

// ErrNotFound is returned when the first segment of a resource is absent.
var ErrNotFound = errors.New("first segment is absent")

// Prober classifies a single segment id.
type Prober interface {
	Probe(ctx context.Context, id int) (probe.Result, error)
}

// Observer receives the payload of every segment found present.
// Returning an error aborts the discovery.
type Observer func(id int, payload []byte) error

// Result is the discovered segment range.
type Result struct {
	StartID int `json:"start_id"`
	Count   int `json:"count"`
	// Probes is how many distinct segments were probed.
	Probes int `json:"probes"`
}

// LastID returns the id of the last present segment.
func (r Result) LastID() int {
	return r.StartID + r.Count - 1
}

// Option configures a discovery.
type Option func(*discoverer)

// WithObserver registers fn to be called for every present segment probed.
func WithObserver(fn Observer) Option {
	return func(d *discoverer) {
		d.observer = fn
	}
}

type discoverer struct {
	prober   Prober
	resource source.Resource
	observer Observer
	// seen memoizes probed ordinals so none is requested twice.
	seen map[int]bool
}

// Discover returns the number of segments published for res.
// A transient probe failure aborts the search instead of being read as absence.
func Discover(ctx context.Context, p Prober, res source.Resource, opts ...Option) (Result, error) {
	d := &discoverer{
		prober:   p,
		resource: res,
		seen:     make(map[int]bool),
	}
	for _, opt := range opts {
		opt(d)
	}

	first, err := d.present(ctx, 1)
	if err != nil {
		return Result{}, err
	}

	if !first {
		return Result{}, fmt.Errorf("%w: %s", ErrNotFound, res.URL(res.StartID))
	}

	// lower is always present; upper ends up absent.
	lower, upper := 1, 1
	for {
		ok, err := d.present(ctx, 2*upper)
		if err != nil {
			return Result{}, err
		}

		if !ok {
			break
		}

		upper *= 2
		lower = upper
	}
	upper *= 2

	for lower < upper {
		mid := lower + (upper-lower+1)/2

		ok, err := d.present(ctx, mid)
		if err != nil {
			return Result{}, err
		}

		if ok {
			lower = mid
		} else {
			upper = mid - 1
		}
	}

	result := Result{StartID: res.StartID, Count: lower, Probes: len(d.seen)}
	log.Infof("discovered %d segments of %s with %d probes", result.Count, res, result.Probes)
	return result, nil
}

func (d *discoverer) present(ctx context.Context, ordinal int) (bool, error) {
	if ok, cached := d.seen[ordinal]; cached {
		return ok, nil
	}

	id := d.resource.ID(ordinal)
	result, err := d.prober.Probe(ctx, id)
	if err != nil {
		return false, err
	}

	ok := result.Status == probe.Present
	d.seen[ordinal] = ok
	log.WithFields(log.Fields{"id": id, "status": result.Status}).Debug("probed")

	if ok && d.observer != nil {
		if err := d.observer(id, result.Payload); err != nil {
			return false, err
		}
	}

	return ok, nil
}
