package location

import (
	"context"
	"fmt"
	"time"

	"github.com/rafiq-app/rafiq/internal/geo"
	"github.com/rafiq-app/rafiq/internal/group"
)

// ErrUnavailable is returned when the device position is unknown, e.g. the
// location permission was denied or no fixed position is configured.
var ErrUnavailable = fmt.Errorf("%w: location", group.ErrPermissionUnavailable)

// Static serves a fixed coordinate. It stands in for a platform provider in
// the daemon (position configured in config.toml) and in tests. A zero
// Static reports ErrUnavailable, modelling a denied location permission.
type Static struct {
	coord geo.Coordinate
	ok    bool
}

// NewStatic creates a provider pinned to the given coordinate.
func NewStatic(coord geo.Coordinate) *Static {
	return &Static{coord: coord, ok: true}
}

// NewUnavailable creates a provider that never has a position.
func NewUnavailable() *Static {
	return &Static{}
}

// Current implements Provider.
func (s *Static) Current(_ context.Context) (Fix, error) {
	if !s.ok {
		return Fix{}, ErrUnavailable
	}
	return Fix{Coordinate: s.coord, Time: time.Now()}, nil
}

// Watch implements Provider. A fixed position never moves, so fixes arrive
// on the interval only.
func (s *Static) Watch(ctx context.Context, opts WatchOptions) (<-chan Fix, error) {
	if !s.ok {
		return nil, ErrUnavailable
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = 2 * time.Minute
	}

	ch := make(chan Fix, 1)
	go func() {
		defer close(ch)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				select {
				case ch <- Fix{Coordinate: s.coord, Time: now}:
				default:
				}
			}
		}
	}()
	return ch, nil
}
