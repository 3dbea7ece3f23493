// Package location defines the device location contract consumed by the
// core. Platform integrations (GPS, fused providers) implement Provider;
// the core never talks to sensors directly.
package location

import (
	"context"
	"time"

	"github.com/rafiq-app/rafiq/internal/geo"
)

// Fix is one position sample.
type Fix struct {
	Coordinate geo.Coordinate
	Time       time.Time
}

// WatchOptions bound the watch cadence: a new fix is delivered after
// Interval has elapsed or the device has moved Displacement meters,
// whichever the platform triggers first.
type WatchOptions struct {
	Interval     time.Duration
	Displacement float64
}

// Provider is the device-facing location collaborator.
type Provider interface {
	// Current returns a one-shot position fix.
	Current(ctx context.Context) (Fix, error)

	// Watch streams fixes until ctx is cancelled. The channel is closed on
	// cancellation.
	Watch(ctx context.Context, opts WatchOptions) (<-chan Fix, error)
}
