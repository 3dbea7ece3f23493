// Package groupstore talks to the shared, path-addressable, real-time
// replicated tree that all group members converge on. The store is treated
// as eventually consistent: subscribers receive whole-subtree snapshots, may
// see replays, and get no cross-device ordering guarantees.
package groupstore

import (
	"context"
	"encoding/json"
)

// Store is the remote group store contract. Values are JSON snapshots; a nil
// snapshot means the path is absent.
type Store interface {
	// ReadOnce fetches the current value at path. Absent paths return (nil, nil).
	ReadOnce(ctx context.Context, path string) (json.RawMessage, error)

	// Write replaces the value at path wholesale.
	Write(ctx context.Context, path string, v any) error

	// Update merge-patches the given fields into the value at path.
	Update(ctx context.Context, path string, fields map[string]any) error

	// Push appends v under path with a store-generated key and returns the key.
	Push(ctx context.Context, path string, v any) (string, error)

	// Remove deletes the subtree at path. Removing an absent path is a no-op.
	Remove(ctx context.Context, path string) error

	// Subscribe delivers the current snapshot at path, then a new snapshot on
	// every change under it, until the subscription is closed. Absent values
	// are delivered as nil.
	Subscribe(path string, fn func(json.RawMessage)) (Subscription, error)
}

// Subscription is a live listener handle. Close is idempotent.
type Subscription interface {
	Close()
}

// Decode unmarshals a snapshot into dst. Nil snapshots leave dst untouched
// and report absence.
func Decode(snap json.RawMessage, dst any) (bool, error) {
	if len(snap) == 0 || string(snap) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(snap, dst); err != nil {
		return false, err
	}
	return true, nil
}
