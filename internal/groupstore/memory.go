package groupstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process Store used by tests and by the daemon when no
// remote database URL is configured. Listeners observe mutations
// synchronously in submission order, which is the strongest behavior the
// Store contract permits (real deployments are weaker).
type Memory struct {
	mu        sync.Mutex
	root      any
	listeners map[int]*memListener
	nextID    int
	seq       int64
}

type memListener struct {
	segs []string
	fn   func(json.RawMessage)
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{listeners: make(map[int]*memListener)}
}

// ReadOnce implements Store.
func (m *Memory) ReadOnce(_ context.Context, path string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return encode(getAt(m.root, splitPath(path))), nil
}

// Write implements Store.
func (m *Memory) Write(_ context.Context, path string, v any) error {
	val, err := toJSONValue(v)
	if err != nil {
		return fmt.Errorf("encode value: %w", err)
	}
	m.mutate(splitPath(path), func(root any, segs []string) any {
		return setAt(root, segs, val)
	})
	return nil
}

// Update implements Store.
func (m *Memory) Update(_ context.Context, path string, fields map[string]any) error {
	val, err := toJSONValue(fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}
	fm, _ := val.(map[string]any)
	m.mutate(splitPath(path), func(root any, segs []string) any {
		return mergeAt(root, segs, fm)
	})
	return nil
}

// Push implements Store. Keys embed a monotonic sequence so iteration order
// matches append order, like the real store's push identifiers.
func (m *Memory) Push(_ context.Context, path string, v any) (string, error) {
	val, err := toJSONValue(v)
	if err != nil {
		return "", fmt.Errorf("encode value: %w", err)
	}
	m.mu.Lock()
	m.seq++
	key := fmt.Sprintf("-%010d%s", m.seq, uuid.NewString()[:8])
	m.mu.Unlock()

	m.mutate(append(splitPath(path), key), func(root any, segs []string) any {
		return setAt(root, segs, val)
	})
	return key, nil
}

// Remove implements Store.
func (m *Memory) Remove(_ context.Context, path string) error {
	m.mutate(splitPath(path), func(root any, segs []string) any {
		return setAt(root, segs, nil)
	})
	return nil
}

// Subscribe implements Store. The current snapshot is delivered before
// Subscribe returns.
func (m *Memory) Subscribe(path string, fn func(json.RawMessage)) (Subscription, error) {
	segs := splitPath(path)

	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = &memListener{segs: segs, fn: fn}
	initial := encode(getAt(m.root, segs))
	m.mu.Unlock()

	fn(initial)

	return &memSubscription{store: m, id: id}, nil
}

// mutate applies the mutation under the lock, then notifies affected
// listeners outside it so callbacks can issue store calls of their own.
func (m *Memory) mutate(segs []string, apply func(root any, segs []string) any) {
	type delivery struct {
		fn   func(json.RawMessage)
		snap json.RawMessage
	}

	m.mu.Lock()
	m.root = apply(m.root, segs)
	var deliveries []delivery
	for _, l := range m.listeners {
		if touches(segs, l.segs) {
			deliveries = append(deliveries, delivery{l.fn, encode(getAt(m.root, l.segs))})
		}
	}
	m.mu.Unlock()

	for _, d := range deliveries {
		d.fn(d.snap)
	}
}

type memSubscription struct {
	store *Memory
	id    int
	once  sync.Once
}

func (s *memSubscription) Close() {
	s.once.Do(func() {
		s.store.mu.Lock()
		delete(s.store.listeners, s.id)
		s.store.mu.Unlock()
	})
}
