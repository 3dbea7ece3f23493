package session

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rafiq-app/rafiq/internal/bus"
)

// State represents where this device is in the onboarding/grouping lifecycle.
type State string

const (
	// Unregistered: no display name saved yet.
	Unregistered State = "UNREGISTERED"
	// Named: display name saved, not in a group.
	Named State = "NAMED"
	// Grouped: member (or leader) of a group.
	Grouped State = "GROUPED"
)

// validTransitions defines allowed state transitions.
var validTransitions = map[State][]State{
	Unregistered: {Named},
	Named:        {Grouped, Unregistered},
	Grouped:      {Named, Unregistered},
}

// Machine tracks and enforces session state transitions.
type Machine struct {
	mu      sync.RWMutex
	current State
	bus     *bus.Bus
}

// NewMachine creates a new state machine starting in Unregistered.
func NewMachine(b *bus.Bus) *Machine {
	return &Machine{
		current: Unregistered,
		bus:     b,
	}
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Transition attempts to move to a new state. Returns error if transition is invalid.
func (m *Machine) Transition(to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	allowed := validTransitions[m.current]
	if !slices.Contains(allowed, to) {
		return fmt.Errorf("invalid transition from %s to %s", m.current, to)
	}
	from := m.current
	m.current = to
	if m.bus != nil {
		m.bus.Publish(bus.Event{
			Kind:      bus.KindSessionChanged,
			Timestamp: time.Now(),
			Payload: StateChange{
				From: from,
				To:   to,
			},
		})
	}
	return nil
}

// StateChange is the payload for session state change events.
type StateChange struct {
	From State
	To   State
}
