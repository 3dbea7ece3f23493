package presence

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rafiq-app/rafiq/internal/bus"
	"github.com/rafiq-app/rafiq/internal/group"
	"github.com/rafiq-app/rafiq/internal/groupstore"
	"go.uber.org/zap"
)

// palette is the member marker palette. Colors are assigned by roster index
// modulo the palette, so a member's color can shift when others join or
// leave. Cosmetic and accepted.
var palette = []string{
	"#FF6B6B",
	"#4ECDC4",
	"#45B7D1",
	"#FFA07A",
	"#98D8C8",
	"#F7DC6F",
	"#BB8FCE",
	"#85C1E2",
}

// Subscriber mirrors the group's member collection into a local roster and
// publishes it on the bus after every remote change.
type Subscriber struct {
	store  groupstore.Store
	bus    *bus.Bus
	logger *zap.Logger

	mu     sync.Mutex
	sub    groupstore.Subscription
	roster []group.Member
}

// NewSubscriber creates a roster subscriber.
func NewSubscriber(store groupstore.Store, b *bus.Bus, logger *zap.Logger) *Subscriber {
	return &Subscriber{store: store, bus: b, logger: logger}
}

// Attach implements session.Attachment.
func (s *Subscriber) Attach(code string) error {
	sub, err := s.store.Subscribe(groupstore.MembersPath(code), s.onSnapshot)
	if err != nil {
		return fmt.Errorf("subscribe members: %w", err)
	}
	s.mu.Lock()
	s.sub = sub
	s.mu.Unlock()
	return nil
}

// Detach implements session.Attachment: the subscription is closed and the
// roster cleared, so stale members never linger after leaving a group.
func (s *Subscriber) Detach() {
	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	s.roster = nil
	s.mu.Unlock()

	if sub != nil {
		sub.Close()
	}
	s.publish(nil)
}

// Roster returns a copy of the current member roster.
func (s *Subscriber) Roster() []group.Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]group.Member, len(s.roster))
	copy(out, s.roster)
	return out
}

// onSnapshot rebuilds the full roster from a members-collection snapshot.
func (s *Subscriber) onSnapshot(snap json.RawMessage) {
	var records map[string]group.Member
	ok, err := groupstore.Decode(snap, &records)
	if err != nil {
		s.logger.Warn("bad members snapshot", zap.Error(err))
		return
	}

	var roster []group.Member
	if ok {
		roster = make([]group.Member, 0, len(records))
		for id, m := range records {
			m.ID = id
			roster = append(roster, m)
		}
		// Stable order: name then ID. Keeps a member's color steady across
		// its own location updates; joins and leaves may still reshuffle.
		sort.Slice(roster, func(i, j int) bool {
			if roster[i].Name != roster[j].Name {
				return roster[i].Name < roster[j].Name
			}
			return roster[i].ID < roster[j].ID
		})
		for i := range roster {
			roster[i].Color = palette[i%len(palette)]
		}
	}

	s.mu.Lock()
	s.roster = roster
	s.mu.Unlock()
	s.publish(roster)
}

func (s *Subscriber) publish(roster []group.Member) {
	s.bus.Publish(bus.Event{
		Kind:      bus.KindRosterUpdated,
		Timestamp: time.Now(),
		Payload:   roster,
	})
}
