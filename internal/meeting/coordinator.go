// Package meeting coordinates the single shared meeting point per group.
package meeting

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rafiq-app/rafiq/internal/bus"
	"github.com/rafiq-app/rafiq/internal/geo"
	"github.com/rafiq-app/rafiq/internal/group"
	"github.com/rafiq-app/rafiq/internal/groupstore"
	"go.uber.org/zap"
)

// Coordinator publishes and mirrors the group's singleton meeting point.
// Every Set overwrites the record wholesale; there is no history.
type Coordinator struct {
	store  groupstore.Store
	sess   group.Session
	bus    *bus.Bus
	logger *zap.Logger

	mu    sync.Mutex
	sub   groupstore.Subscription
	point *group.MeetingPoint
}

// NewCoordinator creates a meeting point coordinator.
func NewCoordinator(store groupstore.Store, sess group.Session, b *bus.Bus, logger *zap.Logger) *Coordinator {
	return &Coordinator{store: store, sess: sess, bus: b, logger: logger}
}

// Set overwrites the group's meeting point and announces the change to the
// group via a notification alert. A no-op when not grouped.
func (c *Coordinator) Set(ctx context.Context, coord geo.Coordinate) error {
	code := c.sess.GroupCode()
	if code == "" {
		return nil
	}

	point := group.MeetingPoint{
		Latitude:  coord.Latitude,
		Longitude: coord.Longitude,
		SetBy:     c.sess.UserName(),
		SetAt:     time.Now().UnixMilli(),
	}
	if err := c.store.Write(ctx, groupstore.MeetingPointPath(code), point); err != nil {
		return fmt.Errorf("%w: set meeting point: %v", group.ErrStorage, err)
	}

	alert := group.Alert{
		Type:      group.AlertNotification,
		From:      c.sess.UserName(),
		FromID:    c.sess.MemberID(),
		Title:     "Meeting point set",
		Message:   fmt.Sprintf("%s has set a meeting point", c.sess.UserName()),
		Latitude:  coord.Latitude,
		Longitude: coord.Longitude,
		Timestamp: time.Now().UnixMilli(),
	}
	if _, err := c.store.Push(ctx, groupstore.AlertsPath(code), alert); err != nil {
		// The meeting point itself took effect; the missed announcement is
		// recovered by the meeting point subscription on every device.
		c.logger.Warn("meeting point alert failed", zap.Error(err))
	}
	return nil
}

// Attach implements session.Attachment.
func (c *Coordinator) Attach(code string) error {
	sub, err := c.store.Subscribe(groupstore.MeetingPointPath(code), c.onSnapshot)
	if err != nil {
		return fmt.Errorf("subscribe meeting point: %w", err)
	}
	c.mu.Lock()
	c.sub = sub
	c.mu.Unlock()
	return nil
}

// Detach implements session.Attachment. Only the local mirror is cleared;
// the remote record persists for the remaining members.
func (c *Coordinator) Detach() {
	c.mu.Lock()
	sub := c.sub
	c.sub = nil
	c.point = nil
	c.mu.Unlock()

	if sub != nil {
		sub.Close()
	}
	c.publish(nil)
}

// Point returns the mirrored meeting point, nil when none is set.
func (c *Coordinator) Point() *group.MeetingPoint {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.point == nil {
		return nil
	}
	p := *c.point
	return &p
}

// onSnapshot mirrors the singleton; an absent remote record means "no
// meeting point set", not an error.
func (c *Coordinator) onSnapshot(snap json.RawMessage) {
	var point group.MeetingPoint
	ok, err := groupstore.Decode(snap, &point)
	if err != nil {
		c.logger.Warn("bad meeting point snapshot", zap.Error(err))
		return
	}

	c.mu.Lock()
	if ok {
		c.point = &point
	} else {
		c.point = nil
	}
	cur := c.point
	c.mu.Unlock()
	c.publish(cur)
}

func (c *Coordinator) publish(point *group.MeetingPoint) {
	c.bus.Publish(bus.Event{
		Kind:      bus.KindMeetingUpdated,
		Timestamp: time.Now(),
		Payload:   point,
	})
}
