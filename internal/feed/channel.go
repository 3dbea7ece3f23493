// Package feed carries the group's announcement feed and its append-only
// alert stream. Announcements are leader-authored and mutable; alerts fan
// out once and are never edited.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rafiq-app/rafiq/internal/bus"
	"github.com/rafiq-app/rafiq/internal/geo"
	"github.com/rafiq-app/rafiq/internal/group"
	"github.com/rafiq-app/rafiq/internal/groupstore"
	"github.com/rafiq-app/rafiq/internal/location"
	"github.com/rafiq-app/rafiq/internal/notify"
	"go.uber.org/zap"
)

// Channel is the announcement and alert channel for the active group.
// Leader-only operations are re-checked here; the UI layer is not trusted
// to enforce authorization.
type Channel struct {
	store    groupstore.Store
	sess     group.Session
	bus      *bus.Bus
	notifier notify.Notifier
	filter   *SuppressFilter
	loc      location.Provider
	logger   *zap.Logger

	mu            sync.Mutex
	subFeed       groupstore.Subscription
	subAlerts     groupstore.Subscription
	code          string
	announcements []group.Announcement
}

// NewChannel creates the announcement and alert channel.
func NewChannel(store groupstore.Store, sess group.Session, b *bus.Bus, notifier notify.Notifier, filter *SuppressFilter, loc location.Provider, logger *zap.Logger) *Channel {
	return &Channel{
		store:    store,
		sess:     sess,
		bus:      b,
		notifier: notifier,
		filter:   filter,
		loc:      loc,
		logger:   logger,
	}
}

// CreateAnnouncement appends a new announcement. Leader only.
func (c *Channel) CreateAnnouncement(ctx context.Context, message string, pinned bool) error {
	if err := c.requireLeader(); err != nil {
		return err
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return fmt.Errorf("%w: announcement message is empty", group.ErrValidation)
	}

	ann := group.Announcement{
		LeaderName: c.sess.UserName(),
		Message:    message,
		IsPinned:   pinned,
		Timestamp:  time.Now().UnixMilli(),
		Reactions:  map[string]group.Emoji{},
	}
	if _, err := c.store.Push(ctx, groupstore.AnnouncementsPath(c.sess.GroupCode()), ann); err != nil {
		return fmt.Errorf("%w: create announcement: %v", group.ErrStorage, err)
	}
	return nil
}

// EditAnnouncement updates message and pin state of an existing
// announcement, stamping editedAt. Reactions and the original timestamp are
// untouched. Leader only.
func (c *Channel) EditAnnouncement(ctx context.Context, id, message string, pinned bool) error {
	if err := c.requireLeader(); err != nil {
		return err
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return fmt.Errorf("%w: announcement message is empty", group.ErrValidation)
	}

	fields := map[string]any{
		"message":  message,
		"isPinned": pinned,
		"editedAt": time.Now().UnixMilli(),
	}
	if err := c.store.Update(ctx, groupstore.AnnouncementPath(c.sess.GroupCode(), id), fields); err != nil {
		return fmt.Errorf("%w: edit announcement: %v", group.ErrStorage, err)
	}
	return nil
}

// DeleteAnnouncement removes an announcement wholesale, reactions included.
// Leader only.
func (c *Channel) DeleteAnnouncement(ctx context.Context, id string) error {
	if err := c.requireLeader(); err != nil {
		return err
	}
	if err := c.store.Remove(ctx, groupstore.AnnouncementPath(c.sess.GroupCode(), id)); err != nil {
		return fmt.Errorf("%w: delete announcement: %v", group.ErrStorage, err)
	}
	return nil
}

// TogglePin flips the pinned flag based on the last-known local copy.
// Read-modify-write against the mirror; safe under the one-leader-per-group
// invariant. Leader only.
func (c *Channel) TogglePin(ctx context.Context, id string) error {
	if err := c.requireLeader(); err != nil {
		return err
	}

	c.mu.Lock()
	var current *group.Announcement
	for i := range c.announcements {
		if c.announcements[i].ID == id {
			current = &c.announcements[i]
			break
		}
	}
	if current == nil {
		c.mu.Unlock()
		return fmt.Errorf("%w: unknown announcement %q", group.ErrValidation, id)
	}
	next := !current.IsPinned
	c.mu.Unlock()

	fields := map[string]any{"isPinned": next}
	if err := c.store.Update(ctx, groupstore.AnnouncementPath(c.sess.GroupCode(), id), fields); err != nil {
		return fmt.Errorf("%w: toggle pin: %v", group.ErrStorage, err)
	}
	return nil
}

// AddReaction sets the caller's single reaction on an announcement,
// overwriting any previous emoji from this member. Any grouped member.
func (c *Channel) AddReaction(ctx context.Context, id, emoji string) error {
	code, err := c.requireGrouped()
	if err != nil {
		return err
	}
	r := group.Emoji{Name: c.sess.UserName(), Emoji: emoji}
	if err := c.store.Write(ctx, groupstore.ReactionPath(code, id, c.sess.MemberID()), r); err != nil {
		return fmt.Errorf("%w: add reaction: %v", group.ErrStorage, err)
	}
	return nil
}

// RemoveReaction removes exactly the caller's reaction key, never another
// member's.
func (c *Channel) RemoveReaction(ctx context.Context, id string) error {
	code, err := c.requireGrouped()
	if err != nil {
		return err
	}
	if err := c.store.Remove(ctx, groupstore.ReactionPath(code, id, c.sess.MemberID())); err != nil {
		return fmt.Errorf("%w: remove reaction: %v", group.ErrStorage, err)
	}
	return nil
}

// SendPanicAlert appends a panic alert carrying the caller's position.
// Silently a no-op when the position is unknown; the emergency screen still
// offers the phone numbers.
func (c *Channel) SendPanicAlert(ctx context.Context) error {
	code, err := c.requireGrouped()
	if err != nil {
		return err
	}
	fix, err := c.loc.Current(ctx)
	if err != nil {
		c.logger.Warn("panic alert dropped, no position", zap.Error(err))
		return nil
	}

	lat := geo.Round4(fix.Coordinate.Latitude)
	lng := geo.Round4(fix.Coordinate.Longitude)
	alert := group.Alert{
		Type:      group.AlertPanic,
		From:      c.sess.UserName(),
		FromID:    c.sess.MemberID(),
		Title:     "EMERGENCY ALERT",
		Message:   fmt.Sprintf("%s needs help! Location: %.4f, %.4f", c.sess.UserName(), lat, lng),
		Latitude:  lat,
		Longitude: lng,
		Timestamp: time.Now().UnixMilli(),
	}
	if _, err := c.store.Push(ctx, groupstore.AlertsPath(code), alert); err != nil {
		return fmt.Errorf("%w: send panic alert: %v", group.ErrStorage, err)
	}
	return nil
}

// Announcements returns the mirrored feed in display order: pinned first,
// then newest first.
func (c *Channel) Announcements() []group.Announcement {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]group.Announcement, len(c.announcements))
	copy(out, c.announcements)
	return out
}

// Attach implements session.Attachment.
func (c *Channel) Attach(code string) error {
	c.mu.Lock()
	c.code = code
	c.mu.Unlock()

	subFeed, err := c.store.Subscribe(groupstore.AnnouncementsPath(code), c.onAnnouncements)
	if err != nil {
		return fmt.Errorf("subscribe announcements: %w", err)
	}
	subAlerts, err := c.store.Subscribe(groupstore.AlertsPath(code), c.onAlerts)
	if err != nil {
		subFeed.Close()
		return fmt.Errorf("subscribe alerts: %w", err)
	}

	c.mu.Lock()
	c.subFeed = subFeed
	c.subAlerts = subAlerts
	c.mu.Unlock()
	return nil
}

// Detach implements session.Attachment.
func (c *Channel) Detach() {
	c.mu.Lock()
	subFeed, subAlerts := c.subFeed, c.subAlerts
	c.subFeed, c.subAlerts = nil, nil
	c.code = ""
	c.announcements = nil
	c.mu.Unlock()

	if subFeed != nil {
		subFeed.Close()
	}
	if subAlerts != nil {
		subAlerts.Close()
	}
	c.filter.Reset()
	c.publishFeed(nil)
}

func (c *Channel) onAnnouncements(snap json.RawMessage) {
	var records map[string]group.Announcement
	ok, err := groupstore.Decode(snap, &records)
	if err != nil {
		c.logger.Warn("bad announcements snapshot", zap.Error(err))
		return
	}

	var anns []group.Announcement
	if ok {
		anns = make([]group.Announcement, 0, len(records))
		for id, a := range records {
			a.ID = id
			anns = append(anns, a)
		}
		sortAnnouncements(anns)
	}

	c.mu.Lock()
	c.announcements = anns
	c.mu.Unlock()
	c.publishFeed(anns)
}

// onAlerts inspects only the most recently appended alert; older entries
// are history and were either already judged or predate this subscription.
func (c *Channel) onAlerts(snap json.RawMessage) {
	var records map[string]group.Alert
	ok, err := groupstore.Decode(snap, &records)
	if err != nil {
		c.logger.Warn("bad alerts snapshot", zap.Error(err))
		return
	}
	if !ok || len(records) == 0 {
		return
	}

	var latestKey string
	var latest group.Alert
	for id, a := range records {
		if latestKey == "" || a.Timestamp > latest.Timestamp ||
			(a.Timestamp == latest.Timestamp && id > latestKey) {
			latestKey, latest = id, a
		}
	}
	latest.ID = latestKey

	if !c.filter.ShouldNotify(latestKey, latest, c.sess.MemberID(), c.sess.UserName(), time.Now()) {
		return
	}

	payload := map[string]string{"type": latest.Type, "from": latest.From}
	if latest.Type == group.AlertPanic {
		payload["latitude"] = fmt.Sprintf("%.4f", latest.Latitude)
		payload["longitude"] = fmt.Sprintf("%.4f", latest.Longitude)
	}
	c.notifier.Notify(latest.Title, latest.Message, payload)

	c.bus.Publish(bus.Event{
		Kind:      bus.KindAlertNotify,
		Timestamp: time.Now(),
		Payload:   latest,
	})
}

func (c *Channel) publishFeed(anns []group.Announcement) {
	c.bus.Publish(bus.Event{
		Kind:      bus.KindFeedUpdated,
		Timestamp: time.Now(),
		Payload:   anns,
	})
}

func (c *Channel) requireLeader() error {
	if c.sess.GroupCode() == "" || !c.sess.IsLeader() {
		return fmt.Errorf("%w: leader-only operation", group.ErrPermissionDenied)
	}
	return nil
}

func (c *Channel) requireGrouped() (string, error) {
	code := c.sess.GroupCode()
	if code == "" {
		return "", fmt.Errorf("%w: not in a group", group.ErrPermissionDenied)
	}
	return code, nil
}

// sortAnnouncements orders by (isPinned desc, timestamp desc), stable
// otherwise.
func sortAnnouncements(anns []group.Announcement) {
	sort.SliceStable(anns, func(i, j int) bool {
		if anns[i].IsPinned != anns[j].IsPinned {
			return anns[i].IsPinned
		}
		return anns[i].Timestamp > anns[j].Timestamp
	})
}
