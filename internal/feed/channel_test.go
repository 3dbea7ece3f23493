package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rafiq-app/rafiq/internal/bus"
	"github.com/rafiq-app/rafiq/internal/geo"
	"github.com/rafiq-app/rafiq/internal/group"
	"github.com/rafiq-app/rafiq/internal/groupstore"
	"github.com/rafiq-app/rafiq/internal/location"
	"go.uber.org/zap"
)

type fakeSession struct {
	name   string
	code   string
	leader bool
	id     string
}

func (s *fakeSession) UserName() string  { return s.name }
func (s *fakeSession) GroupCode() string { return s.code }
func (s *fakeSession) IsLeader() bool    { return s.leader }
func (s *fakeSession) MemberID() string  { return s.id }

type recordingNotifier struct {
	titles []string
}

func (n *recordingNotifier) Notify(title, _ string, _ map[string]string) {
	n.titles = append(n.titles, title)
}

type channelFixture struct {
	store    *groupstore.Memory
	sess     *fakeSession
	notifier *recordingNotifier
	channel  *Channel
}

func newFixture(t *testing.T, sess *fakeSession, loc location.Provider) *channelFixture {
	t.Helper()
	if loc == nil {
		loc = location.NewStatic(geo.Coordinate{Latitude: 21.4225, Longitude: 39.8262})
	}
	store := groupstore.NewMemory()
	notifier := &recordingNotifier{}
	filter := NewSuppressFilter(10 * time.Second)
	ch := NewChannel(store, sess, bus.New(), notifier, filter, loc, zap.NewNop())
	return &channelFixture{store: store, sess: sess, notifier: notifier, channel: ch}
}

func leaderFixture(t *testing.T) *channelFixture {
	return newFixture(t, &fakeSession{name: "Fatima", code: "123456", leader: true, id: "m-f"}, nil)
}

func (f *channelFixture) attach(t *testing.T) {
	t.Helper()
	if err := f.channel.Attach(f.sess.code); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(f.channel.Detach)
}

func (f *channelFixture) readAnnouncement(t *testing.T, id string) (group.Announcement, bool) {
	t.Helper()
	snap, err := f.store.ReadOnce(context.Background(), groupstore.AnnouncementPath(f.sess.code, id))
	if err != nil {
		t.Fatal(err)
	}
	var ann group.Announcement
	ok, err := groupstore.Decode(snap, &ann)
	if err != nil {
		t.Fatal(err)
	}
	return ann, ok
}

func TestCreateAnnouncementLeaderOnly(t *testing.T) {
	f := newFixture(t, &fakeSession{name: "Ahmed", code: "123456", id: "m-a"}, nil)
	err := f.channel.CreateAnnouncement(context.Background(), "meet at gate 79", false)
	if !errors.Is(err, group.ErrPermissionDenied) {
		t.Errorf("err = %v, want ErrPermissionDenied", err)
	}

	snap, _ := f.store.ReadOnce(context.Background(), groupstore.AnnouncementsPath("123456"))
	if snap != nil {
		t.Errorf("denied create still wrote: %s", snap)
	}
}

func TestCreateAnnouncementUngrouped(t *testing.T) {
	f := newFixture(t, &fakeSession{name: "Fatima", leader: true, id: "m-f"}, nil)
	err := f.channel.CreateAnnouncement(context.Background(), "hello", false)
	if !errors.Is(err, group.ErrPermissionDenied) {
		t.Errorf("err = %v, want ErrPermissionDenied", err)
	}
}

func TestCreateAnnouncementEmptyMessage(t *testing.T) {
	f := leaderFixture(t)
	for _, msg := range []string{"", "   "} {
		err := f.channel.CreateAnnouncement(context.Background(), msg, false)
		if !errors.Is(err, group.ErrValidation) {
			t.Errorf("CreateAnnouncement(%q) err = %v, want ErrValidation", msg, err)
		}
	}
}

func TestAnnouncementDisplayOrder(t *testing.T) {
	ctx := context.Background()
	f := leaderFixture(t)
	f.attach(t)

	// Raw writes with explicit timestamps: one pinned old, two unpinned.
	write := func(id, msg string, ts int64, pinned bool) {
		ann := group.Announcement{LeaderName: "Fatima", Message: msg, Timestamp: ts, IsPinned: pinned}
		if err := f.store.Write(ctx, groupstore.AnnouncementPath("123456", id), ann); err != nil {
			t.Fatal(err)
		}
	}
	write("a", "old pinned", 100, true)
	write("b", "newest", 300, false)
	write("c", "older", 200, false)

	anns := f.channel.Announcements()
	if len(anns) != 3 {
		t.Fatalf("announcements = %d, want 3", len(anns))
	}
	got := []string{anns[0].Message, anns[1].Message, anns[2].Message}
	want := []string{"old pinned", "newest", "older"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
	if anns[0].ID != "a" {
		t.Errorf("ID not taken from storage key: %q", anns[0].ID)
	}
}

func TestEditPreservesReactionsAndTimestamp(t *testing.T) {
	ctx := context.Background()
	f := leaderFixture(t)

	seed := group.Announcement{
		LeaderName: "Fatima",
		Message:    "original",
		Timestamp:  12345,
		Reactions:  map[string]group.Emoji{"m-a": {Name: "Ahmed", Emoji: "👍"}},
	}
	if err := f.store.Write(ctx, groupstore.AnnouncementPath("123456", "a1"), seed); err != nil {
		t.Fatal(err)
	}

	if err := f.channel.EditAnnouncement(ctx, "a1", "corrected", true); err != nil {
		t.Fatal(err)
	}

	ann, ok := f.readAnnouncement(t, "a1")
	if !ok {
		t.Fatal("announcement gone after edit")
	}
	if ann.Message != "corrected" || !ann.IsPinned {
		t.Errorf("edit not applied: %+v", ann)
	}
	if ann.Timestamp != 12345 {
		t.Errorf("edit changed original timestamp to %d", ann.Timestamp)
	}
	if ann.EditedAt == 0 {
		t.Error("editedAt not stamped")
	}
	if len(ann.Reactions) != 1 || ann.Reactions["m-a"].Emoji != "👍" {
		t.Errorf("edit dropped reactions: %+v", ann.Reactions)
	}
}

func TestDeleteAnnouncement(t *testing.T) {
	ctx := context.Background()
	f := leaderFixture(t)
	f.attach(t)

	if err := f.channel.CreateAnnouncement(ctx, "to be removed", false); err != nil {
		t.Fatal(err)
	}
	anns := f.channel.Announcements()
	if len(anns) != 1 {
		t.Fatalf("announcements = %d, want 1", len(anns))
	}

	if err := f.channel.DeleteAnnouncement(ctx, anns[0].ID); err != nil {
		t.Fatal(err)
	}
	if anns := f.channel.Announcements(); len(anns) != 0 {
		t.Errorf("announcement survived delete: %+v", anns)
	}
}

func TestTogglePinUnknownID(t *testing.T) {
	f := leaderFixture(t)
	f.attach(t)
	err := f.channel.TogglePin(context.Background(), "missing")
	if !errors.Is(err, group.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestTogglePinFlips(t *testing.T) {
	ctx := context.Background()
	f := leaderFixture(t)
	f.attach(t)

	if err := f.channel.CreateAnnouncement(ctx, "pin me", false); err != nil {
		t.Fatal(err)
	}
	id := f.channel.Announcements()[0].ID

	if err := f.channel.TogglePin(ctx, id); err != nil {
		t.Fatal(err)
	}
	if ann, _ := f.readAnnouncement(t, id); !ann.IsPinned {
		t.Error("pin not set")
	}
	if err := f.channel.TogglePin(ctx, id); err != nil {
		t.Fatal(err)
	}
	if ann, _ := f.readAnnouncement(t, id); ann.IsPinned {
		t.Error("pin not cleared")
	}
}

func TestReactionLastEmojiWins(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, &fakeSession{name: "Ahmed", code: "123456", id: "m-a"}, nil)

	seed := group.Announcement{LeaderName: "Fatima", Message: "hello", Timestamp: 1}
	if err := f.store.Write(ctx, groupstore.AnnouncementPath("123456", "a1"), seed); err != nil {
		t.Fatal(err)
	}

	if err := f.channel.AddReaction(ctx, "a1", "👍"); err != nil {
		t.Fatal(err)
	}
	if err := f.channel.AddReaction(ctx, "a1", "❤️"); err != nil {
		t.Fatal(err)
	}

	ann, _ := f.readAnnouncement(t, "a1")
	if len(ann.Reactions) != 1 {
		t.Fatalf("reactions = %+v, want exactly one per member", ann.Reactions)
	}
	if ann.Reactions["m-a"].Emoji != "❤️" {
		t.Errorf("reaction = %q, want the second emoji", ann.Reactions["m-a"].Emoji)
	}
}

func TestRemoveReactionOnlyOwn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, &fakeSession{name: "Ahmed", code: "123456", id: "m-a"}, nil)

	seed := group.Announcement{
		LeaderName: "Fatima",
		Message:    "hello",
		Timestamp:  1,
		Reactions: map[string]group.Emoji{
			"m-a": {Name: "Ahmed", Emoji: "👍"},
			"m-f": {Name: "Fatima", Emoji: "❤️"},
		},
	}
	if err := f.store.Write(ctx, groupstore.AnnouncementPath("123456", "a1"), seed); err != nil {
		t.Fatal(err)
	}

	if err := f.channel.RemoveReaction(ctx, "a1"); err != nil {
		t.Fatal(err)
	}

	ann, _ := f.readAnnouncement(t, "a1")
	if _, ok := ann.Reactions["m-a"]; ok {
		t.Error("own reaction not removed")
	}
	if ann.Reactions["m-f"].Emoji != "❤️" {
		t.Errorf("other member's reaction touched: %+v", ann.Reactions)
	}
}

func TestPanicAlertCarriesPosition(t *testing.T) {
	ctx := context.Background()
	loc := location.NewStatic(geo.Coordinate{Latitude: 21.42251111, Longitude: 39.82619999})
	f := newFixture(t, &fakeSession{name: "Ahmed", code: "123456", id: "m-a"}, loc)

	if err := f.channel.SendPanicAlert(ctx); err != nil {
		t.Fatal(err)
	}

	snap, err := f.store.ReadOnce(ctx, groupstore.AlertsPath("123456"))
	if err != nil {
		t.Fatal(err)
	}
	var alerts map[string]group.Alert
	if ok, _ := groupstore.Decode(snap, &alerts); !ok || len(alerts) != 1 {
		t.Fatalf("alerts = %+v, want 1", alerts)
	}
	for _, a := range alerts {
		if a.Type != group.AlertPanic {
			t.Errorf("type = %s", a.Type)
		}
		if a.Message != "Ahmed needs help! Location: 21.4225, 39.8262" {
			t.Errorf("message = %q", a.Message)
		}
		if a.Latitude != 21.4225 || a.Longitude != 39.8262 {
			t.Errorf("coords = (%v, %v), want rounded to 4 decimals", a.Latitude, a.Longitude)
		}
		if a.FromID != "m-a" {
			t.Errorf("fromId = %q", a.FromID)
		}
	}
}

func TestPanicAlertWithoutPositionIsNoop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, &fakeSession{name: "Ahmed", code: "123456", id: "m-a"}, location.NewUnavailable())

	if err := f.channel.SendPanicAlert(ctx); err != nil {
		t.Fatal(err)
	}
	snap, err := f.store.ReadOnce(ctx, groupstore.AlertsPath("123456"))
	if err != nil {
		t.Fatal(err)
	}
	if snap != nil {
		t.Errorf("panic without position still wrote: %s", snap)
	}
}

func TestPanicAlertUngrouped(t *testing.T) {
	f := newFixture(t, &fakeSession{name: "Ahmed", id: "m-a"}, nil)
	err := f.channel.SendPanicAlert(context.Background())
	if !errors.Is(err, group.ErrPermissionDenied) {
		t.Errorf("err = %v, want ErrPermissionDenied", err)
	}
}

func TestAlertNotifiesOthersNotAuthor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, &fakeSession{name: "Ahmed", code: "123456", id: "m-a"}, nil)
	f.attach(t)

	// A fresh foreign alert surfaces a notification.
	foreign := group.Alert{
		Type:      group.AlertPanic,
		From:      "Fatima",
		FromID:    "m-f",
		Title:     "EMERGENCY ALERT",
		Message:   "Fatima needs help! Location: 21.4225, 39.8262",
		Timestamp: time.Now().UnixMilli(),
	}
	if _, err := f.store.Push(ctx, groupstore.AlertsPath("123456"), foreign); err != nil {
		t.Fatal(err)
	}
	if len(f.notifier.titles) != 1 || f.notifier.titles[0] != "EMERGENCY ALERT" {
		t.Fatalf("notifications = %v", f.notifier.titles)
	}

	// The author's own write echoes back without a second notification.
	if err := f.channel.SendPanicAlert(ctx); err != nil {
		t.Fatal(err)
	}
	if len(f.notifier.titles) != 1 {
		t.Errorf("own alert notified: %v", f.notifier.titles)
	}
}

func TestDetachClearsFeed(t *testing.T) {
	ctx := context.Background()
	f := leaderFixture(t)
	f.attach(t)

	if err := f.channel.CreateAnnouncement(ctx, "hello", false); err != nil {
		t.Fatal(err)
	}
	f.channel.Detach()
	if anns := f.channel.Announcements(); len(anns) != 0 {
		t.Errorf("feed after detach = %+v", anns)
	}
}
