package session

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rafiq-app/rafiq/internal/bus"
	"github.com/rafiq-app/rafiq/internal/geo"
	"github.com/rafiq-app/rafiq/internal/group"
	"github.com/rafiq-app/rafiq/internal/groupstore"
	"github.com/rafiq-app/rafiq/internal/location"
	"github.com/rafiq-app/rafiq/internal/prefs"
	"go.uber.org/zap"
)

// countingStore wraps a store and counts remote calls, so tests can assert
// that validation happens before any network round trip.
type countingStore struct {
	groupstore.Store
	reads  int
	writes int
}

func (s *countingStore) ReadOnce(ctx context.Context, path string) (json.RawMessage, error) {
	s.reads++
	return s.Store.ReadOnce(ctx, path)
}

func (s *countingStore) Write(ctx context.Context, path string, v any) error {
	s.writes++
	return s.Store.Write(ctx, path, v)
}

// failingStore models an unreachable remote store.
type failingStore struct {
	groupstore.Store
}

func (failingStore) ReadOnce(context.Context, string) (json.RawMessage, error) {
	return nil, errors.New("connection refused")
}

func testPrefs(t *testing.T) *prefs.DB {
	t.Helper()
	db, err := prefs.Open(filepath.Join(t.TempDir(), "prefs.db"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testManager(t *testing.T, store groupstore.Store) *Manager {
	t.Helper()
	loc := location.NewStatic(geo.Coordinate{Latitude: 21.4225, Longitude: 39.8262})
	m := NewManager(testPrefs(t), store, NewMachine(bus.New()), loc, zap.NewNop())
	if err := m.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	return m
}

func named(t *testing.T, m *Manager, name string) {
	t.Helper()
	if err := m.SaveUserName(name); err != nil {
		t.Fatal(err)
	}
}

func TestCreateGroupRequiresName(t *testing.T) {
	m := testManager(t, groupstore.NewMemory())
	if _, err := m.CreateGroup(context.Background()); !errors.Is(err, group.ErrNoUserName) {
		t.Errorf("err = %v, want ErrNoUserName", err)
	}
}

func TestJoinGroupRequiresName(t *testing.T) {
	m := testManager(t, groupstore.NewMemory())
	if err := m.JoinGroup(context.Background(), "123456"); !errors.Is(err, group.ErrNoUserName) {
		t.Errorf("err = %v, want ErrNoUserName", err)
	}
}

func TestJoinGroupBadCodeShapeIsLocal(t *testing.T) {
	store := &countingStore{Store: groupstore.NewMemory()}
	m := testManager(t, store)
	named(t, m, "Ahmed")

	for _, code := range []string{"", "12345", "1234567", "12345a", "abc123"} {
		if err := m.JoinGroup(context.Background(), code); !errors.Is(err, group.ErrInvalidCode) {
			t.Errorf("JoinGroup(%q) err = %v, want ErrInvalidCode", code, err)
		}
	}
	if store.reads != 0 || store.writes != 0 {
		t.Errorf("shape rejection reached the store: %d reads, %d writes", store.reads, store.writes)
	}
}

func TestJoinGroupNotFound(t *testing.T) {
	store := &countingStore{Store: groupstore.NewMemory()}
	m := testManager(t, store)
	named(t, m, "Ahmed")

	if err := m.JoinGroup(context.Background(), "654321"); !errors.Is(err, group.ErrGroupNotFound) {
		t.Errorf("err = %v, want ErrGroupNotFound", err)
	}
	if store.writes != 0 {
		t.Errorf("failed join still wrote %d records", store.writes)
	}
	if m.GroupCode() != "" {
		t.Errorf("failed join left session grouped on %q", m.GroupCode())
	}
}

func TestCreateThenJoin(t *testing.T) {
	ctx := context.Background()
	store := groupstore.NewMemory()

	leader := testManager(t, store)
	named(t, leader, "Fatima")
	code, err := leader.CreateGroup(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(code) != 6 {
		t.Fatalf("code = %q, want 6 digits", code)
	}
	if !leader.IsLeader() || leader.GroupCode() != code {
		t.Errorf("leader session = (%q, %v)", leader.GroupCode(), leader.IsLeader())
	}

	member := testManager(t, store)
	named(t, member, "Ahmed")
	if err := member.JoinGroup(ctx, code); err != nil {
		t.Fatal(err)
	}
	if member.IsLeader() {
		t.Error("joiner must not be leader")
	}

	snap, err := store.ReadOnce(ctx, groupstore.MembersPath(code))
	if err != nil {
		t.Fatal(err)
	}
	var members map[string]group.Member
	if _, err := groupstore.Decode(snap, &members); err != nil {
		t.Fatal(err)
	}
	if len(members) != 2 {
		t.Fatalf("members = %d, want 2", len(members))
	}
	if _, ok := members[leader.MemberID()]; !ok {
		t.Error("leader record missing")
	}
	if _, ok := members[member.MemberID()]; !ok {
		t.Error("joiner record missing")
	}
}

func TestValidateGroupCode(t *testing.T) {
	ctx := context.Background()
	store := groupstore.NewMemory()
	m := testManager(t, store)
	named(t, m, "Fatima")
	code, err := m.CreateGroup(ctx)
	if err != nil {
		t.Fatal(err)
	}

	ok, err := m.ValidateGroupCode(ctx, code)
	if err != nil || !ok {
		t.Errorf("ValidateGroupCode(%q) = (%v, %v), want (true, nil)", code, ok, err)
	}
	ok, err = m.ValidateGroupCode(ctx, "000000")
	if err != nil || ok {
		t.Errorf("absent code = (%v, %v), want (false, nil)", ok, err)
	}
	ok, err = m.ValidateGroupCode(ctx, "12ab")
	if err != nil || ok {
		t.Errorf("malformed code = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestLeaveGroupRemovesMemberRecord(t *testing.T) {
	ctx := context.Background()
	store := groupstore.NewMemory()
	m := testManager(t, store)
	named(t, m, "Fatima")
	code, err := m.CreateGroup(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if err := m.LeaveGroup(ctx); err != nil {
		t.Fatal(err)
	}
	if m.GroupCode() != "" || m.IsLeader() {
		t.Errorf("after leave = (%q, %v)", m.GroupCode(), m.IsLeader())
	}
	snap, err := store.ReadOnce(ctx, groupstore.MemberPath(code, m.MemberID()))
	if err != nil {
		t.Fatal(err)
	}
	if snap != nil {
		t.Errorf("member record still present: %s", snap)
	}

	// Leaving again is a no-op.
	if err := m.LeaveGroup(ctx); err != nil {
		t.Errorf("second leave: %v", err)
	}
}

func TestLogoutForgetsName(t *testing.T) {
	ctx := context.Background()
	m := testManager(t, groupstore.NewMemory())
	named(t, m, "Fatima")
	if _, err := m.CreateGroup(ctx); err != nil {
		t.Fatal(err)
	}

	if err := m.Logout(ctx); err != nil {
		t.Fatal(err)
	}
	if m.UserName() != "" || m.GroupCode() != "" {
		t.Errorf("after logout = (%q, %q)", m.UserName(), m.GroupCode())
	}
	if m.machine.Current() != Unregistered {
		t.Errorf("state = %s, want %s", m.machine.Current(), Unregistered)
	}
}

func TestSaveUserNameRejectsEmpty(t *testing.T) {
	m := testManager(t, groupstore.NewMemory())
	for _, name := range []string{"", "   ", "\t"} {
		if err := m.SaveUserName(name); !errors.Is(err, group.ErrValidation) {
			t.Errorf("SaveUserName(%q) err = %v, want ErrValidation", name, err)
		}
	}
}

func TestLoadClearsStaleGroup(t *testing.T) {
	ctx := context.Background()
	db := testPrefs(t)
	if err := db.Set(prefs.KeyUserName, "Fatima"); err != nil {
		t.Fatal(err)
	}
	if err := db.SetGroup("123456", true); err != nil {
		t.Fatal(err)
	}

	// The remote store has no such group: the persisted session points at a
	// ghost and must be cleared on load.
	loc := location.NewStatic(geo.Coordinate{})
	m := NewManager(db, groupstore.NewMemory(), NewMachine(bus.New()), loc, zap.NewNop())
	if err := m.Load(ctx); err != nil {
		t.Fatal(err)
	}

	if m.GroupCode() != "" || m.IsLeader() {
		t.Errorf("stale session survived: (%q, %v)", m.GroupCode(), m.IsLeader())
	}
	if m.machine.Current() != Named {
		t.Errorf("state = %s, want %s", m.machine.Current(), Named)
	}
	code, _ := db.GroupCode()
	if code != "" {
		t.Errorf("stale code still persisted: %q", code)
	}
}

func TestLoadKeepsSessionWhenStoreUnreachable(t *testing.T) {
	ctx := context.Background()
	db := testPrefs(t)
	if err := db.Set(prefs.KeyUserName, "Fatima"); err != nil {
		t.Fatal(err)
	}
	if err := db.SetGroup("123456", false); err != nil {
		t.Fatal(err)
	}

	loc := location.NewStatic(geo.Coordinate{})
	m := NewManager(db, failingStore{groupstore.NewMemory()}, NewMachine(bus.New()), loc, zap.NewNop())
	if err := m.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if m.GroupCode() != "123456" {
		t.Errorf("offline load dropped the session, code = %q", m.GroupCode())
	}
}

// recordingAttachment records attach/detach calls.
type recordingAttachment struct {
	attached []string
	detaches int
}

func (a *recordingAttachment) Attach(code string) error {
	a.attached = append(a.attached, code)
	return nil
}

func (a *recordingAttachment) Detach() { a.detaches++ }

func TestAttachmentLifecycle(t *testing.T) {
	ctx := context.Background()
	store := groupstore.NewMemory()
	att := &recordingAttachment{}

	loc := location.NewStatic(geo.Coordinate{})
	m := NewManager(testPrefs(t), store, NewMachine(bus.New()), loc, zap.NewNop())
	m.SetAttachments(att)
	if err := m.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if len(att.attached) != 0 {
		t.Fatalf("attached before any group: %v", att.attached)
	}

	named(t, m, "Fatima")
	code, err := m.CreateGroup(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(att.attached) != 1 || att.attached[0] != code {
		t.Errorf("attached = %v, want [%s]", att.attached, code)
	}

	if err := m.LeaveGroup(ctx); err != nil {
		t.Fatal(err)
	}
	if att.detaches != 1 {
		t.Errorf("detaches = %d, want 1", att.detaches)
	}

	// Shutdown after detach must not detach twice.
	m.Shutdown()
	if att.detaches != 1 {
		t.Errorf("shutdown re-detached: %d", att.detaches)
	}
}
