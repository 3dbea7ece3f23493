package session

import (
	"context"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rafiq-app/rafiq/internal/group"
	"github.com/rafiq-app/rafiq/internal/groupstore"
	"github.com/rafiq-app/rafiq/internal/location"
	"github.com/rafiq-app/rafiq/internal/prefs"
	"go.uber.org/zap"
)

var codeShape = regexp.MustCompile(`^[0-9]{6}$`)

// Attachment is a group-scoped subscription owner (presence subscriber,
// meeting point coordinator, feed channel). The manager attaches each
// exactly once per active group code and detaches on leave/logout/shutdown;
// an attachment must clear its local cache on Detach.
type Attachment interface {
	Attach(code string) error
	Detach()
}

// Manager owns the local view of "which group am I in, am I leader, who am
// I" and issues create/join/leave/logout against the remote store and the
// preference store.
type Manager struct {
	prefs   *prefs.DB
	store   groupstore.Store
	machine *Machine
	loc     location.Provider
	logger  *zap.Logger

	mu          sync.Mutex
	name        string
	code        string
	leader      bool
	memberID    string
	attachments []Attachment
	attached    bool
}

// NewManager creates a session manager. Attachments are attached/detached on
// every group-code transition, including the cold-start one in Load.
func NewManager(db *prefs.DB, store groupstore.Store, machine *Machine, loc location.Provider, logger *zap.Logger, attachments ...Attachment) *Manager {
	return &Manager{
		prefs:       db,
		store:       store,
		machine:     machine,
		loc:         loc,
		logger:      logger,
		attachments: attachments,
	}
}

// SetAttachments replaces the attachment set. Used by the composition root,
// where the attachments themselves depend on the manager's session view and
// cannot be constructed first. Must be called before Load.
func (m *Manager) SetAttachments(attachments ...Attachment) {
	m.mu.Lock()
	m.attachments = attachments
	m.mu.Unlock()
}

// Load restores the persisted session and reconciles it against the remote
// store: a stored group code whose group record no longer exists clears the
// local session instead of leaving the device pointed at a ghost group.
func (m *Manager) Load(ctx context.Context) error {
	id, err := m.prefs.MemberID()
	if err != nil {
		return fmt.Errorf("load member id: %w", err)
	}
	name, err := m.prefs.UserName()
	if err != nil {
		return fmt.Errorf("load user name: %w", err)
	}
	code, err := m.prefs.GroupCode()
	if err != nil {
		return fmt.Errorf("load group code: %w", err)
	}
	leader, err := m.prefs.IsGroupLeader()
	if err != nil {
		return fmt.Errorf("load leader flag: %w", err)
	}

	if code != "" {
		snap, err := m.store.ReadOnce(ctx, groupstore.GroupPath(code))
		switch {
		case err != nil:
			// Unreachable store: keep the session and let subscriptions
			// catch up when connectivity returns.
			m.logger.Warn("group reconcile skipped", zap.String("code", code), zap.Error(err))
		case snap == nil:
			m.logger.Info("stored group gone remotely, clearing session", zap.String("code", code))
			if err := m.prefs.ClearGroup(); err != nil {
				return fmt.Errorf("clear stale group: %w", err)
			}
			code, leader = "", false
		}
	}

	m.mu.Lock()
	m.memberID = id
	m.name = name
	m.code = code
	m.leader = leader
	m.mu.Unlock()

	if name != "" {
		_ = m.machine.Transition(Named)
	}
	if code != "" {
		_ = m.machine.Transition(Grouped)
		m.attachAll(code)
	}
	m.logger.Info("session loaded",
		zap.String("state", string(m.machine.Current())),
		zap.String("code", code),
		zap.Bool("leader", leader))
	return nil
}

// UserName returns the display name, "" when unregistered.
func (m *Manager) UserName() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.name
}

// GroupCode returns the active group code, "" when not grouped.
func (m *Manager) GroupCode() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.code
}

// IsLeader reports whether this session created the active group.
func (m *Manager) IsLeader() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.leader
}

// MemberID returns the device's generated member identity.
func (m *Manager) MemberID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.memberID
}

// SaveUserName persists the display name. Empty names are rejected.
func (m *Manager) SaveUserName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: display name is empty", group.ErrValidation)
	}
	if err := m.prefs.Set(prefs.KeyUserName, name); err != nil {
		return fmt.Errorf("%w: save user name: %v", group.ErrStorage, err)
	}
	m.mu.Lock()
	m.name = name
	m.mu.Unlock()
	if m.machine.Current() == Unregistered {
		_ = m.machine.Transition(Named)
	}
	return nil
}

// ChangeLanguage persists the UI language preference.
func (m *Manager) ChangeLanguage(lang string) error {
	if err := m.prefs.Set(prefs.KeyLanguage, lang); err != nil {
		return fmt.Errorf("%w: save language: %v", group.ErrStorage, err)
	}
	return nil
}

// CreateGroup generates a 6-digit code, writes the group record with this
// session as leader and first member, and persists the grouped session.
func (m *Manager) CreateGroup(ctx context.Context) (string, error) {
	name := m.UserName()
	if name == "" {
		return "", group.ErrNoUserName
	}

	code := fmt.Sprintf("%06d", 100000+rand.IntN(900000))
	now := time.Now().UnixMilli()

	rec := group.Record{CreatedAt: now, CreatedBy: name}
	if err := m.store.Write(ctx, groupstore.GroupPath(code), rec); err != nil {
		return "", fmt.Errorf("%w: create group: %v", group.ErrStorage, err)
	}
	if err := m.writeSelfMember(ctx, code); err != nil {
		return "", err
	}
	if err := m.prefs.SetGroup(code, true); err != nil {
		return "", fmt.Errorf("%w: persist group: %v", group.ErrStorage, err)
	}

	m.mu.Lock()
	m.code = code
	m.leader = true
	m.mu.Unlock()
	_ = m.machine.Transition(Grouped)
	m.attachAll(code)

	m.logger.Info("group created", zap.String("code", code))
	return code, nil
}

// JoinGroup validates the code shape locally, checks existence remotely, and
// joins as a regular member. The shape check never touches the store.
func (m *Manager) JoinGroup(ctx context.Context, code string) error {
	name := m.UserName()
	if name == "" {
		return group.ErrNoUserName
	}
	if !codeShape.MatchString(code) {
		return fmt.Errorf("%w: %q", group.ErrInvalidCode, code)
	}

	snap, err := m.store.ReadOnce(ctx, groupstore.GroupPath(code))
	if err != nil {
		return fmt.Errorf("%w: check group: %v", group.ErrStorage, err)
	}
	if snap == nil {
		return fmt.Errorf("%w: %s", group.ErrGroupNotFound, code)
	}

	if err := m.writeSelfMember(ctx, code); err != nil {
		return err
	}
	if err := m.prefs.SetGroup(code, false); err != nil {
		return fmt.Errorf("%w: persist group: %v", group.ErrStorage, err)
	}

	m.mu.Lock()
	m.code = code
	m.leader = false
	m.mu.Unlock()
	_ = m.machine.Transition(Grouped)
	m.attachAll(code)

	m.logger.Info("group joined", zap.String("code", code))
	return nil
}

// ValidateGroupCode is a pure existence check with no side effects.
func (m *Manager) ValidateGroupCode(ctx context.Context, code string) (bool, error) {
	if !codeShape.MatchString(code) {
		return false, nil
	}
	snap, err := m.store.ReadOnce(ctx, groupstore.GroupPath(code))
	if err != nil {
		return false, fmt.Errorf("%w: check group: %v", group.ErrStorage, err)
	}
	return snap != nil, nil
}

// LeaveGroup removes this member's presence record, detaches all group
// subscriptions, and clears the local grouped session. Calling it while not
// grouped is a no-op. The remote meeting point and feed are deliberately
// left in place for the remaining members.
func (m *Manager) LeaveGroup(ctx context.Context) error {
	m.mu.Lock()
	code := m.code
	m.mu.Unlock()
	if code == "" {
		return nil
	}

	if err := m.store.Remove(ctx, groupstore.MemberPath(code, m.MemberID())); err != nil {
		// The local session is cleared regardless; a stale member record is
		// the documented consistency gap, not a reason to stay grouped.
		m.logger.Warn("remove member record failed", zap.String("code", code), zap.Error(err))
	}

	m.detachAll()

	if err := m.prefs.ClearGroup(); err != nil {
		return fmt.Errorf("%w: clear group: %v", group.ErrStorage, err)
	}
	m.mu.Lock()
	m.code = ""
	m.leader = false
	m.mu.Unlock()
	_ = m.machine.Transition(Named)

	m.logger.Info("group left", zap.String("code", code))
	return nil
}

// Logout leaves the current group (if any) and forgets the display name.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.LeaveGroup(ctx); err != nil {
		return err
	}
	if err := m.prefs.Delete(prefs.KeyUserName); err != nil {
		return fmt.Errorf("%w: clear user name: %v", group.ErrStorage, err)
	}
	m.mu.Lock()
	m.name = ""
	m.mu.Unlock()
	if m.machine.Current() != Unregistered {
		_ = m.machine.Transition(Unregistered)
	}
	return nil
}

// Shutdown detaches subscriptions without touching local or remote state.
func (m *Manager) Shutdown() {
	m.detachAll()
}

// writeSelfMember writes this device's full member record, with the current
// position when the location provider has one and a zero coordinate when it
// does not (degraded mode, not an error).
func (m *Manager) writeSelfMember(ctx context.Context, code string) error {
	member := group.Member{
		ID:         m.MemberID(),
		Name:       m.UserName(),
		LastUpdate: time.Now().UnixMilli(),
	}
	if fix, err := m.loc.Current(ctx); err == nil {
		member.Latitude = fix.Coordinate.Latitude
		member.Longitude = fix.Coordinate.Longitude
	} else {
		m.logger.Info("joining without position", zap.Error(err))
	}
	if err := m.store.Write(ctx, groupstore.MemberPath(code, member.ID), member); err != nil {
		return fmt.Errorf("%w: write member: %v", group.ErrStorage, err)
	}
	return nil
}

func (m *Manager) attachAll(code string) {
	m.mu.Lock()
	if m.attached {
		m.mu.Unlock()
		return
	}
	m.attached = true
	m.mu.Unlock()

	for _, a := range m.attachments {
		if err := a.Attach(code); err != nil {
			m.logger.Error("attach failed", zap.String("code", code), zap.Error(err))
		}
	}
}

func (m *Manager) detachAll() {
	m.mu.Lock()
	if !m.attached {
		m.mu.Unlock()
		return
	}
	m.attached = false
	m.mu.Unlock()

	for _, a := range m.attachments {
		a.Detach()
	}
}
