package group

// Session is the read-only view of the local session that the group-scoped
// components consult before writing. Implemented by the session manager.
type Session interface {
	// UserName returns the display name, "" when unregistered.
	UserName() string
	// GroupCode returns the active group code, "" when not grouped.
	GroupCode() string
	// IsLeader reports whether this session created the active group.
	IsLeader() bool
	// MemberID returns the device's generated member identity.
	MemberID() string
}
