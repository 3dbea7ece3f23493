package group

import "errors"

// Error taxonomy surfaced to the UI layer. Validation errors (ErrInvalidCode,
// ErrValidation, ErrPermissionDenied) are raised before any remote call and
// must never be retried automatically. ErrGroupNotFound and ErrStorage are
// raised after a remote attempt and left to the user to retry.
var (
	// ErrInvalidCode means a group code failed the 6-digit-numeric shape check.
	ErrInvalidCode = errors.New("invalid group code")

	// ErrGroupNotFound means a well-formed code has no group record remotely.
	ErrGroupNotFound = errors.New("group not found")

	// ErrStorage wraps a failed remote read/write after validation passed.
	ErrStorage = errors.New("storage error")

	// ErrValidation means an input failed a local check, e.g. an empty
	// display name or announcement message.
	ErrValidation = errors.New("validation error")

	// ErrPermissionDenied means a leader-only operation was invoked by a
	// non-leader session. The core re-checks; the UI is not trusted.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNoUserName means create/join was attempted before a display name was saved.
	ErrNoUserName = errors.New("no display name set")

	// ErrPermissionUnavailable means a device permission (location,
	// notifications) was denied. Non-fatal: features degrade instead of blocking.
	ErrPermissionUnavailable = errors.New("device permission unavailable")
)
