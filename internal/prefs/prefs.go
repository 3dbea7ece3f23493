package prefs

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Preference keys. String-encoded values, same contract the mobile app used
// for its on-device storage.
const (
	KeyLanguage      = "language"
	KeyUserName      = "userName"
	KeyGroupCode     = "groupCode"
	KeyIsGroupLeader = "isGroupLeader"
	KeyMemberID      = "memberID"
)

// Get returns the value for a key, or "" if the key is absent.
func (db *DB) Get(key string) (string, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM prefs WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Set stores a value for a key, overwriting any previous value.
func (db *DB) Set(key, value string) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO prefs (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now)
	return err
}

// Delete removes a key. Deleting an absent key is a no-op.
func (db *DB) Delete(keys ...string) error {
	for _, key := range keys {
		if _, err := db.Exec(`DELETE FROM prefs WHERE key = ?`, key); err != nil {
			return err
		}
	}
	return nil
}

// UserName returns the stored display name, "" if none.
func (db *DB) UserName() (string, error) { return db.Get(KeyUserName) }

// GroupCode returns the stored group code, "" if not grouped.
func (db *DB) GroupCode() (string, error) { return db.Get(KeyGroupCode) }

// IsGroupLeader reports whether this device created its current group.
func (db *DB) IsGroupLeader() (bool, error) {
	v, err := db.Get(KeyIsGroupLeader)
	return v == "true", err
}

// SetGroup persists the (code, leader) pair in one place so the two keys
// cannot drift apart.
func (db *DB) SetGroup(code string, leader bool) error {
	if err := db.Set(KeyGroupCode, code); err != nil {
		return err
	}
	v := "false"
	if leader {
		v = "true"
	}
	return db.Set(KeyIsGroupLeader, v)
}

// ClearGroup removes the group code and leader flag.
func (db *DB) ClearGroup() error {
	return db.Delete(KeyGroupCode, KeyIsGroupLeader)
}

// MemberID returns the device's generated member identity, creating and
// persisting one on first use. This is the storage key for the member's
// presence record and reactions; the display name is never used as a key.
func (db *DB) MemberID() (string, error) {
	id, err := db.Get(KeyMemberID)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}
	id = uuid.NewString()
	if err := db.Set(KeyMemberID, id); err != nil {
		return "", err
	}
	return id, nil
}
