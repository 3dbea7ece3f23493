package bus

import "time"

// Event represents a domain event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}

// Event kinds published by the core. UI subscribers filter by namespace
// prefix, e.g. "roster." to follow member movement.
const (
	KindSessionChanged = "session.state_changed"
	KindRosterUpdated  = "roster.updated"
	KindMeetingUpdated = "meeting.updated"
	KindFeedUpdated    = "feed.updated"
	KindAlertNotify    = "alert.notify"
)
