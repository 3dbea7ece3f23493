package group

// Record is the group root written at groups/{code}.
type Record struct {
	CreatedAt int64  `json:"createdAt"`
	CreatedBy string `json:"createdBy"`
}

// Member is one participant's presence record, keyed by generated member ID.
// The display name is an attribute only; two pilgrims named "Ahmed" get
// distinct records.
type Member struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	LastUpdate int64   `json:"lastUpdate"`

	// Color is assigned locally by roster position, never stored remotely.
	Color string `json:"-"`
}

// MeetingPoint is the singleton shared coordinate at groups/{code}/meetingPoint.
// Overwritten wholesale on every set; no history.
type MeetingPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	SetBy     string  `json:"setBy"`
	SetAt     int64   `json:"setAt"`
}

// Announcement is a leader-authored feed entry at groups/{code}/announcements/{id}.
// Reactions map member ID to the member's single emoji.
type Announcement struct {
	ID         string            `json:"-"`
	LeaderName string            `json:"leaderName"`
	Message    string            `json:"message"`
	IsPinned   bool              `json:"isPinned"`
	Timestamp  int64             `json:"timestamp"`
	EditedAt   int64             `json:"editedAt,omitempty"`
	Reactions  map[string]Emoji `json:"reactions,omitempty"`
}

// Emoji is a member's reaction: the emoji plus the display name for rendering.
type Emoji struct {
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
}

// ReactionCounts groups the reactions map by emoji and counts each.
func (a *Announcement) ReactionCounts() map[string]int {
	if len(a.Reactions) == 0 {
		return nil
	}
	counts := make(map[string]int, len(a.Reactions))
	for _, r := range a.Reactions {
		counts[r.Emoji]++
	}
	return counts
}

// Alert types.
const (
	AlertPanic        = "panic"
	AlertNotification = "notification"
)

// Alert is an append-only fan-out record at groups/{code}/alerts/{id}.
// Never edited or deleted; only the most recent entry is ever inspected.
type Alert struct {
	ID        string  `json:"-"`
	Type      string  `json:"type"`
	From      string  `json:"from"`
	FromID    string  `json:"fromId"`
	Title     string  `json:"title"`
	Message   string  `json:"message"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
	Timestamp int64   `json:"timestamp"`
}
