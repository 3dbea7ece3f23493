// Package prayer holds the daily prayer schedule and answers "what is the
// next prayer" for the alarm scheduler.
package prayer

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Entry is one prayer with its local wall-clock time.
type Entry struct {
	Name string
	Key  string
	Time string // "05:30 AM" form
}

// DefaultSchedule is the built-in table shown before any remote schedule is
// loaded.
func DefaultSchedule() []Entry {
	return []Entry{
		{Name: "Fajr", Key: "fajr", Time: "05:30 AM"},
		{Name: "Dhuhr", Key: "dhuhr", Time: "12:45 PM"},
		{Name: "Asr", Key: "asr", Time: "04:15 PM"},
		{Name: "Maghrib", Key: "maghrib", Time: "07:00 PM"},
		{Name: "Isha", Key: "isha", Time: "08:30 PM"},
	}
}

// ParseTime resolves a "hh:mm AM/PM" string against the given reference
// day. Times already past roll over to tomorrow, matching alarm semantics.
func ParseTime(s string, now time.Time) (time.Time, error) {
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("malformed prayer time %q", s)
	}
	hm := strings.Split(parts[0], ":")
	if len(hm) != 2 {
		return time.Time{}, fmt.Errorf("malformed prayer time %q", s)
	}
	hours, err := strconv.Atoi(hm[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed prayer time %q", s)
	}
	minutes, err := strconv.Atoi(hm[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed prayer time %q", s)
	}

	switch parts[1] {
	case "PM":
		if hours != 12 {
			hours += 12
		}
	case "AM":
		if hours == 12 {
			hours = 0
		}
	default:
		return time.Time{}, fmt.Errorf("malformed prayer time %q", s)
	}
	if hours > 23 || minutes > 59 {
		return time.Time{}, fmt.Errorf("malformed prayer time %q", s)
	}

	at := time.Date(now.Year(), now.Month(), now.Day(), hours, minutes, 0, 0, now.Location())
	if at.Before(now) {
		at = at.AddDate(0, 0, 1)
	}
	return at, nil
}

// Next returns the upcoming prayer from the schedule and when it occurs.
func Next(schedule []Entry, now time.Time) (Entry, time.Time, error) {
	var bestEntry Entry
	var bestAt time.Time
	for _, e := range schedule {
		at, err := ParseTime(e.Time, now)
		if err != nil {
			return Entry{}, time.Time{}, err
		}
		if bestAt.IsZero() || at.Before(bestAt) {
			bestEntry, bestAt = e, at
		}
	}
	if bestAt.IsZero() {
		return Entry{}, time.Time{}, fmt.Errorf("empty prayer schedule")
	}
	return bestEntry, bestAt, nil
}
