package groupstore

import "strings"

// Path layout under the store root. Members and reactions are keyed by the
// generated member ID, never by display name.
//
//	groups/{code}                          -> { createdAt, createdBy }
//	groups/{code}/members/{memberID}       -> { id, name, latitude, longitude, lastUpdate }
//	groups/{code}/meetingPoint             -> { latitude, longitude, setBy, setAt }
//	groups/{code}/announcements/{id}       -> { leaderName, message, isPinned, timestamp, editedAt?, reactions }
//	groups/{code}/alerts/{id}              -> { type, from, fromId, title, message, latitude?, longitude?, timestamp }

func GroupPath(code string) string { return "groups/" + code }

func MembersPath(code string) string { return GroupPath(code) + "/members" }

func MemberPath(code, memberID string) string { return MembersPath(code) + "/" + memberID }

func MeetingPointPath(code string) string { return GroupPath(code) + "/meetingPoint" }

func AnnouncementsPath(code string) string { return GroupPath(code) + "/announcements" }

func AnnouncementPath(code, id string) string { return AnnouncementsPath(code) + "/" + id }

func ReactionPath(code, announcementID, memberID string) string {
	return AnnouncementPath(code, announcementID) + "/reactions/" + memberID
}

func AlertsPath(code string) string { return GroupPath(code) + "/alerts" }

// splitPath breaks a path into non-empty segments.
func splitPath(path string) []string {
	var segs []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}
