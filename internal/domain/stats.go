package domain

import "strings"

// StatsSnapshot holds the live check-in counters rendered by dashboards.
// It is derived state: always recomputable from the set of tickets, and
// maintained incrementally by folding CheckInEvents over an initial scan.
type StatsSnapshot struct {
	Total     int64            `json:"total"`
	CheckedIn int64            `json:"checked_in"`
	Pending   int64            `json:"pending"`
	PerEvent  map[string]int64 `json:"per_event,omitempty"`
}

// OtherBucket is the fallback stat bucket for event names that match none
// of the configured identifiers.
const OtherBucket = "other"

// EventBucket classifies an event name into a stat bucket by
// case-insensitive substring match against the configured identifiers.
// This mirrors the presentation color policy, which keys off the same
// match.
func EventBucket(eventName string, identifiers []string) string {
	lower := strings.ToLower(eventName)
	for _, id := range identifiers {
		if id == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(id)) {
			return strings.ToLower(id)
		}
	}
	return OtherBucket
}
