// Package chat turns the store's newest-first message snapshots into the
// bounded, ascending view the room timeline displays.
package chat

import (
	"sort"
	"time"

	"voxroom/server/internal/models"
)

// StreamLimit caps the live message window at the most recent messages.
const StreamLimit = 100

// SortAscending orders messages by creation time, oldest first. Identical
// timestamps fall back to the message id; ids are ULIDs, so the fallback
// follows insertion order and the result is a total order no matter how
// the underlying snapshot was delivered.
func SortAscending(messages []models.Message) []models.Message {
	out := make([]models.Message, len(messages))
	copy(out, messages)
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Bound trims an ascending slice to its newest limit entries.
func Bound(messages []models.Message, limit int) []models.Message {
	if limit <= 0 || len(messages) <= limit {
		return messages
	}
	return messages[len(messages)-limit:]
}

// DateGroup is one calendar day of messages, for display grouping only.
// Grouping never reorders: messages stay in ascending order within and
// across groups.
type DateGroup struct {
	Date     string           `json:"date"` // YYYY-MM-DD in loc
	Messages []models.Message `json:"messages"`
}

// GroupByDate splits an ascending message slice into per-day groups using
// the given location's calendar.
func GroupByDate(messages []models.Message, loc *time.Location) []DateGroup {
	if loc == nil {
		loc = time.Local
	}

	var groups []DateGroup
	for _, m := range messages {
		day := m.CreatedAt.In(loc).Format("2006-01-02")
		if len(groups) == 0 || groups[len(groups)-1].Date != day {
			groups = append(groups, DateGroup{Date: day})
		}
		last := &groups[len(groups)-1]
		last.Messages = append(last.Messages, m)
	}
	return groups
}
