package models

import "time"

// Room status values. A room is active from creation until it is ended;
// ended is terminal.
const (
	RoomStatusActive = "active"
	RoomStatusEnded  = "ended"
)

// DefaultTopic is assigned when a room is created without a topic.
const DefaultTopic = "General"

// RoomTopics is the fixed set of topics a room can be filed under.
var RoomTopics = []string{
	"Technology",
	"Business",
	"Science",
	"Health",
	"Education",
	"Entertainment",
	"Sports",
	"Politics",
	"Art",
	"Music",
	"Gaming",
	"Travel",
	"Food",
	"Fashion",
	"General",
}

// IsValidTopic reports whether topic is one of RoomTopics.
func IsValidTopic(topic string) bool {
	for _, t := range RoomTopics {
		if t == topic {
			return true
		}
	}
	return false
}

// Room represents an audio/chat room. The creator is always present in both
// Members and Moderators.
type Room struct {
	ID              string     `json:"id" db:"id"`
	Title           string     `json:"title" db:"title"`
	Description     string     `json:"description" db:"description"`
	Topic           string     `json:"topic" db:"topic"`
	IsPrivate       bool       `json:"isPrivate" db:"is_private"`
	CreatedBy       string     `json:"createdBy" db:"created_by"`
	Members         []string   `json:"members" db:"members"`
	Moderators      []string   `json:"moderators" db:"moderators"`
	MaxParticipants int        `json:"maxParticipants" db:"max_participants"` // 0 = unlimited
	Status          string     `json:"status" db:"status"`
	ScheduledFor    *time.Time `json:"scheduledFor,omitempty" db:"scheduled_for"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time  `json:"updatedAt" db:"updated_at"`
}

// HasMember reports whether userID is in the room's member set.
func (r *Room) HasMember(userID string) bool {
	return contains(r.Members, userID)
}

// HasModerator reports whether userID is in the room's moderator set.
func (r *Room) HasModerator(userID string) bool {
	return contains(r.Moderators, userID)
}

// AtCapacity reports whether another member can no longer join.
func (r *Room) AtCapacity() bool {
	return r.MaxParticipants > 0 && len(r.Members) >= r.MaxParticipants
}

func contains(s []string, v string) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}
