package models

import "time"

// Message types.
const (
	MessageTypeText   = "text"
	MessageTypeSystem = "system"
)

// SystemSenderID is the sender id used for audit/system messages.
const SystemSenderID = "system"

// Message represents a chat message in a room. Messages are immutable once
// created; they are removed only when their room is permanently deleted.
// IDs are ULIDs, so identical timestamps still have a deterministic order.
type Message struct {
	ID          string    `json:"id" db:"id"`
	RoomID      string    `json:"roomId" db:"room_id"`
	SenderID    string    `json:"senderId" db:"sender_id"`
	SenderName  string    `json:"senderName" db:"sender_name"`
	SenderPhoto string    `json:"senderPhoto" db:"sender_photo"`
	Content     string    `json:"content" db:"content"`
	Type        string    `json:"type" db:"type"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}
