package websocket

import (
	"time"

	"voxroom/server/internal/models"
)

// EventType represents different WebSocket event types
type EventType string

const (
	// Room document events
	EventRoomUpdated EventType = "room_updated"
	EventRoomEnded   EventType = "room_ended"
	EventRemoved     EventType = "removed_from_room"

	// Message stream events
	EventMessageReceived EventType = "message_received"

	// Directory events
	EventDirectoryChanged EventType = "directory_changed"

	// Typing events
	EventTypingStart EventType = "typing_start"
	EventTypingStop  EventType = "typing_stop"

	// Error events
	EventError EventType = "error"
)

// WSMessage represents a WebSocket message structure
type WSMessage struct {
	Type      EventType   `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// RoomPayload carries a full room snapshot on membership/role changes.
type RoomPayload struct {
	Room *models.Room `json:"room"`
}

// RoomEndedPayload tells subscribers their room is gone.
type RoomEndedPayload struct {
	RoomID string `json:"roomId"`
}

// RemovedPayload tells a user they were expelled from a room.
type RemovedPayload struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

// MessagePayload carries one chat message.
type MessagePayload struct {
	Message *models.Message `json:"message"`
}

// TypingPayload represents typing indicator payload
type TypingPayload struct {
	UserID string `json:"userId"`
	RoomID string `json:"roomId"`
}

// ErrorPayload represents error event payload
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// IncomingMessage represents messages received from clients
type IncomingMessage struct {
	Type    EventType              `json:"type"`
	Payload map[string]interface{} `json:"payload"`
}
