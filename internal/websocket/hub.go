package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"voxroom/server/internal/metrics"
	"voxroom/server/internal/models"
	"voxroom/server/internal/session"
)

// Hub maintains the set of connected clients and delivers room and message
// events to them. Which client hears about which room is decided by the
// session manager: a client receives a room's events only while its
// session is active on that room. The hub is the fan-out half of the live
// subscription primitive; the session manager is the subscription half.
type Hub struct {
	// Registered clients mapped by user ID
	Clients map[string]*Client

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	sessions *session.Manager
	log      zerolog.Logger

	mu sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub(sessions *session.Manager, log zerolog.Logger) *Hub {
	return &Hub{
		Clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		sessions:   sessions,
		log:        log,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)
		case client := <-h.Unregister:
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// If user already has a connection, close the old one
	if existing, ok := h.Clients[client.ID]; ok {
		close(existing.Send)
	}

	h.Clients[client.ID] = client
	metrics.ConnectedClients.Set(float64(len(h.Clients)))
	h.log.Debug().Str("user", client.ID).Msg("client connected")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	if current, ok := h.Clients[client.ID]; !ok || current != client {
		h.mu.Unlock()
		return
	}
	delete(h.Clients, client.ID)
	close(client.Send)
	metrics.ConnectedClients.Set(float64(len(h.Clients)))
	h.mu.Unlock()

	// A dropped connection must not leak its subscription pair.
	h.sessions.Deactivate(client.ID)
	h.log.Debug().Str("user", client.ID).Msg("client disconnected")
}

// send marshals once and pushes to a single connected user. Slow clients
// are skipped, never waited on.
func (h *Hub) sendToUser(userID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if client, ok := h.Clients[userID]; ok {
		select {
		case client.Send <- data:
		default:
			h.log.Warn().Str("user", userID).Msg("send buffer full, dropping event")
		}
	}
}

func (h *Hub) marshal(msg WSMessage) []byte {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to marshal event")
		return nil
	}
	return data
}

// BroadcastToRoom delivers an event to every user whose session is active
// on the room.
func (h *Hub) BroadcastToRoom(roomID string, msg WSMessage) {
	data := h.marshal(msg)
	if data == nil {
		return
	}
	for _, userID := range h.sessions.UsersInRoom(roomID) {
		h.sendToUser(userID, data)
	}
}

// BroadcastToUser delivers an event to one user, if connected.
func (h *Hub) BroadcastToUser(userID string, msg WSMessage) {
	if data := h.marshal(msg); data != nil {
		h.sendToUser(userID, data)
	}
}

// BroadcastToAll delivers an event to every connected client.
func (h *Hub) BroadcastToAll(msg WSMessage) {
	data := h.marshal(msg)
	if data == nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for userID, client := range h.Clients {
		select {
		case client.Send <- data:
		default:
			h.log.Warn().Str("user", userID).Msg("send buffer full, dropping event")
		}
	}
}

// RoomUpdated implements the protocol notifier: a membership or role
// change on the room document.
func (h *Hub) RoomUpdated(room *models.Room) {
	h.BroadcastToRoom(room.ID, WSMessage{
		Type:      EventRoomUpdated,
		Payload:   RoomPayload{Room: room},
		Timestamp: time.Now(),
	})
}

// RoomEnded tells the room's subscribers the room is gone. Called before
// their sessions are deactivated so the recipients can still be resolved.
func (h *Hub) RoomEnded(roomID string) {
	h.BroadcastToRoom(roomID, WSMessage{
		Type:      EventRoomEnded,
		Payload:   RoomEndedPayload{RoomID: roomID},
		Timestamp: time.Now(),
	})
}

// MemberRemoved tells one user they were expelled.
func (h *Hub) MemberRemoved(roomID, userID string) {
	h.BroadcastToUser(userID, WSMessage{
		Type:      EventRemoved,
		Payload:   RemovedPayload{RoomID: roomID, UserID: userID},
		Timestamp: time.Now(),
	})
}

// MessageCreated fans a new message out to the room's live stream.
func (h *Hub) MessageCreated(msg *models.Message) {
	h.BroadcastToRoom(msg.RoomID, WSMessage{
		Type:      EventMessageReceived,
		Payload:   MessagePayload{Message: msg},
		Timestamp: time.Now(),
	})
}

// DirectoryChanged nudges every connected client to refresh the active
// room directory.
func (h *Hub) DirectoryChanged() {
	h.BroadcastToAll(WSMessage{
		Type:      EventDirectoryChanged,
		Timestamp: time.Now(),
	})
}

// IsUserOnline checks if a user is currently connected
func (h *Hub) IsUserOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	_, ok := h.Clients[userID]
	return ok
}

// GetOnlineCount returns the number of currently connected clients
func (h *Hub) GetOnlineCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.Clients)
}
