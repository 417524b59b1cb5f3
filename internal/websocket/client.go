package websocket

import (
	"encoding/json"
	"time"

	"github.com/gofiber/contrib/websocket"
)

// Client represents a WebSocket client connection
type Client struct {
	ID   string // User ID
	Conn *websocket.Conn
	Hub  *Hub
	Send chan []byte
}

// NewClient creates a new WebSocket client
func NewClient(userID string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		ID:   userID,
		Conn: conn,
		Hub:  hub,
		Send: make(chan []byte, 256),
	}
}

// ReadPump handles incoming messages from the client
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.log.Warn().Err(err).Str("user", c.ID).Msg("websocket read error")
			}
			break
		}

		var incoming IncomingMessage
		if err := json.Unmarshal(message, &incoming); err != nil {
			c.Hub.log.Warn().Err(err).Str("user", c.ID).Msg("failed to parse message")
			c.sendError("bad_frame", "Malformed message")
			continue
		}

		c.handleIncomingMessage(incoming)
	}
}

// WritePump handles outgoing messages to the client
func (c *Client) WritePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleIncomingMessage processes different types of incoming messages.
// Clients only push typing indicators over the socket; every mutation goes
// through the HTTP API.
func (c *Client) handleIncomingMessage(msg IncomingMessage) {
	switch msg.Type {
	case EventTypingStart, EventTypingStop:
		c.relayTyping(msg.Type)
	default:
		c.Hub.log.Debug().Str("type", string(msg.Type)).Msg("unknown message type")
		c.sendError("unknown_type", "Unknown message type: "+string(msg.Type))
	}
}

// sendError pushes an error event back to this client only.
func (c *Client) sendError(code, message string) {
	c.Hub.BroadcastToUser(c.ID, WSMessage{
		Type:      EventError,
		Payload:   ErrorPayload{Code: code, Message: message},
		Timestamp: time.Now(),
	})
}

// relayTyping broadcasts a typing indicator to the client's active room.
func (c *Client) relayTyping(event EventType) {
	roomID, ok := c.Hub.sessions.ActiveRoom(c.ID)
	if !ok {
		return
	}

	c.Hub.BroadcastToRoom(roomID, WSMessage{
		Type:      event,
		Payload:   TypingPayload{UserID: c.ID, RoomID: roomID},
		Timestamp: time.Now(),
	})
}
