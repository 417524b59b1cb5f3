package store

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"

	"voxroom/server/internal/metrics"
	"voxroom/server/internal/models"
)

func observe(op string, start time.Time) {
	metrics.StoreLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// InsertMessage persists a message. The id is a ULID minted here and the
// timestamp is server-assigned, so every message in a room has a total
// order even when two arrive within the same clock tick.
func (s *Postgres) InsertMessage(ctx context.Context, msg *models.Message) error {
	defer observe("insert_message", time.Now())

	if msg.ID == "" {
		msg.ID = ulid.Make().String()
	}
	if msg.Type == "" {
		msg.Type = models.MessageTypeText
	}

	return s.pool.QueryRow(ctx, `
		INSERT INTO messages (id, room_id, sender_id, sender_name, sender_photo, content, type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, msg.ID, msg.RoomID, msg.SenderID, msg.SenderName, msg.SenderPhoto,
		msg.Content, msg.Type).Scan(&msg.CreatedAt)
}

// RecentMessages returns the newest messages of a room, newest first,
// capped at limit. Callers are expected to re-sort ascending for display.
func (s *Postgres) RecentMessages(ctx context.Context, roomID string, limit int) ([]models.Message, error) {
	defer observe("recent_messages", time.Now())

	rows, err := s.pool.Query(ctx, `
		SELECT id, room_id, sender_id, sender_name, sender_photo, content, type, created_at
		FROM messages
		WHERE room_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, roomID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.RoomID, &m.SenderID, &m.SenderName, &m.SenderPhoto,
			&m.Content, &m.Type, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
