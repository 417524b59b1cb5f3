package rooms

import (
	"context"
	"fmt"
	"strings"

	"voxroom/server/internal/cache"
	"voxroom/server/internal/chat"
	"voxroom/server/internal/metrics"
	"voxroom/server/internal/models"
	"voxroom/server/internal/roomerr"
)

// Send posts a text message to the sender's active room. The sender's name
// and photo are snapshotted onto the message. Fire-and-forget from the
// caller's view: there is no optimistic echo, the message reaches readers
// through the live stream once persisted.
func (s *Service) Send(ctx context.Context, sender *models.User, content string) (*models.Message, error) {
	roomID, ok := s.sessions.ActiveRoom(sender.ID)
	if !ok {
		return nil, roomerr.Validationf("you must be in a room to send messages")
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, roomerr.Validationf("message content is required")
	}

	isMember, err := s.checkMembership(ctx, roomID, sender.ID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, roomerr.ErrAccessDenied
	}

	msg := &models.Message{
		RoomID:      roomID,
		SenderID:    sender.ID,
		SenderName:  sender.DisplayName,
		SenderPhoto: sender.PhotoURL,
		Content:     content,
		Type:        models.MessageTypeText,
	}
	if err := s.store.InsertMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	if err := s.hot.CacheMessage(ctx, msg); err != nil {
		s.log.Warn().Err(err).Str("room", roomID).Msg("failed to cache message")
	}

	metrics.MessagesPosted.WithLabelValues(models.MessageTypeText).Inc()
	s.notify.MessageCreated(msg)

	return msg, nil
}

// Messages returns the most recent messages of a room in ascending display
// order, bounded to the stream limit. Private rooms reveal their timeline
// only to members and the creator. Reads are served from the Redis hot
// window when it holds a full window for the room; Postgres otherwise.
func (s *Service) Messages(ctx context.Context, user *models.User, roomID string) ([]models.Message, error) {
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}
	if room == nil {
		return nil, roomerr.ErrNotFound
	}
	if room.IsPrivate && !room.HasMember(user.ID) && room.CreatedBy != user.ID {
		return nil, roomerr.ErrAccessDenied
	}

	messages, err := s.hot.RecentMessages(ctx, roomID, chat.StreamLimit)
	if err != nil {
		s.log.Warn().Err(err).Str("room", roomID).Msg("hot window read failed, falling back")
		messages = nil
	}

	// The window only fills on the send path, so after a restart or TTL
	// expiry it can hold fewer messages than the durable store does. A
	// short window is not authoritative: serve it only when full.
	if len(messages) < chat.StreamLimit {
		messages, err = s.store.RecentMessages(ctx, roomID, chat.StreamLimit)
		if err != nil {
			return nil, fmt.Errorf("recent messages: %w", err)
		}
	}

	// The feed delivers newest-first; display order is ascending.
	return chat.Bound(chat.SortAscending(messages), chat.StreamLimit), nil
}

// checkMembership consults the short-lived cache before hitting the store.
func (s *Service) checkMembership(ctx context.Context, roomID, userID string) (bool, error) {
	if isMember, ok := cache.IsMember(roomID, userID); ok {
		return isMember, nil
	}

	isMember, err := s.store.IsMember(ctx, roomID, userID)
	if err != nil {
		return false, fmt.Errorf("membership check: %w", err)
	}
	cache.SetMember(roomID, userID, isMember)
	return isMember, nil
}
