// Package rooms implements the room membership and session protocol: who
// is in a room, who moderates it, and how a room moves from active to
// ended. Every membership change is an idempotent set operation executed
// atomically by the store, paired with a system message in the room's
// timeline.
package rooms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"voxroom/server/internal/cache"
	"voxroom/server/internal/metrics"
	"voxroom/server/internal/models"
	"voxroom/server/internal/roomerr"
	"voxroom/server/internal/session"
	"voxroom/server/internal/store"
)

// Store is the slice of the document store the protocol needs. Implemented
// by store.Postgres; tests use an in-memory fake with the same atomicity
// semantics.
type Store interface {
	CreateRoom(ctx context.Context, room *models.Room) (*models.Room, error)
	GetRoom(ctx context.Context, id string) (*models.Room, error)
	ActiveRooms(ctx context.Context) ([]models.Room, error)
	AddMember(ctx context.Context, roomID, userID string) (bool, error)
	RemoveMember(ctx context.Context, roomID, userID string, alsoModerator bool) (bool, error)
	AddModerator(ctx context.Context, roomID, userID string) (bool, error)
	SetRoomStatus(ctx context.Context, roomID, status string) error
	EndIfEmpty(ctx context.Context, roomID string) (bool, error)
	IsMember(ctx context.Context, roomID, userID string) (bool, error)
	DeleteRoomCascade(ctx context.Context, roomID string) error
	InsertMessage(ctx context.Context, msg *models.Message) error
	RecentMessages(ctx context.Context, roomID string, limit int) ([]models.Message, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Notifier fans room and message events out to live subscribers. The hub
// implements it; notifications are fire-and-forget.
type Notifier interface {
	RoomUpdated(room *models.Room)
	RoomEnded(roomID string)
	MemberRemoved(roomID, userID string)
	MessageCreated(msg *models.Message)
	DirectoryChanged()
}

// TrendingSize is how many rooms the trending subset holds.
const TrendingSize = 5

// MaxParticipantsFloor and MaxParticipantsCeil bound a room's configured
// capacity. Zero stays zero and means unlimited.
const (
	MaxParticipantsFloor = 2
	MaxParticipantsCeil  = 100
)

// Service drives the membership protocol against the store and keeps the
// per-user session state consistent with it.
type Service struct {
	store    Store
	hot      *store.Redis // nil when Redis is not configured
	sessions *session.Manager
	notify   Notifier
	log      zerolog.Logger
}

// NewService wires the protocol service.
func NewService(st Store, hot *store.Redis, sessions *session.Manager, notify Notifier, log zerolog.Logger) *Service {
	return &Service{store: st, hot: hot, sessions: sessions, notify: notify, log: log}
}

// Sessions exposes the session manager for the transport layer.
func (s *Service) Sessions() *session.Manager {
	return s.sessions
}

// CreateRoomInput carries the user-supplied fields of a new room.
type CreateRoomInput struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Topic           string     `json:"topic"`
	IsPrivate       bool       `json:"isPrivate"`
	MaxParticipants int        `json:"maxParticipants"`
	ScheduledFor    *time.Time `json:"scheduledFor,omitempty"`
}

// Create validates the input and creates a room owned by creator, with the
// creator seeded into the member and moderator sets. A system welcome
// message opens the room's timeline.
func (s *Service) Create(ctx context.Context, creator *models.User, in CreateRoomInput) (*models.Room, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, roomerr.Validationf("room title is required")
	}

	topic := in.Topic
	if topic == "" {
		topic = models.DefaultTopic
	}
	if !models.IsValidTopic(topic) {
		return nil, roomerr.Validationf("unknown topic %q", topic)
	}

	maxParticipants := in.MaxParticipants
	if maxParticipants != 0 {
		if maxParticipants < MaxParticipantsFloor {
			maxParticipants = MaxParticipantsFloor
		}
		if maxParticipants > MaxParticipantsCeil {
			maxParticipants = MaxParticipantsCeil
		}
	}

	room, err := s.store.CreateRoom(ctx, &models.Room{
		Title:           title,
		Description:     strings.TrimSpace(in.Description),
		Topic:           topic,
		IsPrivate:       in.IsPrivate,
		CreatedBy:       creator.ID,
		MaxParticipants: maxParticipants,
		Status:          models.RoomStatusActive,
		ScheduledFor:    in.ScheduledFor,
	})
	if err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}

	welcome := fmt.Sprintf("Welcome to %s! This room was created by %s.", room.Title, creator.DisplayName)
	if err := s.systemMessage(ctx, room.ID, welcome); err != nil {
		return nil, err
	}

	metrics.RoomsCreated.Inc()
	s.notify.DirectoryChanged()
	s.log.Info().Str("room", room.ID).Str("creator", creator.ID).Msg("room created")

	return room, nil
}

// Join adds user to the room and makes it their active session. Private
// rooms admit only existing members and the creator; full rooms reject the
// join outright. Re-joining is idempotent and emits no duplicate system
// message. Any previously active room is deactivated first.
func (s *Service) Join(ctx context.Context, user *models.User, roomID string) (*models.Room, error) {
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}
	if room == nil {
		metrics.JoinRejections.WithLabelValues("not_found").Inc()
		return nil, roomerr.ErrNotFound
	}

	if room.IsPrivate && !room.HasMember(user.ID) && room.CreatedBy != user.ID {
		metrics.JoinRejections.WithLabelValues("access_denied").Inc()
		return nil, roomerr.ErrAccessDenied
	}

	added, err := s.store.AddMember(ctx, roomID, user.ID)
	if err != nil {
		if errors.Is(err, roomerr.ErrCapacityExceeded) {
			metrics.JoinRejections.WithLabelValues("capacity").Inc()
		}
		return nil, err
	}

	if added {
		if err := s.systemMessage(ctx, roomID, fmt.Sprintf("%s joined the room.", user.DisplayName)); err != nil {
			return nil, err
		}
	}

	// Activate the session: the room-document and message-stream
	// subscriptions become live, tearing down the previous room's pair
	// first.
	userID := user.ID
	metrics.ActiveSessions.Inc()
	s.sessions.Activate(userID, roomID,
		func() { metrics.ActiveSessions.Dec() },
		func() { cache.DropMember(roomID, userID) },
	)
	cache.SetMember(roomID, userID, true)

	room, err = s.store.GetRoom(ctx, roomID)
	if err != nil || room == nil {
		return nil, fmt.Errorf("reload room: %w", err)
	}

	if added {
		s.notify.RoomUpdated(room)
	}
	metrics.RoomJoins.Inc()
	s.log.Info().Str("room", roomID).Str("user", userID).Bool("first_join", added).Msg("joined room")

	return room, nil
}

// Leave removes the user from their active room and deactivates the
// session. Only the creator leaving as the last remaining member ends the
// room; a non-creator draining the room leaves it active. Leaving without
// an active room is a no-op.
func (s *Service) Leave(ctx context.Context, user *models.User) error {
	roomID, ok := s.sessions.ActiveRoom(user.ID)
	if !ok {
		return nil
	}

	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return fmt.Errorf("get room: %w", err)
	}
	if room == nil {
		s.sessions.Deactivate(user.ID)
		return nil
	}

	removed, err := s.store.RemoveMember(ctx, roomID, user.ID, false)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}

	if removed {
		if err := s.systemMessage(ctx, roomID, fmt.Sprintf("%s left the room.", user.DisplayName)); err != nil {
			return err
		}
	}

	var ended bool
	if room.CreatedBy == user.ID {
		ended, err = s.store.EndIfEmpty(ctx, roomID)
		if err != nil {
			return fmt.Errorf("end room: %w", err)
		}
	}

	if ended {
		metrics.RoomsEnded.WithLabelValues("creator_left").Inc()
		s.notify.RoomEnded(roomID)
		s.sessions.DeactivateRoom(roomID)
		s.notify.DirectoryChanged()
	} else if removed {
		if room, err := s.store.GetRoom(ctx, roomID); err == nil && room != nil {
			s.notify.RoomUpdated(room)
		}
	}

	s.sessions.Deactivate(user.ID)
	s.log.Info().Str("room", roomID).Str("user", user.ID).Bool("ended", ended).Msg("left room")

	return nil
}

// Promote adds target to the active room's moderator set. Only moderators
// may promote. Promoting an existing moderator leaves the set unchanged,
// but the system message is still appended, and it names the actor, not
// the target: both quirks are deliberate carryovers of the product's
// observed behavior.
func (s *Service) Promote(ctx context.Context, actor *models.User, targetID string) error {
	roomID, ok := s.sessions.ActiveRoom(actor.ID)
	if !ok {
		return roomerr.Validationf("no active room")
	}

	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return fmt.Errorf("get room: %w", err)
	}
	if room == nil {
		return roomerr.ErrNotFound
	}
	if !room.HasModerator(actor.ID) {
		return roomerr.ErrPermissionDenied
	}

	if _, err := s.store.AddModerator(ctx, roomID, targetID); err != nil {
		return fmt.Errorf("add moderator: %w", err)
	}

	if err := s.systemMessage(ctx, roomID, fmt.Sprintf("%s promoted a user to moderator.", actor.DisplayName)); err != nil {
		return err
	}

	if room, err := s.store.GetRoom(ctx, roomID); err == nil && room != nil {
		s.notify.RoomUpdated(room)
	}
	return nil
}

// Remove expels target from the active room: out of the member set and,
// if present, the moderator set. Only moderators may remove, and the
// creator can never be removed.
func (s *Service) Remove(ctx context.Context, actor *models.User, targetID string) error {
	roomID, ok := s.sessions.ActiveRoom(actor.ID)
	if !ok {
		return roomerr.Validationf("no active room")
	}

	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return fmt.Errorf("get room: %w", err)
	}
	if room == nil {
		return roomerr.ErrNotFound
	}
	if !room.HasModerator(actor.ID) {
		return roomerr.ErrPermissionDenied
	}
	if targetID == room.CreatedBy {
		return roomerr.ErrPermissionDenied
	}

	removedName := "A user"
	if target, err := s.store.GetUserByID(ctx, targetID); err == nil && target != nil {
		removedName = target.DisplayName
	}

	if _, err := s.store.RemoveMember(ctx, roomID, targetID, true); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	cache.DropMember(roomID, targetID)

	if active, ok := s.sessions.ActiveRoom(targetID); ok && active == roomID {
		s.notify.MemberRemoved(roomID, targetID)
		s.sessions.Deactivate(targetID)
	}

	if err := s.systemMessage(ctx, roomID, fmt.Sprintf("%s was removed from the room.", removedName)); err != nil {
		return err
	}

	if room, err := s.store.GetRoom(ctx, roomID); err == nil && room != nil {
		s.notify.RoomUpdated(room)
	}
	return nil
}

// End transitions the room to ended. Only the creator may end a room. An
// empty roomID targets the caller's active room. Every session active on
// the room is deactivated.
func (s *Service) End(ctx context.Context, user *models.User, roomID string) error {
	if roomID == "" {
		active, ok := s.sessions.ActiveRoom(user.ID)
		if !ok {
			return roomerr.Validationf("no room specified")
		}
		roomID = active
	}

	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return fmt.Errorf("get room: %w", err)
	}
	if room == nil {
		return roomerr.ErrNotFound
	}
	if room.CreatedBy != user.ID {
		return roomerr.ErrPermissionDenied
	}

	if err := s.store.SetRoomStatus(ctx, roomID, models.RoomStatusEnded); err != nil {
		return fmt.Errorf("set status: %w", err)
	}

	if err := s.systemMessage(ctx, roomID, fmt.Sprintf("The room has been ended by %s.", user.DisplayName)); err != nil {
		return err
	}

	metrics.RoomsEnded.WithLabelValues("explicit").Inc()
	s.notify.RoomEnded(roomID)
	s.sessions.DeactivateRoom(roomID)
	s.notify.DirectoryChanged()
	s.log.Info().Str("room", roomID).Str("user", user.ID).Msg("room ended")

	return nil
}

// Delete permanently destroys the room and every one of its messages in a
// single transaction, then notifies subscribers. Creator only; the caller
// is expected to have confirmed at the boundary.
func (s *Service) Delete(ctx context.Context, user *models.User, roomID string) error {
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return fmt.Errorf("get room: %w", err)
	}
	if room == nil {
		return roomerr.ErrNotFound
	}
	if room.CreatedBy != user.ID {
		return roomerr.ErrPermissionDenied
	}

	if err := s.store.DeleteRoomCascade(ctx, roomID); err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	if err := s.hot.DropRoom(ctx, roomID); err != nil {
		s.log.Warn().Err(err).Str("room", roomID).Msg("failed to drop hot message window")
	}

	metrics.RoomsEnded.WithLabelValues("deleted").Inc()
	s.notify.RoomEnded(roomID)
	s.sessions.DeactivateRoom(roomID)
	s.notify.DirectoryChanged()
	s.log.Info().Str("room", roomID).Str("user", user.ID).Msg("room deleted")

	return nil
}

// systemMessage appends an audit message to the room timeline and fans it
// out.
func (s *Service) systemMessage(ctx context.Context, roomID, content string) error {
	msg := &models.Message{
		RoomID:     roomID,
		SenderID:   models.SystemSenderID,
		SenderName: "System",
		Content:    content,
		Type:       models.MessageTypeSystem,
	}
	if err := s.store.InsertMessage(ctx, msg); err != nil {
		return fmt.Errorf("insert system message: %w", err)
	}
	if err := s.hot.CacheMessage(ctx, msg); err != nil {
		s.log.Warn().Err(err).Str("room", roomID).Msg("failed to cache system message")
	}

	metrics.MessagesPosted.WithLabelValues(models.MessageTypeSystem).Inc()
	s.notify.MessageCreated(msg)
	return nil
}
