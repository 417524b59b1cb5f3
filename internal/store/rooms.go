package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"voxroom/server/internal/models"
	"voxroom/server/internal/roomerr"
)

const roomColumns = `id, title, description, topic, is_private, created_by, members, moderators, max_participants, status, scheduled_for, created_at, updated_at`

func scanRoom(row pgx.Row) (*models.Room, error) {
	r := &models.Room{}
	err := row.Scan(&r.ID, &r.Title, &r.Description, &r.Topic, &r.IsPrivate, &r.CreatedBy,
		&r.Members, &r.Moderators, &r.MaxParticipants, &r.Status, &r.ScheduledFor,
		&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return r, nil
}

// CreateRoom inserts a new room. The creator is seeded into both the member
// and moderator sets in the same statement.
func (s *Postgres) CreateRoom(ctx context.Context, room *models.Room) (*models.Room, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO rooms (title, description, topic, is_private, created_by, members, moderators, max_participants, status, scheduled_for)
		VALUES ($1, $2, $3, $4, $5, ARRAY[$5], ARRAY[$5], $6, $7, $8)
		RETURNING %s
	`, roomColumns), room.Title, room.Description, room.Topic, room.IsPrivate,
		room.CreatedBy, room.MaxParticipants, room.Status, room.ScheduledFor)
	return scanRoom(row)
}

// GetRoom retrieves a room by id. Returns (nil, nil) when absent.
func (s *Postgres) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM rooms WHERE id = $1`, roomColumns), id)
	return scanRoom(row)
}

// ActiveRooms returns every room whose status is active, newest first.
func (s *Postgres) ActiveRooms(ctx context.Context) ([]models.Room, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM rooms WHERE status = $1 ORDER BY created_at DESC
	`, roomColumns), models.RoomStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []models.Room
	for rows.Next() {
		r := &models.Room{}
		if err := rows.Scan(&r.ID, &r.Title, &r.Description, &r.Topic, &r.IsPrivate, &r.CreatedBy,
			&r.Members, &r.Moderators, &r.MaxParticipants, &r.Status, &r.ScheduledFor,
			&r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		rooms = append(rooms, *r)
	}
	return rooms, rows.Err()
}

// AddMember adds userID to the room's member set. The capacity guard lives
// in the same statement as the append, so a full room can never be
// overfilled by concurrent joins. Returns false with no error when the user
// was already a member.
func (s *Postgres) AddMember(ctx context.Context, roomID, userID string) (bool, error) {
	defer observe("add_member", time.Now())

	tag, err := s.pool.Exec(ctx, `
		UPDATE rooms SET members = array_append(members, $2), updated_at = now()
		WHERE id = $1 AND NOT (members @> ARRAY[$2])
		  AND (max_participants = 0 OR cardinality(members) < max_participants)
	`, roomID, userID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	room, err := s.GetRoom(ctx, roomID)
	if err != nil {
		return false, err
	}
	if room == nil {
		return false, roomerr.ErrNotFound
	}
	if room.HasMember(userID) {
		return false, nil
	}
	return false, roomerr.ErrCapacityExceeded
}

// RemoveMember removes userID from the member set, and from the moderator
// set as well when alsoModerator is set. Returns whether the member was
// actually present.
func (s *Postgres) RemoveMember(ctx context.Context, roomID, userID string, alsoModerator bool) (bool, error) {
	query := `
		UPDATE rooms SET members = array_remove(members, $2), updated_at = now()
		WHERE id = $1 AND members @> ARRAY[$2]
	`
	if alsoModerator {
		query = `
		UPDATE rooms SET members = array_remove(members, $2), moderators = array_remove(moderators, $2), updated_at = now()
		WHERE id = $1 AND (members @> ARRAY[$2] OR moderators @> ARRAY[$2])
	`
	}
	tag, err := s.pool.Exec(ctx, query, roomID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// AddModerator adds userID to the moderator set. Promoting an existing
// moderator is a no-op; the return value reports whether the set changed.
func (s *Postgres) AddModerator(ctx context.Context, roomID, userID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE rooms SET moderators = array_append(moderators, $2), updated_at = now()
		WHERE id = $1 AND NOT (moderators @> ARRAY[$2])
	`, roomID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// SetRoomStatus transitions the room's lifecycle status.
func (s *Postgres) SetRoomStatus(ctx context.Context, roomID, status string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE rooms SET status = $2, updated_at = now() WHERE id = $1
	`, roomID, status)
	return err
}

// EndIfEmpty marks the room ended when its member set has drained. Used on
// the leave path; the emptiness check and the transition share a statement.
func (s *Postgres) EndIfEmpty(ctx context.Context, roomID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE rooms SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3 AND cardinality(members) = 0
	`, roomID, models.RoomStatusEnded, models.RoomStatusActive)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// IsMember reports whether userID is in the room's member set.
func (s *Postgres) IsMember(ctx context.Context, roomID, userID string) (bool, error) {
	var isMember bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM rooms WHERE id = $1 AND members @> ARRAY[$2])
	`, roomID, userID).Scan(&isMember)
	return isMember, err
}

// DeleteRoomCascade removes the room and all of its messages in one
// transaction. Irreversible.
func (s *Postgres) DeleteRoomCascade(ctx context.Context, roomID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM messages WHERE room_id = $1`, roomID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, roomID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// PurgeEndedRooms deletes rooms that ended more than retentionDays ago,
// together with their messages. Returns the number of rooms removed.
func (s *Postgres) PurgeEndedRooms(ctx context.Context, retentionDays int) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		DELETE FROM messages WHERE room_id IN (
			SELECT id::text FROM rooms
			WHERE status = $1 AND updated_at < now() - make_interval(days => $2)
		)
	`, models.RoomStatusEnded, retentionDays); err != nil {
		return 0, err
	}

	tag, err := tx.Exec(ctx, `
		DELETE FROM rooms WHERE status = $1 AND updated_at < now() - make_interval(days => $2)
	`, models.RoomStatusEnded, retentionDays)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
