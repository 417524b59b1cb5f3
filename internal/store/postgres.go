package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"voxroom/server/internal/models"
)

// Postgres is the durable document store. Rooms carry their member and
// moderator sets as array columns so every membership change is a single
// conditional statement: idempotent, commutative, and atomic at the row
// level. There is no read-modify-write anywhere in this package.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an existing connection pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Ping checks the database connection.
func (s *Postgres) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const userColumns = `id, email, display_name, password_hash, photo_url, bio, interests, following, followers, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.Password, &u.PhotoURL, &u.Bio,
		&u.Interests, &u.Following, &u.Followers, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

// CreateUser inserts a new user record.
func (s *Postgres) CreateUser(ctx context.Context, email, displayName, passwordHash string) (*models.User, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO users (email, display_name, password_hash)
		VALUES ($1, $2, $3)
		RETURNING %s
	`, userColumns), email, displayName, passwordHash)
	return scanUser(row)
}

// GetUserByID retrieves a user by id. Returns (nil, nil) when absent.
func (s *Postgres) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns), id)
	return scanUser(row)
}

// GetUserByEmail retrieves a user by email. Returns (nil, nil) when absent.
func (s *Postgres) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns), email)
	return scanUser(row)
}

// EmailExists reports whether an email is already registered.
func (s *Postgres) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

// ProfileUpdate carries the optional profile fields of an update. Nil
// pointers leave the stored value untouched.
type ProfileUpdate struct {
	DisplayName *string
	Bio         *string
	PhotoURL    *string
	Interests   []string
}

// UpdateProfile applies a partial profile update and returns the new row.
func (s *Postgres) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*models.User, error) {
	query := `UPDATE users SET updated_at = now()`
	args := []interface{}{id}
	n := 2

	if upd.DisplayName != nil {
		query += fmt.Sprintf(", display_name = $%d", n)
		args = append(args, *upd.DisplayName)
		n++
	}
	if upd.Bio != nil {
		query += fmt.Sprintf(", bio = $%d", n)
		args = append(args, *upd.Bio)
		n++
	}
	if upd.PhotoURL != nil {
		query += fmt.Sprintf(", photo_url = $%d", n)
		args = append(args, *upd.PhotoURL)
		n++
	}
	if upd.Interests != nil {
		query += fmt.Sprintf(", interests = $%d", n)
		args = append(args, upd.Interests)
		n++
	}

	query += fmt.Sprintf(" WHERE id = $1 RETURNING %s", userColumns)
	return scanUser(s.pool.QueryRow(ctx, query, args...))
}

// Follow adds target to the follower's following set and the follower to
// the target's followers set. Both are guarded array appends, so repeated
// calls converge to the same sets.
func (s *Postgres) Follow(ctx context.Context, followerID, targetID string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE users SET following = array_append(following, $2), updated_at = now()
		WHERE id = $1 AND NOT (following @> ARRAY[$2])
	`, followerID, targetID)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		UPDATE users SET followers = array_append(followers, $2), updated_at = now()
		WHERE id = $1 AND NOT (followers @> ARRAY[$2])
	`, targetID, followerID)
	return err
}

// Unfollow reverses Follow. Removing an absent element is a no-op.
func (s *Postgres) Unfollow(ctx context.Context, followerID, targetID string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE users SET following = array_remove(following, $2), updated_at = now()
		WHERE id = $1
	`, followerID, targetID)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		UPDATE users SET followers = array_remove(followers, $2), updated_at = now()
		WHERE id = $1
	`, targetID, followerID)
	return err
}
