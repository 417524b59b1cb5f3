package database

import "context"

// Membership and role sets live on the room row as text arrays so every
// mutation is a single atomic statement, never a read-modify-write.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	email         TEXT NOT NULL UNIQUE,
	display_name  TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	photo_url     TEXT NOT NULL DEFAULT '',
	bio           TEXT NOT NULL DEFAULT '',
	interests     TEXT[] NOT NULL DEFAULT '{}',
	following     TEXT[] NOT NULL DEFAULT '{}',
	followers     TEXT[] NOT NULL DEFAULT '{}',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS rooms (
	id               UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	title            TEXT NOT NULL,
	description      TEXT NOT NULL DEFAULT '',
	topic            TEXT NOT NULL DEFAULT 'General',
	is_private       BOOLEAN NOT NULL DEFAULT false,
	created_by       TEXT NOT NULL,
	members          TEXT[] NOT NULL DEFAULT '{}',
	moderators       TEXT[] NOT NULL DEFAULT '{}',
	max_participants INT NOT NULL DEFAULT 0,
	status           TEXT NOT NULL DEFAULT 'active',
	scheduled_for    TIMESTAMPTZ,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_rooms_status ON rooms (status);

CREATE TABLE IF NOT EXISTS messages (
	id           TEXT PRIMARY KEY,
	room_id      TEXT NOT NULL,
	sender_id    TEXT NOT NULL,
	sender_name  TEXT NOT NULL,
	sender_photo TEXT NOT NULL DEFAULT '',
	content      TEXT NOT NULL,
	type         TEXT NOT NULL DEFAULT 'text',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_messages_room_created ON messages (room_id, created_at DESC);
`

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context) error {
	_, err := Pool.Exec(ctx, schema)
	return err
}
