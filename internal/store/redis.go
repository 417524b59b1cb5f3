package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"voxroom/server/internal/models"
)

const (
	// hotWindowSize is the number of messages kept per room in Redis.
	hotWindowSize = 100
	hotWindowTTL  = 24 * time.Hour
)

// Redis keeps the hot window of recent messages per room in a sorted set
// scored by send time, so the latest-100 read never touches Postgres.
// Entirely best-effort: a nil *Redis is a valid, inert receiver.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(ctx context.Context, redisURL string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Redis{client: client}, nil
}

// Close closes the Redis connection.
func (s *Redis) Close() error {
	if s == nil {
		return nil
	}
	return s.client.Close()
}

func roomMessagesKey(roomID string) string {
	return fmt.Sprintf("room:%s:messages", roomID)
}

// CacheMessage appends a message to the room's hot window and trims it to
// the window size.
func (s *Redis) CacheMessage(ctx context.Context, msg *models.Message) error {
	if s == nil {
		return nil
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	key := roomMessagesKey(msg.RoomID)
	pipe := s.client.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(msg.CreatedAt.UnixMilli()),
		Member: string(data),
	})
	pipe.ZRemRangeByRank(ctx, key, 0, int64(-hotWindowSize-1))
	pipe.Expire(ctx, key, hotWindowTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// RecentMessages returns up to limit cached messages, newest first.
// Returns (nil, nil) on an empty or missing window.
func (s *Redis) RecentMessages(ctx context.Context, roomID string, limit int) ([]models.Message, error) {
	if s == nil {
		return nil, nil
	}

	results, err := s.client.ZRevRange(ctx, roomMessagesKey(roomID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	var messages []models.Message
	for _, raw := range results {
		var m models.Message
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			continue
		}
		messages = append(messages, m)
	}
	return messages, nil
}

// DropRoom removes a room's hot window. Called on room deletion.
func (s *Redis) DropRoom(ctx context.Context, roomID string) error {
	if s == nil {
		return nil
	}
	return s.client.Del(ctx, roomMessagesKey(roomID)).Err()
}
