package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"notepad/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "notepad:session:"

// RedisStore shares guest sessions between server instances. Each session is
// a JSON document whose key expires with the session.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// DialRedis parses a redis:// URL and verifies the connection.
func DialRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := r.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if s.Notes == nil {
		s.Notes = []models.GuestNote{}
	}
	return &s, nil
}

func (r *RedisStore) Create(ctx context.Context) (*Session, error) {
	s := New(uuid.New().String(), r.ttl)
	if err := r.Save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	s.ExpiresAt = time.Now().Add(r.ttl)
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := r.client.Set(ctx, keyPrefix+s.ID, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
