package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrNoSession = errors.New("no active session")

// TokenStore maps opaque session tokens to user ids.
type TokenStore interface {
	Get(ctx context.Context, token string) (uuid.UUID, error)
	Set(ctx context.Context, token string, userID uuid.UUID) error
	Delete(ctx context.Context, token string) error
}

func NewRedisTokenStore(client *redis.Client, ttl time.Duration) *RedisTokenStore {
	return &RedisTokenStore{
		client: client,
		ttl:    ttl,
	}
}

type RedisTokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

func (r *RedisTokenStore) Get(ctx context.Context, token string) (uuid.UUID, error) {
	val, err := r.client.Get(ctx, sessionKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, ErrNoSession
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("redis get failed: %w", err)
	}

	userID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, fmt.Errorf("malformed session value: %w", err)
	}
	return userID, nil
}

func (r *RedisTokenStore) Set(ctx context.Context, token string, userID uuid.UUID) error {
	if err := r.client.Set(ctx, sessionKey(token), userID.String(), r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisTokenStore) Delete(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}
