// Package redisstore backs the session slot store with Redis so duplicate
// sign-ins are detected across server instances.
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v7"
)

// clearIfOwner deletes the slot only when it still holds the caller's
// session id. A newer session that already took the slot is left alone.
var clearIfOwner = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	end
	return 0
`)

// SlotStore keeps one active-session slot per user.
type SlotStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSlotStore connects to Redis and verifies the connection. The slot TTL
// should exceed the maximum session length so slots expire on their own if a
// server dies before clearing them.
func NewSlotStore(addr, password string, db int, ttl time.Duration) (*SlotStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if _, err := client.Ping().Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &SlotStore{client: client, ttl: ttl}, nil
}

func slotKey(userID int64) string {
	return fmt.Sprintf("session:slot:%d", userID)
}

// SetActive claims the user's slot for the given session, superseding any
// previous holder.
func (s *SlotStore) SetActive(ctx context.Context, userID int64, sessionID string) error {
	err := s.client.WithContext(ctx).Set(slotKey(userID), sessionID, s.ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set session slot: %w", err)
	}
	return nil
}

// Active returns the session id currently holding the user's slot, or ""
// when the slot is empty.
func (s *SlotStore) Active(ctx context.Context, userID int64) (string, error) {
	val, err := s.client.WithContext(ctx).Get(slotKey(userID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session slot: %w", err)
	}
	return val, nil
}

// Clear releases the slot if it is still held by sessionID.
func (s *SlotStore) Clear(ctx context.Context, userID int64, sessionID string) error {
	err := clearIfOwner.Run(s.client.WithContext(ctx), []string{slotKey(userID)}, sessionID).Err()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("failed to clear session slot: %w", err)
	}
	return nil
}

// Close shuts down the underlying client.
func (s *SlotStore) Close() error {
	return s.client.Close()
}
