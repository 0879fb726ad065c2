// Package redisstore provides a Redis-backed session store.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/joeleaver/flowgrid/pkg/models"
	"github.com/joeleaver/flowgrid/pkg/persistence"
)

const (
	sessionKeyPrefix = "flowgrid:session:"
	activeKey        = "flowgrid:session:active"
)

// Store implements persistence.SessionStore on Redis. Snapshots are stored
// as JSON strings under a per-request key.
type Store struct {
	client *redis.Client
	logger *slog.Logger
}

// NewStore connects to Redis using a redis:// URL and verifies the
// connection.
func NewStore(ctx context.Context, logger *slog.Logger, redisURL string) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Store{
		client: client,
		logger: logger.With("module", "redisstore"),
	}, nil
}

func sessionKey(requestID string) string {
	return sessionKeyPrefix + requestID
}

// Activate marks requestID as the active session.
func (s *Store) Activate(ctx context.Context, requestID string) error {
	if err := s.client.Set(ctx, activeKey, requestID, 0).Err(); err != nil {
		return fmt.Errorf("failed to activate session %s: %w", requestID, err)
	}

	return nil
}

// SaveContexts persists the context snapshot for a request.
func (s *Store) SaveContexts(ctx context.Context, requestID string, snapshot models.ContextSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode context snapshot: %w", err)
	}

	if err := s.client.Set(ctx, sessionKey(requestID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save session %s: %w", requestID, err)
	}

	return nil
}

// LoadContexts returns the last persisted snapshot for a request.
func (s *Store) LoadContexts(ctx context.Context, requestID string) (models.ContextSnapshot, error) {
	var snapshot models.ContextSnapshot

	data, err := s.client.Get(ctx, sessionKey(requestID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return snapshot, persistence.ErrSessionNotFound
	}

	if err != nil {
		return snapshot, fmt.Errorf("failed to load session %s: %w", requestID, err)
	}

	if err := json.Unmarshal(data, &snapshot); err != nil {
		return snapshot, fmt.Errorf("failed to decode session %s: %w", requestID, err)
	}

	return snapshot, nil
}

// IsActiveSession reports whether requestID is the active session.
func (s *Store) IsActiveSession(ctx context.Context, requestID string) (bool, error) {
	active, err := s.client.Get(ctx, activeKey).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("failed to read active session: %w", err)
	}

	return active == requestID, nil
}

// HealthCheck pings Redis.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (s *Store) Close(_ context.Context) error {
	return s.client.Close()
}
