// Package persistence defines the session-store abstraction the engine
// flushes conversation state to.
package persistence

import (
	"context"
	"errors"

	"github.com/joeleaver/flowgrid/pkg/models"
)

// ErrSessionNotFound is returned when a request ID has no stored session.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore receives main-context flush requests after each main-context
// update and at shutdown or cancel. IsActiveSession lets implementations
// reject stale writes from runs that are no longer the active session.
type SessionStore interface {
	// Activate marks requestID as the active session for its flow.
	Activate(ctx context.Context, requestID string) error

	// SaveContexts persists a read-only snapshot of the context tables.
	SaveContexts(ctx context.Context, requestID string, snapshot models.ContextSnapshot) error

	// LoadContexts returns the last persisted snapshot for requestID.
	LoadContexts(ctx context.Context, requestID string) (models.ContextSnapshot, error)

	// IsActiveSession reports whether requestID is still the active session.
	IsActiveSession(ctx context.Context, requestID string) (bool, error)

	// HealthCheck verifies the store is reachable.
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}

// IsSessionNotFound reports whether err indicates a missing session.
func IsSessionNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}
