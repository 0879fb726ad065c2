// Package file provides a file-system session store, suitable for local
// development and tests.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joeleaver/flowgrid/pkg/models"
	"github.com/joeleaver/flowgrid/pkg/persistence"
)

// Store implements persistence.SessionStore on a directory: one JSON file
// per request ID plus an "active" marker file.
type Store struct {
	root string
}

// NewStore creates a session store rooted at the given directory.
func NewStore(root string) (*Store, error) {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	if err := os.MkdirAll(cleanRoot, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create session store root: %w", err)
	}

	return &Store{root: cleanRoot}, nil
}

func (s *Store) sessionPath(requestID string) string {
	return filepath.Join(s.root, requestID+".json")
}

func (s *Store) activePath() string {
	return filepath.Join(s.root, "active")
}

// Activate marks requestID as the active session.
func (s *Store) Activate(_ context.Context, requestID string) error {
	if err := os.WriteFile(s.activePath(), []byte(requestID), 0o644); err != nil {
		return fmt.Errorf("failed to mark active session: %w", err)
	}

	return nil
}

// SaveContexts persists the context snapshot for a request.
func (s *Store) SaveContexts(_ context.Context, requestID string, snapshot models.ContextSnapshot) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode context snapshot: %w", err)
	}

	if err := os.WriteFile(s.sessionPath(requestID), data, 0o644); err != nil {
		return fmt.Errorf("failed to write session %s: %w", requestID, err)
	}

	return nil
}

// LoadContexts returns the last persisted snapshot for a request.
func (s *Store) LoadContexts(_ context.Context, requestID string) (models.ContextSnapshot, error) {
	var snapshot models.ContextSnapshot

	data, err := os.ReadFile(s.sessionPath(requestID))
	if err != nil {
		if os.IsNotExist(err) {
			return snapshot, persistence.ErrSessionNotFound
		}

		return snapshot, fmt.Errorf("failed to read session %s: %w", requestID, err)
	}

	if err := json.Unmarshal(data, &snapshot); err != nil {
		return snapshot, fmt.Errorf("failed to decode session %s: %w", requestID, err)
	}

	return snapshot, nil
}

// IsActiveSession reports whether requestID is the currently active session.
func (s *Store) IsActiveSession(_ context.Context, requestID string) (bool, error) {
	data, err := os.ReadFile(s.activePath())
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, fmt.Errorf("failed to read active session marker: %w", err)
	}

	return strings.TrimSpace(string(data)) == requestID, nil
}

// HealthCheck verifies the store root exists.
func (s *Store) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(s.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs cleanup; nothing to do for files.
func (s *Store) Close(_ context.Context) error {
	return nil
}
