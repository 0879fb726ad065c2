// Package postgresql provides a PostgreSQL-backed session store.
package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"github.com/joeleaver/flowgrid/pkg/models"
	"github.com/joeleaver/flowgrid/pkg/persistence"
	"github.com/joeleaver/flowgrid/pkg/persistence/sqlbase"
)

var migrations = map[int]string{
	1: `
		CREATE TABLE IF NOT EXISTS flow_sessions (
			request_id TEXT PRIMARY KEY,
			contexts JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	2: `
		CREATE TABLE IF NOT EXISTS active_session (
			singleton BOOLEAN PRIMARY KEY DEFAULT TRUE CHECK (singleton),
			request_id TEXT NOT NULL,
			activated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
}

// Store implements persistence.SessionStore on PostgreSQL. Context snapshots
// are stored as JSONB, one row per request.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore connects to the database, verifies the connection and runs
// pending schema migrations.
func NewStore(ctx context.Context, logger *slog.Logger, databaseURL string) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With("module", "postgresql")

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db, logger: logger}

	manager := sqlbase.NewMigrationManager(logger, db, migrations)
	if err := manager.RunMigrations(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

// Activate records requestID as the single active session.
func (s *Store) Activate(ctx context.Context, requestID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO active_session (singleton, request_id, activated_at)
		VALUES (TRUE, $1, NOW())
		ON CONFLICT (singleton) DO UPDATE SET request_id = $1, activated_at = NOW()`,
		requestID)
	if err != nil {
		return fmt.Errorf("failed to activate session %s: %w", requestID, err)
	}

	return nil
}

// SaveContexts upserts the context snapshot for a request.
func (s *Store) SaveContexts(ctx context.Context, requestID string, snapshot models.ContextSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode context snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO flow_sessions (request_id, contexts, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (request_id) DO UPDATE SET contexts = $2, updated_at = NOW()`,
		requestID, data)
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", requestID, err)
	}

	return nil
}

// LoadContexts returns the last persisted snapshot for a request.
func (s *Store) LoadContexts(ctx context.Context, requestID string) (models.ContextSnapshot, error) {
	var snapshot models.ContextSnapshot

	var data []byte

	err := s.db.QueryRowContext(ctx,
		`SELECT contexts FROM flow_sessions WHERE request_id = $1`,
		requestID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
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
	var active string

	err := s.db.QueryRowContext(ctx, `SELECT request_id FROM active_session`).Scan(&active)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("failed to read active session: %w", err)
	}

	return active == requestID, nil
}

// HealthCheck pings the database.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection pool.
func (s *Store) Close(_ context.Context) error {
	return s.db.Close()
}
