// Package contexts owns the main execution context and the table of isolated
// execution contexts for one flow run, and the rules for which node outputs
// mutate which.
package contexts

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/joeleaver/flowgrid/pkg/models"
	"github.com/joeleaver/flowgrid/pkg/persistence"
)

// Observer receives a read-only snapshot after every mutation. Projection of
// the snapshot is entirely the observer's concern.
type Observer func(snapshot models.ContextSnapshot)

// Manager holds the single main context, keyed by the flow's request ID, and
// zero or more isolated contexts keyed by their own IDs. Isolated contexts
// are created and released only by explicit node action. Safe for concurrent
// use.
type Manager struct {
	mu        sync.Mutex
	requestID string
	main      *models.ExecutionContext
	isolated  map[string]*models.ExecutionContext
	store     persistence.SessionStore
	observer  Observer
	logger    *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithStore attaches a session store; the main context is flushed to it after
// every main-context mutation.
func WithStore(store persistence.SessionStore) Option {
	return func(m *Manager) { m.store = store }
}

// WithObserver attaches a snapshot observer.
func WithObserver(observer Observer) Option {
	return func(m *Manager) { m.observer = observer }
}

// NewManager seeds the main context from the caller-supplied initial state.
// The main context's ID always equals the flow's request ID; other
// collaborators bind to it by that stable ID.
func NewManager(requestID string, seed *models.ExecutionContext, logger *slog.Logger, opts ...Option) *Manager {
	if seed == nil {
		seed = &models.ExecutionContext{}
	}

	main := seed.Clone()
	main.ID = requestID
	main.Type = models.ContextTypeMain

	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		requestID: requestID,
		main:      main,
		isolated:  make(map[string]*models.ExecutionContext),
		logger:    logger.With("module", "contexts", "request_id", requestID),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Commit applies a node's returned context. A context typed main, or with no
// type at all, replaces the main context; an isolated context is stored in
// the isolated table under its own ID.
func (m *Manager) Commit(ctx context.Context, returned *models.ExecutionContext) {
	if returned == nil {
		return
	}

	m.mu.Lock()

	if returned.EffectiveType() == models.ContextTypeIsolated {
		if returned.ID == "" {
			m.mu.Unlock()
			m.logger.Warn("Dropping isolated context commit without context_id")

			return
		}

		clone := returned.Clone()
		clone.Type = models.ContextTypeIsolated
		m.isolated[clone.ID] = clone
		m.mu.Unlock()

		m.publish(ctx, false)

		return
	}

	clone := returned.Clone()
	clone.ID = m.requestID
	clone.Type = models.ContextTypeMain
	m.main = clone
	m.mu.Unlock()

	m.publish(ctx, true)
}

// Main returns a copy of the main context.
func (m *Manager) Main() *models.ExecutionContext {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.main.Clone()
}

// Isolated returns a copy of an isolated context by ID.
func (m *Manager) Isolated(id string) (*models.ExecutionContext, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.isolated[id]
	if !ok {
		return nil, false
	}

	return c.Clone(), true
}

// CreateIsolated creates a fresh isolated context, optionally remembering the
// parent to support returning to the caller after the branch completes.
func (m *Manager) CreateIsolated(ctx context.Context, provider, model, systemInstructions, parentID string) *models.ExecutionContext {
	created := &models.ExecutionContext{
		ID:                 "ctx-" + uuid.New().String()[:8],
		Type:               models.ContextTypeIsolated,
		Provider:           provider,
		Model:              model,
		SystemInstructions: systemInstructions,
		ParentID:           parentID,
	}

	m.mu.Lock()
	m.isolated[created.ID] = created.Clone()
	m.mu.Unlock()

	m.logger.Debug("Created isolated context", "context_id", created.ID, "parent_context_id", parentID)
	m.publish(ctx, false)

	return created
}

// ReleaseIsolated removes an isolated context from the table. Contexts are
// never garbage-collected by the engine; this is the only way out.
func (m *Manager) ReleaseIsolated(ctx context.Context, id string) bool {
	m.mu.Lock()

	_, ok := m.isolated[id]
	if ok {
		delete(m.isolated, id)
	}

	m.mu.Unlock()

	if ok {
		m.logger.Debug("Released isolated context", "context_id", id)
		m.publish(ctx, false)
	}

	return ok
}

// Parent resolves the context an isolated branch should return to: the main
// context when the recorded parent is the request ID or unknown, otherwise
// the parent isolated context.
func (m *Manager) Parent(isolatedID string) *models.ExecutionContext {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.isolated[isolatedID]
	if !ok || c.ParentID == "" || c.ParentID == m.requestID {
		return m.main.Clone()
	}

	if parent, ok := m.isolated[c.ParentID]; ok {
		return parent.Clone()
	}

	return m.main.Clone()
}

// Snapshot returns a read-only copy of both context tables.
func (m *Manager) Snapshot() models.ContextSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() models.ContextSnapshot {
	snapshot := models.ContextSnapshot{
		Main:     *m.main.Clone(),
		Isolated: make(map[string]models.ExecutionContext, len(m.isolated)),
	}

	for id, c := range m.isolated {
		snapshot.Isolated[id] = *c.Clone()
	}

	return snapshot
}

// Flush persists the current snapshot, best effort. Used at shutdown and on
// cancellation.
func (m *Manager) Flush(ctx context.Context) {
	m.publish(ctx, true)
}

func (m *Manager) publish(ctx context.Context, flush bool) {
	m.mu.Lock()
	snapshot := m.snapshotLocked()
	observer := m.observer
	store := m.store
	m.mu.Unlock()

	if observer != nil {
		observer(snapshot)
	}

	if !flush || store == nil {
		return
	}

	active, err := store.IsActiveSession(ctx, m.requestID)
	if err != nil {
		m.logger.Warn("Session store activity check failed", "error", err)

		return
	}

	if !active {
		m.logger.Debug("Skipping context flush for inactive session")

		return
	}

	if err := store.SaveContexts(ctx, m.requestID, snapshot); err != nil {
		m.logger.Warn("Context flush failed", "error", err)
	}
}
