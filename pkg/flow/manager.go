package flow

import "sync"

// Manager tracks live executors by request ID so external surfaces (HTTP,
// CLI) can inspect, resume, and cancel runs.
type Manager struct {
	mu   sync.RWMutex
	runs map[string]*Executor
}

func NewManager() *Manager {
	return &Manager{runs: make(map[string]*Executor)}
}

// Add registers an executor under its request ID.
func (m *Manager) Add(e *Executor) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.runs[e.RequestID()] = e
}

// Get returns the executor for a request ID.
func (m *Manager) Get(requestID string) (*Executor, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.runs[requestID]

	return e, ok
}

// Remove drops an executor from the table. Finished runs stay registered
// until removed so their final snapshot remains queryable.
func (m *Manager) Remove(requestID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.runs, requestID)
}

// RequestIDs returns the IDs of all registered runs.
func (m *Manager) RequestIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.runs))
	for id := range m.runs {
		ids = append(ids, id)
	}

	return ids
}
