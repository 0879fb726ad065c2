package flow

import "sort"

// Status is the derived run state exposed to external collaborators.
type Status string

const (
	StatusRunning         Status = "running"
	StatusWaitingForInput Status = "waitingForInput"
	StatusStopped         Status = "stopped"
)

// Snapshot is the point-in-time view of a run for external projection.
type Snapshot struct {
	RequestID     string   `json:"request_id"`
	Status        Status   `json:"status"`
	ActiveNodeIDs []string `json:"active_node_ids"`
	PausedNodeID  string   `json:"paused_node_id,omitempty"`
}

// Snapshot derives the current run state: cancelled wins, then any pending
// user-input wait, then running.
func (e *Executor) Snapshot() Snapshot {
	e.mu.Lock()

	active := make([]string, 0, len(e.inflight))
	for nodeID := range e.inflight {
		active = append(active, nodeID)
	}

	e.mu.Unlock()

	sort.Strings(active)

	snapshot := Snapshot{
		RequestID:     e.requestID,
		ActiveNodeIDs: active,
		PausedNodeID:  e.gate.PausedNode(),
	}

	switch {
	case e.gate.Cancelled():
		snapshot.Status = StatusStopped
	case e.gate.Waiting() || snapshot.PausedNodeID != "":
		snapshot.Status = StatusWaitingForInput
	default:
		snapshot.Status = StatusRunning
	}

	return snapshot
}
