// Package gate provides the cooperative cancellation signal and the registry
// of suspended user-input waits for one flow run.
package gate

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrCancelled is returned by Check and by runs started after cancellation.
// The top-level run loop treats it as a benign stop, never a failure.
var ErrCancelled = errors.New("flow run cancelled")

// IsCancellation reports whether an error represents a cooperative stop
// rather than a real failure.
func IsCancellation(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}

type waiter struct {
	nodeID string
	ch     chan any
}

// Gate is the one-way Running -> Cancelled state machine plus the table of
// indefinitely suspended waits for external input. Safe for concurrent use.
type Gate struct {
	mu        sync.Mutex
	cancelled bool
	done      chan struct{}
	waiters   []*waiter
	paused    string
	onCancel  []func()
	logger    *slog.Logger
}

// New creates a gate in the Running state.
func New(logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}

	return &Gate{
		done:   make(chan struct{}),
		logger: logger.With("module", "gate"),
	}
}

// OnCancel registers a hook invoked once, after the flag is set. Used for the
// best-effort flush of context state at shutdown.
func (g *Gate) OnCancel(hook func()) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.onCancel = append(g.onCancel, hook)
}

// Cancel sets the flag and resolves every pending user-input wait with an
// empty value. Calling it again is a no-op.
func (g *Gate) Cancel() {
	g.mu.Lock()

	if g.cancelled {
		g.mu.Unlock()

		return
	}

	g.cancelled = true
	g.paused = ""
	waiters := g.waiters
	g.waiters = nil
	hooks := g.onCancel
	g.onCancel = nil
	close(g.done)
	g.mu.Unlock()

	for _, w := range waiters {
		w.ch <- nil
		close(w.ch)
	}

	for _, hook := range hooks {
		hook()
	}

	g.logger.Info("Flow run cancelled", "resolved_waits", len(waiters))
}

// Cancelled reports whether the flag is set. The flag never unsets.
func (g *Gate) Cancelled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.cancelled
}

// Check returns ErrCancelled once the flag is set. Node logic is expected to
// call it at suspension points.
func (g *Gate) Check() error {
	if g.Cancelled() {
		return ErrCancelled
	}

	return nil
}

// Done returns a channel closed on cancellation.
func (g *Gate) Done() <-chan struct{} {
	return g.done
}

// WaitForInput suspends until Resume or ResumeAny targets this node, the
// gate is cancelled (resolving with an empty value), or ctx ends. The run is
// recorded as paused at nodeID while waiting.
func (g *Gate) WaitForInput(ctx context.Context, nodeID string) (any, error) {
	g.mu.Lock()

	if g.cancelled {
		g.mu.Unlock()

		return nil, nil
	}

	w := &waiter{nodeID: nodeID, ch: make(chan any, 1)}
	g.waiters = append(g.waiters, w)
	g.paused = nodeID
	g.mu.Unlock()

	g.logger.Debug("Waiting for external input", "node_id", nodeID)

	select {
	case value := <-w.ch:
		return value, nil
	case <-ctx.Done():
		g.remove(w)

		return nil, ctx.Err()
	}
}

// Resume delivers a value to the wait registered for nodeID. Returns false
// when no such wait exists.
func (g *Gate) Resume(nodeID string, value any) bool {
	g.mu.Lock()

	for i, w := range g.waiters {
		if w.nodeID != nodeID {
			continue
		}

		g.waiters = append(g.waiters[:i], g.waiters[i+1:]...)
		g.clearPausedLocked(nodeID)
		g.mu.Unlock()

		w.ch <- value
		close(w.ch)

		return true
	}

	g.mu.Unlock()

	return false
}

// ResumeAny delivers a value to whichever node is currently waiting, for
// callers that do not track the exact node ID. Returns false when nothing is
// waiting.
func (g *Gate) ResumeAny(value any) bool {
	g.mu.Lock()

	if len(g.waiters) == 0 {
		g.mu.Unlock()

		return false
	}

	w := g.waiters[0]
	g.waiters = g.waiters[1:]
	g.clearPausedLocked(w.nodeID)
	g.mu.Unlock()

	w.ch <- value
	close(w.ch)

	return true
}

// PausedNode returns the node currently waiting for input, or "".
func (g *Gate) PausedNode() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.paused
}

// Waiting reports whether any user-input wait is pending.
func (g *Gate) Waiting() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return len(g.waiters) > 0
}

func (g *Gate) remove(target *waiter) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i, w := range g.waiters {
		if w == target {
			g.waiters = append(g.waiters[:i], g.waiters[i+1:]...)

			break
		}
	}

	g.clearPausedLocked(target.nodeID)
}

func (g *Gate) clearPausedLocked(nodeID string) {
	if g.paused != nodeID {
		return
	}

	g.paused = ""

	for _, w := range g.waiters {
		g.paused = w.nodeID

		break
	}
}
