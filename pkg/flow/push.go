package flow

import (
	"context"
	"maps"
	"sort"

	"github.com/joeleaver/flowgrid/pkg/gate"
	"github.com/joeleaver/flowgrid/pkg/models"
)

type delivery struct {
	target    string
	collected map[string]any
}

// pushOutputs forwards a settled node's outputs to its successors. Only
// outputs actually present in the result are propagated; edges on the
// pull-only tools port are skipped. Successors whose ambiguous inputs and
// required context have all arrived are launched fire-and-forget; the rest
// stay queued in their pending buffers.
func (e *Executor) pushOutputs(ctx context.Context, sourceID string, result models.NodeResult) {
	if e.gate.Cancelled() {
		return
	}

	var order []string

	byTarget := make(map[string]*delivery)

	for _, edge := range e.graph.OutgoingFrom(sourceID) {
		if edge.SourcePort == models.PortTools || edge.TargetPort == models.PortTools {
			continue
		}

		value, present := result.Output(edge.SourcePort)
		if !present {
			continue
		}

		d, ok := byTarget[edge.Target]
		if !ok {
			d = &delivery{target: edge.Target, collected: make(map[string]any)}
			byTarget[edge.Target] = d
			order = append(order, edge.Target)
		}

		d.collected[edge.TargetPort] = value
	}

	var starts []string

	seeds := make(map[string]map[string]any)

	e.mu.Lock()

	for _, target := range order {
		d := byTarget[target]

		// An in-flight successor absorbs the outputs into its live input set.
		if _, running := e.inflight[target]; running {
			if live, ok := e.live[target]; ok {
				maps.Copy(live, d.collected)
			}

			continue
		}

		buf, ok := e.pending[target]
		if !ok {
			buf = make(map[string]any)
			e.pending[target] = buf
		}

		maps.Copy(buf, d.collected)

		if e.readyLocked(target, buf) {
			starts = append(starts, target)
			seeds[target] = buf
			delete(e.pending, target)
		}
	}

	e.mu.Unlock()

	// Context-fed successors start first. This is a tie-break heuristic, not
	// an ordering guarantee.
	sort.SliceStable(starts, func(i, j int) bool {
		_, ci := seeds[starts[i]][models.PortContext]
		_, cj := seeds[starts[j]][models.PortContext]

		return ci && !cj
	})

	for _, target := range starts {
		seed := seeds[target]

		e.wg.Add(1)

		go func() {
			defer e.wg.Done()

			if _, err := e.Execute(ctx, target, seed, sourceID, false); err != nil && !gate.IsCancellation(err) {
				e.logger.ErrorContext(ctx, "Successor run failed",
					"node_id", target,
					"source_node", sourceID,
					"error", err,
				)
			}
		}()
	}
}

// readyLocked decides whether a node is safe to start from its pending
// buffer: every input name fed by two or more edges must be present, and a
// node with a declared context input needs the context value specifically.
// Single-edge inputs can be pulled on demand and do not block the start.
func (e *Executor) readyLocked(target string, buf map[string]any) bool {
	for name := range e.graph.AmbiguousInputs(target) {
		if _, ok := buf[name]; !ok {
			return false
		}
	}

	if e.graph.HasContextInput(target) {
		if _, ok := buf[models.PortContext]; !ok {
			return false
		}
	}

	return true
}
