// Package graph builds canonical adjacency maps from a flow definition,
// transparently bridging portal node pairs.
package graph

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/joeleaver/flowgrid/pkg/models"
)

// ConfigurationError marks a structural problem in the flow definition:
// no or ambiguous entry node, or a missing/multiply-defined edge for a
// pulled input. Fatal at build or pull time, before any node runs.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "flow configuration error: " + e.Reason
}

// NewConfigurationError builds a ConfigurationError with a formatted reason.
func NewConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// IsConfigurationError reports whether err is a flow configuration error.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError

	return errors.As(err, &ce)
}

// Graph holds the canonicalized adjacency maps for one flow. Portal nodes
// never appear as graph-relevant hops; their edges are replaced by synthetic
// bridges at build time. Immutable after Build.
type Graph struct {
	flow     *models.Flow
	nodes    map[string]*models.NodeSpec
	incoming map[string][]models.CanonicalEdge
	outgoing map[string][]models.CanonicalEdge
	entryID  string
}

// Build canonicalizes edges, bridges portal pairs, deduplicates, populates
// adjacency maps, and resolves the entry node.
func Build(flow *models.Flow) (*Graph, error) {
	if err := flow.Validate(); err != nil {
		return nil, err
	}

	g := &Graph{
		flow:     flow,
		nodes:    make(map[string]*models.NodeSpec, len(flow.Nodes)),
		incoming: make(map[string][]models.CanonicalEdge),
		outgoing: make(map[string][]models.CanonicalEdge),
	}

	for _, n := range flow.Nodes {
		g.nodes[n.ID] = n
	}

	edges := g.bridgePortals(g.canonicalEdges())

	seen := make(map[string]bool, len(edges))
	for _, e := range edges {
		if seen[e.Key()] {
			continue
		}

		seen[e.Key()] = true
		g.outgoing[e.Source] = append(g.outgoing[e.Source], e)
		g.incoming[e.Target] = append(g.incoming[e.Target], e)
	}

	entryID, err := g.resolveEntry()
	if err != nil {
		return nil, err
	}

	g.entryID = entryID

	return g, nil
}

func (g *Graph) canonicalEdges() []models.CanonicalEdge {
	edges := make([]models.CanonicalEdge, 0, len(g.flow.Edges))
	for _, e := range g.flow.Edges {
		edges = append(edges, e.Canonicalize())
	}

	return edges
}

// bridgePortals joins edges arriving at portal inputs to edges departing
// portal outputs with the same portal ID, like-for-like on port names, and
// removes the portal nodes from the edge set. A portal ID with no matching
// output produces no bridge; that is deliberate, not an error.
func (g *Graph) bridgePortals(edges []models.CanonicalEdge) []models.CanonicalEdge {
	arriving := make(map[string][]models.CanonicalEdge)  // portal id -> edges into portal:input
	departing := make(map[string][]models.CanonicalEdge) // portal id -> edges out of portal:output

	for _, e := range edges {
		if target, ok := g.nodes[e.Target]; ok && target.Type == models.NodeTypePortalInput {
			arriving[target.PortalID()] = append(arriving[target.PortalID()], e)
		}

		if source, ok := g.nodes[e.Source]; ok && source.Type == models.NodeTypePortalOutput {
			departing[source.PortalID()] = append(departing[source.PortalID()], e)
		}
	}

	bridged := make([]models.CanonicalEdge, 0, len(edges))

	for _, e := range edges {
		if g.touchesPortal(e) {
			continue
		}

		bridged = append(bridged, e)
	}

	for portalID, ins := range arriving {
		for _, in := range ins {
			for _, out := range departing[portalID] {
				if in.SourcePort != out.TargetPort {
					continue
				}

				bridged = append(bridged, models.CanonicalEdge{
					ID:         "portal-" + uuid.New().String()[:8],
					Source:     in.Source,
					SourcePort: in.SourcePort,
					Target:     out.Target,
					TargetPort: out.TargetPort,
					Synthetic:  true,
				})
			}
		}
	}

	return bridged
}

func (g *Graph) touchesPortal(e models.CanonicalEdge) bool {
	if n, ok := g.nodes[e.Source]; ok && n.IsPortal() {
		return true
	}

	if n, ok := g.nodes[e.Target]; ok && n.IsPortal() {
		return true
	}

	return false
}

// resolveEntry finds the distinguished entry node, or falls back to the
// single node with zero incoming edges. Anything else is a configuration
// error.
func (g *Graph) resolveEntry() (string, error) {
	var entries []string

	for _, n := range g.flow.Nodes {
		if n.Type == models.NodeTypeEntry {
			entries = append(entries, n.ID)
		}
	}

	if len(entries) == 1 {
		return entries[0], nil
	}

	if len(entries) > 1 {
		return "", NewConfigurationError("multiple entry nodes defined: %v", entries)
	}

	var roots []string

	for _, n := range g.flow.Nodes {
		if n.IsPortal() {
			continue
		}

		if len(g.incoming[n.ID]) == 0 {
			roots = append(roots, n.ID)
		}
	}

	if len(roots) == 1 {
		return roots[0], nil
	}

	return "", NewConfigurationError("no entry node and %d nodes without incoming edges", len(roots))
}

// EntryID returns the node where a run begins.
func (g *Graph) EntryID() string {
	return g.entryID
}

// Node returns the node spec for an ID.
func (g *Graph) Node(id string) (*models.NodeSpec, bool) {
	n, ok := g.nodes[id]

	return n, ok
}

// IncomingTo returns incoming edges for a node, in edge-declaration order.
func (g *Graph) IncomingTo(nodeID string) []models.CanonicalEdge {
	return g.incoming[nodeID]
}

// OutgoingFrom returns outgoing edges for a node, in edge-declaration order.
func (g *Graph) OutgoingFrom(nodeID string) []models.CanonicalEdge {
	return g.outgoing[nodeID]
}

// IncomingByPort returns incoming edges targeting a specific input name.
func (g *Graph) IncomingByPort(nodeID, port string) []models.CanonicalEdge {
	var matches []models.CanonicalEdge

	for _, e := range g.incoming[nodeID] {
		if e.TargetPort == port {
			matches = append(matches, e)
		}
	}

	return matches
}

// AmbiguousInputs returns the input names on a node fed by two or more
// edges. Those inputs are push-only: an ambiguous pull is rejected, not
// guessed.
func (g *Graph) AmbiguousInputs(nodeID string) map[string]bool {
	counts := make(map[string]int)
	for _, e := range g.incoming[nodeID] {
		counts[e.TargetPort]++
	}

	ambiguous := make(map[string]bool)

	for port, n := range counts {
		if n >= 2 {
			ambiguous[port] = true
		}
	}

	return ambiguous
}

// HasContextInput reports whether any incoming edge feeds the node's context
// port.
func (g *Graph) HasContextInput(nodeID string) bool {
	return len(g.IncomingByPort(nodeID, models.PortContext)) > 0
}
