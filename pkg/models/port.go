// Package models defines the core domain models for graph-based flow execution.
package models

import "strings"

// Canonical port names. Edges carry one of a small set of typed signals;
// the namespace stays open for node-specific output names.
const (
	PortContext = "context"
	PortData    = "data"
	PortTools   = "tools"
)

// portSynonyms maps folded port names to their canonical form. Folding is
// case- and separator-insensitive and ignores an in/out direction suffix, so
// "contextIn", "ctx_out" and "Context" all land on "context".
var portSynonyms = map[string]string{
	"context":      PortContext,
	"ctx":          PortContext,
	"conversation": PortContext,
	"data":         PortData,
	"payload":      PortData,
	"main":         PortData,
	"tools":        PortTools,
	"tool":         PortTools,
	"toolset":      PortTools,
}

// CanonicalizePort folds a raw port name onto its canonical form.
// Unrecognized names pass through unchanged.
func CanonicalizePort(raw string) string {
	folded := strings.ToLower(raw)
	folded = strings.NewReplacer("-", "", "_", "", " ", "").Replace(folded)

	if canonical, ok := portSynonyms[folded]; ok {
		return canonical
	}

	for _, suffix := range []string{"in", "out", "input", "output"} {
		trimmed := strings.TrimSuffix(folded, suffix)
		if trimmed == folded {
			continue
		}

		if canonical, ok := portSynonyms[trimmed]; ok {
			return canonical
		}
	}

	return raw
}

// MakePortID creates a globally unique port ID from node ID and port name.
func MakePortID(nodeID, portName string) string {
	return nodeID + ":" + portName
}

// ParsePortID parses a port ID in format "{node_id}:{port_name}" into components.
func ParsePortID(portID string) (string, string, bool) {
	for i := range len(portID) {
		if portID[i] == ':' {
			return portID[:i], portID[i+1:], true
		}
	}

	return "", "", false
}
