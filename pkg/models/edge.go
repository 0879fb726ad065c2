package models

// EdgeSpec is an edge as declared in the flow definition, with raw port names.
type EdgeSpec struct {
	ID            string `json:"id"`
	Source        string `json:"source"      validate:"required"`
	Target        string `json:"target"      validate:"required"`
	SourcePortRaw string `json:"source_port"`
	TargetPortRaw string `json:"target_port"`
}

// CanonicalEdge is an EdgeSpec whose port names have been folded onto the
// canonical namespace. Portal-derived edges are synthesized with a fresh ID
// and deduplicated with direct edges by Key.
type CanonicalEdge struct {
	ID         string `json:"id"`
	Source     string `json:"source"`
	Target     string `json:"target"`
	SourcePort string `json:"source_port"`
	TargetPort string `json:"target_port"`
	Synthetic  bool   `json:"synthetic,omitempty"` // true for portal bridges
}

// Canonicalize folds the edge's raw port names. Empty port names default to
// the data port.
func (e EdgeSpec) Canonicalize() CanonicalEdge {
	sourcePort := e.SourcePortRaw
	if sourcePort == "" {
		sourcePort = PortData
	}

	targetPort := e.TargetPortRaw
	if targetPort == "" {
		targetPort = PortData
	}

	return CanonicalEdge{
		ID:         e.ID,
		Source:     e.Source,
		Target:     e.Target,
		SourcePort: CanonicalizePort(sourcePort),
		TargetPort: CanonicalizePort(targetPort),
	}
}

// Key returns the composite identity used to deduplicate direct and
// portal-derived edges.
func (e CanonicalEdge) Key() string {
	return e.Source + ":" + e.SourcePort + ">" + e.Target + ":" + e.TargetPort
}
