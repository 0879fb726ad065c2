package models

// Built-in node types with engine-level meaning. The entry type marks where a
// run begins; portal relays are bridged out of the graph and never mutate
// context.
const (
	NodeTypeEntry        = "entry"
	NodeTypePortalInput  = "portal:input"
	NodeTypePortalOutput = "portal:output"
)

// NodeSpec represents a node instance in a flow definition.
type NodeSpec struct {
	ID     string         `json:"id"   validate:"required"`
	Type   string         `json:"type" validate:"required"`
	Name   string         `json:"name"`
	Config map[string]any `json:"config"`
}

// IsPortal reports whether the node is a portal relay.
func (n *NodeSpec) IsPortal() bool {
	return n.Type == NodeTypePortalInput || n.Type == NodeTypePortalOutput
}

// PortalID returns the configured portal pairing ID, if any.
func (n *NodeSpec) PortalID() string {
	id, _ := n.Config["portal_id"].(string)

	return id
}

// NodeStatus defines the possible outcomes of a node execution.
type NodeStatus string

const (
	NodeStatusSuccess NodeStatus = "success"
	NodeStatusError   NodeStatus = "error"
)

// NodeResult is what a node function returns: a status plus named outputs.
// Only names actually present in Outputs are ever propagated downstream; an
// absent name is never synthesized as nil.
type NodeResult struct {
	Status  NodeStatus     `json:"status"`
	Error   string         `json:"error,omitempty"`
	Outputs map[string]any `json:"outputs,omitempty"`
}

// Success builds a successful result from named outputs.
func Success(outputs map[string]any) NodeResult {
	if outputs == nil {
		outputs = map[string]any{}
	}

	return NodeResult{Status: NodeStatusSuccess, Outputs: outputs}
}

// Failure builds an error result.
func Failure(message string) NodeResult {
	return NodeResult{Status: NodeStatusError, Error: message}
}

// Output returns a named output and whether it was present.
func (r NodeResult) Output(name string) (any, bool) {
	v, ok := r.Outputs[name]

	return v, ok
}

// Context returns the reserved context output, if the node returned one.
func (r NodeResult) Context() (*ExecutionContext, bool) {
	v, ok := r.Outputs[PortContext]
	if !ok {
		return nil, false
	}

	ec, ok := v.(*ExecutionContext)
	if !ok || ec == nil {
		return nil, false
	}

	return ec, true
}

// Data returns the reserved data output, or nil when absent.
func (r NodeResult) Data() any {
	return r.Outputs[PortData]
}
