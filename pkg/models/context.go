package models

// ContextType distinguishes the single main conversation state from
// branch-local isolated states.
type ContextType string

const (
	ContextTypeMain     ContextType = "main"
	ContextTypeIsolated ContextType = "isolated"
)

// Message is a single conversation entry.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ExecutionContext carries the conversation state threaded through a flow.
// Exactly one main context exists per running flow, keyed by the flow's own
// request ID. Isolated contexts are keyed by their own ID and may remember a
// parent to support returning to the caller after a branch completes.
type ExecutionContext struct {
	ID                 string      `json:"context_id"`
	Type               ContextType `json:"context_type,omitempty"`
	Provider           string      `json:"provider,omitempty"`
	Model              string      `json:"model,omitempty"`
	SystemInstructions string      `json:"system_instructions,omitempty"`
	Messages           []Message   `json:"messages"`
	ParentID           string      `json:"parent_context_id,omitempty"`
}

// EffectiveType resolves the compatibility rule: an absent context type is
// treated as main.
func (c *ExecutionContext) EffectiveType() ContextType {
	if c.Type == ContextTypeIsolated {
		return ContextTypeIsolated
	}

	return ContextTypeMain
}

// Clone returns a deep copy. Contexts cross goroutine boundaries, so the
// manager only ever hands out copies.
func (c *ExecutionContext) Clone() *ExecutionContext {
	if c == nil {
		return nil
	}

	clone := *c
	clone.Messages = make([]Message, len(c.Messages))
	copy(clone.Messages, c.Messages)

	return &clone
}

// Append returns a copy of the context with an extra message.
func (c *ExecutionContext) Append(role, content string) *ExecutionContext {
	clone := c.Clone()
	clone.Messages = append(clone.Messages, Message{Role: role, Content: content})

	return clone
}

// ContextSnapshot is the read-only view published to the session store and
// external observers on every context mutation.
type ContextSnapshot struct {
	Main     ExecutionContext            `json:"main"`
	Isolated map[string]ExecutionContext `json:"isolated"`
}
