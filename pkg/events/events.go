// Package events defines the event types emitted during flow execution.
package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

// Bus topic for flow execution events.
const Topic = "flowgrid.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Run lifecycle events.
	ExecutionStartedEvent   EventType = "execution.started"
	ExecutionFinishedEvent  EventType = "execution.finished"
	ExecutionFailedEvent    EventType = "execution.failed"
	ExecutionCancelledEvent EventType = "execution.cancelled"
	ExecutionPausedEvent    EventType = "execution.paused"
	ExecutionResumedEvent   EventType = "execution.resumed"

	// Node lifecycle events.
	NodeStartedEvent  EventType = "node.started"
	NodeFinishedEvent EventType = "node.finished"
	NodeFailedEvent   EventType = "node.failed"

	// Node-raised sub-events.
	ContentChunkEvent     EventType = "node.content.chunk"
	ToolCallStartedEvent  EventType = "node.tool.started"
	ToolCallFinishedEvent EventType = "node.tool.finished"
	ToolCallFailedEvent   EventType = "node.tool.failed"
	UsageReportedEvent    EventType = "node.usage"
	RateLimitedEvent      EventType = "node.rate_limited"
)

// Event is anything the engine can emit to a sink.
type Event interface {
	GetType() EventType
}

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	FlowID    string         `json:"flow_id"`
	RequestID string         `json:"request_id"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NodeEvent extends BaseEvent with node identity. NodeExecutionID is freshly
// generated per invocation so repeated or concurrent runs of the same node
// stay distinguishable.
type NodeEvent struct {
	BaseEvent

	NodeID          string `json:"node_id"`
	NodeExecutionID string `json:"node_execution_id"`
}

type ExecutionStarted struct {
	BaseEvent

	EntryNodeID string         `json:"entry_node_id"`
	TriggerData map[string]any `json:"trigger_data,omitempty"`
}

func (e ExecutionStarted) GetType() EventType { return ExecutionStartedEvent }

type ExecutionFinished struct {
	BaseEvent

	DurationMs int64 `json:"duration_ms"`
}

func (e ExecutionFinished) GetType() EventType { return ExecutionFinishedEvent }

type ExecutionFailed struct {
	BaseEvent

	NodeID     string `json:"node_id,omitempty"`
	Error      string `json:"error"`
	DurationMs int64  `json:"duration_ms"`
}

func (e ExecutionFailed) GetType() EventType { return ExecutionFailedEvent }

type ExecutionCancelled struct {
	BaseEvent

	DurationMs int64 `json:"duration_ms"`
}

func (e ExecutionCancelled) GetType() EventType { return ExecutionCancelledEvent }

type ExecutionPaused struct {
	NodeEvent

	Prompt string `json:"prompt,omitempty"`
}

func (e ExecutionPaused) GetType() EventType { return ExecutionPausedEvent }

type ExecutionResumed struct {
	NodeEvent
}

func (e ExecutionResumed) GetType() EventType { return ExecutionResumedEvent }

type NodeStarted struct {
	NodeEvent

	NodeType string `json:"node_type"`
	CallerID string `json:"caller_id,omitempty"`
	Pulled   bool   `json:"pulled,omitempty"`
}

func (e NodeStarted) GetType() EventType { return NodeStartedEvent }

type NodeFinished struct {
	NodeEvent

	NodeType   string   `json:"node_type"`
	OutputKeys []string `json:"output_keys,omitempty"`
	DurationMs int64    `json:"duration_ms"`
}

func (e NodeFinished) GetType() EventType { return NodeFinishedEvent }

type NodeFailed struct {
	NodeEvent

	NodeType   string `json:"node_type"`
	Error      string `json:"error"`
	DurationMs int64  `json:"duration_ms"`
}

func (e NodeFailed) GetType() EventType { return NodeFailedEvent }

type ContentChunk struct {
	NodeEvent

	Content string `json:"content"`
}

func (e ContentChunk) GetType() EventType { return ContentChunkEvent }

type ToolCallStarted struct {
	NodeEvent

	Tool string `json:"tool"`
}

func (e ToolCallStarted) GetType() EventType { return ToolCallStartedEvent }

type ToolCallFinished struct {
	NodeEvent

	Tool       string `json:"tool"`
	DurationMs int64  `json:"duration_ms"`
}

func (e ToolCallFinished) GetType() EventType { return ToolCallFinishedEvent }

type ToolCallFailed struct {
	NodeEvent

	Tool  string `json:"tool"`
	Error string `json:"error"`
}

func (e ToolCallFailed) GetType() EventType { return ToolCallFailedEvent }

type UsageReported struct {
	NodeEvent

	Provider         string `json:"provider,omitempty"`
	Model            string `json:"model,omitempty"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
}

func (e UsageReported) GetType() EventType { return UsageReportedEvent }

type RateLimited struct {
	NodeEvent

	Provider     string `json:"provider,omitempty"`
	RetryAfterMs int64  `json:"retry_after_ms,omitempty"`
}

func (e RateLimited) GetType() EventType { return RateLimitedEvent }

func NewBaseEvent(eventType EventType, flowID, requestID string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		FlowID:    flowID,
		RequestID: requestID,
	}
}

// NewNodeEvent builds the node-tagged base for node lifecycle and sub-events.
func NewNodeEvent(eventType EventType, flowID, requestID, nodeID, nodeExecutionID string) NodeEvent {
	return NodeEvent{
		BaseEvent:       NewBaseEvent(eventType, flowID, requestID),
		NodeID:          nodeID,
		NodeExecutionID: nodeExecutionID,
	}
}
