// Package web provides HTTP request and response types for the execution API.
package web

// StartExecutionRequest represents the request body for starting a flow run.
type StartExecutionRequest struct {
	TriggerData map[string]any `json:"trigger_data,omitempty"`
}

// StartExecutionResponse is returned when a run has been accepted.
type StartExecutionResponse struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
}

// SubmitInputRequest represents the request body for resuming a run that is
// waiting for user input. NodeID is optional; when omitted the value goes to
// whichever node is paused.
type SubmitInputRequest struct {
	NodeID string `json:"node_id,omitempty"`
	Value  any    `json:"value"`
}

// CancelExecutionResponse acknowledges a cancellation request.
type CancelExecutionResponse struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
}
