package transform

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeleaver/flowgrid/pkg/contexts"
	"github.com/joeleaver/flowgrid/pkg/models"
	"github.com/joeleaver/flowgrid/pkg/protocol"
)

type stubAPI struct {
	manager *contexts.Manager
	pulls   map[string]any
}

func (a *stubAPI) Pull(_ context.Context, input string) (any, error) {
	return a.pulls[models.CanonicalizePort(input)], nil
}

func (a *stubAPI) Has(input string) bool {
	_, ok := a.pulls[models.CanonicalizePort(input)]

	return ok
}

func (a *stubAPI) WaitForInput(context.Context) (any, error) { return nil, nil }
func (a *stubAPI) Contexts() *contexts.Manager               { return a.manager }
func (a *stubAPI) Check() error                              { return nil }
func (a *stubAPI) NodeExecutionID() string                   { return "nexec-test" }
func (a *stubAPI) EmitContent(string)                        {}
func (a *stubAPI) EmitToolStarted(string)                    {}
func (a *stubAPI) EmitToolFinished(string, time.Duration)    {}
func (a *stubAPI) EmitToolFailed(string, error)              {}
func (a *stubAPI) EmitUsage(string, string, int, int)        {}
func (a *stubAPI) EmitRateLimited(string, time.Duration)     {}

func TestTransformPushedInput(t *testing.T) {
	n, err := NewTransformNode("t", map[string]any{
		"mapping": map[string]any{
			"name":  "data.user.name",
			"first": "data.items.0",
		},
	})
	require.NoError(t, err)

	payload := map[string]any{
		"user":  map[string]any{"name": "ada"},
		"items": []any{"alpha", "beta"},
	}

	result, err := n.Run(context.Background(), &stubAPI{}, protocol.NodeInput{
		Inputs: map[string]any{models.PortData: payload},
		Data:   payload,
	})
	require.NoError(t, err)
	require.Equal(t, models.NodeStatusSuccess, result.Status)
	assert.Equal(t, "ada", result.Outputs["name"])
	assert.Equal(t, "alpha", result.Outputs["first"])
}

func TestTransformPullsMissingInput(t *testing.T) {
	n, err := NewTransformNode("t", map[string]any{
		"mapping": map[string]any{"out": "data.value"},
	})
	require.NoError(t, err)

	api := &stubAPI{pulls: map[string]any{
		models.PortData: map[string]any{"value": 7},
	}}

	result, err := n.Run(context.Background(), api, protocol.NodeInput{})
	require.NoError(t, err)
	require.Equal(t, models.NodeStatusSuccess, result.Status)
	assert.Equal(t, 7, result.Outputs["out"])
}

func TestTransformUnpullableInputFails(t *testing.T) {
	n, err := NewTransformNode("t", map[string]any{
		"mapping": map[string]any{"out": "data.value"},
	})
	require.NoError(t, err)

	result, err := n.Run(context.Background(), &stubAPI{}, protocol.NodeInput{})
	require.NoError(t, err)
	assert.Equal(t, models.NodeStatusError, result.Status)
}

func TestTransformBadPathFails(t *testing.T) {
	n, err := NewTransformNode("t", map[string]any{
		"mapping": map[string]any{"out": "data.missing.deep"},
	})
	require.NoError(t, err)

	result, err := n.Run(context.Background(), &stubAPI{}, protocol.NodeInput{
		Inputs: map[string]any{models.PortData: map[string]any{"present": true}},
	})
	require.NoError(t, err)
	assert.Equal(t, models.NodeStatusError, result.Status)
	assert.Contains(t, result.Error, "missing")
}

func TestTransformPassesContextThrough(t *testing.T) {
	n, err := NewTransformNode("t", map[string]any{
		"mapping": map[string]any{"out": "data"},
	})
	require.NoError(t, err)

	ec := &models.ExecutionContext{ID: "req-1"}

	result, err := n.Run(context.Background(), &stubAPI{}, protocol.NodeInput{
		Inputs:  map[string]any{models.PortData: "x"},
		Context: ec,
	})
	require.NoError(t, err)

	out, ok := result.Context()
	require.True(t, ok)
	assert.Equal(t, "req-1", out.ID)
}

func TestNewTransformNodeRequiresMapping(t *testing.T) {
	_, err := NewTransformNode("t", map[string]any{})
	assert.Error(t, err)

	_, err = NewTransformNode("t", map[string]any{
		"mapping": map[string]any{"out": ""},
	})
	assert.Error(t, err)
}
