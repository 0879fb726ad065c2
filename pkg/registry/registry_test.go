package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeleaver/flowgrid/pkg/models"
	"github.com/joeleaver/flowgrid/pkg/protocol"
)

type mockFactory struct {
	id     string
	schema map[string]any
}

func (f *mockFactory) Create(_ context.Context, id string, _ map[string]any) (protocol.NodeFunction, error) {
	return &mockNode{id: id}, nil
}

func (f *mockFactory) ID() string             { return f.id }
func (f *mockFactory) Name() string           { return "Mock" }
func (f *mockFactory) Description() string    { return "Mock node for tests" }
func (f *mockFactory) Schema() map[string]any { return f.schema }

type mockNode struct {
	id string
}

func (n *mockNode) ID() string   { return n.id }
func (n *mockNode) Type() string { return "mock" }

func (n *mockNode) Run(_ context.Context, _ protocol.NodeAPI, _ protocol.NodeInput) (models.NodeResult, error) {
	return models.Success(nil), nil
}

func TestRegisterAndCreate(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Register(&mockFactory{id: "mock"})

	fn, err := reg.Create(context.Background(), "mock", "node-1", nil)
	require.NoError(t, err)
	assert.Equal(t, "node-1", fn.ID())
}

func TestCreateUnknownType(t *testing.T) {
	reg := NewRegistry(nil)

	_, err := reg.Create(context.Background(), "ghost", "node-1", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

func TestCreateValidatesConfigSchema(t *testing.T) {
	reg := NewRegistry(nil)
	reg.RegisterDefaultNodes()

	// The log node's level is an enum; a bogus value fails validation.
	_, err := reg.Create(context.Background(), "log", "logger", map[string]any{"level": "loud"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestRegisterDefaultNodes(t *testing.T) {
	reg := NewRegistry(nil)
	reg.RegisterDefaultNodes()

	var ids []string
	for _, f := range reg.Available() {
		ids = append(ids, f.ID())
	}

	for _, want := range []string{
		"entry",
		"log",
		"transform",
		"userinput",
		models.NodeTypePortalInput,
		models.NodeTypePortalOutput,
		"context:isolate",
		"context:release",
	} {
		assert.Contains(t, ids, want)
	}
}

func TestResolveUsesSpecType(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Register(&mockFactory{id: "mock"})

	spec := &models.NodeSpec{ID: "node-1", Type: "mock"}

	fn, err := reg.Resolve(context.Background(), spec, nil)
	require.NoError(t, err)
	assert.Equal(t, "node-1", fn.ID())
}

func TestValidateConfigNilSchemaAcceptsAnything(t *testing.T) {
	assert.NoError(t, ValidateConfig(nil, map[string]any{"whatever": true}))
}

func TestValidateConfigRejectsMissingRequired(t *testing.T) {
	schema := map[string]any{
		"type":     "object",
		"required": []string{"portal_id"},
		"properties": map[string]any{
			"portal_id": map[string]any{"type": "string"},
		},
	}

	assert.Error(t, ValidateConfig(schema, map[string]any{}))
	assert.NoError(t, ValidateConfig(schema, map[string]any{"portal_id": "jump"}))
}
