package contexts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeleaver/flowgrid/pkg/models"
)

func TestNewManagerSeedsMainContext(t *testing.T) {
	seed := &models.ExecutionContext{
		ID:       "ignored",
		Provider: "acme",
		Model:    "acme-large",
		Messages: []models.Message{{Role: "system", Content: "be brief"}},
	}

	m := NewManager("req-1", seed, nil)

	main := m.Main()
	assert.Equal(t, "req-1", main.ID)
	assert.Equal(t, models.ContextTypeMain, main.Type)
	assert.Equal(t, "acme", main.Provider)
	assert.Len(t, main.Messages, 1)

	// The manager cloned the seed; mutating it later has no effect.
	seed.Provider = "other"
	assert.Equal(t, "acme", m.Main().Provider)
}

func TestCommitUntypedContextReplacesMain(t *testing.T) {
	m := NewManager("req-1", nil, nil)

	// No context type at all: treated as main.
	m.Commit(context.Background(), &models.ExecutionContext{
		ID:       "whatever",
		Messages: []models.Message{{Role: "user", Content: "hi"}},
	})

	main := m.Main()
	assert.Equal(t, "req-1", main.ID)
	assert.Equal(t, models.ContextTypeMain, main.Type)
	assert.Len(t, main.Messages, 1)
}

func TestCommitIsolatedContextKeepsMainUntouched(t *testing.T) {
	m := NewManager("req-1", nil, nil)

	m.Commit(context.Background(), &models.ExecutionContext{
		ID:       "ctx-branch",
		Type:     models.ContextTypeIsolated,
		Messages: []models.Message{{Role: "user", Content: "side quest"}},
	})

	assert.Empty(t, m.Main().Messages)

	isolated, ok := m.Isolated("ctx-branch")
	require.True(t, ok)
	assert.Len(t, isolated.Messages, 1)
}

func TestCommitIsolatedWithoutIDIsDropped(t *testing.T) {
	m := NewManager("req-1", nil, nil)

	m.Commit(context.Background(), &models.ExecutionContext{
		Type: models.ContextTypeIsolated,
	})

	assert.Empty(t, m.Snapshot().Isolated)
}

func TestCreateAndReleaseIsolated(t *testing.T) {
	m := NewManager("req-1", nil, nil)

	created := m.CreateIsolated(context.Background(), "acme", "acme-small", "focus", "req-1")
	require.NotEmpty(t, created.ID)
	assert.Equal(t, models.ContextTypeIsolated, created.Type)
	assert.Equal(t, "req-1", created.ParentID)

	_, ok := m.Isolated(created.ID)
	require.True(t, ok)

	assert.True(t, m.ReleaseIsolated(context.Background(), created.ID))

	_, ok = m.Isolated(created.ID)
	assert.False(t, ok)

	// Releasing twice is a no-op.
	assert.False(t, m.ReleaseIsolated(context.Background(), created.ID))
}

func TestParentResolution(t *testing.T) {
	m := NewManager("req-1", &models.ExecutionContext{Provider: "acme"}, nil)

	outer := m.CreateIsolated(context.Background(), "acme", "m1", "", "req-1")
	inner := m.CreateIsolated(context.Background(), "acme", "m2", "", outer.ID)

	// Parent of the outer branch is the main context.
	assert.Equal(t, "req-1", m.Parent(outer.ID).ID)

	// Parent of the nested branch is the outer isolated context.
	assert.Equal(t, outer.ID, m.Parent(inner.ID).ID)

	// Unknown IDs fall back to main.
	assert.Equal(t, "req-1", m.Parent("ctx-missing").ID)
}

func TestObserverSeesEveryMutation(t *testing.T) {
	var snapshots []models.ContextSnapshot

	m := NewManager("req-1", nil, nil, WithObserver(func(s models.ContextSnapshot) {
		snapshots = append(snapshots, s)
	}))

	ctx := context.Background()

	created := m.CreateIsolated(ctx, "", "", "", "")
	m.Commit(ctx, &models.ExecutionContext{Messages: []models.Message{{Role: "user", Content: "hi"}}})
	m.ReleaseIsolated(ctx, created.ID)

	require.Len(t, snapshots, 3)
	assert.Len(t, snapshots[0].Isolated, 1)
	assert.Len(t, snapshots[1].Main.Messages, 1)
	assert.Empty(t, snapshots[2].Isolated)
}

func TestMainReturnsCopy(t *testing.T) {
	m := NewManager("req-1", nil, nil)

	first := m.Main()
	first.Provider = "mutated"

	assert.Empty(t, m.Main().Provider)
}
