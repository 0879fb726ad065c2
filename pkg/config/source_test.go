package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeleaver/flowgrid/pkg/models"
)

func testFlow() *models.Flow {
	return &models.Flow{
		ID: "f",
		Nodes: []*models.NodeSpec{
			{ID: "logger", Type: "log", Config: map[string]any{"level": "info", "message": "hi"}},
			{ID: "bare", Type: "log"},
		},
	}
}

func TestStaticSource(t *testing.T) {
	s := NewStaticSource(testFlow())

	assert.Equal(t, "info", s.ConfigFor("logger")["level"])
	assert.Empty(t, s.ConfigFor("bare"))
	assert.Empty(t, s.ConfigFor("ghost"))
}

func writeOverrides(t *testing.T, path string, overrides map[string]map[string]any) {
	t.Helper()

	data, err := json.Marshal(overrides)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestFileSourceMergesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.json")
	writeOverrides(t, path, map[string]map[string]any{
		"logger": {"level": "debug"},
	})

	s, err := NewFileSource(NewStaticSource(testFlow()), path, nil)
	require.NoError(t, err)

	defer func() { _ = s.Close() }()

	merged := s.ConfigFor("logger")
	assert.Equal(t, "debug", merged["level"])
	// Untouched base keys survive the merge.
	assert.Equal(t, "hi", merged["message"])

	// Nodes without overrides get the base config as-is.
	assert.Equal(t, "info", NewStaticSource(testFlow()).ConfigFor("logger")["level"])
	assert.Empty(t, s.ConfigFor("bare"))
}

func TestFileSourceMissingFileYieldsBase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.json")

	s, err := NewFileSource(NewStaticSource(testFlow()), path, nil)
	require.NoError(t, err)

	defer func() { _ = s.Close() }()

	assert.Equal(t, "info", s.ConfigFor("logger")["level"])
}

func TestFileSourceReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.json")
	writeOverrides(t, path, map[string]map[string]any{
		"logger": {"level": "warn"},
	})

	s, err := NewFileSource(NewStaticSource(testFlow()), path, nil)
	require.NoError(t, err)

	defer func() { _ = s.Close() }()

	require.Equal(t, "warn", s.ConfigFor("logger")["level"])

	writeOverrides(t, path, map[string]map[string]any{
		"logger": {"level": "error"},
	})

	assert.Eventually(t, func() bool {
		return s.ConfigFor("logger")["level"] == "error"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestFileSourceIgnoresMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.json")
	writeOverrides(t, path, map[string]map[string]any{
		"logger": {"level": "debug"},
	})

	s, err := NewFileSource(NewStaticSource(testFlow()), path, nil)
	require.NoError(t, err)

	defer func() { _ = s.Close() }()

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	// The previous good overrides stay in effect.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, "debug", s.ConfigFor("logger")["level"])
}
