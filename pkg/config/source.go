// Package config implements the live configuration source. Node
// configuration is fetched fresh on every invocation, so edits made through
// an override file take effect between runs of the same node.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/joeleaver/flowgrid/pkg/models"
	"github.com/joeleaver/flowgrid/pkg/protocol"
)

// StaticSource serves node configuration from the flow definition snapshot.
type StaticSource struct {
	flow *models.Flow
}

func NewStaticSource(flow *models.Flow) *StaticSource {
	return &StaticSource{flow: flow}
}

func (s *StaticSource) ConfigFor(nodeID string) map[string]any {
	if n, ok := s.flow.NodeByID(nodeID); ok && n.Config != nil {
		return n.Config
	}

	return map[string]any{}
}

// FileSource layers live-editable overrides from a JSON file over a base
// source. The file maps node IDs to partial configs; overridden keys win.
// The file is re-read whenever fsnotify reports a change.
type FileSource struct {
	base    protocol.ConfigSource
	path    string
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	mu        sync.RWMutex
	overrides map[string]map[string]any
}

// NewFileSource loads the override file and starts watching it. A missing
// file is not an error; it simply yields no overrides until it appears.
func NewFileSource(base protocol.ConfigSource, path string, logger *slog.Logger) (*FileSource, error) {
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}

	s := &FileSource{
		base:      base,
		path:      path,
		watcher:   watcher,
		logger:    logger.With("module", "config", "path", path),
		overrides: make(map[string]map[string]any),
	}

	s.reload()

	if err := watcher.Add(path); err != nil {
		s.logger.Debug("Override file not watchable yet", "error", err)
	}

	go s.watch()

	return s, nil
}

func (s *FileSource) watch() {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				s.reload()
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}

			s.logger.Warn("Config watcher error", "error", err)
		}
	}
}

func (s *FileSource) reload() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("Failed to read config overrides", "error", err)
		}

		return
	}

	var overrides map[string]map[string]any
	if err := json.Unmarshal(data, &overrides); err != nil {
		s.logger.Warn("Ignoring malformed config overrides", "error", err)

		return
	}

	s.mu.Lock()
	s.overrides = overrides
	s.mu.Unlock()

	s.logger.Debug("Reloaded config overrides", "nodes", len(overrides))
}

// ConfigFor merges the live overrides for a node over its base config.
func (s *FileSource) ConfigFor(nodeID string) map[string]any {
	base := s.base.ConfigFor(nodeID)

	s.mu.RLock()
	override := s.overrides[nodeID]
	s.mu.RUnlock()

	if len(override) == 0 {
		return base
	}

	merged := make(map[string]any, len(base)+len(override))
	maps.Copy(merged, base)
	maps.Copy(merged, override)

	return merged
}

// Close stops watching the override file.
func (s *FileSource) Close() error {
	return s.watcher.Close()
}
