// Package registry provides explicit node-type dispatch: concrete node
// factories registered in a lookup table, resolved per invocation.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/joeleaver/flowgrid/pkg/models"
	"github.com/joeleaver/flowgrid/pkg/protocol"
)

type Registry struct {
	logger    *slog.Logger
	factories map[string]protocol.NodeFactory
}

func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	return &Registry{
		logger:    logger.With("module", "registry"),
		factories: make(map[string]protocol.NodeFactory),
	}
}

// Register adds a node factory, keyed by its type ID.
func (r *Registry) Register(factory protocol.NodeFactory) {
	r.factories[factory.ID()] = factory
}

// Create instantiates a node function after validating the configuration
// against the factory's JSON schema.
func (r *Registry) Create(ctx context.Context, nodeType, id string, config map[string]any) (protocol.NodeFunction, error) {
	factory, ok := r.factories[nodeType]
	if !ok {
		return nil, fmt.Errorf("node type %q not registered", nodeType)
	}

	if err := ValidateConfig(factory.Schema(), config); err != nil {
		return nil, fmt.Errorf("invalid config for node %s (%s): %w", id, nodeType, err)
	}

	return factory.Create(ctx, id, config)
}

// Resolve implements protocol.NodeResolver over the registered factories.
func (r *Registry) Resolve(ctx context.Context, spec *models.NodeSpec, config map[string]any) (protocol.NodeFunction, error) {
	return r.Create(ctx, spec.Type, spec.ID, config)
}

// Available returns all registered factories, sorted by type ID.
func (r *Registry) Available() []protocol.NodeFactory {
	factories := make([]protocol.NodeFactory, 0, len(r.factories))
	for _, f := range r.factories {
		factories = append(factories, f)
	}

	sort.Slice(factories, func(i, j int) bool {
		return factories[i].ID() < factories[j].ID()
	})

	return factories
}
