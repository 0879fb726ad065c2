// Package cmd provides common initialization for command-line entrypoints.
package cmd

import (
	"log/slog"

	"github.com/joeleaver/flowgrid/pkg/registry"
)

// NewRegistry creates a node registry with all built-in node types
// registered.
func NewRegistry(logger *slog.Logger) *registry.Registry {
	reg := registry.NewRegistry(logger)
	reg.RegisterDefaultNodes()

	return reg
}
