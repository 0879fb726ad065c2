// Package lognode provides a node that records its data input on the
// process log and passes it through unchanged.
package lognode

import (
	"context"
	"errors"
	"log/slog"

	"github.com/joeleaver/flowgrid/pkg/models"
	"github.com/joeleaver/flowgrid/pkg/protocol"
)

type LogNode struct {
	id      string
	level   string
	message string
}

func NewLogNode(id string, config map[string]any) (*LogNode, error) {
	level, _ := config["level"].(string)
	if level == "" {
		level = "info"
	}

	switch level {
	case "debug", "info", "warn", "error":
	default:
		return nil, errors.New("level must be one of debug, info, warn, error")
	}

	message, _ := config["message"].(string)

	return &LogNode{id: id, level: level, message: message}, nil
}

func (n *LogNode) ID() string {
	return n.id
}

func (n *LogNode) Type() string {
	return "log"
}

func (n *LogNode) Run(ctx context.Context, _ protocol.NodeAPI, in protocol.NodeInput) (models.NodeResult, error) {
	logger := slog.Default().With("module", "log_node", "node_id", n.id)

	message := n.message
	if message == "" {
		message = "Log node"
	}

	switch n.level {
	case "debug":
		logger.DebugContext(ctx, message, "data", in.Data)
	case "warn":
		logger.WarnContext(ctx, message, "data", in.Data)
	case "error":
		logger.ErrorContext(ctx, message, "data", in.Data)
	default:
		logger.InfoContext(ctx, message, "data", in.Data)
	}

	outputs := map[string]any{}
	if in.Data != nil {
		outputs[models.PortData] = in.Data
	}

	if in.Context != nil {
		outputs[models.PortContext] = in.Context
	}

	return models.Success(outputs), nil
}
