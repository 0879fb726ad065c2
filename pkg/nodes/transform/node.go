// Package transform provides a node that reshapes its inputs into named
// outputs via dotted-path selectors.
package transform

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/joeleaver/flowgrid/pkg/models"
	"github.com/joeleaver/flowgrid/pkg/protocol"
)

// TransformNode maps output names to dotted paths. The first path segment
// names an input port; when that input was not pushed, the node pulls it from
// its sole producer on demand.
type TransformNode struct {
	id      string
	mapping map[string]string
}

func NewTransformNode(id string, config map[string]any) (*TransformNode, error) {
	raw, ok := config["mapping"].(map[string]any)
	if !ok {
		return nil, errors.New("missing required field 'mapping'")
	}

	mapping := make(map[string]string, len(raw))

	for output, path := range raw {
		pathStr, ok := path.(string)
		if !ok || pathStr == "" {
			return nil, fmt.Errorf("mapping for output %q must be a non-empty path string", output)
		}

		mapping[output] = pathStr
	}

	return &TransformNode{id: id, mapping: mapping}, nil
}

func (n *TransformNode) ID() string {
	return n.id
}

func (n *TransformNode) Type() string {
	return "transform"
}

func (n *TransformNode) Run(ctx context.Context, api protocol.NodeAPI, in protocol.NodeInput) (models.NodeResult, error) {
	outputs := make(map[string]any, len(n.mapping))

	for output, path := range n.mapping {
		segments := strings.Split(path, ".")
		input := models.CanonicalizePort(segments[0])

		value, present := in.Inputs[input]
		if !present {
			if !api.Has(input) {
				return models.Failure(fmt.Sprintf("input %q is neither pushed nor pullable", input)), nil
			}

			pulled, err := api.Pull(ctx, input)
			if err != nil {
				return models.NodeResult{}, err
			}

			value = pulled
		}

		resolved, err := resolvePath(value, segments[1:])
		if err != nil {
			return models.Failure(fmt.Sprintf("path %q: %v", path, err)), nil
		}

		outputs[output] = resolved
	}

	if in.Context != nil {
		outputs[models.PortContext] = in.Context
	}

	return models.Success(outputs), nil
}

// resolvePath walks maps by key and slices by index.
func resolvePath(value any, segments []string) (any, error) {
	for _, segment := range segments {
		switch v := value.(type) {
		case map[string]any:
			next, ok := v[segment]
			if !ok {
				return nil, fmt.Errorf("key %q not found", segment)
			}

			value = next
		case []any:
			index, err := strconv.Atoi(segment)
			if err != nil || index < 0 || index >= len(v) {
				return nil, fmt.Errorf("index %q out of range", segment)
			}

			value = v[index]
		default:
			return nil, fmt.Errorf("cannot descend into %T with %q", value, segment)
		}
	}

	return value, nil
}
