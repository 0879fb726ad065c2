package registry

import (
	"github.com/joeleaver/flowgrid/pkg/nodes/entry"
	"github.com/joeleaver/flowgrid/pkg/nodes/isolate"
	"github.com/joeleaver/flowgrid/pkg/nodes/lognode"
	"github.com/joeleaver/flowgrid/pkg/nodes/portal"
	"github.com/joeleaver/flowgrid/pkg/nodes/transform"
	"github.com/joeleaver/flowgrid/pkg/nodes/userinput"
)

// RegisterDefaultNodes registers all built-in node factories.
func (r *Registry) RegisterDefaultNodes() {
	r.Register(entry.NewEntryNodeFactory())
	r.Register(lognode.NewLogNodeFactory())
	r.Register(transform.NewTransformNodeFactory())
	r.Register(userinput.NewUserInputNodeFactory())
	r.Register(portal.NewPortalInputFactory())
	r.Register(portal.NewPortalOutputFactory())
	r.Register(isolate.NewOpenNodeFactory())
	r.Register(isolate.NewCloseNodeFactory())
}
