// Package graph implements the stateful module style and its graph/state
// model.
//
// A graph-style module is a plain Go struct that embeds Object and owns its
// variables directly as exported fields. The package provides the
// split/merge pair that separates such a module into an immutable
// structural descriptor (GraphDef) and its dynamic state (State), plus the
// traversal utilities that operate on a module's whole ownership graph:
// SetInitializing and Reseed.
//
// Traversal contract: child modules, *variable.Variable leaves and
// *random.Streams bundles must live in exported fields (directly, or inside
// exported slices and string-keyed maps). Unexported fields are treated as
// static configuration and travel with the GraphDef.
package graph

import (
	"github.com/born-ml/weave/internal/tensor"
)

// Object carries the per-instance call-phase state every graph-style module
// needs. Embed it by value:
//
//	type Block struct {
//	    graph.Object
//	    W *variable.Variable
//	}
//
// The initializing flag is written only by SetInitializing, never by the
// module itself.
type Object struct {
	initializing bool
}

// graphState anchors the Node interface to embedded Objects.
func (o *Object) graphState() *Object { return o }

// Initializing reports whether the object is currently in its
// initialization phase.
func (o *Object) Initializing() bool {
	return o.initializing
}

// Node is implemented by every graph-style module, via the embedded Object.
type Node interface {
	graphState() *Object
}

// Module is a callable graph-style module. Forward may mutate the receiver;
// that is the point of the stateful style.
type Module interface {
	Node
	Forward(inputs ...*tensor.Tensor) (*tensor.Tensor, error)
}

// SetInitializing marks every object reachable from root as initializing or
// not. Each object is visited exactly once, even when it is referenced from
// several parents.
func SetInitializing(root Node, flag bool) {
	w := &walker{
		onNode: func(_ string, n Node) {
			n.graphState().initializing = flag
		},
	}
	w.walkNode("", root)
}
