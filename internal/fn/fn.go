// Package fn implements the immutable module style.
//
// An fn-style module is a pure declarative descriptor: it holds
// configuration, never state. All state is threaded explicitly through the
// Init and Apply drivers, which run the module's Forward under a Scope. The
// Scope is where variables are declared during initialization and looked up
// during apply, and where per-call pseudo-random keys are drawn.
package fn

import (
	"errors"

	"github.com/born-ml/weave/internal/tensor"
)

// ErrMissingRng is returned when a module draws from a pseudo-random stream
// that was not supplied for the current call.
var ErrMissingRng = errors.New("missing pseudo-random stream")

// Collection is one named partition of variables: variable name → leaf.
// Leaves are normally *tensor.Tensor; the bridge's embedding collection
// stores a *graph.GraphDef leaf.
type Collection map[string]any

// Variables maps collection names to their collections.
type Variables map[string]Collection

// Clone returns a shallow-leaf deep copy: fresh maps, shared leaves.
func (v Variables) Clone() Variables {
	out := make(Variables, len(v))
	for col, c := range v {
		nc := make(Collection, len(c))
		for name, leaf := range c {
			nc[name] = leaf
		}
		out[col] = nc
	}
	return out
}

// Module is an fn-style module. Forward must not retain the scope and must
// not mutate the receiver; all state flows through the scope.
type Module interface {
	Forward(s *Scope, inputs ...*tensor.Tensor) (*tensor.Tensor, error)
}
