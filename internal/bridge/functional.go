package bridge

import (
	"fmt"

	"github.com/born-ml/weave/internal/graph"
	"github.com/born-ml/weave/internal/random"
)

// Functional gives a graph-style module a purely functional init/apply
// pair: Init builds the state, Apply runs against externally supplied
// state. It is the lightweight alternative to ToFn for callers who want
// functional control without the collection machinery.
type Functional struct {
	construct Constructor
	def       *graph.GraphDef
}

// NewFunctional wraps a graph-style module constructor.
func NewFunctional(constructor Constructor) *Functional {
	return &Functional{construct: constructor}
}

// Init constructs the module (passing rngs through, which may be nil),
// splits it, retains the graph definition on the handle, and returns the
// state.
func (f *Functional) Init(rngs *random.Streams) (*graph.State, error) {
	m, err := f.construct(rngs)
	if err != nil {
		return nil, err
	}
	def, states := graph.Split(m)
	f.def = def
	return states[0], nil
}

// Apply merges the retained graph definition with the given states and
// returns the reconstructed live module for the caller to invoke. Returns
// ErrNotInitialized before Init has run.
func (f *Functional) Apply(states ...*graph.State) (graph.Module, error) {
	if f.def == nil {
		return nil, ErrNotInitialized
	}
	node, err := graph.Merge(f.def, states...)
	if err != nil {
		return nil, err
	}
	m, ok := node.(graph.Module)
	if !ok {
		return nil, fmt.Errorf("reconstructed module %T is not callable", node)
	}
	return m, nil
}

// GraphDef returns the retained graph definition, or nil before Init.
func (f *Functional) GraphDef() *graph.GraphDef {
	return f.def
}
