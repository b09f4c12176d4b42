package bridge

import (
	"fmt"

	"github.com/born-ml/weave/internal/fn"
	"github.com/born-ml/weave/internal/graph"
	"github.com/born-ml/weave/internal/random"
	"github.com/born-ml/weave/internal/tensor"
	"github.com/born-ml/weave/internal/variable"
)

// GraphDefCollection is the embedding collection a ToFn adapter stores the
// wrapped module's graph definition in.
const GraphDefCollection = "graph"

// graphDefName is the variable name of the graph definition inside the
// embedding collection.
const graphDefName = "graphdef"

// Constructor builds a fresh graph-style module. The stream bundle is nil
// when the adapter was created with SkipStreams.
type Constructor func(rngs *random.Streams) (graph.Module, error)

// ToFn wraps a graph-style module constructor (not an instance) so the
// module can be driven through the fn-style API: initialized and applied
// with explicitly threaded variables.
//
// The module is constructed once, during the enclosing initialization
// phase; its graph definition and typed state are serialized into fn-style
// collections. Every later apply deserializes them, reconstructs the live
// module, runs it with per-call pseudo-random streams, and re-serializes
// any state it changed.
type ToFn struct {
	construct Constructor
	skipRngs  bool
}

// ToFnOption configures a ToFn adapter.
type ToFnOption func(*ToFn)

// SkipStreams declares that the wrapped module needs no pseudo-random
// stream bundle at construction; the constructor receives nil.
func SkipStreams() ToFnOption {
	return func(t *ToFn) {
		t.skipRngs = true
	}
}

// NewToFn creates the adapter.
func NewToFn(constructor Constructor, opts ...ToFnOption) *ToFn {
	t := &ToFn{construct: constructor}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// UpdateVariables snapshots the module's graph definition and typed state
// into the scope's collections. The graph definition goes into the
// embedding collection when that collection is writable. Each variable type
// goes to its own collection, in canonical type order, each leaf stored
// individually under its structural path; collections not writable in this
// call are skipped — they are assumed already up to date.
func (t *ToFn) UpdateVariables(s *fn.Scope, m graph.Module) {
	def, states := graph.Split(m)
	if s.IsMutableCollection(GraphDefCollection) {
		s.PutVariable(GraphDefCollection, graphDefName, def)
	}
	types := states[0].Types()
	if len(types) == 0 {
		return
	}
	_, byType := graph.Split(m, types...)
	for i, typ := range types {
		col := variable.CollectionOf(typ)
		if !s.IsMutableCollection(col) {
			continue
		}
		for path, v := range byType[i].Raw() {
			s.PutVariable(col, path, v.Value)
		}
	}
}

// Forward implements fn.Module.
//
// During initialization a fresh module is constructed with streams sourced
// from the enclosing call, snapshot via UpdateVariables, and run. During
// apply the stored graph definition and collections are merged back into a
// live module, its streams are re-associated with keys from the current
// call (construction-time streams are never reused), the module runs, and
// the snapshot is refreshed.
func (t *ToFn) Forward(s *fn.Scope, inputs ...*tensor.Tensor) (*tensor.Tensor, error) {
	if s.IsInitializing() {
		var rngs *random.Streams
		if !t.skipRngs {
			rngs = random.StreamsFromKeys(s.ActiveRngs())
		}
		m, err := t.construct(rngs)
		if err != nil {
			return nil, err
		}
		t.UpdateVariables(s, m)
		return m.Forward(inputs...)
	}

	raw, ok := s.GetVariable(GraphDefCollection, graphDefName)
	if !ok {
		return nil, ErrMissingGraphDef
	}
	def, ok := raw.(*graph.GraphDef)
	if !ok {
		return nil, fmt.Errorf("collection %q: %q is %T, not a graph definition", GraphDefCollection, graphDefName, raw)
	}

	state := graph.NewState()
	for col, c := range s.Collections() {
		if col == GraphDefCollection {
			continue
		}
		typ, err := variable.TypeOf(col)
		if err != nil {
			return nil, err
		}
		for name, leaf := range c {
			tt, isTensor := leaf.(*tensor.Tensor)
			if !isTensor {
				return nil, fmt.Errorf("collection %q: leaf %q is %T, not a tensor", col, name, leaf)
			}
			state.Set(name, variable.New(typ, tt))
		}
	}

	node, err := graph.Merge(def, state)
	if err != nil {
		return nil, err
	}
	m, ok := node.(graph.Module)
	if !ok {
		return nil, fmt.Errorf("reconstructed module %T is not callable", node)
	}
	graph.Reseed(m, s.ActiveRngs())

	out, err := m.Forward(inputs...)
	if err != nil {
		return nil, err
	}
	t.UpdateVariables(s, m)
	return out, nil
}
