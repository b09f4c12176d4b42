package graph

import (
	"fmt"

	"github.com/born-ml/weave/internal/random"
	"github.com/born-ml/weave/internal/variable"
)

// Split separates a module into its structural descriptor and its state.
//
// With no filters, a single State holding every variable is returned. With
// filters, one State per filter type is returned, in the order given; the
// filters must cover every variable in the module or Split panics (an
// incomplete split would silently lose state on the way back through
// Merge).
func Split(root Node, filters ...variable.Type) (*GraphDef, []*State) {
	def := newGraphDef(root)
	all := NewState()
	w := &walker{
		onVariable: func(path string, v *variable.Variable) {
			all.Set(path, v)
		},
	}
	w.walkNode("", root)

	if len(filters) == 0 {
		return def, []*State{all}
	}

	states := make([]*State, len(filters))
	covered := 0
	for i, f := range filters {
		states[i] = all.Filter(f)
		covered += states[i].Len()
	}
	if covered != all.Len() {
		panic(fmt.Sprintf("graph.Split: filters %v do not cover all variable types %v", filters, all.Types()))
	}
	return def, states
}

// Merge reconstructs a live module from a graph definition and one or more
// states. Later states win on path conflicts. Every variable slot in the
// definition must be filled, and every state entry must land in a slot.
func Merge(def *GraphDef, states ...*State) (Node, error) {
	combined := MergeStates(states...)
	c := &cloner{}
	root := c.cloneNode(def.skeleton)

	used := make(map[string]bool, combined.Len())
	var err error
	w := &walker{
		onVariable: func(path string, v *variable.Variable) {
			sv, ok := combined.Get(path)
			if !ok {
				if err == nil {
					err = fmt.Errorf("graph.Merge: missing state for %q", path)
				}
				return
			}
			if sv.Type != v.Type {
				if err == nil {
					err = fmt.Errorf("graph.Merge: state for %q has type %s, want %s", path, sv.Type, v.Type)
				}
				return
			}
			used[path] = true
			v.Value = sv.Value
		},
	}
	w.walkNode("", root)
	if err != nil {
		return nil, err
	}
	if len(used) != combined.Len() {
		for _, path := range combined.Paths() {
			if !used[path] {
				return nil, fmt.Errorf("graph.Merge: state path %q does not exist in the graph definition", path)
			}
		}
	}
	return root, nil
}

// Reseed re-associates every pseudo-random stream bundle reachable from
// root with fresh base keys, resetting draw counters. Streams whose name is
// absent from keys keep their current key.
func Reseed(root Node, keys map[string]random.Key) {
	w := &walker{
		onStreams: func(_ string, s *random.Streams) {
			s.Reseed(keys)
		},
	}
	w.walkNode("", root)
}
