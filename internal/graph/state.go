package graph

import (
	"sort"

	"github.com/born-ml/weave/internal/variable"
)

// State maps structural paths (dotted exported-field paths like "Child.W")
// to variable leaves. It is the dynamic half of a split module; the static
// half is the GraphDef.
type State struct {
	vars map[string]*variable.Variable
}

// NewState creates an empty state.
func NewState() *State {
	return &State{vars: make(map[string]*variable.Variable)}
}

// Set stores a variable under a path, replacing any previous entry.
func (s *State) Set(path string, v *variable.Variable) {
	s.vars[path] = v
}

// Get returns the variable stored under a path.
func (s *State) Get(path string) (*variable.Variable, bool) {
	v, ok := s.vars[path]
	return v, ok
}

// Len returns the number of stored variables.
func (s *State) Len() int {
	return len(s.vars)
}

// Raw returns the underlying path-to-variable mapping. The caller must not
// mutate it.
func (s *State) Raw() map[string]*variable.Variable {
	return s.vars
}

// Paths returns all paths in sorted order.
func (s *State) Paths() []string {
	paths := make([]string, 0, len(s.vars))
	for p := range s.vars {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Filter returns a new state holding only variables of the given type.
func (s *State) Filter(t variable.Type) *State {
	out := NewState()
	for p, v := range s.vars {
		if v.Type == t {
			out.Set(p, v)
		}
	}
	return out
}

// Types returns the distinct variable types present, in canonical order.
func (s *State) Types() []variable.Type {
	seen := make(map[variable.Type]bool)
	var types []variable.Type
	for _, v := range s.vars {
		if !seen[v.Type] {
			seen[v.Type] = true
			types = append(types, v.Type)
		}
	}
	return variable.SortTypes(types)
}

// Equal reports whether two states hold the same paths with the same
// variable types and identical tensor values.
func (s *State) Equal(other *State) bool {
	if other == nil || len(s.vars) != len(other.vars) {
		return false
	}
	for p, v := range s.vars {
		o, ok := other.vars[p]
		if !ok || v.Type != o.Type {
			return false
		}
		if (v.Value == nil) != (o.Value == nil) {
			return false
		}
		if v.Value != nil && !v.Value.Equal(o.Value) {
			return false
		}
	}
	return true
}

// MergeStates combines several states into one. Later states win on path
// conflicts.
func MergeStates(states ...*State) *State {
	out := NewState()
	for _, s := range states {
		if s == nil {
			continue
		}
		for p, v := range s.vars {
			out.Set(p, v)
		}
	}
	return out
}
