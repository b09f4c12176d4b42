package fn

import (
	"fmt"
	"sort"

	"github.com/born-ml/weave/internal/random"
	"github.com/born-ml/weave/internal/tensor"
)

// Initializer builds a fresh tensor value from a pseudo-random key.
type Initializer func(key random.Key, shape tensor.Shape) *tensor.Tensor

// Scope is the per-call context an fn-style module runs under.
//
// During initialization every collection is writable and variable
// declarations create fresh values. During apply, declarations read the
// supplied variables, and writes land only in the collections the caller
// marked mutable; writes to read-only collections are deliberately
// discarded (they are assumed already up to date).
type Scope struct {
	variables    Variables
	updates      Variables
	rngs         map[string]random.Key
	rngCounts    map[string]uint64
	initializing bool
	mutable      map[string]bool
}

// IsInitializing reports whether this call is the initialization phase.
func (s *Scope) IsInitializing() bool {
	return s.initializing
}

// IsMutableCollection reports whether writes to the collection are accepted
// in this call.
func (s *Scope) IsMutableCollection(collection string) bool {
	if s.initializing {
		return true
	}
	return s.mutable[collection]
}

// MakeRng derives a fresh pseudo-random key from the named stream. Every
// call returns a new key. Returns ErrMissingRng if the stream was not
// supplied.
func (s *Scope) MakeRng(name string) (random.Key, error) {
	base, ok := s.rngs[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrMissingRng, name)
	}
	if s.rngCounts == nil {
		s.rngCounts = make(map[string]uint64)
	}
	k := base.Fold(s.rngCounts[name])
	s.rngCounts[name]++
	return k, nil
}

// HasRng reports whether the named stream was supplied for this call.
func (s *Scope) HasRng(name string) bool {
	_, ok := s.rngs[name]
	return ok
}

// RngNames returns the supplied stream names in sorted order.
func (s *Scope) RngNames() []string {
	names := make([]string, 0, len(s.rngs))
	for name := range s.rngs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ActiveRngs draws one fresh key from every supplied stream, in sorted name
// order, and returns the name → key mapping.
func (s *Scope) ActiveRngs() map[string]random.Key {
	keys := make(map[string]random.Key, len(s.rngs))
	for _, name := range s.RngNames() {
		k, err := s.MakeRng(name)
		if err != nil {
			continue // unreachable, name comes from s.rngs
		}
		keys[name] = k
	}
	return keys
}

// Param declares a parameter in the "params" collection. During
// initialization the initializer runs with a key from the "params" stream;
// during apply the stored value is returned.
func (s *Scope) Param(name string, shape tensor.Shape, init Initializer) (*tensor.Tensor, error) {
	return s.declare("params", name, shape, func() (*tensor.Tensor, error) {
		key, err := s.MakeRng("params")
		if err != nil {
			return nil, err
		}
		return init(key, shape), nil
	})
}

// Variable declares a non-parameter variable in the given collection.
// The constructor runs only during initialization.
func (s *Scope) Variable(collection, name string, shape tensor.Shape, build func() *tensor.Tensor) (*tensor.Tensor, error) {
	return s.declare(collection, name, shape, func() (*tensor.Tensor, error) {
		return build(), nil
	})
}

func (s *Scope) declare(collection, name string, shape tensor.Shape, build func() (*tensor.Tensor, error)) (*tensor.Tensor, error) {
	if leaf, ok := s.lookup(collection, name); ok {
		t, isTensor := leaf.(*tensor.Tensor)
		if !isTensor {
			return nil, fmt.Errorf("variable %s/%s is not a tensor", collection, name)
		}
		if !t.Shape().Equal(shape) {
			return nil, fmt.Errorf("variable %s/%s has shape %v, want %v", collection, name, t.Shape(), shape)
		}
		return t, nil
	}
	if !s.initializing {
		return nil, fmt.Errorf("variable %s/%s not found in supplied state", collection, name)
	}
	t, err := build()
	if err != nil {
		return nil, err
	}
	s.put(s.variables, collection, name, t)
	return t, nil
}

func (s *Scope) lookup(collection, name string) (any, bool) {
	c, ok := s.variables[collection]
	if !ok {
		return nil, false
	}
	leaf, ok := c[name]
	return leaf, ok
}

// GetVariable returns the leaf stored under collection/name.
func (s *Scope) GetVariable(collection, name string) (any, bool) {
	return s.lookup(collection, name)
}

// PutVariable stores a leaf under collection/name. Returns false without
// storing when the collection is not writable in this call.
func (s *Scope) PutVariable(collection, name string, leaf any) bool {
	if !s.IsMutableCollection(collection) {
		return false
	}
	if s.initializing {
		s.put(s.variables, collection, name, leaf)
		return true
	}
	s.put(s.updates, collection, name, leaf)
	return true
}

func (s *Scope) put(vars Variables, collection, name string, leaf any) {
	c, ok := vars[collection]
	if !ok {
		c = make(Collection)
		vars[collection] = c
	}
	c[name] = leaf
}

// Collections returns the variables visible to this call, updates from this
// call included. The caller must not mutate the result.
func (s *Scope) Collections() Variables {
	if len(s.updates) == 0 {
		return s.variables
	}
	merged := s.variables.Clone()
	for col, c := range s.updates {
		for name, leaf := range c {
			s.put(merged, col, name, leaf)
		}
	}
	return merged
}
