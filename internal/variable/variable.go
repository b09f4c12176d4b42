// Package variable implements typed state leaves for graph-style modules.
//
// Every variable carries a Type, and every type maps to exactly one named
// collection when state is exported to the fn-style representation
// ("params", "batch_stats", ...). The mapping is bidirectional and the type
// order is canonical, so multi-collection splitting and merging is
// deterministic across calls and processes.
package variable

import (
	"errors"
	"fmt"
	"sort"

	"github.com/born-ml/weave/internal/tensor"
)

// ErrUnknownCollection is returned when a collection name has no registered
// variable type.
var ErrUnknownCollection = errors.New("unknown variable collection")

// Type classifies a variable leaf. The numeric order of the constants is
// the canonical sort order used whenever multiple types are split or
// iterated; it must stay stable.
type Type int

// Built-in variable types, in canonical order.
const (
	Param Type = iota
	BatchStat
	Intermediate
	RngState
)

// String returns the collection name for the type.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

var (
	typeNames = map[Type]string{
		Param:        "params",
		BatchStat:    "batch_stats",
		Intermediate: "intermediates",
		RngState:     "rng_state",
	}
	nameTypes = map[string]Type{
		"params":        Param,
		"batch_stats":   BatchStat,
		"intermediates": Intermediate,
		"rng_state":     RngState,
	}
)

// Register binds an additional collection name to a variable type, so
// modules using custom collections can round-trip through the bridge.
// Registering a name twice overwrites the previous binding.
func Register(collection string, t Type) {
	nameTypes[collection] = t
	if _, ok := typeNames[t]; !ok {
		typeNames[t] = collection
	}
}

// TypeOf classifies a collection name into a variable type.
func TypeOf(collection string) (Type, error) {
	t, ok := nameTypes[collection]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}
	return t, nil
}

// CollectionOf returns the collection name a variable type exports to.
// It is the inverse of TypeOf for all built-in and registered types.
func CollectionOf(t Type) string {
	return t.String()
}

// SortTypes returns the given types in canonical ascending order.
func SortTypes(types []Type) []Type {
	sorted := make([]Type, len(types))
	copy(sorted, types)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted
}

// Variable is a typed state leaf owned by a graph-style module.
type Variable struct {
	Type  Type
	Value *tensor.Tensor
}

// New creates a variable of the given type.
func New(t Type, value *tensor.Tensor) *Variable {
	return &Variable{Type: t, Value: value}
}

// NewParam creates a trainable parameter variable.
func NewParam(value *tensor.Tensor) *Variable {
	return New(Param, value)
}

// NewBatchStat creates a batch-statistics variable.
func NewBatchStat(value *tensor.Tensor) *Variable {
	return New(BatchStat, value)
}

// Clone returns a deep copy of the variable.
func (v *Variable) Clone() *Variable {
	c := &Variable{Type: v.Type}
	if v.Value != nil {
		c.Value = v.Value.Clone()
	}
	return c
}
