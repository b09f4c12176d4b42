// Copyright 2026 Weave ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package bridge provides the public API for the interop layer between the
// two module styles.
//
// ToGraph drives an fn-style module through the graph-style API:
//
//	model, err := bridge.NewToGraph(fn.NewDense(64), random.NewStreams(0, "params")).LazyInit(x)
//	y, err := model.Forward(x)
//
// ToFn drives a graph-style module through the fn-style API:
//
//	wrapped := bridge.NewToFn(func(rngs *random.Streams) (graph.Module, error) {
//	    return NewBlock(32, 64, rngs), nil
//	})
//	vars, err := fn.Init(wrapped, rngs, x)
package bridge

import (
	"github.com/born-ml/weave/internal/bridge"
	"github.com/born-ml/weave/internal/fn"
	"github.com/born-ml/weave/internal/graph"
	"github.com/born-ml/weave/internal/random"
)

// ToGraph wraps one fn-style module as a graph-style module.
type ToGraph = bridge.ToGraph

// ToFn wraps a graph-style module constructor as an fn-style module.
type ToFn = bridge.ToFn

// ToFnOption configures a ToFn adapter.
type ToFnOption = bridge.ToFnOption

// Functional is a pure init/apply handle for a graph-style module.
type Functional = bridge.Functional

// Constructor builds a fresh graph-style module.
type Constructor = bridge.Constructor

// CallOption configures one ToGraph call.
type CallOption = bridge.CallOption

// GraphDefCollection is the embedding collection holding a wrapped
// module's graph definition.
const GraphDefCollection = bridge.GraphDefCollection

// Common errors.
var (
	ErrMissingGraphDef = bridge.ErrMissingGraphDef
	ErrNotInitialized  = bridge.ErrNotInitialized
)

// NewToGraph wraps an fn-style module.
func NewToGraph(m fn.Module, rngs *random.Streams) *ToGraph {
	return bridge.NewToGraph(m, rngs)
}

// NewToFn wraps a graph-style module constructor.
func NewToFn(constructor Constructor, opts ...ToFnOption) *ToFn {
	return bridge.NewToFn(constructor, opts...)
}

// SkipStreams declares that the wrapped module needs no stream bundle at
// construction.
func SkipStreams() ToFnOption {
	return bridge.SkipStreams()
}

// NewFunctional wraps a graph-style module constructor in a pure
// init/apply handle.
func NewFunctional(constructor Constructor) *Functional {
	return bridge.NewFunctional(constructor)
}

// WithStreams overrides a ToGraph call's stream bundle.
func WithStreams(rngs *random.Streams) CallOption {
	return bridge.WithStreams(rngs)
}

// WithMutable requests mutable-collection tracking for a ToGraph call.
func WithMutable(collections ...string) CallOption {
	return bridge.WithMutable(collections...)
}

// LazyInit marks every object reachable from root as initializing, runs
// call, and always restores the flags.
func LazyInit(root graph.Node, call func() error) error {
	return bridge.LazyInit(root, call)
}
