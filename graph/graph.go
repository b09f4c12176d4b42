// Copyright 2026 Weave ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package graph provides the public API for the stateful module style and
// its split/merge state model.
//
// A graph-style module owns its state directly:
//
//	type Block struct {
//	    graph.Object
//	    W *variable.Variable
//	}
//
// Example:
//
//	def, states := graph.Split(model)
//	rebuilt, err := graph.Merge(def, states[0])
package graph

import (
	"github.com/born-ml/weave/internal/graph"
	"github.com/born-ml/weave/internal/random"
	"github.com/born-ml/weave/internal/variable"
)

// Object carries the per-instance call-phase state of a graph-style
// module; embed it by value.
type Object = graph.Object

// Node is implemented by every graph-style module, via the embedded
// Object.
type Node = graph.Node

// Module is a callable graph-style module.
type Module = graph.Module

// GraphDef is the immutable structural descriptor of a module's ownership
// graph.
type GraphDef = graph.GraphDef

// State maps structural paths to variable leaves.
type State = graph.State

// NewState creates an empty state.
func NewState() *State {
	return graph.NewState()
}

// Split separates a module into its structural descriptor and its state,
// optionally partitioned by variable type.
func Split(root Node, filters ...variable.Type) (*GraphDef, []*State) {
	return graph.Split(root, filters...)
}

// Merge reconstructs a live module from a graph definition and states.
func Merge(def *GraphDef, states ...*State) (Node, error) {
	return graph.Merge(def, states...)
}

// MergeStates combines several states into one; later states win.
func MergeStates(states ...*State) *State {
	return graph.MergeStates(states...)
}

// SetInitializing marks every object reachable from root as initializing
// or not, visiting each object exactly once.
func SetInitializing(root Node, flag bool) {
	graph.SetInitializing(root, flag)
}

// Reseed re-associates every pseudo-random stream bundle reachable from
// root with fresh base keys.
func Reseed(root Node, keys map[string]random.Key) {
	graph.Reseed(root, keys)
}
