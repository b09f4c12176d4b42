// Copyright 2026 Weave ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package fn provides the public API for the immutable module style.
//
// An fn-style module holds configuration only; state is threaded through
// Init and Apply explicitly:
//
//	d := fn.NewDense(64)
//	vars, err := fn.Init(d, rngs, x)
//	out, _, err := fn.Apply(d, vars, []*tensor.Tensor{x})
package fn

import (
	"github.com/born-ml/weave/internal/fn"
	"github.com/born-ml/weave/internal/random"
	"github.com/born-ml/weave/internal/tensor"
)

// Module is an fn-style module: a pure declarative descriptor.
type Module = fn.Module

// Scope is the per-call context an fn-style module runs under.
type Scope = fn.Scope

// Collection is one named partition of variables.
type Collection = fn.Collection

// Variables maps collection names to their collections.
type Variables = fn.Variables

// Initializer builds a fresh tensor value from a pseudo-random key.
type Initializer = fn.Initializer

// ApplyOption configures an Apply call.
type ApplyOption = fn.ApplyOption

// Dense is a fully connected layer in the fn style.
type Dense = fn.Dense

// ErrMissingRng is returned when a module draws from a stream that was not
// supplied for the current call.
var ErrMissingRng = fn.ErrMissingRng

// NewDense creates a Dense descriptor with a bias.
func NewDense(features int) *Dense {
	return fn.NewDense(features)
}

// Init runs the module's initialization phase and returns the created
// variables.
func Init(m Module, rngs map[string]random.Key, inputs ...*tensor.Tensor) (Variables, error) {
	return fn.Init(m, rngs, inputs...)
}

// InitWithOutput runs the initialization phase and returns both the module
// output and the created variables.
func InitWithOutput(m Module, rngs map[string]random.Key, inputs ...*tensor.Tensor) (*tensor.Tensor, Variables, error) {
	return fn.InitWithOutput(m, rngs, inputs...)
}

// Apply runs the module as a pure function of the supplied variables and
// inputs.
func Apply(m Module, vars Variables, inputs []*tensor.Tensor, opts ...ApplyOption) (*tensor.Tensor, Variables, error) {
	return fn.Apply(m, vars, inputs, opts...)
}

// WithRngs supplies per-call pseudo-random keys.
func WithRngs(rngs map[string]random.Key) ApplyOption {
	return fn.WithRngs(rngs)
}

// WithMutable marks collections as writable during apply.
func WithMutable(collections ...string) ApplyOption {
	return fn.WithMutable(collections...)
}
