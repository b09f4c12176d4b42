// Package bridge implements the interop layer between the two module
// styles: ToGraph drives an fn-style module through the graph-style API,
// ToFn drives a graph-style module through the fn-style API, and Functional
// gives any graph-style module a pure init/apply pair.
package bridge

import (
	"fmt"
	"slices"

	"github.com/born-ml/weave/internal/fn"
	"github.com/born-ml/weave/internal/graph"
	"github.com/born-ml/weave/internal/random"
	"github.com/born-ml/weave/internal/tensor"
	"github.com/born-ml/weave/internal/variable"
)

// LazyInit marks every object reachable from root as initializing, runs
// call, and always restores the flags, even when call fails. A failed
// initialization never leaves the graph stuck in the initializing phase.
func LazyInit(root graph.Node, call func() error) error {
	graph.SetInitializing(root, true)
	defer graph.SetInitializing(root, false)
	return call()
}

// ToGraph wraps one fn-style module so it can be used as a graph-style
// module: standalone, or as a sub-module of other graph-style code.
//
// Since fn-style initialization is shape-driven, the wrapper starts
// uninitialized; call LazyInit with sample inputs first. The variables the
// wrapped module creates are ingested into Vars, one attribute map per
// collection, and reconstructed into an explicit variable tree on every
// later call.
type ToGraph struct {
	graph.Object
	Module fn.Module
	Rngs   *random.Streams
	// Vars holds the ingested state: collection name → variable name →
	// typed variable.
	Vars map[string]map[string]*variable.Variable
	// Collections records which collection names came from the wrapped
	// module, so unrelated graph-style state is never confused with it.
	Collections []string
}

// NewToGraph wraps an fn-style module. The stream bundle is held for lazy
// initialization and used for per-call draws when no per-call bundle is
// given.
func NewToGraph(m fn.Module, rngs *random.Streams) *ToGraph {
	return &ToGraph{
		Module: m,
		Rngs:   rngs,
		Vars:   make(map[string]map[string]*variable.Variable),
	}
}

// CallOption configures one ToGraph call.
type CallOption func(*callConfig)

type callConfig struct {
	rngs    *random.Streams
	mutable []string
}

// WithStreams overrides the held stream bundle for this call.
func WithStreams(rngs *random.Streams) CallOption {
	return func(c *callConfig) {
		c.rngs = rngs
	}
}

// WithMutable requests mutable-collection tracking: the named collections
// returned by the wrapped module's apply are written back into Vars after
// the call returns.
func WithMutable(collections ...string) CallOption {
	return func(c *callConfig) {
		c.mutable = append(c.mutable, collections...)
	}
}

// LazyInit runs one call in the initialization phase, ingesting the
// wrapped module's variables, and returns the wrapper for chaining.
func (t *ToGraph) LazyInit(inputs ...*tensor.Tensor) (*ToGraph, error) {
	err := LazyInit(t, func() error {
		_, callErr := t.Call(inputs)
		return callErr
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Forward implements graph.Module.
func (t *ToGraph) Forward(inputs ...*tensor.Tensor) (*tensor.Tensor, error) {
	return t.Call(inputs)
}

// Call invokes the wrapped module.
//
// While initializing (inside LazyInit), the wrapped module's init runs with
// the base key of every stream in the bundle and the resulting variables
// are ingested into Vars. A bundle holding only a "default" stream feeds
// that key to the module under "params": the compatibility policy is to
// rename "default" to "params" exactly when "params" is absent.
//
// Once initialized, the variable tree is rebuilt from Vars, one fresh key
// is drawn per stream, and the wrapped module's pure apply runs. With
// WithMutable, the returned updates are committed back into Vars after the
// apply has returned; without it, the apply result is the output alone.
func (t *ToGraph) Call(inputs []*tensor.Tensor, opts ...CallOption) (*tensor.Tensor, error) {
	var cfg callConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	rngs := cfg.rngs
	if rngs == nil {
		rngs = t.Rngs
	}

	if t.Initializing() {
		return t.initialize(rngs, inputs)
	}

	vars := make(fn.Variables, len(t.Collections))
	for _, col := range t.Collections {
		c := make(fn.Collection, len(t.Vars[col]))
		for name, v := range t.Vars[col] {
			c[name] = v.Value
		}
		vars[col] = c
	}

	var applyOpts []fn.ApplyOption
	if rngs != nil {
		keys := make(map[string]random.Key)
		for _, name := range rngs.Names() {
			keys[name] = rngs.Get(name).Next()
		}
		applyOpts = append(applyOpts, fn.WithRngs(keys))
	}
	if len(cfg.mutable) > 0 {
		applyOpts = append(applyOpts, fn.WithMutable(cfg.mutable...))
	}

	out, updates, err := fn.Apply(t.Module, vars, inputs, applyOpts...)
	if err != nil {
		return nil, err
	}
	// Commit only after the pure apply has returned.
	for col, c := range updates {
		if err := t.ingest(col, c); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (t *ToGraph) initialize(rngs *random.Streams, inputs []*tensor.Tensor) (*tensor.Tensor, error) {
	raw := make(map[string]random.Key)
	if rngs != nil {
		for _, name := range rngs.Names() {
			raw[name] = rngs.Get(name).Key()
		}
	}
	// Rename "default" to "params" when "params" is absent.
	if _, ok := raw["params"]; !ok {
		if k, ok := raw["default"]; ok {
			raw["params"] = k
			delete(raw, "default")
		}
	}

	out, vars, err := fn.InitWithOutput(t.Module, raw, inputs...)
	if err != nil {
		return nil, err
	}
	for col, c := range vars {
		if err := t.ingest(col, c); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ingest classifies a collection's leaves by its name and stores them as
// typed variables, recording the collection as fn-origin.
func (t *ToGraph) ingest(col string, c fn.Collection) error {
	typ, err := variable.TypeOf(col)
	if err != nil {
		return err
	}
	stored := make(map[string]*variable.Variable, len(c))
	for name, leaf := range c {
		tt, ok := leaf.(*tensor.Tensor)
		if !ok {
			return fmt.Errorf("collection %q: leaf %q is %T, not a tensor", col, name, leaf)
		}
		stored[name] = variable.New(typ, tt)
	}
	t.Vars[col] = stored
	if !slices.Contains(t.Collections, col) {
		t.Collections = append(t.Collections, col)
		slices.Sort(t.Collections)
	}
	return nil
}
