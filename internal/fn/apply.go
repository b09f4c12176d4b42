package fn

import (
	"github.com/born-ml/weave/internal/random"
	"github.com/born-ml/weave/internal/tensor"
)

// ApplyOption configures an Apply call.
type ApplyOption func(*applyConfig)

type applyConfig struct {
	rngs    map[string]random.Key
	mutable map[string]bool
}

// WithRngs supplies per-call pseudo-random keys, one base key per stream
// name.
func WithRngs(rngs map[string]random.Key) ApplyOption {
	return func(c *applyConfig) {
		c.rngs = rngs
	}
}

// WithMutable marks collections as writable during apply. Writes to any
// other collection are discarded.
func WithMutable(collections ...string) ApplyOption {
	return func(c *applyConfig) {
		if c.mutable == nil {
			c.mutable = make(map[string]bool, len(collections))
		}
		for _, col := range collections {
			c.mutable[col] = true
		}
	}
}

// Init runs the module's initialization phase and returns the created
// variables.
func Init(m Module, rngs map[string]random.Key, inputs ...*tensor.Tensor) (Variables, error) {
	_, vars, err := InitWithOutput(m, rngs, inputs...)
	return vars, err
}

// InitWithOutput runs the module's initialization phase and returns both
// the module output and the created variables.
func InitWithOutput(m Module, rngs map[string]random.Key, inputs ...*tensor.Tensor) (*tensor.Tensor, Variables, error) {
	s := &Scope{
		variables:    make(Variables),
		updates:      make(Variables),
		rngs:         rngs,
		initializing: true,
	}
	out, err := m.Forward(s, inputs...)
	if err != nil {
		return nil, nil, err
	}
	return out, s.variables, nil
}

// Apply runs the module as a pure function of the supplied variables and
// inputs. The returned updates hold writes to the collections marked
// mutable via WithMutable; it is empty when nothing was mutated.
//
// Errors from the module (shape mismatches included) propagate verbatim.
func Apply(m Module, vars Variables, inputs []*tensor.Tensor, opts ...ApplyOption) (*tensor.Tensor, Variables, error) {
	var cfg applyConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	s := &Scope{
		variables: vars,
		updates:   make(Variables),
		rngs:      cfg.rngs,
		mutable:   cfg.mutable,
	}
	out, err := m.Forward(s, inputs...)
	if err != nil {
		return nil, nil, err
	}
	return out, s.updates, nil
}
