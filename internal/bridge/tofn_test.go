package bridge_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/weave/internal/bridge"
	"github.com/born-ml/weave/internal/fn"
	"github.com/born-ml/weave/internal/graph"
	"github.com/born-ml/weave/internal/random"
	"github.com/born-ml/weave/internal/tensor"
	"github.com/born-ml/weave/internal/variable"
)

// affine is a graph-style fully connected module used across bridge tests.
type affine struct {
	graph.Object
	W *variable.Variable
	B *variable.Variable
}

func newAffine(in, out int, rngs *random.Streams) *affine {
	key := rngs.Get("params").Next()
	return &affine{
		W: variable.NewParam(tensor.XavierUniform(tensor.Shape{in, out}, key)),
		B: variable.NewParam(tensor.Zeros(tensor.Shape{out})),
	}
}

func (a *affine) Forward(inputs ...*tensor.Tensor) (*tensor.Tensor, error) {
	return inputs[0].MatMul(a.W.Value).Add(a.B.Value), nil
}

// stepCounter is a graph-style module mutating a batch statistic in place.
type stepCounter struct {
	graph.Object
	Steps *variable.Variable
}

func newStepCounter() *stepCounter {
	return &stepCounter{Steps: variable.NewBatchStat(tensor.Zeros(tensor.Shape{1}))}
}

func (c *stepCounter) Forward(inputs ...*tensor.Tensor) (*tensor.Tensor, error) {
	c.Steps.Value = c.Steps.Value.AddScalar(1)
	return inputs[0], nil
}

// noisy is a graph-style module drawing from its own stream bundle.
type noisy struct {
	graph.Object
	Rngs *random.Streams
}

func (n *noisy) Forward(inputs ...*tensor.Tensor) (*tensor.Tensor, error) {
	key := n.Rngs.Get("noise").Next()
	return inputs[0].Add(tensor.Randn(inputs[0].Shape(), key)), nil
}

func affineToFn() *bridge.ToFn {
	return bridge.NewToFn(func(rngs *random.Streams) (graph.Module, error) {
		return newAffine(4, 2, rngs), nil
	})
}

// TestToFnInitCollections verifies the serialized layout: the graph
// definition in the embedding collection, parameters in params.
func TestToFnInitCollections(t *testing.T) {
	x := tensor.Ones(tensor.Shape{1, 4})

	vars, err := fn.Init(affineToFn(), map[string]random.Key{"params": random.NewKey(0)}, x)
	require.NoError(t, err)

	require.Contains(t, vars, bridge.GraphDefCollection)
	_, isDef := vars[bridge.GraphDefCollection]["graphdef"].(*graph.GraphDef)
	assert.True(t, isDef, "embedding collection should hold the graph definition")

	require.Contains(t, vars, "params")
	assert.Contains(t, vars["params"], "W")
	assert.Contains(t, vars["params"], "B")
}

// TestToFnMatchesDirect verifies cross-style equivalence: the wrapped
// module computes the same numbers as direct construction with the same
// derived keys.
func TestToFnMatchesDirect(t *testing.T) {
	x, err := tensor.FromSlice([]float32{1, 0, 2, 3}, tensor.Shape{1, 4})
	require.NoError(t, err)

	out, vars, err := fn.InitWithOutput(affineToFn(), map[string]random.Key{"params": random.NewKey(0)}, x)
	require.NoError(t, err)

	// The constructor received a bundle whose params base key is the
	// first derived key of the call's params stream.
	direct := newAffine(4, 2, random.StreamsFromKeys(map[string]random.Key{
		"params": random.NewKey(0).Fold(0),
	}))
	want, err := direct.Forward(x)
	require.NoError(t, err)
	assert.True(t, out.Equal(want))

	// Apply reconstructs the same module from collections.
	again, _, err := fn.Apply(affineToFn(), vars, []*tensor.Tensor{x})
	require.NoError(t, err)
	assert.True(t, again.Equal(want))
}

// TestToFnApplyBeforeInit verifies apply is rejected when no graph
// definition was ever stored.
func TestToFnApplyBeforeInit(t *testing.T) {
	x := tensor.Ones(tensor.Shape{1, 4})
	_, _, err := fn.Apply(affineToFn(), fn.Variables{}, []*tensor.Tensor{x})
	require.Error(t, err)
	assert.True(t, errors.Is(err, bridge.ErrMissingGraphDef))
}

// TestToFnCaptureStability verifies that re-serializing an unchanged
// module produces the same collection names and values (capture is
// idempotent until the module changes).
func TestToFnCaptureStability(t *testing.T) {
	x := tensor.Ones(tensor.Shape{1, 4})
	tofn := affineToFn()

	vars, err := fn.Init(tofn, map[string]random.Key{"params": random.NewKey(0)}, x)
	require.NoError(t, err)

	mutable := fn.WithMutable("params", bridge.GraphDefCollection)
	_, updates1, err := fn.Apply(tofn, vars, []*tensor.Tensor{x}, mutable)
	require.NoError(t, err)
	_, updates2, err := fn.Apply(tofn, vars, []*tensor.Tensor{x}, mutable)
	require.NoError(t, err)

	require.Equal(t, len(updates1), len(updates2))
	for col, c := range updates1 {
		require.Contains(t, updates2, col)
		for name, leaf := range c {
			lt, isTensor := leaf.(*tensor.Tensor)
			if !isTensor {
				continue // the graph definition leaf
			}
			other := updates2[col][name].(*tensor.Tensor)
			assert.True(t, lt.Equal(other), "collection %s name %s", col, name)
			// And the values match the originally stored state.
			stored := vars[col][name].(*tensor.Tensor)
			assert.True(t, lt.Equal(stored))
		}
	}
}

// TestToFnStatefulUpdates verifies that in-place module mutation is
// re-serialized into updates, and threading updates forward advances the
// state.
func TestToFnStatefulUpdates(t *testing.T) {
	x := tensor.Ones(tensor.Shape{1})
	tofn := bridge.NewToFn(func(*random.Streams) (graph.Module, error) {
		return newStepCounter(), nil
	}, bridge.SkipStreams())

	vars, err := fn.Init(tofn, nil, x)
	require.NoError(t, err)
	// The snapshot is taken before the init-time run.
	stored := vars["batch_stats"]["Steps"].(*tensor.Tensor)
	assert.Equal(t, float32(0), stored.At(0))

	_, updates, err := fn.Apply(tofn, vars, []*tensor.Tensor{x}, fn.WithMutable("batch_stats"))
	require.NoError(t, err)
	got := updates["batch_stats"]["Steps"].(*tensor.Tensor)
	assert.Equal(t, float32(1), got.At(0))

	// Thread the update into the next call.
	vars["batch_stats"]["Steps"] = got
	_, updates, err = fn.Apply(tofn, vars, []*tensor.Tensor{x}, fn.WithMutable("batch_stats"))
	require.NoError(t, err)
	got = updates["batch_stats"]["Steps"].(*tensor.Tensor)
	assert.Equal(t, float32(2), got.At(0))
}

// TestToFnPerCallRngs verifies each apply call gets independent randomness,
// reproducible under the same upstream keys.
func TestToFnPerCallRngs(t *testing.T) {
	x := tensor.Ones(tensor.Shape{1, 3})
	tofn := bridge.NewToFn(func(rngs *random.Streams) (graph.Module, error) {
		return &noisy{Rngs: rngs}, nil
	})

	vars, err := fn.Init(tofn, map[string]random.Key{"noise": random.NewKey(0)}, x)
	require.NoError(t, err)

	apply := func(seed uint64) *tensor.Tensor {
		out, _, applyErr := fn.Apply(tofn, vars, []*tensor.Tensor{x},
			fn.WithRngs(map[string]random.Key{"noise": random.NewKey(seed)}))
		require.NoError(t, applyErr)
		return out
	}

	a, b := apply(1), apply(2)
	assert.False(t, a.Equal(b), "different call keys should give different draws")

	c := apply(1)
	assert.True(t, a.Equal(c), "same call key should reproduce the draw")
}

// TestToFnSkipStreams verifies the constructor receives nil when the
// module opts out of stream bundles.
func TestToFnSkipStreams(t *testing.T) {
	x := tensor.Ones(tensor.Shape{1})
	var got *random.Streams = random.NewStreams(0)
	tofn := bridge.NewToFn(func(rngs *random.Streams) (graph.Module, error) {
		got = rngs
		return newStepCounter(), nil
	}, bridge.SkipStreams())

	_, err := fn.Init(tofn, map[string]random.Key{"params": random.NewKey(0)}, x)
	require.NoError(t, err)
	assert.Nil(t, got)
}
