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

// counter is an fn-style module tracking its apply count in batch_stats.
type counter struct{}

func (c *counter) Forward(s *fn.Scope, inputs ...*tensor.Tensor) (*tensor.Tensor, error) {
	count, err := s.Variable("batch_stats", "count", tensor.Shape{1}, func() *tensor.Tensor {
		return tensor.Zeros(tensor.Shape{1})
	})
	if err != nil {
		return nil, err
	}
	if !s.IsInitializing() {
		s.PutVariable("batch_stats", "count", count.AddScalar(1))
	}
	return inputs[0], nil
}

// badCollection is an fn-style module declaring an unregistered collection.
type badCollection struct{}

func (b *badCollection) Forward(s *fn.Scope, inputs ...*tensor.Tensor) (*tensor.Tensor, error) {
	_, err := s.Variable("bogus", "v", tensor.Shape{1}, func() *tensor.Tensor {
		return tensor.Zeros(tensor.Shape{1})
	})
	if err != nil {
		return nil, err
	}
	return inputs[0], nil
}

// failing always errors.
type failing struct{}

func (f *failing) Forward(*fn.Scope, ...*tensor.Tensor) (*tensor.Tensor, error) {
	return nil, errors.New("boom")
}

// TestToGraphMatchesDirect verifies that driving an fn module through the
// adapter produces the same numbers as the direct init/apply calls.
func TestToGraphMatchesDirect(t *testing.T) {
	x, err := tensor.FromSlice([]float32{1, 2, 0, 1, 3, 5, 4, 2}, tensor.Shape{2, 4})
	require.NoError(t, err)

	model, err := bridge.NewToGraph(fn.NewDense(3), random.NewStreams(0, "params")).LazyInit(x)
	require.NoError(t, err)
	out, err := model.Forward(x)
	require.NoError(t, err)

	// Direct path with the same base key.
	d := fn.NewDense(3)
	base := random.NewStreams(0, "params").Get("params").Key()
	vars, err := fn.Init(d, map[string]random.Key{"params": base}, x)
	require.NoError(t, err)
	direct, _, err := fn.Apply(d, vars, []*tensor.Tensor{x})
	require.NoError(t, err)

	assert.True(t, out.Equal(direct), "adapter output should match direct init/apply")
}

// TestToGraphIngestedCollections verifies the recorded collection names
// and the typing of ingested variables.
func TestToGraphIngestedCollections(t *testing.T) {
	x := tensor.Ones(tensor.Shape{1, 4})
	model, err := bridge.NewToGraph(fn.NewDense(2), random.NewStreams(0, "params")).LazyInit(x)
	require.NoError(t, err)

	assert.Equal(t, []string{"params"}, model.Collections)
	require.Contains(t, model.Vars, "params")
	kernel := model.Vars["params"]["kernel"]
	assert.Equal(t, variable.Param, kernel.Type)
	assert.True(t, kernel.Value.Shape().Equal(tensor.Shape{4, 2}))
}

// TestToGraphDefaultStreamRename verifies the compatibility policy: a
// bundle holding only "default" feeds its key to the module as "params".
func TestToGraphDefaultStreamRename(t *testing.T) {
	x := tensor.Ones(tensor.Shape{1, 4})

	model, err := bridge.NewToGraph(fn.NewDense(2), random.NewStreams(5)).LazyInit(x)
	require.NoError(t, err)

	base := random.NewStreams(5).Get("default").Key()
	vars, err := fn.Init(fn.NewDense(2), map[string]random.Key{"params": base}, x)
	require.NoError(t, err)

	want := vars["params"]["kernel"].(*tensor.Tensor)
	got := model.Vars["params"]["kernel"].Value
	assert.True(t, got.Equal(want), "default stream key should arrive under params")
}

// TestToGraphNoRenameWhenParamsPresent verifies the rename happens only
// when "params" is absent.
func TestToGraphNoRenameWhenParamsPresent(t *testing.T) {
	x := tensor.Ones(tensor.Shape{1, 4})
	streams := random.NewStreams(5, "params", "default")

	model, err := bridge.NewToGraph(fn.NewDense(2), streams).LazyInit(x)
	require.NoError(t, err)

	base := random.NewStreams(5, "params", "default").Get("params").Key()
	vars, err := fn.Init(fn.NewDense(2), map[string]random.Key{"params": base}, x)
	require.NoError(t, err)

	want := vars["params"]["kernel"].(*tensor.Tensor)
	assert.True(t, model.Vars["params"]["kernel"].Value.Equal(want))
}

// TestToGraphMutableApply verifies that the committed attribute equals the
// update returned by the wrapped apply, not the pre-call value.
func TestToGraphMutableApply(t *testing.T) {
	x := tensor.Ones(tensor.Shape{1})
	model, err := bridge.NewToGraph(&counter{}, nil).LazyInit(x)
	require.NoError(t, err)
	assert.Equal(t, float32(0), model.Vars["batch_stats"]["count"].Value.At(0))

	_, err = model.Call([]*tensor.Tensor{x}, bridge.WithMutable("batch_stats"))
	require.NoError(t, err)
	assert.Equal(t, float32(1), model.Vars["batch_stats"]["count"].Value.At(0))

	// Without mutable tracking the stored value stays put.
	_, err = model.Call([]*tensor.Tensor{x})
	require.NoError(t, err)
	assert.Equal(t, float32(1), model.Vars["batch_stats"]["count"].Value.At(0))

	_, err = model.Call([]*tensor.Tensor{x}, bridge.WithMutable("batch_stats"))
	require.NoError(t, err)
	assert.Equal(t, float32(2), model.Vars["batch_stats"]["count"].Value.At(0))
}

// TestLazyInitRestoresFlagOnFailure verifies the adapter is never left
// stuck initializing after a failed lazy init.
func TestLazyInitRestoresFlagOnFailure(t *testing.T) {
	model := bridge.NewToGraph(&failing{}, nil)
	_, err := model.LazyInit(tensor.Ones(tensor.Shape{1}))
	require.Error(t, err)
	assert.False(t, model.Initializing(), "flag must reset even when the call fails")

	// The adapter stays usable for a later successful init path check.
	assert.Empty(t, model.Collections)
}

// TestLazyInitMissingRng verifies that first-time initialization of a
// module that needs a params stream fails without a bundle.
func TestLazyInitMissingRng(t *testing.T) {
	model := bridge.NewToGraph(fn.NewDense(2), nil)
	_, err := model.LazyInit(tensor.Ones(tensor.Shape{1, 4}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fn.ErrMissingRng))
	assert.False(t, model.Initializing())
}

// TestToGraphUnknownCollection verifies classification failures surface as
// unknown-collection errors.
func TestToGraphUnknownCollection(t *testing.T) {
	model := bridge.NewToGraph(&badCollection{}, nil)
	_, err := model.LazyInit(tensor.Ones(tensor.Shape{1}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, variable.ErrUnknownCollection))
}

// TestToGraphSplits verifies the adapter participates in the graph style:
// its ingested state is visible to Split under its attribute paths.
func TestToGraphSplits(t *testing.T) {
	x := tensor.Ones(tensor.Shape{1, 4})
	model, err := bridge.NewToGraph(fn.NewDense(2), random.NewStreams(0, "params")).LazyInit(x)
	require.NoError(t, err)

	_, states := graph.Split(model)
	paths := states[0].Paths()
	assert.Contains(t, paths, "Vars.params.bias")
	assert.Contains(t, paths, "Vars.params.kernel")
}
