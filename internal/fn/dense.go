package fn

import (
	"fmt"

	"github.com/born-ml/weave/internal/random"
	"github.com/born-ml/weave/internal/tensor"
)

// Dense is a fully connected layer in the fn style: y = x @ W + b.
//
// The kernel has shape [in_features, out_features] and is created with
// Xavier/Glorot uniform initialization during Init; the bias starts at
// zeros. Dense itself holds no state, only configuration.
type Dense struct {
	Features int
	UseBias  bool
}

// NewDense creates a Dense descriptor with a bias.
func NewDense(features int) *Dense {
	return &Dense{Features: features, UseBias: true}
}

// Forward declares the layer's parameters against the scope and computes
// the affine transform. The input must have shape [batch, in_features].
func (d *Dense) Forward(s *Scope, inputs ...*tensor.Tensor) (*tensor.Tensor, error) {
	if len(inputs) != 1 {
		return nil, fmt.Errorf("Dense: expected 1 input, got %d", len(inputs))
	}
	x := inputs[0]
	shape := x.Shape()
	if len(shape) != 2 {
		return nil, fmt.Errorf("Dense: expected 2D input [batch, features], got shape %v", shape)
	}
	in := shape[1]

	kernel, err := s.Param("kernel", tensor.Shape{in, d.Features}, func(key random.Key, sh tensor.Shape) *tensor.Tensor {
		return tensor.XavierUniform(sh, key)
	})
	if err != nil {
		return nil, err
	}
	out := x.MatMul(kernel)

	if d.UseBias {
		bias, err := s.Param("bias", tensor.Shape{d.Features}, func(_ random.Key, sh tensor.Shape) *tensor.Tensor {
			return tensor.Zeros(sh)
		})
		if err != nil {
			return nil, err
		}
		out = out.Add(bias)
	}
	return out, nil
}
