// Copyright 2026 Weave ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for the array values threaded
// through the Weave module layer.
//
// Example:
//
//	x := tensor.Ones(tensor.Shape{2, 3})
//	w := tensor.XavierUniform(tensor.Shape{3, 4}, random.NewKey(0))
//	y := x.MatMul(w)
package tensor

import (
	"github.com/born-ml/weave/internal/random"
	"github.com/born-ml/weave/internal/tensor"
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3} represents a 2D tensor with dimensions 2×3.
type Shape = tensor.Shape

// Tensor is a dense row-major float32 array.
type Tensor = tensor.Tensor

// Creation functions

// New creates a zero-filled tensor with the given shape.
func New(shape Shape) *Tensor {
	return tensor.New(shape)
}

// FromSlice creates a tensor from a flat slice and a shape.
func FromSlice(data []float32, shape Shape) (*Tensor, error) {
	return tensor.FromSlice(data, shape)
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape) *Tensor {
	return tensor.Zeros(shape)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape) *Tensor {
	return tensor.Ones(shape)
}

// Full creates a tensor filled with a specific value.
func Full(shape Shape, value float32) *Tensor {
	return tensor.Full(shape, value)
}

// Randn creates a tensor with values drawn from N(0, 1), determined
// entirely by the key.
func Randn(shape Shape, key random.Key) *Tensor {
	return tensor.Randn(shape, key)
}

// Uniform creates a tensor with values drawn uniformly from [lo, hi),
// determined entirely by the key.
func Uniform(shape Shape, key random.Key, lo, hi float32) *Tensor {
	return tensor.Uniform(shape, key, lo, hi)
}

// XavierUniform creates a tensor initialized with the Xavier/Glorot
// uniform distribution.
func XavierUniform(shape Shape, key random.Key) *Tensor {
	return tensor.XavierUniform(shape, key)
}
