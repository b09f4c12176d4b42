package tensor

import "fmt"

// Add returns the element-wise sum of t and other.
//
// A 1-D other of size [n] broadcasts across the rows of a 2-D t of shape
// [m, n] (the bias case). All other shape combinations must match exactly.
func (t *Tensor) Add(other *Tensor) *Tensor {
	if t.shape.Equal(other.shape) {
		out := t.Clone()
		for i := range out.data {
			out.data[i] += other.data[i]
		}
		return out
	}
	// Row broadcast: [m, n] + [n]
	if len(t.shape) == 2 && len(other.shape) == 1 && t.shape[1] == other.shape[0] {
		out := t.Clone()
		n := other.shape[0]
		for i := range out.data {
			out.data[i] += other.data[i%n]
		}
		return out
	}
	panic(fmt.Sprintf("Add: incompatible shapes %v and %v", t.shape, other.shape))
}

// AddScalar returns t with value added to every element.
func (t *Tensor) AddScalar(value float32) *Tensor {
	out := t.Clone()
	for i := range out.data {
		out.data[i] += value
	}
	return out
}

// Scale returns t with every element multiplied by value.
func (t *Tensor) Scale(value float32) *Tensor {
	out := t.Clone()
	for i := range out.data {
		out.data[i] *= value
	}
	return out
}

// MatMul computes the matrix product of t [m, k] and other [k, n].
func (t *Tensor) MatMul(other *Tensor) *Tensor {
	if len(t.shape) != 2 || len(other.shape) != 2 {
		panic(fmt.Sprintf("MatMul: expected 2D tensors, got %v and %v", t.shape, other.shape))
	}
	if t.shape[1] != other.shape[0] {
		panic(fmt.Sprintf("MatMul: inner dimensions mismatch: %v x %v", t.shape, other.shape))
	}
	m, k, n := t.shape[0], t.shape[1], other.shape[1]
	out := New(Shape{m, n})
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			var sum float32
			for p := 0; p < k; p++ {
				sum += t.data[i*k+p] * other.data[p*n+j]
			}
			out.data[i*n+j] = sum
		}
	}
	return out
}
