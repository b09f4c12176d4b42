package tensor

import (
	"math"
	"math/rand/v2"

	"github.com/born-ml/weave/internal/random"
)

// rngFor builds a deterministic generator from a pseudo-random key.
func rngFor(key random.Key) *rand.Rand {
	k := uint64(key)
	return rand.New(rand.NewPCG(k, k^0x9e3779b97f4a7c15))
}

// Randn creates a tensor with values drawn from the standard normal
// distribution N(0, 1), determined entirely by the key.
func Randn(shape Shape, key random.Key) *Tensor {
	t := New(shape)
	rng := rngFor(key)
	for i := range t.data {
		t.data[i] = float32(rng.NormFloat64())
	}
	return t
}

// Uniform creates a tensor with values drawn uniformly from [lo, hi),
// determined entirely by the key.
func Uniform(shape Shape, key random.Key, lo, hi float32) *Tensor {
	t := New(shape)
	rng := rngFor(key)
	for i := range t.data {
		t.data[i] = lo + float32(rng.Float64())*(hi-lo)
	}
	return t
}

// XavierUniform creates a tensor initialized with the Xavier/Glorot uniform
// distribution U(-b, b), b = sqrt(6 / (fan_in + fan_out)), for a 2-D weight
// of shape [fan_in, fan_out]. Other ranks use the first and last dimension.
func XavierUniform(shape Shape, key random.Key) *Tensor {
	fanIn, fanOut := 1, 1
	if len(shape) >= 2 {
		fanIn, fanOut = shape[0], shape[len(shape)-1]
	} else if len(shape) == 1 {
		fanIn, fanOut = shape[0], shape[0]
	}
	bound := float32(math.Sqrt(6.0 / float64(fanIn+fanOut)))
	return Uniform(shape, key, -bound, bound)
}
