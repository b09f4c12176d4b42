// Copyright 2026 Weave ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package random provides the public API for named pseudo-random streams.
//
// Example:
//
//	rngs := random.NewStreams(0, "params", "dropout")
//	key := rngs.Get("dropout").Next()
package random

import (
	"github.com/born-ml/weave/internal/random"
)

// Key is an opaque, splittable pseudo-random key.
type Key = random.Key

// Stream is one named source of pseudo-random keys.
type Stream = random.Stream

// Streams is a bundle of named pseudo-random streams.
type Streams = random.Streams

// NewKey derives the root key for a seed.
func NewKey(seed uint64) Key {
	return random.NewKey(seed)
}

// NewStream creates a stream with the given base key.
func NewStream(base Key) *Stream {
	return random.NewStream(base)
}

// NewStreams creates a bundle with one stream per name; with no names, a
// single "default" stream.
func NewStreams(seed uint64, names ...string) *Streams {
	return random.NewStreams(seed, names...)
}

// StreamsFromKeys creates a bundle using the given keys as base keys.
func StreamsFromKeys(keys map[string]Key) *Streams {
	return random.StreamsFromKeys(keys)
}
