// Package random implements named pseudo-random streams for module
// initialization and stochastic layers.
//
// A Key is a splittable pseudo-random handle. Streams bundles one Stream
// per logical purpose (e.g. "params", "dropout"); each Stream hands out a
// fresh derived Key on every draw so no key is ever used for two distinct
// draws.
package random

import (
	"hash/fnv"
	"sort"
)

// Key is an opaque, splittable pseudo-random key.
//
// Keys are derived, never generated: NewKey derives the root key from a
// seed, and Fold/FoldString derive child keys deterministically. The same
// seed and fold sequence always yields the same key, across processes.
type Key uint64

// splitmix64 is the mixing function behind all key derivation.
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// NewKey derives the root key for a seed.
func NewKey(seed uint64) Key {
	return Key(splitmix64(seed))
}

// Fold derives a child key from k and arbitrary data.
func (k Key) Fold(data uint64) Key {
	return Key(splitmix64(uint64(k) ^ splitmix64(data)))
}

// FoldString derives a child key from k and a name.
func (k Key) FoldString(name string) Key {
	h := fnv.New64a()
	h.Write([]byte(name))
	return k.Fold(h.Sum64())
}

// Stream is one named source of pseudo-random keys.
//
// Each call to Next derives a fresh key from the base key and an
// incrementing draw counter. Two calls never return the same key.
type Stream struct {
	base  Key
	count uint64
}

// NewStream creates a stream with the given base key.
func NewStream(base Key) *Stream {
	return &Stream{base: base}
}

// Key returns the stream's base key without consuming a draw.
func (s *Stream) Key() Key {
	return s.base
}

// Next derives and returns a fresh key, advancing the draw counter.
func (s *Stream) Next() Key {
	k := s.base.Fold(s.count)
	s.count++
	return k
}

// Count returns the number of draws taken so far.
func (s *Stream) Count() uint64 {
	return s.count
}

// Clone returns an independent copy of the stream, counter included.
func (s *Stream) Clone() *Stream {
	c := *s
	return &c
}

// Streams is a bundle of named pseudo-random streams.
//
// Stream names correspond to logical purposes ("params", "dropout", ...).
// Iteration order is always the sorted name order so that repeated calls
// with the same upstream key produce the same draw sequence.
type Streams struct {
	streams map[string]*Stream
}

// NewStreams creates a bundle with one stream per name, each seeded by
// folding the name into the root key derived from seed.
//
// With no names given, a single "default" stream is created.
func NewStreams(seed uint64, names ...string) *Streams {
	if len(names) == 0 {
		names = []string{"default"}
	}
	root := NewKey(seed)
	streams := make(map[string]*Stream, len(names))
	for _, name := range names {
		streams[name] = NewStream(root.FoldString(name))
	}
	return &Streams{streams: streams}
}

// StreamsFromKeys creates a bundle with one stream per entry, using the
// given keys as base keys directly.
func StreamsFromKeys(keys map[string]Key) *Streams {
	streams := make(map[string]*Stream, len(keys))
	for name, key := range keys {
		streams[name] = NewStream(key)
	}
	return &Streams{streams: streams}
}

// Names returns the stream names in sorted order.
func (r *Streams) Names() []string {
	names := make([]string, 0, len(r.streams))
	for name := range r.streams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the stream with the given name, or nil if absent.
func (r *Streams) Get(name string) *Stream {
	return r.streams[name]
}

// Has reports whether a stream with the given name exists.
func (r *Streams) Has(name string) bool {
	_, ok := r.streams[name]
	return ok
}

// Reseed replaces the base key of every named stream and resets its draw
// counter. Names without a matching stream create a new one.
func (r *Streams) Reseed(keys map[string]Key) {
	for name, key := range keys {
		r.streams[name] = NewStream(key)
	}
}

// Clone returns an independent deep copy of the bundle.
func (r *Streams) Clone() *Streams {
	streams := make(map[string]*Stream, len(r.streams))
	for name, s := range r.streams {
		streams[name] = s.Clone()
	}
	return &Streams{streams: streams}
}
