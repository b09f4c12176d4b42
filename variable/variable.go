// Copyright 2026 Weave ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package variable provides the public API for typed state leaves and
// their collection mapping.
package variable

import (
	"github.com/born-ml/weave/internal/tensor"
	"github.com/born-ml/weave/internal/variable"
)

// Type classifies a variable leaf into its collection.
type Type = variable.Type

// Built-in variable types, in canonical order.
const (
	Param        Type = variable.Param
	BatchStat    Type = variable.BatchStat
	Intermediate Type = variable.Intermediate
	RngState     Type = variable.RngState
)

// Variable is a typed state leaf owned by a graph-style module.
type Variable = variable.Variable

// ErrUnknownCollection is returned when a collection name has no
// registered variable type.
var ErrUnknownCollection = variable.ErrUnknownCollection

// New creates a variable of the given type.
func New(t Type, value *tensor.Tensor) *Variable {
	return variable.New(t, value)
}

// NewParam creates a trainable parameter variable.
func NewParam(value *tensor.Tensor) *Variable {
	return variable.NewParam(value)
}

// NewBatchStat creates a batch-statistics variable.
func NewBatchStat(value *tensor.Tensor) *Variable {
	return variable.NewBatchStat(value)
}

// TypeOf classifies a collection name into a variable type.
func TypeOf(collection string) (Type, error) {
	return variable.TypeOf(collection)
}

// CollectionOf returns the collection name a variable type exports to.
func CollectionOf(t Type) string {
	return variable.CollectionOf(t)
}

// Register binds an additional collection name to a variable type.
func Register(collection string, t Type) {
	variable.Register(collection, t)
}

// SortTypes returns the given types in canonical ascending order.
func SortTypes(types []Type) []Type {
	return variable.SortTypes(types)
}
