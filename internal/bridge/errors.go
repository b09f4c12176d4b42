package bridge

import "errors"

// Common errors.
var (
	// ErrMissingGraphDef is returned when a ToFn apply call runs before
	// any initialization stored a graph definition.
	ErrMissingGraphDef = errors.New("no graph definition stored: apply called before init")

	// ErrNotInitialized is returned when Functional.Apply is called
	// before Functional.Init.
	ErrNotInitialized = errors.New("functional handle not initialized: call Init first")
)
