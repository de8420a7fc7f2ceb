package respond

import "errors"

var (
	// ErrGeneratorRequired is returned when a generator is not provided.
	ErrGeneratorRequired = errors.New("generator required")

	// ErrEmptyCompletion indicates the generator returned no usable text.
	ErrEmptyCompletion = errors.New("empty completion")
)
