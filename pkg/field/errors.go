package field

import "errors"

var (
	// ErrDimensionMismatch indicates a vector whose length differs from
	// the field's fixed dimensionality. This is an invariant violation
	// rejected at construction time, never a recoverable runtime state.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmptyText indicates an experience or query with no content at all.
	ErrEmptyText = errors.New("empty experience text")
)
