package hash

import "errors"

var (
	// ErrPathNotFound indicates that an addressed node does not exist.
	ErrPathNotFound = errors.New("path not found")
	// ErrTypeMismatch indicates an operation was attempted against a node
	// whose tag does not match what the caller expected.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrCastFailed indicates a conversion between two tags was attempted
	// but the source value could not be parsed or represented as the
	// target tag.
	ErrCastFailed = errors.New("cast failed")
	// ErrInvalidPath indicates a path string could not be parsed, or named
	// a negative or non-integer sequence index.
	ErrInvalidPath = errors.New("invalid path")
	// ErrNotSequence indicates an indexed path segment was applied to a
	// node whose value is not a sequence-of-maps.
	ErrNotSequence = errors.New("not a sequence")
)
