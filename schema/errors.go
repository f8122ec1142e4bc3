package schema

import "errors"

var (
	// ErrNotFound is returned when a path does not resolve to any schema node.
	ErrNotFound = errors.New("schema: node not found")
	// ErrInvalidLeaf is returned when a leaf definition violates an
	// invariant of §4.2 (S1-S5), e.g. a leaf declared without a valueType.
	ErrInvalidLeaf = errors.New("schema: invalid leaf definition")
	// ErrNotLeaf / ErrNotNode distinguish wrong-shape lookups.
	ErrNotLeaf = errors.New("schema: node is not a leaf")
	ErrNotNode = errors.New("schema: node is not an intermediate node")
	// ErrNotTable is returned by RowSchema when the leaf has no rowSchema.
	ErrNotTable = errors.New("schema: leaf is not a table")
)
