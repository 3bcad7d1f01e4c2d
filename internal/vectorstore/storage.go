package vectorstore

import "errors"

// ErrEmptyIndex is returned by Search when no vectors have been stored yet.
// Callers use it to tell "no data ingested" apart from a genuine fault.
var ErrEmptyIndex = errors.New("vector index is empty")

// ErrDimensionMismatch is returned when a vector does not match the
// dimensionality the index was created with.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")
