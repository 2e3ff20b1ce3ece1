package paramstore

import (
	"errors"
	"fmt"
)

var (
	// ErrNotPowerOfTwo is returned when a capacity is not a positive power of two.
	ErrNotPowerOfTwo = errors.New("paramstore: capacity must be a power of two")
	// ErrInvalidWidth is returned when the value width is not positive.
	ErrInvalidWidth = errors.New("paramstore: value width must be positive")
	// ErrNotLive is returned when erasing a position that does not hold a live entry.
	ErrNotLive = errors.New("paramstore: position is not live")
	// ErrTableFull is returned when the table would need to grow past MaxCapacity.
	ErrTableFull = errors.New("paramstore: table is full")
	// ErrProbeExhausted is returned when a probe visits every slot without resolving.
	// It means the occupancy invariant was broken.
	ErrProbeExhausted = errors.New("paramstore: probe sequence exhausted")
	// ErrMalformed is returned when a serialized map cannot be parsed.
	ErrMalformed = errors.New("paramstore: malformed map data")
	// ErrCorrupted is matched by *CorruptedError.
	ErrCorrupted = errors.New("paramstore: corrupted slot state")
	// ErrNonFinite is matched by *NonFiniteError.
	ErrNonFinite = errors.New("paramstore: non-finite value")
)

// CorruptedError reports a slot whose state is neither empty, tombstone nor live.
type CorruptedError struct {
	Index int
	State uint8
}

func (e *CorruptedError) Error() string {
	return fmt.Sprintf("paramstore: corrupted slot state %#02x at index %d", e.State, e.Index)
}

func (e *CorruptedError) Is(target error) bool { return target == ErrCorrupted }

// NonFiniteError reports a restored value that is NaN or infinite.
type NonFiniteError struct {
	Key   uint64
	Index int
	Value float64
}

func (e *NonFiniteError) Error() string {
	return fmt.Sprintf("paramstore: value %d of key %#x is %v", e.Index, e.Key, e.Value)
}

func (e *NonFiniteError) Is(target error) bool { return target == ErrNonFinite }
