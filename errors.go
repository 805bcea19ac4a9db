package memofib

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange is returned when an index is negative or does not fit the memo table.
	ErrOutOfRange = errors.New("index out of range")

	// ErrOverflow is returned when a Fibonacci value does not fit in an int64
	// and the OverflowError policy is active.
	ErrOverflow = errors.New("integer overflow")

	// ErrNilTable is returned when a computation is started without a memo table.
	ErrNilTable = errors.New("memo table is nil")

	// ErrInvalidCapacity is returned when a table would have fewer than two
	// slots or more slots than a roaring bitmap can index.
	ErrInvalidCapacity = errors.New("invalid table capacity")

	// ErrCorruptSnapshot is returned when a persisted table fails validation.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
)

// IndexOutOfRangeError indicates a lookup outside [0, Capacity).
//
// It matches ErrOutOfRange via errors.Is.
type IndexOutOfRangeError struct {
	Index    int
	Capacity int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("index out of range: %d not in [0, %d)", e.Index, e.Capacity)
}

func (e *IndexOutOfRangeError) Is(target error) bool { return target == ErrOutOfRange }

// IntegerOverflowError indicates that Fibonacci(Index) exceeds the int64 range.
//
// It matches ErrOverflow via errors.Is.
type IntegerOverflowError struct {
	Index int
}

func (e *IntegerOverflowError) Error() string {
	return fmt.Sprintf("integer overflow: fib(%d) does not fit in int64", e.Index)
}

func (e *IntegerOverflowError) Is(target error) bool { return target == ErrOverflow }

// SnapshotError describes why a snapshot was rejected.
//
// It matches ErrCorruptSnapshot via errors.Is. The underlying error (if any)
// can be accessed via errors.Unwrap.
type SnapshotError struct {
	Reason string
	cause  error
}

func (e *SnapshotError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("corrupt snapshot: %s: %v", e.Reason, e.cause)
	}
	return "corrupt snapshot: " + e.Reason
}

func (e *SnapshotError) Is(target error) bool { return target == ErrCorruptSnapshot }

func (e *SnapshotError) Unwrap() error { return e.cause }

func corrupt(reason string, cause error) error {
	return &SnapshotError{Reason: reason, cause: cause}
}
