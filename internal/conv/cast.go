package conv

import (
	"errors"
	"fmt"
	"math"
)

// ErrRange is returned when a value does not fit the target type.
var ErrRange = errors.New("conv: value out of range")

// IntToUint32 converts v to uint32.
func IntToUint32(v int) (uint32, error) {
	if v < 0 || uint64(v) > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d to uint32", ErrRange, v)
	}
	return uint32(v), nil
}

// Uint64ToInt converts v to int.
func Uint64ToInt(v uint64) (int, error) {
	if v > uint64(math.MaxInt) {
		return 0, fmt.Errorf("%w: %d to int", ErrRange, v)
	}
	return int(v), nil
}
