package testutil

import (
	"math/rand"
	"sync"
)

// Sequence returns fib(0..n) computed bottom-up with fib(0) = fib(1) = 1.
// Values beyond the int64 range wrap.
func Sequence(n int) []int64 {
	if n < 0 {
		return nil
	}

	seq := make([]int64, max(n+1, 2))
	seq[0], seq[1] = 1, 1
	for i := 2; i <= n; i++ {
		seq[i] = seq[i-1] + seq[i-2]
	}
	return seq[:n+1]
}

// BottomUp returns fib(n) with fib(0) = fib(1) = 1 using two running
// values. It panics if the result does not fit in an int64.
func BottomUp(n int) int64 {
	a, b := int64(1), int64(1)
	for i := 2; i <= n; i++ {
		next := a + b
		if next < b {
			panic("testutil: BottomUp overflow")
		}
		a, b = b, next
	}
	return b
}

// BottomUpWrapping returns fib(n) computed with unsigned 64-bit arithmetic
// and reinterpreted as int64, i.e. two's-complement wraparound.
func BottomUpWrapping(n int) int64 {
	a, b := uint64(1), uint64(1)
	for i := 2; i <= n; i++ {
		a, b = b, a+b
	}
	return int64(b)
}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Indices returns count pseudo-random indices in [0, maxIndex].
func (r *RNG) Indices(count, maxIndex int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]int, count)
	for i := range out {
		out[i] = r.rand.Intn(maxIndex + 1)
	}
	return out
}
