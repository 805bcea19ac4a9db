// Package testutil provides testing utilities for memofib.
//
// This package is intended for use in tests only. It provides an
// independent bottom-up Fibonacci computation to check memoized results
// against, and a deterministic RNG for picking indices.
//
// # Ground Truth
//
//	want := testutil.BottomUp(40)       // 165580141
//	seq := testutil.Sequence(10)        // [1 1 2 3 5 8 13 21 34 55 89]
//	w := testutil.BottomUpWrapping(100) // two's-complement result
//
// # Random Indices
//
//	rng := testutil.NewRNG(seed)
//	ns := rng.Indices(16, 91) // 16 indices in [0, 91]
package testutil
