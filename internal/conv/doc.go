// Package conv provides range-checked integer conversions.
//
// Use it where a value crosses from untrusted input (snapshot headers,
// caller supplied capacities) into a narrower or differently signed type.
// Conversions that are safe by construction use plain casts.
package conv
