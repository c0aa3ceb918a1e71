// Package shuffle provides deterministic and priority-weighted orderings used
// to rotate suggestion lists.
package shuffle

import "math/rand"

// LCG constants. The modulus keeps every intermediate product well inside
// int64 range once the seed has been reduced.
const (
	lcgMultiplier = 9301
	lcgIncrement  = 49297
	lcgModulus    = 233280
)

// SeededRandom returns a generator that yields a reproducible sequence of
// floats in [0, 1) for the given seed.
//
// The recurrence is value = (value*9301 + 49297) mod 233280, and each call
// returns value/233280. Negative seeds are folded into the positive residue
// class so the output never leaves [0, 1).
func SeededRandom(seed int64) func() float64 {
	value := seed % lcgModulus
	if value < 0 {
		value += lcgModulus
	}
	return func() float64 {
		value = (value*lcgMultiplier + lcgIncrement) % lcgModulus
		return float64(value) / lcgModulus
	}
}

// Source returns a generator backed by math/rand/v2. It is the default for
// callers that do not need reproducible output.
func Source() func() float64 {
	return rand.Float64
}

// NewSeed returns a fresh session seed in [0, 1_000_000).
func NewSeed() int64 {
	return rand.Int63n(1_000_000)
}
