package shuffle

import (
	"math"
	"sort"
)

// SeededShuffle returns a Fisher-Yates permutation of items driven by
// SeededRandom(seed). The input slice is not modified.
func SeededShuffle[T any](items []T, seed int64) []T {
	return ShuffleWith(items, SeededRandom(seed))
}

// ShuffleWith performs a Fisher-Yates shuffle on a copy of items, consuming
// rnd for every swap position.
func ShuffleWith[T any](items []T, rnd func() float64) []T {
	out := make([]T, len(items))
	copy(out, items)
	if rnd == nil {
		rnd = Source()
	}
	for i := len(out) - 1; i > 0; i-- {
		j := int(math.Floor(rnd() * float64(i+1)))
		if j > i {
			j = i
		}
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// WeightedShuffle orders items by a blend of their normalised score and a
// random draw:
//
//	key = (1-randomness)*norm(score) + randomness*rnd()
//
// A randomness of 0 is a stable descending sort by score; a randomness of 1
// is a uniform shuffle. Values outside [0, 1] are clamped. A nil rnd uses
// math/rand/v2.
func WeightedShuffle[T any](items []T, score func(T) float64, randomness float64, rnd func() float64) []T {
	if len(items) == 0 {
		return []T{}
	}
	if rnd == nil {
		rnd = Source()
	}
	randomness = clamp01(randomness)

	scores := make([]float64, len(items))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, it := range items {
		s := score(it)
		if math.IsNaN(s) {
			s = 0
		}
		scores[i] = s
		lo = math.Min(lo, s)
		hi = math.Max(hi, s)
	}
	span := hi - lo

	type keyed struct {
		item T
		key  float64
	}
	ks := make([]keyed, len(items))
	for i, it := range items {
		norm := 1.0
		if span > 0 {
			norm = (scores[i] - lo) / span
		}
		key := (1 - randomness) * norm
		if randomness > 0 {
			key += randomness * rnd()
		}
		ks[i] = keyed{item: it, key: key}
	}

	sort.SliceStable(ks, func(i, j int) bool {
		return ks[i].key > ks[j].key
	})

	out := make([]T, len(ks))
	for i, k := range ks {
		out[i] = k.item
	}
	return out
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
