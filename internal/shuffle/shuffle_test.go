package shuffle

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeededRandom_FirstValues(t *testing.T) {
	rng := SeededRandom(0)
	assert.InDelta(t, 49297.0/233280.0, rng(), 1e-12)

	// (49297*9301 + 49297) mod 233280
	want := float64((49297*9301+49297)%233280) / 233280
	assert.InDelta(t, want, rng(), 1e-12)
}

func TestSeededRandom_StaysInUnitInterval(t *testing.T) {
	seeds := []int64{0, 1, 42, 233279, 233280, 987654321, -1, -233281, math.MaxInt64, math.MinInt64}
	for _, seed := range seeds {
		rng := SeededRandom(seed)
		for i := 0; i < 5000; i++ {
			v := rng()
			if v < 0 || v >= 1 {
				t.Fatalf("seed %d step %d: value %v outside [0,1)", seed, i, v)
			}
		}
	}
}

func TestSeededRandom_Deterministic(t *testing.T) {
	a, b := SeededRandom(777), SeededRandom(777)
	for i := 0; i < 100; i++ {
		require.Equal(t, a(), b())
	}
}

func TestSeededShuffle_IsPermutation(t *testing.T) {
	input := []int{5, 3, 3, 9, 1, 0, 7, 7, 7, 2}
	for seed := int64(0); seed < 50; seed++ {
		got := SeededShuffle(input, seed)
		require.Len(t, got, len(input))

		a := append([]int(nil), input...)
		b := append([]int(nil), got...)
		sort.Ints(a)
		sort.Ints(b)
		assert.Equal(t, a, b, "seed %d", seed)
	}
}

func TestSeededShuffle_DeterministicAndPure(t *testing.T) {
	input := []string{"a", "b", "c", "d", "e", "f", "g"}
	orig := append([]string(nil), input...)

	first := SeededShuffle(input, 12345)
	second := SeededShuffle(input, 12345)

	assert.Equal(t, first, second)
	assert.Equal(t, orig, input, "input must not be mutated")
}

func TestSeededShuffle_SeedsVaryOrder(t *testing.T) {
	input := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	seen := make(map[[10]int]bool)
	for seed := int64(1); seed <= 20; seed++ {
		var key [10]int
		copy(key[:], SeededShuffle(input, seed))
		seen[key] = true
	}
	assert.Greater(t, len(seen), 1, "different seeds should produce different orderings")
}

func TestSeededShuffle_EmptyAndSingle(t *testing.T) {
	assert.Empty(t, SeededShuffle([]int{}, 9))
	assert.Equal(t, []int{4}, SeededShuffle([]int{4}, 9))
}

func TestWeightedShuffle_ZeroRandomnessIsPrioritySort(t *testing.T) {
	type item struct {
		name  string
		score float64
	}
	items := []item{{"low", 1}, {"high", 9}, {"mid", 5}, {"mid2", 5}, {"zero", 0}}
	got := WeightedShuffle(items, func(i item) float64 { return i.score }, 0, SeededRandom(3))

	names := make([]string, len(got))
	for i, it := range got {
		names[i] = it.name
	}
	assert.Equal(t, []string{"high", "mid", "mid2", "low", "zero"}, names)
}

func TestWeightedShuffle_EqualScoresKeepOrderWithoutRandomness(t *testing.T) {
	items := []int{3, 1, 2}
	got := WeightedShuffle(items, func(int) float64 { return 7 }, 0, nil)
	assert.Equal(t, []int{3, 1, 2}, got)
}

func TestWeightedShuffle_ClampsRandomness(t *testing.T) {
	items := []int{1, 2, 3, 4}
	score := func(i int) float64 { return float64(i) }
	assert.Equal(t, []int{4, 3, 2, 1}, WeightedShuffle(items, score, -3, nil))
	assert.Equal(t, []int{4, 3, 2, 1}, WeightedShuffle(items, score, math.NaN(), nil))
}

func TestWeightedShuffle_FullRandomnessApproximatesUniform(t *testing.T) {
	items := []int{0, 1, 2}
	score := func(i int) float64 { return float64(i) * 100 }
	rng := Source()

	const trials = 30000
	firsts := make([]int, len(items))
	for i := 0; i < trials; i++ {
		got := WeightedShuffle(items, score, 1, rng)
		firsts[got[0]]++
	}
	for v, n := range firsts {
		frac := float64(n) / trials
		assert.InDelta(t, 1.0/3.0, frac, 0.03, "item %d led %.3f of trials", v, frac)
	}
}

func TestWeightedShuffle_PartialRandomnessFavoursHighScores(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	score := func(i int) float64 { return float64(i) }
	rng := SeededRandom(99)

	const trials = 5000
	topHalf := 0
	for i := 0; i < trials; i++ {
		got := WeightedShuffle(items, score, 0.4, rng)
		if got[0] >= 5 {
			topHalf++
		}
	}
	assert.Greater(t, float64(topHalf)/trials, 0.9)
}

func TestWeightedShuffle_IsPermutation(t *testing.T) {
	items := []int{4, 8, 15, 16, 23, 42}
	got := WeightedShuffle(items, func(i int) float64 { return float64(i % 5) }, 0.4, nil)
	a := append([]int(nil), items...)
	sort.Ints(a)
	sort.Ints(got)
	assert.Equal(t, a, got)
}

func TestWeightedShuffle_Empty(t *testing.T) {
	got := WeightedShuffle([]string(nil), func(string) float64 { return 0 }, 0.4, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
