package markov

import "math/rand"

// WeightedRandomItem draws one item with probability proportional to its
// weight (roulette-wheel selection) and returns it together with its
// selection probability weight/sum. ok is false for an empty slice or a
// non-positive weight sum. The weight function is evaluated repeatedly
// within a single call, so it must be deterministic and side-effect free.
//
// When floating-point rounding lets the subtraction walk run off the end of
// the slice, the last item is returned with a sentinel probability of -1.
// That degenerate case is deliberate and visible to callers; do not paper
// over it.
func WeightedRandomItem[T any](rng *rand.Rand, items []T, weight func(T) float64) (item T, p float64, ok bool) {
	if len(items) == 0 {
		return item, 0, false
	}
	sum := 0.0
	for _, it := range items {
		sum += weight(it)
	}
	if sum <= 0 {
		return item, 0, false
	}

	choice := rng.Float64() * sum
	for _, it := range items {
		choice -= weight(it)
		if choice < 0 {
			return it, weight(it) / sum, true
		}
	}
	return items[len(items)-1], -1, true
}
