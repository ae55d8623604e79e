package draw

import "math/rand"

// MaxDice caps a single roll.
const MaxDice = 30

// RollDice rolls n six-sided dice with n clamped to [1, limit]. A limit
// below 1 falls back to MaxDice.
func RollDice(rng *rand.Rand, n, limit int) []int {
	if limit < 1 {
		limit = MaxDice
	}
	n = min(max(n, 1), limit)
	out := make([]int, n)
	for i := range out {
		out[i] = 1 + rng.Intn(6)
	}
	return out
}

// Sum adds up a roll.
func Sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}
