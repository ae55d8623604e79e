// Package draw holds the random selection helpers: picking a game or a first
// player from a pool, filtering the catalog into that pool, and rolling dice.
package draw

import (
	"errors"
	"math/rand"
	"time"
)

// ErrEmptyPool is returned when there is nothing to pick from.
var ErrEmptyPool = errors.New("nothing to pick from")

// NewRNG returns a time-seeded generator. Callers own it; *rand.Rand is not
// safe for concurrent use.
func NewRNG() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// PickRandom returns one element of pool chosen uniformly.
func PickRandom[T any](rng *rand.Rand, pool []T) (T, error) {
	var zero T
	if len(pool) == 0 {
		return zero, ErrEmptyPool
	}
	return pool[rng.Intn(len(pool))], nil
}
