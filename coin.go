package rngquery

import "math/rand/v2"

// CoinResult is the outcome of a coin flip.
type CoinResult int

const (
	Heads CoinResult = iota
	Tails
)

func (c CoinResult) String() string {
	if c == Heads {
		return "heads"
	}
	return "tails"
}

// tossCoin draws one uniform boolean from the source.
func tossCoin(rng *rand.Rand) CoinResult {
	if rng.IntN(2) == 0 {
		return Heads
	}
	return Tails
}
