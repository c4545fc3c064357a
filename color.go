package rngquery

import (
	"fmt"
	"math/rand/v2"
)

// genColor draws three independent uniform bytes and renders them as an RGB
// hex triple, "1FA0C3" style.
func genColor(rng *rand.Rand) string {
	r := rng.IntN(256)
	g := rng.IntN(256)
	b := rng.IntN(256)
	return fmt.Sprintf("%02X%02X%02X", r, g, b)
}
