package rngquery

import (
	"math/rand/v2"

	"github.com/google/uuid"
)

// rngReader adapts the interpreter-owned source to io.Reader so uuid can
// draw from it. The bytes come from the same deterministic stream as every
// other expression: a seeded run reproduces its UUIDs.
type rngReader struct {
	rng *rand.Rand
}

func (r rngReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(r.rng.IntN(256))
	}
	return len(p), nil
}

// genUUID renders a version-4 variant-1 UUID in the canonical dashed
// 8-4-4-4-12 grouping. The version and variant bit fields are applied by the
// uuid package per RFC 9562.
func genUUID(rng *rand.Rand) string {
	u, err := uuid.NewRandomFromReader(rngReader{rng: rng})
	if err != nil {
		// the reader never fails
		panic(err)
	}
	return u.String()
}
