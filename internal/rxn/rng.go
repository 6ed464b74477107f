package rxn

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// Source yields the uniform variates consumed by the engine. Uniform01 must
// return values on the half-open interval (0,1], excluding 0 so that
// -ln(u) is always finite. Implementations must be deterministic for a
// given seed; the engine consumes the stream in a strict order.
type Source interface {
	Uniform01() float64
}

// pcgSource is the default Source: a small-state PCG generator from
// math/rand/v2, seeded deterministically.
type pcgSource struct {
	rng *rand.Rand
}

// NewSource creates a deterministic Source from a 64-bit seed. Two sources
// with the same seed produce the same stream.
func NewSource(seed uint64) Source {
	// Derive the second PCG word from the first so a single uint64 fully
	// determines the state.
	return &pcgSource{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewEntropySource creates a Source seeded from OS entropy.
func NewEntropySource() Source {
	var b [8]byte
	_, _ = crand.Read(b[:])
	return NewSource(binary.LittleEndian.Uint64(b[:]))
}

func (s *pcgSource) Uniform01() float64 {
	// Float64 is uniform on [0,1); flipping the interval excludes 0.
	return 1 - s.rng.Float64()
}
