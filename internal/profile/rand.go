package profile

import "math/rand/v2"

// Rand is the randomness source behind every generation decision, both here
// and in the populate workflow. Tests supply scripted implementations to
// force specific branches.
type Rand interface {
	// Intn returns a random int in [0, n).
	Intn(n int) int
	// Float64 returns a random float64 in [0.0, 1.0).
	Float64() float64
}

// Source is the default Rand, backed by a seedable PCG.
type Source struct {
	r *rand.Rand
}

// NewSource creates a source from a seed. The same seed reproduces the same
// population run shape.
func NewSource(seed uint64) *Source {
	return &Source{r: rand.New(rand.NewPCG(seed, seed))}
}

func (s *Source) Intn(n int) int {
	return s.r.IntN(n)
}

func (s *Source) Float64() float64 {
	return s.r.Float64()
}
