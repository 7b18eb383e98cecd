// Package rng provides the seedable Gaussian source used by source
// nucleation noise. The contract is deliberately narrow: a
// reproducible stream seeded at construction, producing independent
// N(mean, stdev) samples. Any generator satisfying that contract is
// conformant; this implementation wraps math/rand.
package rng

import "math/rand"

// Source is a seedable Gaussian random number generator.
type Source struct {
	r *rand.Rand
}

// New builds a Source seeded with seed. Two Sources built with the
// same seed produce identical sample sequences.
func New(seed int64) *Source {
	return &Source{r: rand.New(rand.NewSource(seed))}
}

// NextGaussian returns a sample from N(mean, stdev).
func (s *Source) NextGaussian(mean, stdev float64) float64 {
	return mean + stdev*s.r.NormFloat64()
}

// NextFloat64 returns a sample from the uniform distribution on
// [0, 1).
func (s *Source) NextFloat64() float64 {
	return s.r.Float64()
}
