// Package rng provides the seedable random streams behind every probability check.
//
// Chances are percentages. They are compared on an integer scale: a sample is
// drawn uniformly from [0, SampleSpace) and a check succeeds when the sample is
// at most chance*FloatScale.
package rng

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

const (
	// FloatScale converts a percentage into sample units.
	FloatScale = 1000
	// SampleSpace is the exclusive upper bound of Sample.
	SampleSpace = 100 * FloatScale
)

// Stream identifiers keep each combatant's sequence independent under one seed.
const (
	StreamPlayer uint64 = 1
	StreamPet    uint64 = 2
)

const streamSpread = 0x9E3779B97F4A7C15

// Source is a single combatant's random stream.
type Source struct {
	seed   uint64
	stream uint64
	pcg    *rand.PCG
	r      *rand.Rand
}

// New returns a stream for the given seed and stream id, positioned at iteration 0.
func New(seed, stream uint64) *Source {
	s := &Source{seed: seed, stream: stream}
	s.pcg = rand.NewPCG(seed, stream*streamSpread)
	s.r = rand.New(s.pcg)
	return s
}

// Seed returns the base seed the stream was created with.
func (s *Source) Seed() uint64 {
	return s.seed
}

// Reseed restarts the stream for an iteration. The same (seed, stream,
// iteration) triple always yields the same sequence.
func (s *Source) Reseed(iteration int) {
	s.pcg.Seed(s.seed, s.stream*streamSpread+uint64(iteration))
}

// Sample draws a uniform integer in [0, SampleSpace).
func (s *Source) Sample() int {
	return s.r.IntN(SampleSpace)
}

// IsSuccess reports whether a check with the given percentage chance passes.
// A chance of 0 or less never passes and 100 or more always passes; neither
// boundary consumes a sample.
func (s *Source) IsSuccess(chance float64) bool {
	if chance <= 0 {
		return false
	}
	if chance >= 100 {
		return true
	}
	return float64(s.Sample()) <= chance*FloatScale
}

// Range draws an integer in [lo, hi].
func (s *Source) Range(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.r.IntN(hi-lo+1)
}

// Uniform draws a float in [lo, hi).
func (s *Source) Uniform(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + s.r.Float64()*(hi-lo)
}

// NewSeed generates a random base seed using crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}
