package imagegen

import (
	"math"
	"math/rand/v2"
	"sync"
)

const (
	MinSeed uint32 = 1
	MaxSeed uint32 = math.MaxUint32 - 1
)

// SeedSource draws replacement seeds in [MinSeed, MaxSeed]. Implementations
// must be safe for concurrent use.
type SeedSource interface {
	Seed() uint32
}

// SeedFunc adapts a plain function to SeedSource.
type SeedFunc func() uint32

func (f SeedFunc) Seed() uint32 { return f() }

type randomSeedSource struct{}

// NewRandomSeedSource returns a source backed by the runtime's random
// generator.
func NewRandomSeedSource() SeedSource {
	return randomSeedSource{}
}

func (randomSeedSource) Seed() uint32 {
	return rand.Uint32N(MaxSeed) + MinSeed
}

type fixedSeedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewFixedSeedSource returns a deterministic source. Two sources built from
// the same pair yield the same sequence.
func NewFixedSeedSource(seed1, seed2 uint64) SeedSource {
	return &fixedSeedSource{rng: rand.New(rand.NewPCG(seed1, seed2))}
}

func (s *fixedSeedSource) Seed() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Uint32N(MaxSeed) + MinSeed
}
