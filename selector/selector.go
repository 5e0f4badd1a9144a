// Package selector provides the choice strategies handed to the track
// assembler: seeded random, fixed and scripted.
package selector

import (
	"math/rand"
	"time"
)

// Rand picks uniformly using its own random source.
type Rand struct {
	rng *rand.Rand
}

// NewRand returns a Rand seeded with seed. A zero seed uses the current time.
func NewRand(seed int64) *Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Rand{rng: rand.New(rand.NewSource(seed))}
}

func (r *Rand) Pick(n int) int {
	if n <= 0 {
		return -1
	}
	return r.rng.Intn(n)
}

// Fixed always picks the same index.
type Fixed int

func (f Fixed) Pick(int) int { return int(f) }

// Sequence replays a list of picks, starting over when exhausted.
type Sequence struct {
	picks []int
	next  int
}

// NewSequence returns a Sequence of picks. An empty list always picks 0.
func NewSequence(picks ...int) *Sequence {
	return &Sequence{picks: picks}
}

func (s *Sequence) Pick(int) int {
	if len(s.picks) == 0 {
		return 0
	}
	p := s.picks[s.next%len(s.picks)]
	s.next++
	return p
}
