// Package dice provides the single injectable source of randomness used for die rolls.
//
// Every roll made during a game flows through one Source, so a game can be replayed
// exactly from its seeds and the sequence of player decisions.
package dice

import (
	"fmt"
	"math/rand/v2"

	"stackrankdice/meta"
)

// Source produces uniform die faces in [1, meta.DIE_FACES].
type Source interface {
	NextDie() int
}

// Intner is implemented by sources that can also draw uniform integers in [0, n).
type Intner interface {
	IntN(n int) int
}

// Roll draws n faces from src.
func Roll(src Source, n int) []int {
	rolls := make([]int, n)
	for i := range rolls {
		rolls[i] = src.NextDie()
	}
	return rolls
}

// Between draws an integer in [lo, hi] from src. Sources without IntN fall back to
// folding one die face into the range.
func Between(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	span := hi - lo + 1
	if in, ok := src.(Intner); ok {
		return lo + in.IntN(span)
	}
	return lo + (src.NextDie()-1)%span
}

type seeded struct {
	seed uint64
	rng  *rand.Rand
}

// NewSeeded returns a deterministic source for seed.
func NewSeeded(seed uint64) Source {
	return &seeded{
		seed: seed,
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (s *seeded) NextDie() int {
	return s.rng.IntN(meta.DIE_FACES) + 1
}

func (s *seeded) IntN(n int) int {
	return s.rng.IntN(n)
}

func (s *seeded) String() string {
	return fmt.Sprintf("seeded(%d)", s.seed)
}

// Sequence replays a fixed list of faces. It panics when exhausted, which in a test means
// the scenario consumed more rolls than it scripted.
type Sequence struct {
	faces []int
	next  int
}

// NewSequence returns a source yielding faces in order.
func NewSequence(faces ...int) *Sequence {
	for _, f := range faces {
		if f < 1 || f > meta.DIE_FACES {
			panic(fmt.Sprintf("die face %d out of range", f))
		}
	}
	return &Sequence{faces: faces}
}

func (s *Sequence) NextDie() int {
	if s.next >= len(s.faces) {
		panic(fmt.Sprintf("dice sequence exhausted after %d rolls", len(s.faces)))
	}
	f := s.faces[s.next]
	s.next++
	return f
}

// Remaining reports how many scripted faces have not been drawn yet.
func (s *Sequence) Remaining() int {
	return len(s.faces) - s.next
}
