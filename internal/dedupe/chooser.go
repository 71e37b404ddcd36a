package dedupe

import (
	"math/rand/v2"
	"time"
)

// Chooser decides which member of the best-scoring pair represents a group.
// PickFirst returning true selects the earlier member of the pair.
type Chooser interface {
	PickFirst() bool
}

// ChooserFunc adapts a function to the Chooser interface.
type ChooserFunc func() bool

// PickFirst calls f.
func (f ChooserFunc) PickFirst() bool { return f() }

// randChooser flips a fair coin from a seeded PCG source.
type randChooser struct {
	rng *rand.Rand
}

// NewRandChooser returns a Chooser that picks either member with equal
// probability. The same seed yields the same sequence of picks.
func NewRandChooser(seed uint64) Chooser {
	return &randChooser{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewTimeChooser returns a random Chooser seeded from the wall clock.
func NewTimeChooser() Chooser {
	return NewRandChooser(uint64(time.Now().UnixNano()))
}

func (c *randChooser) PickFirst() bool {
	return c.rng.Float64() < 0.5
}

// AlwaysFirst picks the earlier member of every pair.
var AlwaysFirst Chooser = ChooserFunc(func() bool { return true })

// AlwaysSecond picks the later member of every pair.
var AlwaysSecond Chooser = ChooserFunc(func() bool { return false })
