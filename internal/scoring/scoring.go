package scoring

import (
	"math/rand/v2"
	"sync"
)

const (
	// Baseline is the neutral quality score used when nothing better is known.
	Baseline = 75

	fallbackMin  = 70
	fallbackSpan = 30
)

// Strategy supplies the scores that cannot be derived from real analysis:
// resume quality, appearance and the 0-100 sub-score fallbacks.
type Strategy interface {
	// Quality returns a resume quality score in 0..100.
	Quality() int
	// Fallback returns a sub-score used when no heuristic value exists.
	Fallback() int
}

// Random draws every score uniformly from 70..99.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandom(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *Random) Quality() int {
	return r.draw()
}

func (r *Random) Fallback() int {
	return r.draw()
}

func (r *Random) draw() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fallbackMin + r.rng.IntN(fallbackSpan)
}

// Fixed always returns the same score. Values outside 0..100 are clamped.
type Fixed int

func (f Fixed) Quality() int {
	return Clamp(int(f))
}

func (f Fixed) Fallback() int {
	return Clamp(int(f))
}

// New returns the strategy for the configured mode. Unknown modes fall back to
// a Fixed baseline.
func New(mode string, fixed int, seed uint64) Strategy {
	switch mode {
	case "random":
		return NewRandom(seed)
	case "fixed":
		if fixed == 0 {
			fixed = Baseline
		}
		return Fixed(fixed)
	default:
		return Fixed(Baseline)
	}
}

// Clamp bounds v to the 0..100 score range.
func Clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
