package sim

import "math/rand/v2"

// engineRand wraps a seeded PRNG shared by every Context in an Engine. A
// single seed fully determines the sequence: determinism then depends only
// on the order draws happen in, which is the order of event/task
// execution.
//
// No third-party PRNG appears anywhere in the retrieval pack, so this is
// one of the few places this module reaches for the standard library by
// necessity rather than preference: math/rand/v2's PCG generator is a
// drop-in analogue of a seeded PCG64 generator.
type engineRand struct {
	r *rand.Rand
}

func newEngineRand(seed uint64) *engineRand {
	return &engineRand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// float64 draws a uniform value in [0, 1).
func (e *engineRand) float64() float64 { return e.r.Float64() }

// intn draws a uniform value in [0, n).
func (e *engineRand) intn(n int) int { return e.r.IntN(n) }

// rangeFloat64 draws a uniform value in [lo, hi).
func (e *engineRand) rangeFloat64(lo, hi float64) float64 {
	if hi <= lo {
		panicKind(ErrInvalidRange, "rand range [%v, %v) is empty", lo, hi)
	}
	return lo + e.r.Float64()*(hi-lo)
}

// Rand is the draw surface a Distribution gets handed by Context.Sample.
// It is the same shared PRNG Context.Rand and Context.GenRange use,
// exported only through these three primitives so a Distribution cannot
// reach into engine internals.
type Rand interface {
	Float64() float64
	IntN(n int) int
	RangeFloat64(lo, hi float64) float64
}

// Float64 draws a uniform value in [0, 1). Exported so *engineRand
// satisfies Rand.
func (e *engineRand) Float64() float64 { return e.float64() }

// IntN draws a uniform value in [0, n). Exported so *engineRand satisfies
// Rand.
func (e *engineRand) IntN(n int) int { return e.intn(n) }

// RangeFloat64 draws a uniform value in [lo, hi). Exported so *engineRand
// satisfies Rand.
func (e *engineRand) RangeFloat64(lo, hi float64) float64 { return e.rangeFloat64(lo, hi) }

// Distribution produces a sample using a Rand. Implement this for any
// sampling scheme (exponential, Poisson, empirical, a mixture of other
// distributions...) and pass it to Context.Sample so the draw stays part
// of the engine's single deterministic PRNG sequence instead of using an
// unseeded source.
type Distribution interface {
	Sample(r Rand) float64
}
