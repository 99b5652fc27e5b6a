package analysis

import "math/rand"

// Baseline quality bounds for a detected pose.
const (
	BaselineMin = 75.0
	BaselineMax = 90.0
)

// Baseline supplies the per-event quality baseline blended with frame symmetry.
type Baseline interface {
	Next() float64
}

type seededBaseline struct {
	rng *rand.Rand
}

// SeededBaseline draws uniformly from [75,90) with a reproducible sequence.
func SeededBaseline(seed int64) Baseline {
	return &seededBaseline{rng: rand.New(rand.NewSource(seed))}
}

func (b *seededBaseline) Next() float64 {
	return BaselineMin + b.rng.Float64()*(BaselineMax-BaselineMin)
}

type fixedBaseline float64

// FixedBaseline always returns v, clamped into [75,90].
func FixedBaseline(v float64) Baseline {
	if v < BaselineMin {
		v = BaselineMin
	}
	if v > BaselineMax {
		v = BaselineMax
	}
	return fixedBaseline(v)
}

func (b fixedBaseline) Next() float64 {
	return float64(b)
}
