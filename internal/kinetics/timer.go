package kinetics

import (
	"math"
	"math/rand"
)

// SimTimer carries one trajectory's clock and random source. Weighted
// selection and time advance draw from the same stream, so a trajectory is
// fully determined by its seed. One timer per trajectory; never shared.
type SimTimer struct {
	rng     *rand.Rand
	time    float64
	maxTime float64
}

// NewSimTimer builds a timer seeded for one trajectory. A maxTime of zero
// means the trajectory has no time cap.
func NewSimTimer(seed int64, maxTime float64) *SimTimer {
	return &SimTimer{
		rng:     rand.New(rand.NewSource(seed)),
		maxTime: maxTime,
	}
}

// Float64 returns a uniform draw in [0, 1). Satisfies RandomSource.
func (t *SimTimer) Float64() float64 {
	return t.rng.Float64()
}

// AdvanceTime draws the exponential waiting time of a state with the given
// total propensity and moves the clock forward by it, per CTMC semantics.
// Returns the increment; a non-positive rate leaves the clock untouched.
func (t *SimTimer) AdvanceTime(totalRate float64) float64 {
	if totalRate <= 0 {
		return 0
	}
	dt := -math.Log(1-t.rng.Float64()) / totalRate
	t.time += dt
	return dt
}

// Time returns the simulated time elapsed so far, in seconds.
func (t *SimTimer) Time() float64 {
	return t.time
}

// MaxTime returns the configured cap, zero when uncapped.
func (t *SimTimer) MaxTime() float64 {
	return t.maxTime
}

// Expired reports whether the clock reached the cap.
func (t *SimTimer) Expired() bool {
	return t.maxTime > 0 && t.time >= t.maxTime
}
