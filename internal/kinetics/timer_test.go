package kinetics

import (
	"math"
	"testing"
)

func TestSimTimerDeterministic(t *testing.T) {
	a := NewSimTimer(1234, 0)
	b := NewSimTimer(1234, 0)

	for i := 0; i < 1000; i++ {
		if a.Float64() != b.Float64() {
			t.Fatalf("draw %d diverged for identical seeds", i)
		}
		if a.AdvanceTime(2.0) != b.AdvanceTime(2.0) {
			t.Fatalf("advance %d diverged for identical seeds", i)
		}
	}
	if a.Time() != b.Time() {
		t.Fatalf("clocks diverged: %g vs %g", a.Time(), b.Time())
	}
}

func TestSimTimerAdvanceTime(t *testing.T) {
	timer := NewSimTimer(99, 0)

	dt := timer.AdvanceTime(10.0)
	if dt <= 0 {
		t.Errorf("waiting time = %g, want positive", dt)
	}
	if timer.Time() != dt {
		t.Errorf("Time = %g, want %g", timer.Time(), dt)
	}

	// Exponential waiting times with rate k average 1/k.
	timer = NewSimTimer(7, 0)
	const draws = 200000
	const rate = 4.0
	var sum float64
	for i := 0; i < draws; i++ {
		sum += -math.Log(1-timer.Float64()) / rate
	}
	mean := sum / draws
	if math.Abs(mean-1.0/rate) > 0.05/rate {
		t.Errorf("mean waiting time = %g, want ~%g", mean, 1.0/rate)
	}
}

func TestSimTimerZeroRate(t *testing.T) {
	timer := NewSimTimer(5, 0)
	if dt := timer.AdvanceTime(0); dt != 0 {
		t.Errorf("zero-rate advance = %g, want 0", dt)
	}
	if dt := timer.AdvanceTime(-1); dt != 0 {
		t.Errorf("negative-rate advance = %g, want 0", dt)
	}
	if timer.Time() != 0 {
		t.Errorf("clock moved with no propensity")
	}
}

func TestSimTimerExpired(t *testing.T) {
	uncapped := NewSimTimer(1, 0)
	uncapped.AdvanceTime(0.0001)
	if uncapped.Expired() {
		t.Errorf("uncapped timer should never expire")
	}

	capped := NewSimTimer(1, 1e-12)
	if capped.Expired() {
		t.Errorf("fresh timer should not be expired")
	}
	for i := 0; i < 100 && !capped.Expired(); i++ {
		capped.AdvanceTime(1.0)
	}
	if !capped.Expired() {
		t.Errorf("capped timer never expired after advancing past cap")
	}
}
