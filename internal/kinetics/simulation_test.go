package kinetics

import (
	"testing"
	"time"
)

// emptyModel enumerates nothing: the trajectory starts in a state with zero
// propensity.
type emptyModel struct{}

func (emptyModel) PopulateMoves(ml MoveContainer)            {}
func (emptyModel) ApplyMove(m *Move, ml MoveContainer) error { return nil }
func (emptyModel) Finished() (bool, string)                  { return false, "" }
func (emptyModel) Describe() string                          { return "empty" }

func newTestSimulation(t *testing.T, n, startPairs int, stopOnDis bool, opts SimulationOptions) *Simulation {
	t.Helper()
	h := strongHelix(t, n, startPairs, stopOnDis)
	return NewSimulation("traj-"+NewRandomID(), "test", h, opts)
}

func TestSimulationRunsToCompletion(t *testing.T) {
	sim := newTestSimulation(t, 8, 1, false, SimulationOptions{Seed: 11})

	res, err := sim.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Strongly downhill pairing must zip to completion.
	if res.StopReason != StopCompleted {
		t.Fatalf("stop reason = %s, want %s (state %q)", res.StopReason, StopCompleted, res.FinalState)
	}
	if res.FinalState != "complete" {
		t.Errorf("final state = %q, want complete", res.FinalState)
	}
	if res.Steps < 7 {
		t.Errorf("steps = %d, want at least 7 to zip 8 pairs from 1", res.Steps)
	}
	if res.FinalTime <= 0 {
		t.Errorf("final time = %g, want positive", res.FinalTime)
	}
}

func TestSimulationReproducible(t *testing.T) {
	opts := SimulationOptions{Seed: 4242}
	a := newTestSimulation(t, 10, 1, false, opts)
	b := newTestSimulation(t, 10, 1, false, opts)

	resA, err := a.Run()
	if err != nil {
		t.Fatalf("Run a: %v", err)
	}
	resB, err := b.Run()
	if err != nil {
		t.Fatalf("Run b: %v", err)
	}

	if resA.Steps != resB.Steps || resA.FinalTime != resB.FinalTime || resA.StopReason != resB.StopReason {
		t.Errorf("same seed diverged: a={steps:%d time:%g %s} b={steps:%d time:%g %s}",
			resA.Steps, resA.FinalTime, resA.StopReason,
			resB.Steps, resB.FinalTime, resB.StopReason)
	}
}

func TestSimulationMaxSteps(t *testing.T) {
	sim := newTestSimulation(t, 100, 1, false, SimulationOptions{Seed: 3, MaxSteps: 5})

	res, err := sim.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.StopReason != StopMaxSteps {
		t.Errorf("stop reason = %s, want %s", res.StopReason, StopMaxSteps)
	}
	if res.Steps != 5 {
		t.Errorf("steps = %d, want exactly 5", res.Steps)
	}
}

func TestSimulationNoMoves(t *testing.T) {
	sim := NewSimulation("empty", "test", emptyModel{}, SimulationOptions{Seed: 1})

	done, reason, err := sim.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !done || reason != StopNoMoves {
		t.Errorf("done=%v reason=%s, want terminal %s", done, reason, StopNoMoves)
	}

	res, ok := sim.Result()
	if !ok {
		t.Fatalf("no result after terminal step")
	}
	if res.StopReason != StopNoMoves || res.Steps != 0 {
		t.Errorf("result = %+v, want zero steps and %s", res, StopNoMoves)
	}
}

func TestSimulationCompletedAtStart(t *testing.T) {
	// A fully zipped helix is absorbing before the first event fires.
	sim := newTestSimulation(t, 4, 4, false, SimulationOptions{Seed: 1})

	res, err := sim.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.StopReason != StopCompleted || res.Steps != 0 {
		t.Errorf("result = {reason:%s steps:%d}, want completed with 0 steps", res.StopReason, res.Steps)
	}
}

func TestSimulationFirstPassageDissociation(t *testing.T) {
	// Uphill pairing: the single formed pair should break before the helix
	// ever zips.
	pairs := []float64{5.0, 5.0, 5.0}
	h, err := NewHelixModel(HelixConfig{
		Name:               "weak",
		PairEnergies:       pairs,
		JoinConcentration:  1e-9,
		StartPairs:         1,
		StopOnDissociation: true,
	}, testEnergyModel())
	if err != nil {
		t.Fatalf("NewHelixModel: %v", err)
	}
	sim := NewSimulation("weak-1", "weak", h, SimulationOptions{Seed: 21, MaxSteps: 100000})

	res, err := sim.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.StopReason != StopCompleted || res.FinalState != "dissociated" {
		t.Errorf("result = {reason:%s state:%q}, want dissociated", res.StopReason, res.FinalState)
	}
}

func TestSimulationStepAfterFinish(t *testing.T) {
	sim := newTestSimulation(t, 3, 1, false, SimulationOptions{Seed: 2})
	if _, err := sim.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	res1, _ := sim.Result()
	done, reason, err := sim.Step()
	if err != nil || !done {
		t.Fatalf("Step after finish: done=%v err=%v", done, err)
	}
	if reason != res1.StopReason {
		t.Errorf("Step after finish reason = %s, want %s", reason, res1.StopReason)
	}
	res2, _ := sim.Result()
	if res1 != res2 {
		t.Errorf("result changed after extra Step")
	}
}

func TestSimulationStartAndResult(t *testing.T) {
	sim := newTestSimulation(t, 6, 1, false, SimulationOptions{Seed: 8})
	sim.Start()

	deadline := time.After(5 * time.Second)
	for {
		if res, ok := sim.Result(); ok {
			if res.StopReason != StopCompleted {
				t.Errorf("background run stop reason = %s, want %s", res.StopReason, StopCompleted)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatalf("background trajectory never finished")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestSimulationStop(t *testing.T) {
	// Uncapped, symmetric rates: the trajectory would wander for a long
	// time, so Stop must interrupt it.
	pairs := make([]float64, 50)
	h, err := NewHelixModel(HelixConfig{
		Name:              "wander",
		PairEnergies:      pairs,
		JoinConcentration: 1.0,
		StartPairs:        25,
	}, testEnergyModel())
	if err != nil {
		t.Fatalf("NewHelixModel: %v", err)
	}
	sim := NewSimulation("wander-1", "wander", h, SimulationOptions{Seed: 17})

	sim.Start()
	time.Sleep(10 * time.Millisecond)
	sim.Stop()

	deadline := time.After(5 * time.Second)
	for {
		if res, ok := sim.Result(); ok {
			if res.StopReason != StopRequested && res.StopReason != StopCompleted {
				t.Errorf("stop reason = %s, want %s", res.StopReason, StopRequested)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatalf("stopped trajectory never reported a result")
		case <-time.After(time.Millisecond):
		}
	}
}
