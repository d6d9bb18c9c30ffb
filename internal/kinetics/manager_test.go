package kinetics

import (
	"testing"
	"time"
)

func waitForResult(t *testing.T, sim *Simulation) TrajectoryResult {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		if res, ok := sim.Result(); ok {
			return res
		}
		select {
		case <-deadline:
			t.Fatalf("trajectory %s never reported a result", sim.ID())
		case <-time.After(time.Millisecond):
		}
	}
}

func TestTrajectoryManagerAddGetDelete(t *testing.T) {
	tm := NewTrajectoryManager()

	if err := tm.Add(nil); err == nil {
		t.Error("nil simulation accepted")
	}

	sim := newTestSimulation(t, 4, 1, false, SimulationOptions{Seed: 1})
	if err := tm.Add(sim); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := tm.Add(sim); err == nil {
		t.Error("duplicate ID accepted")
	}

	got, ok := tm.Get(sim.ID())
	if !ok || got != sim {
		t.Errorf("Get = %v, %v", got, ok)
	}
	if _, ok := tm.Get("missing"); ok {
		t.Error("Get found a missing trajectory")
	}

	if err := tm.Delete(sim.ID()); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := tm.Delete(sim.ID()); err == nil {
		t.Error("deleting twice should fail")
	}
}

func TestTrajectoryManagerListSorted(t *testing.T) {
	tm := NewTrajectoryManager()
	for _, id := range []string{"c", "a", "b"} {
		sim := NewSimulation(id, "test", emptyModel{}, SimulationOptions{Seed: 1})
		if err := tm.Add(sim); err != nil {
			t.Fatalf("Add %s: %v", id, err)
		}
	}
	ids := tm.List()
	if len(ids) != 3 || ids[0] != "a" || ids[1] != "b" || ids[2] != "c" {
		t.Errorf("List = %v, want [a b c]", ids)
	}
}

func TestTrajectoryManagerStopAll(t *testing.T) {
	tm := NewTrajectoryManager()

	pairs := make([]float64, 50)
	for i := 0; i < 3; i++ {
		h, err := NewHelixModel(HelixConfig{
			Name:              "wander",
			PairEnergies:      pairs,
			JoinConcentration: 1.0,
			StartPairs:        25,
		}, testEnergyModel())
		if err != nil {
			t.Fatalf("NewHelixModel: %v", err)
		}
		sim := NewSimulation(string(rune('a'+i)), "wander", h, SimulationOptions{Seed: int64(i + 1)})
		if err := tm.Add(sim); err != nil {
			t.Fatalf("Add: %v", err)
		}
		sim.Start()
	}

	tm.StopAll()

	for _, id := range tm.List() {
		sim, _ := tm.Get(id)
		waitForResult(t, sim)
	}
}
