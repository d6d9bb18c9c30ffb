package kinetics

import (
	"testing"
)

func TestBuildEnergyModelKinds(t *testing.T) {
	opts := DefaultOptions()

	m, err := BuildEnergyModel(opts)
	if err != nil {
		t.Fatalf("metropolis: %v", err)
	}
	if _, ok := m.(MetropolisModel); !ok {
		t.Errorf("got %T, want MetropolisModel", m)
	}

	opts.RateMethod = RateMethodKawasaki
	m, err = BuildEnergyModel(opts)
	if err != nil {
		t.Fatalf("kawasaki: %v", err)
	}
	if _, ok := m.(KawasakiModel); !ok {
		t.Errorf("got %T, want KawasakiModel", m)
	}

	opts.RateMethod = RateMethodArrhenius
	if _, err := BuildEnergyModel(opts); err == nil {
		t.Error("arrhenius without parameter block should fail")
	}
	opts.Arrhenius = &ArrheniusConfig{LnAStack: 2.0, EStack: 0.5}
	m, err = BuildEnergyModel(opts)
	if err != nil {
		t.Fatalf("arrhenius: %v", err)
	}
	am, ok := m.(ArrheniusModel)
	if !ok {
		t.Fatalf("got %T, want ArrheniusModel", m)
	}
	if am.LnA[ContextStack] != 2.0 || am.E[ContextStack] != 0.5 {
		t.Errorf("arrhenius params not mapped: LnA=%v E=%v", am.LnA, am.E)
	}
}

func TestPairEnergiesFromSequence(t *testing.T) {
	got, err := PairEnergiesFromSequence("gcAU")
	if err != nil {
		t.Fatalf("PairEnergiesFromSequence: %v", err)
	}
	want := []float64{-3.0, -3.0, -2.0, -2.0}
	if len(got) != len(want) {
		t.Fatalf("length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("energy[%d] = %g, want %g", i, got[i], want[i])
		}
	}

	if _, err := PairEnergiesFromSequence("GAXC"); err == nil {
		t.Error("expected error for invalid base")
	}
}

func TestBuildSimulationEndToEnd(t *testing.T) {
	cfg := SystemConfig{
		Name:       "zipper",
		Sequence:   "GCGCGC",
		StartPairs: 1,
		Options: OptionsConfig{
			Seed:     99,
			MaxSteps: 10000,
		},
	}

	sim, err := BuildSimulation("", cfg, 0, nil)
	if err != nil {
		t.Fatalf("BuildSimulation: %v", err)
	}
	if sim.ID() == "" {
		t.Error("empty ID was not generated")
	}

	res, err := sim.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Seed != 99 {
		t.Errorf("seed = %d, want config seed 99", res.Seed)
	}
	if res.StopReason != StopCompleted {
		t.Errorf("stop reason = %s, want %s", res.StopReason, StopCompleted)
	}
}

func TestBuildSimulationRejectsBadConfig(t *testing.T) {
	cfg := SystemConfig{Name: "", Sequence: "GC"}
	if _, err := BuildSimulation("x", cfg, 1, nil); err == nil {
		t.Error("expected validation error")
	}
}
