package kinetics

import (
	"fmt"
	"strings"
)

// BuildEnergyModel constructs the rate model a config names. Assumes the
// config has been validated.
func BuildEnergyModel(opts OptionsConfig) (EnergyModel, error) {
	tempK := CelsiusToKelvin(opts.Temperature)

	switch opts.RateMethod {
	case RateMethodMetropolis:
		return MetropolisModel{
			TemperatureK:      tempK,
			UnimolecularScale: opts.UnimolecularScaling,
			BimolecularScale:  opts.BimolecularScaling,
		}, nil

	case RateMethodKawasaki:
		return KawasakiModel{
			TemperatureK:      tempK,
			UnimolecularScale: opts.UnimolecularScaling,
			BimolecularScale:  opts.BimolecularScaling,
		}, nil

	case RateMethodArrhenius:
		a := opts.Arrhenius
		if a == nil {
			return nil, fmt.Errorf("rate_method %s requires an arrhenius parameter block", RateMethodArrhenius)
		}
		m := ArrheniusModel{
			TemperatureK:     tempK,
			BimolecularScale: opts.BimolecularScaling,
		}
		m.LnA[ContextEnd] = a.LnAEnd
		m.LnA[ContextLoop] = a.LnALoop
		m.LnA[ContextStack] = a.LnAStack
		m.LnA[ContextStackStack] = a.LnAStackStack
		m.LnA[ContextLoopEnd] = a.LnALoopEnd
		m.LnA[ContextStackEnd] = a.LnAStackEnd
		m.LnA[ContextStackLoop] = a.LnAStackLoop
		m.E[ContextEnd] = a.EEnd
		m.E[ContextLoop] = a.ELoop
		m.E[ContextStack] = a.EStack
		m.E[ContextStackStack] = a.EStackStack
		m.E[ContextLoopEnd] = a.ELoopEnd
		m.E[ContextStackEnd] = a.EStackEnd
		m.E[ContextStackLoop] = a.EStackLoop
		return m, nil

	default:
		return nil, fmt.Errorf("unknown rate_method %q", opts.RateMethod)
	}
}

// PairEnergiesFromSequence derives a crude per-pair formation ΔG ladder from
// a sequence: G/C pairs are stronger than A/T/U pairs. It stands in when a
// config gives no explicit energies; real parameter tables are out of scope.
func PairEnergiesFromSequence(seq string) ([]float64, error) {
	out := make([]float64, 0, len(seq))
	for i, r := range strings.ToUpper(seq) {
		switch r {
		case 'G', 'C':
			out = append(out, -3.0)
		case 'A', 'T', 'U':
			out = append(out, -2.0)
		default:
			return nil, fmt.Errorf("invalid base %q at position %d", r, i)
		}
	}
	return out, nil
}

// BuildHelixModel constructs the reference helix model from a validated
// config.
func BuildHelixModel(cfg SystemConfig) (*HelixModel, error) {
	em, err := BuildEnergyModel(cfg.Options)
	if err != nil {
		return nil, err
	}

	pairs := cfg.PairEnergies
	if len(pairs) == 0 {
		pairs, err = PairEnergiesFromSequence(cfg.Sequence)
		if err != nil {
			return nil, fmt.Errorf("deriving pair energies: %w", err)
		}
	}

	return NewHelixModel(HelixConfig{
		Name:               cfg.Name,
		StrandA:            Strand{Name: cfg.Name + "-A", Sequence: cfg.Sequence},
		StrandB:            Strand{Name: cfg.Name + "-B", Sequence: cfg.Sequence},
		PairEnergies:       pairs,
		JoinConcentration:  cfg.Options.JoinConcentration,
		StartPairs:         cfg.StartPairs,
		StopOnDissociation: cfg.StopOnDissociation,
	}, em)
}

// BuildSimulation validates a config and assembles one trajectory over it.
// A zero seed falls back to the config seed; trajectory IDs are generated
// when empty.
func BuildSimulation(id string, cfg SystemConfig, seed int64, logger Logger) (*Simulation, error) {
	cfg.ApplyDefaults()
	if err := ValidateSystemConfig(cfg); err != nil {
		return nil, err
	}

	model, err := BuildHelixModel(cfg)
	if err != nil {
		return nil, err
	}

	if id == "" {
		id = NewRandomID()
	}
	if seed == 0 {
		seed = cfg.Options.Seed
	}
	if seed == 0 {
		seed = 1
	}

	return NewSimulation(id, cfg.Name, model, SimulationOptions{
		Seed:     seed,
		MaxTime:  cfg.Options.SimulationTime,
		MaxSteps: cfg.Options.MaxSteps,
		Logger:   logger,
	}), nil
}
