package kinetics

import (
	"fmt"
	"strings"
)

// validBases are the sequence characters a system config may use.
const validBases = "ACGTU"

// ValidateSystemConfig checks a system config for structural and kinetic
// consistency. It assumes defaults have already been applied.
func ValidateSystemConfig(cfg SystemConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("system name is required")
	}

	if cfg.Sequence == "" && len(cfg.PairEnergies) == 0 {
		return fmt.Errorf("system %q: either sequence or pair_energies is required", cfg.Name)
	}

	if cfg.Sequence != "" {
		for i, r := range strings.ToUpper(cfg.Sequence) {
			if !strings.ContainsRune(validBases, r) {
				return fmt.Errorf("system %q: invalid base %q at position %d", cfg.Name, r, i)
			}
		}
		if len(cfg.PairEnergies) > 0 && len(cfg.PairEnergies) != len(cfg.Sequence) {
			return fmt.Errorf("system %q: pair_energies has %d entries but sequence has %d bases",
				cfg.Name, len(cfg.PairEnergies), len(cfg.Sequence))
		}
	}

	nPairs := len(cfg.PairEnergies)
	if nPairs == 0 {
		nPairs = len(cfg.Sequence)
	}
	if cfg.StartPairs < 0 || cfg.StartPairs > nPairs {
		return fmt.Errorf("system %q: start_pairs %d out of range [0,%d]", cfg.Name, cfg.StartPairs, nPairs)
	}

	return validateOptions(cfg.Name, cfg.Options)
}

func validateOptions(system string, opts OptionsConfig) error {
	switch opts.RateMethod {
	case RateMethodMetropolis, RateMethodKawasaki, RateMethodArrhenius:
	default:
		return fmt.Errorf("system %q: unknown rate_method %q (want %s, %s or %s)",
			system, opts.RateMethod, RateMethodMetropolis, RateMethodKawasaki, RateMethodArrhenius)
	}

	if opts.Temperature <= -273.15 {
		return fmt.Errorf("system %q: temperature %.2f °C below absolute zero", system, opts.Temperature)
	}
	if opts.UnimolecularScaling <= 0 {
		return fmt.Errorf("system %q: unimolecular_scaling must be positive, got %g", system, opts.UnimolecularScaling)
	}
	if opts.BimolecularScaling <= 0 {
		return fmt.Errorf("system %q: bimolecular_scaling must be positive, got %g", system, opts.BimolecularScaling)
	}
	if opts.JoinConcentration <= 0 {
		return fmt.Errorf("system %q: join_concentration must be positive, got %g", system, opts.JoinConcentration)
	}
	if opts.SimulationTime < 0 {
		return fmt.Errorf("system %q: simulation_time cannot be negative", system)
	}
	if opts.MaxSteps < 0 {
		return fmt.Errorf("system %q: max_steps cannot be negative", system)
	}
	if opts.NumSimulations < 1 {
		return fmt.Errorf("system %q: num_simulations must be at least 1, got %d", system, opts.NumSimulations)
	}
	if opts.SampleEvery < 0 {
		return fmt.Errorf("system %q: sample_every cannot be negative", system)
	}

	if opts.RateMethod == RateMethodArrhenius && opts.Arrhenius == nil {
		return fmt.Errorf("system %q: rate_method %s requires an arrhenius parameter block",
			system, RateMethodArrhenius)
	}

	return nil
}
