package kinetics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rate method names accepted in OptionsConfig.
const (
	RateMethodMetropolis = "metropolis"
	RateMethodKawasaki   = "kawasaki"
	RateMethodArrhenius  = "arrhenius"
)

// ArrheniusConfig carries the per-context Arrhenius parameters: a log
// prefactor and an activation energy (kcal/mol) for each local half-context.
type ArrheniusConfig struct {
	LnAEnd        float64 `json:"ln_a_end" yaml:"ln_a_end"`
	LnALoop       float64 `json:"ln_a_loop" yaml:"ln_a_loop"`
	LnAStack      float64 `json:"ln_a_stack" yaml:"ln_a_stack"`
	LnAStackStack float64 `json:"ln_a_stack_stack" yaml:"ln_a_stack_stack"`
	LnALoopEnd    float64 `json:"ln_a_loop_end" yaml:"ln_a_loop_end"`
	LnAStackEnd   float64 `json:"ln_a_stack_end" yaml:"ln_a_stack_end"`
	LnAStackLoop  float64 `json:"ln_a_stack_loop" yaml:"ln_a_stack_loop"`

	EEnd        float64 `json:"e_end" yaml:"e_end"`
	ELoop       float64 `json:"e_loop" yaml:"e_loop"`
	EStack      float64 `json:"e_stack" yaml:"e_stack"`
	EStackStack float64 `json:"e_stack_stack" yaml:"e_stack_stack"`
	ELoopEnd    float64 `json:"e_loop_end" yaml:"e_loop_end"`
	EStackEnd   float64 `json:"e_stack_end" yaml:"e_stack_end"`
	EStackLoop  float64 `json:"e_stack_loop" yaml:"e_stack_loop"`
}

// OptionsConfig mirrors the simulator-wide kinetic options.
type OptionsConfig struct {
	RateMethod          string  `json:"rate_method" yaml:"rate_method"`
	Temperature         float64 `json:"temperature" yaml:"temperature"` // °C
	UnimolecularScaling float64 `json:"unimolecular_scaling" yaml:"unimolecular_scaling"`
	BimolecularScaling  float64 `json:"bimolecular_scaling" yaml:"bimolecular_scaling"`
	JoinConcentration   float64 `json:"join_concentration" yaml:"join_concentration"` // molar
	SimulationTime      float64 `json:"simulation_time" yaml:"simulation_time"`       // seconds, 0 = uncapped
	MaxSteps            int64   `json:"max_steps" yaml:"max_steps"`                   // 0 = uncapped
	NumSimulations      int     `json:"num_simulations" yaml:"num_simulations"`
	Seed                int64   `json:"seed" yaml:"seed"` // 0 = derive per trajectory
	SampleEvery         int64   `json:"sample_every" yaml:"sample_every"`

	Arrhenius *ArrheniusConfig `json:"arrhenius,omitempty" yaml:"arrhenius,omitempty"`
}

// SystemConfig describes one strand system to simulate. Per-pair energies
// may be given explicitly or derived from the sequence.
type SystemConfig struct {
	Name               string        `json:"name" yaml:"name"`
	Sequence           string        `json:"sequence,omitempty" yaml:"sequence,omitempty"`
	PairEnergies       []float64     `json:"pair_energies,omitempty" yaml:"pair_energies,omitempty"`
	StartPairs         int           `json:"start_pairs" yaml:"start_pairs"`
	StopOnDissociation bool          `json:"stop_on_dissociation" yaml:"stop_on_dissociation"`
	Options            OptionsConfig `json:"options" yaml:"options"`
}

// DefaultOptions returns the calibrated defaults: Metropolis at 37 °C with
// the standard unimolecular/bimolecular scaling, a 600 s cap and one
// trajectory.
func DefaultOptions() OptionsConfig {
	return OptionsConfig{
		RateMethod:          RateMethodMetropolis,
		Temperature:         37.0,
		UnimolecularScaling: 4.4e8,
		BimolecularScaling:  1.26e6,
		JoinConcentration:   1.0,
		SimulationTime:      600.0,
		NumSimulations:      1,
	}
}

// ApplyDefaults fills unset option fields with DefaultOptions values.
func (c *SystemConfig) ApplyDefaults() {
	def := DefaultOptions()
	if c.Options.RateMethod == "" {
		c.Options.RateMethod = def.RateMethod
	}
	if c.Options.Temperature == 0 {
		c.Options.Temperature = def.Temperature
	}
	if c.Options.UnimolecularScaling == 0 {
		c.Options.UnimolecularScaling = def.UnimolecularScaling
	}
	if c.Options.BimolecularScaling == 0 {
		c.Options.BimolecularScaling = def.BimolecularScaling
	}
	if c.Options.JoinConcentration == 0 {
		c.Options.JoinConcentration = def.JoinConcentration
	}
	if c.Options.SimulationTime == 0 {
		c.Options.SimulationTime = def.SimulationTime
	}
	if c.Options.NumSimulations == 0 {
		c.Options.NumSimulations = def.NumSimulations
	}
}

// LoadSystemConfig reads a system config from a JSON or YAML file (chosen by
// extension), applies defaults and validates it.
func LoadSystemConfig(path string) (SystemConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SystemConfig{}, fmt.Errorf("reading system config: %w", err)
	}

	var cfg SystemConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return SystemConfig{}, fmt.Errorf("parsing system config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return SystemConfig{}, fmt.Errorf("parsing system config JSON: %w", err)
		}
	}

	cfg.ApplyDefaults()
	if err := ValidateSystemConfig(cfg); err != nil {
		return SystemConfig{}, fmt.Errorf("validating system config: %w", err)
	}
	return cfg, nil
}
