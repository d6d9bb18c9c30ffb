package kinetics

import "math"

// HalfContext classifies the local secondary structure on one side of a
// transition. The Arrhenius model assigns each context its own prefactor and
// activation energy; the context pair is what RateEnv.ArrType records.
type HalfContext int

const (
	ContextEnd HalfContext = iota
	ContextLoop
	ContextStack
	ContextStackStack
	ContextLoopEnd
	ContextStackEnd
	ContextStackLoop
	numContexts
)

func (c HalfContext) String() string {
	switch c {
	case ContextEnd:
		return "end"
	case ContextLoop:
		return "loop"
	case ContextStack:
		return "stack"
	case ContextStackStack:
		return "stack+stack"
	case ContextLoopEnd:
		return "loop+end"
	case ContextStackEnd:
		return "stack+end"
	case ContextStackLoop:
		return "stack+loop"
	default:
		return "unknown"
	}
}

// GasConstant is R in kcal/(mol·K).
const GasConstant = 0.0019872

// CelsiusToKelvin converts a temperature in °C to K.
func CelsiusToKelvin(c float64) float64 {
	return c + 273.15
}

// EnergyModel turns a free-energy difference into the propensity of a
// transition. dG is in kcal/mol; left and right describe the local contexts
// on either side of the changing pair.
type EnergyModel interface {
	// UniRate is the propensity of a unimolecular transition.
	UniRate(dG float64, left, right HalfContext) RateEnv

	// JoinRate is the propensity of a bimolecular association at the given
	// molar concentration.
	JoinRate(concentration float64) RateEnv
}

// MetropolisModel rates downhill transitions at the full unimolecular
// scaling and penalizes uphill ones by exp(-dG/RT).
type MetropolisModel struct {
	TemperatureK      float64
	UnimolecularScale float64
	BimolecularScale  float64
}

func (m MetropolisModel) UniRate(dG float64, left, right HalfContext) RateEnv {
	rate := m.UnimolecularScale
	if dG > 0 {
		rate *= math.Exp(-dG / (GasConstant * m.TemperatureK))
	}
	return NewRateEnv(rate)
}

func (m MetropolisModel) JoinRate(concentration float64) RateEnv {
	return NewRateEnv(m.BimolecularScale * concentration)
}

// KawasakiModel splits the free-energy change symmetrically across the
// forward and reverse transitions: rate = k_uni * exp(-dG/2RT).
type KawasakiModel struct {
	TemperatureK      float64
	UnimolecularScale float64
	BimolecularScale  float64
}

func (m KawasakiModel) UniRate(dG float64, left, right HalfContext) RateEnv {
	rate := m.UnimolecularScale * math.Exp(-dG/(2*GasConstant*m.TemperatureK))
	return NewRateEnv(rate)
}

func (m KawasakiModel) JoinRate(concentration float64) RateEnv {
	return NewRateEnv(m.BimolecularScale * concentration)
}

// ArrheniusModel rates a transition from the local context pair: each half
// contributes a prefactor lnA and an activation energy E, and an uphill
// free-energy change adds the usual Boltzmann penalty. The RateEnv carries
// the context pair as its diagnostic tag.
type ArrheniusModel struct {
	TemperatureK     float64
	BimolecularScale float64

	// Indexed by HalfContext.
	LnA [numContexts]float64
	E   [numContexts]float64
}

func (m ArrheniusModel) UniRate(dG float64, left, right HalfContext) RateEnv {
	rt := GasConstant * m.TemperatureK
	rate := math.Exp(m.LnA[left]+m.LnA[right]) * math.Exp(-(m.E[left]+m.E[right])/rt)
	if dG > 0 {
		rate *= math.Exp(-dG / rt)
	}
	return RateEnv{Rate: rate, ArrType: arrTag(left, right)}
}

func (m ArrheniusModel) JoinRate(concentration float64) RateEnv {
	return RateEnv{
		Rate:    m.BimolecularScale * concentration,
		ArrType: arrTag(ContextEnd, ContextEnd),
	}
}

// arrTag encodes a context pair into a single diagnostic value.
func arrTag(left, right HalfContext) float64 {
	return float64(int(left)*int(numContexts) + int(right))
}
