package kinetics

import (
	"math"
	"testing"
)

const testTempK = 310.15

func TestMetropolisRates(t *testing.T) {
	m := MetropolisModel{
		TemperatureK:      testTempK,
		UnimolecularScale: 4.4e8,
		BimolecularScale:  1.26e6,
	}

	downhill := m.UniRate(-2.0, ContextStack, ContextLoop)
	if downhill.Rate != 4.4e8 {
		t.Errorf("downhill rate = %g, want full scaling %g", downhill.Rate, 4.4e8)
	}
	if downhill.ArrType != ArrTypeUnset {
		t.Errorf("metropolis ArrType = %g, want unset", downhill.ArrType)
	}

	uphill := m.UniRate(2.0, ContextStack, ContextLoop)
	wantRatio := math.Exp(-2.0 / (GasConstant * testTempK))
	if math.Abs(uphill.Rate/downhill.Rate-wantRatio) > 1e-12*wantRatio {
		t.Errorf("uphill/downhill = %g, want %g", uphill.Rate/downhill.Rate, wantRatio)
	}

	join := m.JoinRate(1e-3)
	if math.Abs(join.Rate-1.26e6*1e-3) > 1e-9 {
		t.Errorf("join rate = %g, want %g", join.Rate, 1.26e6*1e-3)
	}
}

func TestKawasakiDetailedBalance(t *testing.T) {
	m := KawasakiModel{
		TemperatureK:      testTempK,
		UnimolecularScale: 4.4e8,
		BimolecularScale:  1.26e6,
	}

	const dG = -1.7
	forward := m.UniRate(dG, ContextStack, ContextEnd)
	reverse := m.UniRate(-dG, ContextStack, ContextEnd)

	// Detailed balance: k+/k- = exp(-dG/RT).
	want := math.Exp(-dG / (GasConstant * testTempK))
	got := forward.Rate / reverse.Rate
	if math.Abs(got-want) > 1e-9*want {
		t.Errorf("forward/reverse = %g, want %g", got, want)
	}
}

func TestMetropolisDetailedBalance(t *testing.T) {
	m := MetropolisModel{
		TemperatureK:      testTempK,
		UnimolecularScale: 1.0,
		BimolecularScale:  1.0,
	}

	const dG = 1.3
	forward := m.UniRate(dG, ContextEnd, ContextEnd)
	reverse := m.UniRate(-dG, ContextEnd, ContextEnd)

	want := math.Exp(-dG / (GasConstant * testTempK))
	got := forward.Rate / reverse.Rate
	if math.Abs(got-want) > 1e-9*want {
		t.Errorf("forward/reverse = %g, want %g", got, want)
	}
}

func TestArrheniusContextTagging(t *testing.T) {
	var m ArrheniusModel
	m.TemperatureK = testTempK
	m.BimolecularScale = 1.26e6
	for c := ContextEnd; c < numContexts; c++ {
		m.LnA[c] = float64(c) * 0.5
		m.E[c] = 0.1
	}

	env := m.UniRate(-1.0, ContextStack, ContextLoop)
	if env.ArrType == ArrTypeUnset {
		t.Fatalf("arrhenius ArrType left unset")
	}

	other := m.UniRate(-1.0, ContextEnd, ContextEnd)
	if env.ArrType == other.ArrType {
		t.Errorf("distinct context pairs share ArrType %g", env.ArrType)
	}

	// Same context pair, same tag, regardless of dG.
	again := m.UniRate(3.0, ContextStack, ContextLoop)
	if env.ArrType != again.ArrType {
		t.Errorf("ArrType depends on dG: %g vs %g", env.ArrType, again.ArrType)
	}
}

func TestArrheniusPrefactors(t *testing.T) {
	var m ArrheniusModel
	m.TemperatureK = testTempK
	m.LnA[ContextStack] = 2.0
	m.LnA[ContextLoop] = 1.0

	env := m.UniRate(-1.0, ContextStack, ContextLoop)
	want := math.Exp(3.0) // activation energies zero, downhill
	if math.Abs(env.Rate-want) > 1e-9*want {
		t.Errorf("rate = %g, want %g", env.Rate, want)
	}
}

func TestCelsiusToKelvin(t *testing.T) {
	if got := CelsiusToKelvin(37.0); math.Abs(got-310.15) > 1e-9 {
		t.Errorf("CelsiusToKelvin(37) = %g, want 310.15", got)
	}
}
