package main

import (
	"fmt"

	"github.com/strandlab/foldsim/internal/kinetics"
)

// WalkerModel is a minimal custom StateModel: a particle hopping on the
// integer line [0, n], biased toward n. It shows what a model outside the
// built-in helix needs to provide: enumerate moves, apply the chosen one,
// invalidate the rest, and report the absorbing state.
type WalkerModel struct {
	pos, n   int
	up, down float64
	stepUp   *kinetics.Move
	stepDown *kinetics.Move
}

func NewWalkerModel(n int, upRate, downRate float64) (*WalkerModel, error) {
	if n < 1 {
		return nil, fmt.Errorf("walker needs at least one site, got %d", n)
	}
	if upRate <= 0 || downRate <= 0 {
		return nil, fmt.Errorf("walker rates must be positive")
	}
	return &WalkerModel{n: n, up: upRate, down: downRate}, nil
}

func (w *WalkerModel) PopulateMoves(ml kinetics.MoveContainer) {
	if done, _ := w.Finished(); done {
		return
	}
	w.stepUp = kinetics.NewMove(kinetics.MoveCreate, kinetics.NewRateEnv(w.up), w, w.pos, w.pos+1)
	ml.AddMove(w.stepUp)
	if w.pos > 0 {
		w.stepDown = kinetics.NewMove(kinetics.MoveDelete, kinetics.NewRateEnv(w.down), w, w.pos, w.pos-1)
		ml.AddMove(w.stepDown)
	} else {
		w.stepDown = nil
	}
}

func (w *WalkerModel) ApplyMove(m *kinetics.Move, ml kinetics.MoveContainer) error {
	switch m {
	case w.stepUp:
		w.pos++
	case w.stepDown:
		w.pos--
	default:
		return fmt.Errorf("move %s does not belong to this walker", m)
	}

	// Both enumerated moves are stale now; sweep and re-enumerate.
	if w.stepUp != nil {
		ml.MarkDelete(w.stepUp)
	}
	if w.stepDown != nil {
		ml.MarkDelete(w.stepDown)
	}
	w.stepUp, w.stepDown = nil, nil
	w.PopulateMoves(ml)
	return nil
}

func (w *WalkerModel) Finished() (bool, string) {
	if w.pos >= w.n {
		return true, "reached-top"
	}
	return false, ""
}

func (w *WalkerModel) Describe() string {
	return fmt.Sprintf("walker at %d/%d", w.pos, w.n)
}
