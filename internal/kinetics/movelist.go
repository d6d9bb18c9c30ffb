package kinetics

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoMove signals that a container holds no selectable move: the total
// propensity is zero or every stored move is pending deletion. The driver
// treats this as an absorbing state, not a failure.
var ErrNoMove = errors.New("kinetics: no live move available")

// RandomSource supplies the uniform draws used by weighted selection.
// Both *math/rand.Rand and *SimTimer satisfy it, so a trajectory is
// reproducible given a fixed seed and call sequence.
type RandomSource interface {
	Float64() float64
}

// MoveContainer is the capability contract for a set of candidate moves:
// accept moves, report aggregate propensity, and select one at random with
// probability proportional to its rate.
type MoveContainer interface {
	// AddMove stores a move, taking ownership of it, and raises the total
	// propensity by its rate. O(1) amortized.
	AddMove(m *Move)

	// Rate returns the sum of rates of all live (not pending-deletion)
	// moves. O(1).
	Rate() float64

	// Choice performs roulette-wheel selection over the live moves and
	// returns ErrNoMove when nothing is selectable.
	Choice(rng RandomSource) (*Move, error)

	// AllMoves returns a copy-out slice of the live moves, for diagnostics
	// and exhaustive local-transition queries.
	AllMoves() []*Move

	// Count returns the number of live moves.
	Count() int

	// MarkDelete flags a stored move as invalidated. Its rate leaves the
	// total immediately; the slot is reclaimed by the next sweep.
	MarkDelete(m *Move)

	// ResetDeleteMoves sweeps all pending-deletion moves out of the
	// container. A no-op when nothing is pending.
	ResetDeleteMoves()

	// Reset empties the container for the next enumeration round.
	Reset()

	// DumpMoves renders the container state for diagnostics.
	DumpMoves(verbose bool) string
}

// MoveList is the array-backed MoveContainer used by the simulation driver:
// append-only growth, linear-scan weighted selection, and a lazy deletion
// list so that a batch of invalidations costs one compaction pass per
// simulation step.
type MoveList struct {
	moves     []*Move
	pos       map[*Move]int
	pending   []*Move
	pendingAt map[*Move]struct{}
	totalrate float64
}

var _ MoveContainer = (*MoveList)(nil)

// NewMoveList builds an empty list with the given initial capacity.
func NewMoveList(initialSize int) *MoveList {
	if initialSize < 1 {
		initialSize = 1
	}
	return &MoveList{
		moves:     make([]*Move, 0, initialSize),
		pos:       make(map[*Move]int, initialSize),
		pendingAt: make(map[*Move]struct{}),
	}
}

// AddMove appends a move and accounts its rate. A zero-rate move is stored
// (a structurally legal but thermodynamically forbidden transition) but
// contributes nothing to selection weight. Adding the same move twice is a
// caller error; the duplicate is ignored.
func (ml *MoveList) AddMove(m *Move) {
	if m == nil {
		return
	}
	if _, ok := ml.pos[m]; ok {
		return
	}
	ml.pos[m] = len(ml.moves)
	ml.moves = append(ml.moves, m)
	ml.totalrate += m.env.Rate
}

// Rate returns the current total propensity of the live moves.
func (ml *MoveList) Rate() float64 {
	return ml.totalrate
}

// Count returns the number of live moves.
func (ml *MoveList) Count() int {
	return len(ml.moves) - len(ml.pending)
}

// Choice draws r uniform in [0, totalrate) and scans the live moves in
// container order, selecting the first whose cumulative rate strictly
// exceeds r. Moves flagged pending-deletion still occupy slots but are
// skipped. If floating-point accumulation lets the scan run off the end,
// the last live move with positive rate is returned instead of failing.
func (ml *MoveList) Choice(rng RandomSource) (*Move, error) {
	if ml.totalrate <= 0 || ml.Count() == 0 {
		return nil, ErrNoMove
	}

	r := rng.Float64() * ml.totalrate

	var accum float64
	var last *Move
	for _, m := range ml.moves {
		if _, dead := ml.pendingAt[m]; dead {
			continue
		}
		if m.env.Rate <= 0 {
			continue
		}
		last = m
		accum += m.env.Rate
		if accum > r {
			return m, nil
		}
	}

	// Reachable only through accumulated rounding error.
	if last != nil {
		return last, nil
	}
	return nil, ErrNoMove
}

// AllMoves returns the live moves as a fresh slice, in container order.
func (ml *MoveList) AllMoves() []*Move {
	out := make([]*Move, 0, ml.Count())
	for _, m := range ml.moves {
		if _, dead := ml.pendingAt[m]; dead {
			continue
		}
		out = append(out, m)
	}
	return out
}

// MarkDelete flags a stored move as invalidated and subtracts its rate from
// the total, so Rate always reflects live moves even before the sweep.
// Unknown or already-pending moves are ignored.
func (ml *MoveList) MarkDelete(m *Move) {
	if m == nil {
		return
	}
	if _, ok := ml.pos[m]; !ok {
		return
	}
	if _, ok := ml.pendingAt[m]; ok {
		return
	}
	ml.pending = append(ml.pending, m)
	ml.pendingAt[m] = struct{}{}
	ml.totalrate -= m.env.Rate
	if ml.totalrate < 0 {
		ml.totalrate = 0
	}
}

// ResetDeleteMoves physically removes every pending-deletion move via
// swap-remove compaction. Rates were already subtracted at mark time.
// Safe to call with an empty pending list.
func (ml *MoveList) ResetDeleteMoves() {
	if len(ml.pending) == 0 {
		return
	}
	for _, m := range ml.pending {
		i, ok := ml.pos[m]
		if !ok {
			continue
		}
		lastIdx := len(ml.moves) - 1
		lastMove := ml.moves[lastIdx]
		ml.moves[i] = lastMove
		ml.pos[lastMove] = i
		ml.moves[lastIdx] = nil
		ml.moves = ml.moves[:lastIdx]
		delete(ml.pos, m)
		delete(ml.pendingAt, m)
	}
	ml.pending = ml.pending[:0]
}

// Reset drops every stored move and zeroes the total propensity, ready for
// the next enumeration round.
func (ml *MoveList) Reset() {
	ml.moves = ml.moves[:0]
	ml.pending = ml.pending[:0]
	ml.pos = make(map[*Move]int)
	ml.pendingAt = make(map[*Move]struct{})
	ml.totalrate = 0
}

// DumpMoves renders the container state; with verbose it lists every live
// move.
func (ml *MoveList) DumpMoves(verbose bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "moves=%d totalrate=%.6g pending=%d\n", ml.Count(), ml.totalrate, len(ml.pending))
	if !verbose {
		return sb.String()
	}
	for i, m := range ml.moves {
		if _, dead := ml.pendingAt[m]; dead {
			continue
		}
		fmt.Fprintf(&sb, "  [%d] %s\n", i, m)
	}
	return sb.String()
}
