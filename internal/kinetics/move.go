package kinetics

import (
	"fmt"
	"strings"
)

// MoveType is a bitmask describing an elementary transition. Kind flags
// (create/delete/shift) and arity flags (Move1/Move2/Move3) are orthogonal
// and may be combined, e.g. MoveDelete|Move2 for a deletion acting on a
// two-index pattern. Membership is tested with Has, never with equality.
type MoveType int

const (
	MoveInvalid MoveType = 0
	MoveCreate  MoveType = 1
	MoveDelete  MoveType = 2
	MoveShift   MoveType = 4
	Move1       MoveType = 8
	Move2       MoveType = 16
	Move3       MoveType = 32
)

// Has reports whether any bit of flag is set on t.
func (t MoveType) Has(flag MoveType) bool {
	return t&flag != 0
}

// String renders the set flags in a stable order.
func (t MoveType) String() string {
	if t == MoveInvalid {
		return "invalid"
	}

	var sb strings.Builder
	if t.Has(MoveCreate) {
		sb.WriteString("create")
	}
	if t.Has(MoveDelete) {
		sb.WriteString("delete")
	}
	if t.Has(MoveShift) {
		sb.WriteString("shift")
	}
	if t.Has(Move1) {
		sb.WriteString("_1")
	}
	if t.Has(Move2) {
		sb.WriteString("_2")
	}
	if t.Has(Move3) {
		sb.WriteString("_3")
	}
	return sb.String()
}

// ArrTypeUnset is the sentinel for a RateEnv whose diagnostic tag was never
// assigned by the energy model.
const ArrTypeUnset = -444.0

// RateEnv pairs a reaction propensity (reactions/second) with a diagnostic
// classification of the transition. For Arrhenius-style models the tag
// encodes the local context pair; other models leave it unset. Immutable
// once constructed, and owned by exactly one Move.
type RateEnv struct {
	Rate    float64 `json:"rate"`
	ArrType float64 `json:"arr_type"`
}

// NewRateEnv builds a RateEnv with the given rate and no diagnostic tag.
func NewRateEnv(rate float64) RateEnv {
	return RateEnv{Rate: rate, ArrType: ArrTypeUnset}
}

func (re RateEnv) String() string {
	if re.ArrType == ArrTypeUnset {
		return fmt.Sprintf("rate=%.6g", re.Rate)
	}
	return fmt.Sprintf("rate=%.6g arr=%.0f", re.Rate, re.ArrType)
}

// Target is an opaque handle to the structural owner a move acts on. The
// selection kernel never inspects it; it is only handed back to the
// structural model via DoChoice and Affected, so tests can use any stand-in.
type Target any

// UnusedIndex fills the index slots a constructor did not receive.
const UnusedIndex = -1

// Move is a single candidate elementary transition: a type bitmask, its
// RateEnv, up to four structural indices and up to two affected owners.
// A Move never owns its affected targets and is immutable after
// construction; the "marked for deletion" state is tracked by the container
// holding it.
type Move struct {
	typ      MoveType
	env      RateEnv
	index    [4]int
	affected [2]Target
}

// NewMove builds a move acting on a single owner through two indices.
func NewMove(typ MoveType, env RateEnv, affected Target, index1, index2 int) *Move {
	return &Move{
		typ:      typ,
		env:      env,
		index:    [4]int{index1, index2, UnusedIndex, UnusedIndex},
		affected: [2]Target{affected, nil},
	}
}

// NewMove3 builds a move acting on a single owner through three indices.
func NewMove3(typ MoveType, env RateEnv, affected Target, index1, index2, index3 int) *Move {
	return &Move{
		typ:      typ,
		env:      env,
		index:    [4]int{index1, index2, index3, UnusedIndex},
		affected: [2]Target{affected, nil},
	}
}

// NewMove4 builds a move acting on a single owner through four indices.
func NewMove4(typ MoveType, env RateEnv, affected Target, index1, index2, index3, index4 int) *Move {
	return &Move{
		typ:      typ,
		env:      env,
		index:    [4]int{index1, index2, index3, index4},
		affected: [2]Target{affected, nil},
	}
}

// NewMoveWithIndices builds a move from an explicit four-slot index array.
func NewMoveWithIndices(typ MoveType, env RateEnv, affected Target, index [4]int) *Move {
	return &Move{
		typ:      typ,
		env:      env,
		index:    index,
		affected: [2]Target{affected, nil},
	}
}

// NewJoinMove builds a bimolecular move acting on two owners, by convention
// the primary owner first.
func NewJoinMove(typ MoveType, env RateEnv, first, second Target, index1, index2 int) *Move {
	return &Move{
		typ:      typ,
		env:      env,
		index:    [4]int{index1, index2, UnusedIndex, UnusedIndex},
		affected: [2]Target{first, second},
	}
}

// Rate returns the instantaneous propensity of the move.
func (m *Move) Rate() float64 {
	return m.env.Rate
}

// Env returns the full RateEnv, including the diagnostic tag.
func (m *Move) Env() RateEnv {
	return m.env
}

// ArrType returns the diagnostic tag of the move's RateEnv.
func (m *Move) ArrType() float64 {
	return m.env.ArrType
}

// Type returns the move's flag bitmask.
func (m *Move) Type() MoveType {
	return m.typ
}

// Indices returns the four-slot index array; unused slots hold UnusedIndex.
func (m *Move) Indices() [4]int {
	return m.index
}

// Affected returns the structural owner at slot 0 or 1. Any other slot is a
// contract violation and yields an error.
func (m *Move) Affected(i int) (Target, error) {
	if i < 0 || i > 1 {
		return nil, fmt.Errorf("kinetics: affected slot %d out of range [0,1]", i)
	}
	return m.affected[i], nil
}

// DoChoice returns the primary affected owner, the one the simulation driver
// hands the move back to for application. This keeps the driver agnostic of
// move-type-specific semantics.
func (m *Move) DoChoice() Target {
	return m.affected[0]
}

// String renders type, rate and indices. The format is stable within a run
// so trajectory logs can be compared.
func (m *Move) String() string {
	return fmt.Sprintf("%s %s idx=%v", m.typ, m.env, m.index)
}
