package kinetics

import "fmt"

// Strand is one nucleic-acid strand taking part in a helix. Strands are the
// affected targets of the bimolecular join move.
type Strand struct {
	Name     string
	Sequence string
}

// HelixConfig parameterizes a HelixModel.
type HelixConfig struct {
	Name               string
	StrandA            Strand
	StrandB            Strand
	PairEnergies       []float64 // formation ΔG of pair i, kcal/mol
	JoinConcentration  float64   // molar, for the bimolecular join
	StartPairs         int       // contiguous pairs formed at t=0
	StopOnDissociation bool      // treat strand separation as absorbing
}

// HelixModel is the reference StateModel: two complementary strands zipping
// into a duplex one base pair at a time from a single frontier. It is a
// deliberately small structural model — enough to drive the selection kernel
// end to end, not a loop-decomposition engine.
//
// Legal moves per state: when dissociated, one bimolecular join forming the
// first pair; when joined, create the next frontier pair (if any remain) and
// delete the current frontier pair (if any are formed). Applying any move
// invalidates the whole previous enumeration, which the model marks on the
// container for the per-step sweep.
type HelixModel struct {
	name      string
	strandA   Strand
	strandB   Strand
	pairDG    []float64
	em        EnergyModel
	joinConc  float64
	stopOnDis bool

	formed     int
	joined     bool
	everJoined bool

	zipMove   *Move
	unzipMove *Move
	joinMove  *Move
}

// NewHelixModel builds the model in its configured starting state.
func NewHelixModel(cfg HelixConfig, em EnergyModel) (*HelixModel, error) {
	if len(cfg.PairEnergies) == 0 {
		return nil, fmt.Errorf("helix %q: no pair energies", cfg.Name)
	}
	if cfg.StartPairs < 0 || cfg.StartPairs > len(cfg.PairEnergies) {
		return nil, fmt.Errorf("helix %q: start pairs %d out of range [0,%d]",
			cfg.Name, cfg.StartPairs, len(cfg.PairEnergies))
	}
	if em == nil {
		return nil, fmt.Errorf("helix %q: nil energy model", cfg.Name)
	}
	joinConc := cfg.JoinConcentration
	if joinConc <= 0 {
		joinConc = 1.0
	}
	return &HelixModel{
		name:       cfg.Name,
		strandA:    cfg.StrandA,
		strandB:    cfg.StrandB,
		pairDG:     cfg.PairEnergies,
		em:         em,
		joinConc:   joinConc,
		stopOnDis:  cfg.StopOnDissociation,
		formed:     cfg.StartPairs,
		joined:     cfg.StartPairs > 0,
		everJoined: cfg.StartPairs > 0,
	}, nil
}

// Formed returns the number of contiguous pairs currently formed.
func (h *HelixModel) Formed() int {
	return h.formed
}

// Joined reports whether the strands are currently associated.
func (h *HelixModel) Joined() bool {
	return h.joined
}

// frontierContexts classifies the local structure around pair i.
func (h *HelixModel) frontierContexts(i int) (HalfContext, HalfContext) {
	left := ContextEnd
	if i > 0 {
		left = ContextStack
	}
	right := ContextEnd
	if i < len(h.pairDG)-1 {
		right = ContextLoop
	}
	return left, right
}

// PopulateMoves adds the legal moves of the current state.
func (h *HelixModel) PopulateMoves(ml MoveContainer) {
	if done, _ := h.Finished(); done {
		return
	}

	if !h.joined {
		h.joinMove = NewJoinMove(MoveCreate|Move2, h.em.JoinRate(h.joinConc), &h.strandA, &h.strandB, 0, 0)
		ml.AddMove(h.joinMove)
		return
	}

	if h.formed < len(h.pairDG) {
		left, right := h.frontierContexts(h.formed)
		env := h.em.UniRate(h.pairDG[h.formed], left, right)
		h.zipMove = NewMove(MoveCreate|Move1, env, h, h.formed, h.formed+1)
		ml.AddMove(h.zipMove)
	}
	if h.formed > 0 {
		left, right := h.frontierContexts(h.formed - 1)
		env := h.em.UniRate(-h.pairDG[h.formed-1], left, right)
		h.unzipMove = NewMove(MoveDelete|Move1, env, h, h.formed-1, h.formed)
		ml.AddMove(h.unzipMove)
	}
}

// ApplyMove mutates the helix according to the chosen move, invalidates the
// previous enumeration and adds the moves of the new state.
func (h *HelixModel) ApplyMove(m *Move, ml MoveContainer) error {
	switch m {
	case h.joinMove:
		h.joined = true
		h.everJoined = true
		h.formed = 1
	case h.zipMove:
		h.formed++
	case h.unzipMove:
		h.formed--
		if h.formed == 0 {
			h.joined = false
		}
	default:
		return fmt.Errorf("helix %q: move %s does not belong to this model", h.name, m)
	}

	// The whole previous enumeration is stale once the frontier moved.
	for _, stale := range []*Move{h.joinMove, h.zipMove, h.unzipMove} {
		if stale != nil {
			ml.MarkDelete(stale)
		}
	}
	h.joinMove, h.zipMove, h.unzipMove = nil, nil, nil

	h.PopulateMoves(ml)
	return nil
}

// Finished reports the absorbing states: a fully zipped duplex, and (in
// first-passage mode) strand dissociation after at least one association.
func (h *HelixModel) Finished() (bool, string) {
	if h.joined && h.formed == len(h.pairDG) {
		return true, "complete"
	}
	if !h.joined && h.everJoined && h.stopOnDis {
		return true, "dissociated"
	}
	return false, ""
}

// Describe renders the current pairing state.
func (h *HelixModel) Describe() string {
	if !h.joined {
		return fmt.Sprintf("helix %s: dissociated (0/%d pairs)", h.name, len(h.pairDG))
	}
	return fmt.Sprintf("helix %s: %d/%d pairs", h.name, h.formed, len(h.pairDG))
}
