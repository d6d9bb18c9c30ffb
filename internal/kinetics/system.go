package kinetics

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// StateModel is the structural side of a simulation: it owns the secondary
// structure, enumerates the legal elementary moves for the current state,
// and applies the move the selection kernel picked. When applying a move
// invalidates previously enumerated moves, the model marks them on the
// container; the driver sweeps once per step.
type StateModel interface {
	// PopulateMoves adds every currently legal move to the container.
	// Called once before the first step; after that the model refreshes
	// moves itself inside ApplyMove.
	PopulateMoves(ml MoveContainer)

	// ApplyMove mutates the structure according to the chosen move, marks
	// moves the mutation invalidated, and adds the newly legal ones.
	ApplyMove(m *Move, ml MoveContainer) error

	// Finished reports whether the state is absorbing, with a short tag
	// describing it (e.g. "complete", "dissociated").
	Finished() (bool, string)

	// Describe renders the current state for logs and results.
	Describe() string
}

// StopReason records why a trajectory ended.
type StopReason string

const (
	StopCompleted StopReason = "completed" // model reported an absorbing state
	StopNoMoves   StopReason = "no-moves"  // zero total propensity
	StopMaxTime   StopReason = "max-time"
	StopMaxSteps  StopReason = "max-steps"
	StopRequested StopReason = "stopped"
)

// TrajectoryResult is the outcome of one finished trajectory.
type TrajectoryResult struct {
	ID          string     `json:"id"`
	SystemName  string     `json:"system_name"`
	Seed        int64      `json:"seed"`
	Steps       int64      `json:"steps"`
	FinalTime   float64    `json:"final_time"`
	StopReason  StopReason `json:"stop_reason"`
	FinalState  string     `json:"final_state"`
	CompletedAt int64      `json:"completed_at"`
}

// SimulationOptions configures one trajectory.
type SimulationOptions struct {
	Seed     int64
	MaxTime  float64 // seconds of simulated time; 0 = uncapped
	MaxSteps int64   // 0 = uncapped
	Logger   Logger
}

// Simulation advances one trajectory of the continuous-time Markov process:
// select a move weighted by rate, advance the clock by an exponential
// waiting time, let the structural model apply the move, sweep invalidated
// moves, repeat. One trajectory per Simulation; no sharing between
// goroutines except through Start/Stop/Result.
type Simulation struct {
	mu         sync.Mutex
	id         string
	systemName string
	model      StateModel
	moves      *MoveList
	timer      *SimTimer
	seed       int64
	maxSteps   int64
	steps      int64
	logger     Logger

	notifyMgr   *NotificationManager
	notifierIDs []string
	sampleEvery int64

	stopCh    chan struct{}
	isRunning bool
	result    *TrajectoryResult
}

// NewSimulation builds a trajectory over the given model. The model's
// initial moves are enumerated immediately.
func NewSimulation(id, systemName string, model StateModel, opts SimulationOptions) *Simulation {
	logger := opts.Logger
	if logger == nil {
		logger = NewNoOpLogger()
	}
	s := &Simulation{
		id:         id,
		systemName: systemName,
		model:      model,
		moves:      NewMoveList(16),
		timer:      NewSimTimer(opts.Seed, opts.MaxTime),
		seed:       opts.Seed,
		maxSteps:   opts.MaxSteps,
		logger:     logger,
		stopCh:     make(chan struct{}),
	}
	model.PopulateMoves(s.moves)
	return s
}

// SetNotifications routes trajectory events through the given manager to the
// listed notifiers. sampleEvery controls how often step events are emitted;
// 0 emits only the terminal event.
func (s *Simulation) SetNotifications(mgr *NotificationManager, notifierIDs []string, sampleEvery int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifyMgr = mgr
	s.notifierIDs = notifierIDs
	s.sampleEvery = sampleEvery
}

// ID returns the trajectory identifier.
func (s *Simulation) ID() string {
	return s.id
}

// Moves exposes the container for diagnostics ("what could fire next").
func (s *Simulation) Moves() MoveContainer {
	return s.moves
}

// step advances the trajectory by one reaction event. Callers hold s.mu.
func (s *Simulation) step() (bool, StopReason, error) {
	if done, _ := s.model.Finished(); done {
		return true, StopCompleted, nil
	}
	if s.maxSteps > 0 && s.steps >= s.maxSteps {
		return true, StopMaxSteps, nil
	}
	if s.timer.Expired() {
		return true, StopMaxTime, nil
	}

	m, err := s.moves.Choice(s.timer)
	if errors.Is(err, ErrNoMove) {
		return true, StopNoMoves, nil
	}
	if err != nil {
		return true, "", err
	}

	s.timer.AdvanceTime(s.moves.Rate())

	if err := s.model.ApplyMove(m, s.moves); err != nil {
		return true, "", fmt.Errorf("applying move %s: %w", m, err)
	}
	s.moves.ResetDeleteMoves()
	s.steps++

	if s.sampleEvery > 0 && s.steps%s.sampleEvery == 0 {
		s.emit(stepEvent(s, m))
	}

	if done, tag := s.model.Finished(); done {
		s.logger.Debugf("trajectory %s absorbed: %s", s.id, tag)
		return true, StopCompleted, nil
	}
	return false, "", nil
}

// Step advances the trajectory by one reaction event. It reports whether the
// trajectory ended and, if so, why.
func (s *Simulation) Step() (bool, StopReason, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result != nil {
		return true, s.result.StopReason, nil
	}
	done, reason, err := s.step()
	if err != nil {
		return true, reason, err
	}
	if done {
		s.finish(reason)
	}
	return done, reason, nil
}

// Run drives the trajectory synchronously to its end and returns the result.
func (s *Simulation) Run() (TrajectoryResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result != nil {
		return *s.result, nil
	}
	for {
		done, reason, err := s.step()
		if err != nil {
			return TrajectoryResult{}, err
		}
		if done {
			s.finish(reason)
			return *s.result, nil
		}
	}
}

// Start runs the trajectory in a goroutine until it ends or Stop is called.
// Calling Start on a running or finished trajectory is a no-op.
func (s *Simulation) Start() {
	s.mu.Lock()
	if s.isRunning || s.result != nil {
		s.mu.Unlock()
		return
	}
	s.stopCh = make(chan struct{})
	s.isRunning = true
	s.mu.Unlock()

	go func() {
		for {
			select {
			case <-s.stopCh:
				s.mu.Lock()
				if s.result == nil {
					s.finish(StopRequested)
				}
				s.isRunning = false
				s.mu.Unlock()
				return
			default:
			}

			s.mu.Lock()
			if s.result != nil {
				s.isRunning = false
				s.mu.Unlock()
				return
			}
			done, reason, err := s.step()
			if err != nil {
				s.logger.Errorf("trajectory %s failed: %v", s.id, err)
				s.finish(StopRequested)
				s.isRunning = false
				s.mu.Unlock()
				return
			}
			if done {
				s.finish(reason)
				s.isRunning = false
				s.mu.Unlock()
				return
			}
			s.mu.Unlock()
		}
	}()
}

// Stop asks a running trajectory to halt. The partial result carries
// StopRequested.
func (s *Simulation) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return
	}
	close(s.stopCh)
}

// Running reports whether the background loop is active.
func (s *Simulation) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// Result returns the trajectory outcome once it has ended.
func (s *Simulation) Result() (TrajectoryResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return TrajectoryResult{}, false
	}
	return *s.result, true
}

// finish records the result and emits the terminal event. Callers hold s.mu.
func (s *Simulation) finish(reason StopReason) {
	_, tag := s.model.Finished()
	if tag == "" {
		tag = s.model.Describe()
	}
	s.result = &TrajectoryResult{
		ID:          s.id,
		SystemName:  s.systemName,
		Seed:        s.seed,
		Steps:       s.steps,
		FinalTime:   s.timer.Time(),
		StopReason:  reason,
		FinalState:  tag,
		CompletedAt: time.Now().Unix(),
	}
	s.logger.Infof("trajectory %s ended: reason=%s steps=%d time=%.6g state=%q",
		s.id, reason, s.steps, s.timer.Time(), tag)
	s.emit(terminalEvent(s, *s.result))
}

// emit enqueues an event if notifications are wired. Callers hold s.mu.
func (s *Simulation) emit(ev TrajectoryEvent) {
	if s.notifyMgr == nil || len(s.notifierIDs) == 0 {
		return
	}
	s.notifyMgr.Enqueue(ev, s.notifierIDs)
}
