package kinetics

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// TrajectoryEvent is emitted when a reaction event fires (sampled) and when
// a trajectory ends.
type TrajectoryEvent struct {
	TrajectoryID string  `json:"trajectory_id"`
	SystemName   string  `json:"system_name"`
	Step         int64   `json:"step"`
	SimTime      float64 `json:"sim_time"`
	Timestamp    int64   `json:"timestamp"`

	// Fired move, present on step events.
	MoveType  string  `json:"move_type,omitempty"`
	MoveRate  float64 `json:"move_rate,omitempty"`
	ArrType   float64 `json:"arr_type,omitempty"`
	TotalRate float64 `json:"total_rate,omitempty"`

	// Terminal fields.
	Terminal   bool       `json:"terminal"`
	StopReason StopReason `json:"stop_reason,omitempty"`
	FinalState string     `json:"final_state,omitempty"`
}

// JSON returns the event as JSON bytes.
func (ev TrajectoryEvent) JSON() ([]byte, error) {
	return json.Marshal(ev)
}

func stepEvent(s *Simulation, m *Move) TrajectoryEvent {
	return TrajectoryEvent{
		TrajectoryID: s.id,
		SystemName:   s.systemName,
		Step:         s.steps,
		SimTime:      s.timer.Time(),
		Timestamp:    time.Now().Unix(),
		MoveType:     m.Type().String(),
		MoveRate:     m.Rate(),
		ArrType:      m.ArrType(),
		TotalRate:    s.moves.Rate(),
	}
}

func terminalEvent(s *Simulation, res TrajectoryResult) TrajectoryEvent {
	return TrajectoryEvent{
		TrajectoryID: res.ID,
		SystemName:   res.SystemName,
		Step:         res.Steps,
		SimTime:      res.FinalTime,
		Timestamp:    time.Now().Unix(),
		Terminal:     true,
		StopReason:   res.StopReason,
		FinalState:   res.FinalState,
	}
}

// Notifier is a delivery channel for trajectory events.
type Notifier interface {
	// ID returns a unique identifier for this notifier.
	ID() string

	// Type returns the kind of channel (e.g. "webhook", "websocket").
	Type() string

	// Notify delivers one event; the context bounds the attempt.
	Notify(ctx context.Context, event TrajectoryEvent) error

	// Close releases the notifier's resources.
	Close() error
}

type notificationJob struct {
	event       TrajectoryEvent
	notifierIDs []string
}

// NotificationManager owns the registered notifiers and delivers events to
// them asynchronously through a bounded queue, with retry and exponential
// backoff per notifier.
type NotificationManager struct {
	mu        sync.RWMutex
	notifiers map[string]Notifier
	jobs      chan notificationJob
	closed    bool
	wg        sync.WaitGroup
	logger    Logger
}

// NewNotificationManager creates a manager with a no-op logger.
func NewNotificationManager() *NotificationManager {
	return NewNotificationManagerWithLogger(NewNoOpLogger())
}

// NewNotificationManagerWithLogger creates a manager logging through the
// given logger.
func NewNotificationManagerWithLogger(logger Logger) *NotificationManager {
	if logger == nil {
		logger = NewNoOpLogger()
	}
	mgr := &NotificationManager{
		notifiers: make(map[string]Notifier),
		jobs:      make(chan notificationJob, 1024),
		logger:    logger,
	}
	mgr.startWorkers(1)
	return mgr
}

// RegisterNotifier adds a notifier. IDs must be unique and non-empty.
func (nm *NotificationManager) RegisterNotifier(notifier Notifier) error {
	if notifier == nil {
		return fmt.Errorf("notifier cannot be nil")
	}
	id := notifier.ID()
	if id == "" {
		return fmt.Errorf("notifier ID cannot be empty")
	}

	nm.mu.Lock()
	defer nm.mu.Unlock()
	if _, exists := nm.notifiers[id]; exists {
		return fmt.Errorf("notifier with ID %s already exists", id)
	}
	nm.notifiers[id] = notifier
	return nil
}

// UnregisterNotifier closes and removes a notifier.
func (nm *NotificationManager) UnregisterNotifier(id string) error {
	nm.mu.Lock()
	notifier, exists := nm.notifiers[id]
	nm.mu.Unlock()

	if !exists {
		return fmt.Errorf("notifier with ID %s not found", id)
	}
	if err := notifier.Close(); err != nil {
		return fmt.Errorf("error closing notifier %s: %w", id, err)
	}

	nm.mu.Lock()
	delete(nm.notifiers, id)
	nm.mu.Unlock()
	return nil
}

// GetNotifier retrieves a notifier by ID.
func (nm *NotificationManager) GetNotifier(id string) (Notifier, bool) {
	nm.mu.RLock()
	defer nm.mu.RUnlock()
	notifier, exists := nm.notifiers[id]
	return notifier, exists
}

// ListNotifiers returns the registered notifier IDs.
func (nm *NotificationManager) ListNotifiers() []string {
	nm.mu.RLock()
	defer nm.mu.RUnlock()
	ids := make([]string, 0, len(nm.notifiers))
	for id := range nm.notifiers {
		ids = append(ids, id)
	}
	return ids
}

// Enqueue queues an event for asynchronous delivery. Non-blocking: when the
// queue is full the event is dropped and logged, never stalling the
// simulation loop.
func (nm *NotificationManager) Enqueue(event TrajectoryEvent, notifierIDs []string) {
	if len(notifierIDs) == 0 {
		return
	}

	nm.mu.RLock()
	closed := nm.closed
	nm.mu.RUnlock()
	if closed {
		return
	}

	select {
	case nm.jobs <- notificationJob{event: event, notifierIDs: notifierIDs}:
	default:
		nm.logger.Warnf("notification queue full, dropping event: trajectory=%s step=%d",
			event.TrajectoryID, event.Step)
	}
}

func (nm *NotificationManager) startWorkers(n int) {
	for i := 0; i < n; i++ {
		nm.wg.Add(1)
		go nm.worker()
	}
}

func (nm *NotificationManager) worker() {
	defer nm.wg.Done()
	for job := range nm.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		for _, id := range job.notifierIDs {
			nm.notifyWithRetry(ctx, id, job.event)
		}
		cancel()
	}
}

// notifyWithRetry attempts delivery with exponential backoff.
func (nm *NotificationManager) notifyWithRetry(ctx context.Context, notifierID string, event TrajectoryEvent) {
	nm.mu.RLock()
	notifier, ok := nm.notifiers[notifierID]
	nm.mu.RUnlock()

	if !ok {
		nm.logger.Warnf("notification failed: notifier=%s error=not found", notifierID)
		return
	}

	const maxRetries = 3
	backoff := 100 * time.Millisecond

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := notifier.Notify(ctx, event)
		if err == nil {
			return
		}
		nm.logger.Warnf("notification failed: notifier=%s attempt=%d error=%v", notifierID, attempt+1, err)
		if attempt == maxRetries {
			nm.logger.Errorf("notification gave up after %d attempts: notifier=%s", maxRetries+1, notifierID)
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
			backoff *= 2
		}
	}
}

// Notify delivers an event synchronously to the listed notifiers. Used by
// tests and one-shot callers; the simulation loop goes through Enqueue.
func (nm *NotificationManager) Notify(ctx context.Context, event TrajectoryEvent, notifierIDs []string) error {
	var errs []error
	for _, id := range notifierIDs {
		nm.mu.RLock()
		notifier, exists := nm.notifiers[id]
		nm.mu.RUnlock()

		if !exists {
			errs = append(errs, fmt.Errorf("notifier %s not found", id))
			continue
		}
		if err := notifier.Notify(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("notifier %s failed: %w", id, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("notification errors: %v", errs)
	}
	return nil
}

// Close drains the queue, stops the workers and closes every notifier.
func (nm *NotificationManager) Close() error {
	nm.mu.Lock()
	if nm.closed {
		nm.mu.Unlock()
		return nil
	}
	nm.closed = true
	close(nm.jobs)
	nm.mu.Unlock()

	nm.wg.Wait()

	nm.mu.Lock()
	defer nm.mu.Unlock()
	var errs []error
	for id, notifier := range nm.notifiers {
		if err := notifier.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing notifier %s: %w", id, err))
		}
	}
	nm.notifiers = make(map[string]Notifier)
	if len(errs) > 0 {
		return fmt.Errorf("errors closing notifiers: %v", errs)
	}
	return nil
}
