// Package session implements the in-memory registry that decouples one
// pipeline writer from many polling progress observers. Sessions are
// single-process and best-effort: they do not survive a restart, and they
// are reclaimed by wall-clock expiry after a terminal event.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nvellis/brandflow/internal/models"
)

// Status is the lifecycle state of one extraction session.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// ErrNotFound is returned for unknown or expired sessions. It is a benign
// outcome: an observer that reconnects after expiry simply learns that
// history is gone.
var ErrNotFound = errors.New("session not found")

// ErrTerminal is returned when a writer appends to a session that already
// received its terminal event. The terminal event is emitted exactly once
// and is always the last event in the log.
var ErrTerminal = errors.New("session already terminal")

// Result is the final outcome of a session, set exactly once when the
// pipeline finishes. Err is non-empty for failed sessions, in which case
// the other fields are nil.
type Result struct {
	Specification *models.BrandSpecification
	Evaluation    *models.EvaluationResult
	Trace         *models.ExecutionTrace
	Err           string
}

type sessionState struct {
	id         string
	status     Status
	stage      string
	events     []models.ProgressEvent
	result     *Result
	createdAt  time.Time
	terminalAt time.Time
}

// Registry holds all live sessions. The pipeline goroutine is the only
// writer for its session; any number of observers read concurrently, each
// with its own cursor into the append-only event log.
type Registry struct {
	mu        sync.RWMutex
	sessions  map[string]*sessionState
	retention time.Duration
	grace     time.Duration
	now       func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock overrides the registry's time source. Used by tests to drive
// expiry deterministically.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// NewRegistry creates a registry. Sessions expire once retention has
// elapsed since creation, but never before a terminal event has been
// appended plus the grace period, so a slow observer can still read the
// final state.
func NewRegistry(retention, grace time.Duration, opts ...Option) *Registry {
	r := &Registry{
		sessions:  make(map[string]*sessionState),
		retention: retention,
		grace:     grace,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create allocates a new session in processing state and returns its ID.
func (r *Registry) Create() string {
	id := uuid.NewString()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = &sessionState{
		id:        id,
		status:    StatusProcessing,
		stage:     models.StageSetup,
		createdAt: r.now(),
	}
	return id
}

// Append adds one event to the session's log. Percent is clamped so the
// sequence observed by readers is monotonically non-decreasing. Appending
// after a terminal event is rejected.
func (r *Registry) Append(id string, event models.ProgressEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if n := len(s.events); n > 0 && s.events[n-1].IsTerminal() {
		return ErrTerminal
	}
	if n := len(s.events); n > 0 && event.ProgressPercent < s.events[n-1].ProgressPercent {
		event.ProgressPercent = s.events[n-1].ProgressPercent
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = r.now()
	}
	s.events = append(s.events, event)
	s.stage = event.Stage
	if event.IsTerminal() {
		s.terminalAt = r.now()
	}
	return nil
}

// Read returns a copy of the events at and after cursor, together with the
// new cursor. Safe for any number of concurrent callers; distinct observers
// can be at different points in the log simultaneously.
func (r *Registry) Read(id string, cursor int) ([]models.ProgressEvent, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, cursor, ErrNotFound
	}
	if cursor < 0 {
		cursor = 0
	}
	if cursor >= len(s.events) {
		return nil, cursor, nil
	}
	events := make([]models.ProgressEvent, len(s.events)-cursor)
	copy(events, s.events[cursor:])
	return events, len(s.events), nil
}

// Status returns the session's lifecycle state and current stage.
func (r *Registry) Status(id string) (Status, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return "", "", ErrNotFound
	}
	return s.status, s.stage, nil
}

// Finish records the session's final result and moves it out of processing.
// The pipeline must have appended the terminal event first; after Finish
// the session is read-only and owned by the registry for retention only.
func (r *Registry) Finish(id string, result Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if result.Err != "" {
		s.status = StatusFailed
	} else {
		s.status = StatusCompleted
	}
	s.result = &result
	if s.terminalAt.IsZero() {
		s.terminalAt = r.now()
	}
	return nil
}

// Result returns the session's final result, or nil while it is still
// processing.
func (r *Registry) Result(id string) (*Result, Status, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, "", ErrNotFound
	}
	return s.result, s.status, nil
}

// Expire removes sessions whose retention has elapsed. A session is only
// eligible once it is terminal and the grace period after the terminal
// event has passed. Returns the number of sessions removed.
func (r *Registry) Expire() int {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int
	for id, s := range r.sessions {
		if s.terminalAt.IsZero() {
			continue
		}
		if now.Sub(s.createdAt) >= r.retention && now.Sub(s.terminalAt) >= r.grace {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
