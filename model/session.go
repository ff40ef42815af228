package model

import (
	"context"
	"sync"

	"github.com/haeksim/noonsongi/common/helper"
	relaymodel "github.com/haeksim/noonsongi/relay/model"
	"github.com/jinzhu/copier"
)

type SessionStatus string

const (
	SessionStatusIdle      SessionStatus = "idle"
	SessionStatusPending   SessionStatus = "pending"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusFailed    SessionStatus = "failed"
)

// SessionState is what the views see. Payload is set from submission until the task
// ends in failure or the session is reset; Result only once the task completed.
type SessionState struct {
	ID        string              `json:"id"`
	Prompt    string              `json:"prompt"`
	Payload   *relaymodel.Payload `json:"payload,omitempty"`
	TaskID    string              `json:"task_id,omitempty"`
	Result    string              `json:"result,omitempty"`
	Alert     string              `json:"alert,omitempty"`
	Status    SessionStatus       `json:"status"`
	Polls     int                 `json:"polls"`
	UpdatedAt int64               `json:"updated_at"`
}

// Session owns the state of one conversation and the lifetime of its poll loop.
// Every mutation goes through a method, and every method notifies subscribers.
type Session struct {
	mu          sync.Mutex
	state       SessionState
	generation  uint64
	cancel      context.CancelFunc
	subscribers map[int]chan SessionState
	nextSub     int
	closed      bool
}

func NewSession(id string) *Session {
	return &Session{
		state: SessionState{
			ID:        id,
			Status:    SessionStatusIdle,
			UpdatedAt: helper.GetTimestamp(),
		},
		subscribers: make(map[int]chan SessionState),
	}
}

func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ID
}

// Snapshot returns a deep copy that is safe to read after the lock is released.
func (s *Session) Snapshot() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() SessionState {
	var snap SessionState
	if err := copier.CopyWithOption(&snap, &s.state, copier.Option{DeepCopy: true}); err != nil {
		// copier only fails on mismatched kinds; fall back to a shallow copy
		snap = s.state
	}
	return snap
}

// SetPrompt records the text being typed.
func (s *Session) SetPrompt(prompt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Prompt = prompt
	s.touchLocked()
}

// Begin validates payload, cancels any earlier poll and starts a new run. The returned
// context is the run's cancellation token and the generation identifies the run in the
// completion calls; results of an older generation are dropped.
func (s *Session) Begin(parent context.Context, payload *relaymodel.Payload, rules relaymodel.Rules) (context.Context, uint64, error) {
	if err := payload.Validate(rules); err != nil {
		return nil, 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, 0, context.Canceled
	}
	s.cancelLocked()

	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.generation++

	s.state.Prompt = payload.Prompt
	s.state.Payload = payload
	s.state.TaskID = ""
	s.state.Result = ""
	s.state.Alert = ""
	s.state.Polls = 0
	s.state.Status = SessionStatusPending
	s.touchLocked()
	return ctx, s.generation, nil
}

func (s *Session) SetTaskID(generation uint64, taskID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		return false
	}
	s.state.TaskID = taskID
	s.touchLocked()
	return true
}

// RecordPoll counts a pending status check. Nothing a view renders changes.
func (s *Session) RecordPoll(generation uint64, attempt int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		return false
	}
	s.state.Polls = attempt
	return true
}

// Complete delivers the result of the current run.
func (s *Session) Complete(generation uint64, result string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation || s.state.Status != SessionStatusPending {
		return false
	}
	s.state.Result = result
	s.state.Status = SessionStatusCompleted
	s.releaseLocked()
	s.touchLocked()
	return true
}

// Fail ends the current run with an alert. The payload is dropped so the user
// resubmits; the prompt stays for editing.
func (s *Session) Fail(generation uint64, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation || s.state.Status != SessionStatusPending {
		return false
	}
	s.state.Alert = message
	s.state.Payload = nil
	s.state.Status = SessionStatusFailed
	s.releaseLocked()
	s.touchLocked()
	return true
}

// Alert shows a message without touching the run, e.g. a rejected submission.
func (s *Session) Alert(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Alert = message
	s.touchLocked()
}

func (s *Session) DismissAlert() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Alert == "" {
		return
	}
	s.state.Alert = ""
	s.touchLocked()
}

// Reset cancels the running poll, if any, and starts over with an empty conversation.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	s.state = SessionState{
		ID:     s.state.ID,
		Status: SessionStatusIdle,
	}
	s.touchLocked()
}

// Close cancels the running poll and ends all subscriptions. A closed session
// refuses new runs.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.cancelLocked()
	s.closed = true
	for id, ch := range s.subscribers {
		close(ch)
		delete(s.subscribers, id)
	}
}

// Running reports whether a poll loop is attached to the session.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Subscribe returns a channel receiving the latest state after each change. Slow
// readers only miss intermediate states. The channel is closed by cancel or Close.
func (s *Session) Subscribe() (<-chan SessionState, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan SessionState, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = ch
	ch <- s.snapshotLocked()

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subscribers[id]; ok {
			close(sub)
			delete(s.subscribers, id)
		}
	}
}

func (s *Session) cancelLocked() {
	s.generation++
	s.releaseLocked()
	if s.state.Status == SessionStatusPending {
		s.state.Status = SessionStatusIdle
	}
}

func (s *Session) releaseLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) touchLocked() {
	s.state.UpdatedAt = helper.GetTimestamp()
	if len(s.subscribers) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for _, ch := range s.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}
