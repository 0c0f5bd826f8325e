// Package submission models an asynchronous submit with validation and a
// fixed-latency round trip. Nothing is persisted: a successful submission is
// announced and handed to the success hook, then discarded.
package submission

import (
	"errors"
	"strings"
	"sync"
	"time"

	"festival-media-center/internal/models"
	"festival-media-center/internal/notify"
)

var (
	// ErrBusy is returned while a submission is pending
	ErrBusy = errors.New("submission already pending")
	// ErrClosed is returned after the owning form was torn down
	ErrClosed = errors.New("submission closed")
)

// State of the submit control
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StatePending    State = "pending"
	StateSucceeded  State = "succeeded"
	StateRejected   State = "rejected"
)

// Reason identifies which required field failed validation
type Reason string

const (
	ReasonName    Reason = "name"
	ReasonContent Reason = "content"
)

// Violation is one failed validation rule
type Violation struct {
	Reason Reason `json:"reason"`
	Text   string `json:"text"`
}

// Draft is what the form holds at the moment submit is pressed
type Draft struct {
	Author     string
	Message    string
	Media      models.MediaCategory
	MediaCount int
}

// Rules configure the validation texts and latency of one form
type Rules struct {
	// MissingName is shown when the author is blank
	MissingName string
	// MissingContent is shown when there is nothing to submit
	MissingContent string
	// MediaRequired makes attached media the only acceptable content
	MediaRequired bool
	// Success is shown once the round trip completes
	Success string
	// Latency of the simulated round trip
	Latency time.Duration
}

// Entry builds the record a successful submission of the draft produces
func (d Draft) Entry(at time.Time) models.SubmissionEntry {
	entry := models.SubmissionEntry{
		Author:     strings.TrimSpace(d.Author),
		Message:    strings.TrimSpace(d.Message),
		MediaCount: d.MediaCount,
		CreatedAt:  at,
	}
	if d.MediaCount > 0 {
		media := d.Media
		entry.Media = &media
	}
	return entry
}

// Validate returns one violation per failed rule
func (r Rules) Validate(d Draft) []Violation {
	var out []Violation
	entry := d.Entry(time.Time{})
	if entry.Author == "" {
		out = append(out, Violation{Reason: ReasonName, Text: r.MissingName})
	}
	hasContent := entry.HasContent()
	if r.MediaRequired {
		hasContent = entry.HasMedia()
	}
	if !hasContent {
		out = append(out, Violation{Reason: ReasonContent, Text: r.MissingContent})
	}
	return out
}

// Outcome is the observable result of a Submit call
type Outcome struct {
	State      State                   `json:"state"`
	Violations []Violation             `json:"violations,omitempty"`
	Entry      *models.SubmissionEntry `json:"entry,omitempty"`
}

// Simulator is the submit state machine of one form.
// idle -> validating -> pending -> succeeded -> idle, or validating -> rejected -> idle.
type Simulator struct {
	mu        sync.Mutex
	rules     Rules
	clock     Clock
	notifier  notify.Notifier
	sessionID string
	onSuccess func(models.SubmissionEntry)

	state  State
	last   State
	gen    uint64
	timer  Timer
	closed bool
}

// Option customises a Simulator
type Option func(*Simulator)

// WithClock replaces the wall clock
func WithClock(c Clock) Option {
	return func(s *Simulator) { s.clock = c }
}

// WithSession tags every notification with the form session id
func WithSession(id string) Option {
	return func(s *Simulator) { s.sessionID = id }
}

// OnSuccess registers the hook run after the round trip completes
func OnSuccess(f func(models.SubmissionEntry)) Option {
	return func(s *Simulator) { s.onSuccess = f }
}

// NewSimulator creates an idle simulator
func NewSimulator(rules Rules, notifier notify.Notifier, opts ...Option) *Simulator {
	s := &Simulator{
		rules:    rules,
		clock:    RealClock,
		notifier: notifier,
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates the draft and, if valid, starts the simulated round trip.
// Submitting while pending returns ErrBusy and changes nothing.
func (s *Simulator) Submit(d Draft) (Outcome, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Outcome{}, ErrClosed
	}
	if s.state == StatePending {
		s.mu.Unlock()
		return Outcome{State: StatePending}, ErrBusy
	}

	s.state = StateValidating
	if violations := s.rules.Validate(d); len(violations) > 0 {
		s.state = StateIdle
		s.last = StateRejected
		s.mu.Unlock()

		for _, v := range violations {
			s.notify(notify.LevelError, string(v.Reason), v.Text)
		}
		return Outcome{State: StateRejected, Violations: violations}, nil
	}

	entry := d.Entry(s.clock.Now())

	s.state = StatePending
	s.gen++
	gen := s.gen
	s.timer = s.clock.AfterFunc(s.rules.Latency, func() { s.complete(gen, entry) })
	s.mu.Unlock()

	return Outcome{State: StatePending, Entry: &entry}, nil
}

// complete runs when the latency elapses. The state stays pending while the
// hook resets the form so that no new submission can interleave with it.
// The success toast goes out under the lock: once Close returns, none follows.
func (s *Simulator) complete(gen uint64, entry models.SubmissionEntry) {
	s.mu.Lock()
	if s.closed || gen != s.gen || s.state != StatePending {
		s.mu.Unlock()
		return
	}
	hook := s.onSuccess
	s.notify(notify.LevelSuccess, "submitted", s.rules.Success)
	s.mu.Unlock()

	if hook != nil {
		hook(entry)
	}

	s.mu.Lock()
	if gen == s.gen && s.state == StatePending {
		s.state = StateIdle
		s.last = StateSucceeded
		s.timer = nil
	}
	s.mu.Unlock()
}

// Close cancels a pending round trip; its completion will never run
func (s *Simulator) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.state == StatePending {
		s.state = StateIdle
	}
}

// State returns the current state
func (s *Simulator) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Last returns how the previous submission ended (succeeded or rejected), or
// an empty state if there was none
func (s *Simulator) Last() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Disabled reports whether the submit control must be disabled
func (s *Simulator) Disabled() bool {
	return s.State() == StatePending
}

func (s *Simulator) notify(level notify.Level, cause, text string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(notify.Message{
		Level:     level,
		Cause:     cause,
		Text:      text,
		SessionID: s.sessionID,
		Time:      s.clock.Now(),
	})
}
