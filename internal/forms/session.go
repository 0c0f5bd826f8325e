// Package forms holds the per-visitor state of the wishes and photo upload
// forms: attached media with their previews, the typed fields, and the
// submit state machine.
package forms

import (
	"errors"
	"sync"
	"time"

	"festival-media-center/internal/intake"
	"festival-media-center/internal/models"
	"festival-media-center/internal/notify"
	"festival-media-center/internal/preview"
	"festival-media-center/internal/submission"
)

var (
	ErrUnknownKind     = errors.New("unknown form kind")
	ErrSessionNotFound = errors.New("form session not found")
	ErrClosed          = errors.New("form session closed")
)

// Session is one open form
type Session struct {
	mu sync.Mutex

	id       string
	spec     Spec
	intake   *intake.Intake
	alloc    preview.Allocator
	batch    *preview.Batch
	sim      *submission.Simulator
	notifier notify.Notifier
	clock    submission.Clock

	author     string
	message    string
	lastActive time.Time
	closed     bool
}

func newSession(id string, spec Spec, in *intake.Intake, alloc preview.Allocator, notifier notify.Notifier, clock submission.Clock) *Session {
	s := &Session{
		id:         id,
		spec:       spec,
		intake:     in,
		alloc:      alloc,
		batch:      preview.NewBatch(alloc),
		notifier:   notifier,
		clock:      clock,
		lastActive: clock.Now(),
	}
	s.sim = submission.NewSimulator(spec.Rules, notifier,
		submission.WithClock(clock),
		submission.WithSession(id),
		submission.OnSuccess(s.reset),
	)
	return s
}

// ID returns the session id
func (s *Session) ID() string {
	return s.id
}

// Kind returns the form kind
func (s *Session) Kind() Kind {
	return s.spec.Kind
}

// Attach validates a batch of candidates and keeps the accepted ones. On a
// single-file form the first accepted file replaces whatever was attached.
// The toast is sent after the session is unlocked.
func (s *Session) Attach(candidates []intake.Candidate) (intake.Result, error) {
	res, level, err := s.attach(candidates)
	if err != nil {
		return res, err
	}
	if level == notify.LevelWarning {
		s.notify(level, "intake", res.Warning)
	} else {
		s.notify(level, "intake", res.Notice)
	}
	return res, nil
}

func (s *Session) attach(candidates []intake.Candidate) (intake.Result, notify.Level, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return intake.Result{}, "", ErrClosed
	}
	s.lastActive = s.clock.Now()

	res := s.intake.Accept(candidates, s.spec.Accept)
	if len(res.Accepted) == 0 {
		return res, notify.LevelWarning, nil
	}

	if s.spec.Replaces() {
		for _, extra := range res.Accepted[1:] {
			s.alloc.Revoke(extra.Locator)
		}
		res.Accepted = res.Accepted[:1]
		res.Notice = "1 " + string(s.spec.Accept) + "(s) added"
		s.batch.Replace(res.Accepted...)
	} else {
		s.batch.Add(res.Accepted...)
	}
	return res, notify.LevelInfo, nil
}

// Remove detaches the file at index and revokes its preview
func (s *Session) Remove(index int) (preview.Upload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return preview.Upload{}, ErrClosed
	}
	s.lastActive = s.clock.Now()
	return s.batch.Remove(index)
}

// SetFields stores the typed author and message
func (s *Session) SetFields(author, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.lastActive = s.clock.Now()
	s.author = author
	s.message = message
	return nil
}

// Submit hands the current fields and media to the simulator
func (s *Session) Submit() (submission.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return submission.Outcome{}, ErrClosed
	}
	return s.submitLocked()
}

// SubmitFields stores the fields and submits in one step. While a submission
// is pending it returns submission.ErrBusy and leaves the fields untouched.
func (s *Session) SubmitFields(author, message string) (submission.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return submission.Outcome{}, ErrClosed
	}
	if s.sim.Disabled() {
		return submission.Outcome{State: submission.StatePending}, submission.ErrBusy
	}
	s.author = author
	s.message = message
	return s.submitLocked()
}

func (s *Session) submitLocked() (submission.Outcome, error) {
	s.lastActive = s.clock.Now()
	return s.sim.Submit(submission.Draft{
		Author:     s.author,
		Message:    s.message,
		Media:      s.spec.Accept,
		MediaCount: s.batch.Len(),
	})
}

// reset runs once a submission succeeds. It empties the fields and releases
// every preview.
func (s *Session) reset(models.SubmissionEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.author = ""
	s.message = ""
	s.batch.Clear()
}

// Close cancels a pending submission and revokes every preview. It is safe to
// call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.sim.Close()
	s.batch.Clear()
}

// Closed reports whether the session was torn down
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Snapshot is the render projection of a form
type Snapshot struct {
	ID       string               `json:"id"`
	Kind     Kind                 `json:"kind"`
	Accept   models.MediaCategory `json:"accept"`
	MaxFiles int                  `json:"max_files,omitempty"`
	Author   string               `json:"name"`
	Message  string               `json:"message"`
	Uploads  []preview.Upload     `json:"uploads"`
	State    submission.State     `json:"state"`
	Last     submission.State     `json:"last,omitempty"`
	Disabled bool                 `json:"submit_disabled"`
}

// Snapshot returns the current state of the form
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:       s.id,
		Kind:     s.spec.Kind,
		Accept:   s.spec.Accept,
		MaxFiles: s.spec.MaxFiles,
		Author:   s.author,
		Message:  s.message,
		Uploads:  s.batch.Uploads(),
		State:    s.sim.State(),
		Last:     s.sim.Last(),
		Disabled: s.sim.Disabled(),
	}
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastActive)
}

func (s *Session) notify(level notify.Level, cause, text string) {
	if s.notifier == nil || text == "" {
		return
	}
	s.notifier.Notify(notify.Message{
		Level:     level,
		Cause:     cause,
		Text:      text,
		SessionID: s.id,
		Time:      s.clock.Now(),
	})
}
