package forms

import (
	"testing"
	"time"

	"festival-media-center/internal/intake"
	"festival-media-center/internal/notify"
	"festival-media-center/internal/preview"
	"festival-media-center/internal/submission"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixture struct {
	mgr   *Manager
	reg   *preview.Registry
	clock *submission.ManualClock
	rec   *notify.Recorder
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	if cfg.Latencies == (Latencies{}) {
		cfg.Latencies = DefaultLatencies
	}
	f := &fixture{
		reg:   preview.NewRegistry("http://localhost/api/v1/previews"),
		clock: submission.NewManualClock(time.Date(2026, 6, 20, 18, 0, 0, 0, time.UTC)),
		rec:   &notify.Recorder{},
	}
	f.mgr = NewManager(cfg, f.reg, f.rec, WithClock(f.clock))
	t.Cleanup(f.mgr.Stop)
	return f
}

func candidate(name, contentType string) intake.Candidate {
	data := []byte("payload of " + name)
	return intake.Candidate{
		File: preview.File{
			Name:        name,
			ContentType: contentType,
			Size:        int64(len(data)),
			Data:        data,
		},
		Source: intake.SourcePicker,
	}
}

func TestPhotos_AttachFiltersAndAppends(t *testing.T) {
	f := newFixture(t, Config{})
	s, err := f.mgr.Open(KindPhotos)
	require.NoError(t, err)

	res, err := s.Attach([]intake.Candidate{
		candidate("a.jpg", "image/jpeg"),
		candidate("clip.mp4", "video/mp4"),
		candidate("b.png", "image/png"),
	})
	require.NoError(t, err)
	assert.Len(t, res.Accepted, 2)
	assert.Len(t, res.Rejected, 1)

	_, err = s.Attach([]intake.Candidate{candidate("c.webp", "image/webp")})
	require.NoError(t, err)

	snap := s.Snapshot()
	require.Len(t, snap.Uploads, 3)
	assert.Equal(t, "a.jpg", snap.Uploads[0].File.Name)
	assert.Equal(t, "c.webp", snap.Uploads[2].File.Name)
	assert.Equal(t, 3, f.reg.Live())

	msgs := f.rec.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "2 image(s) added", msgs[0].Text)
	assert.Equal(t, s.ID(), msgs[0].SessionID)
}

func TestPhotos_NothingAcceptedWarnsOnce(t *testing.T) {
	f := newFixture(t, Config{})
	s, err := f.mgr.Open(KindPhotos)
	require.NoError(t, err)

	res, err := s.Attach([]intake.Candidate{
		candidate("notes.txt", "text/plain"),
		candidate("clip.mp4", "video/mp4"),
	})
	require.NoError(t, err)
	assert.Empty(t, res.Accepted)

	msgs := f.rec.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, notify.LevelWarning, msgs[0].Level)
	assert.Equal(t, "Please upload valid image files (JPEG, PNG, etc.)", msgs[0].Text)
	assert.Equal(t, 0, f.reg.Live())
}

func TestWishes_VideoReplacesPrevious(t *testing.T) {
	f := newFixture(t, Config{})
	s, err := f.mgr.Open(KindWishes)
	require.NoError(t, err)

	_, err = s.Attach([]intake.Candidate{candidate("first.mp4", "video/mp4")})
	require.NoError(t, err)
	first := s.Snapshot().Uploads[0].Locator

	res, err := s.Attach([]intake.Candidate{
		candidate("second.mp4", "video/mp4"),
		candidate("third.webm", "video/webm"),
	})
	require.NoError(t, err)
	require.Len(t, res.Accepted, 1)

	snap := s.Snapshot()
	require.Len(t, snap.Uploads, 1)
	assert.Equal(t, "second.mp4", snap.Uploads[0].File.Name)
	assert.Equal(t, 1, f.reg.Live(), "replaced and surplus previews are revoked")
	_, ok := f.reg.Open(first.Token)
	assert.False(t, ok)
}

func TestWishes_ImageRejected(t *testing.T) {
	f := newFixture(t, Config{})
	s, err := f.mgr.Open(KindWishes)
	require.NoError(t, err)

	_, err = s.Attach([]intake.Candidate{candidate("a.jpg", "image/jpeg")})
	require.NoError(t, err)
	assert.Empty(t, s.Snapshot().Uploads)
	assert.Equal(t, "Please upload a valid video file.", f.rec.Messages()[0].Text)
}

func TestSession_RemoveRevokes(t *testing.T) {
	f := newFixture(t, Config{})
	s, err := f.mgr.Open(KindPhotos)
	require.NoError(t, err)

	_, err = s.Attach([]intake.Candidate{candidate("a.jpg", "image/jpeg"), candidate("b.jpg", "image/jpeg")})
	require.NoError(t, err)

	removed, err := s.Remove(0)
	require.NoError(t, err)
	assert.Equal(t, "a.jpg", removed.File.Name)
	assert.Equal(t, 1, f.reg.Live())

	_, err = s.Remove(5)
	assert.ErrorIs(t, err, preview.ErrIndexOutOfRange)
	assert.Len(t, s.Snapshot().Uploads, 1)
}

func TestWishes_SubmitSucceedsAndResets(t *testing.T) {
	f := newFixture(t, Config{})
	s, err := f.mgr.Open(KindWishes)
	require.NoError(t, err)

	_, err = s.Attach([]intake.Candidate{candidate("wish.mp4", "video/mp4")})
	require.NoError(t, err)
	require.NoError(t, s.SetFields("Layla", "See you next year"))
	f.rec.Reset()

	out, err := s.Submit()
	require.NoError(t, err)
	assert.Equal(t, submission.StatePending, out.State)
	assert.True(t, s.Snapshot().Disabled)

	_, err = s.Submit()
	assert.ErrorIs(t, err, submission.ErrBusy)

	f.clock.Advance(DefaultLatencies.Wishes)

	snap := s.Snapshot()
	assert.Empty(t, snap.Author)
	assert.Empty(t, snap.Message)
	assert.Empty(t, snap.Uploads)
	assert.False(t, snap.Disabled)
	assert.Equal(t, submission.StateSucceeded, snap.Last)
	assert.Equal(t, 0, f.reg.Live())

	msgs := f.rec.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "Your wish has been submitted successfully!", msgs[0].Text)
}

func TestPhotos_RequireImages(t *testing.T) {
	f := newFixture(t, Config{})
	s, err := f.mgr.Open(KindPhotos)
	require.NoError(t, err)
	require.NoError(t, s.SetFields("Ahmed", "caption only"))

	out, err := s.Submit()
	require.NoError(t, err)
	assert.Equal(t, submission.StateRejected, out.State)
	assert.Equal(t, "Please add at least one image to upload", f.rec.Messages()[0].Text)
	assert.Equal(t, "caption only", s.Snapshot().Message, "rejection keeps the fields")
}

func TestPhotos_SubmitLatency(t *testing.T) {
	f := newFixture(t, Config{})
	s, err := f.mgr.Open(KindPhotos)
	require.NoError(t, err)
	_, err = s.Attach([]intake.Candidate{candidate("a.jpg", "image/jpeg")})
	require.NoError(t, err)
	require.NoError(t, s.SetFields("Ahmed", ""))

	_, err = s.Submit()
	require.NoError(t, err)

	f.clock.Advance(1500 * time.Millisecond)
	assert.Equal(t, submission.StatePending, s.Snapshot().State)
	f.clock.Advance(500 * time.Millisecond)
	assert.Equal(t, submission.StateIdle, s.Snapshot().State)
	assert.Empty(t, s.Snapshot().Uploads)
}

func TestSession_CloseWhilePending(t *testing.T) {
	f := newFixture(t, Config{})
	s, err := f.mgr.Open(KindWishes)
	require.NoError(t, err)
	_, err = s.Attach([]intake.Candidate{candidate("wish.mp4", "video/mp4")})
	require.NoError(t, err)
	require.NoError(t, s.SetFields("Layla", ""))
	_, err = s.Submit()
	require.NoError(t, err)
	f.rec.Reset()

	require.NoError(t, f.mgr.Close(s.ID()))
	assert.True(t, s.Closed())
	assert.Equal(t, 0, f.reg.Live())

	f.clock.Advance(time.Minute)
	assert.Empty(t, f.rec.Messages(), "no completion after teardown")

	_, err = s.Submit()
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.Attach(nil)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, f.mgr.Close(s.ID()), ErrSessionNotFound)
}

func TestSession_SubmitFieldsKeepsFieldsWhileBusy(t *testing.T) {
	f := newFixture(t, Config{})
	s, err := f.mgr.Open(KindWishes)
	require.NoError(t, err)

	out, err := s.SubmitFields("Ahmed", "first")
	require.NoError(t, err)
	assert.Equal(t, submission.StatePending, out.State)

	_, err = s.SubmitFields("Someone", "second")
	assert.ErrorIs(t, err, submission.ErrBusy)
	assert.Equal(t, "first", s.Snapshot().Message)

	f.clock.Advance(DefaultLatencies.Wishes)
	assert.Empty(t, s.Snapshot().Message)
}

func TestSession_AttachToastSentOutsideLock(t *testing.T) {
	reg := preview.NewRegistry("http://localhost/api/v1/previews")
	clock := submission.NewManualClock(time.Date(2026, 6, 20, 18, 0, 0, 0, time.UTC))

	var s *Session
	seen := make(chan int, 4)
	// a slow sink that reads the form back must not deadlock with Attach
	n := notify.Func(func(msg notify.Message) {
		if msg.Cause == "intake" {
			seen <- len(s.Snapshot().Uploads)
		}
	})
	mgr := NewManager(Config{Latencies: DefaultLatencies}, reg, n, WithClock(clock))
	t.Cleanup(mgr.Stop)

	var err error
	s, err = mgr.Open(KindPhotos)
	require.NoError(t, err)

	_, err = s.Attach([]intake.Candidate{candidate("a.jpg", "image/jpeg")})
	require.NoError(t, err)
	_, err = s.Attach([]intake.Candidate{candidate("notes.txt", "text/plain")})
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.Equal(t, 1, <-seen)
	assert.Equal(t, 1, <-seen)
}
