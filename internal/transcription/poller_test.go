package transcription

import (
	"context"
	"errors"
	"testing"
	"time"

	"ssequote/internal/revai"
	"ssequote/internal/services"
)

type scriptedSpeech struct {
	submitStatus string
	submitErr    error
	statuses     []string
	jobErr       error
	transcript   string

	getJobCalls     int
	transcriptCalls int
	submittedURL    string
}

func (s *scriptedSpeech) SubmitJob(ctx context.Context, mediaURL string) (revai.Job, error) {
	s.submittedURL = mediaURL
	if s.submitErr != nil {
		return revai.Job{}, s.submitErr
	}
	return revai.Job{ID: "job-1", Status: s.submitStatus}, nil
}

func (s *scriptedSpeech) GetJob(ctx context.Context, id string) (revai.Job, error) {
	s.getJobCalls++
	if s.jobErr != nil {
		return revai.Job{}, s.jobErr
	}
	status := s.statuses[0]
	if len(s.statuses) > 1 {
		s.statuses = s.statuses[1:]
	}
	job := revai.Job{ID: id, Status: status}
	if status == revai.StatusFailed {
		job.FailureDetail = "media could not be fetched"
	}
	return job, nil
}

func (s *scriptedSpeech) GetTranscriptText(ctx context.Context, id string) (string, error) {
	s.transcriptCalls++
	return s.transcript, nil
}

// fakeClock records sleeps and advances time without blocking.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func (c *fakeClock) sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

func newTestPoller(speech SpeechService, opts Options) (*Poller, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	p := NewPoller(speech, opts, nil)
	p.sleep = clock.sleep
	p.now = func() time.Time { return clock.now }
	return p, clock
}

func TestTranscribeSleepsOncePerInProgressStatus(t *testing.T) {
	speech := &scriptedSpeech{
		submitStatus: revai.StatusInProgress,
		statuses:     []string{revai.StatusInProgress, revai.StatusTranscribed},
		transcript:   "hello",
	}
	p, clock := newTestPoller(speech, Options{})

	text, err := p.Transcribe(context.Background(), "https://example.com/sse-1.mp3")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "hello" {
		t.Fatalf("unexpected transcript %q", text)
	}
	if len(clock.sleeps) != 2 {
		t.Fatalf("expected 2 sleeps, got %d", len(clock.sleeps))
	}
	for _, d := range clock.sleeps {
		if d != DefaultPollInterval {
			t.Fatalf("expected %s interval, got %s", DefaultPollInterval, d)
		}
	}
	if speech.transcriptCalls != 1 {
		t.Fatalf("expected one transcript fetch, got %d", speech.transcriptCalls)
	}
	if speech.submittedURL != "https://example.com/sse-1.mp3" {
		t.Fatalf("unexpected submitted url %q", speech.submittedURL)
	}
}

func TestTranscribeImmediateCompletionDoesNotSleep(t *testing.T) {
	speech := &scriptedSpeech{submitStatus: revai.StatusTranscribed, transcript: "done"}
	p, clock := newTestPoller(speech, Options{})
	if _, err := p.Transcribe(context.Background(), "u"); err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if len(clock.sleeps) != 0 || speech.getJobCalls != 0 {
		t.Fatalf("expected no polling, got sleeps=%d getJob=%d", len(clock.sleeps), speech.getJobCalls)
	}
}

func TestTranscribeFailedJob(t *testing.T) {
	speech := &scriptedSpeech{
		submitStatus: revai.StatusInProgress,
		statuses:     []string{revai.StatusFailed},
	}
	p, _ := newTestPoller(speech, Options{})

	_, err := p.Transcribe(context.Background(), "u")
	terr, ok := AsTranscriptionError(err)
	if !ok {
		t.Fatalf("expected TranscriptionError, got %v", err)
	}
	if terr.JobID != "job-1" || terr.Detail != "media could not be fetched" {
		t.Fatalf("unexpected error payload %+v", terr)
	}
	if !errors.Is(err, services.ErrTranscription) || errors.Is(err, services.ErrTimeout) {
		t.Fatalf("unexpected classification for %v", err)
	}
	if speech.transcriptCalls != 0 {
		t.Fatal("transcript must not be fetched for a failed job")
	}
}

func TestTranscribeSubmitError(t *testing.T) {
	speech := &scriptedSpeech{submitErr: errors.New("401 unauthorized")}
	p, _ := newTestPoller(speech, Options{})
	_, err := p.Transcribe(context.Background(), "u")
	if !errors.Is(err, services.ErrTranscription) {
		t.Fatalf("expected transcription error, got %v", err)
	}
}

func TestTranscribeStatusError(t *testing.T) {
	speech := &scriptedSpeech{submitStatus: revai.StatusInProgress, jobErr: errors.New("boom")}
	p, _ := newTestPoller(speech, Options{})
	_, err := p.Transcribe(context.Background(), "u")
	terr, ok := AsTranscriptionError(err)
	if !ok || terr.JobID != "job-1" {
		t.Fatalf("expected TranscriptionError for job-1, got %v", err)
	}
}

func TestTranscribeUnknownStatus(t *testing.T) {
	speech := &scriptedSpeech{submitStatus: "queued"}
	p, _ := newTestPoller(speech, Options{})
	if _, err := p.Transcribe(context.Background(), "u"); !errors.Is(err, services.ErrTranscription) {
		t.Fatalf("expected transcription error, got %v", err)
	}
}

func TestTranscribeTimesOut(t *testing.T) {
	speech := &scriptedSpeech{
		submitStatus: revai.StatusInProgress,
		statuses:     []string{revai.StatusInProgress},
	}
	p, clock := newTestPoller(speech, Options{Interval: 5 * time.Second, MaxWait: 12 * time.Second})

	_, err := p.Transcribe(context.Background(), "u")
	if !errors.Is(err, services.ErrTimeout) || !errors.Is(err, services.ErrTranscription) {
		t.Fatalf("expected timeout transcription error, got %v", err)
	}
	if len(clock.sleeps) != 3 {
		t.Fatalf("expected 3 sleeps before giving up, got %d", len(clock.sleeps))
	}
}

func TestTranscribeHonoursCancellation(t *testing.T) {
	speech := &scriptedSpeech{submitStatus: revai.StatusInProgress, statuses: []string{revai.StatusInProgress}}
	p := NewPoller(speech, Options{Interval: time.Hour}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Transcribe(ctx, "u")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !errors.Is(err, services.ErrTranscription) {
		t.Fatalf("expected transcription error, got %v", err)
	}
}
