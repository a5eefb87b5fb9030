package transcription

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ssequote/internal/logging"
	"ssequote/internal/revai"
)

// DefaultPollInterval is the fixed delay between job status checks.
const DefaultPollInterval = 5 * time.Second

// SpeechService is the remote API the poller drives.
type SpeechService interface {
	SubmitJob(ctx context.Context, mediaURL string) (revai.Job, error)
	GetJob(ctx context.Context, id string) (revai.Job, error)
	GetTranscriptText(ctx context.Context, id string) (string, error)
}

// Options tunes polling.
type Options struct {
	Interval time.Duration
	// MaxWait bounds total polling time; zero waits indefinitely.
	MaxWait time.Duration
}

// Poller submits transcription jobs and waits for them to finish.
type Poller struct {
	speech   SpeechService
	interval time.Duration
	maxWait  time.Duration
	logger   *slog.Logger

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// NewPoller constructs a Poller.
func NewPoller(speech SpeechService, opts Options, logger *slog.Logger) *Poller {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		speech:   speech,
		interval: interval,
		maxWait:  opts.MaxWait,
		logger:   logging.NewComponentLogger(logger, "transcription"),
		sleep:    sleepContext,
		now:      time.Now,
	}
}

// Transcribe submits sourceURL for transcription, polls at the fixed
// interval while the job is in progress, and returns the transcript text.
// The status returned by submission is the first one observed, so a job
// that reports in_progress twice before finishing is slept on twice.
func (p *Poller) Transcribe(ctx context.Context, sourceURL string) (string, error) {
	logger := logging.WithContext(ctx, p.logger)

	job, err := p.speech.SubmitJob(ctx, sourceURL)
	if err != nil {
		return "", &TranscriptionError{Detail: "submit job", Err: err}
	}
	logger = logger.With(logging.JobID(job.ID))
	logger.Info("transcription job submitted", logging.String("source_url", sourceURL))

	start := p.now()
	status := job.Status
	polls := 0
	for status == revai.StatusInProgress {
		if p.maxWait > 0 && p.now().Sub(start) >= p.maxWait {
			return "", &TranscriptionError{
				JobID:   job.ID,
				Detail:  fmt.Sprintf("still in progress after %s", p.maxWait),
				Timeout: true,
			}
		}
		logger.Debug("transcription job in progress", logging.Int("polls", polls))
		if err := p.sleep(ctx, p.interval); err != nil {
			return "", &TranscriptionError{JobID: job.ID, Detail: "wait for job", Err: err}
		}
		polls++
		next, err := p.speech.GetJob(ctx, job.ID)
		if err != nil {
			return "", &TranscriptionError{JobID: job.ID, Detail: "get job status", Err: err}
		}
		job.Status, job.Failure, job.FailureDetail = next.Status, next.Failure, next.FailureDetail
		status = job.Status
	}

	switch status {
	case revai.StatusTranscribed:
	case revai.StatusFailed:
		detail := job.FailureDetail
		if detail == "" {
			detail = job.Failure
		}
		if detail == "" {
			detail = "job failed"
		}
		return "", &TranscriptionError{JobID: job.ID, Detail: detail}
	default:
		return "", &TranscriptionError{JobID: job.ID, Detail: fmt.Sprintf("unexpected job status %q", status)}
	}

	text, err := p.speech.GetTranscriptText(ctx, job.ID)
	if err != nil {
		return "", &TranscriptionError{JobID: job.ID, Detail: "get transcript", Err: err}
	}
	logger.Info("transcription job finished",
		logging.Int("polls", polls),
		logging.Duration("elapsed", p.now().Sub(start)),
		logging.Int("transcript_bytes", len(text)),
	)
	return text, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
