package batch

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"ssequote/internal/episode"
	"ssequote/internal/logging"
	"ssequote/internal/services"
)

// RunFunc processes one episode.
type RunFunc func(ctx context.Context, n int) error

// Failure records one episode that did not complete.
type Failure struct {
	Episode int
	Kind    string
	Err     error
}

// Summary aggregates a batch run.
type Summary struct {
	RunID      string
	From       int
	To         int
	Processed  int
	Succeeded  int
	Failures   []Failure
	StartedAt  time.Time
	FinishedAt time.Time
}

// Failed returns the number of failed episodes.
func (s Summary) Failed() int {
	return len(s.Failures)
}

// Duration returns the wall time of the run.
func (s Summary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// SortedFailures returns the failures ordered by episode number.
func (s Summary) SortedFailures() []Failure {
	out := slices.Clone(s.Failures)
	slices.SortFunc(out, func(a, b Failure) int { return a.Episode - b.Episode })
	return out
}

// Options tunes the orchestrator.
type Options struct {
	// Concurrency bounds in-flight episodes; zero runs every episode at once.
	Concurrency int
}

// Orchestrator fans a RunFunc out over a range of episodes.
type Orchestrator struct {
	run         RunFunc
	concurrency int
	logger      *slog.Logger

	now   func() time.Time
	newID func() string
}

// New constructs an Orchestrator.
func New(run RunFunc, opts Options, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		run:         run,
		concurrency: opts.Concurrency,
		logger:      logging.NewComponentLogger(logger, "batch"),
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// Run processes every episode in [from, to] and waits for all of them.
// A failure or panic in one episode is recorded and never affects the
// others. An empty range returns an empty summary without calling the
// RunFunc.
func (o *Orchestrator) Run(ctx context.Context, from, to int) Summary {
	summary := Summary{
		RunID:     o.newID(),
		From:      from,
		To:        to,
		Failures:  []Failure{},
		StartedAt: o.now(),
	}
	rng := episode.Range{From: from, To: to}
	if rng.Empty() {
		summary.FinishedAt = summary.StartedAt
		return summary
	}

	ctx = services.WithRunID(ctx, summary.RunID)
	logger := logging.WithContext(ctx, o.logger)
	logger.Info("batch started",
		logging.String("range", rng.String()),
		logging.Int("episodes", rng.Len()),
		logging.Int("concurrency", o.concurrency),
		logging.EventType("batch_start"),
	)

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem chan struct{}
	)
	if o.concurrency > 0 {
		sem = make(chan struct{}, o.concurrency)
	}
	record := func(n int, err error) {
		mu.Lock()
		defer mu.Unlock()
		summary.Processed++
		if err == nil {
			summary.Succeeded++
			return
		}
		summary.Failures = append(summary.Failures, Failure{Episode: n, Kind: services.Kind(err), Err: err})
	}

	for n := range rng.All() {
		if sem != nil {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				record(n, fmt.Errorf("episode %d not started: %w", n, ctx.Err()))
				continue
			}
		}
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if sem != nil {
				defer func() { <-sem }()
			}
			record(n, o.runOne(ctx, n))
		}(n)
	}
	wg.Wait()

	summary.FinishedAt = o.now()
	logger.Info("batch finished",
		logging.Int("processed", summary.Processed),
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("failed", summary.Failed()),
		logging.Duration("duration", summary.Duration()),
		logging.EventType("batch_done"),
	)
	return summary
}

func (o *Orchestrator) runOne(ctx context.Context, n int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("episode %d panicked: %v", n, r)
			logging.WithContext(services.WithEpisode(ctx, n), o.logger).Error("episode panicked",
				logging.Any("panic", r),
				logging.String("stack", string(debug.Stack())),
			)
		}
	}()
	return o.run(ctx, n)
}
