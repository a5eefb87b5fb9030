package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"ssequote/internal/episode"
	"ssequote/internal/gate"
	"ssequote/internal/logging"
	"ssequote/internal/quote"
	"ssequote/internal/services"
	"ssequote/internal/staging"
	"ssequote/internal/storage"
)

// Stage names used in logs and error details.
const (
	StageEnsureBuckets    = "ensure_buckets"
	StageDownload         = "download"
	StageTrim             = "trim"
	StageUploadAudio      = "upload_audio"
	StageTranscribe       = "transcribe"
	StageExtract          = "extract_quote"
	StageUploadTranscript = "upload_transcript"
)

// Content types of stored artifacts.
const (
	AudioContentType      = "audio/mpeg"
	TranscriptContentType = "text/plain; charset=utf-8"
)

// Fetcher downloads the source audio into a local file.
type Fetcher interface {
	Fetch(ctx context.Context, url, dest string) (int64, error)
}

// Trimmer cuts a local audio file into a new file.
type Trimmer interface {
	Trim(ctx context.Context, source, dest string) error
}

// Transcriber turns a public audio URL into transcript text.
type Transcriber interface {
	Transcribe(ctx context.Context, sourceURL string) (string, error)
}

// Config carries the per-run settings.
type Config struct {
	StagingDir       string
	AudioBucket      string
	TranscriptBucket string
	// SourceURL maps an episode number to its download URL.
	SourceURL func(n int) string
}

// Dependencies are the collaborators a Pipeline drives.
type Dependencies struct {
	Store       storage.Store
	Gate        *gate.Gate
	Fetcher     Fetcher
	Trimmer     Trimmer
	Transcriber Transcriber
}

// Outcome describes what a run did for one episode.
type Outcome struct {
	Episode           int
	AudioSkipped      bool
	TranscriptSkipped bool
	AudioURL          string
	Quote             string
	Duration          time.Duration
}

// Pipeline produces the stored artifacts for a single episode.
type Pipeline struct {
	cfg    Config
	deps   Dependencies
	logger *slog.Logger
}

// New constructs a Pipeline. A nil gate is built from the store.
func New(cfg Config, deps Dependencies, logger *slog.Logger) *Pipeline {
	logger = logging.NewComponentLogger(logger, "pipeline")
	if deps.Gate == nil {
		deps.Gate = gate.New(deps.Store, logger)
	}
	return &Pipeline{cfg: cfg, deps: deps, logger: logger}
}

// Run produces both artifacts for episode n, skipping any already stored.
// The first failing stage ends the run; later stages are not attempted.
func (p *Pipeline) Run(ctx context.Context, n int) (Outcome, error) {
	return p.execute(ctx, n, true, true)
}

// Cut produces only the trimmed public audio for episode n.
func (p *Pipeline) Cut(ctx context.Context, n int) (Outcome, error) {
	return p.execute(ctx, n, true, false)
}

// Transcribe produces only the transcript for episode n. The trimmed audio
// must already be stored, since the speech service fetches it by URL.
func (p *Pipeline) Transcribe(ctx context.Context, n int) (Outcome, error) {
	return p.execute(ctx, n, false, true)
}

func (p *Pipeline) execute(ctx context.Context, n int, audio, transcript bool) (Outcome, error) {
	ctx = services.WithEpisode(ctx, n)
	logger := logging.WithContext(ctx, p.logger)
	start := time.Now()
	out := Outcome{Episode: n}

	logger.Info("episode started",
		logging.Bool("audio", audio),
		logging.Bool("transcript", transcript),
		logging.EventType("episode_start"),
	)

	err := p.ensureBuckets(ctx, audio, transcript)
	if err == nil && audio {
		err = p.produceAudio(ctx, n, &out)
	}
	if err == nil && !audio {
		err = p.requireAudio(ctx, n)
	}
	if err == nil && transcript {
		err = p.produceTranscript(ctx, n, &out)
	}
	out.Duration = time.Since(start)

	if err != nil {
		logger.Warn("episode failed",
			logging.Error(err),
			logging.String(logging.FieldErrorKind, services.Kind(err)),
			logging.Duration("duration", out.Duration),
			logging.EventType("episode_failed"),
		)
		return out, err
	}
	logger.Info("episode finished",
		logging.Bool("audio_skipped", out.AudioSkipped),
		logging.Bool("transcript_skipped", out.TranscriptSkipped),
		logging.Duration("duration", out.Duration),
		logging.EventType("episode_done"),
	)
	return out, nil
}

func (p *Pipeline) ensureBuckets(ctx context.Context, audio, transcript bool) error {
	ctx = services.WithStage(ctx, StageEnsureBuckets)
	// Transcribe-only still reads the audio bucket, but only needs the
	// transcript bucket to exist.
	if audio {
		if err := p.deps.Gate.EnsureBucket(ctx, p.cfg.AudioBucket); err != nil {
			return err
		}
	}
	if transcript {
		if err := p.deps.Gate.EnsureBucket(ctx, p.cfg.TranscriptBucket); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) produceAudio(ctx context.Context, n int, out *Outcome) error {
	key := episode.AudioKey(n)
	out.AudioURL = p.deps.Store.PublicURL(p.cfg.AudioBucket, key)

	exists, err := p.deps.Gate.ExistsAt(ctx, p.cfg.AudioBucket, key)
	if err != nil {
		return err
	}
	if exists {
		out.AudioSkipped = true
		p.stageLogger(ctx, StageUploadAudio).Info("audio already stored; skipping",
			logging.Object(p.cfg.AudioBucket, key),
			logging.EventType("stage_skip"),
		)
		return nil
	}

	ws, err := staging.NewWorkspace(p.cfg.StagingDir, n)
	if err != nil {
		return services.Wrap(services.ErrDownload, StageDownload, "prepare staging", "", err)
	}
	defer func() {
		if err := ws.Remove(); err != nil {
			p.stageLogger(ctx, StageDownload).Warn("failed to remove staging directory",
				logging.String("path", ws.Dir),
				logging.Error(err),
			)
		}
	}()

	source := ws.Path("source.mp3")
	clip := ws.Path(key)

	url := p.cfg.SourceURL(n)
	dctx := services.WithStage(ctx, StageDownload)
	p.stageLogger(dctx, StageDownload).Debug("downloading source audio", logging.URL(url))
	size, err := p.deps.Fetcher.Fetch(dctx, url, source)
	if err != nil {
		return err
	}
	p.stageLogger(dctx, StageDownload).Debug("source audio downloaded", logging.Int64("bytes", size))

	tctx := services.WithStage(ctx, StageTrim)
	p.stageLogger(tctx, StageTrim).Debug("trimming audio")
	if err := p.deps.Trimmer.Trim(tctx, source, clip); err != nil {
		return err
	}

	uctx := services.WithStage(ctx, StageUploadAudio)
	p.stageLogger(uctx, StageUploadAudio).Debug("uploading audio", logging.Object(p.cfg.AudioBucket, key))
	err = storage.PutFile(uctx, p.deps.Store, clip, storage.Object{
		Bucket:      p.cfg.AudioBucket,
		Key:         key,
		ContentType: AudioContentType,
		Public:      true,
	})
	if err != nil {
		return services.Wrap(services.ErrStorage, StageUploadAudio, "put object", p.cfg.AudioBucket+"/"+key, err)
	}
	p.stageLogger(uctx, StageUploadAudio).Info("audio uploaded", logging.URL(out.AudioURL))
	return nil
}

func (p *Pipeline) requireAudio(ctx context.Context, n int) error {
	key := episode.AudioKey(n)
	exists, err := p.deps.Gate.ExistsAt(ctx, p.cfg.AudioBucket, key)
	if err != nil {
		return err
	}
	if !exists {
		return services.Wrap(services.ErrStorage, StageTranscribe, "require audio",
			fmt.Sprintf("%s/%s is not stored; cut the episode first", p.cfg.AudioBucket, key), nil)
	}
	return nil
}

func (p *Pipeline) produceTranscript(ctx context.Context, n int, out *Outcome) error {
	key := episode.TranscriptKey(n)
	exists, err := p.deps.Gate.ExistsAt(ctx, p.cfg.TranscriptBucket, key)
	if err != nil {
		return err
	}
	if exists {
		out.TranscriptSkipped = true
		p.stageLogger(ctx, StageUploadTranscript).Info("transcript already stored; skipping",
			logging.Object(p.cfg.TranscriptBucket, key),
			logging.EventType("stage_skip"),
		)
		return nil
	}

	audioURL := p.deps.Store.PublicURL(p.cfg.AudioBucket, episode.AudioKey(n))
	out.AudioURL = audioURL

	tctx := services.WithStage(ctx, StageTranscribe)
	p.stageLogger(tctx, StageTranscribe).Debug("transcribing audio", logging.URL(audioURL))
	text, err := p.deps.Transcriber.Transcribe(tctx, audioURL)
	if err != nil {
		return err
	}

	q, err := quote.Extract(text)
	if err != nil {
		return err
	}
	out.Quote = q
	p.stageLogger(ctx, StageExtract).Debug("quote extracted", logging.String("quote", q))

	uctx := services.WithStage(ctx, StageUploadTranscript)
	body := []byte(q)
	err = p.deps.Store.PutObject(uctx, storage.Object{
		Bucket:      p.cfg.TranscriptBucket,
		Key:         key,
		Body:        bytes.NewReader(body),
		Size:        int64(len(body)),
		ContentType: TranscriptContentType,
	})
	if err != nil {
		return services.Wrap(services.ErrStorage, StageUploadTranscript, "put object", p.cfg.TranscriptBucket+"/"+key, err)
	}
	p.stageLogger(uctx, StageUploadTranscript).Info("transcript uploaded", logging.Object(p.cfg.TranscriptBucket, key))
	return nil
}

func (p *Pipeline) stageLogger(ctx context.Context, stage string) *slog.Logger {
	return logging.WithContext(services.WithStage(ctx, stage), p.logger)
}
