package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"ssequote/internal/audio"
	"ssequote/internal/config"
	"ssequote/internal/download"
	"ssequote/internal/gate"
	"ssequote/internal/history"
	"ssequote/internal/logging"
	"ssequote/internal/notifications"
	"ssequote/internal/pipeline"
	"ssequote/internal/revai"
	"ssequote/internal/storage"
	"ssequote/internal/transcription"
)

// errReported marks failures whose details were already printed.
var errReported = errors.New("failure already reported")

type commandContext struct {
	configFlag *string
	verbose    *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error

	storeOnce sync.Once
	store     storage.Store
	storeErr  error
	gate      *gate.Gate

	historyStore *history.Store
	notify       notifications.Service
}

func newCommandContext(configFlag *string, verbose *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		verbose:    verbose,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) isVerbose() bool {
	return c.verbose != nil && *c.verbose
}

func (c *commandContext) ensureLogger(console io.Writer) (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewForCLI(cfg, c.isVerbose(), console)
		if err != nil {
			c.loggerErr = err
			return
		}
		logging.CleanupOldLogs(logger, cfg.Paths.LogDir, logging.LogFilePattern, cfg.Logging.RetentionDays)
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) loggerValue() *slog.Logger {
	if c.logger == nil {
		return logging.NewNop()
	}
	return c.logger
}

// ensureStore builds the configured storage backend once per invocation.
func (c *commandContext) ensureStore(ctx context.Context) (storage.Store, error) {
	c.storeOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.storeErr = err
			return
		}
		store, err := openStore(ctx, cfg)
		if err != nil {
			c.storeErr = err
			return
		}
		c.store = store
		c.gate = gate.New(store, c.loggerValue())
	})
	return c.store, c.storeErr
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case config.StorageBackendFilesystem:
		return storage.NewFilesystem(cfg.Storage.Root, cfg.Storage.PublicBaseURL)
	case config.StorageBackendS3:
		return storage.NewS3(ctx, storage.S3Config{
			Region:        cfg.Storage.Region,
			Endpoint:      cfg.Storage.Endpoint,
			UsePathStyle:  cfg.Storage.UsePathStyle,
			PublicBaseURL: cfg.Storage.PublicBaseURL,
		})
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
}

// buildPipeline wires the per-episode pipeline. The speech client is only
// required when the command transcribes.
func (c *commandContext) buildPipeline(ctx context.Context, withSpeech bool) (*pipeline.Pipeline, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := c.ensureStore(ctx)
	if err != nil {
		return nil, err
	}
	logger := c.loggerValue()

	deps := pipeline.Dependencies{
		Store:   store,
		Gate:    c.gate,
		Fetcher: download.New(nil, seconds(cfg.Source.DownloadTimeoutSeconds), logger),
		Trimmer: audio.NewTrimmer(cfg.Audio.FFmpegBinary, audio.Window{
			StartSeconds:    cfg.Audio.TrimStartSeconds,
			DurationSeconds: cfg.Audio.TrimDurationSeconds,
		}),
	}
	if withSpeech {
		transcriber, err := newTranscriber(cfg, logger)
		if err != nil {
			return nil, err
		}
		deps.Transcriber = transcriber
	}

	return pipeline.New(pipeline.Config{
		StagingDir:       cfg.Paths.StagingDir,
		AudioBucket:      cfg.Storage.AudioBucket,
		TranscriptBucket: cfg.Storage.TranscriptBucket,
		SourceURL:        cfg.SourceURL,
	}, deps, logger), nil
}

func newTranscriber(cfg *config.Config, logger *slog.Logger) (*transcription.Poller, error) {
	if err := cfg.RequireSpeechKey(); err != nil {
		return nil, err
	}
	client, err := revai.New(revai.Config{
		APIKey:     cfg.Speech.APIKey,
		BaseURL:    cfg.Speech.BaseURL,
		HTTPClient: &http.Client{Timeout: seconds(cfg.Speech.RequestTimeoutSeconds)},
	})
	if err != nil {
		return nil, err
	}
	return transcription.NewPoller(client, transcription.Options{
		Interval: seconds(cfg.Speech.PollIntervalSeconds),
		MaxWait:  seconds(cfg.Speech.MaxWaitSeconds),
	}, logger), nil
}

// ensureHistory opens the run ledger when enabled; it returns nil otherwise.
func (c *commandContext) ensureHistory(ctx context.Context) (*history.Store, error) {
	if c.historyStore != nil {
		return c.historyStore, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.History.Enabled {
		return nil, nil
	}
	store, err := history.Open(ctx, cfg.History.Path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	c.historyStore = store
	return store, nil
}

// notifier returns the ntfy service, or a no-op when the config failed to load.
func (c *commandContext) notifier() notifications.Service {
	if c.notify == nil {
		cfg, _ := c.ensureConfig()
		c.notify = notifications.NewService(cfg)
	}
	return c.notify
}

// sendNotification delivers a notification without letting delivery errors fail the command.
func (c *commandContext) sendNotification(ctx context.Context, send func(context.Context, notifications.Service) error) {
	if err := send(context.WithoutCancel(ctx), c.notifier()); err != nil {
		c.loggerValue().Warn("notification failed", logging.Error(err))
	}
}

func (c *commandContext) close() {
	if c.historyStore != nil {
		_ = c.historyStore.Close()
		c.historyStore = nil
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
