package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSource(); err != nil {
		return err
	}
	if err := c.validateSpeech(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateBatch(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateSource() error {
	if strings.Count(c.Source.URLTemplate, "%d") != 1 {
		return fmt.Errorf("source.url_template must contain exactly one %%d placeholder, got %q", c.Source.URLTemplate)
	}
	if _, err := url.Parse(fmt.Sprintf(c.Source.URLTemplate, 0)); err != nil {
		return fmt.Errorf("source.url_template: %w", err)
	}
	return nil
}

func (c *Config) validateSpeech() error {
	parsed, err := url.Parse(c.Speech.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("speech.base_url must be an absolute URL, got %q", c.Speech.BaseURL)
	}
	if c.Speech.MaxWaitSeconds > 0 && c.Speech.MaxWaitSeconds < c.Speech.PollIntervalSeconds {
		return errors.New("speech.max_wait_seconds must be at least speech.poll_interval_seconds")
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case StorageBackendS3, StorageBackendFilesystem:
	default:
		return fmt.Errorf("storage.backend: unsupported value %q (want %q or %q)", c.Storage.Backend, StorageBackendS3, StorageBackendFilesystem)
	}
	if c.Storage.AudioBucket == c.Storage.TranscriptBucket {
		return errors.New("storage.audio_bucket and storage.transcript_bucket must differ")
	}
	return nil
}

func (c *Config) validateAudio() error {
	if c.Audio.TrimDurationSeconds <= 0 {
		return errors.New("audio.trim_duration_seconds must be positive")
	}
	return nil
}

func (c *Config) validateBatch() error {
	if c.Batch.Concurrency < 0 {
		return errors.New("batch.concurrency must be >= 0")
	}
	if (c.Batch.DefaultFrom == nil) != (c.Batch.DefaultTo == nil) {
		return errors.New("batch.default_from and batch.default_to must be set together")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.NtfyTopic == "" {
		return nil
	}
	parsed, err := url.Parse(c.Notifications.NtfyTopic)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("notifications.ntfy_topic must be an absolute URL, got %q", c.Notifications.NtfyTopic)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
