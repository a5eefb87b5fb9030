package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains local directory configuration.
type Paths struct {
	StagingDir         string `toml:"staging_dir"`
	LogDir             string `toml:"log_dir"`
	StagingMaxAgeHours int    `toml:"staging_max_age_hours"`
}

// Speech contains configuration for the Rev.ai speech-to-text API.
type Speech struct {
	APIKey                string `toml:"api_key"`
	BaseURL               string `toml:"base_url"`
	PollIntervalSeconds   int    `toml:"poll_interval_seconds"`
	MaxWaitSeconds        int    `toml:"max_wait_seconds"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Source describes where episode audio is downloaded from.
type Source struct {
	// URLTemplate is a fmt pattern receiving the episode number.
	URLTemplate            string `toml:"url_template"`
	DownloadTimeoutSeconds int    `toml:"download_timeout_seconds"`
}

// Storage contains object storage configuration.
type Storage struct {
	// Backend selects "s3" or "filesystem".
	Backend          string `toml:"backend"`
	AudioBucket      string `toml:"audio_bucket"`
	TranscriptBucket string `toml:"transcript_bucket"`
	Region           string `toml:"region"`
	Endpoint         string `toml:"endpoint"`
	UsePathStyle     bool   `toml:"use_path_style"`
	// Root is the directory holding buckets for the filesystem backend.
	Root string `toml:"root"`
	// PublicBaseURL overrides the URL handed to the speech service for public audio.
	PublicBaseURL string `toml:"public_base_url"`
}

// Audio contains trimming configuration.
type Audio struct {
	FFmpegBinary        string `toml:"ffmpeg_binary"`
	TrimStartSeconds    int    `toml:"trim_start_seconds"`
	TrimDurationSeconds int    `toml:"trim_duration_seconds"`
}

// Batch contains defaults for the all command.
type Batch struct {
	DefaultFrom *int `toml:"default_from"`
	DefaultTo   *int `toml:"default_to"`
	// Concurrency bounds in-flight episodes; 0 runs every episode at once.
	Concurrency int `toml:"concurrency"`
}

// History contains configuration for the batch run ledger.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic             string `toml:"ntfy_topic"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
	// OnlyOnFailure suppresses batch notifications when every episode succeeded.
	OnlyOnFailure bool `toml:"only_on_failure"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for ssequote.
//
// Configuration sections by subsystem:
//   - Paths: staging and log directories
//   - Speech: Rev.ai credentials and polling
//   - Source: episode audio URL template
//   - Storage: buckets and backend selection
//   - Audio: ffmpeg trim window
//   - Batch: default episode range and concurrency
//   - History: sqlite run ledger
//   - Notifications: ntfy push notification settings
//   - Logging: log format, level, and retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	Speech        Speech        `toml:"speech"`
	Source        Source        `toml:"source"`
	Storage       Storage       `toml:"storage"`
	Audio         Audio         `toml:"audio"`
	Batch         Batch         `toml:"batch"`
	History       History       `toml:"history"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := loadDotEnv(filepath.Dir(resolvedPath)); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("ssequote.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories commands write into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.StagingDir, c.Paths.LogDir}
	if c.Storage.Backend == StorageBackendFilesystem {
		dirs = append(dirs, c.Storage.Root)
	}
	if c.History.Enabled && c.History.Path != "" {
		dirs = append(dirs, filepath.Dir(c.History.Path))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RequireSpeechKey reports a configuration error when no Rev.ai key is set.
// Commands that only cut audio never call it.
func (c *Config) RequireSpeechKey() error {
	if strings.TrimSpace(c.Speech.APIKey) != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	return fmt.Errorf("speech.api_key is required. Set REV_API_KEY (environment or .env) or edit %s (create with 'ssequote config init')", defaultPath)
}

// SourceURL renders the download URL for an episode.
func (c *Config) SourceURL(episode int) string {
	return fmt.Sprintf(c.Source.URLTemplate, episode)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
