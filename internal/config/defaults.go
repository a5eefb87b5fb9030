package config

const (
	defaultConfigPath             = "~/.config/ssequote/config.toml"
	defaultStagingDir             = "~/.local/share/ssequote/staging"
	defaultLogDir                 = "~/.local/share/ssequote/logs"
	defaultHistoryPath            = "~/.local/share/ssequote/history.db"
	defaultStorageRoot            = "~/.local/share/ssequote/buckets"
	defaultStagingMaxAgeHours     = 24
	defaultSpeechBaseURL          = "https://api.rev.ai/speechtotext/v1"
	defaultPollIntervalSeconds    = 5
	defaultMaxWaitSeconds         = 3600
	defaultRequestTimeoutSeconds  = 60
	defaultSourceURLTemplate      = "https://download.softskills.audio/sse-%d.mp3"
	defaultDownloadTimeoutSeconds = 600
	defaultAudioBucket            = "sse-mp3"
	defaultTranscriptBucket       = "sse-txt"
	defaultRegion                 = "eu-west-1"
	defaultFFmpegBinary           = "ffmpeg"
	defaultTrimDurationSeconds    = 30
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultLogRetentionDays       = 30
	defaultNtfyTimeoutSeconds     = 10
	defaultBatchConcurrency       = 8
)

// Storage backends.
const (
	StorageBackendS3         = "s3"
	StorageBackendFilesystem = "filesystem"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir:         defaultStagingDir,
			LogDir:             defaultLogDir,
			StagingMaxAgeHours: defaultStagingMaxAgeHours,
		},
		Speech: Speech{
			BaseURL:               defaultSpeechBaseURL,
			PollIntervalSeconds:   defaultPollIntervalSeconds,
			MaxWaitSeconds:        defaultMaxWaitSeconds,
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
		},
		Source: Source{
			URLTemplate:            defaultSourceURLTemplate,
			DownloadTimeoutSeconds: defaultDownloadTimeoutSeconds,
		},
		Storage: Storage{
			Backend:          StorageBackendS3,
			AudioBucket:      defaultAudioBucket,
			TranscriptBucket: defaultTranscriptBucket,
			Region:           defaultRegion,
			Root:             defaultStorageRoot,
		},
		Audio: Audio{
			FFmpegBinary:        defaultFFmpegBinary,
			TrimStartSeconds:    0,
			TrimDurationSeconds: defaultTrimDurationSeconds,
		},
		Batch: Batch{
			Concurrency: defaultBatchConcurrency,
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNtfyTimeoutSeconds,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
