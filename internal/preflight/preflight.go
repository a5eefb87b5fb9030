package preflight

import (
	"context"

	"ssequote/internal/config"
	"ssequote/internal/storage"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every readiness check for cfg. store may be nil when the
// storage backend could not be constructed; the storage checks are then
// reported as failed.
func RunAll(ctx context.Context, cfg *config.Config, store storage.Store) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckBinary("FFmpeg", cfg.Audio.FFmpegBinary),
		CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir),
	}
	if cfg.Storage.Backend == config.StorageBackendFilesystem {
		results = append(results, CheckDirectoryAccess("Storage root", cfg.Storage.Root))
	}
	results = append(results,
		CheckBucket(ctx, store, "Audio bucket", cfg.Storage.AudioBucket),
		CheckBucket(ctx, store, "Transcript bucket", cfg.Storage.TranscriptBucket),
		CheckSpeechAPI(ctx, cfg.Speech.BaseURL, cfg.Speech.APIKey),
	)
	return results
}

// Failed counts results that did not pass.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.Passed {
			n++
		}
	}
	return n
}
