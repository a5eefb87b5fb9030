package staging

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"ssequote/internal/logging"
)

// CleanStaleResult lists what CleanStale removed and what it could not.
type CleanStaleResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a directory path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// DirInfo describes one episode workspace found under the staging root.
type DirInfo struct {
	Name string
	Path string
	// Episode is parsed from the directory name; -1 when it cannot be.
	Episode int
	ModTime time.Time
	Size    int64
}

// CleanStale removes episode workspaces older than maxAge. Pipelines remove
// their own workspace, so these are left only by killed processes. Entries
// without the workspace prefix are never touched. maxAge <= 0 disables it.
func CleanStale(ctx context.Context, stagingDir string, maxAge time.Duration, logger *slog.Logger) CleanStaleResult {
	var result CleanStaleResult
	if maxAge <= 0 {
		return result
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	dirs, err := scan(stagingDir, false)
	if err != nil {
		result.Errors = append(result.Errors, CleanupError{Path: stagingDir, Error: err})
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, dir := range dirs {
		if ctx.Err() != nil {
			break
		}
		if !dir.ModTime.Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(dir.Path); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dir.Path, Error: err})
			logger.Warn("failed to remove stale staging directory",
				logging.String("path", dir.Path),
				logging.Error(err),
				logging.EventType("staging_cleanup_failed"),
			)
			continue
		}
		result.Removed = append(result.Removed, dir.Path)
		logger.Info("removed stale staging directory",
			logging.String("path", dir.Path),
			logging.Int("episode", dir.Episode),
			logging.Duration("age", time.Since(dir.ModTime)),
			logging.EventType("staging_cleanup"),
		)
	}
	return result
}

// ListDirectories returns the episode workspaces in stagingDir with their
// on-disk size. A missing staging directory yields no entries.
func ListDirectories(stagingDir string) ([]DirInfo, error) {
	return scan(stagingDir, true)
}

func scan(stagingDir string, withSize bool) ([]DirInfo, error) {
	stagingDir = strings.TrimSpace(stagingDir)
	if stagingDir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(stagingDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var dirs []DirInfo
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), DirPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		dir := DirInfo{
			Name:    entry.Name(),
			Path:    filepath.Join(stagingDir, entry.Name()),
			Episode: episodeFromName(entry.Name()),
			ModTime: info.ModTime(),
		}
		if withSize {
			dir.Size = dirSize(dir.Path)
		}
		dirs = append(dirs, dir)
	}
	return dirs, nil
}

// episodeFromName parses n out of "episode-{n}-{suffix}".
func episodeFromName(name string) int {
	rest := strings.TrimPrefix(name, DirPrefix)
	number, _, _ := strings.Cut(rest, "-")
	n, err := strconv.Atoi(number)
	if err != nil || n < 0 {
		return -1
	}
	return n
}

func dirSize(path string) int64 {
	var size int64
	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			size += info.Size()
		}
		return nil
	})
	return size
}
