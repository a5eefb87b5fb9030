// Package download fetches episode audio over HTTP into local staging files.
package download

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"ssequote/internal/logging"
	"ssequote/internal/services"
)

const (
	defaultTimeout = 10 * time.Minute
	partSuffix     = ".part"
)

// Fetcher downloads source audio.
type Fetcher struct {
	http   *http.Client
	logger *slog.Logger
}

// New creates a Fetcher. A nil client gets one with the given timeout.
func New(client *http.Client, timeout time.Duration, logger *slog.Logger) *Fetcher {
	if client == nil {
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Fetcher{http: client, logger: logging.NewComponentLogger(logger, "download")}
}

// Fetch streams url into dest and returns the number of bytes written.
//
// The body is written to dest+".part", synced, and closed before being renamed
// into place, so a nil error means the file on disk is complete. The end of
// the response body alone is not treated as completion.
func (f *Fetcher) Fetch(ctx context.Context, url, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, services.Wrap(services.ErrDownload, "download", "build request", url, err)
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return 0, services.Wrap(services.ErrDownload, "download", "request", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		msg := fmt.Sprintf("%s returned %s", url, resp.Status)
		if detail := strings.TrimSpace(string(body)); detail != "" {
			msg += ": " + detail
		}
		return 0, services.Wrap(services.ErrDownload, "download", "status", msg, nil)
	}

	part := dest + partSuffix
	written, err := writeFile(part, resp.Body)
	if err != nil {
		_ = os.Remove(part)
		return 0, services.Wrap(services.ErrDownload, "download", "write", part, err)
	}
	if resp.ContentLength > 0 && written != resp.ContentLength {
		_ = os.Remove(part)
		return 0, services.Wrap(services.ErrDownload, "download", "verify",
			fmt.Sprintf("truncated body: got %d of %d bytes", written, resp.ContentLength), nil)
	}
	if err := checkAudio(part); err != nil {
		_ = os.Remove(part)
		return 0, services.Wrap(services.ErrDownload, "download", "verify", url, err)
	}
	if err := os.Rename(part, dest); err != nil {
		_ = os.Remove(part)
		return 0, services.Wrap(services.ErrDownload, "download", "rename", dest, err)
	}

	logging.WithContext(ctx, f.logger).Debug("download finished",
		logging.URL(url),
		logging.String("path", dest),
		logging.Int64("bytes", written),
	)
	return written, nil
}

// checkAudio rejects bodies that sniff as text, such as an HTML error page
// served with a 200 status.
func checkAudio(path string) error {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return fmt.Errorf("detect content type: %w", err)
	}
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return fmt.Errorf("body is %s, not audio", mtype.String())
		}
	}
	return nil
}

// writeFile copies r into path and returns only after the file has been
// flushed and closed without error.
func writeFile(path string, r io.Reader) (int64, error) {
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}
	written, copyErr := io.Copy(out, r)
	if copyErr != nil {
		_ = out.Close()
		return written, copyErr
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return written, fmt.Errorf("sync: %w", err)
	}
	if err := out.Close(); err != nil {
		return written, fmt.Errorf("close: %w", err)
	}
	return written, nil
}
