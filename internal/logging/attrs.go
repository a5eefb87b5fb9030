package logging

import (
	"log/slog"
	"time"
)

type Attr = slog.Attr

func Any(key string, value any) Attr { return slog.Any(key, value) }

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func Int64(key string, value int64) Attr { return slog.Int64(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// Object identifies a stored artifact; console output renders it as
// object.bucket=... object.key=...
func Object(bucket, key string) Attr {
	return slog.Group("object", slog.String("bucket", bucket), slog.String("key", key))
}

// Bucket names a storage bucket.
func Bucket(name string) Attr { return slog.String("bucket", name) }

// URL records a remote location such as a download source or public clip.
func URL(u string) Attr { return slog.String("url", u) }

// JobID records a remote transcription job.
func JobID(id string) Attr { return slog.String(FieldJobID, id) }

// EventType classifies a log line for filtering.
func EventType(event string) Attr { return slog.String(FieldEventType, event) }

// Args converts attributes into the variadic form slog methods accept.
func Args(attrs ...Attr) []any {
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	return args
}

// NewComponentLogger tags logger with a component; nil gets a no-op base.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}
