package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ssequote/internal/config"
)

// LogFilePattern matches the daily log files written under paths.log_dir.
const LogFilePattern = "ssequote-*.log"

// LogFilePath returns the daily log file for the given day.
func LogFilePath(dir string, day time.Time) string {
	return filepath.Join(dir, "ssequote-"+day.Format("2006-01-02")+".log")
}

// Options describes logger construction parameters. Writer, when set,
// replaces OutputPaths.
type Options struct {
	Level       string
	Format      string
	OutputPaths []string
	Writer      io.Writer
	Development bool
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	handler, err := newHandler(opts)
	if err != nil {
		return nil, err
	}
	return slog.New(handler), nil
}

func newHandler(opts Options) (slog.Handler, error) {
	w := opts.Writer
	if w == nil {
		var err error
		w, err = openWriters(defaultSlice(opts.OutputPaths, []string{"stderr"}))
		if err != nil {
			return nil, err
		}
	}
	return newFormatHandler(opts.Format, w, parseLevel(opts.Level), opts.Development)
}

// NewForCLI builds the logger used by command invocations. The console
// handler writes to console and only surfaces errors unless verbose is set;
// when paths.log_dir is configured a JSON file handler receives records at the
// configured level regardless of verbosity.
func NewForCLI(cfg *config.Config, verbose bool, console io.Writer) (*slog.Logger, error) {
	if console == nil {
		console = os.Stderr
	}
	consoleOpts := Options{Level: "error", Writer: console}
	if verbose {
		consoleOpts.Level = "debug"
	}
	if cfg != nil {
		consoleOpts.Format = cfg.Logging.Format
	}
	consoleHandler, err := newHandler(consoleOpts)
	if err != nil {
		return nil, err
	}

	var fileHandler slog.Handler
	if cfg != nil && strings.TrimSpace(cfg.Paths.LogDir) != "" {
		fileHandler, err = newHandler(Options{
			Level:       cfg.Logging.Level,
			Format:      "json",
			OutputPaths: []string{LogFilePath(cfg.Paths.LogDir, time.Now())},
		})
		if err != nil {
			return nil, err
		}
	}

	return slog.New(newFanoutHandler(consoleHandler, fileHandler)), nil
}

func newFormatHandler(format string, w io.Writer, level slog.Level, addSource bool) (slog.Handler, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return newJSONHandler(w, levelVar(level), addSource), nil
	case "console", "":
		return newConsoleHandler(w, levelVar(level), addSource), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", format)
	}
}

func levelVar(level slog.Level) *slog.LevelVar {
	lv := new(slog.LevelVar)
	lv.Set(level)
	return lv
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func defaultSlice(value []string, fallback []string) []string {
	if len(value) == 0 {
		return append([]string(nil), fallback...)
	}
	return append([]string(nil), value...)
}

func openWriters(paths []string) (io.Writer, error) {
	seen := map[string]struct{}{}
	var writers []io.Writer

	for _, path := range paths {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}

		switch trimmed {
		case "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
		default:
			if dir := filepath.Dir(trimmed); dir != "." && dir != "" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return nil, fmt.Errorf("ensure log directory: %w", err)
				}
			}
			file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
			if err != nil {
				return nil, fmt.Errorf("open log file %s: %w", trimmed, err)
			}
			writers = append(writers, file)
		}
	}

	switch len(writers) {
	case 0:
		return os.Stderr, nil
	case 1:
		return writers[0], nil
	default:
		return io.MultiWriter(writers...), nil
	}
}

func newJSONHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	opts := slog.HandlerOptions{
		Level:     lvl,
		AddSource: addSource,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.TimeKey:
				attr.Key = "ts"
				if attr.Value.Kind() == slog.KindTime {
					attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339))
				}
			case slog.LevelKey:
				attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
			case slog.SourceKey:
				if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
					attr.Value = slog.StringValue(fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
				}
			}
			return attr
		},
	}
	return slog.NewJSONHandler(w, &opts)
}
