package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"ssequote/internal/services"
)

// FFmpegCommand is the default ffmpeg executable name.
const FFmpegCommand = "ffmpeg"

// CommandRunner executes an external command and returns its combined output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Window is the slice of audio kept by Trim.
type Window struct {
	StartSeconds    int
	DurationSeconds int
}

// Trimmer cuts staged audio to a fixed window with ffmpeg.
type Trimmer struct {
	ffmpegBinary string
	window       Window
	run          CommandRunner
}

// NewTrimmer creates a Trimmer for the given window.
func NewTrimmer(ffmpegBinary string, window Window) *Trimmer {
	if strings.TrimSpace(ffmpegBinary) == "" {
		ffmpegBinary = FFmpegCommand
	}
	return &Trimmer{ffmpegBinary: ffmpegBinary, window: window, run: execRunner}
}

// WithCommandRunner sets a custom command runner (for testing).
func (t *Trimmer) WithCommandRunner(runner CommandRunner) {
	if runner != nil {
		t.run = runner
	}
}

// Window returns the configured cut window.
func (t *Trimmer) Window() Window {
	return t.window
}

// Trim writes the configured window of source to dest. It returns once ffmpeg
// has exited and dest exists with content.
func (t *Trimmer) Trim(ctx context.Context, source, dest string) error {
	if t.window.DurationSeconds <= 0 {
		return services.Wrap(services.ErrTrim, "trim", "validate", fmt.Sprintf("invalid duration %d", t.window.DurationSeconds), nil)
	}
	if t.window.StartSeconds < 0 {
		return services.Wrap(services.ErrTrim, "trim", "validate", fmt.Sprintf("invalid start %d", t.window.StartSeconds), nil)
	}
	args := BuildTrimArgs(source, t.window, dest)
	if output, err := t.run(ctx, t.ffmpegBinary, args...); err != nil {
		return services.Wrap(services.ErrTrim, "trim", "ffmpeg", strings.TrimSpace(string(output)), err)
	}
	info, err := os.Stat(dest)
	if err != nil {
		return services.Wrap(services.ErrTrim, "trim", "verify output", dest, err)
	}
	if info.Size() == 0 {
		return services.Wrap(services.ErrTrim, "trim", "verify output", dest+" is empty", nil)
	}
	return nil
}

// BuildTrimArgs returns the ffmpeg arguments that copy the window of source
// into dest without re-encoding.
func BuildTrimArgs(source string, window Window, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", strconv.Itoa(window.StartSeconds),
		"-t", strconv.Itoa(window.DurationSeconds),
		"-i", source,
		"-vn",
		"-map_metadata", "-1",
		"-c:a", "copy",
		dest,
	}
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return output, fmt.Errorf("%s exited with %d: %w", name, exitErr.ExitCode(), err)
		}
		return output, fmt.Errorf("%s: %w", name, err)
	}
	return output, nil
}
