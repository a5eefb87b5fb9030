package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ssequote/internal/logging"
)

const wantQuote = "It takes more than practice to be a great software engineer"

func TestRunCommandStoresBothArtifacts(t *testing.T) {
	env := setupCLITestEnv(t)

	out, stderr, err := runCLI(t, env, "run", "5")
	if err != nil {
		t.Fatalf("run: %v (stderr: %s)", err, stderr)
	}
	requireContains(t, out, "Episode 5")
	requireContains(t, out, wantQuote)

	data, err := os.ReadFile(env.objectPath("sse-txt", "episode-5.txt"))
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	if string(data) != wantQuote {
		t.Fatalf("stored quote %q", data)
	}
	if _, err := os.Stat(env.objectPath("sse-mp3", "sse-5.mp3")); err != nil {
		t.Fatalf("audio missing: %v", err)
	}
	if stderr != "" {
		t.Fatalf("non-verbose run should be quiet, got %q", stderr)
	}
}

func TestRunCommandSecondRunSkips(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, env, "run", "5"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	out, _, err := runCLI(t, env, "run", "5")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	requireContains(t, out, "Audio:      already stored")
	requireContains(t, out, "Transcript: already stored")
	if env.downloads.Load() != 1 || env.submitted.Load() != 1 {
		t.Fatalf("expected one download and one job, got %d and %d", env.downloads.Load(), env.submitted.Load())
	}
}

func TestVerboseStreamsProgress(t *testing.T) {
	env := setupCLITestEnv(t)

	_, stderr, err := runCLI(t, env, "--verbose", "run", "3")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, stderr, "episode finished")
}

func TestCutWithoutSpeechKey(t *testing.T) {
	env := setupCLITestEnv(t)
	t.Setenv("REV_API_KEY", "")

	out, _, err := runCLI(t, env, "cut", "7")
	if err != nil {
		t.Fatalf("cut: %v", err)
	}
	requireContains(t, out, "http://media.test/sse-mp3/sse-7.mp3")
	if env.submitted.Load() != 0 {
		t.Fatal("cut must not submit a transcription job")
	}
}

func TestTranscribeWithoutAudioFails(t *testing.T) {
	env := setupCLITestEnv(t)

	_, stderr, err := runCLI(t, env, "transcribe", "9")
	if !errors.Is(err, errReported) {
		t.Fatalf("expected reported failure, got %v", err)
	}
	requireContains(t, stderr, "Failed transcribe: episode 9")
	requireContains(t, stderr, "storage error")

	sent := env.notifications()
	if len(sent) != 1 {
		t.Fatalf("expected one failure notification, got %d", len(sent))
	}
	requireContains(t, sent[0], "transcribe episode 9 failed")
}

func TestEpisodeDefaultsToZero(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "cut")
	if err != nil {
		t.Fatalf("cut: %v", err)
	}
	requireContains(t, out, "Episode 0")
}

func TestEpisodeRejectsInvalidArgument(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, env, "run", "abc"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestAllCommandSummarizesFailures(t *testing.T) {
	env := setupCLITestEnv(t)
	env.missingEps["sse-2.mp3"] = true

	out, stderr, err := runCLI(t, env, "all", "1", "3")
	if !errors.Is(err, errReported) {
		t.Fatalf("expected reported failure, got %v", err)
	}
	if strings.Contains(stderr, "episode failed") {
		t.Fatalf("quiet batch should list failures only in the summary, stderr:\n%s", stderr)
	}
	logFile, err := os.ReadFile(logging.LogFilePath(filepath.Join(env.baseDir, "logs"), time.Now()))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	requireContains(t, string(logFile), `"msg":"episode failed"`)
	requireContains(t, out, "Succeeded:")
	requireContains(t, out, "[OK] 2")
	requireContains(t, out, "[ERROR] 1")
	requireContains(t, out, "download")

	for _, n := range []string{"1", "3"} {
		if _, err := os.Stat(env.objectPath("sse-txt", "episode-"+n+".txt")); err != nil {
			t.Fatalf("episode %s transcript missing: %v", n, err)
		}
	}

	sent := env.notifications()
	if len(sent) != 1 {
		t.Fatalf("expected one batch notification, got %d", len(sent))
	}
	requireContains(t, sent[0], "with errors")
	requireContains(t, sent[0], "Failed: 2")

	runs, _, err := runCLI(t, env, "runs")
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	requireContains(t, runs, "1-3")
}

func TestAllCommandEmptyRange(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "all", "5", "4")
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	requireContains(t, out, "none in range")
	if env.downloads.Load() != 0 || env.submitted.Load() != 0 {
		t.Fatal("empty range must not touch the network")
	}
	if len(env.notifications()) != 0 {
		t.Fatal("empty range must not notify")
	}
}

func TestAllCommandUsesConfiguredRange(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeConfig(t, filepath.Join(env.baseDir, "bin", "ffmpeg"), "default_from = 10\ndefault_to = 11")

	out, _, err := runCLI(t, env, "all")
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	requireContains(t, out, "Batch 10-11")
	if env.downloads.Load() != 2 {
		t.Fatalf("expected 2 downloads, got %d", env.downloads.Load())
	}
}

func TestAllCommandRequiresRange(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, env, "all"); err == nil {
		t.Fatal("expected error without a range")
	}
	if _, _, err := runCLI(t, env, "all", "1"); err == nil {
		t.Fatal("expected error with a single bound")
	}
}

func TestAllCommandRejectsOversizedRange(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, env, "all", "0", "9223372036854775807")
	if err == nil {
		t.Fatal("expected error for a range past the batch limit")
	}
	requireContains(t, err.Error(), "spans more than")
	if env.downloads.Load() != 0 {
		t.Fatal("rejected range must not download anything")
	}
}

func TestAllCommandRemovesStaleStaging(t *testing.T) {
	env := setupCLITestEnv(t)
	stale := filepath.Join(env.stagingDir, "episode-1-crashed")
	if err := os.MkdirAll(stale, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	old := mustOldTime()
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	if _, _, err := runCLI(t, env, "all", "5", "4"); err != nil {
		t.Fatalf("all: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatal("stale staging directory should be removed before a batch")
	}
}

func TestCheckCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "check")
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	requireContains(t, out, "Speech API:")
	requireContains(t, out, "will be created")
}

func TestTestNotifyCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "test-notify")
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "Test notification sent")
	sent := env.notifications()
	if len(sent) != 1 {
		t.Fatalf("expected one notification, got %d", len(sent))
	}
	requireContains(t, sent[0], "ssequote - Test")
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, env, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
	if _, _, err := runCLI(t, env, "config", "init", "--path", target); err == nil {
		t.Fatal("expected refusal to overwrite")
	}
}
