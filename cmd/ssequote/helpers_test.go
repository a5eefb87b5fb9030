package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

const testTranscript = "Speaker 0    00:00:03    Welcome back. It takes more than\npractice to be a great engineer."

type cliTestEnv struct {
	baseDir     string
	configPath  string
	storageRoot string
	stagingDir  string
	server      *httptest.Server

	downloads  atomic.Int32
	submitted  atomic.Int32
	missingEps map[string]bool

	notifyMu sync.Mutex
	notified []string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	home := filepath.Join(base, "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", home)
	t.Setenv("REV_API_KEY", "test-key")
	t.Setenv("SSEQUOTE_STORAGE_BACKEND", "")
	t.Setenv("SSEQUOTE_NTFY_TOPIC", "")

	env := &cliTestEnv{
		baseDir:     base,
		configPath:  filepath.Join(base, "config.toml"),
		storageRoot: filepath.Join(base, "buckets"),
		stagingDir:  filepath.Join(base, "staging"),
		missingEps:  map[string]bool{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /audio/{name}", func(w http.ResponseWriter, r *http.Request) {
		env.downloads.Add(1)
		if env.missingEps[r.PathValue("name")] {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("ID3 full episode audio"))
	})
	mux.HandleFunc("POST /speechtotext/v1/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		id := env.submitted.Add(1)
		fmt.Fprintf(w, `{"id":"job-%d","status":"transcribed"}`, id)
	})
	mux.HandleFunc("GET /speechtotext/v1/jobs/{id}/transcript", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(testTranscript))
	})
	mux.HandleFunc("GET /speechtotext/v1/account", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"email":"ops@example.com","balance_seconds":600}`))
	})
	mux.HandleFunc("POST /ntfy/ssequote", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		env.notifyMu.Lock()
		env.notified = append(env.notified, r.Header.Get("Title")+"\n"+string(body))
		env.notifyMu.Unlock()
	})
	env.server = httptest.NewServer(mux)
	t.Cleanup(env.server.Close)

	ffmpeg := filepath.Join(base, "bin", "ffmpeg")
	if err := os.MkdirAll(filepath.Dir(ffmpeg), 0o755); err != nil {
		t.Fatalf("mkdir bin: %v", err)
	}
	stub := "#!/bin/sh\nfor arg in \"$@\"; do dest=\"$arg\"; done\nprintf 'clip' > \"$dest\"\n"
	if err := os.WriteFile(ffmpeg, []byte(stub), 0o755); err != nil {
		t.Fatalf("write ffmpeg stub: %v", err)
	}

	env.writeConfig(t, ffmpeg, "")
	return env
}

func (e *cliTestEnv) writeConfig(t *testing.T, ffmpeg, extraBatch string) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
staging_dir = %q
log_dir = %q

[speech]
base_url = %q
poll_interval_seconds = 1
max_wait_seconds = 30

[source]
url_template = %q

[storage]
backend = "filesystem"
root = %q
public_base_url = "http://media.test"

[audio]
ffmpeg_binary = %q

[batch]
concurrency = 2
%s

[history]
enabled = true
path = %q

[notifications]
ntfy_topic = %q
`,
		e.stagingDir,
		filepath.Join(e.baseDir, "logs"),
		e.server.URL+"/speechtotext/v1",
		e.server.URL+"/audio/sse-%d.mp3",
		e.storageRoot,
		ffmpeg,
		extraBatch,
		filepath.Join(e.baseDir, "history.db"),
		e.server.URL+"/ntfy/ssequote",
	)
	if err := os.WriteFile(e.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func (e *cliTestEnv) notifications() []string {
	e.notifyMu.Lock()
	defer e.notifyMu.Unlock()
	return append([]string(nil), e.notified...)
}

func (e *cliTestEnv) objectPath(bucket, key string) string {
	return filepath.Join(e.storageRoot, bucket, key)
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q\n---\n%s", needle, haystack)
	}
}
