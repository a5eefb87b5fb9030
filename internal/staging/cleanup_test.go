package staging

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ssequote/internal/logging"
)

func TestCleanStaleInvalidPaths(t *testing.T) {
	for _, dir := range []string{"", "   ", "/nonexistent/path/12345"} {
		result := CleanStale(context.Background(), dir, time.Hour, logging.NewNop())
		if len(result.Removed) != 0 || len(result.Errors) != 0 {
			t.Errorf("expected empty result for path %q", dir)
		}
	}
}

func TestCleanStaleRemovesOldWorkspacesOnly(t *testing.T) {
	tmpDir := t.TempDir()
	oldTime := time.Now().Add(-2 * time.Hour)

	oldDir := filepath.Join(tmpDir, "episode-4-old")
	recentDir := filepath.Join(tmpDir, "episode-5-recent")
	foreignDir := filepath.Join(tmpDir, "keep-me")
	for _, dir := range []string{oldDir, recentDir, foreignDir} {
		if err := os.Mkdir(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	for _, dir := range []string{oldDir, foreignDir} {
		if err := os.Chtimes(dir, oldTime, oldTime); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}

	result := CleanStale(context.Background(), tmpDir, time.Hour, nil)

	if len(result.Removed) != 1 || result.Removed[0] != oldDir {
		t.Fatalf("expected only %s removed, got %v", oldDir, result.Removed)
	}
	if _, err := os.Stat(recentDir); err != nil {
		t.Error("recent workspace should still exist")
	}
	if _, err := os.Stat(foreignDir); err != nil {
		t.Error("non-workspace directory should still exist")
	}
}

func TestCleanStaleDisabledWithZeroAge(t *testing.T) {
	tmpDir := t.TempDir()
	dir := filepath.Join(tmpDir, "episode-1-x")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	past := time.Now().Add(-48 * time.Hour)
	_ = os.Chtimes(dir, past, past)

	if result := CleanStale(context.Background(), tmpDir, 0, nil); len(result.Removed) != 0 {
		t.Fatalf("expected nothing removed, got %v", result.Removed)
	}
}

func TestWorkspaceLifecycle(t *testing.T) {
	root := filepath.Join(t.TempDir(), "staging")

	first, err := NewWorkspace(root, 42)
	if err != nil {
		t.Fatalf("NewWorkspace: %v", err)
	}
	second, err := NewWorkspace(root, 42)
	if err != nil {
		t.Fatalf("NewWorkspace: %v", err)
	}
	if first.Dir == second.Dir {
		t.Fatal("workspaces for the same episode must not collide")
	}
	if !strings.HasPrefix(filepath.Base(first.Dir), "episode-42-") {
		t.Fatalf("unexpected workspace name %s", first.Dir)
	}

	if err := os.WriteFile(first.Path("audio.mp3"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	dirs, err := ListDirectories(root)
	if err != nil {
		t.Fatalf("ListDirectories: %v", err)
	}
	if len(dirs) != 2 {
		t.Fatalf("expected 2 workspaces, got %d", len(dirs))
	}
	var total int64
	for _, d := range dirs {
		if d.Episode != 42 {
			t.Fatalf("expected episode 42 parsed from %s, got %d", d.Name, d.Episode)
		}
		total += d.Size
	}
	if total != 1 {
		t.Fatalf("expected 1 staged byte, got %d", total)
	}

	if err := first.Remove(); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(first.Dir); !os.IsNotExist(err) {
		t.Fatal("workspace should be gone after Remove")
	}
}

func TestEpisodeFromName(t *testing.T) {
	cases := map[string]int{
		"episode-42-0f1e":   42,
		"episode-0-abc":     0,
		"episode-crashed":   -1,
		"episode--1-x":      -1,
		"episode-1-crashed": 1,
	}
	for name, want := range cases {
		if got := episodeFromName(name); got != want {
			t.Errorf("episodeFromName(%q) = %d, want %d", name, got, want)
		}
	}
}
