package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DirPrefix names every per-episode staging directory.
const DirPrefix = "episode-"

// Workspace is a private scratch directory owned by one pipeline run.
type Workspace struct {
	Dir string
}

// NewWorkspace creates {root}/episode-{n}-{uuid}. Concurrent runs of the
// same episode never share a directory.
func NewWorkspace(root string, episode int) (*Workspace, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("staging root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create staging root: %w", err)
	}
	dir := filepath.Join(root, fmt.Sprintf("%s%d-%s", DirPrefix, episode, uuid.NewString()))
	if err := os.Mkdir(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create staging directory: %w", err)
	}
	return &Workspace{Dir: dir}, nil
}

// Path joins name onto the workspace directory.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.Dir, name)
}

// Remove deletes the workspace and everything in it.
func (w *Workspace) Remove() error {
	if w == nil || w.Dir == "" {
		return nil
	}
	return os.RemoveAll(w.Dir)
}
