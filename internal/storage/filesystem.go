package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

const (
	publicFileMode  fs.FileMode = 0o644
	privateFileMode fs.FileMode = 0o600
	lockRetryDelay              = 50 * time.Millisecond
)

// FilesystemStore keeps buckets as directories under a root directory.
type FilesystemStore struct {
	root          string
	publicBaseURL string
}

// NewFilesystem creates a filesystem backend rooted at root.
func NewFilesystem(root, publicBaseURL string) (*FilesystemStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("filesystem storage root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &FilesystemStore{root: root, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

// Root returns the backing directory.
func (s *FilesystemStore) Root() string {
	return s.root
}

// HeadObject reports whether the object file exists.
func (s *FilesystemStore) HeadObject(ctx context.Context, bucket, key string) error {
	path, err := s.objectPath(bucket, key)
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("head object %s/%s: %w", bucket, key, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("head object %s/%s: %w", bucket, key, err)
	}
	if info.IsDir() {
		return fmt.Errorf("head object %s/%s: is a directory", bucket, key)
	}
	return nil
}

// HeadBucket reports whether the bucket directory exists.
func (s *FilesystemStore) HeadBucket(ctx context.Context, bucket string) error {
	dir, err := s.bucketPath(bucket)
	if err != nil {
		return err
	}
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("head bucket %s: %w", bucket, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("head bucket %s: %w", bucket, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("head bucket %s: not a directory", bucket)
	}
	return nil
}

// CreateBucket creates the bucket directory while holding a per-bucket file
// lock, so concurrent processes observe exactly one successful create.
func (s *FilesystemStore) CreateBucket(ctx context.Context, bucket string) error {
	dir, err := s.bucketPath(bucket)
	if err != nil {
		return err
	}
	lock := flock.New(filepath.Join(s.root, "."+bucket+".lock"))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("lock bucket %s: %w", bucket, err)
	}
	if !locked {
		return fmt.Errorf("lock bucket %s: not acquired", bucket)
	}
	defer func() { _ = lock.Unlock() }()

	if err := os.Mkdir(dir, 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("create bucket %s: %w", bucket, ErrBucketExists)
		}
		return fmt.Errorf("create bucket %s: %w", bucket, err)
	}
	return nil
}

// PutObject writes the object atomically: a temp file in the bucket is
// synced, closed and renamed into place. Public objects are world readable.
func (s *FilesystemStore) PutObject(ctx context.Context, obj Object) error {
	path, err := s.objectPath(obj.Bucket, obj.Key)
	if err != nil {
		return err
	}
	if err := s.HeadBucket(ctx, obj.Bucket); err != nil {
		return fmt.Errorf("put object %s/%s: %w", obj.Bucket, obj.Key, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("put object %s/%s: %w", obj.Bucket, obj.Key, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return fmt.Errorf("put object %s/%s: %w", obj.Bucket, obj.Key, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	mode := privateFileMode
	if obj.Public {
		mode = publicFileMode
	}
	if err := writeObject(ctx, tmp, obj.Body, mode); err != nil {
		return fmt.Errorf("put object %s/%s: %w", obj.Bucket, obj.Key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("put object %s/%s: %w", obj.Bucket, obj.Key, err)
	}
	committed = true
	return nil
}

func writeObject(ctx context.Context, file *os.File, body io.Reader, mode fs.FileMode) error {
	if err := ctx.Err(); err != nil {
		_ = file.Close()
		return err
	}
	if body != nil {
		if _, err := io.Copy(file, body); err != nil {
			_ = file.Close()
			return err
		}
	}
	if err := file.Chmod(mode); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Sync(); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// PublicURL returns a URL under the configured base, or a file URL.
func (s *FilesystemStore) PublicURL(bucket, key string) string {
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + bucket + "/" + escapeKey(key)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(filepath.Join(s.root, bucket, filepath.FromSlash(key)))}
	return u.String()
}

func (s *FilesystemStore) bucketPath(bucket string) (string, error) {
	if bucket == "" || strings.ContainsAny(bucket, `/\`) || strings.HasPrefix(bucket, ".") {
		return "", fmt.Errorf("invalid bucket name %q", bucket)
	}
	return filepath.Join(s.root, bucket), nil
}

func (s *FilesystemStore) objectPath(bucket, key string) (string, error) {
	dir, err := s.bucketPath(bucket)
	if err != nil {
		return "", err
	}
	rel := filepath.FromSlash(key)
	if key == "" || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(dir, rel), nil
}
