package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	// ErrNotFound reports a missing bucket or object.
	ErrNotFound = errors.New("not found")
	// ErrBucketExists reports a create that lost to an existing bucket.
	ErrBucketExists = errors.New("bucket already exists")
)

// Object describes a single upload.
type Object struct {
	Bucket      string
	Key         string
	Body        io.Reader
	Size        int64
	ContentType string
	Public      bool
}

// Store is the object storage surface the pipeline depends on.
type Store interface {
	// HeadObject returns nil when the object exists and an error wrapping
	// ErrNotFound when it does not.
	HeadObject(ctx context.Context, bucket, key string) error
	// HeadBucket returns nil when the bucket exists and an error wrapping
	// ErrNotFound when it does not.
	HeadBucket(ctx context.Context, bucket string) error
	// CreateBucket creates bucket. An error wrapping ErrBucketExists means
	// another caller created it first.
	CreateBucket(ctx context.Context, bucket string) error
	PutObject(ctx context.Context, obj Object) error
	// PublicURL returns the address a third party can fetch a public object from.
	PublicURL(bucket, key string) string
}

// PutFile uploads the file at path.
func PutFile(ctx context.Context, store Store, path string, obj Object) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	obj.Body = file
	obj.Size = info.Size()
	return store.PutObject(ctx, obj)
}
