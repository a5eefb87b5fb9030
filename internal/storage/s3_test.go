package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

type fakeS3 struct {
	headObjectErr   error
	headBucketErr   error
	createBucketErr error
	putErr          error

	created []*s3.CreateBucketInput
	puts    []*s3.PutObjectInput
}

func (f *fakeS3) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	return &s3.HeadObjectOutput{}, f.headObjectErr
}

func (f *fakeS3) HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.headBucketErr
}

func (f *fakeS3) CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.created = append(f.created, params)
	return &s3.CreateBucketOutput{}, f.createBucketErr
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.puts = append(f.puts, params)
	return &s3.PutObjectOutput{}, f.putErr
}

func TestS3HeadObjectNotFound(t *testing.T) {
	store := newS3Store(&fakeS3{headObjectErr: &types.NotFound{}}, S3Config{Region: "eu-west-1"})
	err := store.HeadObject(context.Background(), "sse-mp3", "sse-1.mp3")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestS3HeadObjectOtherErrorIsNotAMiss(t *testing.T) {
	store := newS3Store(&fakeS3{headObjectErr: &smithy.GenericAPIError{Code: "AccessDenied"}}, S3Config{})
	err := store.HeadObject(context.Background(), "sse-mp3", "sse-1.mp3")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected non-miss error, got %v", err)
	}
}

func TestS3CreateBucketAlreadyOwned(t *testing.T) {
	fake := &fakeS3{createBucketErr: &smithy.GenericAPIError{Code: "BucketAlreadyOwnedByYou"}}
	store := newS3Store(fake, S3Config{Region: "eu-west-1"})
	err := store.CreateBucket(context.Background(), "sse-mp3")
	if !errors.Is(err, ErrBucketExists) {
		t.Fatalf("expected ErrBucketExists, got %v", err)
	}
	if len(fake.created) != 1 {
		t.Fatalf("expected one create call, got %d", len(fake.created))
	}
	cfg := fake.created[0].CreateBucketConfiguration
	if cfg == nil || cfg.LocationConstraint != types.BucketLocationConstraint("eu-west-1") {
		t.Fatalf("expected eu-west-1 location constraint, got %+v", cfg)
	}
}

func TestS3CreateBucketUSEast1OmitsConstraint(t *testing.T) {
	fake := &fakeS3{}
	store := newS3Store(fake, S3Config{Region: "us-east-1"})
	if err := store.CreateBucket(context.Background(), "sse-txt"); err != nil {
		t.Fatalf("CreateBucket: %v", err)
	}
	if fake.created[0].CreateBucketConfiguration != nil {
		t.Fatal("us-east-1 must not send a location constraint")
	}
}

func TestS3PutObjectACL(t *testing.T) {
	fake := &fakeS3{}
	store := newS3Store(fake, S3Config{Region: "eu-west-1"})
	ctx := context.Background()

	if err := store.PutObject(ctx, Object{Bucket: "sse-mp3", Key: "sse-1.mp3", Body: strings.NewReader("a"), Size: 1, ContentType: "audio/mpeg", Public: true}); err != nil {
		t.Fatalf("PutObject public: %v", err)
	}
	if err := store.PutObject(ctx, Object{Bucket: "sse-txt", Key: "episode-1.txt", Body: strings.NewReader("q"), ContentType: "text/plain"}); err != nil {
		t.Fatalf("PutObject private: %v", err)
	}
	if fake.puts[0].ACL != types.ObjectCannedACLPublicRead {
		t.Fatalf("expected public-read, got %q", fake.puts[0].ACL)
	}
	if fake.puts[1].ACL != types.ObjectCannedACLPrivate {
		t.Fatalf("expected private, got %q", fake.puts[1].ACL)
	}
	if got := *fake.puts[0].ContentType; got != "audio/mpeg" {
		t.Fatalf("unexpected content type %q", got)
	}
}

func TestS3PublicURL(t *testing.T) {
	store := newS3Store(&fakeS3{}, S3Config{Region: "eu-west-1"})
	if got, want := store.PublicURL("sse-mp3", "sse-7.mp3"), "https://sse-mp3.s3.eu-west-1.amazonaws.com/sse-7.mp3"; got != want {
		t.Fatalf("PublicURL = %q, want %q", got, want)
	}

	store = newS3Store(&fakeS3{}, S3Config{PublicBaseURL: "https://cdn.example.com/"})
	if got, want := store.PublicURL("sse-mp3", "sse-7.mp3"), "https://cdn.example.com/sse-mp3/sse-7.mp3"; got != want {
		t.Fatalf("PublicURL = %q, want %q", got, want)
	}
}
