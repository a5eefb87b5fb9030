package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"ssequote/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrTrim, "trim", "ffmpeg", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrTrim) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"trim", "ffmpeg", "failed", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrStorage, "", "", "", nil)
	if got := err.Error(); got != "storage error: service failure" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestKindClassification(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{services.Wrap(services.ErrDownload, "download", "get", "", nil), "download"},
		{services.Wrap(services.ErrStorage, "upload", "put", "", nil), "storage"},
		{fmt.Errorf("outer: %w", services.Wrap(services.ErrExtraction, "quote", "", "", nil)), "extraction"},
		{fmt.Errorf("%w: %w", services.ErrTranscription, services.ErrTimeout), "timeout"},
		{errors.New("plain"), "unknown"},
	}
	for _, tc := range cases {
		if got := services.Kind(tc.err); got != tc.want {
			t.Fatalf("Kind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
