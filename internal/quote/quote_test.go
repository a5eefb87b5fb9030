package quote

import (
	"errors"
	"testing"

	"ssequote/internal/services"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name       string
		transcript string
		want       string
	}{
		{
			name:       "simple",
			transcript: "So it takes more than coding skills to be a great engineer, right?",
			want:       "It takes more than coding skills to be a great software engineer",
		},
		{
			name:       "capitalized",
			transcript: "Takes more than patience to be a great developer.",
			want:       "It takes more than patience to be a great software engineer",
		},
		{
			name:       "spans lines",
			transcript: "Speaker 0  00:01:02  It takes more than\nSpeaker 0  00:01:05  empathy and  grit\nto be a great engineer.",
			want:       "It takes more than Speaker 0 00:01:05 empathy and grit to be a great software engineer",
		},
		{
			name:       "first match wins",
			transcript: "it takes more than A to be a great x. it takes more than B to be a great y.",
			want:       "It takes more than A to be a great software engineer",
		},
		{
			name:       "decomposed unicode",
			transcript: "it takes more than cafe\u0301 chats to be a great engineer",
			want:       "It takes more than caf\u00e9 chats to be a great software engineer",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.transcript)
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Extract = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractFailures(t *testing.T) {
	tests := map[string]string{
		"no anchors":    "This episode is about testing.",
		"opening only":  "It takes more than luck.",
		"closing first": "to be a great engineer it takes more than luck",
		"blank phrase":  "it takes more than   to be a great engineer",
		"empty":         "",
	}
	for name, transcript := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Extract(transcript)
			var extractionErr *ExtractionError
			if !errors.As(err, &extractionErr) {
				t.Fatalf("expected ExtractionError, got %v", err)
			}
			if !errors.Is(err, services.ErrExtraction) {
				t.Fatalf("expected services.ErrExtraction match, got %v", err)
			}
		})
	}
}
