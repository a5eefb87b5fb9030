package transcription

import (
	"errors"
	"strings"

	"ssequote/internal/services"
)

// TranscriptionError reports a remote job that could not produce a transcript.
type TranscriptionError struct {
	JobID   string
	Detail  string
	Timeout bool
	Err     error
}

func (e *TranscriptionError) Error() string {
	parts := []string{services.ErrTranscription.Error()}
	if e.JobID != "" {
		parts = append(parts, "job "+e.JobID)
	}
	if e.Detail != "" {
		parts = append(parts, e.Detail)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *TranscriptionError) Unwrap() error {
	return e.Err
}

// Is matches services.ErrTranscription, and services.ErrTimeout for jobs
// abandoned after the maximum wait.
func (e *TranscriptionError) Is(target error) bool {
	if target == services.ErrTranscription {
		return true
	}
	return e.Timeout && target == services.ErrTimeout
}

// AsTranscriptionError returns the TranscriptionError in err's chain, if any.
func AsTranscriptionError(err error) (*TranscriptionError, bool) {
	var terr *TranscriptionError
	if errors.As(err, &terr) {
		return terr, true
	}
	return nil, false
}
