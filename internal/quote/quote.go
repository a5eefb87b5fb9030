package quote

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"ssequote/internal/services"
)

const (
	// OpeningAnchor and ClosingAnchor bracket the phrase in the transcript.
	// The opening anchor drops the leading "t" so both "takes" and "Takes"
	// match.
	OpeningAnchor = "akes more than"
	ClosingAnchor = "to be a great"

	// Prefix and Suffix wrap the captured phrase in the stored quote.
	Prefix = "It takes more than "
	Suffix = " to be a great software engineer"
)

var (
	quotePattern = regexp.MustCompile(`(?s)` + regexp.QuoteMeta(OpeningAnchor) + `(.*?)` + regexp.QuoteMeta(ClosingAnchor))
	whitespace   = regexp.MustCompile(`\s+`)
)

// ExtractionError reports a transcript without a usable quote.
type ExtractionError struct {
	Reason string
}

func (e *ExtractionError) Error() string {
	return services.ErrExtraction.Error() + ": " + e.Reason
}

// Is matches services.ErrExtraction.
func (e *ExtractionError) Is(target error) bool {
	return target == services.ErrExtraction
}

// Extract finds the first phrase between the anchors and returns it as
// "It takes more than X to be a great software engineer".
func Extract(transcript string) (string, error) {
	text := Normalize(transcript)
	match := quotePattern.FindStringSubmatch(text)
	if match == nil {
		return "", &ExtractionError{Reason: "anchors not found in transcript"}
	}
	phrase := strings.TrimSpace(match[1])
	if phrase == "" {
		return "", &ExtractionError{Reason: "empty phrase between anchors"}
	}
	return Prefix + phrase + Suffix, nil
}

// Normalize composes Unicode to NFC and collapses whitespace runs, including
// line breaks from transcript formatting, to single spaces.
func Normalize(text string) string {
	return whitespace.ReplaceAllString(norm.NFC.String(text), " ")
}
