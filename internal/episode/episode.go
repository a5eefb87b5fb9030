// Package episode derives every resource name used by the pipeline from an
// episode number.
package episode

import (
	"fmt"
	"iter"
	"math"
	"strconv"
	"strings"
)

// MaxRangeLen caps how many episodes one batch may span.
const MaxRangeLen = 100_000

// AudioKey is the object key of the trimmed public audio for episode n.
func AudioKey(n int) string {
	return fmt.Sprintf("sse-%d.mp3", n)
}

// TranscriptKey is the object key of the extracted quote for episode n.
func TranscriptKey(n int) string {
	return fmt.Sprintf("episode-%d.txt", n)
}

// Parse reads an episode number from a CLI argument.
func Parse(value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid episode %q: expected an integer", value)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid episode %d: must not be negative", n)
	}
	return n, nil
}

// Range is an inclusive span of episode numbers.
type Range struct {
	From int
	To   int
}

// Empty reports whether the range contains no episodes.
func (r Range) Empty() bool {
	return r.From > r.To
}

// Len returns the number of episodes in the range, saturating at
// math.MaxInt.
func (r Range) Len() int {
	if r.Empty() {
		return 0
	}
	span := r.To - r.From
	if span < 0 || span == math.MaxInt {
		return math.MaxInt
	}
	return span + 1
}

// Validate rejects negative bounds and ranges longer than MaxRangeLen. An
// empty range is valid.
func (r Range) Validate() error {
	if r.From < 0 || r.To < 0 {
		return fmt.Errorf("invalid range %s: episodes must not be negative", r)
	}
	if n := r.Len(); n > MaxRangeLen {
		return fmt.Errorf("invalid range %s: spans more than %d episodes", r, MaxRangeLen)
	}
	return nil
}

// All yields every episode number in ascending order. It stops at To without
// incrementing past it, so a range ending at math.MaxInt terminates.
func (r Range) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		if r.Empty() {
			return
		}
		for n := r.From; ; n++ {
			if !yield(n) || n == r.To {
				return
			}
		}
	}
}

func (r Range) String() string {
	return fmt.Sprintf("%d-%d", r.From, r.To)
}
