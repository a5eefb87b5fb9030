package episode

import (
	"math"
	"slices"
	"testing"
)

func TestKeysAreDeterministic(t *testing.T) {
	if got := AudioKey(103); got != "sse-103.mp3" {
		t.Fatalf("AudioKey = %q", got)
	}
	if got := TranscriptKey(103); got != "episode-103.txt" {
		t.Fatalf("TranscriptKey = %q", got)
	}
}

func TestParse(t *testing.T) {
	if n, err := Parse(" 42 "); err != nil || n != 42 {
		t.Fatalf("Parse(42) = %d, %v", n, err)
	}
	for _, bad := range []string{"", "abc", "-1", "1.5"} {
		if _, err := Parse(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestRange(t *testing.T) {
	r := Range{From: 3, To: 6}
	if r.Empty() || r.Len() != 4 {
		t.Fatalf("unexpected range state: empty=%v len=%d", r.Empty(), r.Len())
	}
	if got := slices.Collect(r.All()); !slices.Equal(got, []int{3, 4, 5, 6}) {
		t.Fatalf("All = %v", got)
	}

	inverted := Range{From: 6, To: 3}
	if !inverted.Empty() || inverted.Len() != 0 || len(slices.Collect(inverted.All())) != 0 {
		t.Fatal("expected inverted range to be empty")
	}

	single := Range{From: 7, To: 7}
	if single.Len() != 1 {
		t.Fatalf("expected single episode, got %d", single.Len())
	}
}

func TestRangeBounds(t *testing.T) {
	tests := []struct {
		name    string
		rng     Range
		wantLen int
		wantEps []int
		wantErr bool
	}{
		{name: "ordinary", rng: Range{From: 100, To: 102}, wantLen: 3, wantEps: []int{100, 101, 102}},
		{name: "empty", rng: Range{From: 2, To: 1}, wantLen: 0, wantEps: nil},
		{name: "ends at max int", rng: Range{From: math.MaxInt - 1, To: math.MaxInt}, wantLen: 2, wantEps: []int{math.MaxInt - 1, math.MaxInt}},
		{name: "whole int span", rng: Range{From: 0, To: math.MaxInt}, wantLen: math.MaxInt, wantErr: true},
		{name: "at limit", rng: Range{From: 1, To: MaxRangeLen}, wantLen: MaxRangeLen},
		{name: "over limit", rng: Range{From: 0, To: MaxRangeLen}, wantLen: MaxRangeLen + 1, wantErr: true},
		{name: "negative", rng: Range{From: -1, To: 3}, wantLen: 5, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rng.Len(); got != tt.wantLen {
				t.Fatalf("Len = %d, want %d", got, tt.wantLen)
			}
			err := tt.rng.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			var got []int
			for n := range tt.rng.All() {
				got = append(got, n)
				if len(got) > tt.wantLen {
					t.Fatalf("All yielded more than %d episodes: %v", tt.wantLen, got[:tt.wantLen+1])
				}
			}
			if tt.wantEps != nil && !slices.Equal(got, tt.wantEps) {
				t.Fatalf("All = %v, want %v", got, tt.wantEps)
			}
		})
	}
}

func TestRangeAllStopsEarly(t *testing.T) {
	var got []int
	for n := range (Range{From: 1, To: 10}).All() {
		if n > 3 {
			break
		}
		got = append(got, n)
	}
	if !slices.Equal(got, []int{1, 2, 3}) {
		t.Fatalf("got %v", got)
	}
}
