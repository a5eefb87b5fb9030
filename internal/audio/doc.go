// Package audio trims staged episode audio with ffmpeg.
//
// Trimming is synchronous: Trim returns only after ffmpeg has exited and the
// output file has been verified, so callers can upload the result
// immediately. The command runner is injectable so tests never shell out.
package audio
