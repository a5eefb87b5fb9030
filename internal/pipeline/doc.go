// Package pipeline produces the stored artifacts for one episode.
//
// A run moves through ensure buckets, then the audio half (download, trim,
// upload public clip) and the transcript half (transcribe the clip by URL,
// extract the quote, upload it privately). Each half is skipped when its
// artifact is already stored, which makes re-runs cheap and safe. The first
// failure ends the run, and the episode's staging directory is removed on
// every exit path.
package pipeline
