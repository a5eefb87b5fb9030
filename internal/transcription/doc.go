// Package transcription drives a remote speech-to-text job to completion.
//
// The Poller submits a job, checks its status at a fixed interval until it
// leaves in_progress, and fetches the transcript. There are no retries: a
// failed job, an API error, or exceeding the maximum wait all surface as a
// *TranscriptionError. Waiting honours context cancellation so a stalled job
// never blocks shutdown.
package transcription
