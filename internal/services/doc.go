// Package services defines shared utilities consumed by the pipeline stages
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp episode numbers, stage names, and batch run
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so every stage failure
//     carries a classifiable kind (download, trim, storage, transcription,
//     extraction, timeout).
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
