// Package logging assembles structured slog loggers for ssequote commands.
//
// It owns the console and JSON handlers, fans records out so the terminal and
// the daily log file can run at different levels, and exposes context-aware
// helpers that tag log lines with the batch run, episode, and stage.
//
// The package also provides a no-op logger for tests and wiring code that
// cannot fail.
package logging
