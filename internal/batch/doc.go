// Package batch runs the per-episode pipeline across an inclusive range of
// episodes with bounded concurrency and settle-all semantics: every episode
// reaches a result, failures are collected rather than propagated, and the
// caller receives a single Summary once the last episode resolves.
package batch
