// Package preflight provides readiness checks for the external tools,
// directories, buckets and services the pipeline depends on.
//
// The CLI "check" command runs RunAll and renders the results; nothing here
// mutates state, so checks are safe to run at any time.
package preflight
