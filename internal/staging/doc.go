// Package staging manages the per-episode scratch directories that hold
// downloaded and trimmed audio while a pipeline runs, and sweeps up any left
// behind by interrupted processes.
package staging
