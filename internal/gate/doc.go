// Package gate provides the idempotency checks that let re-runs skip work
// whose artifacts are already stored.
package gate
