// Package history keeps a SQLite ledger of batch runs so operators can see
// which episodes failed in earlier runs and why. Schema changes ship as
// embedded migrations applied on Open.
package history
