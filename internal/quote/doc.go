// Package quote extracts the "It takes more than X to be a great software
// engineer" phrase from an episode transcript.
package quote
