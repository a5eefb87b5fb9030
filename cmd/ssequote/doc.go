// Package main hosts the ssequote CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, builds the storage,
// download, trim and speech clients, and hands them to the pipeline and batch
// packages. Commands only parse arguments and render results; the work lives
// in internal packages.
package main
