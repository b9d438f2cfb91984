// Package application runs workout batches for the command line and wires the
// workout API into an HTTP server, keeping the main package focused on CLI
// parsing and orchestration.
package application
