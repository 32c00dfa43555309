// Package processor wires the translation pipeline together. It runs the
// build tool, feeds stdout and stderr through two concurrent stream
// processors that share one cache and one rate limiter, and reports the
// build tool's exit code as its own.
package processor
