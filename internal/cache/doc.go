// Package cache remembers translations of diagnostics across runs. The cache
// is a flat JSON object stored in the project directory, rewritten after every
// new translation. Concurrent misses for the same diagnostic are collapsed into
// a single request; failed translations are never stored.
package cache
