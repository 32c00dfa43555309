// Package classify decides which lines of cargo output carry human-readable
// diagnostic prose worth translating, as opposed to status lines, code frames
// and gutters. It also derives the cache key for a raw terminal line.
package classify
