// Package runner coordinates turn execution: it selects the strategy for a
// domain, enforces the access-control list and the concurrent-turn limit,
// streams progress events to the caller and supports cancelling in-flight
// turns. Turns for different conversations run fully concurrently; the only
// shared state between them is the tool-run approval gate.
package runner
