// Package history persists conversation state across turns: the accumulated
// transcript that seeds the next turn's context, and a record of every turn
// that ran. The in-memory implementation is safe for concurrent access and
// suited to tests and ephemeral demo servers; durable deployments implement
// the Store interface over their own backend.
package history
