// Package session is the reference caller of the compaction engine: it
// owns each conversation thread's append-only history and committed
// window, serializes steps per thread, and lets distinct threads run
// fully in parallel. Nothing here is persisted; durable storage of
// history and windows remains the embedding application's job.
package session
