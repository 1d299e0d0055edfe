// Package compaction keeps a conversation's working context under a
// token budget. Each turn the Engine measures the committed window
// against the policy's hard limit; when exceeded it rebuilds the window
// as a system summary of the early history, the most recent early tool
// records, and the last KeepLast messages verbatim.
//
// The engine is deterministic given a deterministic summarizer: counts,
// ordering, and window structure never depend on the LLM, only the
// summary's wording does. History is never mutated; windows are always
// fresh values threaded explicitly through the caller.
package compaction
