// Package llm provides the minimal completion capability consumed by the
// summarizer: a one-method Provider interface plus an OpenAI-compatible
// HTTP client. Context compaction never needs streaming, tool calling, or
// routing, so none of that surface exists here.
package llm
