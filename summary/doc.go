// Package summary compresses a bounded slice of early conversation
// messages into a short text via an LLM provider, degrading to a
// deterministic templated string whenever the provider is disabled,
// unreachable, canceled, or returns nothing. Degradation is never an
// error at this boundary.
package summary
