// Package llm provides access to an OpenAI-compatible chat completion
// API with retry handling, plus a deterministic offline fixture provider
// used when no API key is configured.
package llm
