// Package embedding holds what every embedding provider shares: HTTP status
// classification into the domain's transient and terminal errors, and a
// Client that wraps any driven.EmbeddingService with rate limiting, per-call
// timeouts and bounded retries.
//
// Provider adapters live in the subpackages openai, ollama, gemini and hash.
package embedding
