// Package embedder generates vector embeddings for memory content.
//
// Three providers are supported:
//
//   - openai: the OpenAI embeddings API (text-embedding-3-small,
//     1536 dimensions). Requires OPENAI_API_KEY.
//   - ollama: a local Ollama server (nomic-embed-text, 768 dimensions).
//     Address from OLLAMA_HOST, default http://localhost:11434.
//   - local: deterministic hash-derived unit vectors (384 dimensions).
//     No semantic signal; an offline and test fallback.
//
// NewFromEnv picks a provider from MNEMOS_EMBEDDING_PROVIDER, falling
// back to whichever credentials are present and finally to local.
//
// All providers share an LRU cache keyed by SHA-256 of the input text,
// and the HTTP providers retry transient failures with exponential
// backoff. Cached embeddings are returned as deep copies.
package embedder
