// Package embedder provides text embedding clients for vector
// representations.
//
// The Client interface abstracts over providers so the retrieval and
// ingestion paths never care where vectors come from:
//   - OpenAI: text-embedding-3-small, text-embedding-3-large
//   - Local: in-process models via go-embedeverything
//
// EmbedSingle is a convenience wrapper over Embed; implementations batch
// internally based on provider limits.
package embedder
