// Package search implements hybrid retrieval: similarity search over the
// vector store combined, in parallel, with relationship context from the
// graph, followed by graph-aware re-ranking of the merged results.
package search
