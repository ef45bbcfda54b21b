// Package ingest writes vendor communications into both stores: chunked
// and embedded into the vector store, and as entity nodes and confidence
// scored relationships into the graph.
package ingest
