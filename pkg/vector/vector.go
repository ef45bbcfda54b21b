// Package vector stores document chunks with embeddings and serves
// filtered similarity queries over them.
package vector

import (
	"context"
	"errors"

	"github.com/terasky/vendorgraph/pkg/types"
)

// ErrUnsupportedFilter is returned when a backend cannot express a filter
// operator. Callers may retry with the downgraded filter set.
var ErrUnsupportedFilter = errors.New("vector: unsupported filter operator")

// Store is the contract retrieval and ingestion depend on. Implementations
// must treat a zero-hit query as a normal result, not an error.
type Store interface {
	// Query returns the chunks most similar to the embedding, restricted
	// to chunks matching every filter. Scores in Distances are cosine
	// similarities, higher is better.
	Query(ctx context.Context, embedding []float32, topK int, filters types.FilterSet) (*types.SearchResult, error)

	// GetBySourceIDs returns every chunk belonging to the given source
	// documents, in the order the ids were given. Hydrated chunks carry
	// a placeholder score of 1.0 since no query vector was involved.
	GetBySourceIDs(ctx context.Context, sourceIDs []string) (*types.SearchResult, error)

	// Add indexes the documents, replacing any chunk with the same id.
	Add(ctx context.Context, docs []types.Document) error

	// All streams every stored document to fn. Returning a non-nil error
	// from fn stops the scan.
	All(ctx context.Context, fn func(types.Document) error) error

	// Count reports the number of stored chunks.
	Count(ctx context.Context) (int, error)

	Close() error
}
