package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/terasky/vendorgraph/pkg/embedder"
	"github.com/terasky/vendorgraph/pkg/graph"
	"github.com/terasky/vendorgraph/pkg/types"
	"github.com/terasky/vendorgraph/pkg/utils"
	"github.com/terasky/vendorgraph/pkg/vector"
)

// ErrEmbedding marks the one failure retrieval cannot degrade around.
// Store and graph failures shrink the result set; without a query vector
// there is nothing to retrieve.
var ErrEmbedding = errors.New("search: query embedding failed")

// Config tunes the retrieval pipeline.
type Config struct {
	// TopK is the number of source documents a search returns.
	TopK int
	// Overfetch multiplies TopK on the vector query so re-ranking has
	// candidates to promote.
	Overfetch int
	// Workers bounds the concurrent graph lookups per search.
	Workers int
	// StoreTimeout bounds each vector store call.
	StoreTimeout time.Duration
}

// DefaultConfig returns the tuning used in production.
func DefaultConfig() Config {
	return Config{
		TopK:         5,
		Overfetch:    2,
		Workers:      3,
		StoreTimeout: 10 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TopK <= 0 {
		c.TopK = d.TopK
	}
	if c.Overfetch <= 0 {
		c.Overfetch = d.Overfetch
	}
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.StoreTimeout <= 0 {
		c.StoreTimeout = d.StoreTimeout
	}
	return c
}

// Retriever runs the hybrid retrieval pipeline: similarity search over
// the vector store, a graph-side fallback when similarity finds nothing
// but the query carried structured constraints, and parallel relationship
// lookups feeding the ranker.
type Retriever struct {
	embedder embedder.Client
	vectors  vector.Store
	graph    *graph.Querier
	ranker   *Ranker
	exec     *utils.ConcurrentExecutor
	config   Config
	logger   *slog.Logger
}

// NewRetriever wires the pipeline. A nil ranker gets the default tuning.
func NewRetriever(emb embedder.Client, vectors vector.Store, querier *graph.Querier, ranker *Ranker, config Config, logger *slog.Logger) *Retriever {
	config = config.withDefaults()
	if ranker == nil {
		ranker = NewRanker(DefaultRankConfig(), logger)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		embedder: emb,
		vectors:  vectors,
		graph:    querier,
		ranker:   ranker,
		exec:     utils.NewConcurrentExecutor(config.Workers),
		config:   config,
		logger:   logger,
	}
}

// Retrieve runs the full pipeline for an already-extracted query. Partial
// failure degrades: a dead vector store or graph yields fewer results,
// never an error. Only an embedding failure aborts.
func (r *Retriever) Retrieve(ctx context.Context, query string, params types.QueryParams) (_ *types.RetrievalResult, err error) {
	// A panicking store library must not take the process down with it.
	defer utils.RecoverAsError(&err)

	embedding, err := r.embedder.EmbedSingle(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}

	hits := r.vectorSearch(ctx, embedding, params)

	if hits.Len() == 0 && params.HasGraphFilter() {
		hits = r.fallbackSearch(ctx, params)
	}

	sourceIDs := hits.SourceIDs()

	var related types.RelatedEntities
	var signals []graph.ImportanceRow

	errs := r.exec.Execute(ctx,
		func() error {
			rel, err := r.graph.RelatedEntities(ctx, sourceIDs)
			if err != nil {
				return fmt.Errorf("related entities: %w", err)
			}
			related = rel
			return nil
		},
		func() error {
			rows, err := r.graph.Importance(ctx, sourceIDs)
			if err != nil {
				return fmt.Errorf("importance: %w", err)
			}
			signals = rows
			return nil
		},
	)
	for _, err := range errs {
		if err != nil {
			r.logger.Warn("graph enrichment degraded", "error", err)
		}
	}
	if related.Products == nil && related.Vendors == nil {
		related = types.EmptyRelatedEntities()
	}

	ranked := r.ranker.Rank(hits, signals)
	ranked = truncateBySources(ranked, r.config.TopK)

	return &types.RetrievalResult{
		SearchResult: *ranked,
		Related:      related,
	}, nil
}

// vectorSearch queries the store, retrying once with downgraded filters
// when the backend rejects a containment operator.
func (r *Retriever) vectorSearch(ctx context.Context, embedding []float32, params types.QueryParams) *types.SearchResult {
	filters := params.VectorFilters()
	limit := r.config.TopK * r.config.Overfetch

	result, err := r.query(ctx, embedding, limit, filters)
	if errors.Is(err, vector.ErrUnsupportedFilter) {
		result, err = r.query(ctx, embedding, limit, filters.Downgraded())
	}
	if err != nil {
		r.logger.Warn("vector search degraded to empty", "error", err)
		return types.EmptySearchResult()
	}
	return result
}

func (r *Retriever) query(ctx context.Context, embedding []float32, limit int, filters types.FilterSet) (*types.SearchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, r.config.StoreTimeout)
	defer cancel()
	return r.vectors.Query(ctx, embedding, limit, filters)
}

// fallbackSearch asks the graph for candidate documents matching the
// structured constraints, then hydrates their chunks from the store.
// Hydrated chunks carry a placeholder score, ranking sorts them by graph
// signals alone.
func (r *Retriever) fallbackSearch(ctx context.Context, params types.QueryParams) *types.SearchResult {
	candidates, err := r.graph.FallbackCandidates(ctx, params, r.config.TopK)
	if err != nil {
		r.logger.Warn("graph fallback failed", "error", err)
		return types.EmptySearchResult()
	}
	if len(candidates) == 0 {
		return types.EmptySearchResult()
	}

	sourceIDs := make([]string, 0, len(candidates))
	for _, c := range candidates {
		sourceIDs = append(sourceIDs, c.SourceID)
	}

	hctx, cancel := context.WithTimeout(ctx, r.config.StoreTimeout)
	defer cancel()
	result, err := r.vectors.GetBySourceIDs(hctx, sourceIDs)
	if err != nil {
		r.logger.Warn("fallback hydration failed", "error", err)
		return types.EmptySearchResult()
	}
	r.logger.Debug("graph fallback used", "candidates", len(candidates), "chunks", result.Len())
	return result
}

// truncateBySources keeps the chunks of the first maxSources distinct
// source documents, preserving chunk order.
func truncateBySources(result *types.SearchResult, maxSources int) *types.SearchResult {
	if maxSources <= 0 || result.Len() == 0 {
		return result
	}

	kept := make(map[string]bool, maxSources)
	out := types.EmptySearchResult()
	for i, meta := range result.Metadatas {
		if !kept[meta.SourceID] {
			if len(kept) == maxSources {
				continue
			}
			kept[meta.SourceID] = true
		}
		out.Documents = append(out.Documents, result.Documents[i])
		out.Metadatas = append(out.Metadatas, meta)
		out.Distances = append(out.Distances, result.Distances[i])
		out.IDs = append(out.IDs, result.IDs[i])
	}
	return out
}
