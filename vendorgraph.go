package vendorgraph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/terasky/vendorgraph/pkg/cache"
	"github.com/terasky/vendorgraph/pkg/extract"
	"github.com/terasky/vendorgraph/pkg/graph"
	"github.com/terasky/vendorgraph/pkg/ingest"
	"github.com/terasky/vendorgraph/pkg/relationship"
	"github.com/terasky/vendorgraph/pkg/search"
	"github.com/terasky/vendorgraph/pkg/types"
	"github.com/terasky/vendorgraph/pkg/vector"

	"github.com/terasky/vendorgraph/pkg/embedder"
)

// Engine is the main interface for hybrid retrieval over vendor
// communications.
type Engine interface {
	// Search answers a free-text query: filters are extracted, the
	// stores are queried in parallel and results come back re-ranked
	// with relationship context attached.
	Search(ctx context.Context, query string) (*search.FormattedResults, error)

	// ExtractParams exposes the filter extraction step on its own.
	ExtractParams(query string) types.QueryParams

	// Ingest indexes one communication into both stores.
	Ingest(ctx context.Context, doc ingest.SourceDocument) error

	// ImportAll rebuilds the graph from the vector store contents.
	ImportAll(ctx context.Context) (int, error)

	// VendorProducts lists a vendor's products at medium confidence or
	// better.
	VendorProducts(ctx context.Context, vendor string) ([]types.VendorProduct, error)

	// VendorProductsByConfidence lists a vendor's products at or above
	// the given confidence, strongest first.
	VendorProductsByConfidence(ctx context.Context, vendor string, min types.Confidence) ([]types.VendorProduct, error)

	// Reconcile removes catalog-backed relationships the catalog no
	// longer contains, returning how many were removed.
	Reconcile(ctx context.Context) (int, error)

	// Stats reports graph and store sizes.
	Stats(ctx context.Context) (*Stats, error)

	// Reset clears the graph and reinstalls its schema.
	Reset(ctx context.Context) error

	// Close releases both stores.
	Close(ctx context.Context) error
}

// Stats aggregates counters from both stores.
type Stats struct {
	Graph  *types.GraphStats `json:"graph"`
	Chunks int               `json:"chunks"`
}

// Options configures an engine. Zero values take defaults.
type Options struct {
	Search  search.Config
	Rank    search.RankConfig
	Ingest  ingest.Options
	Querier graph.QuerierOptions
	// VendorProductsTTL caches product listings per vendor and level.
	VendorProductsTTL time.Duration
	Vocabulary        *extract.Vocabulary
}

type engine struct {
	graphStore graph.Store
	vectors    vector.Store
	embedder   embedder.Client
	catalog    *relationship.Catalog

	extractor *extract.Extractor
	retriever *search.Retriever
	ingestor  *ingest.Ingestor
	querier   *graph.Querier
	writer    *graph.Writer

	logger *slog.Logger
}

var _ Engine = (*engine)(nil)

// New wires an engine from its collaborators. The graph store is shared
// between the read and write paths; wrap it in a circuit breaker with
// graph.NewBreakerStore before passing it in if the deployment needs one.
func New(graphStore graph.Store, vectors vector.Store, emb embedder.Client, catalog *relationship.Catalog, opts Options, logger *slog.Logger) (Engine, error) {
	if graphStore == nil || vectors == nil || emb == nil {
		return nil, errors.New("vendorgraph: graph store, vector store and embedder are required")
	}
	if catalog == nil {
		catalog = relationship.EmptyCatalog()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.VendorProductsTTL <= 0 {
		opts.VendorProductsTTL = 10 * time.Minute
	}
	if opts.Vocabulary == nil {
		opts.Vocabulary = extract.DefaultVocabulary()
	}
	if opts.Querier.ProductsTTL == 0 {
		opts.Querier.ProductsTTL = opts.VendorProductsTTL
	}

	querier := graph.NewQuerier(graphStore, cache.NewTTLCache(), opts.Querier, logger)
	writer := graph.NewWriter(graphStore, logger)
	validator := relationship.NewValidator(catalog)
	ranker := search.NewRanker(opts.Rank, logger)

	return &engine{
		graphStore: graphStore,
		vectors:    vectors,
		embedder:   emb,
		catalog:    catalog,
		extractor:  extract.New(opts.Vocabulary),
		retriever:  search.NewRetriever(emb, vectors, querier, ranker, opts.Search, logger),
		ingestor:   ingest.NewIngestor(writer, vectors, emb, validator, opts.Ingest, logger),
		querier:    querier,
		writer:     writer,
		logger:     logger,
	}, nil
}

func (e *engine) Search(ctx context.Context, query string) (*search.FormattedResults, error) {
	params := e.extractor.Extract(query)
	e.logger.Debug("query parsed",
		"vendor", params.Vendor, "product", params.Product,
		"type", params.Type, "day_span", params.DaySpan)

	result, err := e.retriever.Retrieve(ctx, query, params)
	if err != nil {
		return nil, err
	}
	return search.Format(result), nil
}

func (e *engine) ExtractParams(query string) types.QueryParams {
	return e.extractor.Extract(query)
}

func (e *engine) Ingest(ctx context.Context, doc ingest.SourceDocument) error {
	return e.ingestor.Ingest(ctx, doc)
}

func (e *engine) ImportAll(ctx context.Context) (int, error) {
	return e.ingestor.ImportAll(ctx)
}

func (e *engine) VendorProducts(ctx context.Context, vendor string) ([]types.VendorProduct, error) {
	return e.querier.VendorProductsByConfidence(ctx, vendor, types.ConfidenceMedium)
}

func (e *engine) VendorProductsByConfidence(ctx context.Context, vendor string, min types.Confidence) ([]types.VendorProduct, error) {
	return e.querier.VendorProductsByConfidence(ctx, vendor, min)
}

func (e *engine) Reconcile(ctx context.Context) (int, error) {
	return e.ingestor.Reconcile(ctx, e.catalog)
}

func (e *engine) Stats(ctx context.Context) (*Stats, error) {
	graphStats, err := e.querier.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("graph stats: %w", err)
	}
	chunks, err := e.vectors.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("store stats: %w", err)
	}
	return &Stats{Graph: graphStats, Chunks: chunks}, nil
}

func (e *engine) Reset(ctx context.Context) error {
	return e.ingestor.Reset(ctx)
}

func (e *engine) Close(ctx context.Context) error {
	var errs []error
	if err := e.embedder.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close embedder: %w", err))
	}
	if err := e.vectors.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close vector store: %w", err))
	}
	if err := e.graphStore.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("close graph store: %w", err))
	}
	return errors.Join(errs...)
}
