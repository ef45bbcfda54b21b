package graph

import (
	"context"
	"log/slog"
	"time"

	"github.com/terasky/vendorgraph/pkg/cache"
	"github.com/terasky/vendorgraph/pkg/types"
)

// Default TTLs for memoized graph reads. Related-entity aggregates and
// importance rows change with every import; product listings are hotter
// and stabler.
const (
	DefaultQueryTTL    = 5 * time.Minute
	DefaultProductsTTL = 10 * time.Minute
)

// QuerierOptions tunes the read side of the graph store.
type QuerierOptions struct {
	// CallTimeout bounds each individual store call. Zero disables the
	// per-call deadline (the caller's context still applies).
	CallTimeout time.Duration
	QueryTTL    time.Duration
	ProductsTTL time.Duration
}

// DefaultQuerierOptions matches the hot-path budgets tuned for search.
func DefaultQuerierOptions() QuerierOptions {
	return QuerierOptions{
		CallTimeout: 10 * time.Second,
		QueryTTL:    DefaultQueryTTL,
		ProductsTTL: DefaultProductsTTL,
	}
}

// Querier is the read-only view of the graph the search path consumes.
// Results of repeated identical reads are memoized with a TTL so hot
// queries do not hammer the store.
type Querier struct {
	store  Store
	cache  *cache.TTLCache
	opts   QuerierOptions
	logger *slog.Logger
}

// NewQuerier creates a querier. A nil cache disables memoization by using
// a private one, and a nil logger falls back to slog.Default.
func NewQuerier(store Store, ttlCache *cache.TTLCache, opts QuerierOptions, logger *slog.Logger) *Querier {
	if ttlCache == nil {
		ttlCache = cache.NewTTLCache()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.QueryTTL == 0 {
		opts.QueryTTL = DefaultQueryTTL
	}
	if opts.ProductsTTL == 0 {
		opts.ProductsTTL = DefaultProductsTTL
	}
	return &Querier{store: store, cache: ttlCache, opts: opts, logger: logger}
}

// Store exposes the underlying connection for the write side.
func (q *Querier) Store() Store {
	return q.store
}

func (q *Querier) run(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	if q.opts.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.opts.CallTimeout)
		defer cancel()
	}
	return q.store.Run(ctx, query, params)
}

func (q *Querier) runCached(ctx context.Context, name string, ttl time.Duration, query string, params map[string]any) ([]map[string]any, error) {
	key := cache.Key(name, params)
	return cache.Do(q.cache, key, ttl, func() ([]map[string]any, error) {
		return q.run(ctx, query, params)
	})
}

// RelatedEntities aggregates the products and vendors linked to the given
// document source ids, most-referenced first.
func (q *Querier) RelatedEntities(ctx context.Context, sourceIDs []string) (types.RelatedEntities, error) {
	related := types.EmptyRelatedEntities()
	if len(sourceIDs) == 0 {
		return related, nil
	}

	params := map[string]any{"source_ids": sourceIDs}

	productRows, err := q.runCached(ctx, "related_products", q.opts.QueryTTL, relatedProductsQuery, params)
	if err != nil {
		return related, err
	}
	for _, row := range productRows {
		related.Products = append(related.Products, types.EntityCount{
			Name:  rowString(row, "name"),
			Count: rowInt64(row, "count"),
		})
	}

	vendorRows, err := q.runCached(ctx, "related_vendors", q.opts.QueryTTL, relatedVendorsQuery, params)
	if err != nil {
		return related, err
	}
	for _, row := range vendorRows {
		related.Vendors = append(related.Vendors, types.EntityCount{
			Name:  rowString(row, "name"),
			Count: rowInt64(row, "count"),
		})
	}

	return related, nil
}

// ImportanceRow carries the graph signals the ranker derives a document's
// graph score from.
type ImportanceRow struct {
	SourceID     string
	ProductCount int64
	Date         time.Time
}

// Importance returns per-source graph signals for the given ids.
func (q *Querier) Importance(ctx context.Context, sourceIDs []string) ([]ImportanceRow, error) {
	if len(sourceIDs) == 0 {
		return nil, nil
	}

	rows, err := q.runCached(ctx, "importance", q.opts.QueryTTL, importanceQuery,
		map[string]any{"source_ids": sourceIDs})
	if err != nil {
		return nil, err
	}

	out := make([]ImportanceRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, ImportanceRow{
			SourceID:     rowString(row, "source_id"),
			ProductCount: rowInt64(row, "product_count"),
			Date:         rowTime(row, "date"),
		})
	}
	return out, nil
}

// FallbackCandidate is one document id the graph identified when
// similarity search had nothing.
type FallbackCandidate struct {
	SourceID string
	Date     time.Time
	Type     string
}

// FallbackCandidates retrieves document ids matching the graph-level
// filters, newest first.
func (q *Querier) FallbackCandidates(ctx context.Context, params types.QueryParams, limit int) ([]FallbackCandidate, error) {
	query, queryParams := BuildFallbackQuery(params, limit)
	rows, err := q.run(ctx, query, queryParams)
	if err != nil {
		return nil, err
	}

	out := make([]FallbackCandidate, 0, len(rows))
	for _, row := range rows {
		out = append(out, FallbackCandidate{
			SourceID: rowString(row, "id"),
			Date:     rowTime(row, "date"),
			Type:     rowString(row, "type"),
		})
	}
	return out, nil
}

// VendorProductsByConfidence lists a vendor's products at or above the
// minimum confidence, strongest first. Passing ConfidenceLow exposes
// low-confidence pairs that are never persisted as OFFERS edges by
// ingestion itself.
func (q *Querier) VendorProductsByConfidence(ctx context.Context, vendor string, min types.Confidence) ([]types.VendorProduct, error) {
	if min == types.ConfidenceNone {
		min = types.ConfidenceLow
	}

	rows, err := q.runCached(ctx, "vendor_products", q.opts.ProductsTTL, vendorProductsQuery, map[string]any{
		"vendor":            vendor,
		"confidence_levels": types.LevelsAtLeast(min),
	})
	if err != nil {
		return nil, err
	}

	out := make([]types.VendorProduct, 0, len(rows))
	for _, row := range rows {
		out = append(out, types.VendorProduct{
			Vendor:     rowString(row, "vendor"),
			Product:    rowString(row, "product"),
			Confidence: types.ParseConfidence(rowString(row, "confidence")),
		})
	}
	return out, nil
}

// Stats counts nodes and edges by kind.
func (q *Querier) Stats(ctx context.Context) (*types.GraphStats, error) {
	stats := &types.GraphStats{
		NodesByKind: map[string]int64{},
		EdgesByKind: map[string]int64{},
		LastUpdated: time.Now().UTC(),
	}

	nodeRows, err := q.run(ctx, nodeStatsQuery, nil)
	if err != nil {
		return nil, err
	}
	for _, row := range nodeRows {
		count := rowInt64(row, "count")
		stats.NodesByKind[rowString(row, "kind")] = count
		stats.NodeCount += count
	}

	edgeRows, err := q.run(ctx, edgeStatsQuery, nil)
	if err != nil {
		return nil, err
	}
	for _, row := range edgeRows {
		count := rowInt64(row, "count")
		stats.EdgesByKind[rowString(row, "kind")] = count
		stats.EdgeCount += count
	}

	return stats, nil
}

func rowTime(row map[string]any, key string) time.Time {
	switch v := row[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
		if t, err := time.Parse("2006-01-02", v); err == nil {
			return t
		}
	}
	return time.Time{}
}
