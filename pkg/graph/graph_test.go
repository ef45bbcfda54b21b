package graph

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terasky/vendorgraph/pkg/cache"
	"github.com/terasky/vendorgraph/pkg/types"
)

// mockStore scripts rows per query fragment and records calls.
type mockStore struct {
	rows   map[string][]map[string]any
	calls  []string
	params []map[string]any
	err    error
	closed bool
}

func newMockStore() *mockStore {
	return &mockStore{rows: map[string][]map[string]any{}}
}

func (m *mockStore) respond(fragment string, rows []map[string]any) {
	m.rows[fragment] = rows
}

func (m *mockStore) Run(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	m.calls = append(m.calls, query)
	m.params = append(m.params, params)
	if m.err != nil {
		return nil, m.err
	}
	for fragment, rows := range m.rows {
		if strings.Contains(query, fragment) {
			return rows, nil
		}
	}
	return nil, nil
}

func (m *mockStore) Close(ctx context.Context) error {
	m.closed = true
	return nil
}

func TestBuildFallbackQuery(t *testing.T) {
	tests := []struct {
		name        string
		params      types.QueryParams
		wantClauses []string
		skipClauses []string
		wantParams  []string
	}{
		{
			name:        "vendor only",
			params:      types.QueryParams{Vendor: "hashicorp"},
			wantClauses: []string{"[:FROM]->(v:Vendor)", "v.name = $vendor"},
			skipClauses: []string{"[:ABOUT]", "$days"},
			wantParams:  []string{"vendor", "limit"},
		},
		{
			name:        "product only",
			params:      types.QueryParams{Product: "vault"},
			wantClauses: []string{"[:ABOUT]->(p:Product)", "p.name CONTAINS $product"},
			skipClauses: []string{"[:FROM]", "$days"},
			wantParams:  []string{"product", "limit"},
		},
		{
			name:        "time window only",
			params:      types.QueryParams{DaySpan: 7},
			wantClauses: []string{"duration({days: $days})"},
			skipClauses: []string{"[:FROM]", "[:ABOUT]"},
			wantParams:  []string{"days", "limit"},
		},
		{
			name:   "all constraints",
			params: types.QueryParams{Vendor: "hashicorp", Product: "vault", DaySpan: 30},
			wantClauses: []string{
				"v.name = $vendor", "p.name CONTAINS $product",
				"duration({days: $days})", " AND ",
			},
			wantParams: []string{"vendor", "product", "days", "limit"},
		},
		{
			name:        "no constraints",
			params:      types.QueryParams{},
			skipClauses: []string{"WHERE"},
			wantParams:  []string{"limit"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, params := BuildFallbackQuery(tt.params, 5)

			assert.Contains(t, query, "MATCH (d:Document)")
			assert.Contains(t, query, "ORDER BY d.date DESC")
			assert.Contains(t, query, "LIMIT $limit")
			for _, clause := range tt.wantClauses {
				assert.Contains(t, query, clause)
			}
			for _, clause := range tt.skipClauses {
				assert.NotContains(t, query, clause)
			}

			assert.Len(t, params, len(tt.wantParams))
			for _, key := range tt.wantParams {
				assert.Contains(t, params, key)
			}
			assert.Equal(t, 5, params["limit"])
		})
	}
}

func TestQuerierRelatedEntities(t *testing.T) {
	store := newMockStore()
	store.respond("[:ABOUT]->(p:Product)", []map[string]any{
		{"name": "vault", "count": int64(3)},
		{"name": "consul", "count": int64(1)},
	})
	store.respond("[:FROM]->(v:Vendor)", []map[string]any{
		{"name": "hashicorp", "count": int64(4)},
	})

	q := NewQuerier(store, cache.NewTTLCache(), DefaultQuerierOptions(), nil)

	related, err := q.RelatedEntities(context.Background(), []string{"e1", "e2"})
	require.NoError(t, err)
	require.Len(t, related.Products, 2)
	assert.Equal(t, types.EntityCount{Name: "vault", Count: 3}, related.Products[0])
	require.Len(t, related.Vendors, 1)
	assert.Equal(t, types.EntityCount{Name: "hashicorp", Count: 4}, related.Vendors[0])
}

func TestQuerierRelatedEntitiesEmptyInput(t *testing.T) {
	store := newMockStore()
	q := NewQuerier(store, cache.NewTTLCache(), DefaultQuerierOptions(), nil)

	related, err := q.RelatedEntities(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, related.Products)
	assert.Empty(t, related.Vendors)
	assert.Empty(t, store.calls)
}

func TestQuerierCachesReads(t *testing.T) {
	store := newMockStore()
	store.respond("[:ABOUT]->(p:Product)", nil)
	store.respond("[:FROM]->(v:Vendor)", nil)

	q := NewQuerier(store, cache.NewTTLCache(), DefaultQuerierOptions(), nil)

	_, err := q.RelatedEntities(context.Background(), []string{"e1"})
	require.NoError(t, err)
	calls := len(store.calls)

	_, err = q.RelatedEntities(context.Background(), []string{"e1"})
	require.NoError(t, err)
	assert.Equal(t, calls, len(store.calls), "second identical read must be served from cache")

	// A different id set misses the cache.
	_, err = q.RelatedEntities(context.Background(), []string{"e2"})
	require.NoError(t, err)
	assert.Greater(t, len(store.calls), calls)
}

func TestQuerierVendorProducts(t *testing.T) {
	store := newMockStore()
	store.respond("OFFERS", []map[string]any{
		{"vendor": "hashicorp", "product": "vault", "confidence": "high"},
		{"vendor": "hashicorp", "product": "consul", "confidence": "medium"},
	})

	q := NewQuerier(store, cache.NewTTLCache(), DefaultQuerierOptions(), nil)

	products, err := q.VendorProductsByConfidence(context.Background(), "hashicorp", types.ConfidenceMedium)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, types.ConfidenceHigh, products[0].Confidence)

	// The confidence filter expands to the IN-list of acceptable levels.
	require.NotEmpty(t, store.params)
	levels, ok := store.params[0]["confidence_levels"].([]string)
	require.True(t, ok)
	assert.Equal(t, []string{"high", "medium"}, levels)
}

func TestQuerierImportance(t *testing.T) {
	date := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	store := newMockStore()
	store.respond("product_count", []map[string]any{
		{"source_id": "e1", "product_count": int64(3), "date": date},
		{"source_id": "e2", "product_count": int64(0), "date": "2026-08-01"},
	})

	q := NewQuerier(store, cache.NewTTLCache(), DefaultQuerierOptions(), nil)

	rows, err := q.Importance(context.Background(), []string{"e1", "e2"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, date, rows[0].Date)
	assert.Equal(t, int64(3), rows[0].ProductCount)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), rows[1].Date)
}

func TestQuerierDegradesOnStoreError(t *testing.T) {
	store := newMockStore()
	store.err = errors.New("boom")

	q := NewQuerier(store, cache.NewTTLCache(), DefaultQuerierOptions(), nil)

	_, err := q.RelatedEntities(context.Background(), []string{"e1"})
	assert.Error(t, err)

	_, err = q.FallbackCandidates(context.Background(), types.QueryParams{Vendor: "x"}, 5)
	assert.Error(t, err)
}

func TestWriterMergeOffersGating(t *testing.T) {
	store := newMockStore()
	w := NewWriter(store, nil)

	// Low confidence is never written.
	require.NoError(t, w.MergeOffers(context.Background(), "acme", "widget", types.ConfidenceLow))
	assert.Empty(t, store.calls)

	require.NoError(t, w.MergeOffers(context.Background(), "acme", "widget", types.ConfidenceMedium))
	require.Len(t, store.calls, 1)
	assert.Contains(t, store.calls[0], "MERGE (v)-[r:OFFERS]->(p)")
	assert.Equal(t, "medium", store.params[0]["confidence"])
	assert.Equal(t, 2, store.params[0]["rank"])
}

func TestWriterMergeOffersKeepsMaxConfidence(t *testing.T) {
	store := newMockStore()
	w := NewWriter(store, nil)

	// A strong signal followed by a weaker one for the same pair. The
	// upsert must send the numeric rank with each write and guard every
	// ON MATCH assignment on the stored rank, so the second write cannot
	// downgrade the first.
	require.NoError(t, w.MergeOffers(context.Background(), "acme", "widget", types.ConfidenceHigh))
	require.NoError(t, w.MergeOffers(context.Background(), "acme", "widget", types.ConfidenceMedium))
	require.Len(t, store.calls, 2)

	assert.Equal(t, 3, store.params[0]["rank"])
	assert.Equal(t, "high", store.params[0]["confidence"])
	assert.Equal(t, 2, store.params[1]["rank"])

	// Both writes run the same upsert, so idempotent replays hit the
	// single MERGEd edge rather than creating a parallel one.
	assert.Equal(t, store.calls[0], store.calls[1])

	query := store.calls[1]
	assert.Contains(t, query, "MERGE (v)-[r:OFFERS]->(p)")
	guard := "CASE WHEN coalesce(r.rank, 0) >= $rank"
	assert.Equal(t, 2, strings.Count(query, guard),
		"confidence and rank must both be guarded against downgrades")
	assert.Contains(t, query, "ELSE $confidence END")
	assert.Contains(t, query, "ELSE $rank END")
}

func TestWriterCreateSchema(t *testing.T) {
	store := newMockStore()
	w := NewWriter(store, nil)

	require.NoError(t, w.CreateSchema(context.Background()))
	assert.Len(t, store.calls, len(schemaQueries))
}

func TestLazyStoreDialsOnce(t *testing.T) {
	inner := newMockStore()
	dials := 0
	lazy := NewLazyStore(func() (Store, error) {
		dials++
		return inner, nil
	})

	// Close before any query must not dial.
	require.NoError(t, lazy.Close(context.Background()))
	assert.Equal(t, 0, dials)

	_, err := lazy.Run(context.Background(), "RETURN 1", nil)
	require.NoError(t, err)
	_, err = lazy.Run(context.Background(), "RETURN 1", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, dials)

	require.NoError(t, lazy.Close(context.Background()))
	assert.True(t, inner.closed)
}
