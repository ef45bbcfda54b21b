package vendorgraph

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terasky/vendorgraph/pkg/ingest"
	"github.com/terasky/vendorgraph/pkg/types"
)

type fakeGraphStore struct {
	rows    map[string][]map[string]any
	queries []string
	closed  bool
}

func newFakeGraphStore() *fakeGraphStore {
	return &fakeGraphStore{rows: map[string][]map[string]any{}}
}

func (f *fakeGraphStore) Run(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	f.queries = append(f.queries, query)
	for fragment, rows := range f.rows {
		if strings.Contains(query, fragment) {
			return rows, nil
		}
	}
	return nil, nil
}

func (f *fakeGraphStore) Close(ctx context.Context) error {
	f.closed = true
	return nil
}

type fakeVectors struct {
	docs   []types.Document
	closed bool
}

func (f *fakeVectors) Query(ctx context.Context, embedding []float32, topK int, filters types.FilterSet) (*types.SearchResult, error) {
	r := types.EmptySearchResult()
	for _, d := range f.docs {
		r.Documents = append(r.Documents, d.Text)
		r.Metadatas = append(r.Metadatas, types.ChunkMeta{SourceID: d.SourceID, Vendor: d.Vendor, Chunk: d.Chunk})
		r.Distances = append(r.Distances, 0.9)
		r.IDs = append(r.IDs, d.ID)
	}
	return r, nil
}

func (f *fakeVectors) GetBySourceIDs(ctx context.Context, sourceIDs []string) (*types.SearchResult, error) {
	return types.EmptySearchResult(), nil
}

func (f *fakeVectors) Add(ctx context.Context, docs []types.Document) error {
	f.docs = append(f.docs, docs...)
	return nil
}

func (f *fakeVectors) All(ctx context.Context, fn func(types.Document) error) error {
	for _, d := range f.docs {
		if err := fn(d); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeVectors) Count(ctx context.Context) (int, error) { return len(f.docs), nil }
func (f *fakeVectors) Close() error {
	f.closed = true
	return nil
}

type fakeEmbedder struct{ closed bool }

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (f *fakeEmbedder) Dimensions() int { return 2 }
func (f *fakeEmbedder) Close() error {
	f.closed = true
	return nil
}

func newTestEngine(t *testing.T) (Engine, *fakeGraphStore, *fakeVectors) {
	t.Helper()
	gs := newFakeGraphStore()
	vs := &fakeVectors{}
	e, err := New(gs, vs, &fakeEmbedder{}, nil, Options{}, nil)
	require.NoError(t, err)
	return e, gs, vs
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(nil, &fakeVectors{}, &fakeEmbedder{}, nil, Options{}, nil)
	assert.Error(t, err)
	_, err = New(newFakeGraphStore(), nil, &fakeEmbedder{}, nil, Options{}, nil)
	assert.Error(t, err)
	_, err = New(newFakeGraphStore(), &fakeVectors{}, nil, nil, Options{}, nil)
	assert.Error(t, err)
}

func TestEngineIngestThenSearch(t *testing.T) {
	e, gs, vs := newTestEngine(t)
	ctx := context.Background()

	err := e.Ingest(ctx, ingest.SourceDocument{
		SourceID: "e1",
		Vendor:   "hashicorp",
		Products: []string{"vault"},
		Text:     "HashiCorp announces Vault improvements for secret rotation.",
	})
	require.NoError(t, err)
	require.Len(t, vs.docs, 1)

	results, err := e.Search(ctx, "recent vault news from hashicorp")
	require.NoError(t, err)
	assert.Equal(t, 1, results.TotalResults)
	assert.Equal(t, "e1", results.Results[0].Metadata.SourceID)

	// The graph saw both the ingest merges and the search reads.
	merged := false
	for _, q := range gs.queries {
		if strings.Contains(q, "MERGE (d:Document") {
			merged = true
		}
	}
	assert.True(t, merged)
}

func TestEngineExtractParams(t *testing.T) {
	e, _, _ := newTestEngine(t)

	params := e.ExtractParams("recent security updates from hashicorp")
	assert.Equal(t, "hashicorp", params.Vendor)
	assert.Equal(t, "security", params.Type)
	assert.Equal(t, 30, params.DaySpan)
}

func TestEngineVendorProducts(t *testing.T) {
	e, gs, _ := newTestEngine(t)
	gs.rows["OFFERS"] = []map[string]any{
		{"vendor": "hashicorp", "product": "vault", "confidence": "high"},
	}

	products, err := e.VendorProducts(context.Background(), "hashicorp")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, types.ConfidenceHigh, products[0].Confidence)
}

func TestEngineStats(t *testing.T) {
	e, gs, vs := newTestEngine(t)
	gs.rows["labels(n)[0]"] = []map[string]any{
		{"kind": "Vendor", "count": int64(2)},
		{"kind": "Document", "count": int64(5)},
	}
	gs.rows["type(r)"] = []map[string]any{
		{"kind": "FROM", "count": int64(5)},
	}
	vs.docs = append(vs.docs, types.Document{ID: "a#0", SourceID: "a"})

	stats, err := e.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), stats.Graph.NodeCount)
	assert.Equal(t, int64(5), stats.Graph.EdgeCount)
	assert.Equal(t, 1, stats.Chunks)
}

func TestEngineClose(t *testing.T) {
	gs := newFakeGraphStore()
	vs := &fakeVectors{}
	emb := &fakeEmbedder{}
	e, err := New(gs, vs, emb, nil, Options{}, nil)
	require.NoError(t, err)

	require.NoError(t, e.Close(context.Background()))
	assert.True(t, gs.closed)
	assert.True(t, vs.closed)
	assert.True(t, emb.closed)
}
