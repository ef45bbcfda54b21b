package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terasky/vendorgraph/pkg/graph"
	"github.com/terasky/vendorgraph/pkg/types"
)

func fixedRanker(now time.Time) *Ranker {
	r := NewRanker(DefaultRankConfig(), nil)
	r.now = func() time.Time { return now }
	return r
}

func resultWith(chunks ...types.ChunkMeta) *types.SearchResult {
	r := types.EmptySearchResult()
	for i, meta := range chunks {
		r.Documents = append(r.Documents, "text")
		r.Metadatas = append(r.Metadatas, meta)
		r.Distances = append(r.Distances, 0.5)
		r.IDs = append(r.IDs, meta.SourceID+"#"+string(rune('0'+i)))
	}
	return r
}

func TestRankPromotesConnectedDocuments(t *testing.T) {
	now := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	r := fixedRanker(now)

	result := resultWith(
		types.ChunkMeta{SourceID: "plain"},
		types.ChunkMeta{SourceID: "connected"},
	)
	signals := []graph.ImportanceRow{
		{SourceID: "connected", ProductCount: 3, Date: now.AddDate(0, 0, -2)},
	}

	ranked := r.Rank(result, signals)
	require.Equal(t, 2, ranked.Len())
	// 0.5 + 0.1*3 + (0.2 - 2*0.01) beats plain 0.5.
	assert.Equal(t, "connected", ranked.Metadatas[0].SourceID)
}

func TestRankRecencyDecay(t *testing.T) {
	now := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	r := fixedRanker(now)

	result := resultWith(
		types.ChunkMeta{SourceID: "old"},
		types.ChunkMeta{SourceID: "new"},
	)
	signals := []graph.ImportanceRow{
		{SourceID: "old", Date: now.AddDate(0, 0, -100)},
		{SourceID: "new", Date: now.AddDate(0, 0, -1)},
	}

	ranked := r.Rank(result, signals)
	assert.Equal(t, "new", ranked.Metadatas[0].SourceID)

	// The boost bottoms out at zero, it never goes negative.
	oldScore := r.graphScore(map[string]graph.ImportanceRow{
		"old": {SourceID: "old", Date: now.AddDate(0, 0, -100)},
	}, "old")
	assert.Equal(t, 0.0, oldScore)
}

func TestRankDefaultRecencyWhenDateMissing(t *testing.T) {
	r := fixedRanker(time.Now())

	score := r.graphScore(map[string]graph.ImportanceRow{
		"e": {SourceID: "e", ProductCount: 2},
	}, "e")
	assert.InDelta(t, 0.1*2+0.05, score, 1e-9)
}

func TestRankIsLossless(t *testing.T) {
	r := fixedRanker(time.Now())

	result := resultWith(
		types.ChunkMeta{SourceID: "a", Chunk: 0},
		types.ChunkMeta{SourceID: "b", Chunk: 0},
		types.ChunkMeta{SourceID: "a", Chunk: 1},
	)

	ranked := r.Rank(result, nil)
	require.Equal(t, 3, ranked.Len())

	seen := map[string]int{}
	for _, id := range ranked.IDs {
		seen[id]++
	}
	for _, id := range result.IDs {
		assert.Equal(t, 1, seen[id], "chunk %s must appear exactly once", id)
	}
}

func TestRankKeepsChunksOfOneSourceAdjacent(t *testing.T) {
	now := time.Now()
	r := fixedRanker(now)

	result := resultWith(
		types.ChunkMeta{SourceID: "a", Chunk: 0},
		types.ChunkMeta{SourceID: "b", Chunk: 0},
		types.ChunkMeta{SourceID: "a", Chunk: 1},
	)
	signals := []graph.ImportanceRow{
		{SourceID: "b", ProductCount: 5, Date: now},
	}

	ranked := r.Rank(result, signals)
	require.Equal(t, 3, ranked.Len())
	assert.Equal(t, "b", ranked.Metadatas[0].SourceID)
	assert.Equal(t, "a", ranked.Metadatas[1].SourceID)
	assert.Equal(t, "a", ranked.Metadatas[2].SourceID)
	assert.Equal(t, 0, ranked.Metadatas[1].Chunk)
	assert.Equal(t, 1, ranked.Metadatas[2].Chunk)
}

func TestRankStableOnTies(t *testing.T) {
	r := fixedRanker(time.Now())

	result := resultWith(
		types.ChunkMeta{SourceID: "first"},
		types.ChunkMeta{SourceID: "second"},
		types.ChunkMeta{SourceID: "third"},
	)

	// No signals: every source scores its identical base, order must hold.
	ranked := r.Rank(result, nil)
	assert.Equal(t, "first", ranked.Metadatas[0].SourceID)
	assert.Equal(t, "second", ranked.Metadatas[1].SourceID)
	assert.Equal(t, "third", ranked.Metadatas[2].SourceID)
}

func TestRankEmptyResult(t *testing.T) {
	r := fixedRanker(time.Now())
	result := types.EmptySearchResult()
	ranked := r.Rank(result, nil)
	assert.Equal(t, 0, ranked.Len())
}

func TestRankBaseIsMaxChunkScore(t *testing.T) {
	now := time.Now()
	r := fixedRanker(now)

	result := types.EmptySearchResult()
	result.Documents = []string{"t1", "t2", "t3"}
	result.Metadatas = []types.ChunkMeta{
		{SourceID: "a", Chunk: 0},
		{SourceID: "a", Chunk: 1},
		{SourceID: "b", Chunk: 0},
	}
	result.Distances = []float64{0.2, 0.9, 0.6}
	result.IDs = []string{"a#0", "a#1", "b#0"}

	// Source a's best chunk (0.9) beats b's 0.6 even though a's first
	// chunk scores lower.
	ranked := r.Rank(result, nil)
	assert.Equal(t, "a", ranked.Metadatas[0].SourceID)
}
