package search

import (
	"log/slog"
	"sort"
	"time"

	"github.com/terasky/vendorgraph/pkg/graph"
	"github.com/terasky/vendorgraph/pkg/types"
)

// RankConfig holds the weights combining similarity with graph signals.
type RankConfig struct {
	// ProductWeight scales the number of products a document covers.
	ProductWeight float64
	// RecencyCeiling is the boost for a document published today; it
	// decays by RecencyDecay per day and bottoms out at zero.
	RecencyCeiling float64
	RecencyDecay   float64
	// DefaultRecency is used when a document in the graph has no date.
	DefaultRecency float64
}

// DefaultRankConfig returns the production weights.
func DefaultRankConfig() RankConfig {
	return RankConfig{
		ProductWeight:  0.1,
		RecencyCeiling: 0.2,
		RecencyDecay:   0.01,
		DefaultRecency: 0.05,
	}
}

// Ranker reorders search results using graph signals. Ranking happens at
// source-document granularity and is rebuilt at chunk granularity, so all
// chunks of one source stay adjacent.
type Ranker struct {
	config RankConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewRanker creates a ranker. Zero-valued config fields take defaults.
func NewRanker(config RankConfig, logger *slog.Logger) *Ranker {
	d := DefaultRankConfig()
	if config.ProductWeight == 0 {
		config.ProductWeight = d.ProductWeight
	}
	if config.RecencyCeiling == 0 {
		config.RecencyCeiling = d.RecencyCeiling
	}
	if config.RecencyDecay == 0 {
		config.RecencyDecay = d.RecencyDecay
	}
	if config.DefaultRecency == 0 {
		config.DefaultRecency = d.DefaultRecency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ranker{config: config, logger: logger, now: time.Now}
}

// Rank reorders the result by combined score. The operation is lossless:
// every input chunk appears exactly once in the output, sources with no
// graph signal keep their similarity score alone, and equal scores keep
// their original relative order.
func (r *Ranker) Rank(result *types.SearchResult, signals []graph.ImportanceRow) *types.SearchResult {
	if result.Len() == 0 || len(result.Metadatas) != result.Len() {
		return result
	}

	bySource := make(map[string]graph.ImportanceRow, len(signals))
	for _, row := range signals {
		bySource[row.SourceID] = row
	}

	type sourceRank struct {
		id    string
		score float64
	}

	order := result.SourceIDs()
	ranks := make([]sourceRank, 0, len(order))
	for _, sourceID := range order {
		base := 0.0
		for i, meta := range result.Metadatas {
			if meta.SourceID == sourceID && result.Distances[i] > base {
				base = result.Distances[i]
			}
		}
		ranks = append(ranks, sourceRank{
			id:    sourceID,
			score: base + r.graphScore(bySource, sourceID),
		})
	}

	sort.SliceStable(ranks, func(i, j int) bool {
		return ranks[i].score > ranks[j].score
	})

	out := types.EmptySearchResult()
	for _, rank := range ranks {
		for i, meta := range result.Metadatas {
			if meta.SourceID != rank.id {
				continue
			}
			out.Documents = append(out.Documents, result.Documents[i])
			out.Metadatas = append(out.Metadatas, meta)
			out.Distances = append(out.Distances, result.Distances[i])
			out.IDs = append(out.IDs, result.IDs[i])
		}
	}
	return out
}

func (r *Ranker) graphScore(bySource map[string]graph.ImportanceRow, sourceID string) float64 {
	row, ok := bySource[sourceID]
	if !ok {
		return 0
	}

	score := r.config.ProductWeight * float64(row.ProductCount)
	if row.Date.IsZero() {
		return score + r.config.DefaultRecency
	}

	days := r.now().Sub(row.Date).Hours() / 24
	boost := r.config.RecencyCeiling - days*r.config.RecencyDecay
	if boost < 0 {
		boost = 0
	}
	return score + boost
}
