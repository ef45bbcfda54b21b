package search

import "github.com/terasky/vendorgraph/pkg/types"

// FormattedHit is one chunk of a retrieval result flattened for API
// responses.
type FormattedHit struct {
	Document string          `json:"document"`
	Metadata types.ChunkMeta `json:"metadata"`
	Score    float64         `json:"score"`
}

// FormattedResults is the API-facing shape of a retrieval result.
type FormattedResults struct {
	Results         []FormattedHit        `json:"results"`
	RelatedEntities types.RelatedEntities `json:"related_entities"`
	TotalResults    int                   `json:"total_results"`
}

// Format flattens a retrieval result into the response shape. A missing
// score defaults to zero rather than dropping the hit.
func Format(result *types.RetrievalResult) *FormattedResults {
	hits := make([]FormattedHit, 0, result.Len())
	for i := range result.Documents {
		score := 0.0
		if i < len(result.Distances) {
			score = result.Distances[i]
		}
		hits = append(hits, FormattedHit{
			Document: result.Documents[i],
			Metadata: result.Metadatas[i],
			Score:    score,
		})
	}
	return &FormattedResults{
		Results:         hits,
		RelatedEntities: result.Related,
		TotalResults:    len(hits),
	}
}
