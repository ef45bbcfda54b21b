package types

import (
	"errors"
	"strings"
	"time"
)

// Graph node labels. The schema is fixed: three node kinds, three edge kinds.
type NodeKind string

const (
	VendorNode   NodeKind = "Vendor"
	ProductNode  NodeKind = "Product"
	DocumentNode NodeKind = "Document"
)

// Graph edge labels.
type EdgeKind string

const (
	// OffersEdge is derived (Vendor)-[:OFFERS]->(Product); it carries a
	// confidence attribute and exists only when validation assigned at
	// least medium confidence.
	OffersEdge EdgeKind = "OFFERS"
	// FromEdge is structural (Document)-[:FROM]->(Vendor).
	FromEdge EdgeKind = "FROM"
	// AboutEdge is structural (Document)-[:ABOUT]->(Product).
	AboutEdge EdgeKind = "ABOUT"
)

var (
	// ErrEmptyID is returned when a document is missing its chunk id.
	ErrEmptyID = errors.New("empty document id")
	// ErrEmptySourceID is returned when a document carries no source id.
	ErrEmptySourceID = errors.New("empty source id")
)

// Document is one immutable retrievable chunk of a vendor communication.
// Produced once by ingestion, never mutated afterwards.
type Document struct {
	ID        string    `json:"id"`
	SourceID  string    `json:"source_id"`
	Vendor    string    `json:"vendor"`
	Products  []string  `json:"products,omitempty"`
	Types     []string  `json:"types,omitempty"`
	Date      time.Time `json:"date"`
	Chunk     int       `json:"chunk"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding,omitempty"`
}

// Validate checks the identity fields a document must carry before it can
// be indexed or written to the graph.
func (d *Document) Validate() error {
	if d.ID == "" {
		return ErrEmptyID
	}
	if d.SourceID == "" {
		return ErrEmptySourceID
	}
	return nil
}

// ChunkMeta is the metadata stored alongside each chunk in the vector
// index. Product and Type hold comma-separated lists when a chunk mentions
// more than one.
type ChunkMeta struct {
	SourceID string `json:"source_id"`
	Vendor   string `json:"vendor,omitempty"`
	Product  string `json:"product,omitempty"`
	Type     string `json:"type,omitempty"`
	Date     string `json:"date,omitempty"`
	Chunk    int    `json:"chunk"`
}

// ProductList splits the comma-separated product field.
func (m ChunkMeta) ProductList() []string {
	return splitList(m.Product)
}

// TypeList splits the comma-separated type field.
func (m ChunkMeta) TypeList() []string {
	return splitList(m.Type)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NormalizeName lowercases and trims an entity name. Vendor and product
// identity is the normalized name.
func NormalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SearchResult is the column-oriented result set returned by the vector
// store and passed through retrieval and ranking. Distances carry
// similarity scores where higher means a better match; hydrated fallback
// results use a fixed placeholder score.
type SearchResult struct {
	Documents []string    `json:"documents"`
	Metadatas []ChunkMeta `json:"metadatas"`
	Distances []float64   `json:"distances"`
	IDs       []string    `json:"ids"`
}

// EmptySearchResult returns a well-formed zero-hit result. Empty results
// are data, not errors.
func EmptySearchResult() *SearchResult {
	return &SearchResult{
		Documents: []string{},
		Metadatas: []ChunkMeta{},
		Distances: []float64{},
		IDs:       []string{},
	}
}

// Len returns the number of chunks in the result set.
func (r *SearchResult) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Documents)
}

// SourceIDs returns the distinct source ids in first-seen order.
func (r *SearchResult) SourceIDs() []string {
	if r == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(r.Metadatas))
	ids := make([]string, 0, len(r.Metadatas))
	for _, meta := range r.Metadatas {
		if meta.SourceID == "" {
			continue
		}
		if _, ok := seen[meta.SourceID]; ok {
			continue
		}
		seen[meta.SourceID] = struct{}{}
		ids = append(ids, meta.SourceID)
	}
	return ids
}

// EntityCount pairs an entity name with how many result documents link to it.
type EntityCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// RelatedEntities aggregates the products and vendors linked to a result
// set through the graph.
type RelatedEntities struct {
	Products []EntityCount `json:"products"`
	Vendors  []EntityCount `json:"vendors"`
}

// EmptyRelatedEntities returns a well-formed zero-value aggregate.
func EmptyRelatedEntities() RelatedEntities {
	return RelatedEntities{Products: []EntityCount{}, Vendors: []EntityCount{}}
}

// RetrievalResult is what the hybrid retriever hands to the ranker: the
// (possibly fallback-hydrated) chunk set plus graph-derived related
// entities.
type RetrievalResult struct {
	SearchResult
	Related RelatedEntities `json:"related_entities"`
}

// VendorProduct is one row of the by-confidence vendor product listing.
type VendorProduct struct {
	Vendor     string     `json:"vendor"`
	Product    string     `json:"product"`
	Confidence Confidence `json:"confidence"`
}

// GraphStats summarizes graph contents for the stats endpoint.
type GraphStats struct {
	NodeCount   int64            `json:"node_count"`
	EdgeCount   int64            `json:"edge_count"`
	NodesByKind map[string]int64 `json:"nodes_by_kind"`
	EdgesByKind map[string]int64 `json:"edges_by_kind"`
	LastUpdated time.Time        `json:"last_updated"`
}

// ContextKey is the type for values vendorgraph stores on a context.
type ContextKey string

const (
	ContextKeyUserID        ContextKey = "user_id"
	ContextKeySessionID     ContextKey = "session_id"
	ContextKeyRequestSource ContextKey = "request_source"
)
