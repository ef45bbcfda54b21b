package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/terasky/vendorgraph/pkg/embedder"
	"github.com/terasky/vendorgraph/pkg/graph"
	"github.com/terasky/vendorgraph/pkg/relationship"
	"github.com/terasky/vendorgraph/pkg/types"
	"github.com/terasky/vendorgraph/pkg/vector"
)

// SourceDocument is one communication to ingest, before chunking.
type SourceDocument struct {
	// SourceID identifies the communication. Empty means generate one.
	SourceID string
	Vendor   string
	Products []string
	Types    []string
	Date     time.Time
	Text     string
}

// Options tunes ingestion.
type Options struct {
	ChunkSize    int
	ChunkOverlap int
}

// Ingestor writes source documents to the vector store and the graph.
type Ingestor struct {
	graph     *graph.Writer
	vectors   vector.Store
	embedder  embedder.Client
	validator *relationship.Validator
	opts      Options
	logger    *slog.Logger
}

// NewIngestor wires an ingestor over both stores.
func NewIngestor(gw *graph.Writer, vs vector.Store, emb embedder.Client, validator *relationship.Validator, opts Options, logger *slog.Logger) *Ingestor {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaultChunkSize
	}
	if opts.ChunkOverlap <= 0 {
		opts.ChunkOverlap = defaultChunkOverlap
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{
		graph:     gw,
		vectors:   vs,
		embedder:  emb,
		validator: validator,
		opts:      opts,
		logger:    logger,
	}
}

// Ingest chunks, embeds and indexes one source document, then mirrors its
// entities into the graph. Re-ingesting the same source id replaces its
// chunks and re-merges its graph nodes.
func (in *Ingestor) Ingest(ctx context.Context, src SourceDocument) error {
	if src.SourceID == "" {
		src.SourceID = uuid.NewString()
	}
	if src.Text == "" {
		return fmt.Errorf("ingest %q: empty text", src.SourceID)
	}

	chunks := ChunkText(src.Text, in.opts.ChunkSize, in.opts.ChunkOverlap)
	embeddings, err := in.embedder.Embed(ctx, chunks)
	if err != nil {
		return fmt.Errorf("ingest %q: embed: %w", src.SourceID, err)
	}
	if len(embeddings) != len(chunks) {
		return fmt.Errorf("ingest %q: got %d embeddings for %d chunks", src.SourceID, len(embeddings), len(chunks))
	}

	docs := make([]types.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = types.Document{
			ID:        fmt.Sprintf("%s#%d", src.SourceID, i),
			SourceID:  src.SourceID,
			Vendor:    types.NormalizeName(src.Vendor),
			Products:  normalizeAll(src.Products),
			Types:     normalizeAll(src.Types),
			Date:      src.Date,
			Chunk:     i,
			Text:      chunk,
			Embedding: embeddings[i],
		}
	}
	if err := in.vectors.Add(ctx, docs); err != nil {
		return fmt.Errorf("ingest %q: index: %w", src.SourceID, err)
	}

	if err := in.writeGraph(ctx, src); err != nil {
		return err
	}

	in.logger.Info("document ingested",
		"source_id", src.SourceID, "vendor", src.Vendor, "chunks", len(chunks))
	return nil
}

// writeGraph merges the document's nodes and edges. Document-to-entity
// edges are unconditional; the vendor-offers-product edge is persisted
// only when the relationship validates at medium confidence or better.
func (in *Ingestor) writeGraph(ctx context.Context, src SourceDocument) error {
	vendor := types.NormalizeName(src.Vendor)

	date := ""
	if !src.Date.IsZero() {
		date = src.Date.Format("2006-01-02")
	}
	docType := ""
	if len(src.Types) > 0 {
		docType = types.NormalizeName(src.Types[0])
	}
	if err := in.graph.MergeDocument(ctx, src.SourceID, date, docType); err != nil {
		return err
	}

	if vendor != "" {
		if err := in.graph.MergeVendor(ctx, vendor); err != nil {
			return err
		}
		if err := in.graph.MergeFrom(ctx, src.SourceID, vendor); err != nil {
			return err
		}
	}

	for _, product := range normalizeAll(src.Products) {
		if err := in.graph.MergeProduct(ctx, product); err != nil {
			return err
		}
		if err := in.graph.MergeAbout(ctx, src.SourceID, product); err != nil {
			return err
		}
		if vendor == "" {
			continue
		}

		confidence := in.validator.Validate(vendor, product, src.Text)
		if !confidence.Persistable() {
			in.logger.Debug("relationship below persistence threshold",
				"vendor", vendor, "product", product, "confidence", string(confidence))
			continue
		}
		if err := in.graph.MergeOffers(ctx, vendor, product, confidence); err != nil {
			return err
		}
	}
	return nil
}

// ImportAll rebuilds the graph from every document already in the vector
// store. Chunks are regrouped by source id so each source is written once.
func (in *Ingestor) ImportAll(ctx context.Context) (int, error) {
	sources := map[string]*SourceDocument{}
	var order []string

	err := in.vectors.All(ctx, func(doc types.Document) error {
		src, ok := sources[doc.SourceID]
		if !ok {
			src = &SourceDocument{
				SourceID: doc.SourceID,
				Vendor:   doc.Vendor,
				Products: doc.Products,
				Types:    doc.Types,
				Date:     doc.Date,
			}
			sources[doc.SourceID] = src
			order = append(order, doc.SourceID)
		}
		src.Text += doc.Text + "\n"
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("import: scan store: %w", err)
	}

	for _, id := range order {
		if err := in.writeGraph(ctx, *sources[id]); err != nil {
			return 0, fmt.Errorf("import %q: %w", id, err)
		}
	}
	in.logger.Info("graph rebuilt from store", "sources", len(order))
	return len(order), nil
}

func normalizeAll(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if n := types.NormalizeName(name); n != "" {
			out = append(out, n)
		}
	}
	return out
}
