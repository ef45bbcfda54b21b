package graph

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/terasky/vendorgraph/pkg/types"
)

// Writer performs the mutating graph operations used by ingestion and
// maintenance. It shares a Store with the Querier but carries none of the
// read-side caching.
type Writer struct {
	store  Store
	logger *slog.Logger
}

// NewWriter creates a writer over the given store.
func NewWriter(store Store, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{store: store, logger: logger}
}

// CreateSchema installs uniqueness constraints and indexes. Each statement
// uses IF NOT EXISTS so the call is idempotent.
func (w *Writer) CreateSchema(ctx context.Context) error {
	for _, query := range schemaQueries {
		if _, err := w.store.Run(ctx, query, nil); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// MergeVendor ensures the vendor node exists.
func (w *Writer) MergeVendor(ctx context.Context, name string) error {
	if name == "" {
		return nil
	}
	_, err := w.store.Run(ctx, mergeVendorQuery, map[string]any{"name": name})
	if err != nil {
		return fmt.Errorf("merge vendor %q: %w", name, err)
	}
	return nil
}

// MergeProduct ensures the product node exists.
func (w *Writer) MergeProduct(ctx context.Context, name string) error {
	if name == "" {
		return nil
	}
	_, err := w.store.Run(ctx, mergeProductQuery, map[string]any{"name": name})
	if err != nil {
		return fmt.Errorf("merge product %q: %w", name, err)
	}
	return nil
}

// MergeDocument ensures the document node exists, refreshing its date and
// type on re-import.
func (w *Writer) MergeDocument(ctx context.Context, sourceID, date, docType string) error {
	if sourceID == "" {
		return types.ErrEmptySourceID
	}
	_, err := w.store.Run(ctx, mergeDocumentQuery, map[string]any{
		"id":   sourceID,
		"date": date,
		"type": docType,
	})
	if err != nil {
		return fmt.Errorf("merge document %q: %w", sourceID, err)
	}
	return nil
}

// MergeFrom links a document to the vendor it came from.
func (w *Writer) MergeFrom(ctx context.Context, sourceID, vendor string) error {
	_, err := w.store.Run(ctx, mergeFromEdgeQuery, map[string]any{
		"id":     sourceID,
		"vendor": vendor,
	})
	if err != nil {
		return fmt.Errorf("merge FROM %q->%q: %w", sourceID, vendor, err)
	}
	return nil
}

// MergeAbout links a document to a product it mentions.
func (w *Writer) MergeAbout(ctx context.Context, sourceID, product string) error {
	_, err := w.store.Run(ctx, mergeAboutEdgeQuery, map[string]any{
		"id":      sourceID,
		"product": product,
	})
	if err != nil {
		return fmt.Errorf("merge ABOUT %q->%q: %w", sourceID, product, err)
	}
	return nil
}

// MergeOffers upserts the vendor-offers-product edge. The upsert is
// monotonic: an existing edge with an equal or stronger confidence keeps
// it, a weaker one is upgraded.
func (w *Writer) MergeOffers(ctx context.Context, vendor, product string, confidence types.Confidence) error {
	if !confidence.Persistable() {
		return nil
	}
	_, err := w.store.Run(ctx, mergeOffersQuery, map[string]any{
		"vendor":     vendor,
		"product":    product,
		"confidence": string(confidence),
		"rank":       confidence.Rank(),
	})
	if err != nil {
		return fmt.Errorf("merge OFFERS %q->%q: %w", vendor, product, err)
	}
	return nil
}

// ListOffers returns every persisted vendor-product edge.
func (w *Writer) ListOffers(ctx context.Context) ([]types.VendorProduct, error) {
	rows, err := w.store.Run(ctx, listOffersQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("list OFFERS: %w", err)
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

// DeleteOffers removes the edge for one vendor-product pair.
func (w *Writer) DeleteOffers(ctx context.Context, vendor, product string) error {
	_, err := w.store.Run(ctx, deleteOffersQuery, map[string]any{
		"vendor":  vendor,
		"product": product,
	})
	if err != nil {
		return fmt.Errorf("delete OFFERS %q->%q: %w", vendor, product, err)
	}
	return nil
}

// Reset deletes every vendor, product and document node along with their
// relationships. Destructive and meant for tests and rebuilds.
func (w *Writer) Reset(ctx context.Context) error {
	if _, err := w.store.Run(ctx, resetQuery, nil); err != nil {
		return fmt.Errorf("reset graph: %w", err)
	}
	w.logger.Warn("graph reset, all nodes deleted")
	return nil
}
