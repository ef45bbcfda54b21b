package ingest

import (
	"context"
	"fmt"

	"github.com/terasky/vendorgraph/pkg/relationship"
	"github.com/terasky/vendorgraph/pkg/types"
)

// Reconcile removes persisted vendor-offers-product edges that claim
// catalog backing the catalog no longer provides. Only high-confidence
// edges are checked: they assert catalog membership, while medium edges
// were derived from document text and stand on their own.
func (in *Ingestor) Reconcile(ctx context.Context, catalog *relationship.Catalog) (int, error) {
	edges, err := in.graph.ListOffers(ctx)
	if err != nil {
		return 0, fmt.Errorf("reconcile: %w", err)
	}

	removed := 0
	for _, edge := range edges {
		if edge.Confidence != types.ConfidenceHigh {
			continue
		}
		if catalog.Contains(edge.Vendor, edge.Product) {
			continue
		}
		if err := in.graph.DeleteOffers(ctx, edge.Vendor, edge.Product); err != nil {
			return removed, fmt.Errorf("reconcile: %w", err)
		}
		in.logger.Info("stale relationship removed",
			"vendor", edge.Vendor, "product", edge.Product)
		removed++
	}
	return removed, nil
}

// Reset clears the graph and reinstalls the schema. The vector store is
// left untouched, ImportAll can rebuild the graph from it.
func (in *Ingestor) Reset(ctx context.Context) error {
	if err := in.graph.Reset(ctx); err != nil {
		return err
	}
	return in.graph.CreateSchema(ctx)
}
