package vendorgraph

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/terasky/vendorgraph/pkg/config"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Remove catalog-backed relationships the catalog no longer contains",
	RunE:  runReconcile,
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Rebuild the graph from the vector store contents",
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(importCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := buildLogger(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	engine, err := buildEngine(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize engine: %w", err)
	}
	defer engine.Close(context.Background())

	removed, err := engine.Reconcile(ctx)
	if err != nil {
		return fmt.Errorf("reconcile failed: %w", err)
	}
	fmt.Printf("Removed %d stale relationships\n", removed)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := buildLogger(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	engine, err := buildEngine(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize engine: %w", err)
	}
	defer engine.Close(context.Background())

	count, err := engine.ImportAll(ctx)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	fmt.Printf("Imported %d source documents into the graph\n", count)
	return nil
}
