package vendorgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/terasky/vendorgraph/pkg/config"
	"github.com/terasky/vendorgraph/pkg/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest documents from a JSON file",
	Long: `Ingest documents from a JSON file containing an array of objects with
source_id, vendor, products, types, date (RFC 3339) and text fields.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

type ingestFileEntry struct {
	SourceID string   `json:"source_id"`
	Vendor   string   `json:"vendor"`
	Products []string `json:"products"`
	Types    []string `json:"types"`
	Date     string   `json:"date"`
	Text     string   `json:"text"`
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	var entries []ingestFileEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return fmt.Errorf("parse input: %w", err)
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

	for i, entry := range entries {
		var date time.Time
		if entry.Date != "" {
			date, err = time.Parse(time.RFC3339, entry.Date)
			if err != nil {
				date, err = time.Parse("2006-01-02", entry.Date)
			}
			if err != nil {
				return fmt.Errorf("entry %d: bad date %q", i, entry.Date)
			}
		}

		err := engine.Ingest(ctx, ingest.SourceDocument{
			SourceID: entry.SourceID,
			Vendor:   entry.Vendor,
			Products: entry.Products,
			Types:    entry.Types,
			Date:     date,
			Text:     entry.Text,
		})
		if err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}

	fmt.Printf("Ingested %d documents\n", len(entries))
	return nil
}
