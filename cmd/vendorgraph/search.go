package vendorgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/terasky/vendorgraph/pkg/config"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Run a hybrid search from the command line",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

var searchParamsOnly bool

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().BoolVar(&searchParamsOnly, "params-only", false, "Only show the extracted filters, do not search")
}

func runSearch(cmd *cobra.Command, args []string) error {
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

	query := strings.Join(args, " ")

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if searchParamsOnly {
		return enc.Encode(engine.ExtractParams(query))
	}

	results, err := engine.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	return enc.Encode(results)
}
