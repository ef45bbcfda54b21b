package vendorgraph

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/terasky/vendorgraph"
	"github.com/terasky/vendorgraph/pkg/config"
	"github.com/terasky/vendorgraph/pkg/embedder"
	"github.com/terasky/vendorgraph/pkg/graph"
	"github.com/terasky/vendorgraph/pkg/ingest"
	"github.com/terasky/vendorgraph/pkg/logger"
	"github.com/terasky/vendorgraph/pkg/relationship"
	"github.com/terasky/vendorgraph/pkg/search"
	"github.com/terasky/vendorgraph/pkg/telemetry"
	"github.com/terasky/vendorgraph/pkg/vector"
)

// buildLogger creates the process logger, spooling errors to Parquet when
// telemetry is configured.
func buildLogger(cfg *config.Config) (*slog.Logger, error) {
	level := logger.ParseLevel(cfg.Log.Level)
	handler := logger.NewColorHandler(os.Stdout, level)

	if cfg.Telemetry.ParquetPath != "" {
		spool, err := telemetry.NewParquetHandler(handler, cfg.Telemetry.ParquetPath)
		if err != nil {
			return nil, fmt.Errorf("telemetry setup: %w", err)
		}
		return slog.New(spool), nil
	}
	return slog.New(handler), nil
}

// buildEngine wires every collaborator from config.
func buildEngine(ctx context.Context, cfg *config.Config, log *slog.Logger) (vendorgraph.Engine, error) {
	// The graph connection is dialed on first query so commands that
	// never touch the graph do not need it reachable.
	var graphStore graph.Store = graph.NewLazyStore(func() (graph.Store, error) {
		dialCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return graph.NewNeo4jStore(dialCtx, cfg.Graph.URI, cfg.Graph.Username, cfg.Graph.Password, cfg.Graph.Database)
	})

	if cfg.CircuitBreaker.Enabled {
		breakerCfg := graph.DefaultBreakerConfig()
		if cfg.CircuitBreaker.MaxRequests > 0 {
			breakerCfg.MaxRequests = cfg.CircuitBreaker.MaxRequests
		}
		if cfg.CircuitBreaker.Interval > 0 {
			breakerCfg.Interval = time.Duration(cfg.CircuitBreaker.Interval) * time.Second
		}
		if cfg.CircuitBreaker.Timeout > 0 {
			breakerCfg.Timeout = time.Duration(cfg.CircuitBreaker.Timeout) * time.Second
		}
		if cfg.CircuitBreaker.ReadyToTripRatio > 0 {
			breakerCfg.ReadyToTripRatio = cfg.CircuitBreaker.ReadyToTripRatio
		}
		graphStore = graph.NewBreakerStore(graphStore, breakerCfg, log)
	}

	vectors, err := vector.OpenBadgerStore(cfg.Vector.Path, log)
	if err != nil {
		graphStore.Close(ctx)
		return nil, fmt.Errorf("open vector store: %w", err)
	}

	emb, err := buildEmbedder(cfg)
	if err != nil {
		vectors.Close()
		graphStore.Close(ctx)
		return nil, err
	}

	catalog, err := relationship.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		log.Warn("catalog unavailable, relationships cap at medium confidence",
			"path", cfg.Catalog.Path, "error", err)
		catalog = relationship.EmptyCatalog()
	}

	opts := vendorgraph.Options{
		Search: search.Config{
			TopK:         cfg.Search.TopK,
			Overfetch:    cfg.Search.Overfetch,
			Workers:      cfg.Search.Workers,
			StoreTimeout: time.Duration(cfg.Search.TimeoutSecs) * time.Second,
		},
		Ingest:            ingest.Options{},
		VendorProductsTTL: time.Duration(cfg.Search.CacheMinutes) * time.Minute,
	}

	return vendorgraph.New(graphStore, vectors, emb, catalog, opts, log)
}

func buildEmbedder(cfg *config.Config) (embedder.Client, error) {
	embCfg := embedder.Config{
		Model:      cfg.Embedding.Model,
		BaseURL:    cfg.Embedding.BaseURL,
		Dimensions: cfg.Embedding.Dimensions,
	}

	switch cfg.Embedding.Provider {
	case "embedeverything":
		return embedder.NewEmbedEverythingClient(embCfg)
	case "openai", "":
		return embedder.NewOpenAIClient(cfg.Embedding.APIKey, embCfg)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}
}
