// Command advisor runs the support knowledge service.
//
// Usage:
//
//	advisor serve           start the HTTP API
//	advisor ingest <dir>    index a directory of documents
//
// Configuration comes from advisor.toml (override with ADVISOR_CONFIG) and
// ADVISOR_* env vars.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	advisor "github.com/shridharrathore/advisor-gpt-mvp"
	"github.com/shridharrathore/advisor-gpt-mvp/ingest"
	"github.com/shridharrathore/advisor-gpt-mvp/internal/api"
	"github.com/shridharrathore/advisor-gpt-mvp/internal/config"
	"github.com/shridharrathore/advisor-gpt-mvp/observer"
	"github.com/shridharrathore/advisor-gpt-mvp/provider/resolve"
	"github.com/shridharrathore/advisor-gpt-mvp/store/postgres"
	"github.com/shridharrathore/advisor-gpt-mvp/store/sqlite"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	// 1. Load and validate config
	cfg := config.Load(os.Getenv("ADVISOR_CONFIG"))
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	switch os.Args[1] {
	case "serve":
		if err := runServe(cfg, logger); err != nil {
			log.Fatal(err)
		}
	case "ingest":
		if len(os.Args) < 3 {
			usage()
			os.Exit(2)
		}
		if err := runIngest(cfg, logger, os.Args[2]); err != nil {
			log.Fatal(err)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: advisor serve | advisor ingest <dir>")
}

func runServe(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Create providers
	llm, err := resolve.Provider(resolve.Config{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.APIKey,
		Model:    cfg.LLM.Model,
		BaseURL:  cfg.LLM.BaseURL,
	})
	if err != nil {
		return err
	}
	llm = advisor.WithRetry(llm, advisor.RetryLogger(logger))
	embedding, err := resolve.EmbeddingProvider(resolve.EmbeddingConfig{
		Provider:   cfg.Embedding.Provider,
		APIKey:     cfg.Embedding.APIKey,
		Model:      cfg.Embedding.Model,
		BaseURL:    cfg.Embedding.BaseURL,
		Dimensions: cfg.Embedding.Dimensions,
	})
	if err != nil {
		return err
	}
	embedding = advisor.WithEmbeddingRetry(embedding, advisor.RetryLogger(logger))

	// 3. Create store
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Init(ctx); err != nil {
		return fmt.Errorf("init store: %w", err)
	}

	// 4. Observer (opt-in via config)
	var inst *observer.Instruments
	if cfg.Observer.Enabled {
		pricing := make(map[string]observer.ModelPricing, len(cfg.Observer.Pricing))
		for model, p := range cfg.Observer.Pricing {
			pricing[model] = observer.ModelPricing{InputPerMillion: p.Input, OutputPerMillion: p.Output}
		}

		var shutdown func(context.Context) error
		inst, shutdown, err = observer.Init(ctx, pricing)
		if err != nil {
			return fmt.Errorf("observer init: %w", err)
		}
		defer shutdown(context.Background())

		llm = observer.WrapProvider(llm, cfg.LLM.Model, inst)
		embedding = observer.WrapEmbedding(embedding, cfg.Embedding.Model, inst)
		logger.Info("observer enabled")
	}

	// 5. Build retriever + orchestrator
	var retriever advisor.Retriever = advisor.NewVectorRetriever(store, embedding,
		advisor.WithTopK(cfg.Retrieval.TopK),
		advisor.WithMinScore(float32(cfg.Retrieval.MinScore)),
		advisor.WithRetrieverLogger(logger),
	)
	if inst != nil {
		retriever = observer.WrapRetriever(retriever, inst)
	}

	orchestrator := advisor.NewOrchestrator(retriever, llm,
		advisor.WithSystemPrompt(cfg.Prompt.System),
		advisor.WithOrchestratorLogger(logger),
	)

	// 6. Serve
	server := api.NewServer(orchestrator, store,
		api.WithLogger(logger),
		api.WithAllowedOrigins(cfg.Server.AllowedOrigins),
	)
	return server.Run(ctx, cfg.Server.Addr)
}

func runIngest(cfg config.Config, logger *slog.Logger, dir string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	embedding, err := resolve.EmbeddingProvider(resolve.EmbeddingConfig{
		Provider:   cfg.Embedding.Provider,
		APIKey:     cfg.Embedding.APIKey,
		Model:      cfg.Embedding.Model,
		BaseURL:    cfg.Embedding.BaseURL,
		Dimensions: cfg.Embedding.Dimensions,
	})
	if err != nil {
		return err
	}
	embedding = advisor.WithEmbeddingRetry(embedding, advisor.RetryLogger(logger))

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Init(ctx); err != nil {
		return fmt.Errorf("init store: %w", err)
	}

	chunker, err := ingest.NewSeparatorChunker(cfg.Chunking.Size, cfg.Chunking.Overlap)
	if err != nil {
		return err
	}

	ingestor := ingest.NewIngestor(store, embedding, chunker, ingest.WithLogger(logger))
	report, err := ingestor.IngestDir(ctx, dir)
	if err != nil {
		return err
	}

	logger.Info("ingest complete",
		"files", len(report.Results),
		"passages", report.Passages(),
		"failures", len(report.Failures),
	)
	for _, f := range report.Failures {
		logger.Warn("ingest failure", "file", f.File, "error", f.Err)
	}
	if len(report.Failures) > 0 {
		return fmt.Errorf("ingest: %d files failed", len(report.Failures))
	}
	return nil
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (advisor.VectorStore, error) {
	switch cfg.Database.Driver {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return postgres.New(pool,
			postgres.WithEmbeddingDimension(cfg.Embedding.Dimensions),
		), nil
	default:
		return sqlite.New(cfg.Database.Path, sqlite.WithLogger(logger)), nil
	}
}
