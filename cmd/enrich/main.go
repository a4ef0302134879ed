// Command main fills in director and top cast for catalog movies that
// have never been enriched.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"panoram/internal/bootstrap"
	"panoram/internal/config"
	"panoram/internal/enrich"
	"panoram/internal/middleware"
	"panoram/internal/repository"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.TMDBAPIKey == "" {
		log.Fatal("TMDB_API_KEY is required for enrichment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.InitRuntime(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	defer func() {
		if err := rt.Close(context.Background()); err != nil {
			log.Printf("Error closing connections: %v", err)
		}
	}()

	client := enrich.NewClient(cfg.TMDBAPIKey, cfg.TMDBBaseURL, cfg.TMDBLanguage)
	runner := enrich.NewRunner(repository.NewMovieRepository(rt.DB), client, cfg.EnrichInterval())

	report, err := runner.Run(ctx)
	middleware.Logger.Info("Enrichment finished",
		slog.Int("scanned", report.Scanned),
		slog.Int("updated", report.Updated),
		slog.Int("failed", report.Failed),
	)
	if err != nil {
		middleware.Logger.Error("Enrichment aborted", slog.String("error", err.Error()))
		return 1
	}
	return 0
}
