package enrich

import (
	"context"
	"log/slog"
	"time"

	"panoram/internal/models"
	"panoram/internal/observability"

	"golang.org/x/time/rate"
)

// CreditsFetcher is implemented by Client.
type CreditsFetcher interface {
	Credits(ctx context.Context, movieID int64) (*CreditsResponse, error)
}

// MovieStore is the slice of the catalog the job reads and writes.
type MovieStore interface {
	ListUnenriched(ctx context.Context) ([]models.Movie, error)
	SetCredits(ctx context.Context, id int64, director string, actors []string) error
}

// Report summarizes one run.
type Report struct {
	Scanned int
	Updated int
	Failed  int
}

// Runner walks the movies that have no cast yet and fills in credits.
// It must not run concurrently with itself.
type Runner struct {
	movies  MovieStore
	fetcher CreditsFetcher
	limiter *rate.Limiter
}

// NewRunner returns a Runner that issues at most one fetch per interval.
// A zero interval disables throttling.
func NewRunner(movies MovieStore, fetcher CreditsFetcher, interval time.Duration) *Runner {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Runner{
		movies:  movies,
		fetcher: fetcher,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Run enriches every pending movie. Per-movie failures are logged and
// skipped; only listing failures and cancellation abort the run.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	var report Report

	pending, err := r.movies.ListUnenriched(ctx)
	if err != nil {
		return report, err
	}
	slog.InfoContext(ctx, "enrichment started", slog.Int("pending", len(pending)))

	for _, movie := range pending {
		report.Scanned++
		if err := r.limiter.Wait(ctx); err != nil {
			return report, err
		}

		resp, err := r.fetcher.Credits(ctx, movie.ID)
		if err != nil {
			report.Failed++
			observability.EnrichmentOutcomes.WithLabelValues("fetch_failed").Inc()
			slog.WarnContext(ctx, "skipping movie, credits fetch failed",
				slog.Int64("movie_id", movie.ID),
				slog.String("title", movie.Title),
				slog.String("error", err.Error()),
			)
			continue
		}

		credits := ExtractCredits(resp)
		if err := r.movies.SetCredits(ctx, movie.ID, credits.Director, credits.Actors); err != nil {
			report.Failed++
			observability.EnrichmentOutcomes.WithLabelValues("write_failed").Inc()
			slog.ErrorContext(ctx, "skipping movie, credits write failed",
				slog.Int64("movie_id", movie.ID),
				slog.String("error", err.Error()),
			)
			continue
		}

		report.Updated++
		observability.EnrichmentOutcomes.WithLabelValues("updated").Inc()
		slog.InfoContext(ctx, "movie enriched",
			slog.Int64("movie_id", movie.ID),
			slog.String("title", movie.Title),
			slog.String("director", credits.Director),
		)
	}

	slog.InfoContext(ctx, "enrichment finished",
		slog.Int("scanned", report.Scanned),
		slog.Int("updated", report.Updated),
		slog.Int("failed", report.Failed),
	)
	return report, nil
}
