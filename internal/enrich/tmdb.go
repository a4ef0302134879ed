// Package enrich backfills director and cast data for catalog movies from
// the TMDB credits API.
package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"panoram/internal/observability"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const serviceName = "tmdb"

// ErrNotFound is returned when TMDB has no credits for a movie id.
var ErrNotFound = errors.New("tmdb: movie not found")

// CastMember is one billed actor.
type CastMember struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// CrewMember is one crew credit.
type CrewMember struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

// CreditsResponse is the body of GET /movie/{id}/credits.
type CreditsResponse struct {
	ID   int64        `json:"id"`
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// Client is the TMDB API client.
type Client struct {
	apiKey   string
	baseURL  string
	language string
	http     *http.Client
	cb       *gobreaker.CircuitBreaker[*CreditsResponse]
}

// NewClient creates a new TMDB API client. Five consecutive failures open
// the breaker for 30 seconds; unknown movie ids do not count as failures.
func NewClient(apiKey, baseURL, language string) *Client {
	c := &Client{
		apiKey:   apiKey,
		baseURL:  strings.TrimRight(baseURL, "/"),
		language: language,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	c.cb = gobreaker.NewCircuitBreaker[*CreditsResponse](gobreaker.Settings{
		Name:        "tmdb-credits",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})
	return c
}

// Credits fetches the cast and crew of a movie.
func (c *Client) Credits(ctx context.Context, movieID int64) (*CreditsResponse, error) {
	ctx, span := observability.TraceExternalCall(ctx, serviceName, "Credits")
	defer span.End()
	span.SetAttributes(attribute.Int64("movie.id", movieID))

	out, err := c.cb.Execute(func() (*CreditsResponse, error) {
		return c.fetchCredits(ctx, movieID)
	})
	if err != nil {
		status := "error"
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			status = "rejected"
		case errors.Is(err, ErrNotFound):
			status = "not_found"
		}
		observability.ExternalRequests.WithLabelValues(serviceName, status).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	observability.ExternalRequests.WithLabelValues(serviceName, "ok").Inc()
	return out, nil
}

func (c *Client) fetchCredits(ctx context.Context, movieID int64) (*CreditsResponse, error) {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	if c.language != "" {
		q.Set("language", c.language)
	}
	endpoint := c.baseURL + "/movie/" + strconv.FormatInt(movieID, 10) + "/credits?" + q.Encode()

	slog.DebugContext(ctx, "fetching TMDB credits", "movie_id", movieID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build credits request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %d", ErrNotFound, movieID)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("TMDB API error (status %d): %s", resp.StatusCode, string(body))
	}

	var out CreditsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode credits response: %w", err)
	}
	return &out, nil
}
