package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alejandrodnm/accuracybot/internal/adapters/docs"
	"github.com/alejandrodnm/accuracybot/internal/domain"
	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

const (
	defaultRatePerSec = 5
	defaultMaxElapsed = 30 * time.Second
	requestTimeout    = 30 * time.Second
	defaultWorkers    = 2
)

// errNotFound marca una colección que el servidor no exporta.
var errNotFound = errors.New("collection not found")

// HTTPSource lee las colecciones desde un servicio de export:
// GET {base}/collections/{name} → [{"id": ..., "data": {...}}].
type HTTPSource struct {
	http       *http.Client
	baseURL    string
	token      string
	limiter    *rate.Limiter
	maxElapsed time.Duration
	workers    int
}

// NewHTTPSource crea un HTTPSource. ratePerSec <= 0 usa el default (5 req/s).
// token vacío = sin header Authorization.
func NewHTTPSource(baseURL, token string, ratePerSec float64) *HTTPSource {
	if ratePerSec <= 0 {
		ratePerSec = defaultRatePerSec
	}
	return &HTTPSource{
		http:       &http.Client{Timeout: requestTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		limiter:    rate.NewLimiter(rate.Limit(ratePerSec), 1),
		maxElapsed: defaultMaxElapsed,
		workers:    defaultWorkers,
	}
}

// LoadSnapshot descarga todas las colecciones antes de normalizar nada.
func (s *HTTPSource) LoadSnapshot(ctx context.Context) (domain.Snapshot, error) {
	all, err := s.fetchAll(ctx, docs.Collections, s.workers)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("export.LoadSnapshot: %w", err)
	}
	return build(all), nil
}

// fetchCollection hace el GET con rate limiting y backoff exponencial.
// 429 y 5xx se reintentan; el resto de 4xx es permanente.
func (s *HTTPSource) fetchCollection(ctx context.Context, collection string) ([]docs.Raw, error) {
	endpoint := s.baseURL + "/collections/" + url.PathEscape(collection)

	var raws []docs.Raw
	operation := func() error {
		if err := s.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(fmt.Errorf("rate limiter: %w", err))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		if s.token != "" {
			req.Header.Set("Authorization", "Bearer "+s.token)
		}

		resp, err := s.http.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(errNotFound)
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			slog.Warn("export server busy, retrying", "collection", collection, "status", resp.StatusCode)
			return fmt.Errorf("server status %d", resp.StatusCode)
		case resp.StatusCode >= 400:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return backoff.Permanent(fmt.Errorf("client error %d: %s", resp.StatusCode, string(body)))
		}

		decoded, err := decodeCollection(collection, resp.Body)
		if err != nil {
			return backoff.Permanent(err)
		}
		raws = decoded
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = s.maxElapsed
	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return nil, err
	}
	return raws, nil
}
