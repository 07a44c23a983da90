package export

// concurrent.go: descarga de colecciones en paralelo.
//
// Cada colección es un GET independiente; el rate limiter del HTTPSource se
// comparte entre workers, así que el límite de req/s se respeta igual.
// El resultado se arma en el orden de docs.Collections: el match por nombre
// depende del orden del snapshot.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alejandrodnm/accuracybot/internal/adapters/docs"
)

type fetchResult struct {
	raws []docs.Raw
	err  error
}

// fetchAll descarga todas las colecciones con un pool de workers.
// Una colección que el servidor no exporta (404) se toma como vacía; cualquier
// otro error aborta el snapshot completo.
func (s *HTTPSource) fetchAll(ctx context.Context, collections []string, workers int) ([]docs.Raw, error) {
	if workers <= 0 || workers > len(collections) {
		workers = len(collections)
	}

	results := make([]fetchResult, len(collections))
	workCh := make(chan int, len(collections))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range workCh {
				raws, err := s.fetchCollection(ctx, collections[idx])
				results[idx] = fetchResult{raws: raws, err: err}
			}
		}()
	}

	for idx := range collections {
		workCh <- idx
	}
	close(workCh)
	wg.Wait()

	var all []docs.Raw
	for idx, r := range results {
		collection := collections[idx]
		if errors.Is(r.err, errNotFound) {
			slog.Warn("collection not exported, assuming empty", "collection", collection)
			continue
		}
		if r.err != nil {
			return nil, fmt.Errorf("%s: %w", collection, r.err)
		}
		slog.Debug("collection fetched", "collection", collection, "docs", len(r.raws))
		all = append(all, r.raws...)
	}

	slog.Debug("concurrent fetch complete", "collections", len(collections), "docs", len(all), "workers", workers)
	return all, nil
}
