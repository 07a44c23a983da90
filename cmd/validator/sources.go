package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/accuracybot/config"
	"github.com/alejandrodnm/accuracybot/internal/adapters/export"
	"github.com/alejandrodnm/accuracybot/internal/adapters/notify"
	"github.com/alejandrodnm/accuracybot/internal/adapters/storage"
	"github.com/alejandrodnm/accuracybot/internal/ports"
)

// openSource crea la fuente de snapshot configurada. La función devuelta cierra
// la conexión cuando la fuente es una base de datos.
func openSource(cfg config.SourceConfig) (ports.SnapshotSource, func(), error) {
	switch cfg.Kind {
	case config.SourceSQLite, config.SourcePostgres:
		store, err := storage.Open(cfg.Kind, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	case config.SourceFile:
		return export.NewFileSource(cfg.Dir), func() {}, nil
	case config.SourceHTTP:
		return export.NewHTTPSource(cfg.BaseURL, cfg.Token, cfg.RatePerSec), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown source kind %q", cfg.Kind)
	}
}

func openStore(cfg config.StorageConfig) (*storage.DocStore, error) {
	return storage.Open(cfg.Driver, cfg.DSN)
}

// runImport carga un export JSON en la base configurada como fuente.
func runImport(ctx context.Context, cfg *config.Config, dir string) int {
	if cfg.Source.Kind != config.SourceSQLite && cfg.Source.Kind != config.SourcePostgres {
		slog.Error("import needs a sqlite or postgres source", "kind", cfg.Source.Kind)
		return 1
	}

	raws, err := export.ReadDir(dir)
	if err != nil {
		slog.Error("failed to read export", "err", err, "dir", dir)
		return 1
	}

	store, err := storage.Open(cfg.Source.Kind, cfg.Source.DSN)
	if err != nil {
		slog.Error("failed to open source", "err", err, "kind", cfg.Source.Kind)
		return 1
	}
	defer store.Close()

	n, err := store.ImportDocuments(ctx, raws)
	if err != nil {
		slog.Error("import failed", "err", err)
		return 1
	}
	slog.Info("import complete", "documents", n, "dir", dir)
	return 0
}

// runHistory imprime los últimos reportes guardados.
func runHistory(ctx context.Context, cfg *config.Config, limit int) int {
	store, err := openStore(cfg.Storage)
	if err != nil {
		slog.Error("failed to open report storage", "err", err, "driver", cfg.Storage.Driver)
		return 1
	}
	defer store.Close()

	history, err := store.RecentReports(ctx, limit)
	if err != nil {
		slog.Error("failed to read history", "err", err)
		return 1
	}
	notify.NewConsole().PrintHistory(history)
	return 0
}
