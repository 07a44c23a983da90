package storage

// docstore.go: snapshot de documentos y historial de reportes sobre database/sql.
//
// Estrategia:
//   - `documents`: una fila por documento exportado (colección, id, JSON). El orden de
//     inserción (seq) es el orden del snapshot: el match por nombre depende de él.
//   - `reports`: una fila de resumen por run + el reporte completo en JSON.
//   - El mismo SQL sirve para SQLite (pure Go) y Postgres; solo cambian los tipos del
//     schema y los placeholders.
//   - Prune al abrir: reportes de más de 180 días.

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/alejandrodnm/accuracybot/internal/adapters/docs"
	"github.com/alejandrodnm/accuracybot/internal/domain"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Drivers soportados.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
    seq        INTEGER PRIMARY KEY AUTOINCREMENT,
    collection TEXT NOT NULL,
    doc_id     TEXT NOT NULL,
    data       TEXT NOT NULL,
    UNIQUE (collection, doc_id)
);

CREATE TABLE IF NOT EXISTS reports (
    id              TEXT PRIMARY KEY,
    generated_at    TEXT    NOT NULL,
    status          TEXT    NOT NULL,
    total_validated INTEGER NOT NULL DEFAULT 0,
    mae             REAL    NOT NULL DEFAULT 0,
    mape            REAL    NOT NULL DEFAULT 0,
    within_20_pct   REAL    NOT NULL DEFAULT 0,
    over_rate       REAL    NOT NULL DEFAULT 0,
    under_rate      REAL    NOT NULL DEFAULT 0,
    recommendations INTEGER NOT NULL DEFAULT 0,
    payload         TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reports_at ON reports(generated_at DESC);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS documents (
    seq        BIGSERIAL PRIMARY KEY,
    collection TEXT NOT NULL,
    doc_id     TEXT NOT NULL,
    data       TEXT NOT NULL,
    UNIQUE (collection, doc_id)
);

CREATE TABLE IF NOT EXISTS reports (
    id              TEXT PRIMARY KEY,
    generated_at    TEXT             NOT NULL,
    status          TEXT             NOT NULL,
    total_validated INTEGER          NOT NULL DEFAULT 0,
    mae             DOUBLE PRECISION NOT NULL DEFAULT 0,
    mape            DOUBLE PRECISION NOT NULL DEFAULT 0,
    within_20_pct   DOUBLE PRECISION NOT NULL DEFAULT 0,
    over_rate       DOUBLE PRECISION NOT NULL DEFAULT 0,
    under_rate      DOUBLE PRECISION NOT NULL DEFAULT 0,
    recommendations INTEGER          NOT NULL DEFAULT 0,
    payload         TEXT             NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reports_at ON reports(generated_at DESC);
`

const reportRetention = 180 * 24 * time.Hour

// timeLayout tiene ancho fijo para que el orden de los strings sea el orden temporal.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DocStore implementa ports.SnapshotSource y ports.ReportStore.
type DocStore struct {
	db     *sql.DB
	driver string
}

// Open abre (o crea) el store. driver es "sqlite" o "postgres".
func Open(driver, dsn string) (*DocStore, error) {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = sqliteSchema
	case DriverPostgres:
		schema = postgresSchema
	default:
		return nil, fmt.Errorf("storage.Open: unsupported driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("storage.Open: open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1) // SQLite es single-writer
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.Open: apply schema: %w", err)
	}

	s := &DocStore{db: db, driver: driver}
	s.pruneOld(context.Background())
	return s, nil
}

// LoadSnapshot lee todos los documentos en orden de inserción y los normaliza.
func (s *DocStore) LoadSnapshot(ctx context.Context) (domain.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT collection, doc_id, data FROM documents ORDER BY seq`,
	)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("storage.LoadSnapshot: query: %w", err)
	}
	defer rows.Close()

	b := docs.NewBuilder(time.Now().UTC())
	for rows.Next() {
		var raw docs.Raw
		var data string
		if err := rows.Scan(&raw.Collection, &raw.ID, &data); err != nil {
			return domain.Snapshot{}, fmt.Errorf("storage.LoadSnapshot: scan row: %w", err)
		}
		raw.Data = []byte(data)
		if err := b.Add(raw); err != nil {
			slog.Warn("skipping document", "collection", raw.Collection, "doc_id", raw.ID, "err", err)
		}
	}
	if err := rows.Err(); err != nil {
		return domain.Snapshot{}, fmt.Errorf("storage.LoadSnapshot: rows: %w", err)
	}
	return b.Snapshot(), nil
}

// ImportDocuments hace upsert de los documentos en una sola transacción.
// Un documento que ya existe conserva su posición (seq) y actualiza su contenido.
func (s *DocStore) ImportDocuments(ctx context.Context, documents []docs.Raw) (int, error) {
	if len(documents) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("storage.ImportDocuments: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.rebind(`
		INSERT INTO documents (collection, doc_id, data)
		VALUES (?, ?, ?)
		ON CONFLICT (collection, doc_id) DO UPDATE SET data = excluded.data
	`))
	if err != nil {
		return 0, fmt.Errorf("storage.ImportDocuments: prepare: %w", err)
	}
	defer stmt.Close()

	for _, d := range documents {
		if _, err := stmt.ExecContext(ctx, d.Collection, d.ID, string(d.Data)); err != nil {
			return 0, fmt.Errorf("storage.ImportDocuments: upsert %s/%s: %w", d.Collection, d.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage.ImportDocuments: commit: %w", err)
	}
	return len(documents), nil
}

// SaveReport guarda el resumen del reporte y el reporte completo en JSON.
func (s *DocStore) SaveReport(ctx context.Context, report domain.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("storage.SaveReport: marshal: %w", err)
	}

	sum := report.Summary()
	if _, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO reports
			(id, generated_at, status, total_validated, mae, mape,
			 within_20_pct, over_rate, under_rate, recommendations, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`),
		sum.ID,
		sum.GeneratedAt.UTC().Format(timeLayout),
		string(sum.Status),
		sum.TotalValidated,
		sum.MAE,
		sum.MAPE,
		sum.Within20Pct,
		sum.OverPredictionRate,
		sum.UnderPredictionRate,
		sum.Recommendations,
		string(payload),
	); err != nil {
		return fmt.Errorf("storage.SaveReport: insert %s: %w", sum.ID, err)
	}
	return nil
}

// RecentReports devuelve los últimos limit reportes, los más nuevos primero.
func (s *DocStore) RecentReports(ctx context.Context, limit int) ([]domain.ReportSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, generated_at, status, total_validated, mae, mape,
		       within_20_pct, over_rate, under_rate, recommendations
		FROM reports
		ORDER BY generated_at DESC
		LIMIT ?
	`), limit)
	if err != nil {
		return nil, fmt.Errorf("storage.RecentReports: query: %w", err)
	}
	defer rows.Close()

	var out []domain.ReportSummary
	for rows.Next() {
		var sum domain.ReportSummary
		var generatedAt, status string
		if err := rows.Scan(
			&sum.ID,
			&generatedAt,
			&status,
			&sum.TotalValidated,
			&sum.MAE,
			&sum.MAPE,
			&sum.Within20Pct,
			&sum.OverPredictionRate,
			&sum.UnderPredictionRate,
			&sum.Recommendations,
		); err != nil {
			return nil, fmt.Errorf("storage.RecentReports: scan row: %w", err)
		}
		sum.GeneratedAt, _ = time.Parse(timeLayout, generatedAt)
		sum.Status = domain.ReportStatus(status)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (s *DocStore) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

// pruneOld elimina reportes viejos para mantener la DB ligera.
func (s *DocStore) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-reportRetention).Format(timeLayout)
	if _, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM reports WHERE generated_at < ?`), cutoff); err != nil {
		slog.Debug("prune reports failed", "err", err)
	}
}

// rebind traduce los placeholders "?" a "$n" para Postgres.
func (s *DocStore) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
