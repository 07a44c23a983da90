package ports

import (
	"context"

	"github.com/alejandrodnm/accuracybot/internal/domain"
)

// ReportStore guarda el historial de reportes generados.
type ReportStore interface {
	// SaveReport persiste el resumen de un reporte.
	SaveReport(ctx context.Context, report domain.Report) error

	// RecentReports devuelve los últimos limit reportes, del más nuevo al más viejo.
	RecentReports(ctx context.Context, limit int) ([]domain.ReportSummary, error)
}
