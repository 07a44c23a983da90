package ports

import (
	"context"

	"github.com/alejandrodnm/accuracybot/internal/domain"
)

// SnapshotSource carga las colecciones de origen completas en memoria.
type SnapshotSource interface {
	// LoadSnapshot lee listings, feedback_events, listings_temp y soldPrices y
	// devuelve los registros ya normalizados. Es la única llamada bloqueante del run.
	LoadSnapshot(ctx context.Context) (domain.Snapshot, error)
}
