package ports

import (
	"context"

	"github.com/alejandrodnm/accuracybot/internal/domain"
)

// Renderer presenta un reporte al usuario.
type Renderer interface {
	Render(ctx context.Context, report domain.Report) error
}
