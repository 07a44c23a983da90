package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alejandrodnm/accuracybot/internal/domain"
)

// JSON implementa ports.Renderer escribiendo el reporte como JSON indentado.
type JSON struct {
	out io.Writer
}

// NewJSON crea un renderer JSON sobre stdout.
func NewJSON() *JSON {
	return &JSON{out: os.Stdout}
}

// NewJSONWriter crea un renderer JSON para tests.
func NewJSONWriter(w io.Writer) *JSON {
	return &JSON{out: w}
}

// Render escribe el reporte completo.
func (j *JSON) Render(_ context.Context, r domain.Report) error {
	enc := json.NewEncoder(j.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("notify.JSON.Render: %w", err)
	}
	return nil
}
