package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alejandrodnm/accuracybot/internal/adapters/docs"
	"github.com/alejandrodnm/accuracybot/internal/domain"
)

// exportedDoc es un elemento del array exportado por colección:
// [{"id": "abc", "data": {...}}, ...]. Se usa un array para conservar el orden.
type exportedDoc struct {
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data"`
}

// FileSource lee un export en disco: un archivo <colección>.json por colección.
type FileSource struct {
	dir string
}

// NewFileSource crea un FileSource sobre el directorio dado.
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

// LoadSnapshot lee todas las colecciones y las normaliza.
func (f *FileSource) LoadSnapshot(_ context.Context) (domain.Snapshot, error) {
	raws, err := ReadDir(f.dir)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return build(raws), nil
}

// ReadDir lee todas las colecciones conocidas del directorio. Un archivo que no
// existe se toma como colección vacía.
func ReadDir(dir string) ([]docs.Raw, error) {
	var all []docs.Raw
	for _, collection := range docs.Collections {
		path := filepath.Join(dir, collection+".json")
		fh, err := os.Open(path)
		if errors.Is(err, fs.ErrNotExist) {
			slog.Warn("collection file not found, assuming empty", "collection", collection, "path", path)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("export.ReadDir: open %q: %w", path, err)
		}

		raws, err := decodeCollection(collection, fh)
		fh.Close()
		if err != nil {
			return nil, fmt.Errorf("export.ReadDir: %q: %w", path, err)
		}
		all = append(all, raws...)
	}
	return all, nil
}

func decodeCollection(collection string, r io.Reader) ([]docs.Raw, error) {
	var exported []exportedDoc
	if err := json.NewDecoder(r).Decode(&exported); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}

	raws := make([]docs.Raw, 0, len(exported))
	for i, e := range exported {
		id := e.ID
		if id == "" {
			id = fmt.Sprintf("%s-%d", collection, i)
		}
		raws = append(raws, docs.Raw{Collection: collection, ID: id, Data: e.Data})
	}
	return raws, nil
}

// build normaliza los documentos; los que no se pueden decodificar se loguean y se saltean.
func build(raws []docs.Raw) domain.Snapshot {
	b := docs.NewBuilder(time.Now().UTC())
	for _, raw := range raws {
		if err := b.Add(raw); err != nil {
			slog.Warn("skipping document", "collection", raw.Collection, "doc_id", raw.ID, "err", err)
		}
	}
	return b.Snapshot()
}
