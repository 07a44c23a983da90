package reconcile

import "github.com/alejandrodnm/accuracybot/internal/domain"

// Index es el mapa inmutable id → predicción, construido una vez por ejecución.
// Cada predicción se indexa por su ID de almacenamiento y por su ID de negocio;
// ante colisión gana la última escrita.
type Index struct {
	byID map[string]domain.Prediction
}

// NewIndex indexa las predicciones en el orden del snapshot.
func NewIndex(predictions []domain.Prediction) Index {
	byID := make(map[string]domain.Prediction, len(predictions)*2)
	for _, p := range predictions {
		if p.StorageID != "" {
			byID[p.StorageID] = p
		}
		if p.BusinessID != "" {
			byID[p.BusinessID] = p
		}
	}
	return Index{byID: byID}
}

// Lookup devuelve la predicción para id.
func (i Index) Lookup(id string) (domain.Prediction, bool) {
	p, ok := i.byID[id]
	return p, ok
}

// Len devuelve la cantidad de claves indexadas.
func (i Index) Len() int {
	return len(i.byID)
}
