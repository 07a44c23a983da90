package docs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alejandrodnm/accuracybot/internal/domain"
)

// Raw es un documento tal cual lo entrega una fuente: colección, ID y JSON.
type Raw struct {
	Collection string
	ID         string
	Data       []byte
}

// ParseListing convierte un documento de listings en una Prediction.
func ParseListing(id string, data []byte) (domain.Prediction, error) {
	var d listingDoc
	if err := json.Unmarshal(data, &d); err != nil {
		return domain.Prediction{}, fmt.Errorf("docs.ParseListing: %s: %w", id, err)
	}
	return mapListing(id, d), nil
}

// ParseFeedback convierte un feedback event en un Outcome.
func ParseFeedback(id string, data []byte) (domain.Outcome, error) {
	var d feedbackDoc
	if err := json.Unmarshal(data, &d); err != nil {
		return domain.Outcome{}, fmt.Errorf("docs.ParseFeedback: %s: %w", id, err)
	}
	return mapFeedback(id, d), nil
}

// ParseTempListing convierte un documento de listings_temp en un Outcome.
func ParseTempListing(id string, data []byte) (domain.Outcome, error) {
	var d tempListingDoc
	if err := json.Unmarshal(data, &d); err != nil {
		return domain.Outcome{}, fmt.Errorf("docs.ParseTempListing: %s: %w", id, err)
	}
	return mapTempListing(id, d), nil
}

// mapListing: precio = listingPrice, si no optimal. Category/condition/name salen de
// itemIdentification y, si faltan, de los campos planos; si no, "unknown".
func mapListing(id string, d listingDoc) domain.Prediction {
	p := domain.Prediction{
		StorageID:  id,
		BusinessID: string(d.ID),
	}

	if d.PricingStrategy.Set {
		ps := d.PricingStrategy.Value
		switch {
		case ps.ListingPrice.truthy():
			p.PredictedPrice = ps.ListingPrice.Value
		case ps.Optimal.truthy():
			p.PredictedPrice = ps.Optimal.Value
		}
	}

	ident := d.ItemIdentification.Value // zero value si no vino como objeto
	p.Category = firstNonEmpty(ident.Category, d.Category)
	p.Condition = firstNonEmpty(ident.ObservedCondition, d.Condition)
	p.ItemName = firstNonEmpty(ident.Name, d.ItemName)
	return p
}

// mapFeedback: si value es un objeto, el precio sale de ahí; si no, de metadata.
func mapFeedback(id string, d feedbackDoc) domain.Outcome {
	o := domain.Outcome{
		SourceID:      id,
		Source:        domain.SourceFeedbackEvent,
		PredictionRef: string(d.ListingID),
		Stage:         string(d.Stage),
	}

	var payload *pricePayload
	if v := bytes.TrimSpace(d.Value); len(v) > 0 && v[0] == '{' {
		var fromValue pricePayload
		if err := json.Unmarshal(v, &fromValue); err == nil {
			payload = &fromValue
		}
	} else if d.Metadata.Set {
		payload = &d.Metadata.Value
	}

	if payload != nil {
		o.ActualPrice = payload.actualPrice()
	}
	return o
}

func mapTempListing(id string, d tempListingDoc) domain.Outcome {
	o := domain.Outcome{
		SourceID:  id,
		Source:    domain.SourceTempListing,
		WasSold:   bool(d.WasSold),
		ItemName:  string(d.ItemName),
		SessionID: string(d.SessionID),
		Category:  string(d.Category),
		Condition: string(d.Condition),
	}
	if d.ActualPrice.Set {
		o.ActualPrice = d.ActualPrice.Value
	}
	// Días negativos son un problema de calidad de datos: se tratan como no informados.
	if d.DaysToSell.Set && d.DaysToSell.Value >= 0 {
		days := d.DaysToSell.Value
		o.DaysToSell = &days
	}
	return o
}

func (p pricePayload) actualPrice() float64 {
	switch {
	case p.ActualPrice.truthy():
		return p.ActualPrice.Value
	case p.SoldPrice.truthy():
		return p.SoldPrice.Value
	default:
		return 0
	}
}

func firstNonEmpty(values ...flexString) string {
	for _, v := range values {
		if v != "" {
			return string(v)
		}
	}
	return domain.Unknown
}

// Builder arma un Snapshot a partir de documentos raw de cualquier colección.
type Builder struct {
	snap domain.Snapshot
}

// NewBuilder crea un Builder para un snapshot tomado en takenAt.
func NewBuilder(takenAt time.Time) *Builder {
	return &Builder{snap: domain.Snapshot{TakenAt: takenAt}}
}

// Add despacha el documento al adapter de su colección. Un documento que no se
// puede decodificar se cuenta como salteado y se devuelve el error para loguearlo.
func (b *Builder) Add(r Raw) error {
	switch r.Collection {
	case CollectionListings:
		b.snap.ListingDocs++
		p, err := ParseListing(r.ID, r.Data)
		if err != nil {
			b.snap.SkippedDocs++
			return err
		}
		b.snap.Predictions = append(b.snap.Predictions, p)

	case CollectionFeedbackEvents:
		b.snap.FeedbackDocs++
		o, err := ParseFeedback(r.ID, r.Data)
		if err != nil {
			b.snap.SkippedDocs++
			return err
		}
		b.snap.Outcomes = append(b.snap.Outcomes, o)

	case CollectionTempListings:
		b.snap.TempListingDocs++
		o, err := ParseTempListing(r.ID, r.Data)
		if err != nil {
			b.snap.SkippedDocs++
			return err
		}
		b.snap.Outcomes = append(b.snap.Outcomes, o)

	case CollectionSoldPrices:
		b.snap.SoldPriceRecords++

	default:
		return fmt.Errorf("docs.Builder.Add: unknown collection %q", r.Collection)
	}
	return nil
}

// Snapshot devuelve el snapshot acumulado.
func (b *Builder) Snapshot() domain.Snapshot {
	return b.snap
}
