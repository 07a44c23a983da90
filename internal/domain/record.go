package domain

import (
	"strings"
	"time"
)

// Unknown es el valor por defecto de category/condition/item_name cuando
// ninguna de las fuentes del registro lo resuelve.
const Unknown = "unknown"

// Prediction es una estimación de precio generada antes de la venta.
// Se construye a partir de un listing y no se modifica después de leída.
type Prediction struct {
	StorageID      string  // ID del documento en la colección
	BusinessID     string  // campo "id" embebido, puede estar vacío
	PredictedPrice float64 // 0 = sin precio (no se puede matchear)
	Category       string
	Condition      string
	ItemName       string
}

// HasPrice indica si la predicción tiene un precio utilizable.
func (p Prediction) HasPrice() bool {
	return validPrice(p.PredictedPrice)
}

// NameKey devuelve el nombre normalizado para el match aproximado.
// Vacío si el nombre no se pudo resolver.
func (p Prediction) NameKey() string {
	return nameKey(p.ItemName)
}

// OutcomeSource identifica de qué colección viene un Outcome.
type OutcomeSource string

const (
	SourceFeedbackEvent OutcomeSource = "feedback_event"
	SourceTempListing   OutcomeSource = "temp_listing"
)

// Outcome es un resultado de venta observado.
type Outcome struct {
	SourceID      string
	Source        OutcomeSource
	PredictionRef string // listingId del feedback event
	Stage         string
	WasSold       bool
	ActualPrice   float64  // 0 = sin precio
	DaysToSell    *float64 // nil si no se reportó
	ItemName      string
	SessionID     string
	Category      string // opcional, vacío si no viene
	Condition     string // opcional, vacío si no viene
}

// HasPrice indica si el outcome trae un precio real utilizable.
func (o Outcome) HasPrice() bool {
	return validPrice(o.ActualPrice)
}

// IsSoldStage indica si el feedback event marca la etapa "sold" (sin distinguir mayúsculas).
func (o Outcome) IsSoldStage() bool {
	return strings.EqualFold(strings.TrimSpace(o.Stage), "sold")
}

// NameKey devuelve el nombre normalizado para el match aproximado.
func (o Outcome) NameKey() string {
	return nameKey(o.ItemName)
}

func nameKey(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || name == Unknown {
		return ""
	}
	return strings.ToLower(name)
}

// Snapshot es la foto de solo lectura de las colecciones de origen.
// Todo se carga en memoria antes de calcular nada.
type Snapshot struct {
	TakenAt          time.Time
	Predictions      []Prediction
	Outcomes         []Outcome
	ListingDocs      int // documentos leídos de listings (incluye los que no tienen precio)
	FeedbackDocs     int
	TempListingDocs  int
	SoldPriceRecords int // colección soldPrices: solo se cuenta
	SkippedDocs      int // documentos que no se pudieron decodificar
}
