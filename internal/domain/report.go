package domain

import "time"

// WorstCategoriesInSummary es cuántas categorías se listan en el resumen del reporte.
const WorstCategoriesInSummary = 5

// ReportStatus es el estado terminal de una ejecución.
type ReportStatus string

const (
	StatusNoData      ReportStatus = "no_data"      // cero matches
	StatusIssuesFound ReportStatus = "issues_found" // al menos una recomendación
	StatusHealthy     ReportStatus = "healthy"      // ninguna regla se disparó
)

// Diagnostics explica de qué datos se dispone, sobre todo cuando no hay matches.
type Diagnostics struct {
	Listings             int `json:"listings"`
	FeedbackEvents       int `json:"feedback_events"`
	TempListings         int `json:"temp_listings"`
	SoldPriceRecords     int `json:"sold_price_records"`
	SkippedDocs          int `json:"skipped_docs"`
	PredictionsWithPrice int `json:"predictions_with_price"`
	FeedbackMarkedSold   int `json:"feedback_marked_sold"`
	TempMarkedSold       int `json:"temp_marked_sold"`
}

// MatchSummary cuenta los matches por estrategia.
type MatchSummary struct {
	DirectID          int `json:"direct_id"`
	FuzzyName         int `json:"fuzzy_name"`
	DuplicatesSkipped int `json:"duplicates_skipped"` // misma predicción dos veces en una estrategia
	Unlinked          int `json:"unlinked"`           // outcomes vendidos sin predicción o sin precio válido
}

// Report es el resultado inmutable de una reconciliación.
// Los campos del resumen replican el contrato de salida; el resto es el detalle.
type Report struct {
	ID          string       `json:"id"`
	GeneratedAt time.Time    `json:"generated_at"`
	Status      ReportStatus `json:"status"`

	Inputs   Diagnostics  `json:"inputs"`
	Matching MatchSummary `json:"matching"`

	TotalValidated      int      `json:"total_validated"`
	MAE                 float64  `json:"mae"`
	MAPE                float64  `json:"mape"`
	Within20Pct         float64  `json:"within_20_pct"`
	OverPredictionRate  float64  `json:"over_prediction_rate"`
	UnderPredictionRate float64  `json:"under_prediction_rate"`
	WorstCategories     []string `json:"worst_categories"`

	Accuracy    Accuracy     `json:"accuracy"`
	Segments    Segmentation `json:"segments"`
	Bias        BiasFinding  `json:"bias"`
	Correlation Correlation  `json:"correlation"`

	Recommendations []Recommendation `json:"recommendations"`
}

// HasData indica si hubo al menos un match.
func (r Report) HasData() bool {
	return r.Status != StatusNoData
}

// ReportSummary es la fila que se guarda en el historial de reportes.
type ReportSummary struct {
	ID                  string
	GeneratedAt         time.Time
	Status              ReportStatus
	TotalValidated      int
	MAE                 float64
	MAPE                float64
	Within20Pct         float64
	OverPredictionRate  float64
	UnderPredictionRate float64
	Recommendations     int
}

// Summary devuelve el resumen del reporte para el historial.
func (r Report) Summary() ReportSummary {
	return ReportSummary{
		ID:                  r.ID,
		GeneratedAt:         r.GeneratedAt,
		Status:              r.Status,
		TotalValidated:      r.TotalValidated,
		MAE:                 r.MAE,
		MAPE:                r.MAPE,
		Within20Pct:         r.Within20Pct,
		OverPredictionRate:  r.OverPredictionRate,
		UnderPredictionRate: r.UnderPredictionRate,
		Recommendations:     len(r.Recommendations),
	}
}
