package domain

import "math"

// Direction indica hacia dónde se equivocó la predicción.
type Direction string

const (
	DirectionOver  Direction = "over"  // predicho > real
	DirectionUnder Direction = "under" // predicho < real
	DirectionExact Direction = "exact" // igualdad exacta, sin tolerancia
)

// Strategy identifica cómo se enlazó la predicción con el resultado.
type Strategy string

const (
	StrategyDirectID  Strategy = "direct_id"
	StrategyFuzzyName Strategy = "fuzzy_name"
)

// Match es la unidad de reconciliación: una predicción con su venta observada.
//
// PctError siempre es relativo a ActualPrice, nunca al precio predicho.
type Match struct {
	PredictionRef  string    `json:"prediction_ref"`
	OutcomeRef     string    `json:"outcome_ref"`
	Strategy       Strategy  `json:"strategy"`
	Category       string    `json:"category"`
	Condition      string    `json:"condition"`
	ItemName       string    `json:"item_name"`
	PredictedPrice float64   `json:"predicted_price"`
	ActualPrice    float64   `json:"actual_price"`
	Error          float64   `json:"error"` // actual - predicted
	AbsError       float64   `json:"abs_error"`
	PctError       float64   `json:"pct_error"`
	Direction      Direction `json:"direction"`
	DaysToSell     *float64  `json:"days_to_sell,omitempty"`
}

// NewMatch construye un Match si ambos precios son finitos y estrictamente positivos.
// Devuelve false en caso contrario: sin precio real no hay error porcentual.
func NewMatch(p Prediction, o Outcome, strategy Strategy, itemName string) (Match, bool) {
	if !validPrice(p.PredictedPrice) || !validPrice(o.ActualPrice) {
		return Match{}, false
	}

	errAmt := o.ActualPrice - p.PredictedPrice
	absErr := math.Abs(errAmt)

	m := Match{
		PredictionRef:  p.StorageID,
		OutcomeRef:     o.SourceID,
		Strategy:       strategy,
		Category:       resolve(p.Category, o.Category),
		Condition:      resolve(p.Condition, o.Condition),
		ItemName:       itemName,
		PredictedPrice: p.PredictedPrice,
		ActualPrice:    o.ActualPrice,
		Error:          errAmt,
		AbsError:       absErr,
		PctError:       absErr / o.ActualPrice * 100,
		Direction:      directionOf(p.PredictedPrice, o.ActualPrice),
		DaysToSell:     o.DaysToSell,
	}
	return m, true
}

// validPrice rechaza cero, negativos, NaN e infinitos.
func validPrice(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

func directionOf(predicted, actual float64) Direction {
	switch {
	case predicted > actual:
		return DirectionOver
	case predicted < actual:
		return DirectionUnder
	default:
		return DirectionExact
	}
}

// resolve usa el valor de la predicción y solo recurre al del outcome
// cuando la predicción no lo resolvió.
func resolve(fromPrediction, fromOutcome string) string {
	if fromPrediction != "" && fromPrediction != Unknown {
		return fromPrediction
	}
	if fromOutcome != "" {
		return fromOutcome
	}
	return Unknown
}
