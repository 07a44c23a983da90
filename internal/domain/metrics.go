package domain

import (
	"errors"
	"sort"
)

// ErrNoData indica que no hay matches sobre los que calcular métricas.
var ErrNoData = errors.New("no matched predictions")

// Umbrales acumulativos de precisión sobre pct_error.
const (
	TierExcellentPct  = 10.0
	TierGoodPct       = 20.0
	TierAcceptablePct = 30.0
)

// Accuracy agrupa las métricas globales de error del conjunto de matches.
//
// Los tiers son acumulativos: Within20 incluye a los de Within10.
type Accuracy struct {
	Total          int     `json:"total"`
	MAE            float64 `json:"mae"`
	MAPE           float64 `json:"mape"`
	MedianPctError float64 `json:"median_pct_error"`

	Within10 int `json:"within_10"`
	Within20 int `json:"within_20"`
	Within30 int `json:"within_30"`
	Over30   int `json:"over_30"`

	Over  int `json:"over"`
	Under int `json:"under"`
	Exact int `json:"exact"`

	AvgOverError  float64 `json:"avg_over_error"`  // $ medio cuando predice de más (valor absoluto)
	AvgUnderError float64 `json:"avg_under_error"` // $ medio cuando predice de menos
}

// ComputeAccuracy calcula MAE, MAPE, mediana, tiers y sesgo direccional.
// Devuelve ErrNoData si no hay matches.
func ComputeAccuracy(matches []Match) (Accuracy, error) {
	if len(matches) == 0 {
		return Accuracy{}, ErrNoData
	}

	acc := Accuracy{Total: len(matches)}
	pcts := make([]float64, 0, len(matches))
	var sumAbs, sumPct, sumOver, sumUnder float64

	for _, m := range matches {
		sumAbs += m.AbsError
		sumPct += m.PctError
		pcts = append(pcts, m.PctError)

		if m.PctError <= TierExcellentPct {
			acc.Within10++
		}
		if m.PctError <= TierGoodPct {
			acc.Within20++
		}
		if m.PctError <= TierAcceptablePct {
			acc.Within30++
		}

		switch m.Direction {
		case DirectionOver:
			acc.Over++
			sumOver += m.AbsError
		case DirectionUnder:
			acc.Under++
			sumUnder += m.AbsError
		default:
			acc.Exact++
		}
	}

	n := float64(len(matches))
	acc.MAE = sumAbs / n
	acc.MAPE = sumPct / n
	acc.MedianPctError = median(pcts)
	acc.Over30 = acc.Total - acc.Within30
	if acc.Over > 0 {
		acc.AvgOverError = sumOver / float64(acc.Over)
	}
	if acc.Under > 0 {
		acc.AvgUnderError = sumUnder / float64(acc.Under)
	}
	return acc, nil
}

// Within20Pct devuelve el porcentaje de matches dentro del 20%.
func (a Accuracy) Within20Pct() float64 { return a.share(a.Within20) }

// OverRate devuelve el porcentaje de predicciones por encima del precio real.
func (a Accuracy) OverRate() float64 { return a.share(a.Over) }

// UnderRate devuelve el porcentaje de predicciones por debajo del precio real.
func (a Accuracy) UnderRate() float64 { return a.share(a.Under) }

// Share devuelve count como porcentaje del total de matches.
func (a Accuracy) Share(count int) float64 { return a.share(count) }

func (a Accuracy) share(count int) float64 {
	if a.Total == 0 {
		return 0
	}
	return float64(count) / float64(a.Total) * 100
}

// median devuelve la mediana; con longitud par promedia los dos centrales.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
