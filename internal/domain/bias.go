package domain

import "math"

const (
	// BiasRatio: over > BiasRatio × under se considera sesgo sistemático (y viceversa).
	BiasRatio = 1.5
	// CorrelationThreshold: por encima, más error se asocia a ventas más lentas.
	CorrelationThreshold = 0.3
	// minCorrelationPairs es el mínimo de pares para intentar un coeficiente.
	minCorrelationPairs = 2
)

// BiasFinding describe el sesgo direccional del conjunto de matches.
type BiasFinding struct {
	Systematic bool      `json:"systematic"`
	Direction  Direction `json:"direction,omitempty"` // over | under cuando Systematic
	Over       int       `json:"over"`
	Under      int       `json:"under"`
	Exact      int       `json:"exact"`
	Rate       float64   `json:"rate"` // % de matches en Direction
}

// DetectBias aplica la regla fija de sesgo sistemático sobre los conteos.
func DetectBias(acc Accuracy) BiasFinding {
	f := BiasFinding{Over: acc.Over, Under: acc.Under, Exact: acc.Exact}

	switch {
	case float64(acc.Over) > float64(acc.Under)*BiasRatio:
		f.Systematic = true
		f.Direction = DirectionOver
		f.Rate = acc.OverRate()
	case float64(acc.Under) > float64(acc.Over)*BiasRatio:
		f.Systematic = true
		f.Direction = DirectionUnder
		f.Rate = acc.UnderRate()
	}
	return f
}

// Correlation es el resultado del análisis error vs días hasta la venta.
type Correlation struct {
	Pairs        int     `json:"pairs"`
	Sufficient   bool    `json:"sufficient"` // false = "insufficient data", no es un error
	Coefficient  float64 `json:"coefficient"`
	SlowerOnMiss bool    `json:"slower_on_miss"` // coeficiente > CorrelationThreshold
}

// CorrelateErrorWithDays calcula Pearson entre pct_error y days_to_sell sobre
// los matches que tienen ambos valores.
func CorrelateErrorWithDays(matches []Match) Correlation {
	var xs, ys []float64
	for _, m := range matches {
		if m.DaysToSell == nil {
			continue
		}
		xs = append(xs, m.PctError)
		ys = append(ys, *m.DaysToSell)
	}

	c := Correlation{Pairs: len(xs)}
	if len(xs) < minCorrelationPairs {
		return c
	}

	r, ok := Pearson(xs, ys)
	if !ok {
		return c
	}
	c.Sufficient = true
	c.Coefficient = r
	c.SlowerOnMiss = r > CorrelationThreshold
	return c
}

// Pearson calcula el coeficiente de correlación de Pearson.
// Devuelve false si hay menos de 2 pares, longitudes distintas o varianza nula.
func Pearson(xs, ys []float64) (float64, bool) {
	n := len(xs)
	if n < minCorrelationPairs || n != len(ys) {
		return 0, false
	}

	mx, my := mean(xs), mean(ys)
	var cov, vx, vy float64
	for i := range xs {
		dx := xs[i] - mx
		dy := ys[i] - my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return 0, false
	}
	return cov / math.Sqrt(vx*vy), true
}
