package domain

import (
	"math"
	"sort"
)

// MinSegmentSamples es el mínimo de matches para que un segmento sea válido.
const MinSegmentSamples = 2

// RankLimit es el tamaño de los rankings de peores/mejores categorías.
const RankLimit = 10

// Dimension es el eje por el que se agrupan los matches.
type Dimension string

const (
	DimensionCategory    Dimension = "category"
	DimensionCondition   Dimension = "condition"
	DimensionPriceBucket Dimension = "price_bucket"
	DimensionSaleSpeed   Dimension = "sale_speed"
)

// PriceBucket es un intervalo (Lower, Upper] sobre el precio real.
type PriceBucket struct {
	Label string
	Lower float64
	Upper float64
}

// PriceBuckets son los cortes fijos de precio: (0,25] (25,50] ... (1000,∞).
var PriceBuckets = []PriceBucket{
	{Label: "$0-25", Lower: 0, Upper: 25},
	{Label: "$25-50", Lower: 25, Upper: 50},
	{Label: "$50-100", Lower: 50, Upper: 100},
	{Label: "$100-250", Lower: 100, Upper: 250},
	{Label: "$250-500", Lower: 250, Upper: 500},
	{Label: "$500-1K", Lower: 500, Upper: 1000},
	{Label: "$1K+", Lower: 1000, Upper: math.Inf(1)},
}

// TopPriceBucket es la etiqueta del tramo de artículos de más de $1000.
const TopPriceBucket = "$1K+"

// Tramos de velocidad de venta.
const (
	SpeedQuick  = "quick"  // <= 3 días
	SpeedMedium = "medium" // 4-14 días
	SpeedSlow   = "slow"   // > 14 días
)

var saleSpeedOrder = []string{SpeedQuick, SpeedMedium, SpeedSlow}

// PriceBucketOf devuelve la etiqueta del tramo de precio, o "" si price <= 0.
func PriceBucketOf(price float64) string {
	for _, b := range PriceBuckets {
		if price > b.Lower && price <= b.Upper {
			return b.Label
		}
	}
	return ""
}

// SaleSpeedOf devuelve el tramo de velocidad de venta.
func SaleSpeedOf(days float64) string {
	switch {
	case days <= 3:
		return SpeedQuick
	case days <= 14:
		return SpeedMedium
	default:
		return SpeedSlow
	}
}

// SegmentStats son las estadísticas de un subconjunto de matches.
type SegmentStats struct {
	Dimension       Dimension `json:"dimension"`
	Key             string    `json:"key"`
	Count           int       `json:"count"`
	MeanPctError    float64   `json:"mean_pct_error"`
	MedianPctError  float64   `json:"median_pct_error"`
	MeanSignedError float64   `json:"mean_signed_error"`
	MeanAbsError    float64   `json:"mean_abs_error"`
}

// Qualifies indica si el segmento tiene muestras suficientes para reportarse.
func (s SegmentStats) Qualifies() bool {
	return s.Count >= MinSegmentSamples
}

// Tendency devuelve hacia dónde tiende a equivocarse el segmento.
// Error medio negativo = el precio real quedó por debajo = sobre-predicción.
func (s SegmentStats) Tendency() Direction {
	if s.MeanSignedError < 0 {
		return DirectionOver
	}
	return DirectionUnder
}

// SegmentGroup son los segmentos de una dimensión.
// Excluded lista los que no llegan a MinSegmentSamples: se cuentan en los totales
// pero no se rankean ni se muestran como válidos.
type SegmentGroup struct {
	Dimension Dimension      `json:"dimension"`
	Segments  []SegmentStats `json:"segments"`
	Excluded  []SegmentStats `json:"excluded"`
	Matched   int            `json:"matched"` // matches que entraron en alguna clave
}

// Segmentation es el resultado completo del motor de segmentación.
type Segmentation struct {
	Categories   SegmentGroup `json:"categories"`
	Conditions   SegmentGroup `json:"conditions"`
	PriceBuckets SegmentGroup `json:"price_buckets"`
	SaleSpeeds   SegmentGroup `json:"sale_speeds"`

	WorstCategories []SegmentStats `json:"worst_categories"`
	BestCategories  []SegmentStats `json:"best_categories"`

	TopBucketCount int `json:"top_bucket_count"` // matches en $1K+, incluso si el segmento no califica
}

// Segment agrupa los matches por las cuatro dimensiones y rankea las categorías.
func Segment(matches []Match) Segmentation {
	seg := Segmentation{
		Categories: GroupBy(matches, DimensionCategory, func(m Match) (string, bool) {
			return m.Category, true
		}),
		Conditions: GroupBy(matches, DimensionCondition, func(m Match) (string, bool) {
			return m.Condition, true
		}),
		PriceBuckets: GroupBy(matches, DimensionPriceBucket, func(m Match) (string, bool) {
			b := PriceBucketOf(m.ActualPrice)
			return b, b != ""
		}),
		SaleSpeeds: GroupBy(matches, DimensionSaleSpeed, func(m Match) (string, bool) {
			if m.DaysToSell == nil {
				return "", false
			}
			return SaleSpeedOf(*m.DaysToSell), true
		}),
	}

	// Tramos en su orden natural, no en orden de aparición.
	seg.PriceBuckets.orderBy(bucketLabels())
	seg.SaleSpeeds.orderBy(saleSpeedOrder)

	for _, m := range matches {
		if PriceBucketOf(m.ActualPrice) == TopPriceBucket {
			seg.TopBucketCount++
		}
	}

	seg.WorstCategories, seg.BestCategories = RankSegments(seg.Categories.Segments, RankLimit)
	return seg
}

// GroupBy calcula SegmentStats por clave, en orden de primera aparición.
// keyFn devuelve false para los matches que no pertenecen a ninguna clave.
func GroupBy(matches []Match, dim Dimension, keyFn func(Match) (string, bool)) SegmentGroup {
	var order []string
	groups := make(map[string][]Match)

	for _, m := range matches {
		key, ok := keyFn(m)
		if !ok {
			continue
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], m)
	}

	g := SegmentGroup{Dimension: dim}
	for _, key := range order {
		st := statsFor(dim, key, groups[key])
		g.Matched += st.Count
		if st.Qualifies() {
			g.Segments = append(g.Segments, st)
		} else {
			g.Excluded = append(g.Excluded, st)
		}
	}
	return g
}

// RankSegments devuelve los limit peores (mayor error medio) y los limit mejores.
// Empates: se mantiene el orden de aparición. Con pocos segmentos las listas se solapan.
func RankSegments(segments []SegmentStats, limit int) (worst, best []SegmentStats) {
	worst = make([]SegmentStats, len(segments))
	copy(worst, segments)
	sort.SliceStable(worst, func(i, j int) bool {
		return worst[i].MeanPctError > worst[j].MeanPctError
	})

	best = make([]SegmentStats, len(segments))
	copy(best, segments)
	sort.SliceStable(best, func(i, j int) bool {
		return best[i].MeanPctError < best[j].MeanPctError
	})

	if len(worst) > limit {
		worst = worst[:limit]
	}
	if len(best) > limit {
		best = best[:limit]
	}
	return worst, best
}

func statsFor(dim Dimension, key string, matches []Match) SegmentStats {
	pcts := make([]float64, len(matches))
	signed := make([]float64, len(matches))
	abs := make([]float64, len(matches))
	for i, m := range matches {
		pcts[i] = m.PctError
		signed[i] = m.Error
		abs[i] = m.AbsError
	}
	return SegmentStats{
		Dimension:       dim,
		Key:             key,
		Count:           len(matches),
		MeanPctError:    mean(pcts),
		MedianPctError:  median(pcts),
		MeanSignedError: mean(signed),
		MeanAbsError:    mean(abs),
	}
}

func (g *SegmentGroup) orderBy(keys []string) {
	rank := make(map[string]int, len(keys))
	for i, k := range keys {
		rank[k] = i
	}
	byRank := func(s []SegmentStats) {
		sort.SliceStable(s, func(i, j int) bool { return rank[s[i].Key] < rank[s[j].Key] })
	}
	byRank(g.Segments)
	byRank(g.Excluded)
}

func bucketLabels() []string {
	labels := make([]string, len(PriceBuckets))
	for i, b := range PriceBuckets {
		labels[i] = b.Label
	}
	return labels
}
