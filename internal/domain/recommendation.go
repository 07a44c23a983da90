package domain

import "fmt"

// Umbrales de las reglas de recomendación.
const (
	WorstCategoryPctThreshold = 30.0
	MinHighValueMatches       = 5
	MinValidationMatches      = 50
)

// RecommendationKind clasifica las recomendaciones.
type RecommendationKind string

const (
	RecSystematicBias   RecommendationKind = "systematic_bias"
	RecCategoryError    RecommendationKind = "category_error"
	RecHighValueGap     RecommendationKind = "high_value_gap"
	RecDataVolume       RecommendationKind = "data_volume"
	RecOutcomeReporting RecommendationKind = "outcome_reporting"
)

// Recommendation es una acción concreta derivada de las estadísticas.
type Recommendation struct {
	Kind          RecommendationKind `json:"kind"`
	Issue         string             `json:"issue"`
	Detail        string             `json:"detail"`
	Fix           string             `json:"fix"`
	AffectedCount int                `json:"affected_count"`
}

// Recommend evalúa las reglas en orden fijo; cada una agrega como mucho una
// recomendación. Una lista vacía significa "sin problemas detectados".
func Recommend(acc Accuracy, bias BiasFinding, seg Segmentation) []Recommendation {
	var recs []Recommendation

	// 1. Sesgo sistemático
	if bias.Systematic {
		switch bias.Direction {
		case DirectionOver:
			recs = append(recs, Recommendation{
				Kind:          RecSystematicBias,
				Issue:         "Systematic Over-Prediction",
				Detail:        fmt.Sprintf("AI over-predicts %.0f%% of the time", bias.Rate),
				Fix:           "Consider applying a global correction factor or adjusting confidence in historical high prices",
				AffectedCount: bias.Over,
			})
		case DirectionUnder:
			recs = append(recs, Recommendation{
				Kind:          RecSystematicBias,
				Issue:         "Systematic Under-Prediction",
				Detail:        fmt.Sprintf("AI under-predicts %.0f%% of the time", bias.Rate),
				Fix:           "Users may be getting better prices than predicted. Consider adjusting for market conditions.",
				AffectedCount: bias.Under,
			})
		}
	}

	// 2. Peor categoría
	if len(seg.WorstCategories) > 0 {
		worst := seg.WorstCategories[0]
		if worst.MeanPctError > WorstCategoryPctThreshold {
			recs = append(recs, Recommendation{
				Kind:          RecCategoryError,
				Issue:         fmt.Sprintf("High Error in %q Category", worst.Key),
				Detail:        fmt.Sprintf("%.0f%% average error", worst.MeanPctError),
				Fix:           fmt.Sprintf("Collect more training data for %q or apply category-specific adjustments", worst.Key),
				AffectedCount: worst.Count,
			})
		}
	}

	// 3. Artículos de alto valor
	if seg.TopBucketCount < MinHighValueMatches {
		recs = append(recs, Recommendation{
			Kind:          RecHighValueGap,
			Issue:         "Limited High-Value Item Data",
			Detail:        "Few validated predictions for items >$1000",
			Fix:           "Focus data collection on high-value items for better accuracy in this range",
			AffectedCount: seg.TopBucketCount,
		})
	}

	// 4. Volumen de validación
	if acc.Total < MinValidationMatches {
		recs = append(recs, Recommendation{
			Kind:          RecDataVolume,
			Issue:         "Limited Validation Data",
			Detail:        fmt.Sprintf("Only %d predictions validated", acc.Total),
			Fix:           "Prioritize collecting actual sale outcomes to build a larger validation set",
			AffectedCount: acc.Total,
		})
	}

	return recs
}

// OutcomeReportingRecommendations se usan cuando no hay ningún match:
// lo que falta son resultados de venta reportados por los usuarios.
func OutcomeReportingRecommendations(d Diagnostics) []Recommendation {
	return []Recommendation{
		{
			Kind:          RecOutcomeReporting,
			Issue:         "No Matched Predictions",
			Detail:        fmt.Sprintf("%d listings have AI prices but only %d feedback events and %d temp listings are marked sold", d.PredictionsWithPrice, d.FeedbackMarkedSold, d.TempMarkedSold),
			Fix:           "Prompt users to report when they sell an item and ask \"Did you sell it? At what price?\"",
			AffectedCount: d.PredictionsWithPrice,
		},
		{
			Kind:          RecOutcomeReporting,
			Issue:         "Outcome Reporting Incentives",
			Detail:        "Sale outcomes are the only source of ground truth for validation",
			Fix:           "Incentivize outcome reporting (badges, features) and track temp listings through the full sale lifecycle",
			AffectedCount: d.PredictionsWithPrice,
		},
	}
}
