package reconcile

// matcher.go: enlace predicción ↔ venta observada.
//
// Dos pasadas independientes sobre el mismo snapshot:
//   1. Direct-ID: feedback events en etapa "sold" con listingId → lookup en el Index.
//   2. Fuzzy-name: temp listings vendidos con precio → primera predicción con el mismo
//      nombre (case-insensitive). Primera, no la mejor: dos listings con el mismo nombre
//      siempre enlazan con el primero que aparece. Limitación conocida, se mantiene.
//
// Dentro de cada pasada una predicción aparece en un solo Match. Entre pasadas no se
// deduplica: una misma venta reportada por ambos caminos cuenta dos veces.

import (
	"log/slog"

	"github.com/alejandrodnm/accuracybot/internal/domain"
)

// MatchSet es el resultado del matcher.
type MatchSet struct {
	Matches []domain.Match
	Summary domain.MatchSummary
}

// MatchOutcomes ejecuta ambas estrategias en orden y concatena los resultados.
func MatchOutcomes(predictions []domain.Prediction, outcomes []domain.Outcome) MatchSet {
	var set MatchSet

	direct := matchDirectID(NewIndex(predictions), outcomes, &set.Summary)
	fuzzy := matchFuzzyName(predictions, outcomes, &set.Summary)

	set.Summary.DirectID = len(direct)
	set.Summary.FuzzyName = len(fuzzy)
	set.Matches = make([]domain.Match, 0, len(direct)+len(fuzzy))
	set.Matches = append(set.Matches, direct...)
	set.Matches = append(set.Matches, fuzzy...)
	return set
}

func matchDirectID(idx Index, outcomes []domain.Outcome, sum *domain.MatchSummary) []domain.Match {
	var matches []domain.Match
	seen := make(map[string]bool)

	for _, o := range outcomes {
		if !o.IsSoldStage() || o.PredictionRef == "" {
			continue
		}

		p, ok := idx.Lookup(o.PredictionRef)
		if !ok {
			slog.Debug("sold feedback without listing", "outcome", o.SourceID, "listing_id", o.PredictionRef)
			sum.Unlinked++
			continue
		}

		m, ok := domain.NewMatch(p, o, domain.StrategyDirectID, p.ItemName)
		if !ok {
			sum.Unlinked++
			continue
		}
		if seen[p.StorageID] {
			sum.DuplicatesSkipped++
			continue
		}
		seen[p.StorageID] = true
		matches = append(matches, m)
	}
	return matches
}

func matchFuzzyName(predictions []domain.Prediction, outcomes []domain.Outcome, sum *domain.MatchSummary) []domain.Match {
	var matches []domain.Match
	seen := make(map[string]bool)

	for _, o := range outcomes {
		if !o.WasSold || !o.HasPrice() {
			continue
		}

		p, ok := firstByName(predictions, o.NameKey())
		if !ok {
			sum.Unlinked++
			continue
		}

		m, ok := domain.NewMatch(p, o, domain.StrategyFuzzyName, o.ItemName)
		if !ok {
			sum.Unlinked++
			continue
		}
		if seen[p.StorageID] {
			sum.DuplicatesSkipped++
			continue
		}
		seen[p.StorageID] = true
		matches = append(matches, m)
	}
	return matches
}

// firstByName devuelve la primera predicción cuyo nombre coincide, aunque no tenga
// precio: la búsqueda se corta en el primer nombre igual.
func firstByName(predictions []domain.Prediction, key string) (domain.Prediction, bool) {
	if key == "" {
		return domain.Prediction{}, false
	}
	for _, p := range predictions {
		if p.NameKey() == key {
			return p, true
		}
	}
	return domain.Prediction{}, false
}
