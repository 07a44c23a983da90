package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/accuracybot/internal/domain"
	"github.com/alejandrodnm/accuracybot/internal/ports"
	"github.com/google/uuid"
)

// Engine orquesta un run: carga el snapshot, construye el reporte y opcionalmente
// guarda el resumen en el historial.
type Engine struct {
	source ports.SnapshotSource
	store  ports.ReportStore // nil = no guardar historial
	now    func() time.Time
	newID  func() string
}

// New crea un Engine. store puede ser nil.
func New(source ports.SnapshotSource, store ports.ReportStore) *Engine {
	return &Engine{
		source: source,
		store:  store,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  func() string { return uuid.New().String() },
	}
}

// Run ejecuta una reconciliación completa.
// Solo devuelve error si falla la lectura del snapshot o el guardado del historial;
// cualquier anomalía de los datos queda dentro del reporte.
func (e *Engine) Run(ctx context.Context) (domain.Report, error) {
	start := time.Now()

	snap, err := e.source.LoadSnapshot(ctx)
	if err != nil {
		return domain.Report{}, fmt.Errorf("reconcile.Run: load snapshot: %w", err)
	}

	slog.Info("snapshot loaded",
		"predictions", len(snap.Predictions),
		"outcomes", len(snap.Outcomes),
		"sold_price_records", snap.SoldPriceRecords,
		"skipped_docs", snap.SkippedDocs,
	)

	report := Build(snap, e.newID(), e.now())

	slog.Info("reconciliation complete",
		"report_id", report.ID,
		"status", report.Status,
		"matches", report.TotalValidated,
		"direct_id", report.Matching.DirectID,
		"fuzzy_name", report.Matching.FuzzyName,
		"recommendations", len(report.Recommendations),
		"elapsed", time.Since(start),
	)

	if e.store != nil {
		if err := e.store.SaveReport(ctx, report); err != nil {
			return report, fmt.Errorf("reconcile.Run: save report: %w", err)
		}
	}
	return report, nil
}

// Build construye el reporte a partir del snapshot. Es determinista para el mismo
// snapshot, id y timestamp, y nunca falla: cero matches es un estado más del reporte.
func Build(snap domain.Snapshot, id string, at time.Time) domain.Report {
	report := domain.Report{
		ID:              id,
		GeneratedAt:     at,
		Inputs:          Diagnose(snap),
		WorstCategories: []string{},
	}

	set := MatchOutcomes(snap.Predictions, snap.Outcomes)
	report.Matching = set.Summary

	acc, err := domain.ComputeAccuracy(set.Matches)
	if errors.Is(err, domain.ErrNoData) {
		report.Status = domain.StatusNoData
		report.Recommendations = domain.OutcomeReportingRecommendations(report.Inputs)
		return report
	}

	seg := domain.Segment(set.Matches)
	bias := domain.DetectBias(acc)

	report.Accuracy = acc
	report.Segments = seg
	report.Bias = bias
	report.Correlation = domain.CorrelateErrorWithDays(set.Matches)

	report.TotalValidated = acc.Total
	report.MAE = acc.MAE
	report.MAPE = acc.MAPE
	report.Within20Pct = acc.Within20Pct()
	report.OverPredictionRate = acc.OverRate()
	report.UnderPredictionRate = acc.UnderRate()
	for i, s := range seg.WorstCategories {
		if i == domain.WorstCategoriesInSummary {
			break
		}
		report.WorstCategories = append(report.WorstCategories, s.Key)
	}

	report.Recommendations = domain.Recommend(acc, bias, seg)
	if len(report.Recommendations) == 0 {
		report.Status = domain.StatusHealthy
	} else {
		report.Status = domain.StatusIssuesFound
	}
	return report
}

// Diagnose cuenta qué datos hay disponibles en el snapshot.
func Diagnose(snap domain.Snapshot) domain.Diagnostics {
	d := domain.Diagnostics{
		Listings:         snap.ListingDocs,
		FeedbackEvents:   snap.FeedbackDocs,
		TempListings:     snap.TempListingDocs,
		SoldPriceRecords: snap.SoldPriceRecords,
		SkippedDocs:      snap.SkippedDocs,
	}
	for _, p := range snap.Predictions {
		if p.HasPrice() {
			d.PredictionsWithPrice++
		}
	}
	for _, o := range snap.Outcomes {
		switch o.Source {
		case domain.SourceFeedbackEvent:
			if o.IsSoldStage() {
				d.FeedbackMarkedSold++
			}
		case domain.SourceTempListing:
			if o.WasSold {
				d.TempMarkedSold++
			}
		}
	}
	return d
}
