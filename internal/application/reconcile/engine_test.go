package reconcile_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alejandrodnm/accuracybot/internal/application/reconcile"
	"github.com/alejandrodnm/accuracybot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	snap domain.Snapshot
	err  error
}

func (f fakeSource) LoadSnapshot(context.Context) (domain.Snapshot, error) {
	return f.snap, f.err
}

type fakeStore struct {
	saved []domain.Report
	err   error
}

func (f *fakeStore) SaveReport(_ context.Context, r domain.Report) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, r)
	return nil
}

func (f *fakeStore) RecentReports(context.Context, int) ([]domain.ReportSummary, error) {
	var out []domain.ReportSummary
	for _, r := range f.saved {
		out = append(out, r.Summary())
	}
	return out, nil
}

var at = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestBuild_NoData(t *testing.T) {
	snap := domain.Snapshot{
		ListingDocs:      2,
		FeedbackDocs:     1,
		SoldPriceRecords: 4,
		Predictions:      []domain.Prediction{listing("doc1", "", "tv", 100), listing("doc2", "", "radio", 0)},
		Outcomes:         []domain.Outcome{feedback("f1", "doc1", "listed", 90)},
	}

	r := reconcile.Build(snap, "r1", at)

	assert.Equal(t, domain.StatusNoData, r.Status)
	assert.False(t, r.HasData())
	assert.Equal(t, 0, r.TotalValidated)
	assert.NotNil(t, r.WorstCategories)
	assert.Empty(t, r.WorstCategories)

	assert.Equal(t, 2, r.Inputs.Listings)
	assert.Equal(t, 1, r.Inputs.FeedbackEvents)
	assert.Equal(t, 4, r.Inputs.SoldPriceRecords)
	assert.Equal(t, 1, r.Inputs.PredictionsWithPrice)
	assert.Equal(t, 0, r.Inputs.FeedbackMarkedSold)

	require.NotEmpty(t, r.Recommendations)
	for _, rec := range r.Recommendations {
		assert.Equal(t, domain.RecOutcomeReporting, rec.Kind)
	}
}

func TestBuild_IssuesFound(t *testing.T) {
	days := 4.0
	snap := domain.Snapshot{
		Predictions: []domain.Prediction{
			{StorageID: "d1", PredictedPrice: 200, Category: "furniture", Condition: "good", ItemName: "sofa"},
			{StorageID: "d2", PredictedPrice: 150, Category: "furniture", Condition: "good", ItemName: "chair"},
			{StorageID: "d3", PredictedPrice: 12, Category: "books", Condition: "new", ItemName: "novel"},
		},
		Outcomes: []domain.Outcome{
			feedback("f1", "d1", "sold", 100),
			feedback("f2", "d2", "sold", 100),
			temp("t1", "Novel", 10, &days),
		},
	}

	r := reconcile.Build(snap, "r2", at)

	assert.Equal(t, "r2", r.ID)
	assert.Equal(t, at, r.GeneratedAt)
	assert.Equal(t, domain.StatusIssuesFound, r.Status)
	assert.Equal(t, 3, r.TotalValidated)
	assert.Equal(t, 2, r.Matching.DirectID)
	assert.Equal(t, 1, r.Matching.FuzzyName)
	assert.InDelta(t, 100.0, r.OverPredictionRate, 1e-9)
	assert.InDelta(t, 0.0, r.UnderPredictionRate, 1e-9)
	assert.Equal(t, []string{"furniture"}, r.WorstCategories)
	assert.Equal(t, 2, r.Inputs.FeedbackMarkedSold)
	assert.Equal(t, 1, r.Inputs.TempMarkedSold)
	require.NotEmpty(t, r.Recommendations)
	assert.Equal(t, domain.RecSystematicBias, r.Recommendations[0].Kind)
}

func TestBuild_Healthy(t *testing.T) {
	var snap domain.Snapshot
	for i := 0; i < 60; i++ {
		id := fmt.Sprintf("d%02d", i)
		predicted := 1960.0
		if i%2 == 0 {
			predicted = 2040.0
		}
		snap.Predictions = append(snap.Predictions, domain.Prediction{
			StorageID: id, PredictedPrice: predicted, Category: "watches", Condition: "good", ItemName: domain.Unknown,
		})
		snap.Outcomes = append(snap.Outcomes, feedback("f"+id, id, "sold", 2000))
	}

	r := reconcile.Build(snap, "r3", at)
	assert.Equal(t, domain.StatusHealthy, r.Status)
	assert.Empty(t, r.Recommendations)
	assert.Equal(t, 60, r.TotalValidated)
	assert.InDelta(t, 100.0, r.Within20Pct, 1e-9)
}

func TestBuild_WorstCategoriesCappedAtFive(t *testing.T) {
	var snap domain.Snapshot
	for i := 0; i < 8; i++ {
		cat := fmt.Sprintf("cat%d", i)
		for j := 0; j < 2; j++ {
			id := fmt.Sprintf("%s-%d", cat, j)
			snap.Predictions = append(snap.Predictions, domain.Prediction{
				StorageID: id, PredictedPrice: 100 - float64(i), Category: cat, Condition: "good",
			})
			snap.Outcomes = append(snap.Outcomes, feedback("f-"+id, id, "sold", 100))
		}
	}

	r := reconcile.Build(snap, "r4", at)
	assert.Equal(t, []string{"cat7", "cat6", "cat5", "cat4", "cat3"}, r.WorstCategories)
}

func TestBuild_Deterministic(t *testing.T) {
	snap := domain.Snapshot{
		Predictions: []domain.Prediction{listing("d1", "", "tv", 100), listing("d2", "", "tv", 80)},
		Outcomes:    []domain.Outcome{feedback("f1", "d1", "sold", 90), temp("t1", "TV", 85, nil)},
	}
	assert.Equal(t, reconcile.Build(snap, "x", at), reconcile.Build(snap, "x", at))
}

func TestEngineRun_SavesReport(t *testing.T) {
	src := fakeSource{snap: domain.Snapshot{
		Predictions: []domain.Prediction{listing("d1", "", "tv", 100)},
		Outcomes:    []domain.Outcome{feedback("f1", "d1", "sold", 90)},
	}}
	store := &fakeStore{}

	r, err := reconcile.New(src, store).Run(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, time.UTC, r.GeneratedAt.Location())
	require.Len(t, store.saved, 1)
	assert.Equal(t, r.ID, store.saved[0].ID)
}

func TestEngineRun_WithoutStore(t *testing.T) {
	r, err := reconcile.New(fakeSource{}, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNoData, r.Status)
}

func TestEngineRun_SourceError(t *testing.T) {
	boom := errors.New("connection refused")
	store := &fakeStore{}

	_, err := reconcile.New(fakeSource{err: boom}, store).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, store.saved)
}

func TestEngineRun_SaveErrorKeepsReport(t *testing.T) {
	store := &fakeStore{err: errors.New("disk full")}

	r, err := reconcile.New(fakeSource{}, store).Run(context.Background())
	require.Error(t, err)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, domain.StatusNoData, r.Status)
}
