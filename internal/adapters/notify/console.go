package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alejandrodnm/accuracybot/internal/domain"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
)

const rule = "============================================================"

// Console implementa ports.Renderer con salida de texto.
type Console struct {
	out io.Writer
}

// NewConsole crea un renderer que escribe a stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWriter crea un renderer para tests.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// Render imprime el reporte completo por secciones.
func (c *Console) Render(_ context.Context, r domain.Report) error {
	c.section("AI PREDICTION ACCURACY REPORT")
	fmt.Fprintf(c.out, "Report: %s\n", r.ID)
	fmt.Fprintf(c.out, "Generated: %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05"))
	c.printInputs(r.Inputs, r.Matching)

	if !r.HasData() {
		c.printNoData(r)
		return nil
	}

	c.printAccuracy(r.Accuracy)
	c.printCategories(r.Segments)
	c.printGroup("ACCURACY BY CONDITION", r.Segments.Conditions, true)
	c.printGroup("ACCURACY BY PRICE RANGE", r.Segments.PriceBuckets, true)
	c.printSaleSpeed(r.Segments.SaleSpeeds, r.Correlation)
	c.printRecommendations(r)
	fmt.Fprintln(c.out, rule)
	return nil
}

// PrintHistory imprime el historial de reportes guardados.
func (c *Console) PrintHistory(history []domain.ReportSummary) {
	if len(history) == 0 {
		fmt.Fprintln(c.out, "no reports saved yet")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Generated", "Status", "Matches", "MAE", "MAPE", "Within 20%", "Over", "Under", "Recs")
	for _, h := range history {
		table.Append(
			h.GeneratedAt.Format("2006-01-02 15:04"),
			string(h.Status),
			fmt.Sprintf("%d", h.TotalValidated),
			money(h.MAE),
			pct(h.MAPE),
			pct(h.Within20Pct),
			pct(h.OverPredictionRate),
			pct(h.UnderPredictionRate),
			fmt.Sprintf("%d", h.Recommendations),
		)
	}
	table.Render()
}

func (c *Console) section(title string) {
	fmt.Fprintf(c.out, "\n%s\n%s\n%s\n", rule, title, rule)
}

func (c *Console) printInputs(in domain.Diagnostics, m domain.MatchSummary) {
	fmt.Fprintf(c.out, "\nTotal Listings: %d\n", in.Listings)
	fmt.Fprintf(c.out, "Total Temp Listings: %d\n", in.TempListings)
	fmt.Fprintf(c.out, "Total Feedback Events: %d\n", in.FeedbackEvents)
	fmt.Fprintf(c.out, "Total Sold Prices Records: %d\n", in.SoldPriceRecords)
	if in.SkippedDocs > 0 {
		fmt.Fprintf(c.out, "Skipped (undecodable) documents: %d\n", in.SkippedDocs)
	}
	fmt.Fprintf(c.out, "\nMatches by listing id: %d | by item name: %d | duplicates skipped: %d | unlinked sales: %d\n",
		m.DirectID, m.FuzzyName, m.DuplicatesSkipped, m.Unlinked)
}

func (c *Console) printNoData(r domain.Report) {
	c.section("NO MATCHED PREDICTIONS FOUND")
	fmt.Fprintln(c.out, "To validate AI accuracy you need listings that have both an AI predicted")
	fmt.Fprintln(c.out, "price and an actual sold price (feedback events or temp listings).")

	fmt.Fprintln(c.out, "\nCurrent data available:")
	fmt.Fprintf(c.out, "  - Listings with AI prices: %d\n", r.Inputs.PredictionsWithPrice)
	fmt.Fprintf(c.out, "  - Feedback events marked 'sold': %d\n", r.Inputs.FeedbackMarkedSold)
	fmt.Fprintf(c.out, "  - Temp listings marked 'sold': %d\n", r.Inputs.TempMarkedSold)

	c.printRecommendations(r)
}

func (c *Console) printAccuracy(a domain.Accuracy) {
	c.section("OVERALL ACCURACY METRICS")
	fmt.Fprintf(c.out, "Total validated predictions: %d\n", a.Total)
	fmt.Fprintf(c.out, "\nMean Absolute Error (MAE): %s\n", money(a.MAE))
	fmt.Fprintf(c.out, "Mean Absolute Percentage Error (MAPE): %s\n", pct(a.MAPE))
	fmt.Fprintf(c.out, "Median Percentage Error: %s\n", pct(a.MedianPctError))

	fmt.Fprintln(c.out, "\nAccuracy Distribution:")
	fmt.Fprintf(c.out, "  Within 10%%: %d (%s) - EXCELLENT\n", a.Within10, pct(a.Share(a.Within10)))
	fmt.Fprintf(c.out, "  Within 20%%: %d (%s) - GOOD\n", a.Within20, pct(a.Share(a.Within20)))
	fmt.Fprintf(c.out, "  Within 30%%: %d (%s) - ACCEPTABLE\n", a.Within30, pct(a.Share(a.Within30)))
	fmt.Fprintf(c.out, "  Over 30%%: %d (%s) - NEEDS IMPROVEMENT\n", a.Over30, pct(a.Share(a.Over30)))

	fmt.Fprintln(c.out, "\nDirectional Bias:")
	fmt.Fprintf(c.out, "  Over-predicted (AI > Actual): %d (%s)\n", a.Over, pct(a.OverRate()))
	fmt.Fprintf(c.out, "  Under-predicted (AI < Actual): %d (%s)\n", a.Under, pct(a.UnderRate()))
	fmt.Fprintf(c.out, "  Exact: %d\n", a.Exact)
	fmt.Fprintf(c.out, "  Avg over-prediction: %s\n", money(a.AvgOverError))
	fmt.Fprintf(c.out, "  Avg under-prediction: %s\n", money(a.AvgUnderError))
}

func (c *Console) printCategories(seg domain.Segmentation) {
	c.section("WORST PERFORMING CATEGORIES (Need More Training Data)")
	if len(seg.WorstCategories) == 0 {
		fmt.Fprintf(c.out, "No category has %d or more samples yet\n", domain.MinSegmentSamples)
	} else {
		c.printSegmentTable(seg.WorstCategories, true)

		c.section("BEST PERFORMING CATEGORIES (AI is accurate)")
		c.printSegmentTable(seg.BestCategories, false)
	}
	c.printExcluded(seg.Categories)
}

func (c *Console) printGroup(title string, g domain.SegmentGroup, withTendency bool) {
	c.section(title)
	if len(g.Segments) == 0 {
		fmt.Fprintln(c.out, "No segment with enough samples")
	} else {
		c.printSegmentTable(g.Segments, withTendency)
	}
	c.printExcluded(g)
}

func (c *Console) printSaleSpeed(g domain.SegmentGroup, corr domain.Correlation) {
	if g.Matched == 0 {
		return
	}
	c.printGroup("PRICING ACCURACY VS TIME TO SELL", g, false)

	if !corr.Sufficient {
		fmt.Fprintf(c.out, "\n  Correlation (error vs days to sell): insufficient data (%d pairs)\n", corr.Pairs)
		return
	}
	fmt.Fprintf(c.out, "\n  Correlation (error vs days to sell): %.2f\n", corr.Coefficient)
	if corr.SlowerOnMiss {
		fmt.Fprintln(c.out, "  Positive correlation: higher errors correlate with longer sell times")
		fmt.Fprintln(c.out, "    (possible over-pricing when predictions are off)")
	}
}

func (c *Console) printSegmentTable(segments []domain.SegmentStats, withTendency bool) {
	table := tablewriter.NewWriter(c.out)
	if withTendency {
		table.Header("Segment", "Avg error", "Median", "Samples", "Avg $ off", "Tends to")
	} else {
		table.Header("Segment", "Avg error", "Median", "Samples", "Avg $ off")
	}

	for _, s := range segments {
		row := []any{
			s.Key,
			pct(s.MeanPctError),
			pct(s.MedianPctError),
			fmt.Sprintf("%d", s.Count),
			money(s.MeanAbsError),
		}
		if withTendency {
			row = append(row, strings.ToUpper(string(s.Tendency()))+"-predict")
		}
		table.Append(row...)
	}
	table.Render()
}

func (c *Console) printExcluded(g domain.SegmentGroup) {
	if len(g.Excluded) == 0 {
		return
	}
	keys := make([]string, len(g.Excluded))
	for i, s := range g.Excluded {
		keys[i] = s.Key
	}
	fmt.Fprintf(c.out, "  Excluded (<%d samples): %s\n", domain.MinSegmentSamples, strings.Join(keys, ", "))
}

func (c *Console) printRecommendations(r domain.Report) {
	c.section("RECOMMENDATIONS FOR AI IMPROVEMENT")
	if r.Status == domain.StatusHealthy {
		fmt.Fprintln(c.out, "\nAI accuracy looks healthy! Continue collecting validation data.")
		return
	}
	for i, rec := range r.Recommendations {
		fmt.Fprintf(c.out, "\n%d. %s\n", i+1, rec.Issue)
		fmt.Fprintf(c.out, "   Detail: %s\n", rec.Detail)
		fmt.Fprintf(c.out, "   Fix: %s\n", rec.Fix)
		fmt.Fprintf(c.out, "   Affected: %d\n", rec.AffectedCount)
	}
	fmt.Fprintln(c.out)
}

// money formatea dólares con 2 decimales exactos.
func money(v float64) string {
	return "$" + decimal.NewFromFloat(v).StringFixed(2)
}

func pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}
