package report

import (
	"fmt"
	"io"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/db"
	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/letters"
)

// RenderProgressBarChart renders the latest per-group teaching progress as a
// bar chart (HTML). One bar per (school, TA, group), height is the percent of
// the letter sequence covered.
func RenderProgressBarChart(w io.Writer, rollup []db.GroupProgress) error {
	x := make([]string, 0, len(rollup))
	y := make([]opts.BarData, 0, len(rollup))
	for _, gp := range rollup {
		x = append(x, fmt.Sprintf("%s / %s / %s", gp.School, gp.TA, gp.GroupName))
		y = append(y, opts.BarData{Name: "up to " + gp.Rightmost, Value: gp.ProgressPct})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Group Progress", Width: "100%", Height: "720px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Letter Sequence Progress by Group",
			Subtitle: fmt.Sprintf("groups=%d rendered=%s", len(rollup), time.Now().UTC().Format(time.RFC3339)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 100, Name: "% of sequence"}),
	)
	bar.SetXAxis(x).
		AddSeries("progress", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render progress chart: %w", err)
	}
	return nil
}

// SaveScoreHistogram writes a PNG histogram of letters-correct scores. The
// bin count defaults to one bin per two chart letters when bins <= 0.
func SaveScoreHistogram(path string, scores []float64, bins int) error {
	if len(scores) == 0 {
		return fmt.Errorf("no scores to plot")
	}
	if bins <= 0 {
		bins = letters.Count / 2
	}

	p := plot.New()
	p.Title.Text = "EGRA Letters Correct"
	p.X.Label.Text = "Letters correct"
	p.Y.Label.Text = "Learners"

	hist, err := plotter.NewHist(plotter.Values(scores), bins)
	if err != nil {
		return fmt.Errorf("failed to build histogram: %w", err)
	}
	p.Add(hist)

	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save histogram: %w", err)
	}
	return nil
}
