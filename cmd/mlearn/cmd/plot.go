package cmd

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/mlearn/pkg/errors"
)

// plotResults draws one group of bars per metric, one bar per algorithm.
func plotResults(path string, results []benchResult) error {
	p := plot.New()
	p.Title.Text = "multi-label benchmark"
	p.Y.Label.Text = "score"
	p.Y.Min = 0

	metricNames := []string{"hamming loss", "F1", "rank loss", "subset acc"}
	barWidth := vg.Points(12)
	n := len(results)

	for i, r := range results {
		values := plotter.Values{r.hamming, r.f1, r.rankLoss, r.subsetAccuracy}
		bars, err := plotter.NewBarChart(values, barWidth)
		if err != nil {
			return errors.Wrapf(err, "bar chart for %s", r.name)
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = plotutil.Color(i)
		// グループ内で中央揃え
		bars.Offset = vg.Length(float64(i)-float64(n-1)/2) * barWidth
		p.Add(bars)
		p.Legend.Add(r.name, bars)
	}
	p.Legend.Top = true
	p.NominalX(metricNames...)

	width := vg.Length(4+n) * vg.Inch / 2
	if width < 6*vg.Inch {
		width = 6 * vg.Inch
	}
	if err := p.Save(width, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "saving chart to %s", path)
	}
	return nil
}
