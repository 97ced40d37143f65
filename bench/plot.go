package bench

import (
	"fmt"
	"image/color"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// WritePlot renders elapsed time against pool size: every successful run
// as a point and the per-size mean as a line. The image format follows
// the file extension (png, svg, pdf, ...).
func WritePlot(report *Report, path string) error {
	if report == nil {
		return ErrNoMeasurements
	}

	runs := make(plotter.XYs, 0, len(report.Measurements))
	for _, m := range report.Measurements {
		if m.OK() {
			runs = append(runs, plotter.XY{X: float64(m.PoolSize), Y: m.ElapsedSeconds()})
		}
	}
	if len(runs) == 0 {
		return ErrNoMeasurements
	}

	var means plotter.XYs
	for _, s := range report.Summaries() {
		if s.Runs > 0 {
			means = append(means, plotter.XY{X: float64(s.PoolSize), Y: s.Mean})
		}
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Edge highlight: %s", filepath.Base(report.InputPath))
	p.X.Label.Text = "Workers"
	p.Y.Label.Text = "Elapsed (s)"
	p.Y.Min = 0

	scatter, err := plotter.NewScatter(runs)
	if err != nil {
		return err
	}
	scatter.GlyphStyle.Color = color.RGBA{R: 120, G: 120, B: 120, A: 255}
	scatter.GlyphStyle.Radius = vg.Points(2)
	p.Add(scatter)
	p.Legend.Add("run", scatter)

	if len(means) > 0 {
		line, err := plotter.NewLine(means)
		if err != nil {
			return err
		}
		line.Color = color.RGBA{R: 200, A: 255}
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add("mean", line)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	p.Add(plotter.NewGrid())

	if filepath.Ext(path) == "" {
		path += ".png"
	}
	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("saving plot %s: %w", path, err)
	}
	return nil
}
