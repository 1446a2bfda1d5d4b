package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// DefaultBins gives one bin per intensity level. Bins always span 0..255
// whatever range a frame actually uses.
const DefaultBins = 256

var (
	sentColor     = color.RGBA{R: 30, G: 100, B: 200, A: 140}
	receivedColor = color.RGBA{R: 220, G: 80, B: 40, A: 140}
)

// SaveHistogram writes a PNG (or any format gonum/plot infers from the
// extension) overlaying the intensity histograms of the sent and received
// frames.
func SaveHistogram(path string, sent, received []byte, bins int) error {
	if bins <= 0 {
		bins = DefaultBins
	}

	p := plot.New()
	p.Title.Text = "Frame intensity"
	p.X.Label.Text = "Luminance"
	p.Y.Label.Text = "Samples"
	p.X.Min = 0
	p.X.Max = 255

	for _, series := range []struct {
		name string
		data []byte
		fill color.Color
	}{
		{"sent", sent, sentColor},
		{"received", received, receivedColor},
	} {
		if len(series.data) == 0 {
			continue
		}
		h, err := plotter.NewHistogram(levelCounts(series.data), bins)
		if err != nil {
			return fmt.Errorf("failed to build %s histogram: %w", series.name, err)
		}
		h.FillColor = series.fill
		h.LineStyle.Width = vg.Points(0.5)
		p.Add(h)
		p.Legend.Add(series.name, h)
	}
	p.Legend.Top = true

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save histogram: %w", err)
	}
	return nil
}

// levelCounts returns one point per intensity level 0..255 with its sample
// count as Y. Every level is present, so the histogram range is fixed.
func levelCounts(b []byte) plotter.XYs {
	var counts [256]float64
	for _, v := range b {
		counts[v]++
	}
	xys := make(plotter.XYs, len(counts))
	for level, n := range counts {
		xys[level].X = float64(level)
		xys[level].Y = n
	}
	return xys
}
