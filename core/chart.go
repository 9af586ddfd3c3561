package core

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

// Fixed chart margins in pixels: room for y-axis value labels on the
// left and x-axis bucket labels along the bottom.
const (
	ChartMarginLeft   = 54
	ChartMarginRight  = 20
	ChartMarginTop    = 24
	ChartMarginBottom = 44

	chartGridDivisions = 5
)

// ChartGeometry maps series buckets onto a pixel canvas. The mapping is
// plain math with no drawing, so it is testable without rasterizing.
type ChartGeometry struct {
	Width  int
	Height int
}

func NewChartGeometry(width, height int) ChartGeometry {
	return ChartGeometry{Width: width, Height: height}
}

func (g ChartGeometry) PlotWidth() float64 {
	return float64(g.Width - ChartMarginLeft - ChartMarginRight)
}

func (g ChartGeometry) PlotHeight() float64 {
	return float64(g.Height - ChartMarginTop - ChartMarginBottom)
}

// XForIndex spreads n buckets evenly across the plotting width, first
// bucket on the left edge, last on the right.
func (g ChartGeometry) XForIndex(i, n int) float64 {
	if n <= 1 {
		return ChartMarginLeft + g.PlotWidth()/2
	}
	return ChartMarginLeft + g.PlotWidth()*float64(i)/float64(n-1)
}

// YForValue scales a value linearly against the series maximum. The
// denominator never drops below 1, so an all-zero series maps to the
// baseline instead of dividing by zero.
func (g ChartGeometry) YForValue(value, max float64) float64 {
	denom := math.Max(max, 1)
	return ChartMarginTop + g.PlotHeight()*(1-value/denom)
}

// GridYs returns the y-coordinates of the horizontal gridlines: the
// plot top, the baseline, and the equal divisions between them.
func (g ChartGeometry) GridYs() []float64 {
	ys := make([]float64, chartGridDivisions+1)
	for k := 0; k <= chartGridDivisions; k++ {
		ys[k] = ChartMarginTop + g.PlotHeight()*float64(k)/chartGridDivisions
	}
	return ys
}

// LabelStride is the thinning step for x-axis labels: dense series show
// at most about ten of them.
func LabelStride(n int) int {
	if n <= 0 {
		return 1
	}
	return int(math.Ceil(float64(n) / 10))
}

// ShowLabel reports whether the label at index i is drawn. The last
// label is always drawn.
func ShowLabel(i, n int) bool {
	if i == n-1 {
		return true
	}
	return i%LabelStride(n) == 0
}

// RenderChartPNG rasterizes a series as a line chart and returns the
// encoded PNG bytes.
func RenderChartPNG(series Series, width, height int) ([]byte, error) {
	g := NewChartGeometry(width, height)
	n := len(series.Values)

	max := 0.0
	for _, v := range series.Values {
		if v > max {
			max = v
		}
	}

	dc := gg.NewContext(width, height)
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	// Horizontal gridlines with the scale values they mark.
	scale := math.Max(max, 1)
	dc.SetLineWidth(1)
	for k, y := range g.GridYs() {
		dc.SetColor(color.NRGBA{R: 0xcf, G: 0xdc, B: 0xe8, A: 0xff})
		dc.DrawLine(ChartMarginLeft, y, float64(width-ChartMarginRight), y)
		dc.Stroke()

		value := scale * float64(chartGridDivisions-k) / chartGridDivisions
		dc.SetColor(color.NRGBA{R: 0x5d, G: 0x6c, B: 0x79, A: 0xff})
		dc.DrawStringAnchored(formatAxisValue(value), ChartMarginLeft-8, y, 1, 0.4)
	}

	// Revenue polyline with a dot per bucket.
	accent := color.NRGBA{R: 0x0b, G: 0x75, B: 0xb4, A: 0xff}
	dc.SetColor(accent)
	dc.SetLineWidth(2)
	for i, v := range series.Values {
		x := g.XForIndex(i, n)
		y := g.YForValue(v, max)
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.Stroke()
	for i, v := range series.Values {
		dc.DrawCircle(g.XForIndex(i, n), g.YForValue(v, max), 3)
		dc.Fill()
	}

	// Thinned x-axis labels.
	dc.SetColor(color.NRGBA{R: 0x35, G: 0x46, B: 0x56, A: 0xff})
	for i, label := range series.Labels {
		if !ShowLabel(i, n) {
			continue
		}
		dc.DrawStringAnchored(label, g.XForIndex(i, n), float64(height-ChartMarginBottom)+18, 0.5, 0.5)
	}

	dc.DrawStringAnchored(series.Title, float64(width)/2, float64(ChartMarginTop)/2, 0.5, 0.5)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode chart png: %w", err)
	}
	return buf.Bytes(), nil
}

func formatAxisValue(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}
