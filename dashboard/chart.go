package dashboard

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/absmach/fldash/pkg/metrics"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	DefChartWidth  = 1024
	DefChartHeight = 400
	MaxChartWidth  = 4096
	MaxChartHeight = 4096
)

func lineStyle(color string) chart.Style {
	col := drawing.ColorFromHex(strings.TrimPrefix(color, "#"))

	return chart.Style{
		StrokeColor: col,
		StrokeWidth: 2,
		DotColor:    col,
		DotWidth:    3,
	}
}

// renderPNG draws every non-empty line of data. Lines with a single point
// are widened by one step so the renderer gets a valid range.
func renderPNG(data metrics.ChartData, width, height int) ([]byte, error) {
	if width <= 0 {
		width = DefChartWidth
	}
	if height <= 0 {
		height = DefChartHeight
	}

	minX, maxX := math.MaxFloat64, -math.MaxFloat64
	minY, maxY := math.MaxFloat64, -math.MaxFloat64
	series := []chart.Series{}
	for _, l := range data.Lines {
		if l.Empty() {
			continue
		}
		xs := make([]float64, len(l.X))
		for i, x := range l.X {
			xs[i] = float64(x)
		}
		ys := append([]float64(nil), l.Y...)
		if len(xs) == 1 {
			xs = append(xs, xs[0]+1)
			ys = append(ys, ys[0])
		}
		for i := range xs {
			minX, maxX = math.Min(minX, xs[i]), math.Max(maxX, xs[i])
			minY, maxY = math.Min(minY, ys[i]), math.Max(maxY, ys[i])
		}
		series = append(series, chart.ContinuousSeries{
			Name:    l.Label,
			XValues: xs,
			YValues: ys,
			Style:   lineStyle(l.Color),
		})
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("no points to render for key %q", data.Key)
	}
	if maxY <= minY {
		maxY = minY + 1
	}

	ch := chart.Chart{
		Title:      data.Key,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 28}},
		XAxis:      chart.XAxis{Name: "step", Range: &chart.ContinuousRange{Min: minX, Max: maxX}},
		YAxis:      chart.YAxis{Name: data.Key, Range: &chart.ContinuousRange{Min: minY, Max: maxY}},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render chart %q: %w", data.Key, err)
	}

	return buf.Bytes(), nil
}
