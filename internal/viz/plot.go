package viz

import (
	"math"

	"github.com/guptarohit/asciigraph"
)

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Cyan,
	asciigraph.Magenta,
	asciigraph.Yellow,
	asciigraph.Green,
	asciigraph.Red,
	asciigraph.Blue,
}

// PlotVelocities draws one line per series with a legend entry each. Series
// that hold only NaN (a joint removed before the first sample) are left out.
// It returns "" when nothing is left to plot.
func PlotVelocities(names []string, series [][]float64, width, height int, caption string) string {
	var (
		data    [][]float64
		legends []string
		colors  []asciigraph.AnsiColor
	)
	for i, s := range series {
		if !hasFinite(s) {
			continue
		}
		data = append(data, s)
		legends = append(legends, names[i])
		colors = append(colors, seriesColors[len(colors)%len(seriesColors)])
	}
	if len(data) == 0 {
		return ""
	}
	return asciigraph.PlotMany(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(colors...),
		asciigraph.SeriesLegends(legends...),
		asciigraph.Precision(2),
	)
}

func hasFinite(s []float64) bool {
	for _, v := range s {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			return true
		}
	}
	return false
}
