// Package export writes runs in formats meant for other tools.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/gearsim/internal/viz"
)

// Palette is cycled through for successive series.
var Palette = []string{"#00ccff", "#ff00ff", "#ffcc00", "#00ff88", "#ff4444", "#8888ff"}

// CanvasToSVG draws every lit braille dot as a circle.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}
	width := float64(canvas.Width) * scale * 2
	height := float64(canvas.Height) * scale * 4

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff00">
`, width, height, width, height)

	bits := [4][2]rune{{0x01, 0x08}, {0x02, 0x10}, {0x04, 0x20}, {0x40, 0x80}}
	for row := range canvas.Height {
		for col := range canvas.Width {
			r := canvas.Grid[row][col]
			if r <= 0x2800 {
				continue
			}
			pattern := r - 0x2800
			for dy := range 4 {
				for dx := range 2 {
					if pattern&bits[dy][dx] == 0 {
						continue
					}
					cx := (float64(col*2+dx) + 0.5) * scale
					cy := (float64(row*4+dy) + 0.5) * scale
					fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, scale*0.4)
				}
			}
		}
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// VelocitySVG plots each series against sample index as a polyline, with a
// legend in the top left. NaN samples break the line. It returns "" when no
// series has a finite sample.
func VelocitySVG(names []string, series [][]float64, width, height int) string {
	lo, hi, n := math.Inf(1), math.Inf(-1), 0
	for _, s := range series {
		n = max(n, len(s))
		for _, v := range s {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		return ""
	}
	pad := (hi - lo) * 0.1
	if pad == 0 {
		pad = 1
	}
	lo, hi = lo-pad, hi+pad
	span := float64(max(n-1, 1))

	x := func(i int) float64 { return float64(i) / span * float64(width) }
	y := func(v float64) float64 { return float64(height) - (v-lo)/(hi-lo)*float64(height) }

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)
	if lo < 0 && hi > 0 {
		fmt.Fprintf(&sb, "<line x1=\"0\" y1=\"%.1f\" x2=\"%d\" y2=\"%.1f\" stroke=\"#444466\"/>\n", y(0), width, y(0))
	}

	for i, s := range series {
		color := Palette[i%len(Palette)]
		var d strings.Builder
		pen := false
		for k, v := range s {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				pen = false
				continue
			}
			cmd := "L"
			if !pen {
				cmd = "M"
			}
			fmt.Fprintf(&d, "%s%.1f,%.1f ", cmd, x(k), y(v))
			pen = true
		}
		if d.Len() > 0 {
			fmt.Fprintf(&sb, "<path fill=\"none\" stroke=\"%s\" stroke-width=\"1.5\" d=\"%s\"/>\n", color, strings.TrimSpace(d.String()))
		}
		fmt.Fprintf(&sb, "<text x=\"8\" y=\"%d\" fill=\"%s\" font-family=\"monospace\" font-size=\"12\">%s</text>\n", 16*(i+1), color, names[i])
	}
	sb.WriteString("</svg>")
	return sb.String()
}
