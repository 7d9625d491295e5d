package viz

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/san-kum/gearsim/internal/scene"
	"github.com/san-kum/gearsim/internal/sim"
)

var (
	GlassPanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(0, 1)

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	StatusRunning = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))

	StatusPaused = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffaa00"))

	StatusError = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff4444"))

	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899"))

	KeyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688")).
		Italic(true)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("#444466"))

	SparkHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	SparkMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	SparkLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

// SparklineChart renders the last width values as block characters.
func SparklineChart(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	rng := hi - lo
	if rng == 0 || math.IsInf(rng, 0) {
		rng = 1
	}

	var b strings.Builder
	for _, v := range values {
		if math.IsNaN(v) {
			b.WriteString(Subtle.Render("·"))
			continue
		}
		norm := (v - lo) / rng
		c := string(chars[min(max(int(norm*float64(len(chars)-1)), 0), len(chars)-1)])
		switch {
		case norm > 0.7:
			b.WriteString(SparkHigh.Render(c))
		case norm > 0.3:
			b.WriteString(SparkMid.Render(c))
		default:
			b.WriteString(SparkLow.Render(c))
		}
	}
	return b.String()
}

func Separator(width int) string {
	mid := width / 2
	left := strings.Repeat("─", max(mid-3, 0))
	right := strings.Repeat("─", max(width-mid-3, 0))
	return Subtle.Render(left + " ◆ " + right)
}

// LinkTable lists motion links as source, target, gain and state.
func LinkTable(rows []scene.LinkRow) string {
	if len(rows) == 0 {
		return Subtle.Render("no motion links")
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(CurrentTheme.Muted)).
		Headers("SOURCE", "TARGET", "RATIO", "DIR", "STATE").
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Bold(true).Foreground(CurrentTheme.Secondary)
			}
			return s
		})
	for _, r := range rows {
		dir := "same"
		if r.Reversed {
			dir = "reversed"
		}
		state := "live"
		switch {
		case r.Dangling:
			state = "dangling"
		case r.Cyclic:
			state = "cyclic"
		}
		t.Row(r.Source, r.Target, fmt.Sprintf("%g", r.Ratio), dir, state)
	}
	return t.String()
}

// Summary renders the outcome of a run: final tracked velocities, metric
// values in name order and any step errors.
func Summary(res *sim.Result) string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render(fmt.Sprintf("%d steps", res.StepsTaken)))
	b.WriteByte('\n')

	if last, ok := res.Final(); ok {
		for i, name := range res.Tracks {
			fmt.Fprintf(&b, "%s %s\n",
				MetricLabel.Render(fmt.Sprintf("%-12s", name)),
				MetricValue.Render(fmt.Sprintf("%+.4f", last.Velocities[i])))
		}
	}

	names := make([]string, 0, len(res.Metrics))
	for name := range res.Metrics {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(&b, "%s %s\n",
			MetricLabel.Render(fmt.Sprintf("%-12s", name)),
			MetricValue.Render(fmt.Sprintf("%.6g", res.Metrics[name])))
	}

	for _, err := range res.Errors {
		b.WriteString(StatusError.Render("error: " + err.Error()))
		b.WriteByte('\n')
	}
	return b.String()
}
