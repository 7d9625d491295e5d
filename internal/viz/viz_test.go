package viz

import (
	"context"
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/gearsim/internal/body"
	"github.com/san-kum/gearsim/internal/config"
	"github.com/san-kum/gearsim/internal/metrics"
	"github.com/san-kum/gearsim/internal/scene"
	"gonum.org/v1/gonum/spatial/r3"
)

func presetBuilder(name string) Builder {
	return func() (*scene.Scene, error) {
		return scene.Build(config.GetPreset(name), nil)
	}
}

func TestLinkTable(t *testing.T) {
	out := LinkTable([]scene.LinkRow{
		{Source: "b", Target: "a", Ratio: 0.5, Reversed: true},
		{Source: "c", Target: "3.1", Ratio: 2, Dangling: true},
	})
	for _, want := range []string{"SOURCE", "b", "0.5", "reversed", "dangling", "3.1"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if got := LinkTable(nil); !strings.Contains(got, "no motion links") {
		t.Errorf("empty table = %q", got)
	}
}

func TestPlotVelocities(t *testing.T) {
	nan := math.NaN()
	series := [][]float64{{0, -1, -2, -2}, {nan, nan, nan, nan}}
	out := PlotVelocities([]string{"a", "gone"}, series, 30, 5, "velocity")
	if out == "" {
		t.Fatal("expected a plot")
	}
	if !strings.Contains(out, "velocity") || !strings.Contains(out, "a") {
		t.Errorf("missing caption or legend:\n%s", out)
	}
	if strings.Contains(out, "gone") {
		t.Error("all-NaN series should be dropped")
	}
	if got := PlotVelocities([]string{"gone"}, series[1:], 30, 5, ""); got != "" {
		t.Errorf("expected empty plot, got %q", got)
	}
}

func TestCanvasWheel(t *testing.T) {
	c := NewCanvas(20, 10)
	b := body.NewCuboid(1, r3.Vec{X: 0.4, Y: 0.4, Z: 0.4})
	c.Fit([]r3.Vec{b.Position}, 1)
	c.Wheel(b, 0.4)

	lit := 0
	for _, row := range c.Grid {
		for _, r := range row {
			if r != brailleBlank {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Fatal("wheel drew nothing")
	}

	c.Clear()
	if strings.Trim(c.String(), string(rune(brailleBlank))+"\n") != "" {
		t.Error("Clear left dots behind")
	}
}

func TestSummary(t *testing.T) {
	s, err := scene.Build(config.GetPreset("gear_pair"), nil)
	if err != nil {
		t.Fatal(err)
	}
	simr := s.Simulator()
	simr.AddMetric(metrics.NewTrackingError())
	res, err := simr.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	out := Summary(res)
	for _, want := range []string{"steps", "a ", "b ", "tracking_error"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestLiveToggleLink(t *testing.T) {
	m, err := NewLive(presetBuilder("gear_pair"))
	if err != nil {
		t.Fatal(err)
	}
	links := m.scene.World.Links()

	m.Update(key("l"))
	if !m.Detached() || links.Len() != 0 {
		t.Fatalf("detached=%v links=%d", m.Detached(), links.Len())
	}
	if !strings.Contains(m.View(), "detached") {
		t.Error("view does not mention the detached link")
	}

	m.Update(key("l"))
	if m.Detached() || links.Len() != 1 {
		t.Fatalf("detached=%v links=%d", m.Detached(), links.Len())
	}
}

func TestLiveStepPauseReset(t *testing.T) {
	m, err := NewLive(presetBuilder("gear_pair"))
	if err != nil {
		t.Fatal(err)
	}
	for range 30 {
		m.Update(TickMsg{})
	}
	if got := m.scene.World.StepCount(); got != 30 {
		t.Fatalf("steps = %d, want 30", got)
	}

	m.Update(key(" "))
	m.Update(TickMsg{})
	if got := m.scene.World.StepCount(); got != 30 {
		t.Errorf("paused model stepped: %d", got)
	}

	m.Update(key("r"))
	if got := m.scene.World.StepCount(); got != 0 {
		t.Errorf("reset left %d steps", got)
	}
	if len(m.history[0]) != 1 {
		t.Errorf("history after reset = %d samples", len(m.history[0]))
	}
	if !strings.Contains(m.View(), "GEAR_PAIR") {
		t.Error("view missing scene name")
	}
}

func TestThemes(t *testing.T) {
	defer SetTheme(CurrentTheme.Name)
	SetTheme("retro")
	NextTheme()
	if CurrentTheme.Name != "minimal" {
		t.Errorf("next after retro = %s", CurrentTheme.Name)
	}
	if GetTheme("nope").Name != "cyberpunk" {
		t.Error("unknown theme should fall back to cyberpunk")
	}
	if len(ThemeNames()) != len(Themes) {
		t.Error("ThemeNames length mismatch")
	}
}
