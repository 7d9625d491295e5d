package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/gearsim/internal/body"
	"github.com/san-kum/gearsim/internal/motionlink"
	"github.com/san-kum/gearsim/internal/scene"
	"github.com/san-kum/gearsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	canvasWidth     = 48
	canvasHeight    = 20
	historyCapacity = 300
	wheelRadius     = 0.4
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Builder creates a fresh scene. Live calls it again on reset.
type Builder func() (*scene.Scene, error)

// Live steps a scene once per frame and shows the wheels, tracked joint
// velocities and the link table.
type Live struct {
	build    Builder
	scene    *scene.Scene
	sim      *sim.Simulator
	history  [][]float64
	canvas   *Canvas
	running  bool
	showHelp bool
	err      error
	// detached holds the first link while it is toggled off.
	detached *motionlink.Entry
}

func NewLive(build Builder) (*Live, error) {
	m := &Live{build: build, canvas: NewCanvas(canvasWidth, canvasHeight), running: true}
	if err := m.reset(); err != nil {
		return nil, err
	}
	return m, nil
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m *Live) Init() tea.Cmd { return tick() }

func (m *Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
			}
		case "l":
			m.toggleLink()
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running && m.err == nil {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Live) reset() error {
	sc, err := m.build()
	if err != nil {
		return err
	}
	m.scene = sc
	m.sim = sc.Simulator()
	m.history = make([][]float64, len(m.sim.Tracks()))
	m.detached = nil
	m.err = nil
	m.record(m.sim.Sample())
	m.fit()
	return nil
}

// Step advances the scene one frame. It is what a TickMsg does while running.
func (m *Live) Step() { m.step() }

func (m *Live) step() {
	smp, _, err := m.sim.Step()
	if err != nil {
		m.err = err
		m.running = false
		return
	}
	m.record(smp)
}

func (m *Live) record(smp sim.Sample) {
	for i, v := range smp.Velocities {
		h := append(m.history[i], v)
		if len(h) > historyCapacity {
			h = h[1:]
		}
		m.history[i] = h
	}
}

// toggleLink detaches the first link in source order, or restores the one
// detached earlier.
func (m *Live) toggleLink() {
	w := m.scene.World
	if m.detached != nil {
		e := *m.detached
		if err := w.AttachMotionLink(e.Source, e.Target, e.Ratio, e.Reversed); err != nil {
			m.err = err
			return
		}
		m.detached = nil
		return
	}
	entries := w.Links().Entries()
	if len(entries) == 0 {
		return
	}
	e := entries[0]
	w.DetachMotionLink(e.Source)
	m.detached = &e
}

// Detached reports whether a link is currently toggled off.
func (m *Live) Detached() bool { return m.detached != nil }

func (m *Live) fit() {
	var points []r3.Vec
	m.scene.World.Bodies().Each(func(_ body.Handle, b *body.Body) {
		if b.IsDynamic() {
			points = append(points, b.Position)
		}
	})
	m.canvas.Fit(points, 2*wheelRadius)
}

func (m *Live) draw() {
	m.canvas.Clear()
	m.scene.World.Bodies().Each(func(_ body.Handle, b *body.Body) {
		if b.IsDynamic() {
			m.canvas.Wheel(b, wheelRadius)
		}
	})
}

func (m *Live) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(HeaderStyle.Foreground(CurrentTheme.Primary).Render(strings.ToUpper(m.scene.Config.Name)) + "\n")
	switch {
	case m.err != nil:
		s.WriteString(StatusError.Render("STOPPED: "+m.err.Error()) + "\n\n")
	case m.running:
		s.WriteString(StatusRunning.Render("RUNNING") + "\n\n")
	default:
		s.WriteString(StatusPaused.Render("PAUSED") + "\n\n")
	}

	w := m.scene.World
	s.WriteString(labelStyle.Render("Time") + MetricValue.Render(fmt.Sprintf("%.2fs", w.Time())) + "\n")
	last := m.sim.Sample()
	for i, tr := range m.sim.Tracks() {
		s.WriteString(labelStyle.Render(tr.Name) + MetricValue.Render(fmt.Sprintf("%+.3f", last.Velocities[i])) + " ")
		s.WriteString(SparklineChart(m.history[i], 20) + "\n")
	}

	names := make([]string, len(m.sim.Tracks()))
	for i, tr := range m.sim.Tracks() {
		names[i] = tr.Name
	}
	if len(m.history) > 0 && len(m.history[0]) > 1 {
		if chart := PlotVelocities(names, m.history, 40, 6, "joint velocity"); chart != "" {
			s.WriteString("\n" + chart + "\n")
		}
	}

	s.WriteString("\n" + Separator(40) + "\n" + LinkTable(m.scene.LinkRows()) + "\n")
	if m.detached != nil {
		s.WriteString(Subtle.Render(fmt.Sprintf("link on %s detached", m.detachedName())) + "\n")
	}
	s.WriteString(helpStyle.Render(KeyHint.Render("SP:Pause R:Reset L:Link T:Theme ?:Help Q:Quit")))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return GlassPanel.Render(strings.Join([]string{
			"Space  pause or resume",
			"R      rebuild the scene",
			"L      detach or reattach the first link",
			"T      cycle themes",
			"?      toggle this help",
			"Q      quit",
		}, "\n")) + "\n\n" + mainView
	}
	return mainView
}

func (m *Live) detachedName() string {
	if name, ok := m.scene.JointName(m.detached.Source); ok {
		return name
	}
	return m.detached.Source.String()
}

// RunLive starts the full-screen program and blocks until the user quits.
func RunLive(build Builder) error {
	m, err := NewLive(build)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
