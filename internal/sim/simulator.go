package sim

import (
	"context"
	"log/slog"
	"math"

	"github.com/san-kum/gearsim/internal/world"
)

// Simulator steps one world for its configured duration and records the
// tracked joint velocities.
type Simulator struct {
	world     *world.World
	tracks    []Track
	metrics   []Metric
	observers []Observer
	logger    *slog.Logger
}

func New(w *world.World, tracks ...Track) *Simulator {
	return &Simulator{
		world:     w,
		tracks:    tracks,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    slog.New(slog.DiscardHandler),
	}
}

func (s *Simulator) AddMetric(m Metric)       { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer)   { s.observers = append(s.observers, o) }
func (s *Simulator) SetLogger(l *slog.Logger) { s.logger = l }
func (s *Simulator) World() *world.World      { return s.world }
func (s *Simulator) Tracks() []Track          { return s.tracks }

// Sample reads the tracked velocities without stepping.
func (s *Simulator) Sample() Sample {
	smp := Sample{Time: s.world.Time(), Velocities: make([]float64, len(s.tracks))}
	for i, tr := range s.tracks {
		v, ok := s.world.JointVelocity(tr.Joint)
		if !ok {
			v = math.NaN()
		}
		smp.Velocities[i] = v
	}
	return smp
}

// Step advances the world once and notifies metrics and observers.
func (s *Simulator) Step() (Sample, world.StepStats, error) {
	stats, err := s.world.Step()
	if err != nil {
		return Sample{}, stats, err
	}
	smp := s.Sample()
	for _, m := range s.metrics {
		m.Observe(s.world, stats)
	}
	for _, obs := range s.observers {
		obs.OnStep(s.world, smp, stats)
	}
	return smp, stats, nil
}

// Run steps until the world's Duration is covered, ctx is cancelled, or the
// state becomes invalid. An invalid state ends the run early and is reported
// in Result.Errors rather than as the returned error.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	steps := s.world.Config().Steps()
	result := &Result{
		Tracks:  make([]string, len(s.tracks)),
		Samples: make([]Sample, 0, steps+1),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}
	for i, tr := range s.tracks {
		result.Tracks[i] = tr.Name
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	result.Samples = append(result.Samples, s.Sample())

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		smp, _, err := s.Step()
		if err != nil {
			s.logger.Warn("stopping run", "error", err)
			result.Errors = append(result.Errors, err)
			break
		}
		result.StepsTaken++
		result.Samples = append(result.Samples, smp)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}
