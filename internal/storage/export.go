package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/gearsim/internal/motionlink"
	"github.com/san-kum/gearsim/internal/sim"
)

type ExportData struct {
	Scene      string             `json:"scene"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Steps      int                `json:"steps"`
	Tracks     []string           `json:"tracks"`
	Times      []float64          `json:"times"`
	Velocities [][]float64        `json:"velocities"`
	Links      []motionlink.Entry `json:"links"`
	Metrics    map[string]float64 `json:"metrics"`
}

// ExportJSON writes a whole run as one JSON document.
func ExportJSON(w io.Writer, scene string, dt, duration float64, result *sim.Result, links []motionlink.Entry) error {
	data := ExportData{
		Scene:      scene,
		Dt:         dt,
		Duration:   duration,
		Steps:      result.StepsTaken,
		Tracks:     result.Tracks,
		Times:      make([]float64, len(result.Samples)),
		Velocities: make([][]float64, len(result.Samples)),
		Links:      links,
		Metrics:    result.Metrics,
	}

	for i, s := range result.Samples {
		data.Times[i] = s.Time
		data.Velocities[i] = s.Velocities
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
