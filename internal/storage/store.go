// Package storage keeps simulation runs on disk, one directory per run:
// metadata.json, states.csv with one column per tracked joint, and the
// motion-link table as links.json and links.bin.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/gearsim/internal/motionlink"
	"github.com/san-kum/gearsim/internal/sim"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	UUID       string             `json:"uuid"`
	Scene      string             `json:"scene"`
	Timestamp  time.Time          `json:"timestamp"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Iterations int                `json:"iterations"`
	Steps      int                `json:"steps"`
	Tracks     []string           `json:"tracks"`
	Links      int                `json:"links"`
	Metrics    map[string]float64 `json:"metrics"`
	Errors     []string           `json:"errors,omitempty"`
}

// Save writes a run and returns its id. meta supplies the scene name and
// solver settings; the rest is filled in from result and links.
func (s *Store) Save(meta RunMetadata, result *sim.Result, links []motionlink.Entry) (string, error) {
	u := uuid.New()
	meta.UUID = u.String()
	meta.ID = fmt.Sprintf("%s_%s", meta.Scene, strings.SplitN(meta.UUID, "-", 2)[0])
	meta.Timestamp = time.Now()
	meta.Steps = result.StepsTaken
	meta.Tracks = result.Tracks
	meta.Links = len(links)
	meta.Metrics = result.Metrics
	for _, err := range result.Errors {
		meta.Errors = append(meta.Errors, err.Error())
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeStates(filepath.Join(runDir, "states.csv"), result); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "links.json"), links); err != nil {
		return "", err
	}
	bin, err := motionlink.AppendEntries(nil, links)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(runDir, "links.bin"), bin, 0644); err != nil {
		return "", err
	}

	return meta.ID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeStates(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := append([]string{"time"}, result.Tracks...)
	if err := w.Write(header); err != nil {
		return err
	}

	for _, smp := range result.Samples {
		row := []string{strconv.FormatFloat(smp.Time, 'f', 6, 64)}
		for _, v := range smp.Velocities {
			row = append(row, strconv.FormatFloat(v, 'g', 10, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns saved runs, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadStates returns the track names, one velocity row per sample and the
// sample times.
func (s *Store) LoadStates(runID string) ([]string, [][]float64, []float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return nil, nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}

	if len(records) == 0 {
		return []string{}, [][]float64{}, []float64{}, nil
	}

	tracks := records[0][1:]
	times := make([]float64, 0, len(records)-1)
	states := make([][]float64, 0, len(records)-1)

	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) == 0 {
			continue
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		times = append(times, t)

		state := make([]float64, 0, len(record)-1)
		for j := 1; j < len(record); j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				continue
			}
			state = append(state, val)
		}
		states = append(states, state)
	}

	return tracks, states, times, nil
}

// LoadLinks reads the binary link snapshot, falling back to links.json for
// runs saved without one.
func (s *Store) LoadLinks(runID string) ([]motionlink.Entry, error) {
	dir := filepath.Join(s.baseDir, runID)
	if bin, err := os.ReadFile(filepath.Join(dir, "links.bin")); err == nil {
		return motionlink.DecodeEntries(bin)
	}

	data, err := os.ReadFile(filepath.Join(dir, "links.json"))
	if err != nil {
		return nil, err
	}
	var links []motionlink.Entry
	if err := json.Unmarshal(data, &links); err != nil {
		return nil, err
	}
	return links, nil
}
