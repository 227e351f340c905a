// Package store keeps finished runs on disk, one directory per run
// holding a metadata.json and a frames.csv. Frames are written with
// full float precision so a reloaded trajectory is bit-identical to
// the one that was saved.
package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/kvistgaard/tribody/internal/config"
	"github.com/kvistgaard/tribody/internal/orbit"
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
	Scenario   string             `json:"scenario"`
	Timestamp  time.Time          `json:"timestamp"`
	Integrator string             `json:"integrator"`
	Steps      int                `json:"steps"`
	Dt         float64            `json:"dt"`
	G          float64            `json:"g"`
	Epsilon    float64            `json:"epsilon"`
	Masses     [3]float64         `json:"masses"`
	Frames     int                `json:"frames"`
	Truncated  bool               `json:"truncated"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes one finished run and returns its generated ID.
func (s *Store) Save(sc *config.Scenario, tr *orbit.Trajectory, metrics map[string]float64) (string, error) {
	if tr.Len() == 0 {
		return "", fmt.Errorf("%w: nothing to save", orbit.ErrEmptyTrajectory)
	}

	runID := fmt.Sprintf("%s_%d", sc.Name, time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	first := tr.At(0).Bodies
	meta := RunMetadata{
		ID:         runID,
		Scenario:   sc.Name,
		Timestamp:  time.Now(),
		Integrator: sc.Integrator,
		Steps:      sc.Steps,
		Dt:         sc.Dt,
		G:          sc.G,
		Epsilon:    sc.Epsilon,
		Masses:     [3]float64{first[0].Mass, first[1].Mass, first[2].Mass},
		Frames:     tr.Len(),
		Truncated:  tr.Truncated(),
		Metrics:    metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "frames.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	return runID, WriteCSV(csvFile, tr)
}

// List returns metadata for every readable run under the base
// directory. Unreadable entries are skipped, not fatal.
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

// LoadTrajectory rebuilds a saved run's trajectory. Unlike List, a
// corrupt frame row is an error: a replay must never show garbage.
func (s *Store) LoadTrajectory(runID string) (*orbit.Trajectory, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.baseDir, runID, "frames.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return orbit.NewTrajectory(nil, meta.Truncated), nil
	}

	frames := make([]orbit.Frame, 0, len(records)-1)
	for i, rec := range records[1:] {
		frame, err := parseFrame(rec, meta.Masses)
		if err != nil {
			return nil, fmt.Errorf("run %s frame %d: %w", runID, i, err)
		}
		frames = append(frames, frame)
	}
	return orbit.NewTrajectory(frames, meta.Truncated), nil
}

func parseFrame(rec []string, masses [3]float64) (orbit.Frame, error) {
	if len(rec) != len(csvHeader) {
		return orbit.Frame{}, fmt.Errorf("row has %d fields, want %d", len(rec), len(csvHeader))
	}

	step, err := strconv.Atoi(rec[0])
	if err != nil {
		return orbit.Frame{}, err
	}

	vals := make([]float64, len(rec)-1)
	for i := 1; i < len(rec); i++ {
		v, err := strconv.ParseFloat(rec[i], 64)
		if err != nil {
			return orbit.Frame{}, err
		}
		vals[i-1] = v
	}

	frame := orbit.Frame{Step: step, Time: vals[0]}
	for b := 0; b < 3; b++ {
		frame.Bodies[b] = orbit.Body{
			Mass: masses[b],
			Pos:  r2.Vec{X: vals[1+b*4], Y: vals[2+b*4]},
			Vel:  r2.Vec{X: vals[3+b*4], Y: vals[4+b*4]},
		}
	}
	return frame, nil
}
