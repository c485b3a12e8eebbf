package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/gravlab/internal/sim"
)

// Store persists finished runs, one directory per run: metadata.json plus
// a frames.csv of per-step metric history.
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
	ID          string             `json:"id"`
	Scenario    string             `json:"scenario"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        int64              `json:"seed"`
	Dt          float64            `json:"dt"`
	Frames      int                `json:"frames"`
	FinalBodies int                `json:"final_bodies"`
	EnergyDrift float64            `json:"energy_drift"`
	Trackers    map[string]float64 `json:"trackers,omitempty"`
}

// Save writes a run directory and returns the run id.
func (s *Store) Save(scenarioName string, dt float64, seed int64, trackers map[string]float64, result *sim.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", scenarioName, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	finalBodies := 0
	if len(result.BodyCounts) > 0 {
		finalBodies = result.BodyCounts[len(result.BodyCounts)-1]
	}
	meta := RunMetadata{
		ID:          runID,
		Scenario:    scenarioName,
		Timestamp:   time.Now(),
		Seed:        seed,
		Dt:          dt,
		Frames:      result.StepsTaken,
		FinalBodies: finalBodies,
		EnergyDrift: result.EnergyDrift,
		Trackers:    trackers,
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

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write([]string{"time", "energy", "momentum", "bodies"}); err != nil {
		return "", err
	}
	for i := range result.Times {
		row := []string{
			strconv.FormatFloat(result.Times[i], 'f', 6, 64),
			strconv.FormatFloat(result.Energy[i], 'f', 6, 64),
			strconv.FormatFloat(result.Momentum[i], 'f', 6, 64),
			strconv.Itoa(result.BodyCounts[i]),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

// List returns metadata for every saved run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var runs []RunMetadata
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.LoadMetadata(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) LoadMetadata(runID string) (*RunMetadata, error) {
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

// LoadHistory reads the frames.csv back into per-column series.
func (s *Store) LoadHistory(runID string) (times, energy, momentum []float64, err error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "frames.csv"))
	if err != nil {
		return nil, nil, nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}
	for i, row := range rows {
		if i == 0 || len(row) < 4 {
			continue
		}
		t, err1 := strconv.ParseFloat(row[0], 64)
		e, err2 := strconv.ParseFloat(row[1], 64)
		p, err3 := strconv.ParseFloat(row[2], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, nil, nil, fmt.Errorf("storage: malformed row %d in %s", i, runID)
		}
		times = append(times, t)
		energy = append(energy, e)
		momentum = append(momentum, p)
	}
	return times, energy, momentum, nil
}
