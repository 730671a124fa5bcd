package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/san-kum/threebody/internal/dynamo"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
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

// RunMetadata describes a saved run. Bodies holds the initial conditions.
type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Timestamp  time.Time          `json:"timestamp"`
	TimeStep   float64            `json:"time_step"`
	TotalSteps int                `json:"total_steps"`
	StepsTaken int                `json:"steps_taken"`
	Stride     int                `json:"stride"`
	Frames     int                `json:"frames"`
	G          float64            `json:"g"`
	Epsilon    float64            `json:"epsilon"`
	Integrator string             `json:"integrator"`
	Field      string             `json:"field"`
	Bodies     []dynamo.Body      `json:"bodies"`
	Metrics    map[string]float64 `json:"metrics"`
}

// FrameRow is one body of one snapshot in frames.csv.
type FrameRow struct {
	Step int     `csv:"step"`
	Time float64 `csv:"time"`
	Body int     `csv:"body"`
	Mass float64 `csv:"mass"`
	X    float64 `csv:"x"`
	Y    float64 `csv:"y"`
	VX   float64 `csv:"vx"`
	VY   float64 `csv:"vy"`
}

// Save writes meta and frames under a fresh run directory and returns the
// run id. ID, Timestamp and Frames in meta are filled in. On failure the run
// directory is removed.
func (s *Store) Save(meta RunMetadata, frames []dynamo.Snapshot) (string, error) {
	name := meta.Name
	if name == "" {
		name = "run"
	}
	now := time.Now()
	runID, runDir, err := s.createRunDir(fmt.Sprintf("%s_%d", name, now.Unix()))
	if err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Name = name
	meta.Timestamp = now
	meta.Frames = len(frames)
	meta.Metrics = finiteMetrics(meta.Metrics)

	if err := writeRun(runDir, meta, frames); err != nil {
		if rmErr := os.RemoveAll(runDir); rmErr != nil {
			return "", errors.Join(err, rmErr)
		}
		return "", err
	}
	return runID, nil
}

func writeRun(runDir string, meta RunMetadata, frames []dynamo.Snapshot) error {
	err := createFile(filepath.Join(runDir, metadataFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	})
	if err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	err = createFile(filepath.Join(runDir, framesFile), func(w io.Writer) error {
		return WriteCSV(w, frames)
	})
	if err != nil {
		return fmt.Errorf("write frames: %w", err)
	}
	return nil
}

// createFile runs write against a new file at path. A failed Close is
// reported when write itself succeeded.
func createFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}

// finiteMetrics drops values JSON cannot represent, such as the +Inf
// separation of a single-body run.
func finiteMetrics(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}

// createRunDir makes base/id, suffixing id when a run with the same id
// already exists.
func (s *Store) createRunDir(id string) (string, string, error) {
	candidate := id
	for n := 1; ; n++ {
		dir := filepath.Join(s.baseDir, candidate)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return candidate, dir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
		candidate = fmt.Sprintf("%s_%d", id, n)
	}
}

// List returns the saved runs, oldest first. Directories without readable
// metadata are skipped.
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

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadFrames(runID string) ([]dynamo.Snapshot, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	frames, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return frames, nil
}

// WriteCSV writes one row per body per snapshot, with a header.
func WriteCSV(w io.Writer, frames []dynamo.Snapshot) error {
	rows := make([]FrameRow, 0, len(frames)*3)
	for _, f := range frames {
		for i, b := range f.Bodies {
			rows = append(rows, FrameRow{
				Step: f.Step,
				Time: f.Time,
				Body: i,
				Mass: b.Mass,
				X:    b.Position.X,
				Y:    b.Position.Y,
				VX:   b.Velocity.X,
				VY:   b.Velocity.Y,
			})
		}
	}
	return gocsv.Marshal(rows, w)
}

// ReadCSV rebuilds snapshots from rows written by WriteCSV. Rows of the same
// snapshot must be contiguous and ordered by body index.
func ReadCSV(r io.Reader) ([]dynamo.Snapshot, error) {
	var rows []FrameRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return []dynamo.Snapshot{}, nil
		}
		return nil, err
	}

	frames := make([]dynamo.Snapshot, 0)
	for _, row := range rows {
		if len(frames) == 0 || frames[len(frames)-1].Step != row.Step {
			frames = append(frames, dynamo.Snapshot{Step: row.Step, Time: row.Time})
		}
		cur := &frames[len(frames)-1]
		if row.Body != len(cur.Bodies) {
			return nil, fmt.Errorf("step %d: expected body %d, got %d", row.Step, len(cur.Bodies), row.Body)
		}
		cur.Bodies = append(cur.Bodies, dynamo.Body{
			Mass:     row.Mass,
			Position: dynamo.Vec{X: row.X, Y: row.Y},
			Velocity: dynamo.Vec{X: row.VX, Y: row.VY},
		})
	}
	return frames, nil
}
