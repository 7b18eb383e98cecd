// Package output writes the per-step defect record files and per-run
// metadata the simulator produces, mirroring the teacher's storage
// package's run-directory-plus-metadata-file layout adapted to the
// fixed-width record format described for this domain.
package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/ddsim/internal/coord"
	"github.com/san-kum/ddsim/internal/defect"
	"github.com/san-kum/ddsim/internal/slipplane"
)

// Store owns a base directory under which every run gets its own
// subdirectory of step files plus a metadata.json.
type Store struct {
	baseDir string
}

// New builds a Store rooted at baseDir.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Init ensures the base directory exists.
func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata records the parameters and outcome of one run.
type RunMetadata struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Seed        int64     `json:"seed"`
	Mu          float64   `json:"mu"`
	Nu          float64   `json:"nu"`
	B           float64   `json:"b"`
	TauCRSS     float64   `json:"tau_crss"`
	StepCount   int       `json:"step_count"`
	StepsRun    int       `json:"steps_run"`
	TimeElapsed float64   `json:"time_elapsed"`
	Err         string    `json:"error,omitempty"`
}

// RunDir returns the directory a run's step files and metadata live
// under, creating it if necessary.
func (s *Store) RunDir(runID string) (string, error) {
	dir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// SaveMetadata writes meta into runID's metadata.json.
func (s *Store) SaveMetadata(runID string, meta RunMetadata) error {
	dir, err := s.RunDir(runID)
	if err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, "metadata.json"))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// List returns every run's metadata found under the base directory.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}
	runs := make([]RunMetadata, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	return runs, nil
}

// StepFileName builds the caller-supplied mask plus the step index,
// e.g. mask "defects_" and step 42 gives "defects_42".
func StepFileName(mask string, step int) string {
	return mask + strconv.Itoa(step)
}

// WriteStep writes one fixed-width record per defect across every
// plane, in the order the planes are given, to runID's step file.
func (s *Store) WriteStep(runID, mask string, step int, planes []*slipplane.SlipPlane) error {
	dir, err := s.RunDir(runID)
	if err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, StepFileName(mask, step)))
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	defer w.Flush()

	for _, p := range planes {
		for _, d := range p.Defects {
			if err := writeRecord(w, d); err != nil {
				return err
			}
		}
	}
	return nil
}

// significantDigits is the fixed precision every floating point field
// in a step record is written with.
const significantDigits = 12

func format12(v float64) string {
	return strconv.FormatFloat(v, 'e', significantDigits-1, 64)
}

func writeRecord(w *bufio.Writer, d defect.Defect) error {
	sigma, force, vel := fieldsOf(d)
	_, err := fmt.Fprintf(w, "%s %s %s %s %s %s %s %s %s %s %s %s %s %s %s %s\n",
		d.Kind.String(),
		format12(d.Position.X()), format12(d.Position.Y()), format12(d.Position.Z()),
		format12(sigma.XX), format12(sigma.YY), format12(sigma.ZZ),
		format12(sigma.XY), format12(sigma.XZ), format12(sigma.YZ),
		format12(force.X()), format12(force.Y()), format12(force.Z()),
		format12(vel.X()), format12(vel.Y()), format12(vel.Z()),
	)
	return err
}

func fieldsOf(d defect.Defect) (sigma coord.Stress, force, vel coord.Vector3d) {
	if d.Kind == defect.DislocationKind && d.Disloc != nil {
		return d.Disloc.TotalStress, d.Disloc.TotalForce, d.Disloc.Velocity
	}
	return coord.ZeroStress, coord.ZeroVector3d, coord.ZeroVector3d
}
