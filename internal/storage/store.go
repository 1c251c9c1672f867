package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/san-kum/delaysim/internal/sweep"
)

const (
	metadataFile = "metadata.json"
	samplesFile  = "samples.csv"
	sweepFile    = "sweep.csv"
	configFile   = "config.yaml"
	catalogFile  = "runs.db"
)

const (
	KindRun   = "run"
	KindSweep = "sweep"
)

var ErrRunNotFound = errors.New("storage: run not found")

// Store keeps one directory per run under baseDir, indexed by a SQLite
// catalog.
type Store struct {
	baseDir string
	log     *zap.Logger
	catalog *catalog
}

func New(baseDir string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{baseDir: baseDir, log: log}
}

// Init creates the base directory and opens the catalog.
func (s *Store) Init() error {
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return err
	}
	c, err := openCatalog(filepath.Join(s.baseDir, catalogFile))
	if err != nil {
		return err
	}
	s.catalog = c
	return nil
}

func (s *Store) Close() error {
	if s.catalog == nil {
		return nil
	}
	return s.catalog.Close()
}

type SweepMetadata struct {
	Param   string  `json:"param"`
	Observe string  `json:"observe"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Stride  float64 `json:"stride"`
	Workers int     `json:"workers"`
	Points  int     `json:"points"`
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Kind       string             `json:"kind"`
	Model      string             `json:"model"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Steps      int                `json:"steps,omitempty"`
	Integrator string             `json:"integrator"`
	DelayMode  string             `json:"delay_mode"`
	Params     map[string]float64 `json:"params,omitempty"`
	Final      map[string]float64 `json:"final,omitempty"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
	Sweep      *SweepMetadata     `json:"sweep,omitempty"`
	Elapsed    float64            `json:"elapsed_seconds"`
}

// Run is an open run directory. Files are written into it while the
// simulation runs; Commit records the metadata.
type Run struct {
	ID  string
	Dir string
}

// Create allocates a new run directory named after the model and a fresh
// UUID.
func (s *Store) Create(model string) (*Run, error) {
	id := fmt.Sprintf("%s_%s", model, uuid.NewString())
	dir := filepath.Join(s.baseDir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Run{ID: id, Dir: dir}, nil
}

func (r *Run) SamplesPath() string { return filepath.Join(r.Dir, samplesFile) }
func (r *Run) SweepPath() string   { return filepath.Join(r.Dir, sweepFile) }
func (r *Run) ConfigPath() string  { return filepath.Join(r.Dir, configFile) }

// Discard removes a run directory that will not be committed.
func (s *Store) Discard(run *Run) error {
	s.log.Debug("discarding run", zap.String("id", run.ID))
	return os.RemoveAll(run.Dir)
}

// Commit writes metadata.json and adds the run to the catalog.
func (s *Store) Commit(run *Run, meta *RunMetadata) error {
	meta.ID = run.ID
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}

	f, err := os.Create(filepath.Join(run.Dir, metadataFile))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	if s.catalog != nil {
		if err := s.catalog.Put(meta); err != nil {
			return fmt.Errorf("storage: catalog: %w", err)
		}
	}
	s.log.Debug("run saved", zap.String("id", meta.ID), zap.String("kind", meta.Kind))
	return nil
}

// List returns catalogued runs, newest first. Without a catalog it scans the
// run directories.
func (s *Store) List() ([]RunMetadata, error) {
	if s.catalog != nil {
		return s.catalog.List()
	}
	return s.scan()
}

// Reindex rebuilds the catalog from the run directories and returns the
// number of runs found.
func (s *Store) Reindex() (int, error) {
	if s.catalog == nil {
		return 0, errors.New("storage: catalog not open")
	}
	runs, err := s.scan()
	if err != nil {
		return 0, err
	}
	if err := s.catalog.Reset(); err != nil {
		return 0, err
	}
	for i := range runs {
		if err := s.catalog.Put(&runs[i]); err != nil {
			return 0, err
		}
	}
	return len(runs), nil
}

func (s *Store) scan() ([]RunMetadata, error) {
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
			s.log.Debug("skipping run directory", zap.String("dir", entry.Name()), zap.Error(err))
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadSamples reads a run's samples.csv.
func (s *Store) LoadSamples(runID string) (*Series, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s has no samples", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()
	return ReadSamples(f)
}

// LoadSweep reads a sweep run's sweep.csv.
func (s *Store) LoadSweep(runID string) (*sweep.Result, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, sweepFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s has no sweep table", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()
	return ReadSweep(f)
}
