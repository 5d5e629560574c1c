// Package storage persists the tracked-job set between ingestion runs:
// a schema-versioned JSON file as the active artifact, timestamped snapshots
// with rotation, CSV export, and monthly archival of old closed jobs.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aswath-space/jobseekers-shovel/internal/model"
)

// SchemaVersion tags every file this package writes. Bump alongside any
// change to the record shape.
const SchemaVersion = "1.0.0"

// envelope is the on-disk structure of the active artifact and snapshots.
type envelope struct {
	Version     string              `json:"version"`
	GeneratedAt time.Time           `json:"generated_at"`
	JobCount    int                 `json:"job_count"`
	Jobs        []*model.TrackedJob `json:"jobs"`
}

// FileStore reads and writes the active jobs artifact (jobs-v1.json).
type FileStore struct {
	dataDir  string
	filePath string
}

// NewFileStore ensures dataDir exists and returns a store over it.
func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	major, _, _ := strings.Cut(SchemaVersion, ".")
	return &FileStore{
		dataDir:  dataDir,
		filePath: filepath.Join(dataDir, "jobs-v"+major+".json"),
	}, nil
}

// Path returns the location of the active artifact.
func (s *FileStore) Path() string { return s.filePath }

// Load reads all tracked jobs from the artifact. A missing file yields an
// empty set. Records that fail validation are skipped and logged rather than
// failing the whole load; a schema version mismatch is logged, not fatal.
func (s *FileStore) Load() ([]*model.TrackedJob, error) {
	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Info("no existing job data", "path", s.filePath)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.filePath, err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.filePath, err)
	}
	if env.Version != SchemaVersion {
		slog.Warn("schema version mismatch", "file", env.Version, "expected", SchemaVersion)
	}

	jobs := make([]*model.TrackedJob, 0, len(env.Jobs))
	for _, j := range env.Jobs {
		if err := j.Validate(); err != nil {
			slog.Error("skipping invalid job record", "id", j.ID, "err", err)
			continue
		}
		jobs = append(jobs, j)
	}
	slog.Info("loaded jobs from storage", "count", len(jobs), "path", s.filePath)
	return jobs, nil
}

// Save writes the full job set atomically: the envelope is written to a temp
// file in the same directory, then renamed over the artifact.
func (s *FileStore) Save(jobs []*model.TrackedJob) error {
	env := envelope{
		Version:     SchemaVersion,
		GeneratedAt: time.Now().UTC(),
		JobCount:    len(jobs),
		Jobs:        jobs,
	}

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal jobs: %w", err)
	}

	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.filePath); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}

	slog.Info("saved jobs to storage", "count", len(jobs), "path", s.filePath)
	return nil
}
