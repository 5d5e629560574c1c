package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// SnapshotManager keeps timestamped copies of the active artifact under a
// versions directory and enforces a retention limit.
type SnapshotManager struct {
	source      string // active artifact path
	versionsDir string
	maxVersions int
}

// Snapshot describes one stored copy.
type Snapshot struct {
	Path      string
	Name      string
	Timestamp time.Time
	SizeBytes int64
}

// NewSnapshotManager ensures versionsDir exists. maxVersions is the number of
// snapshots retained by Rotate.
func NewSnapshotManager(source, versionsDir string, maxVersions int) (*SnapshotManager, error) {
	if err := os.MkdirAll(versionsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create versions dir: %w", err)
	}
	return &SnapshotManager{source: source, versionsDir: versionsDir, maxVersions: maxVersions}, nil
}

// Create copies the current artifact into a timestamped snapshot and returns
// its path. A missing source yields ("", nil): nothing to snapshot yet.
func (m *SnapshotManager) Create() (string, error) {
	data, err := os.ReadFile(m.source)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", m.source, err)
	}

	name := fmt.Sprintf("jobs-v1-%s.json", time.Now().Format("20060102-150405.000000000"))
	path := filepath.Join(m.versionsDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return path, nil
}

// List returns all snapshots, newest first.
func (m *SnapshotManager) List() ([]Snapshot, error) {
	paths, err := filepath.Glob(filepath.Join(m.versionsDir, "jobs-v1-*.json"))
	if err != nil {
		return nil, err
	}

	snapshots := make([]Snapshot, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		snapshots = append(snapshots, Snapshot{
			Path:      p,
			Name:      filepath.Base(p),
			Timestamp: info.ModTime(),
			SizeBytes: info.Size(),
		})
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Timestamp.After(snapshots[j].Timestamp)
	})
	return snapshots, nil
}

// Rotate deletes snapshots beyond the retention limit, oldest first, and
// returns how many were removed.
func (m *SnapshotManager) Rotate() (int, error) {
	snapshots, err := m.List()
	if err != nil {
		return 0, err
	}
	if len(snapshots) <= m.maxVersions {
		return 0, nil
	}

	deleted := 0
	for _, s := range snapshots[m.maxVersions:] {
		if err := os.Remove(s.Path); err != nil {
			return deleted, fmt.Errorf("remove snapshot %s: %w", s.Name, err)
		}
		deleted++
	}
	return deleted, nil
}

// Restore copies the named snapshot over the active artifact, backing up the
// current artifact first.
func (m *SnapshotManager) Restore(name string) error {
	data, err := os.ReadFile(filepath.Join(m.versionsDir, name))
	if err != nil {
		return fmt.Errorf("read snapshot %s: %w", name, err)
	}

	if current, err := os.ReadFile(m.source); err == nil {
		backup := fmt.Sprintf("%s.backup-%s", m.source, time.Now().Format("20060102-150405"))
		if err := os.WriteFile(backup, current, 0o644); err != nil {
			return fmt.Errorf("back up current artifact: %w", err)
		}
	}

	if err := os.WriteFile(m.source, data, 0o644); err != nil {
		return fmt.Errorf("restore %s: %w", name, err)
	}
	return nil
}

// CleanupCorrupted removes snapshots that are not valid JSON and returns how
// many were removed.
func (m *SnapshotManager) CleanupCorrupted() (int, error) {
	snapshots, err := m.List()
	if err != nil {
		return 0, err
	}

	cleaned := 0
	for _, s := range snapshots {
		data, err := os.ReadFile(s.Path)
		if err != nil {
			continue
		}
		if json.Valid(data) {
			continue
		}
		if err := os.Remove(s.Path); err != nil {
			return cleaned, fmt.Errorf("remove corrupted snapshot %s: %w", s.Name, err)
		}
		cleaned++
	}
	return cleaned, nil
}
