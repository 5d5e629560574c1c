package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aswath-space/jobseekers-shovel/internal/model"
)

// Archiver moves old closed jobs out of the active set into monthly archive
// files, keeping the active artifact from growing without bound. The classify
// core never deletes records; this is the storage layer's retention policy.
type Archiver struct {
	archiveDir    string
	retentionDays int
}

// archivedJob is the trimmed record written to archive files.
type archivedJob struct {
	ID             string    `json:"id"`
	CompanyID      string    `json:"company_id"`
	CompanyName    string    `json:"company_name"`
	Title          string    `json:"title"`
	Location       string    `json:"location"`
	Signature      string    `json:"signature"`
	Classification string    `json:"classification"`
	FirstSeen      time.Time `json:"first_seen"`
	LastSeen       time.Time `json:"last_seen"`
	ArchivedAt     time.Time `json:"archived_at"`
}

type archiveEnvelope struct {
	Version      string        `json:"version"`
	ArchiveMonth string        `json:"archive_month"`
	JobCount     int           `json:"job_count"`
	Jobs         []archivedJob `json:"jobs"`
}

// NewArchiver ensures archiveDir exists. Closed jobs whose last_seen is older
// than retentionDays are eligible for archival.
func NewArchiver(archiveDir string, retentionDays int) (*Archiver, error) {
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	return &Archiver{archiveDir: archiveDir, retentionDays: retentionDays}, nil
}

// ArchiveOld appends eligible jobs to their monthly archive file (keyed by
// last_seen month) and returns the remaining active set plus the number
// archived. Jobs that fail to archive stay in the active set.
func (a *Archiver) ArchiveOld(jobs []*model.TrackedJob, now time.Time) ([]*model.TrackedJob, int, error) {
	cutoff := now.AddDate(0, 0, -a.retentionDays)

	kept := make([]*model.TrackedJob, 0, len(jobs))
	archived := 0
	for _, j := range jobs {
		if j.Status != model.StatusClosed || !j.LastSeen.Before(cutoff) {
			kept = append(kept, j)
			continue
		}
		if err := a.appendToArchive(j, now); err != nil {
			slog.Error("failed to archive job", "id", j.ID, "err", err)
			kept = append(kept, j)
			continue
		}
		archived++
	}

	if archived > 0 {
		slog.Info("archived old closed jobs", "count", archived, "retentionDays", a.retentionDays)
	}
	return kept, archived, nil
}

func (a *Archiver) appendToArchive(job *model.TrackedJob, now time.Time) error {
	month := job.LastSeen.Format("2006-01")
	path := filepath.Join(a.archiveDir, "jobs-"+month+".json")

	env := archiveEnvelope{Version: SchemaVersion, ArchiveMonth: month}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// first job for this month
	case err != nil:
		return fmt.Errorf("read archive %s: %w", path, err)
	default:
		if err := json.Unmarshal(data, &env); err != nil {
			return fmt.Errorf("parse archive %s: %w", path, err)
		}
	}

	env.Jobs = append(env.Jobs, archivedJob{
		ID:             job.ID,
		CompanyID:      job.CompanyID,
		CompanyName:    job.CompanyName,
		Title:          job.Title,
		Location:       job.Location,
		Signature:      job.Signature,
		Classification: string(job.Classification),
		FirstSeen:      job.FirstSeen,
		LastSeen:       job.LastSeen,
		ArchivedAt:     now.UTC(),
	})
	env.JobCount = len(env.Jobs)

	out, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal archive %s: %w", path, err)
	}
	return os.WriteFile(path, out, 0o644)
}
