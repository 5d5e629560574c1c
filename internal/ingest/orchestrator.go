package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aswath-space/jobseekers-shovel/internal/classify"
	"github.com/aswath-space/jobseekers-shovel/internal/config"
	"github.com/aswath-space/jobseekers-shovel/internal/model"
	"github.com/aswath-space/jobseekers-shovel/internal/store"
	"github.com/aswath-space/jobseekers-shovel/internal/storage"
)

// CompanyResult summarizes one company's ingestion outcome.
type CompanyResult struct {
	CompanyID   string `json:"company_id"`
	CompanyName string `json:"company_name"`
	Adapter     string `json:"adapter"`
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`

	JobsFetched    int `json:"jobs_fetched"`
	JobsClassified int `json:"jobs_classified"`
	NewJobs        int `json:"new_jobs"`
	RepostJobs     int `json:"repost_jobs"`
	ExistingJobs   int `json:"existing_jobs"`

	observedIDs []string
}

// CycleResult summarizes one full ingestion cycle.
type CycleResult struct {
	StartedAt     time.Time       `json:"started_at"`
	Duration      time.Duration   `json:"duration"`
	Companies     []CompanyResult `json:"companies"`
	Succeeded     int             `json:"succeeded"`
	Failed        int             `json:"failed"`
	MarkedMissing int             `json:"marked_missing"`
	Closed        int             `json:"closed"`
	TotalJobs     int             `json:"total_jobs"`
}

// Orchestrator drives one ingestion cycle: fetch postings per company,
// classify them, run the lifecycle sweeps, then persist with snapshots and
// archival. A nil redis client disables event publishing.
type Orchestrator struct {
	cfg       *config.Config
	crawler   *Crawler
	fileStore *storage.FileStore
	snapshots *storage.SnapshotManager
	archiver  *storage.Archiver
	rdb       *redis.Client
}

// NewOrchestrator wires up the file-backed ingestion pipeline from cfg.
func NewOrchestrator(cfg *config.Config, rdb *redis.Client) (*Orchestrator, error) {
	fileStore, err := storage.NewFileStore(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("init file store: %w", err)
	}
	snapshots, err := storage.NewSnapshotManager(fileStore.Path(), cfg.Storage.VersionsDir, cfg.Storage.MaxVersions)
	if err != nil {
		return nil, fmt.Errorf("init snapshot manager: %w", err)
	}
	archiver, err := storage.NewArchiver(cfg.Storage.ArchiveDir, cfg.Storage.RetentionDays)
	if err != nil {
		return nil, fmt.Errorf("init archiver: %w", err)
	}

	crawler := NewCrawler(CrawlerOptions{
		RequestDelay: time.Duration(cfg.Crawling.RequestDelaySeconds * float64(time.Second)),
		UserAgent:    cfg.Crawling.UserAgent,
		Timeout:      time.Duration(cfg.Crawling.TimeoutSeconds) * time.Second,
		MaxRetries:   cfg.Crawling.MaxRetries,
		RetryBackoff: time.Duration(cfg.Crawling.RetryBackoffSeconds * float64(time.Second)),
	})

	return &Orchestrator{
		cfg:       cfg,
		crawler:   crawler,
		fileStore: fileStore,
		snapshots: snapshots,
		archiver:  archiver,
		rdb:       rdb,
	}, nil
}

// Run executes one complete ingestion cycle. Per-company failures are
// recorded in the result and do not abort the cycle; persistence failures do.
func (o *Orchestrator) Run(ctx context.Context) (*CycleResult, error) {
	start := time.Now().UTC()
	slog.Info("starting ingestion cycle", "companies", len(o.cfg.Companies))

	existing, err := o.fileStore.Load()
	if err != nil {
		return nil, fmt.Errorf("load existing jobs: %w", err)
	}
	st := store.NewMemoryFrom(existing)
	slog.Info("loaded existing jobs", "count", len(existing))

	classifier, err := classify.New(st, o.cfg.Classification.RepostWindowDays, o.cfg.Classification.SimilarityThreshold)
	if err != nil {
		return nil, fmt.Errorf("init classifier: %w", err)
	}

	result := &CycleResult{StartedAt: start}
	var observed []string

	for _, company := range o.cfg.Companies {
		cr := o.processCompany(ctx, classifier, company, start)
		if cr.Success {
			result.Succeeded++
			observed = append(observed, cr.observedIDs...)
			slog.Info("company ingested",
				"company", company.ID,
				"classified", cr.JobsClassified,
				"new", cr.NewJobs, "repost", cr.RepostJobs, "existing", cr.ExistingJobs)
		} else {
			result.Failed++
			slog.Error("company ingestion failed", "company", company.ID, "err", cr.Error)
		}
		result.Companies = append(result.Companies, cr)
	}

	missing, err := classifier.MarkMissingJobs(ctx, observed, start)
	if err != nil {
		return nil, fmt.Errorf("mark missing jobs: %w", err)
	}
	result.MarkedMissing = missing
	if missing > 0 {
		slog.Info("marked jobs missing", "count", missing)
	}

	closed, err := classifier.CloseOldMissingJobs(ctx, o.cfg.Classification.CloseTimeoutDays, start)
	if err != nil {
		return nil, fmt.Errorf("close old missing jobs: %w", err)
	}
	result.Closed = closed
	if closed > 0 {
		slog.Info("closed stale jobs", "count", closed, "timeout_days", o.cfg.Classification.CloseTimeoutDays)
	}

	jobs, err := st.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect jobs: %w", err)
	}

	// Move long-closed jobs out of the active artifact before saving.
	kept, archived, err := o.archiver.ArchiveOld(jobs, start)
	if err != nil {
		slog.Error("archival failed, keeping all jobs in active set", "err", err)
		kept = jobs
	} else if archived > 0 {
		slog.Info("archived old closed jobs", "count", archived)
	}

	if err := o.fileStore.Save(kept); err != nil {
		return nil, fmt.Errorf("save jobs: %w", err)
	}
	result.TotalJobs = len(kept)
	slog.Info("saved jobs", "count", len(kept), "path", o.fileStore.Path())

	if name, err := o.snapshots.Create(); err != nil {
		slog.Warn("snapshot failed", "err", err)
	} else if name != "" {
		slog.Info("created snapshot", "name", name)
	}
	if deleted, err := o.snapshots.Rotate(); err != nil {
		slog.Warn("snapshot rotation failed", "err", err)
	} else if deleted > 0 {
		slog.Info("rotated snapshots", "deleted", deleted)
	}

	result.Duration = time.Since(start)
	o.publishCycleComplete(ctx, result)

	slog.Info("ingestion cycle complete",
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"total_jobs", result.TotalJobs,
		"duration", result.Duration.Round(time.Millisecond))
	return result, nil
}

func (o *Orchestrator) processCompany(ctx context.Context, classifier *classify.Classifier, company config.Company, now time.Time) CompanyResult {
	cr := CompanyResult{
		CompanyID:   company.ID,
		CompanyName: company.Name,
		Adapter:     company.Adapter,
	}

	adapter, err := NewAdapter(company.Adapter, company.ID, company.Name)
	if err != nil {
		cr.Error = err.Error()
		return cr
	}

	var rawJobs []model.RawJob
	for _, src := range company.Sources {
		jobs, err := adapter.FetchJobs(ctx, src.URL, o.crawler)
		if err != nil {
			// One broken source does not sink the others.
			slog.Error("source fetch failed", "company", company.ID, "url", src.URL, "err", err)
			continue
		}
		rawJobs = append(rawJobs, jobs...)
	}
	cr.JobsFetched = len(rawJobs)

	for _, raw := range rawJobs {
		job, err := classifier.ClassifyJob(ctx, raw, now)
		if err != nil {
			slog.Error("classification failed", "company", company.ID, "title", raw.Title, "err", err)
			continue
		}
		cr.JobsClassified++
		cr.observedIDs = append(cr.observedIDs, job.ID)

		switch job.Classification {
		case model.ClassificationNew:
			if job.FirstSeen.Equal(now) {
				cr.NewJobs++
			} else {
				cr.ExistingJobs++
			}
		case model.ClassificationRepost:
			if job.FirstSeen.Equal(now) {
				cr.RepostJobs++
			} else {
				cr.ExistingJobs++
			}
		default:
			cr.ExistingJobs++
		}

		o.publishClassified(ctx, job)
	}

	cr.Success = true
	return cr
}

// publishClassified emits a JOB_CLASSIFIED event (non-fatal).
func (o *Orchestrator) publishClassified(ctx context.Context, job *model.TrackedJob) {
	if o.rdb == nil {
		return
	}
	event, _ := json.Marshal(map[string]string{
		"type":           "JOB_CLASSIFIED",
		"jobId":          job.ID,
		"companyId":      job.CompanyID,
		"classification": string(job.Classification),
		"status":         string(job.Status),
	})
	if err := o.rdb.Publish(ctx, "JOB_CLASSIFIED", event).Err(); err != nil {
		slog.Warn("publish JOB_CLASSIFIED failed", "err", err)
	}
}

// publishCycleComplete emits an INGEST_CYCLE_COMPLETE event (non-fatal).
func (o *Orchestrator) publishCycleComplete(ctx context.Context, result *CycleResult) {
	if o.rdb == nil {
		return
	}
	event, _ := json.Marshal(map[string]any{
		"type":      "INGEST_CYCLE_COMPLETE",
		"succeeded": result.Succeeded,
		"failed":    result.Failed,
		"totalJobs": result.TotalJobs,
		"startedAt": result.StartedAt.Format(time.RFC3339),
	})
	if err := o.rdb.Publish(ctx, "INGEST_CYCLE_COMPLETE", event).Err(); err != nil {
		slog.Warn("publish INGEST_CYCLE_COMPLETE failed", "err", err)
	}
}
