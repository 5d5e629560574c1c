// Package classify decides, for each freshly observed job posting, whether it
// is a re-observation of a known job, a repost, a reopened job, or brand new,
// and moves tracked jobs through their lifecycle states.
//
// A repost creates a new tracked record: reposts are a distinct postings-level
// event worth counting separately, even though a human reader may consider
// them "the same role". A reopening mutates the existing record in place: the
// same long-lived role is back, so its identity and first_seen persist. This
// asymmetry is deliberate.
package classify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aswath-space/jobseekers-shovel/internal/match"
	"github.com/aswath-space/jobseekers-shovel/internal/model"
	"github.com/aswath-space/jobseekers-shovel/internal/normalize"
	"github.com/aswath-space/jobseekers-shovel/internal/store"
)

// Classifier owns the classification precedence and the lifecycle sweeps.
// Within one ingestion cycle its methods must be called sequentially per
// company: each call both reads the store for matching and writes to it, and
// later observations must see the cumulative effect of earlier ones so that
// near-duplicates within a single run deduplicate against each other.
type Classifier struct {
	repostWindowDays int
	matcher          *match.Matcher
	store            store.Store
}

// New returns a Classifier over the given store. The similarity threshold is
// validated by the matcher; anything outside [0, 1] fails construction.
func New(st store.Store, repostWindowDays int, similarityThreshold float64) (*Classifier, error) {
	m, err := match.New(similarityThreshold)
	if err != nil {
		return nil, err
	}
	return &Classifier{
		repostWindowDays: repostWindowDays,
		matcher:          m,
		store:            st,
	}, nil
}

// ClassifyJob classifies one raw observation against the tracked set, in this
// precedence order (first match wins):
//
//  1. exact source-identifier match for the same company → update in place
//  2. similar signature among the company's open jobs seen within the repost
//     window → new record classified as a repost
//  3. similar signature among the company's closed jobs → reopen in place
//  4. no match → new record
//
// The returned record always carries a non-empty reasoning string; when a
// similarity match drove the decision it names the matched job id and score.
func (c *Classifier) ClassifyJob(ctx context.Context, raw model.RawJob, now time.Time) (*model.TrackedJob, error) {
	if raw.SourceIdentifier != "" {
		known, err := c.store.FindBySourceID(ctx, raw.CompanyID, raw.SourceIdentifier)
		if err == nil {
			return c.updateExisting(ctx, known, raw, now)
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}

	signature := normalize.Signature(raw.CompanyID, raw.Title, raw.Location)

	recent, score, err := c.findSimilarRecent(ctx, signature, raw.CompanyID, now)
	if err != nil {
		return nil, err
	}
	if recent != nil {
		return c.createRepost(ctx, raw, signature, recent, score, now)
	}

	closed, _, err := c.findSimilarClosed(ctx, signature, raw.CompanyID)
	if err != nil {
		return nil, err
	}
	if closed != nil {
		return c.reopen(ctx, closed, raw, signature, now)
	}

	return c.createNew(ctx, raw, signature, now)
}

// findSimilarRecent returns the best-matching open job of the company whose
// last_seen falls inside the repost window, or nil when none qualifies.
func (c *Classifier) findSimilarRecent(ctx context.Context, signature, companyID string, now time.Time) (*model.TrackedJob, float64, error) {
	candidates, err := c.store.QueryByCompanyAndStatus(ctx, companyID,
		model.StatusActive, model.StatusMissing, model.StatusReopened)
	if err != nil {
		return nil, 0, err
	}

	// Window boundary is exclusive: a job last seen exactly repostWindowDays
	// ago is no longer a repost candidate.
	cutoff := now.AddDate(0, 0, -c.repostWindowDays)
	recent := candidates[:0]
	for _, j := range candidates {
		if j.LastSeen.After(cutoff) {
			recent = append(recent, j)
		}
	}

	return c.bestBySignature(signature, recent)
}

// findSimilarClosed returns the best-matching closed job of the company, for
// reopened detection.
func (c *Classifier) findSimilarClosed(ctx context.Context, signature, companyID string) (*model.TrackedJob, float64, error) {
	candidates, err := c.store.QueryByCompanyAndStatus(ctx, companyID, model.StatusClosed)
	if err != nil {
		return nil, 0, err
	}
	return c.bestBySignature(signature, candidates)
}

func (c *Classifier) bestBySignature(signature string, candidates []*model.TrackedJob) (*model.TrackedJob, float64, error) {
	if len(candidates) == 0 {
		return nil, 0, nil
	}

	signatures := make([]string, len(candidates))
	for i, j := range candidates {
		signatures[i] = j.Signature
	}

	best, score, found := c.matcher.FindBestMatch(signature, signatures)
	if !found {
		return nil, score, nil
	}
	for _, j := range candidates {
		if j.Signature == best {
			return j, score, nil
		}
	}
	return nil, score, nil
}

// updateExisting handles a re-observation identified by source id. The
// record's classification, first_seen and signature are left untouched;
// Missing and Reopened flip back to Active.
func (c *Classifier) updateExisting(ctx context.Context, job *model.TrackedJob, raw model.RawJob, now time.Time) (*model.TrackedJob, error) {
	job.LastSeen = now
	job.UpdatedAt = &now
	job.Observations = append(job.Observations, model.Observation{
		Timestamp:        now,
		SourceIdentifier: raw.SourceIdentifier,
		URL:              raw.URL,
	})

	switch job.Status {
	case model.StatusMissing:
		job.Status = model.StatusActive
		slog.Info("job returned", "id", job.ID, "title", job.Title, "was", model.StatusMissing)
	case model.StatusReopened:
		job.Status = model.StatusActive
	}

	if err := c.store.Put(ctx, job); err != nil {
		return nil, err
	}
	slog.Debug("updated existing job", "id", job.ID, "title", job.Title, "company", job.CompanyName)
	return job, nil
}

func (c *Classifier) createNew(ctx context.Context, raw model.RawJob, signature string, now time.Time) (*model.TrackedJob, error) {
	job := c.newTrackedJob(raw, signature, now)
	job.Classification = model.ClassificationNew
	job.ClassificationReasoning = "New job posting (no previous match found)"

	if err := c.store.Put(ctx, job); err != nil {
		return nil, err
	}
	slog.Info("NEW", "title", raw.Title, "company", raw.CompanyName, "location", raw.Location)
	return job, nil
}

func (c *Classifier) createRepost(ctx context.Context, raw model.RawJob, signature string, matched *model.TrackedJob, score float64, now time.Time) (*model.TrackedJob, error) {
	job := c.newTrackedJob(raw, signature, now)
	job.Classification = model.ClassificationRepost
	job.ClassificationReasoning = fmt.Sprintf(
		"Likely repost of job %s (similarity: %.2f, first seen: %s)",
		matched.ID, score, matched.FirstSeen.Format("2006-01-02"))

	if err := c.store.Put(ctx, job); err != nil {
		return nil, err
	}
	slog.Info("REPOST", "title", raw.Title, "company", raw.CompanyName,
		"similarTo", matched.ID, "similarity", score)
	return job, nil
}

// reopen mutates a closed job back into circulation. Identity and first_seen
// are preserved; url, source identifier and signature are refreshed from the
// new observation.
func (c *Classifier) reopen(ctx context.Context, job *model.TrackedJob, raw model.RawJob, signature string, now time.Time) (*model.TrackedJob, error) {
	closedOn := job.LastSeen

	job.Status = model.StatusReopened
	job.LastSeen = now
	job.UpdatedAt = &now
	job.URL = raw.URL
	job.SourceIdentifier = raw.SourceIdentifier
	job.Signature = signature
	job.Observations = append(job.Observations, model.Observation{
		Timestamp:        now,
		SourceIdentifier: raw.SourceIdentifier,
		URL:              raw.URL,
		Note:             "Job reopened",
	})
	job.ClassificationReasoning = fmt.Sprintf(
		"Job reopened (was closed on %s, originally first seen %s)",
		closedOn.Format("2006-01-02"), job.FirstSeen.Format("2006-01-02"))

	if err := c.store.Put(ctx, job); err != nil {
		return nil, err
	}
	slog.Info("REOPENED", "id", job.ID, "title", raw.Title, "company", raw.CompanyName)
	return job, nil
}

func (c *Classifier) newTrackedJob(raw model.RawJob, signature string, now time.Time) *model.TrackedJob {
	return &model.TrackedJob{
		ID:          uuid.NewString(),
		CompanyID:   raw.CompanyID,
		CompanyName: raw.CompanyName,
		Title:       raw.Title,
		Location:    raw.Location,
		URL:         raw.URL,
		Signature:   signature,
		Status:      model.StatusActive,
		FirstSeen:   now,
		LastSeen:    now,
		Observations: []model.Observation{{
			Timestamp:        now,
			SourceIdentifier: raw.SourceIdentifier,
			URL:              raw.URL,
		}},
		SourceIdentifier: raw.SourceIdentifier,
		Department:       raw.Department,
		Description:      raw.Description,
		CreatedAt:        &now,
		UpdatedAt:        &now,
	}
}

// MarkMissingJobs marks every Active job whose id is not in observedIDs as
// Missing and returns the number of transitions. Idempotent: already-Missing
// jobs are skipped, so a repeated call with the same observed set is a no-op.
func (c *Classifier) MarkMissingJobs(ctx context.Context, observedIDs []string, now time.Time) (int, error) {
	observed := make(map[string]bool, len(observedIDs))
	for _, id := range observedIDs {
		observed[id] = true
	}

	jobs, err := c.store.All(ctx)
	if err != nil {
		return 0, err
	}

	marked := 0
	for _, job := range jobs {
		if job.Status != model.StatusActive || observed[job.ID] {
			continue
		}
		job.Status = model.StatusMissing
		job.UpdatedAt = &now
		if err := c.store.Put(ctx, job); err != nil {
			return marked, err
		}
		marked++
		slog.Debug("marked missing", "id", job.ID, "title", job.Title, "company", job.CompanyName)
	}
	return marked, nil
}

// CloseOldMissingJobs closes every Missing job whose last_seen is older than
// timeoutDays and returns the number of transitions.
func (c *Classifier) CloseOldMissingJobs(ctx context.Context, timeoutDays int, now time.Time) (int, error) {
	cutoff := now.AddDate(0, 0, -timeoutDays)

	jobs, err := c.store.All(ctx)
	if err != nil {
		return 0, err
	}

	closed := 0
	for _, job := range jobs {
		if job.Status != model.StatusMissing || !job.LastSeen.Before(cutoff) {
			continue
		}
		job.Status = model.StatusClosed
		job.UpdatedAt = &now
		if err := c.store.Put(ctx, job); err != nil {
			return closed, err
		}
		closed++
		slog.Info("closed", "id", job.ID, "title", job.Title,
			"company", job.CompanyName, "missingSince", job.LastSeen)
	}
	return closed, nil
}
