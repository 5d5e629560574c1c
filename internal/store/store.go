// Package store defines the keyed collection of tracked jobs the classifier
// works against, with an in-memory implementation for single-run ingestion
// and a PostgreSQL implementation for shared deployments.
//
// Query results are always returned in (first_seen, id) ascending order.
// The matcher breaks ties by first candidate encountered, so a stable,
// documented candidate order is what makes classification reproducible.
package store

import (
	"context"
	"errors"

	"github.com/aswath-space/jobseekers-shovel/internal/model"
)

// ErrNotFound is returned when no tracked job matches the lookup.
var ErrNotFound = errors.New("tracked job not found")

// Store is the collection interface the classifier mutates through. All
// implementations must return copies: a caller must never be able to mutate
// a stored record except by Put.
type Store interface {
	// Get returns the job with the given internal id, or ErrNotFound.
	Get(ctx context.Context, id string) (*model.TrackedJob, error)

	// Put inserts or replaces a job keyed by its internal id.
	Put(ctx context.Context, job *model.TrackedJob) error

	// All returns every tracked job, ordered by (first_seen, id).
	All(ctx context.Context) ([]*model.TrackedJob, error)

	// FindBySourceID returns the job for a company with the given
	// source-specific identifier, or ErrNotFound.
	FindBySourceID(ctx context.Context, companyID, sourceID string) (*model.TrackedJob, error)

	// QueryByCompanyAndStatus returns a company's jobs in any of the given
	// statuses, ordered by (first_seen, id).
	QueryByCompanyAndStatus(ctx context.Context, companyID string, statuses ...model.Status) ([]*model.TrackedJob, error)
}
