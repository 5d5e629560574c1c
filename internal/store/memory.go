package store

import (
	"context"
	"sort"
	"sync"

	"github.com/aswath-space/jobseekers-shovel/internal/model"
)

// Memory is a mutex-guarded in-memory Store. It deep-copies on both Put and
// Get so nothing outside the store holds a reference into it.
type Memory struct {
	mu   sync.Mutex
	jobs map[string]*model.TrackedJob
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{jobs: make(map[string]*model.TrackedJob)}
}

// NewMemoryFrom returns an in-memory store seeded with the given jobs,
// typically loaded from the file store at the start of an ingestion run.
func NewMemoryFrom(jobs []*model.TrackedJob) *Memory {
	m := NewMemory()
	for _, j := range jobs {
		m.jobs[j.ID] = j.Clone()
	}
	return m
}

func (m *Memory) Get(_ context.Context, id string) (*model.TrackedJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return job.Clone(), nil
}

func (m *Memory) Put(_ context.Context, job *model.TrackedJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.jobs[job.ID] = job.Clone()
	return nil
}

func (m *Memory) All(_ context.Context) ([]*model.TrackedJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*model.TrackedJob, 0, len(m.jobs))
	for _, j := range m.jobs {
		out = append(out, j.Clone())
	}
	sortJobs(out)
	return out, nil
}

func (m *Memory) FindBySourceID(_ context.Context, companyID, sourceID string) (*model.TrackedJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var found *model.TrackedJob
	for _, j := range m.jobs {
		if j.CompanyID != companyID || j.SourceIdentifier != sourceID {
			continue
		}
		if found == nil || jobLess(j, found) {
			found = j
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found.Clone(), nil
}

func (m *Memory) QueryByCompanyAndStatus(_ context.Context, companyID string, statuses ...model.Status) ([]*model.TrackedJob, error) {
	wanted := make(map[model.Status]bool, len(statuses))
	for _, s := range statuses {
		wanted[s] = true
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*model.TrackedJob
	for _, j := range m.jobs {
		if j.CompanyID == companyID && wanted[j.Status] {
			out = append(out, j.Clone())
		}
	}
	sortJobs(out)
	return out, nil
}

// Len returns the number of tracked jobs.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}

func sortJobs(jobs []*model.TrackedJob) {
	sort.Slice(jobs, func(i, j int) bool { return jobLess(jobs[i], jobs[j]) })
}

func jobLess(a, b *model.TrackedJob) bool {
	if !a.FirstSeen.Equal(b.FirstSeen) {
		return a.FirstSeen.Before(b.FirstSeen)
	}
	return a.ID < b.ID
}
