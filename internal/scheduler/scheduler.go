// Package scheduler wires up the cron job that periodically runs a full
// ingestion cycle.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/aswath-space/jobseekers-shovel/internal/ingest"
)

// Scheduler wraps robfig/cron and manages the ingestion loop.
type Scheduler struct {
	cron         *cron.Cron
	orchestrator *ingest.Orchestrator
	spec         string // cron spec, e.g. "@every 6h"
}

// New creates a Scheduler that fires every intervalHours hours.
func New(orchestrator *ingest.Orchestrator, intervalHours int) *Scheduler {
	return &Scheduler{
		cron:         cron.New(cron.WithLogger(cron.DefaultLogger)),
		orchestrator: orchestrator,
		spec:         fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Start registers the job and starts the scheduler. Also runs one cycle
// immediately so the dataset is populated without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runCycle(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started — spec: %s", s.spec)

	// Run immediately on startup (non-blocking)
	go s.runCycle(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[scheduler] Cron stopped")
}

func (s *Scheduler) runCycle(ctx context.Context) {
	log.Println("[scheduler] Ingestion cycle started")

	result, err := s.orchestrator.Run(ctx)
	if err != nil {
		log.Printf("[scheduler] Ingestion error: %v", err)
		return
	}

	log.Printf("[scheduler] Ingestion cycle complete — %d succeeded, %d failed, %d jobs tracked",
		result.Succeeded, result.Failed, result.TotalJobs)
}
