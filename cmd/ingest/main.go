// jobseekers-shovel ingest: job ingestion pipeline
//
// Fetches postings from every configured company board, classifies them
// against the known-jobs dataset (new / repost / existing), runs the
// lifecycle sweeps (missing, closed), and persists the versioned artifact.
//
// Runs once by default. With INGEST_INTERVAL_HOURS set (or -interval), keeps
// running on a cron schedule.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/aswath-space/jobseekers-shovel/internal/config"
	"github.com/aswath-space/jobseekers-shovel/internal/db"
	"github.com/aswath-space/jobseekers-shovel/internal/ingest"
	"github.com/aswath-space/jobseekers-shovel/internal/scheduler"
	"github.com/aswath-space/jobseekers-shovel/internal/storage"
)

func main() {
	configDir := flag.String("config", "config", "configuration directory")
	interval := flag.Int("interval", 0, "run every N hours (0 = run once)")
	exportCSV := flag.String("export-csv", "", "after the run, export the dataset to this CSV path")
	flag.Parse()

	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load(*configDir)
	if err != nil {
		log.Fatalf("[ingest] Config error: %v", err)
	}
	if *interval > 0 {
		cfg.IngestIntervalHours = *interval
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Redis (optional) ─────────────────────────────────────────────────────
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		log.Println("[ingest] Connecting to Redis…")
		rdb, err = db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Printf("[ingest] Redis unavailable, events disabled: %v", err)
			rdb = nil
		} else {
			defer rdb.Close()
			log.Println("[ingest] Redis connected ✓")
		}
	}

	// ── Orchestrator ─────────────────────────────────────────────────────────
	orch, err := ingest.NewOrchestrator(cfg, rdb)
	if err != nil {
		log.Fatalf("[ingest] Init error: %v", err)
	}

	if cfg.IngestIntervalHours == 0 {
		runOnce(ctx, orch, cfg, *exportCSV)
		return
	}

	// ── Scheduled mode ───────────────────────────────────────────────────────
	sched := scheduler.New(orch, cfg.IngestIntervalHours)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("[ingest] Scheduler error: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[ingest] Shutting down…")
	sched.Stop()
	log.Println("[ingest] Stopped.")
}

func runOnce(ctx context.Context, orch *ingest.Orchestrator, cfg *config.Config, exportPath string) {
	result, err := orch.Run(ctx)
	if err != nil {
		log.Fatalf("[ingest] Ingestion error: %v", err)
	}

	if exportPath != "" {
		fileStore, err := storage.NewFileStore(cfg.Storage.DataDir)
		if err != nil {
			log.Fatalf("[ingest] Export error: %v", err)
		}
		jobs, err := fileStore.Load()
		if err != nil {
			log.Fatalf("[ingest] Export error: %v", err)
		}
		if err := storage.ExportCSV(exportPath, jobs); err != nil {
			log.Fatalf("[ingest] Export error: %v", err)
		}
		log.Printf("[ingest] Exported %d jobs to %s", len(jobs), exportPath)
	}

	if result.Failed > 0 {
		log.Printf("[ingest] Completed with %d company failure(s)", result.Failed)
		os.Exit(2)
	}
	log.Println("[ingest] Completed successfully.")
}
