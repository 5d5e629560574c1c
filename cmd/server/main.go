// jobseekers-shovel server: read-only API over the tracked-job dataset
//
// Serves /health, /jobs and /jobs/{id}. With DATABASE_URL set the store is
// PostgreSQL; otherwise the versioned JSON artifact is loaded into memory at
// startup.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aswath-space/jobseekers-shovel/internal/api"
	"github.com/aswath-space/jobseekers-shovel/internal/config"
	"github.com/aswath-space/jobseekers-shovel/internal/db"
	"github.com/aswath-space/jobseekers-shovel/internal/store"
	"github.com/aswath-space/jobseekers-shovel/internal/storage"
)

const version = "1.0.0"

func main() {
	configDir := flag.String("config", "config", "configuration directory")
	flag.Parse()

	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load(*configDir)
	if err != nil {
		log.Fatalf("[server] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Store ────────────────────────────────────────────────────────────────
	var st store.Store
	if cfg.DatabaseURL != "" {
		log.Println("[server] Connecting to PostgreSQL…")
		pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("[server] PostgreSQL: %v", err)
		}
		defer pool.Close()
		log.Println("[server] PostgreSQL connected ✓")
		st = store.NewPostgres(pool)
	} else {
		fileStore, err := storage.NewFileStore(cfg.Storage.DataDir)
		if err != nil {
			log.Fatalf("[server] Store error: %v", err)
		}
		jobs, err := fileStore.Load()
		if err != nil {
			log.Fatalf("[server] Store error: %v", err)
		}
		log.Printf("[server] Loaded %d jobs from %s", len(jobs), fileStore.Path())
		st = store.NewMemoryFrom(jobs)
	}

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	h := api.NewHandler(st)
	h.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[server] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[server] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[server] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[server] Shutdown error: %v", err)
	}
	log.Println("[server] Stopped.")
}
