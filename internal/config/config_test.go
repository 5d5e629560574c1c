package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aswath-space/jobseekers-shovel/internal/config"
)

const validCompanies = `version: "1.0"
companies:
  - id: acme-corp
    name: Acme Corp
    adapter: greenhouse
    sources:
      - url: https://boards.greenhouse.io/acmecorp
  - id: globex
    name: Globex
    adapter: lever
    sources:
      - url: https://jobs.lever.co/globex
`

const validIngestion = `version: "1.0"
crawling:
  request_delay_seconds: 1.5
  user_agent: "TestAgent/1.0"
  timeout_seconds: 10
  max_retries: 2
  retry_backoff_seconds: 0.5
classification:
  repost_window_days: 21
  similarity_threshold: 0.85
  close_timeout_days: 7
storage:
  data_dir: data/jobs
  versions_dir: data/versions
  archive_dir: data/archive
  max_versions: 10
  retention_days: 90
`

func writeConfigDir(t *testing.T, companies, ingestion string) string {
	t.Helper()
	dir := t.TempDir()
	if companies != "" {
		if err := os.WriteFile(filepath.Join(dir, "companies.yml"), []byte(companies), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if ingestion != "" {
		if err := os.WriteFile(filepath.Join(dir, "ingestion.yml"), []byte(ingestion), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// ── Load ───────────────────────────────────────────────────────────────────

func TestLoad_ValidConfig(t *testing.T) {
	dir := writeConfigDir(t, validCompanies, validIngestion)

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(cfg.Companies) != 2 {
		t.Fatalf("got %d companies, want 2", len(cfg.Companies))
	}
	if cfg.Companies[0].ID != "acme-corp" || cfg.Companies[0].Adapter != "greenhouse" {
		t.Errorf("first company = %+v", cfg.Companies[0])
	}
	if cfg.Classification.RepostWindowDays != 21 {
		t.Errorf("repost_window_days = %d, want 21", cfg.Classification.RepostWindowDays)
	}
	if cfg.Classification.SimilarityThreshold != 0.85 {
		t.Errorf("similarity_threshold = %v, want 0.85", cfg.Classification.SimilarityThreshold)
	}
	if cfg.Crawling.UserAgent != "TestAgent/1.0" {
		t.Errorf("user_agent = %q", cfg.Crawling.UserAgent)
	}
	if cfg.Storage.MaxVersions != 10 {
		t.Errorf("max_versions = %d, want 10", cfg.Storage.MaxVersions)
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	minimal := `version: "1.0"
`
	dir := writeConfigDir(t, validCompanies, minimal)

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Classification.RepostWindowDays != 30 {
		t.Errorf("default repost_window_days = %d, want 30", cfg.Classification.RepostWindowDays)
	}
	if cfg.Classification.SimilarityThreshold != 0.90 {
		t.Errorf("default similarity_threshold = %v, want 0.90", cfg.Classification.SimilarityThreshold)
	}
	if cfg.Classification.CloseTimeoutDays != 14 {
		t.Errorf("default close_timeout_days = %d, want 14", cfg.Classification.CloseTimeoutDays)
	}
	if cfg.Crawling.MaxRetries != 3 {
		t.Errorf("default max_retries = %d, want 3", cfg.Crawling.MaxRetries)
	}
	if cfg.Port != "8080" {
		t.Errorf("default port = %q, want 8080", cfg.Port)
	}
}

func TestLoad_MissingCompaniesFile(t *testing.T) {
	dir := writeConfigDir(t, "", validIngestion)
	if _, err := config.Load(dir); err == nil {
		t.Error("Load without companies.yml expected error, got nil")
	}
}

func TestLoad_MissingIngestionFile(t *testing.T) {
	dir := writeConfigDir(t, validCompanies, "")
	if _, err := config.Load(dir); err == nil {
		t.Error("Load without ingestion.yml expected error, got nil")
	}
}

func TestLoad_MissingVersionField(t *testing.T) {
	noVersion := strings.Replace(validCompanies, `version: "1.0"`+"\n", "", 1)
	dir := writeConfigDir(t, noVersion, validIngestion)
	if _, err := config.Load(dir); err == nil {
		t.Error("Load without version field expected error, got nil")
	}
}

func TestLoad_EmptyCompanyList(t *testing.T) {
	dir := writeConfigDir(t, "version: \"1.0\"\ncompanies: []\n", validIngestion)
	if _, err := config.Load(dir); err == nil {
		t.Error("Load with empty company list expected error, got nil")
	}
}

// ── Company validation ─────────────────────────────────────────────────────

func companyYAML(id, adapter, sourceURL string) string {
	return `version: "1.0"
companies:
  - id: ` + id + `
    name: Test Co
    adapter: ` + adapter + `
    sources:
      - url: ` + sourceURL + `
`
}

func TestLoad_InvalidCompanyIDs(t *testing.T) {
	bad := []string{"Acme", "acme_corp", "-acme", "acme-", "acme--corp", "acme corp"}
	for _, id := range bad {
		dir := writeConfigDir(t, companyYAML(`"`+id+`"`, "greenhouse", "https://example.com"), validIngestion)
		if _, err := config.Load(dir); err == nil {
			t.Errorf("Load with company id %q expected error, got nil", id)
		}
	}
}

func TestLoad_ValidCompanyIDs(t *testing.T) {
	good := []string{"acme", "acme-corp", "a1", "acme-corp-2"}
	for _, id := range good {
		dir := writeConfigDir(t, companyYAML(id, "workday", "https://example.com"), validIngestion)
		if _, err := config.Load(dir); err != nil {
			t.Errorf("Load with company id %q returned error: %v", id, err)
		}
	}
}

func TestLoad_UnknownAdapter(t *testing.T) {
	dir := writeConfigDir(t, companyYAML("acme", "taleo", "https://example.com"), validIngestion)
	if _, err := config.Load(dir); err == nil {
		t.Error("Load with unknown adapter expected error, got nil")
	}
}

func TestLoad_CompanyWithoutSources(t *testing.T) {
	yml := `version: "1.0"
companies:
  - id: acme
    name: Acme
    adapter: greenhouse
    sources: []
`
	dir := writeConfigDir(t, yml, validIngestion)
	if _, err := config.Load(dir); err == nil {
		t.Error("Load with no sources expected error, got nil")
	}
}

// ── Environment overrides ──────────────────────────────────────────────────

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/shovel")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("SHOVEL_PORT", "9090")
	t.Setenv("INGEST_INTERVAL_HOURS", "6")

	dir := writeConfigDir(t, validCompanies, validIngestion)
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DatabaseURL != "postgres://localhost/shovel" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.RedisURL != "redis://localhost:6379" {
		t.Errorf("RedisURL = %q", cfg.RedisURL)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.IngestIntervalHours != 6 {
		t.Errorf("IngestIntervalHours = %d, want 6", cfg.IngestIntervalHours)
	}
}

func TestLoad_InvalidInterval(t *testing.T) {
	t.Setenv("INGEST_INTERVAL_HOURS", "six")
	dir := writeConfigDir(t, validCompanies, validIngestion)
	if _, err := config.Load(dir); err == nil {
		t.Error("Load with non-numeric interval expected error, got nil")
	}
}
