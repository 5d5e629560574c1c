// Package config loads and validates the ingestion configuration: the company
// watchlist (companies.yml), the ingestion settings (ingestion.yml) and the
// optional backend URLs from the environment. Fail-fast: invalid or missing
// required configuration returns an error at startup.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Adapter kinds supported by the ingestion layer.
var validAdapters = map[string]bool{
	"greenhouse": true,
	"lever":      true,
	"workday":    true,
}

var companyIDRe = regexp.MustCompile(`^[a-z0-9-]+$`)

// Source is one URL to fetch postings from.
type Source struct {
	URL string `yaml:"url"`
}

// Company is one watchlist entry.
type Company struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	Adapter string   `yaml:"adapter"`
	Sources []Source `yaml:"sources"`
}

// Crawling configures the rate-limited HTTP client.
type Crawling struct {
	RequestDelaySeconds float64 `yaml:"request_delay_seconds"`
	UserAgent           string  `yaml:"user_agent"`
	TimeoutSeconds      int     `yaml:"timeout_seconds"`
	MaxRetries          int     `yaml:"max_retries"`
	RetryBackoffSeconds float64 `yaml:"retry_backoff_seconds"`
}

// Classification configures the matching engine and lifecycle sweeps.
type Classification struct {
	RepostWindowDays    int     `yaml:"repost_window_days"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	CloseTimeoutDays    int     `yaml:"close_timeout_days"`
}

// Storage configures file persistence, snapshots and archival.
type Storage struct {
	DataDir       string `yaml:"data_dir"`
	VersionsDir   string `yaml:"versions_dir"`
	ArchiveDir    string `yaml:"archive_dir"`
	MaxVersions   int    `yaml:"max_versions"`
	RetentionDays int    `yaml:"retention_days"`
}

// Config is the full runtime configuration.
type Config struct {
	Companies      []Company
	Crawling       Crawling
	Classification Classification
	Storage        Storage

	// Optional backends; file-backed mode needs neither.
	DatabaseURL string
	RedisURL    string

	// IngestIntervalHours drives the cron schedule; 0 means run once.
	IngestIntervalHours int
	// Port for the read-only HTTP API.
	Port string
}

type companiesFile struct {
	Version   string    `yaml:"version"`
	Companies []Company `yaml:"companies"`
}

type ingestionFile struct {
	Version        string         `yaml:"version"`
	Crawling       Crawling       `yaml:"crawling"`
	Classification Classification `yaml:"classification"`
	Storage        Storage        `yaml:"storage"`
}

// Load reads companies.yml and ingestion.yml from configDir, applies
// defaults, validates every company entry, and overlays environment
// variables (a .env file is honored when present).
func Load(configDir string) (*Config, error) {
	_ = godotenv.Load()

	companies, err := loadCompanies(filepath.Join(configDir, "companies.yml"))
	if err != nil {
		return nil, err
	}

	ingestion, err := loadIngestion(filepath.Join(configDir, "ingestion.yml"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Companies:      companies,
		Crawling:       ingestion.Crawling,
		Classification: ingestion.Classification,
		Storage:        ingestion.Storage,
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		Port:           os.Getenv("SHOVEL_PORT"),
	}
	applyDefaults(cfg)

	if s := os.Getenv("INGEST_INTERVAL_HOURS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("INGEST_INTERVAL_HOURS must be a non-negative integer, got %q", s)
		}
		cfg.IngestIntervalHours = v
	}

	return cfg, nil
}

func loadCompanies(path string) ([]Company, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("company configuration not found at %s: %w", path, err)
	}

	var f companiesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if f.Version == "" {
		return nil, fmt.Errorf("%s missing required 'version' field", path)
	}
	if len(f.Companies) == 0 {
		return nil, fmt.Errorf("%s must list at least one company", path)
	}

	for i := range f.Companies {
		if err := validateCompany(f.Companies[i], i); err != nil {
			return nil, err
		}
	}
	return f.Companies, nil
}

func loadIngestion(path string) (*ingestionFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ingestion configuration not found at %s: %w", path, err)
	}

	var f ingestionFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if f.Version == "" {
		return nil, fmt.Errorf("%s missing required 'version' field", path)
	}
	return &f, nil
}

func validateCompany(c Company, index int) error {
	if c.ID == "" {
		return fmt.Errorf("company at index %d missing required field: id", index)
	}
	if !companyIDRe.MatchString(c.ID) {
		return fmt.Errorf("company %q: id must be lowercase alphanumeric with hyphens only", c.ID)
	}
	if c.ID[0] == '-' || c.ID[len(c.ID)-1] == '-' {
		return fmt.Errorf("company %q: id cannot start or end with a hyphen", c.ID)
	}
	for i := 0; i+1 < len(c.ID); i++ {
		if c.ID[i] == '-' && c.ID[i+1] == '-' {
			return fmt.Errorf("company %q: id cannot contain consecutive hyphens", c.ID)
		}
	}
	if c.Name == "" {
		return fmt.Errorf("company %q missing required field: name", c.ID)
	}
	if !validAdapters[c.Adapter] {
		return fmt.Errorf("company %q has invalid adapter %q (valid: greenhouse, lever, workday)", c.ID, c.Adapter)
	}
	if len(c.Sources) == 0 {
		return fmt.Errorf("company %q must have at least one source", c.ID)
	}
	for _, s := range c.Sources {
		if s.URL == "" {
			return fmt.Errorf("company %q has a source without a url", c.ID)
		}
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Crawling.RequestDelaySeconds == 0 {
		cfg.Crawling.RequestDelaySeconds = 2.0
	}
	if cfg.Crawling.UserAgent == "" {
		cfg.Crawling.UserAgent = "JobSeekersShovel/1.0 (Personal Job Tracker)"
	}
	if cfg.Crawling.TimeoutSeconds == 0 {
		cfg.Crawling.TimeoutSeconds = 30
	}
	if cfg.Crawling.MaxRetries == 0 {
		cfg.Crawling.MaxRetries = 3
	}
	if cfg.Crawling.RetryBackoffSeconds == 0 {
		cfg.Crawling.RetryBackoffSeconds = 1.0
	}

	if cfg.Classification.RepostWindowDays == 0 {
		cfg.Classification.RepostWindowDays = 30
	}
	if cfg.Classification.SimilarityThreshold == 0 {
		cfg.Classification.SimilarityThreshold = 0.90
	}
	if cfg.Classification.CloseTimeoutDays == 0 {
		cfg.Classification.CloseTimeoutDays = 14
	}

	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "data/jobs"
	}
	if cfg.Storage.VersionsDir == "" {
		cfg.Storage.VersionsDir = "data/versions"
	}
	if cfg.Storage.ArchiveDir == "" {
		cfg.Storage.ArchiveDir = "data/archive"
	}
	if cfg.Storage.MaxVersions == 0 {
		cfg.Storage.MaxVersions = 30
	}
	if cfg.Storage.RetentionDays == 0 {
		cfg.Storage.RetentionDays = 180
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
}
