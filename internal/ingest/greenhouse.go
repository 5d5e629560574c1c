package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aswath-space/jobseekers-shovel/internal/model"
)

// GreenhouseAdapter fetches postings from the Greenhouse job board API.
// https://developers.greenhouse.io/job-board.html
type GreenhouseAdapter struct {
	companyID   string
	companyName string
}

type greenhouseResponse struct {
	Jobs []greenhouseJob `json:"jobs"`
}

type greenhouseJob struct {
	ID          json.Number `json:"id"`
	Title       string      `json:"title"`
	AbsoluteURL string      `json:"absolute_url"`
	UpdatedAt   string      `json:"updated_at"`
	Location    struct {
		Name string `json:"name"`
	} `json:"location"`
	Departments []struct {
		Name string `json:"name"`
	} `json:"departments"`
}

func (a *GreenhouseAdapter) Name() string { return "greenhouse" }

// FetchJobs converts a board URL into the JSON API endpoint and retrieves all
// postings from it.
func (a *GreenhouseAdapter) FetchJobs(ctx context.Context, sourceURL string, crawler *Crawler) ([]model.RawJob, error) {
	apiURL, err := greenhouseAPIURL(sourceURL)
	if err != nil {
		return nil, err
	}

	slog.Info("fetching greenhouse board", "company", a.companyID, "url", apiURL)

	body, err := crawler.Get(ctx, apiURL)
	if err != nil {
		return nil, fmt.Errorf("greenhouse fetch %s: %w", apiURL, err)
	}

	var resp greenhouseResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("greenhouse parse %s: %w", apiURL, err)
	}

	jobs := make([]model.RawJob, 0, len(resp.Jobs))
	for _, gj := range resp.Jobs {
		raw, err := a.parseJob(gj)
		if err != nil {
			slog.Warn("skipping greenhouse posting", "company", a.companyID, "id", gj.ID.String(), "err", err)
			continue
		}
		jobs = append(jobs, raw)
	}
	return jobs, nil
}

func (a *GreenhouseAdapter) parseJob(gj greenhouseJob) (model.RawJob, error) {
	if gj.Title == "" || gj.AbsoluteURL == "" {
		return model.RawJob{}, fmt.Errorf("posting missing title or url")
	}

	location := gj.Location.Name
	if location == "" {
		location = "Unknown Location"
	}

	raw := model.RawJob{
		CompanyID:        a.companyID,
		CompanyName:      a.companyName,
		Title:            gj.Title,
		Location:         location,
		URL:              gj.AbsoluteURL,
		SourceIdentifier: gj.ID.String(),
	}

	if gj.UpdatedAt != "" {
		if t, err := time.Parse(time.RFC3339, gj.UpdatedAt); err == nil {
			raw.UpdatedDate = &t
		}
	}
	if len(gj.Departments) > 0 {
		raw.Department = gj.Departments[0].Name
	}
	return raw, nil
}

// greenhouseAPIURL maps a public board URL to the boards API.
// https://boards.greenhouse.io/acme -> https://boards-api.greenhouse.io/v1/boards/acme/jobs
func greenhouseAPIURL(boardURL string) (string, error) {
	if strings.Contains(boardURL, "boards-api.greenhouse.io") {
		return boardURL, nil
	}
	const marker = "boards.greenhouse.io/"
	idx := strings.Index(boardURL, marker)
	if idx < 0 {
		return "", fmt.Errorf("invalid greenhouse board url: %s", boardURL)
	}
	slug := strings.Trim(boardURL[idx+len(marker):], "/")
	if slug == "" {
		return "", fmt.Errorf("greenhouse board url has no company slug: %s", boardURL)
	}
	return fmt.Sprintf("https://boards-api.greenhouse.io/v1/boards/%s/jobs", slug), nil
}
