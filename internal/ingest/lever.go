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

// LeverAdapter fetches postings from the Lever postings API.
// https://github.com/lever/postings-api
type LeverAdapter struct {
	companyID   string
	companyName string
}

type leverJob struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	HostedURL  string `json:"hostedUrl"`
	CreatedAt  int64  `json:"createdAt"`
	Categories struct {
		Location string `json:"location"`
		Team     string `json:"team"`
	} `json:"categories"`
}

func (a *LeverAdapter) Name() string { return "lever" }

// FetchJobs appends mode=json to the board URL and retrieves the posting
// array the API returns.
func (a *LeverAdapter) FetchJobs(ctx context.Context, sourceURL string, crawler *Crawler) ([]model.RawJob, error) {
	apiURL := leverAPIURL(sourceURL)

	slog.Info("fetching lever board", "company", a.companyID, "url", apiURL)

	body, err := crawler.Get(ctx, apiURL)
	if err != nil {
		return nil, fmt.Errorf("lever fetch %s: %w", apiURL, err)
	}

	var postings []leverJob
	if err := json.Unmarshal(body, &postings); err != nil {
		return nil, fmt.Errorf("lever parse %s: %w", apiURL, err)
	}

	jobs := make([]model.RawJob, 0, len(postings))
	for _, lj := range postings {
		raw, err := a.parseJob(lj)
		if err != nil {
			slog.Warn("skipping lever posting", "company", a.companyID, "id", lj.ID, "err", err)
			continue
		}
		jobs = append(jobs, raw)
	}
	return jobs, nil
}

func (a *LeverAdapter) parseJob(lj leverJob) (model.RawJob, error) {
	if lj.Text == "" || lj.HostedURL == "" {
		return model.RawJob{}, fmt.Errorf("posting missing title or url")
	}

	location := lj.Categories.Location
	if location == "" {
		location = "Unknown Location"
	}

	raw := model.RawJob{
		CompanyID:        a.companyID,
		CompanyName:      a.companyName,
		Title:            lj.Text,
		Location:         location,
		URL:              lj.HostedURL,
		SourceIdentifier: lj.ID,
		Department:       lj.Categories.Team,
	}

	// Lever reports createdAt in milliseconds since epoch.
	if lj.CreatedAt > 0 {
		t := time.UnixMilli(lj.CreatedAt).UTC()
		raw.PostedDate = &t
	}
	return raw, nil
}

func leverAPIURL(boardURL string) string {
	if strings.Contains(boardURL, "?") {
		if strings.HasSuffix(boardURL, "?") {
			return boardURL + "mode=json"
		}
		return boardURL + "&mode=json"
	}
	return boardURL + "?mode=json"
}
