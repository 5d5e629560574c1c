package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/aswath-space/jobseekers-shovel/internal/model"
)

// WorkdayAdapter fetches postings from Workday career sites. Workday
// deployments vary by company; this targets the common cxs JSON endpoint,
// which takes a POST with an appliedFacets payload.
type WorkdayAdapter struct {
	companyID   string
	companyName string
}

const workdayPageLimit = 100

type workdayRequest struct {
	AppliedFacets map[string]any `json:"appliedFacets"`
	Limit         int            `json:"limit"`
	Offset        int            `json:"offset"`
	SearchText    string         `json:"searchText"`
}

type workdayResponse struct {
	JobPostings []workdayJob `json:"jobPostings"`
}

type workdayJob struct {
	Title         string   `json:"title"`
	ExternalPath  string   `json:"externalPath"`
	LocationsText string   `json:"locationsText"`
	PostedOn      string   `json:"postedOn"`
	BulletFields  []string `json:"bulletFields"`
	JobReqID      string   `json:"jobReqId"`
}

func (a *WorkdayAdapter) Name() string { return "workday" }

// FetchJobs derives the cxs API endpoint from the board URL and posts the
// standard facet query.
func (a *WorkdayAdapter) FetchJobs(ctx context.Context, sourceURL string, crawler *Crawler) ([]model.RawJob, error) {
	apiURL, baseHost, err := workdayAPIURL(sourceURL)
	if err != nil {
		return nil, err
	}

	slog.Info("fetching workday board", "company", a.companyID, "url", apiURL)

	payload := workdayRequest{
		AppliedFacets: map[string]any{},
		Limit:         workdayPageLimit,
		Offset:        0,
		SearchText:    "",
	}
	body, err := crawler.PostJSON(ctx, apiURL, payload)
	if err != nil {
		return nil, fmt.Errorf("workday fetch %s: %w", apiURL, err)
	}

	var resp workdayResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("workday parse %s: %w", apiURL, err)
	}

	jobs := make([]model.RawJob, 0, len(resp.JobPostings))
	for _, wj := range resp.JobPostings {
		raw, err := a.parseJob(wj, baseHost, sourceURL)
		if err != nil {
			slog.Warn("skipping workday posting", "company", a.companyID, "title", wj.Title, "err", err)
			continue
		}
		jobs = append(jobs, raw)
	}
	return jobs, nil
}

func (a *WorkdayAdapter) parseJob(wj workdayJob, baseHost, sourceURL string) (model.RawJob, error) {
	if wj.Title == "" {
		return model.RawJob{}, fmt.Errorf("posting missing title")
	}

	location := wj.LocationsText
	if location == "" {
		location = "Unknown Location"
	}

	jobURL := sourceURL
	if wj.ExternalPath != "" {
		jobURL = baseHost + wj.ExternalPath
	}

	sourceID := wj.JobReqID
	if len(wj.BulletFields) > 0 && wj.BulletFields[0] != "" {
		sourceID = wj.BulletFields[0]
	}

	raw := model.RawJob{
		CompanyID:        a.companyID,
		CompanyName:      a.companyName,
		Title:            wj.Title,
		Location:         location,
		URL:              jobURL,
		SourceIdentifier: sourceID,
	}

	if wj.PostedOn != "" {
		if t, err := time.Parse(time.RFC3339, wj.PostedOn); err == nil {
			raw.PostedDate = &t
		}
	}
	return raw, nil
}

// workdayAPIURL turns a board URL into the cxs jobs endpoint.
// https://acme.wd1.myworkdayjobs.com/en-US/External
//   -> https://acme.wd1.myworkdayjobs.com/wday/cxs/acme/External/jobs
func workdayAPIURL(boardURL string) (apiURL, baseHost string, err error) {
	u, err := url.Parse(boardURL)
	if err != nil {
		return "", "", fmt.Errorf("parse workday url %q: %w", boardURL, err)
	}
	if u.Host == "" {
		return "", "", fmt.Errorf("workday url %q has no host", boardURL)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[len(parts)-1] == "" {
		return "", "", fmt.Errorf("could not extract site name from workday url: %s", boardURL)
	}
	site := parts[len(parts)-1]
	tenant := strings.Split(u.Host, ".")[0]

	baseHost = fmt.Sprintf("%s://%s", u.Scheme, u.Host)
	apiURL = fmt.Sprintf("%s/wday/cxs/%s/%s/jobs", baseHost, tenant, site)
	return apiURL, baseHost, nil
}
