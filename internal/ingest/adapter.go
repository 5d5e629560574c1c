package ingest

import (
	"context"
	"fmt"

	"github.com/aswath-space/jobseekers-shovel/internal/model"
)

// Adapter fetches postings from one applicant tracking system and converts
// them to the standardized RawJob shape. Implementations skip individual
// malformed postings rather than failing the whole fetch.
type Adapter interface {
	// Name identifies the ATS platform, e.g. "greenhouse".
	Name() string
	// FetchJobs retrieves all postings reachable from sourceURL.
	FetchJobs(ctx context.Context, sourceURL string, crawler *Crawler) ([]model.RawJob, error)
}

// NewAdapter returns the adapter for the given platform kind.
func NewAdapter(kind, companyID, companyName string) (Adapter, error) {
	switch kind {
	case "greenhouse":
		return &GreenhouseAdapter{companyID: companyID, companyName: companyName}, nil
	case "lever":
		return &LeverAdapter{companyID: companyID, companyName: companyName}, nil
	case "workday":
		return &WorkdayAdapter{companyID: companyID, companyName: companyName}, nil
	default:
		return nil, fmt.Errorf("unknown adapter kind %q (valid: greenhouse, lever, workday)", kind)
	}
}
