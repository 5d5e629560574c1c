package storage

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/aswath-space/jobseekers-shovel/internal/model"
)

// csvHeader lists the exported columns, in order.
var csvHeader = []string{
	"id", "company_id", "company_name", "title", "location",
	"department", "url", "classification", "status",
	"first_seen", "last_seen", "signature",
}

// ExportCSV writes the given jobs as a CSV spreadsheet to outputPath.
func ExportCSV(outputPath string, jobs []*model.TrackedJob) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outputPath, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, j := range jobs {
		row := []string{
			j.ID, j.CompanyID, j.CompanyName, j.Title, j.Location,
			j.Department, j.URL, string(j.Classification), string(j.Status),
			j.FirstSeen.Format("2006-01-02T15:04:05Z07:00"),
			j.LastSeen.Format("2006-01-02T15:04:05Z07:00"),
			j.Signature,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv row for %s: %w", j.ID, err)
		}
	}

	w.Flush()
	return w.Error()
}
