package model_test

import (
	"testing"
	"time"

	"github.com/aswath-space/jobseekers-shovel/internal/model"
)

func validJob() *model.TrackedJob {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &model.TrackedJob{
		ID:             "job-1",
		CompanyID:      "acme",
		CompanyName:    "Acme Corp",
		Title:          "Software Engineer",
		Location:       "Remote",
		URL:            "https://boards.example.com/acme/1",
		Signature:      "acme|software engineer|remote",
		Classification: model.ClassificationNew,
		Status:         model.StatusActive,
		FirstSeen:      now,
		LastSeen:       now,
		Observations:   []model.Observation{{Timestamp: now, URL: "https://boards.example.com/acme/1"}},
		CreatedAt:      &now,
		UpdatedAt:      &now,
	}
}

// ── Clone ──────────────────────────────────────────────────────────────────

func TestClone_DeepCopiesObservations(t *testing.T) {
	orig := validJob()
	clone := orig.Clone()

	clone.Observations[0].Note = "mutated"
	clone.Observations = append(clone.Observations, model.Observation{Note: "extra"})

	if orig.Observations[0].Note != "" {
		t.Error("mutating a clone's observation leaked into the original")
	}
	if len(orig.Observations) != 1 {
		t.Errorf("original observation count changed: got %d, want 1", len(orig.Observations))
	}
}

func TestClone_DeepCopiesTimestamps(t *testing.T) {
	orig := validJob()
	clone := orig.Clone()

	*clone.UpdatedAt = clone.UpdatedAt.Add(time.Hour)
	if !orig.UpdatedAt.Equal(*orig.CreatedAt) {
		t.Error("mutating a clone's UpdatedAt leaked into the original")
	}
}

func TestClone_Nil(t *testing.T) {
	var j *model.TrackedJob
	if j.Clone() != nil {
		t.Error("Clone of nil job should be nil")
	}
}

// ── Validate ───────────────────────────────────────────────────────────────

func TestValidate_ValidJob(t *testing.T) {
	if err := validJob().Validate(); err != nil {
		t.Errorf("Validate() on a complete job returned error: %v", err)
	}
}

func TestValidate_MissingRequiredFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*model.TrackedJob)
	}{
		{"id", func(j *model.TrackedJob) { j.ID = "" }},
		{"company_id", func(j *model.TrackedJob) { j.CompanyID = "" }},
		{"title", func(j *model.TrackedJob) { j.Title = "" }},
		{"location", func(j *model.TrackedJob) { j.Location = "" }},
		{"url", func(j *model.TrackedJob) { j.URL = "" }},
		{"signature", func(j *model.TrackedJob) { j.Signature = "" }},
		{"first_seen", func(j *model.TrackedJob) { j.FirstSeen = time.Time{} }},
	}
	for _, c := range cases {
		j := validJob()
		c.mutate(j)
		if err := j.Validate(); err == nil {
			t.Errorf("Validate() with empty %s expected error, got nil", c.name)
		}
	}
}

func TestValidate_UnknownEnums(t *testing.T) {
	j := validJob()
	j.Status = "paused"
	if err := j.Validate(); err == nil {
		t.Error("Validate() with unknown status expected error, got nil")
	}

	j = validJob()
	j.Classification = "duplicate"
	if err := j.Validate(); err == nil {
		t.Error("Validate() with unknown classification expected error, got nil")
	}
}
