package model

import "time"

// RawJob is the standardized observation produced by every ingestion adapter,
// one instance per scrape of one posting. Required fields (CompanyID, Title,
// Location, URL) are validated by the adapter layer; the classifier assumes
// they are present.
type RawJob struct {
	CompanyID   string `json:"companyId"`
	CompanyName string `json:"companyName"`
	Title       string `json:"title"`
	Location    string `json:"location"`
	URL         string `json:"url"`

	// Optional fields. An empty SourceIdentifier disables the exact-id match
	// path for this observation.
	SourceIdentifier string     `json:"sourceIdentifier,omitempty"`
	PostedDate       *time.Time `json:"postedDate,omitempty"`
	UpdatedDate      *time.Time `json:"updatedDate,omitempty"`
	Department       string     `json:"department,omitempty"`
	Description      string     `json:"description,omitempty"`
}

// Observation is one sighting of a tracked job. The Observations list on a
// TrackedJob is append-only; every classify/update call appends exactly one.
type Observation struct {
	Timestamp        time.Time `json:"timestamp"`
	SourceIdentifier string    `json:"source_identifier,omitempty"`
	URL              string    `json:"url"`
	Note             string    `json:"note,omitempty"`
}

// TrackedJob is the classifier-owned record for one real-world job posting.
//
// ID is internally generated and never changes. FirstSeen is immutable after
// creation; reopening does not reset it, since the record represents one
// continuous role across closures. Signature is recomputed only on creation
// and on reopening, never on simple re-observation by the same source id.
type TrackedJob struct {
	ID          string `json:"id"`
	CompanyID   string `json:"company_id"`
	CompanyName string `json:"company_name"`
	Title       string `json:"title"`
	Location    string `json:"location"`
	URL         string `json:"url"`
	Signature   string `json:"signature"`

	Classification          Classification `json:"classification"`
	ClassificationReasoning string         `json:"classification_reasoning"`
	Status                  Status         `json:"status"`

	FirstSeen    time.Time     `json:"first_seen"`
	LastSeen     time.Time     `json:"last_seen"`
	Observations []Observation `json:"observations"`

	SourceIdentifier string `json:"source_identifier,omitempty"`
	Department       string `json:"department,omitempty"`
	Description      string `json:"description,omitempty"`

	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Clone returns a deep copy. Store implementations clone on both Put and Get
// so callers can never mutate a stored record without going back through the
// classifier.
func (j *TrackedJob) Clone() *TrackedJob {
	if j == nil {
		return nil
	}
	c := *j
	c.Observations = make([]Observation, len(j.Observations))
	copy(c.Observations, j.Observations)
	if j.CreatedAt != nil {
		t := *j.CreatedAt
		c.CreatedAt = &t
	}
	if j.UpdatedAt != nil {
		t := *j.UpdatedAt
		c.UpdatedAt = &t
	}
	return &c
}

// Validate reports the first missing required field, or nil. Used by the file
// store when loading records from disk.
func (j *TrackedJob) Validate() error {
	switch {
	case j.ID == "":
		return errMissing("id")
	case j.CompanyID == "":
		return errMissing("company_id")
	case j.CompanyName == "":
		return errMissing("company_name")
	case j.Title == "":
		return errMissing("title")
	case j.Location == "":
		return errMissing("location")
	case j.URL == "":
		return errMissing("url")
	case j.Signature == "":
		return errMissing("signature")
	}
	if _, err := ParseClassification(string(j.Classification)); err != nil {
		return err
	}
	if _, err := ParseStatus(string(j.Status)); err != nil {
		return err
	}
	if j.FirstSeen.IsZero() || j.LastSeen.IsZero() {
		return errMissing("first_seen/last_seen")
	}
	return nil
}

type fieldError string

func (e fieldError) Error() string { return "missing required field: " + string(e) }

func errMissing(field string) error { return fieldError(field) }
