// Package model defines the shared data structures for job tracking:
// raw observations produced by ingestion adapters, tracked-job records owned
// by the classifier, and the closed Classification / Status enumerations.
//
// Lifecycle status graph:
//
//	ACTIVE ──► MISSING ──► CLOSED ──► REOPENED
//	   ▲           │                      │
//	   └───────────┴──────────────────────┘
//
// MISSING and REOPENED return to ACTIVE when the job is observed again.
// CLOSED is left only through REOPENED (a closed role reappearing).
package model

import "fmt"

// Classification records how a tracked-job record came into being.
// It is set once at creation time and never mutated afterwards.
type Classification string

const (
	ClassificationNew      Classification = "new"
	ClassificationRepost   Classification = "repost"
	ClassificationExisting Classification = "existing"
)

// ParseClassification converts a raw string to a Classification, returning an
// error for unknown values.
func ParseClassification(s string) (Classification, error) {
	c := Classification(s)
	switch c {
	case ClassificationNew, ClassificationRepost, ClassificationExisting:
		return c, nil
	}
	return "", fmt.Errorf("unknown classification %q", s)
}

// Status is the lifecycle state of a tracked job.
type Status string

const (
	StatusActive   Status = "active"
	StatusMissing  Status = "missing"
	StatusClosed   Status = "closed"
	StatusReopened Status = "reopened"
)

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusActive, StatusMissing, StatusClosed, StatusReopened:
		return st, nil
	}
	return "", fmt.Errorf("unknown job status %q", s)
}

// validTransitions lists every allowed (from → to) pair.
var validTransitions = map[Status][]Status{
	StatusActive:   {StatusMissing},
	StatusMissing:  {StatusActive, StatusClosed},
	StatusClosed:   {StatusReopened},
	StatusReopened: {StatusActive, StatusMissing},
}

// IsTransitionAllowed returns true when moving from → to is permitted by the
// lifecycle state machine.
func IsTransitionAllowed(from, to Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsOpen returns true for statuses that count as "not closed" when matching.
// REOPENED is functionally equivalent to ACTIVE here; the distinct label
// exists for audit and reporting only.
func IsOpen(s Status) bool { return s != StatusClosed }
