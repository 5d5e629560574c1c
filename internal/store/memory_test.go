package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aswath-space/jobseekers-shovel/internal/model"
	"github.com/aswath-space/jobseekers-shovel/internal/store"
)

func job(id, companyID string, status model.Status, firstSeen time.Time) *model.TrackedJob {
	return &model.TrackedJob{
		ID:               id,
		CompanyID:        companyID,
		CompanyName:      "Acme Corp",
		Title:            "Engineer",
		Location:         "Remote",
		URL:              "https://example.com/" + id,
		Signature:        companyID + "|engineer|remote",
		Classification:   model.ClassificationNew,
		Status:           status,
		FirstSeen:        firstSeen,
		LastSeen:         firstSeen,
		SourceIdentifier: "src-" + id,
		Observations:     []model.Observation{{Timestamp: firstSeen, URL: "https://example.com/" + id}},
	}
}

var t0 = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

// ── Get / Put ──────────────────────────────────────────────────────────────

func TestMemory_GetNotFound(t *testing.T) {
	m := store.NewMemory()
	_, err := m.Get(context.Background(), "nope")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get on empty store: err = %v, want ErrNotFound", err)
	}
}

func TestMemory_PutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	if err := m.Put(ctx, job("a", "acme", model.StatusActive, t0)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := m.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != "a" || got.CompanyID != "acme" {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

// Mutating what a caller holds must never change what the store holds.
func TestMemory_NoAliasing(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	original := job("a", "acme", model.StatusActive, t0)
	if err := m.Put(ctx, original); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// Mutate the value that was passed in.
	original.Title = "Mutated After Put"
	original.Observations[0].Note = "tampered"

	got, _ := m.Get(ctx, "a")
	if got.Title != "Engineer" {
		t.Error("mutation after Put leaked into the store")
	}
	if got.Observations[0].Note != "" {
		t.Error("observation mutation after Put leaked into the store")
	}

	// Mutate the value that was read out.
	got.Status = model.StatusClosed
	again, _ := m.Get(ctx, "a")
	if again.Status != model.StatusActive {
		t.Error("mutation of a Get result leaked into the store")
	}
}

// ── All ────────────────────────────────────────────────────────────────────

// All returns jobs ordered by (first_seen, id) ascending so matching scans
// are reproducible run to run.
func TestMemory_AllOrdering(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	m.Put(ctx, job("b", "acme", model.StatusActive, t0.Add(time.Hour)))
	m.Put(ctx, job("c", "acme", model.StatusActive, t0))
	m.Put(ctx, job("a", "acme", model.StatusActive, t0))

	all, err := m.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	wantOrder := []string{"a", "c", "b"}
	if len(all) != 3 {
		t.Fatalf("got %d jobs, want 3", len(all))
	}
	for i, want := range wantOrder {
		if all[i].ID != want {
			t.Errorf("all[%d].ID = %s, want %s", i, all[i].ID, want)
		}
	}
}

// ── FindBySourceID ─────────────────────────────────────────────────────────

func TestMemory_FindBySourceID(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	m.Put(ctx, job("a", "acme", model.StatusActive, t0))
	m.Put(ctx, job("b", "globex", model.StatusActive, t0))

	got, err := m.FindBySourceID(ctx, "acme", "src-a")
	if err != nil {
		t.Fatalf("FindBySourceID: %v", err)
	}
	if got.ID != "a" {
		t.Errorf("got %s, want a", got.ID)
	}

	// Source ids are scoped per company.
	if _, err := m.FindBySourceID(ctx, "globex", "src-a"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("cross-company lookup: err = %v, want ErrNotFound", err)
	}
}

// ── QueryByCompanyAndStatus ────────────────────────────────────────────────

func TestMemory_QueryByCompanyAndStatus(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	m.Put(ctx, job("a", "acme", model.StatusActive, t0))
	m.Put(ctx, job("b", "acme", model.StatusMissing, t0.Add(time.Minute)))
	m.Put(ctx, job("c", "acme", model.StatusClosed, t0.Add(2*time.Minute)))
	m.Put(ctx, job("d", "globex", model.StatusActive, t0))

	open, err := m.QueryByCompanyAndStatus(ctx, "acme",
		model.StatusActive, model.StatusMissing, model.StatusReopened)
	if err != nil {
		t.Fatalf("QueryByCompanyAndStatus: %v", err)
	}
	if len(open) != 2 {
		t.Fatalf("got %d open acme jobs, want 2", len(open))
	}
	if open[0].ID != "a" || open[1].ID != "b" {
		t.Errorf("order = [%s %s], want [a b]", open[0].ID, open[1].ID)
	}

	closed, err := m.QueryByCompanyAndStatus(ctx, "acme", model.StatusClosed)
	if err != nil {
		t.Fatalf("QueryByCompanyAndStatus: %v", err)
	}
	if len(closed) != 1 || closed[0].ID != "c" {
		t.Errorf("closed query returned %v, want [c]", closed)
	}
}

// ── NewMemoryFrom ──────────────────────────────────────────────────────────

func TestMemory_SeededCopiesInput(t *testing.T) {
	seed := job("a", "acme", model.StatusActive, t0)
	m := store.NewMemoryFrom([]*model.TrackedJob{seed})

	seed.Title = "Mutated"
	got, err := m.Get(context.Background(), "a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Engineer" {
		t.Error("mutating seed slice leaked into the store")
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
}
