package match_test

import (
	"testing"

	"github.com/aswath-space/jobseekers-shovel/internal/match"
)

// ── New ────────────────────────────────────────────────────────────────────

func TestNew_ValidThresholds(t *testing.T) {
	for _, th := range []float64{0.0, 0.5, 0.9, 1.0} {
		m, err := match.New(th)
		if err != nil {
			t.Errorf("New(%v) returned unexpected error: %v", th, err)
		}
		if m != nil && m.Threshold() != th {
			t.Errorf("Threshold() = %v, want %v", m.Threshold(), th)
		}
	}
}

func TestNew_InvalidThresholds(t *testing.T) {
	for _, th := range []float64{-0.1, 1.1, 2.0, -5} {
		if _, err := match.New(th); err == nil {
			t.Errorf("New(%v) expected error, got nil", th)
		}
	}
}

// ── CalculateSimilarity ────────────────────────────────────────────────────

func TestCalculateSimilarity_IdenticalSignatures(t *testing.T) {
	m, _ := match.New(0.9)
	sig := "acme|senior software engineer|san francisco california"
	if got := m.CalculateSimilarity(sig, sig); got != 1.0 {
		t.Errorf("identical signatures scored %v, want 1.0", got)
	}
}

func TestCalculateSimilarity_RangeBounds(t *testing.T) {
	m, _ := match.New(0.9)
	pairs := [][2]string{
		{"acme|engineer|remote", "acme|engineer|remote"},
		{"acme|engineer|remote", "globex|accountant|paris france"},
		{"a|b|c", "x|y|z"},
	}
	for _, p := range pairs {
		got := m.CalculateSimilarity(p[0], p[1])
		if got < 0.0 || got > 1.0 {
			t.Errorf("CalculateSimilarity(%q, %q) = %v, outside [0, 1]", p[0], p[1], got)
		}
	}
}

// Word order inside the title component must not hurt the score.
func TestCalculateSimilarity_TitleWordOrder(t *testing.T) {
	m, _ := match.New(0.9)
	a := "acme|senior software engineer|remote"
	b := "acme|software engineer senior|remote"
	if got := m.CalculateSimilarity(a, b); got != 1.0 {
		t.Errorf("reordered title scored %v, want 1.0", got)
	}
}

// A different title must pull the score down harder than a different
// location; title carries the dominant weight.
func TestCalculateSimilarity_TitleDominates(t *testing.T) {
	m, _ := match.New(0.9)
	base := "acme|senior software engineer|san francisco california"
	diffTitle := "acme|chief accountant|san francisco california"
	diffLocation := "acme|senior software engineer|austin texas"

	titleScore := m.CalculateSimilarity(base, diffTitle)
	locationScore := m.CalculateSimilarity(base, diffLocation)
	if titleScore >= locationScore {
		t.Errorf("title change scored %v, location change %v; title should cost more", titleScore, locationScore)
	}
}

// Signatures that do not split into three parts still score sanely.
func TestCalculateSimilarity_MalformedSignature(t *testing.T) {
	m, _ := match.New(0.9)
	got := m.CalculateSimilarity("just a plain string", "just a plain string")
	if got != 1.0 {
		t.Errorf("identical malformed signatures scored %v, want 1.0", got)
	}
}

// ── IsMatch ────────────────────────────────────────────────────────────────

func TestIsMatch_ThresholdBoundary(t *testing.T) {
	sig := "acme|engineer|remote"

	m, _ := match.New(1.0)
	if !m.IsMatch(sig, sig) {
		t.Error("score equal to threshold should match (>= semantics)")
	}

	m, _ = match.New(0.9)
	if m.IsMatch(sig, "globex|accountant|paris france") {
		t.Error("dissimilar signatures should not match at threshold 0.9")
	}
}

// ── FindBestMatch ──────────────────────────────────────────────────────────

func TestFindBestMatch_EmptyCandidates(t *testing.T) {
	m, _ := match.New(0.0)
	best, score, found := m.FindBestMatch("acme|engineer|remote", nil)
	if found || best != "" || score != 0 {
		t.Errorf("FindBestMatch with no candidates = (%q, %v, %v), want (\"\", 0, false)", best, score, found)
	}
}

func TestFindBestMatch_PicksHighestScore(t *testing.T) {
	m, _ := match.New(0.5)
	query := "acme|senior software engineer|remote"
	candidates := []string{
		"acme|data analyst|remote",
		"acme|senior software engineer|remote",
		"acme|software engineer|remote",
	}
	best, score, found := m.FindBestMatch(query, candidates)
	if !found {
		t.Fatal("expected a match above threshold 0.5")
	}
	if best != candidates[1] {
		t.Errorf("best = %q, want exact candidate %q", best, candidates[1])
	}
	if score != 1.0 {
		t.Errorf("score = %v, want 1.0", score)
	}
}

// Equal-scoring candidates resolve to the first in input order.
func TestFindBestMatch_TieBreaksToFirst(t *testing.T) {
	m, _ := match.New(0.9)
	query := "acme|engineer|remote"
	candidates := []string{query, query}
	best, _, found := m.FindBestMatch(query, candidates)
	if !found || best != candidates[0] {
		t.Errorf("tie should resolve to first candidate, got %q found=%v", best, found)
	}
}

func TestFindBestMatch_BelowThresholdReportsScore(t *testing.T) {
	m, _ := match.New(0.99)
	best, score, found := m.FindBestMatch(
		"acme|senior software engineer|remote",
		[]string{"acme|data analyst|paris france"},
	)
	if found {
		t.Error("dissimilar candidate should not match at threshold 0.99")
	}
	if best != "" {
		t.Errorf("best = %q, want empty when no match", best)
	}
	if score <= 0 {
		t.Errorf("score = %v, want best observed score for diagnostics", score)
	}
}

// ── FindAllMatches ─────────────────────────────────────────────────────────

func TestFindAllMatches_SortedDescending(t *testing.T) {
	m, _ := match.New(0.3)
	query := "acme|senior software engineer|remote"
	candidates := []string{
		"acme|software engineer|remote",
		"acme|senior software engineer|remote",
	}
	matches := m.FindAllMatches(query, candidates, 0)
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].Score < matches[1].Score {
		t.Errorf("matches not sorted descending: %v then %v", matches[0].Score, matches[1].Score)
	}
	if matches[0].Signature != candidates[1] {
		t.Errorf("top match = %q, want exact candidate", matches[0].Signature)
	}
}

func TestFindAllMatches_Limit(t *testing.T) {
	m, _ := match.New(0.0)
	query := "acme|engineer|remote"
	candidates := []string{query, query, query}
	matches := m.FindAllMatches(query, candidates, 2)
	if len(matches) != 2 {
		t.Errorf("got %d matches, want limit of 2", len(matches))
	}
}

// ── Explain ────────────────────────────────────────────────────────────────

func TestExplain(t *testing.T) {
	m, _ := match.New(0.9)
	sig := "acme|engineer|remote"
	exp := m.Explain(sig, sig)
	if !exp.IsMatch {
		t.Error("Explain on identical signatures should report a match")
	}
	if exp.Similarity != 1.0 {
		t.Errorf("Similarity = %v, want 1.0", exp.Similarity)
	}
	if exp.Threshold != 0.9 {
		t.Errorf("Threshold = %v, want 0.9", exp.Threshold)
	}
	if exp.Reason == "" {
		t.Error("Reason should be populated")
	}
}
