// Package match scores similarity between normalized job signatures and
// selects match candidates against a configurable threshold.
package match

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// Component weights for the combined score. Title is the dominant identity
// signal, location next, company id least; signatures are already scoped per
// company before the matcher is invoked.
const (
	weightCompany  = 0.10
	weightTitle    = 0.60
	weightLocation = 0.30
)

// Matcher compares pipe-delimited signatures ("company|title|location").
type Matcher struct {
	threshold float64
	scorer    StringScorer
}

// Match is one candidate at or above the threshold.
type Match struct {
	Signature string
	Score     float64
}

// New returns a Matcher. The threshold must be within [0.0, 1.0]; anything
// else is a configuration error and is never silently clamped.
func New(threshold float64) (*Matcher, error) {
	if threshold < 0.0 || threshold > 1.0 {
		return nil, fmt.Errorf("similarity threshold must be between 0.0 and 1.0, got %v", threshold)
	}
	return &Matcher{threshold: threshold, scorer: newLevenshteinScorer()}, nil
}

// Threshold returns the configured similarity threshold.
func (m *Matcher) Threshold() float64 { return m.threshold }

// CalculateSimilarity returns a combined similarity score in [0, 1].
//
// Each signature is split into its company, title and location components.
// The company and location components use the plain alignment ratio; the
// title component uses the token-sort ratio so word reordering is tolerated
// while added or removed words are penalized. Signatures that do not split
// into exactly three parts fall back to a whole-string token-set comparison.
func (m *Matcher) CalculateSimilarity(sigA, sigB string) float64 {
	partsA := strings.Split(sigA, "|")
	partsB := strings.Split(sigB, "|")

	if len(partsA) != 3 || len(partsB) != 3 {
		return m.scorer.TokenSetRatio(sigA, sigB) / 100.0
	}

	companyScore := m.scorer.Ratio(partsA[0], partsB[0])
	titleScore := m.scorer.TokenSortRatio(partsA[1], partsB[1])
	locationScore := m.scorer.Ratio(partsA[2], partsB[2])

	combined := weightCompany*companyScore + weightTitle*titleScore + weightLocation*locationScore
	return combined / 100.0
}

// IsMatch reports whether two signatures score at or above the threshold.
func (m *Matcher) IsMatch(sigA, sigB string) bool {
	return m.CalculateSimilarity(sigA, sigB) >= m.threshold
}

// FindBestMatch scans candidates linearly and returns the best-scoring one if
// it reaches the threshold. The returned score is reported even when no
// candidate qualifies, for diagnostics. Ties resolve to whichever candidate
// appears first in input order, so callers that supply stable
// candidate ordering get reproducible outcomes. An empty candidate list
// yields ("", 0, false), never an error.
func (m *Matcher) FindBestMatch(query string, candidates []string) (string, float64, bool) {
	if len(candidates) == 0 {
		return "", 0, false
	}

	var (
		best      string
		bestScore float64
	)
	for _, c := range candidates {
		if score := m.CalculateSimilarity(query, c); score > bestScore {
			bestScore = score
			best = c
		}
	}

	if bestScore >= m.threshold {
		slog.Debug("best match found", "query", query, "match", best, "score", bestScore)
		return best, bestScore, true
	}
	return "", bestScore, false
}

// FindAllMatches returns every candidate at or above the threshold, sorted by
// score descending (stable on ties) and truncated to limit when limit > 0.
func (m *Matcher) FindAllMatches(query string, candidates []string, limit int) []Match {
	var matches []Match
	for _, c := range candidates {
		if score := m.CalculateSimilarity(query, c); score >= m.threshold {
			matches = append(matches, Match{Signature: c, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// Explanation is a breakdown of one comparison, for audit output.
type Explanation struct {
	SignatureA string  `json:"signatureA"`
	SignatureB string  `json:"signatureB"`
	Similarity float64 `json:"similarity"`
	Threshold  float64 `json:"threshold"`
	IsMatch    bool    `json:"isMatch"`
	Reason     string  `json:"reason"`
}

// Explain returns the full comparison breakdown for two signatures.
func (m *Matcher) Explain(sigA, sigB string) Explanation {
	similarity := m.CalculateSimilarity(sigA, sigB)
	matched := similarity >= m.threshold

	op := "<"
	if matched {
		op = ">="
	}
	return Explanation{
		SignatureA: sigA,
		SignatureB: sigB,
		Similarity: similarity,
		Threshold:  m.threshold,
		IsMatch:    matched,
		Reason:     fmt.Sprintf("similarity (%.2f) %s threshold (%.2f)", similarity, op, m.threshold),
	}
}
