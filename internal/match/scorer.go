package match

import (
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// StringScorer is the string-similarity primitive behind the matcher. All
// methods score on a 0–100 scale. Keeping it an interface lets the weighting
// formula in CalculateSimilarity be tested independently of the metric.
type StringScorer interface {
	// Ratio is the plain edit-distance alignment ratio of two strings.
	Ratio(a, b string) float64
	// TokenSortRatio compares the strings with their tokens sorted first, so
	// word reordering is tolerated but added/removed words are penalized.
	TokenSortRatio(a, b string) float64
	// TokenSetRatio compares the strings as token sets, scoring on the shared
	// core regardless of extra tokens on either side.
	TokenSetRatio(a, b string) float64
}

// levenshteinScorer scores with a normalized Levenshtein alignment ratio.
type levenshteinScorer struct {
	metric *metrics.Levenshtein
}

func newLevenshteinScorer() *levenshteinScorer {
	return &levenshteinScorer{metric: metrics.NewLevenshtein()}
}

func (s *levenshteinScorer) Ratio(a, b string) float64 {
	return strutil.Similarity(a, b, s.metric) * 100
}

func (s *levenshteinScorer) TokenSortRatio(a, b string) float64 {
	return s.Ratio(sortTokens(a), sortTokens(b))
}

func (s *levenshteinScorer) TokenSetRatio(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)

	var shared, onlyA, onlyB []string
	for t := range ta {
		if tb[t] {
			shared = append(shared, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range tb {
		if !ta[t] {
			onlyB = append(onlyB, t)
		}
	}
	sort.Strings(shared)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	core := strings.Join(shared, " ")
	full1 := strings.TrimSpace(core + " " + strings.Join(onlyA, " "))
	full2 := strings.TrimSpace(core + " " + strings.Join(onlyB, " "))

	best := s.Ratio(core, full1)
	if r := s.Ratio(core, full2); r > best {
		best = r
	}
	if r := s.Ratio(full1, full2); r > best {
		best = r
	}
	return best
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range strings.Fields(s) {
		set[t] = true
	}
	return set
}
