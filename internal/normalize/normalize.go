// Package normalize canonicalizes job titles and locations so that cosmetic
// variations of the same posting ("Sr. Software Engineer" in "SF, CA" versus
// "Senior Software Engineer" in "San Francisco, California") produce identical
// matching signatures.
package normalize

import (
	"regexp"
	"strings"
)

// titleAbbreviations maps common title tokens to their expanded forms.
var titleAbbreviations = map[string]string{
	"sr":     "senior",
	"jr":     "junior",
	"mgr":    "manager",
	"eng":    "engineer",
	"engr":   "engineer",
	"dev":    "developer",
	"devops": "development operations",
	"sre":    "site reliability engineer",
	"qa":     "quality assurance",
	"ui":     "user interface",
	"ux":     "user experience",
	"vp":     "vice president",
	"cto":    "chief technology officer",
	"ceo":    "chief executive officer",
	"cfo":    "chief financial officer",
	"coo":    "chief operating officer",
	"svp":    "senior vice president",
	"evp":    "executive vice president",
	"assoc":  "associate",
	"asst":   "assistant",
	"dir":    "director",
	"admin":  "administrator",
	"coord":  "coordinator",
	"acct":   "account",
	"dept":   "department",
	"ops":    "operations",
	"spec":   "specialist",
}

// locationPhrases maps whole location strings (and standalone tokens) to their
// canonical forms. Remote variants all collapse to "remote".
var locationPhrases = map[string]string{
	"sf":             "san francisco",
	"ny":             "new york",
	"nyc":            "new york city",
	"la":             "los angeles",
	"dc":             "washington dc",
	"remote us":      "remote",
	"remote - us":    "remote",
	"remote (us)":    "remote",
	"work from home": "remote",
	"wfh":            "remote",
}

// stateAbbreviations expands standalone two-letter US state codes.
var stateAbbreviations = map[string]string{
	"ca": "california",
	"ny": "new york",
	"tx": "texas",
	"fl": "florida",
	"il": "illinois",
	"ma": "massachusetts",
	"wa": "washington",
	"pa": "pennsylvania",
	"oh": "ohio",
	"ga": "georgia",
	"nc": "north carolina",
	"mi": "michigan",
	"nj": "new jersey",
	"va": "virginia",
	"az": "arizona",
	"co": "colorado",
	"or": "oregon",
	"md": "maryland",
	"tn": "tennessee",
	"in": "indiana",
}

var (
	titleStripRe    = regexp.MustCompile(`[^\w\s-]`)
	locationStripRe = regexp.MustCompile(`[^\w\s,]`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
)

// Title normalizes a job title for matching: lowercase, punctuation stripped,
// abbreviations expanded, hyphenated words split, whitespace collapsed.
// Empty input yields empty output.
func Title(title string) string {
	if title == "" {
		return ""
	}

	s := strings.ToLower(title)
	s = titleStripRe.ReplaceAllString(s, " ")

	words := strings.Fields(s)
	expanded := make([]string, 0, len(words))
	for _, w := range words {
		// Trailing periods are already stripped by the regexp; trim anyway so
		// the table lookup never depends on it.
		if exp, ok := titleAbbreviations[strings.Trim(w, ".")]; ok {
			expanded = append(expanded, exp)
		} else {
			expanded = append(expanded, w)
		}
	}

	s = strings.Join(expanded, " ")
	// Hyphen-joined words are treated as separate tokens.
	s = strings.ReplaceAll(s, "-", " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Location normalizes a location string for matching. Whole-string phrases
// ("Remote - US", "WFH") map directly; otherwise comma-separated parts are
// expanded word by word and rejoined with spaces, so "City, ST" and "City ST"
// normalize identically. Empty input yields "unknown", never an empty string.
func Location(location string) string {
	if location == "" {
		return "unknown"
	}

	s := strings.ToLower(location)
	if mapped, ok := locationPhrases[s]; ok {
		return mapped
	}

	s = locationStripRe.ReplaceAllString(s, " ")

	parts := strings.Split(s, ",")
	processed := make([]string, 0, len(parts))
	for _, part := range parts {
		words := strings.Fields(part)
		expanded := make([]string, 0, len(words))
		for _, w := range words {
			if exp, ok := stateAbbreviations[w]; ok && len(w) == 2 {
				expanded = append(expanded, exp)
			} else if exp, ok := locationPhrases[w]; ok {
				expanded = append(expanded, exp)
			} else {
				expanded = append(expanded, w)
			}
		}
		processed = append(processed, strings.Join(expanded, " "))
	}

	s = strings.Join(processed, " ")
	s = strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
	if s == "" {
		return "unknown"
	}
	return s
}

// Signature combines a company id with the normalized title and location into
// the pipe-delimited matching key, e.g.
//
//	Signature("acme-corp", "Sr. Software Engineer", "San Francisco, CA")
//	→ "acme-corp|senior software engineer|san francisco california"
//
// The pipe is the sole field delimiter; the stripping rules above guarantee
// the title and location components contain none themselves.
func Signature(companyID, title, location string) string {
	return companyID + "|" + Title(title) + "|" + Location(location)
}
