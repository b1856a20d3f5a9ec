package detect

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/verte-zerg/masterdata/internal/textnorm"
)

var (
	dayRangeRe   = regexp.MustCompile(`\d{1,2}-\d{1,2}`)
	backupMarkRe = regexp.MustCompile(`_(YEDEK|yedek)`)
)

// repStopWords are structural tokens that never belong to a person name.
var repStopWords = map[string]struct{}{
	"PLANLANAN": {},
	"YAPILAN":   {},
	"ZIYARET":   {},
	"SIPARIS":   {},
	"FORMU":     {},
	"HAFTALIK":  {},
	"PLANI":     {},
	"XLSX":      {},
	"YEDEK":     {},
}

func init() {
	for token := range monthTokens {
		repStopWords[token] = struct{}{}
	}
}

// DetectReps returns the canonical representative names found in names,
// sorted. Spellings that differ only in case, diacritics or spacing merge
// into the longest variant.
func DetectReps(names []string) []string {
	merged := make(map[string]string)
	for _, name := range names {
		candidate, ok := repCandidate(name)
		if !ok {
			continue
		}
		key := textnorm.Key(candidate)
		current, exists := merged[key]
		if !exists || longerSpelling(candidate, current) {
			merged[key] = candidate
		}
	}
	reps := make([]string, 0, len(merged))
	for _, rep := range merged {
		reps = append(reps, rep)
	}
	sort.Strings(reps)
	return reps
}

// longerSpelling orders variants by rune length. Ties go to the greater
// string, which prefers mixed case over all caps and keeps the result
// independent of input order.
func longerSpelling(a, b string) bool {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if la != lb {
		return la > lb
	}
	return a > b
}

func repCandidate(name string) (string, bool) {
	base := stripExtension(name)
	base = longRangeRe.ReplaceAllString(base, "")
	base = dayRangeRe.ReplaceAllString(base, "")
	base = backupMarkRe.ReplaceAllString(base, "")

	parts := make([]string, 0, 4)
	for _, token := range strings.Fields(base) {
		if utf8.RuneCountInString(token) <= 1 || isNumeric(token) {
			continue
		}
		if _, stop := repStopWords[textnorm.Normalize(token)]; stop {
			continue
		}
		parts = append(parts, token)
	}
	if len(parts) < 2 {
		return "", false
	}
	return strings.Join(parts, " "), true
}

func stripExtension(name string) string {
	if len(name) > 5 && strings.EqualFold(name[len(name)-5:], ".xlsx") {
		return name[:len(name)-5]
	}
	return name
}

// isNumeric reports tokens made only of digits and date punctuation, such
// as a bare year.
func isNumeric(token string) bool {
	for _, r := range token {
		if !unicode.IsDigit(r) && r != '.' && r != '-' && r != '_' {
			return false
		}
	}
	return true
}

// FindRep returns the first representative whose identity key occurs in the
// filename with spaces and underscores removed.
func FindRep(name string, reps []string) (string, bool) {
	haystack := strings.ReplaceAll(textnorm.Key(name), "_", "")
	for _, rep := range reps {
		key := textnorm.Key(rep)
		if key != "" && strings.Contains(haystack, key) {
			return rep, true
		}
	}
	return "", false
}
