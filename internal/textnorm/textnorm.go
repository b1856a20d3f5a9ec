// Package textnorm folds Turkish text into the uppercase ASCII-leaning form
// used for every keyword and identity comparison.
package textnorm

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var foldReplacer = strings.NewReplacer(
	"İ", "I",
	"Ş", "S",
	"Ğ", "G",
	"Ü", "U",
	"Ö", "O",
	"Ç", "C",
)

// Normalize uppercases s with Turkish casing rules and maps İ, Ş, Ğ, Ü, Ö
// and Ç to I, S, G, U, O and C. Decomposed input (common in filenames
// written on macOS) is composed first.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	// cases.Caser is stateful and not safe for concurrent use.
	upper := cases.Upper(language.Turkish).String(norm.NFC.String(s))
	return foldReplacer.Replace(upper)
}

// Key returns the identity form of s: normalized with all spaces removed.
func Key(s string) string {
	return strings.ReplaceAll(Normalize(s), " ", "")
}

// Contains reports whether the normalized form of s contains any of the
// given keywords. Keywords must already be normalized.
func Contains(s string, keywords ...string) bool {
	n := Normalize(s)
	for _, kw := range keywords {
		if strings.Contains(n, kw) {
			return true
		}
	}
	return false
}
