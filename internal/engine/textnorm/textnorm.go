// Package textnorm holds the string normalisation shared by the normalizer,
// the classifier and cache fingerprinting. Casers and transformers from
// x/text are stateful, so each call builds its own.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CollapseSpace trims s and replaces every run of Unicode whitespace with a
// single ASCII space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// UpperName uppercases a personal name using Portuguese casing rules.
// Accents are kept: "Pedro Brandão" becomes "PEDRO BRANDÃO".
func UpperName(s string) string {
	s = norm.NFC.String(CollapseSpace(s))
	return cases.Upper(language.BrazilianPortuguese).String(s)
}

// StripAccents removes combining marks after canonical decomposition.
func StripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Fold produces the comparison form used for keyword matching: accents
// stripped, case folded, whitespace collapsed.
func Fold(s string) string {
	return cases.Fold().String(StripAccents(CollapseSpace(s)))
}

// FoldKey is the comparison form for cache keys. Unlike Fold it keeps accents,
// so "BRANDÃO" and "BRANDAO" stay distinct queries.
func FoldKey(s string) string {
	return cases.Fold().String(norm.NFC.String(CollapseSpace(s)))
}
