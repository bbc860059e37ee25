// Package normalizer canonicalizes free-text clinical notes before any
// feature extraction runs. It repairs the whitespace and punctuation damage
// that PDF text extraction leaves behind.
package normalizer

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRun   = regexp.MustCompile(`[\s\p{Z}]+`)
	splitDecimal    = regexp.MustCompile(`(\d)\s*\.\s*(\d)`)
	trailingAbbrev  = regexp.MustCompile(`\b([A-Za-z]+)\.\s`)
	unitReplacement = strings.NewReplacer("SpO 2", "SpO2")
	oxygenUnit      = strings.NewReplacer("O 2", "O2")
)

// Text is a note that has been through Normalize. It is only produced by
// Normalize and never mutated afterwards.
type Text string

func (t Text) String() string {
	return string(t)
}

// Normalize applies the canonicalization steps in order. Every step is a
// substitution that keeps token order; no clinical content is removed.
// Normalize is idempotent.
func Normalize(raw string) Text {
	// NFKC folds non-breaking and full-width spaces and digits into ASCII so
	// the patterns below see them.
	text := norm.NFKC.String(raw)

	text = whitespaceRun.ReplaceAllString(text, " ")
	text = splitDecimal.ReplaceAllString(text, "${1}.${2}")
	text = trailingAbbrev.ReplaceAllString(text, "${1} ")
	text = unitReplacement.Replace(text)
	text = oxygenUnit.Replace(text)

	return Text(strings.TrimSpace(text))
}

// Truncate returns at most n runes of t. Used to bound guideline text
// forwarded to the rewriter.
func Truncate(t Text, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(string(t))
	if len(runes) <= n {
		return string(t)
	}
	return string(runes[:n])
}
