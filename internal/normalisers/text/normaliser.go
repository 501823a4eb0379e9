// Package text canonicalises text pulled out of result sheets so the same
// patterns match pdftotext output, OCR output and scraped HTML alike.
package text

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	multiSpaces   = regexp.MustCompile(`[ \t]+`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
	lineEndings   = strings.NewReplacer("\r\n", "\n", "\r", "\n", "\u00a0", " ")
)

// Normalise unifies line endings, collapses horizontal whitespace, joins
// digit runs split by whitespace and collapses blank lines. It is idempotent.
func Normalise(s string) string {
	s = lineEndings.Replace(s)
	s = multiSpaces.ReplaceAllString(s, " ")
	s = joinDigitRuns(s)
	s = multiNewlines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// joinDigitRuns drops whitespace that sits strictly between two ASCII digits.
// OCR often splits "730209" into "730 209".
func joinDigitRuns(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(runes); i++ {
		if !unicode.IsSpace(runes[i]) || i == 0 || !isDigit(runes[i-1]) {
			b.WriteRune(runes[i])
			continue
		}
		j := i
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		if j == len(runes) || !isDigit(runes[j]) {
			b.WriteString(string(runes[i:j]))
		}
		i = j - 1
	}
	return b.String()
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
