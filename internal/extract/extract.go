// Package extract pulls prize numbers out of normalised result sheet text.
//
// Every category on a sheet starts with a Thai heading followed by
// fixed-width numbers. Extraction anchors on the heading and collects
// numbers after it; it never fails, it returns fewer numbers.
package extract

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
)

var (
	tokenPatternsMu sync.Mutex
	tokenPatterns   = map[int]*regexp.Regexp{}
)

// tokenPattern returns the cached pattern matching width digits.
func tokenPattern(width int) *regexp.Regexp {
	tokenPatternsMu.Lock()
	defer tokenPatternsMu.Unlock()
	re, ok := tokenPatterns[width]
	if !ok {
		re = regexp.MustCompile(fmt.Sprintf(`\d{%d}`, width))
		tokenPatterns[width] = re
	}
	return re
}

// AfterHeading returns up to expected unique width-digit numbers that
// follow the first match of heading, in order of first appearance.
// It returns nil when the heading does not occur.
func AfterHeading(text string, heading *regexp.Regexp, width, expected int) []string {
	loc := heading.FindStringIndex(text)
	if loc == nil {
		return nil
	}
	return scan(text[loc[1]:], width, expected)
}

// InSection is AfterHeading with the scan window cut at the nearest
// terminator match after the heading. Terminators usually are the
// headings of the categories that may follow.
func InSection(text string, heading *regexp.Regexp, terminators []*regexp.Regexp, width, expected int) []string {
	loc := heading.FindStringIndex(text)
	if loc == nil {
		return nil
	}
	rest := text[loc[1]:]
	end := len(rest)
	for _, term := range terminators {
		if t := term.FindStringIndex(rest); t != nil && t[0] < end {
			end = t[0]
		}
	}
	return scan(rest[:end], width, expected)
}

func scan(window string, width, expected int) []string {
	if width <= 0 || expected <= 0 {
		return nil
	}
	return domain.UniqueTruncate(tokenPattern(width).FindAllString(window, -1), expected)
}
