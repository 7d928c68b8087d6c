package analysis

import (
	"sort"
	"strings"
	"unicode"
)

// Default substring length bounds for FindPatterns.
const (
	DefaultMinPatternLength = 3
	DefaultMaxPatternLength = 10
)

// FindPatterns reports every substring with a length in [minLength, maxLength]
// that occurs more than once in the lower-cased, letters-only form of text.
//
// Entries are ordered by count, descending. Ties keep discovery order: shorter
// patterns first, then by first start offset. minLength is clamped to 1; an
// inverted range or a filtered text shorter than minLength yields an empty
// report.
//
// The scan performs (maxLength-minLength+1) * n substring lookups, so callers
// are responsible for bounding both the range and the input size.
func FindPatterns(text string, minLength, maxLength int) PatternReport {
	if minLength < 1 {
		minLength = 1
	}
	cleaned := lettersOnly(text)
	if maxLength < minLength || len(cleaned) < minLength {
		return PatternReport{}
	}
	if maxLength > len(cleaned) {
		maxLength = len(cleaned)
	}

	index := make(map[string]int)
	var discovered []*PatternEntry
	for length := minLength; length <= maxLength; length++ {
		for i := 0; i+length <= len(cleaned); i++ {
			sub := cleaned[i : i+length]
			if at, ok := index[sub]; ok {
				entry := discovered[at]
				entry.Count++
				entry.Positions = append(entry.Positions, i)
				continue
			}
			index[sub] = len(discovered)
			discovered = append(discovered, &PatternEntry{Pattern: sub, Count: 1, Positions: []int{i}})
		}
	}

	report := make(PatternReport, 0)
	for _, entry := range discovered {
		if entry.Count > 1 {
			report = append(report, *entry)
		}
	}
	sort.SliceStable(report, func(i, j int) bool {
		return report[i].Count > report[j].Count
	})
	return report
}

// lettersOnly lower-cases text and drops every rune outside a–z.
func lettersOnly(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		r = unicode.ToLower(r)
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
