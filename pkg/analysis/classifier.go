package analysis

import (
	"regexp"
	"strings"
)

type labelMatcher struct {
	label    string
	patterns []*regexp.Regexp
}

// typeMatchers anchor each keyword on a left word boundary so "lease" does
// not count inside "release" but still counts in "leased".
var typeMatchers = compileMatchers(documentTypes, `(?i)\b%s`)

func compileMatchers(sets []KeywordSet, format string) []labelMatcher {
	matchers := make([]labelMatcher, len(sets))
	for i, set := range sets {
		m := labelMatcher{label: set.Label}
		for _, kw := range set.Keywords {
			m.patterns = append(m.patterns, regexp.MustCompile(strings.Replace(format, "%s", regexp.QuoteMeta(kw), 1)))
		}
		matchers[i] = m
	}
	return matchers
}

// IsNDALike reports whether text contains any NDA keyword.
func IsNDALike(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, kw := range ndaKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// ClassifyScores returns the keyword hit count of every document type, in
// declaration order.
func ClassifyScores(text string) []TypeScore {
	scores := make([]TypeScore, len(typeMatchers))
	for i, m := range typeMatchers {
		count := 0
		if text != "" {
			for _, re := range m.patterns {
				count += len(re.FindAllStringIndex(text, -1))
			}
		}
		scores[i] = TypeScore{Type: DocumentType(m.label), Count: count}
	}
	return scores
}

// TypeScore is the number of keyword hits for one document type.
type TypeScore struct {
	Type  DocumentType `json:"type"`
	Count int          `json:"count"`
}

// Classify picks the document type with the most keyword hits. Ties go to the
// type declared first; no hits at all yields TypeUnknown.
func Classify(text string) DocumentType {
	best := TypeUnknown
	bestCount := 0
	for _, s := range ClassifyScores(text) {
		if s.Count > bestCount {
			best, bestCount = s.Type, s.Count
		}
	}
	return best
}
