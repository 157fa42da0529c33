package analysis

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// partyPreviewLength is how many runes of a party-bearing clause are kept.
const partyPreviewLength = 80

var (
	datePattern   = regexp.MustCompile(`\b(?:\d{1,2}/\d{1,2}/\d{2,4}|20\d{2})\b`)
	amountPattern = regexp.MustCompile(`[$€£₹]\d{1,3}(?:,\d{3})+(?:\.\d+)?|[$€£₹]\d+(?:\.\d+)?`)
)

// ExtractEntities pools parties, dates and amounts found across clauses.
//
// Party detection is a placeholder: any clause mentioning "party" is recorded
// as a truncated preview. It does not resolve party names; use a model-backed
// extractor for that.
func ExtractEntities(clauses []Clause) EntityBundle {
	sets := map[string]map[string]struct{}{
		EntityParty:  {},
		EntityDate:   {},
		EntityAmount: {},
	}
	for _, clause := range clauses {
		if strings.Contains(strings.ToLower(clause.Text), "party") {
			sets[EntityParty][preview(clause.Text, partyPreviewLength)] = struct{}{}
		}
		for _, d := range datePattern.FindAllString(clause.Text, -1) {
			sets[EntityDate][d] = struct{}{}
		}
		for _, a := range amountPattern.FindAllString(clause.Text, -1) {
			sets[EntityAmount][a] = struct{}{}
		}
	}

	bundle := make(EntityBundle, len(sets))
	for category, values := range sets {
		bundle[category] = sortedKeys(values)
	}
	return bundle
}

// ExtractEntitiesFromText segments text and extracts entities from the
// result. Text shorter than minLength is treated as a single clause so short
// snippets still yield dates and amounts.
func ExtractEntitiesFromText(text string, minLength int) EntityBundle {
	clauses := Segment(text, Options{MinLength: minLength})
	if len(clauses) == 0 && strings.TrimSpace(text) != "" {
		trimmed := strings.TrimSpace(text)
		clauses = []Clause{{Text: trimmed, End: len(trimmed)}}
	}
	return ExtractEntities(clauses)
}

// Merge adds every value of other into b, keeping values distinct and sorted.
func (b EntityBundle) Merge(other EntityBundle) {
	for category, values := range other {
		set := make(map[string]struct{}, len(b[category])+len(values))
		for _, v := range b[category] {
			set[v] = struct{}{}
		}
		for _, v := range values {
			set[v] = struct{}{}
		}
		b[category] = sortedKeys(set)
	}
}

func preview(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return string(runes[:n]) + "..."
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
