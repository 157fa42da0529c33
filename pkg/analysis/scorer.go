package analysis

import (
	"regexp"
	"strings"
)

// Fairness scoring constants.
const (
	FairnessBaseline  = 50
	FairnessIncrement = 5
	// MaxRiskFindings caps FindRisks to the first distinct labels found.
	MaxRiskFindings = 5
)

// Fairness labels.
const (
	FairnessHighlyFair  = "Highly Fair"
	FairnessModerate    = "Moderately Balanced"
	FairnessNeedsReview = "Needs Review"
)

var (
	positiveMatchers = compileWords(fairnessPositive)
	negativeMatchers = compileWords(fairnessNegative)
)

func compileWords(words []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(words))
	for i, w := range words {
		res[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(w) + `\b`)
	}
	return res
}

func countMatches(text string, patterns []*regexp.Regexp) int {
	n := 0
	for _, re := range patterns {
		n += len(re.FindAllStringIndex(text, -1))
	}
	return n
}

// FindRisks walks clauses in order and, within each clause, the risk taxonomy
// in declaration order. Each label is reported once, at the first clause that
// triggers it, and at most MaxRiskFindings labels are returned.
func FindRisks(clauses []Clause) []RiskFinding {
	findings := []RiskFinding{}
	seen := make(map[string]struct{}, len(riskPatterns))
	for _, clause := range clauses {
		lower := strings.ToLower(clause.Text)
		for _, pattern := range riskPatterns {
			if _, ok := seen[pattern.Label]; ok {
				continue
			}
			if containsAny(lower, pattern.Keywords) {
				seen[pattern.Label] = struct{}{}
				findings = append(findings, RiskFinding{Label: pattern.Label, ClauseIndex: clause.Index})
				if len(findings) == MaxRiskFindings {
					return findings
				}
			}
		}
	}
	return findings
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// FairnessScore starts at FairnessBaseline and moves FairnessIncrement per
// occurrence of each positive or negative keyword, clamped to [0,100].
func FairnessScore(text string) int {
	return AssessFairness(text).Score
}

// AssessFairness returns the fairness score with its hit counts, label and
// the your/company position split.
func AssessFairness(text string) Fairness {
	pos := countMatches(text, positiveMatchers)
	neg := countMatches(text, negativeMatchers)
	score := clamp(FairnessBaseline+(pos-neg)*FairnessIncrement, 0, 100)

	return Fairness{
		Score:           score,
		Label:           fairnessLabel(score),
		PositiveHits:    pos,
		NegativeHits:    neg,
		YourPosition:    score,
		CompanyPosition: 100 - score,
	}
}

func fairnessLabel(score int) string {
	switch {
	case score >= 75:
		return FairnessHighlyFair
	case score >= 50:
		return FairnessModerate
	default:
		return FairnessNeedsReview
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Alternatives suggests a fairer wording for each flagged risk, in finding
// order. With no findings it returns a generic set of balanced clauses.
func Alternatives(findings []RiskFinding) []string {
	if len(findings) == 0 {
		return append([]string(nil), defaultAlternatives...)
	}
	alts := make([]string, 0, len(findings))
	for _, f := range findings {
		if alt, ok := alternativeClauses[f.Label]; ok {
			alts = append(alts, alt)
		}
	}
	return alts
}
