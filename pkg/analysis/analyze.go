package analysis

import "fmt"

// Result is the output of the full heuristic pipeline over one document.
type Result struct {
	DocumentType DocumentType  `json:"document_type"`
	IsNDA        bool          `json:"is_nda"`
	TextLength   int           `json:"text_length"`
	Clauses      []Clause      `json:"clauses"`
	Risks        []RiskFinding `json:"risks"`
	Fairness     Fairness      `json:"fairness"`
	Entities     EntityBundle  `json:"entities"`
	Alternatives []string      `json:"alternatives"`
	Version      string        `json:"tables_version"`
}

// Analyze cleans text and runs every heuristic over it. Entities come from the
// regex path; callers with a model-backed extractor replace them afterwards.
func Analyze(text string, opts Options) Result {
	cleaned := CleanText(text)
	clauses := Segment(cleaned, opts)
	risks := FindRisks(clauses)

	return Result{
		DocumentType: Classify(cleaned),
		IsNDA:        IsNDALike(cleaned),
		TextLength:   len([]rune(cleaned)),
		Clauses:      clauses,
		Risks:        risks,
		Fairness:     AssessFairness(cleaned),
		Entities:     ExtractEntities(clauses),
		Alternatives: Alternatives(risks),
		Version:      TablesVersion,
	}
}

// Compare reports the differences between two analysed documents.
func Compare(left, right Result) Comparison {
	leftRisks := riskSet(left.Risks)
	rightRisks := riskSet(right.Risks)

	c := Comparison{
		LeftLength:       left.TextLength,
		RightLength:      right.TextLength,
		LeftClauses:      len(left.Clauses),
		RightClauses:     len(right.Clauses),
		RisksOnlyInLeft:  []string{},
		RisksOnlyInRight: []string{},
		SharedRisks:      []string{},
		FairnessDelta:    left.Fairness.Score - right.Fairness.Score,
	}
	for _, f := range left.Risks {
		if _, ok := rightRisks[f.Label]; ok {
			c.SharedRisks = append(c.SharedRisks, f.Label)
		} else {
			c.RisksOnlyInLeft = append(c.RisksOnlyInLeft, f.Label)
		}
	}
	for _, f := range right.Risks {
		if _, ok := leftRisks[f.Label]; !ok {
			c.RisksOnlyInRight = append(c.RisksOnlyInRight, f.Label)
		}
	}

	switch {
	case c.LeftLength > c.RightLength:
		c.Verdict = "Contract A has more extensive clauses; Contract B is more concise."
	case c.LeftLength < c.RightLength:
		c.Verdict = "Contract B includes additional terms; Contract A is shorter."
	default:
		c.Verdict = "Both contracts are similar in length and complexity."
	}
	if c.FairnessDelta != 0 {
		fairer := "A"
		if c.FairnessDelta < 0 {
			fairer = "B"
		}
		c.Verdict += fmt.Sprintf(" Contract %s scores %d points fairer.", fairer, abs(c.FairnessDelta))
	}
	return c
}

func riskSet(findings []RiskFinding) map[string]struct{} {
	set := make(map[string]struct{}, len(findings))
	for _, f := range findings {
		set[f.Label] = struct{}{}
	}
	return set
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
