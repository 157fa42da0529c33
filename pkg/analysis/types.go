// Package analysis holds the clause segmentation and keyword heuristics
// behind ClauseWise. Every function is pure: no I/O, no shared state, safe to
// call concurrently on independent inputs.
package analysis

// DocumentType is one of a closed set of contract types.
type DocumentType string

const (
	TypeNDA            DocumentType = "NDA"
	TypeLease          DocumentType = "Lease Agreement"
	TypeEmployment     DocumentType = "Employment Contract"
	TypeService        DocumentType = "Service Agreement"
	TypeSales          DocumentType = "Sales Agreement"
	TypeConsulting     DocumentType = "Consulting Agreement"
	TypeEULA           DocumentType = "EULA"
	TypeTermsOfService DocumentType = "Terms of Service"
	TypePartnership    DocumentType = "Partnership Agreement"
	TypeLoan           DocumentType = "Loan Agreement"
	TypeUnknown        DocumentType = "Unknown"
)

// Risk labels.
const (
	RiskBroadConfidentiality = "Broad confidentiality scope"
	RiskUnlimitedLiability   = "Unlimited liability"
	RiskOneSided             = "One-sided obligations"
	RiskLongDuration         = "Long/perpetual duration"
	RiskNoTermination        = "No termination rights"
	RiskUnilateralDiscretion = "Unilateral discretion"
	RiskPenalty              = "Penalty provisions"
	RiskArbitration          = "Mandatory arbitration"
	RiskIndemnification      = "Broad indemnification"
)

// Entity categories.
const (
	EntityParty        = "party"
	EntityDate         = "date"
	EntityAmount       = "amount"
	EntityPerson       = "person"
	EntityOrganization = "organization"
	EntityLocation     = "location"
	EntityMisc         = "misc"
)

// Clause is a trimmed, contiguous piece of the source text. Start and End are
// byte offsets of Text within the text passed to Segment.
type Clause struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// RiskFinding flags the clause that first triggered a risk label.
type RiskFinding struct {
	Label       string `json:"label"`
	ClauseIndex int    `json:"clause_index"`
}

// Fairness is the fairness score with its derived presentation values.
type Fairness struct {
	Score           int    `json:"score"`
	Label           string `json:"label"`
	PositiveHits    int    `json:"positive_hits"`
	NegativeHits    int    `json:"negative_hits"`
	YourPosition    int    `json:"your_position"`
	CompanyPosition int    `json:"company_position"`
}

// EntityBundle maps an entity category to its distinct values.
type EntityBundle map[string][]string

// Comparison summarises how two analysed documents differ.
type Comparison struct {
	LeftLength       int      `json:"left_length"`
	RightLength      int      `json:"right_length"`
	LeftClauses      int      `json:"left_clauses"`
	RightClauses     int      `json:"right_clauses"`
	RisksOnlyInLeft  []string `json:"risks_only_in_left"`
	RisksOnlyInRight []string `json:"risks_only_in_right"`
	SharedRisks      []string `json:"shared_risks"`
	FairnessDelta    int      `json:"fairness_delta"`
	Verdict          string   `json:"verdict"`
}
