package analysis

// TablesVersion identifies the keyword tables below. Bump it whenever a
// label or keyword changes so stored reports can be told apart.
const TablesVersion = "2024.2"

// KeywordSet pairs a label with the keywords that vote for it.
type KeywordSet struct {
	Label    string
	Keywords []string
}

// ndaKeywords trigger IsNDALike on a plain substring match.
var ndaKeywords = []string{
	"non-disclosure",
	"non disclosure",
	"nondisclosure",
	"confidential information",
	"disclosing party",
	"receiving party",
	"confidentiality agreement",
	"confidential materials",
	"protected information",
}

// documentTypes is ordered: on equal counts the earlier entry wins.
var documentTypes = []KeywordSet{
	{Label: string(TypeNDA), Keywords: []string{"non-disclosure", "nondisclosure", "confidential information", "disclosing party", "receiving party"}},
	{Label: string(TypeLease), Keywords: []string{"lease", "tenant", "landlord", "premises", "rent"}},
	{Label: string(TypeEmployment), Keywords: []string{"employee", "employer", "employment", "salary"}},
	{Label: string(TypeService), Keywords: []string{"services", "service provider", "statement of work"}},
	{Label: string(TypeSales), Keywords: []string{"buyer", "seller", "purchase price", "goods"}},
	{Label: string(TypeConsulting), Keywords: []string{"consultant", "consulting"}},
	{Label: string(TypeEULA), Keywords: []string{"end user", "licensee", "license agreement", "software"}},
	{Label: string(TypeTermsOfService), Keywords: []string{"terms of service", "user account", "website"}},
	{Label: string(TypePartnership), Keywords: []string{"partnership", "partners", "profits"}},
	{Label: string(TypeLoan), Keywords: []string{"loan", "borrower", "lender", "interest rate"}},
}

// riskPatterns is ordered by how findings are reported.
var riskPatterns = []KeywordSet{
	{Label: RiskBroadConfidentiality, Keywords: []string{"broad", "all information", "any information"}},
	{Label: RiskUnlimitedLiability, Keywords: []string{"unlimited", "full liability", "all damages"}},
	{Label: RiskOneSided, Keywords: []string{"shall not", "only the receiving party"}},
	{Label: RiskLongDuration, Keywords: []string{"5 years", "7 years", "perpetual"}},
	{Label: RiskNoTermination, Keywords: []string{"cannot terminate", "no termination"}},
	{Label: RiskUnilateralDiscretion, Keywords: []string{"sole discretion", "unilateral", "exclusive to"}},
	{Label: RiskPenalty, Keywords: []string{"penalty", "liquidated damages"}},
	{Label: RiskArbitration, Keywords: []string{"arbitration"}},
	{Label: RiskIndemnification, Keywords: []string{"indemnify", "indemnification", "hold harmless"}},
}

// "both" and "both parties" are counted independently, so "both parties"
// scores twice.
var fairnessPositive = []string{"mutual", "both parties", "both", "equal", "shared", "balanced", "fair"}

var fairnessNegative = []string{"sole", "unilateral", "exclusive", "one-sided", "penalty", "only"}

// alternativeClauses maps a risk label to a fairer replacement wording.
var alternativeClauses = map[string]string{
	RiskBroadConfidentiality: "Confidential Information is limited to information marked or identified as confidential at the time of disclosure, excluding information that is public or independently developed.",
	RiskUnlimitedLiability:   "Each party's aggregate liability is capped at the fees paid under this Agreement in the twelve months preceding the claim.",
	RiskOneSided:             "The obligations in this Agreement apply equally to both parties as disclosing and receiving parties.",
	RiskLongDuration:         "The confidentiality obligations survive for a fixed period of two (2) to three (3) years after termination.",
	RiskNoTermination:        "Either party may terminate this Agreement on thirty (30) days' written notice to the other party.",
	RiskUnilateralDiscretion: "Decisions under this section require the mutual written agreement of both parties, not to be unreasonably withheld.",
	RiskPenalty:              "Remedies for breach are limited to actual, provable damages; no penalty or liquidated damages apply.",
	RiskArbitration:          "Disputes are first escalated to senior representatives for good-faith negotiation before any arbitration or court proceeding.",
	RiskIndemnification:      "Each party indemnifies the other only for third-party claims arising from its own breach or negligence.",
}

// defaultAlternatives are offered when no risk is flagged.
var defaultAlternatives = []string{
	"A mutual confidentiality clause where both parties share equal protection.",
	"A time-limited confidentiality period of 2-3 years.",
	"Liability capped at a fixed reasonable amount.",
}

// NDAKeywords returns a copy of the NDA detection keywords.
func NDAKeywords() []string {
	return append([]string(nil), ndaKeywords...)
}

// RiskLabels returns the risk taxonomy labels in declaration order.
func RiskLabels() []string {
	labels := make([]string, len(riskPatterns))
	for i, p := range riskPatterns {
		labels[i] = p.Label
	}
	return labels
}

// DocumentTypes returns the classifiable document types in declaration order.
func DocumentTypes() []DocumentType {
	types := make([]DocumentType, len(documentTypes))
	for i, t := range documentTypes {
		types[i] = DocumentType(t.Label)
	}
	return types
}
