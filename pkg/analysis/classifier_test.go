package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNDALike(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"empty", "", false},
		{"whitespace only", "  \n\t ", false},
		{"non-disclosure title", "This Non-Disclosure Agreement is made between the parties.", true},
		{"receiving party", "The RECEIVING PARTY shall protect the data.", true},
		{"confidential information", "All Confidential Information remains the property of Acme.", true},
		{"lease", "The landlord leases the premises to the tenant.", false},
		{"bare confidential", "This memo is confidential.", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNDALike(tt.text))
		})
	}
}

func TestIsNDALike_EveryKeywordTriggers(t *testing.T) {
	for _, kw := range NDAKeywords() {
		assert.True(t, IsNDALike("prefix "+kw+" suffix"), kw)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want DocumentType
	}{
		{"lease", "The landlord and tenant enter into this lease.", TypeLease},
		{"nda", "The Disclosing Party shares Confidential Information with the Receiving Party.", TypeNDA},
		{"employment", "The Employer shall pay the Employee a monthly salary.", TypeEmployment},
		{"loan", "The Lender advances the loan to the Borrower at a fixed interest rate.", TypeLoan},
		{"unknown", "The quick brown fox jumps over the lazy dog.", TypeUnknown},
		{"empty", "", TypeUnknown},
		{"release is not lease", "The release of funds is scheduled.", TypeUnknown},
		{"tie goes to earlier type", "loan and lease", TypeLease},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text))
		})
	}
}

func TestClassifyScores(t *testing.T) {
	scores := ClassifyScores("Tenant pays rent to the landlord. The tenant keeps the premises clean.")
	require.Len(t, scores, len(DocumentTypes()))

	assert.Equal(t, TypeNDA, scores[0].Type)
	assert.Equal(t, 0, scores[0].Count)
	assert.Equal(t, TypeLease, scores[1].Type)
	assert.Equal(t, 5, scores[1].Count)
}

func TestDocumentTypes_Order(t *testing.T) {
	types := DocumentTypes()
	require.NotEmpty(t, types)
	assert.Equal(t, TypeNDA, types[0])
	assert.NotContains(t, types, TypeUnknown)
}
