package analysis

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractEntitiesFromText_AmountAndYear(t *testing.T) {
	bundle := ExtractEntitiesFromText("Payment of $10,000 due in 2024", 20)

	assert.Equal(t, []string{"$10,000"}, bundle[EntityAmount])
	assert.Contains(t, bundle[EntityDate], "2024")
	assert.Empty(t, bundle[EntityParty])
}

func TestExtractEntitiesFromText_ShortSnippet(t *testing.T) {
	bundle := ExtractEntitiesFromText("Due 2031", 20)
	assert.Equal(t, []string{"2031"}, bundle[EntityDate])
}

func TestExtractEntitiesFromText_Empty(t *testing.T) {
	bundle := ExtractEntitiesFromText("", 20)
	require.Len(t, bundle, 3)
	for category, values := range bundle {
		assert.Empty(t, values, category)
	}
}

func TestExtractEntities(t *testing.T) {
	bundle := ExtractEntities(clausesOf(
		"The Disclosing Party shall pay $1,500.50 by 12/31/2025.",
		"A fee of €250 applies from 2026 onwards; another $1,500.50 is due in 2026.",
		"Nothing to see in 1999 or at $ 5.",
	))

	assert.Equal(t, []string{"The Disclosing Party shall pay $1,500.50 by 12/31/2025."}, bundle[EntityParty])
	assert.Equal(t, []string{"12/31/2025", "2026"}, bundle[EntityDate])
	assert.ElementsMatch(t, []string{"$1,500.50", "€250"}, bundle[EntityAmount])
}

func TestExtractEntities_PartyPreviewTruncated(t *testing.T) {
	long := "Each party agrees " + strings.Repeat("that the obligations continue ", 5)

	bundle := ExtractEntities(clausesOf(long))
	require.Len(t, bundle[EntityParty], 1)

	got := bundle[EntityParty][0]
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, partyPreviewLength+3, utf8.RuneCountInString(got))
	assert.True(t, strings.HasPrefix(long, strings.TrimSuffix(got, "...")))
}

func TestEntityBundle_Merge(t *testing.T) {
	bundle := EntityBundle{EntityDate: {"2024"}}
	bundle.Merge(EntityBundle{
		EntityDate:   {"2025", "2024"},
		EntityPerson: {"Alice"},
	})

	assert.Equal(t, []string{"2024", "2025"}, bundle[EntityDate])
	assert.Equal(t, []string{"Alice"}, bundle[EntityPerson])
}
