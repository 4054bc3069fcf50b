package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmailSimilarity(t *testing.T) {
	sim, _ := emailSimilarity("jane.doe@city.gov", "JANE.DOE@CITY.GOV")
	assert.Equal(t, 1.0, sim)

	// Plus-aliases collapse to the same address.
	sim, _ = emailSimilarity("jane.doe+newsletters@city.gov", "jane.doe@city.gov")
	assert.Equal(t, 1.0, sim)

	// Initial-compressed local parts are equivalent on the same domain.
	sim, note := emailSimilarity("rchen@city.gov", "robert.chen@city.gov")
	assert.Equal(t, 1.0, sim)
	assert.Equal(t, "local-part alias", note)

	// The weakest same-domain pair outranks the strongest cross-domain
	// pair: domain equality is a gate, not a bonus.
	sameDomainWeak, _ := emailSimilarity("zq@city.gov", "jane.doe@city.gov")
	crossDomainStrong, _ := emailSimilarity("jane.doe@city.gov", "jane.doe@county.gov")
	assert.Greater(t, sameDomainWeak, crossDomainStrong)

	sim, _ = emailSimilarity("", "jane@city.gov")
	assert.Equal(t, 0.0, sim)
}

func TestNameSimilarity(t *testing.T) {
	c := newComparator(t)

	sim, _ := c.nameSimilarity("José García", "jose garcia")
	assert.Equal(t, 1.0, sim)

	sim, note := c.nameSimilarity("Bob Smith", "Robert Smith")
	assert.Equal(t, 1.0, sim)
	assert.Equal(t, "nickname equivalence", note)

	// Shared first name cannot carry a different surname past the cap.
	sim, note = c.nameSimilarity("Jane Doe", "Jane Washington")
	assert.LessOrEqual(t, sim, 0.40)
	assert.Equal(t, "last-name mismatch cap", note)

	// A single-token record caps rather than zeroes.
	sim, _ = c.nameSimilarity("Jane", "Jane Doe")
	assert.Equal(t, 0.80, sim)
}

func TestCanonicalSimilarityGate(t *testing.T) {
	c := newComparator(t)

	sim, _ := c.canonicalSimilarity("police chief", "police chief")
	assert.Equal(t, 1.0, sim)

	// Cross-domain canonical strings must not inflate the overall score.
	sim, note := c.canonicalSimilarity("information technology", "water")
	assert.Equal(t, 0.0, sim)
	assert.Equal(t, "semantic conflict", note)

	sim, _ = c.canonicalSimilarity("grants manager", "grants coordinator")
	assert.Greater(t, sim, 0.5)
	assert.Less(t, sim, 1.0)
}

func TestPhoneSimilarityExactOnly(t *testing.T) {
	sim, _ := phoneSimilarity("+15551234567", "+15551234567")
	assert.Equal(t, 1.0, sim)
	sim, _ = phoneSimilarity("+15551234567", "+15551234568")
	assert.Equal(t, 0.0, sim)
}

func TestNicknameTable(t *testing.T) {
	table, err := defaultNicknames()
	assert.NoError(t, err)

	assert.True(t, table.Equivalent("bob", "robert"))
	assert.True(t, table.Equivalent("bill", "billy")) // shared root
	assert.True(t, table.Equivalent("ted", "theodore"))
	assert.False(t, table.Equivalent("bob", "william"))
	assert.False(t, table.Equivalent("", ""))
}
