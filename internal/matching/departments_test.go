package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical-ai/contact-engine/internal/refdata"
	"github.com/spherical-ai/contact-engine/internal/semantics"
)

func newDepartmentMatcher(t *testing.T, opts DepartmentMatcherOptions) *DepartmentMatcher {
	t.Helper()
	store, err := refdata.Default()
	require.NoError(t, err)
	vocab, err := semantics.Default()
	require.NoError(t, err)
	return NewDepartmentMatcher(store, semantics.NewSafeguard(vocab), opts)
}

func customDepartmentMatcher(t *testing.T, entries []refdata.CanonicalDepartment, abbreviations map[string]string) *DepartmentMatcher {
	t.Helper()
	departments, err := refdata.NewDepartmentSet(entries, abbreviations)
	require.NoError(t, err)
	titles, err := refdata.NewTitleSet([]refdata.CanonicalTitle{{ID: "clerk", Display: "Clerk"}}, nil)
	require.NoError(t, err)
	vocab, err := semantics.Default()
	require.NoError(t, err)
	store := &refdata.Store{Titles: titles, Departments: departments}
	return NewDepartmentMatcher(store, semantics.NewSafeguard(vocab), DepartmentMatcherOptions{})
}

func TestMatchDepartmentStoplistStripping(t *testing.T) {
	m := newDepartmentMatcher(t, DepartmentMatcherOptions{})

	r := m.Match("Public Works Dept")
	assert.Equal(t, "public-works", r.CanonicalID)
	assert.Equal(t, "Public Works", r.Matched)
	assert.GreaterOrEqual(t, r.Confidence, 0.85)

	r = m.Match("Human Resources Division")
	assert.Equal(t, "human-resources", r.CanonicalID)

	// Nothing substantive survives stripping.
	r = m.Match("City Department")
	assert.Equal(t, TierNone, r.Tier)
}

func TestMatchDepartmentAbbreviations(t *testing.T) {
	m := newDepartmentMatcher(t, DepartmentMatcherOptions{})

	cases := map[string]string{
		"IT":  "information-technology",
		"hr":  "human-resources",
		"dpw": "public-works",
		"PD":  "police",
	}
	for input, want := range cases {
		r := m.Match(input)
		assert.Equal(t, TierExact, r.Tier, "input %q", input)
		assert.Equal(t, want, r.CanonicalID, "input %q", input)
	}
}

func TestMatchDepartmentLocationQualifiers(t *testing.T) {
	m := newDepartmentMatcher(t, DepartmentMatcherOptions{})

	r := m.Match("Water Department - North Plant")
	require.True(t, r.Found())
	assert.Equal(t, "water", r.CanonicalID)
	assert.Equal(t, TierFuzzyPartial, r.Tier)
	assert.GreaterOrEqual(t, r.Confidence, 0.60)
	assert.LessOrEqual(t, r.Confidence, 0.70)
}

func TestMatchDepartmentSoftVeto(t *testing.T) {
	m := customDepartmentMatcher(t, []refdata.CanonicalDepartment{
		{ID: "water", Display: "Water Services", Category: "Utilities"},
	}, nil)

	// Lexically close, semantically disjoint: the candidate is skipped and
	// with no other candidate the result is a veto, not an error.
	r := m.Match("IT Services")
	assert.Equal(t, TierNone, r.Tier)
	assert.True(t, r.Vetoed)
	assert.Empty(t, r.CanonicalID)
}

func TestMatchDepartmentSoftVetoContinuesPass(t *testing.T) {
	m := customDepartmentMatcher(t, []refdata.CanonicalDepartment{
		{ID: "water", Display: "Water Services", Category: "Utilities"},
		{ID: "information-technology", Display: "Technology Services", Category: "Information Technology"},
	}, nil)

	// The conflicting candidate is skipped but the pass keeps scanning and
	// finds the compatible one.
	r := m.Match("IT Services")
	require.True(t, r.Found())
	assert.Equal(t, "information-technology", r.CanonicalID)
}

func TestMatchDepartmentEmptyInput(t *testing.T) {
	m := newDepartmentMatcher(t, DepartmentMatcherOptions{})
	r := m.Match("   ")
	assert.Equal(t, TierNone, r.Tier)
	assert.False(t, r.Vetoed)
}

func TestMatchDepartmentDeterministic(t *testing.T) {
	m := newDepartmentMatcher(t, DepartmentMatcherOptions{})
	inputs := []string{"Public Works Dept", "parks & rec", "Water Department - North Plant", "nonsense bureau"}
	for _, input := range inputs {
		first := m.Match(input)
		for i := 0; i < 3; i++ {
			assert.Equal(t, first, m.Match(input), "input %q", input)
		}
	}
}

func TestMatchDepartmentLocationGuard(t *testing.T) {
	m := newDepartmentMatcher(t, DepartmentMatcherOptions{})
	for _, input := range []string{"Room 101", "Rm 14", "Harbor Building 04B", "Suite 300"} {
		r := m.Match(input)
		assert.Equal(t, TierNone, r.Tier, "input %q", input)
		assert.False(t, r.Vetoed, "input %q", input)
	}

	// A numbered station qualifier alone does not trip the guard.
	r := m.Match("Fire Department")
	assert.Equal(t, "fire", r.CanonicalID)
}

func TestDepartmentSimilarity(t *testing.T) {
	assert.Equal(t, 0.0, DepartmentSimilarity("", "police"))
	assert.Equal(t, 1.0, DepartmentSimilarity("Public Works Dept", "public works"))
	assert.Less(t, DepartmentSimilarity("library", "fire department"), 0.5)
}

func TestDepartmentTopMatches(t *testing.T) {
	m := newDepartmentMatcher(t, DepartmentMatcherOptions{})

	top := m.TopMatches("water", 3)
	require.NotEmpty(t, top)
	assert.LessOrEqual(t, len(top), 3)
	assert.Equal(t, "water", top[0].CanonicalID)
	for i := 1; i < len(top); i++ {
		assert.LessOrEqual(t, top[i].Score, top[i-1].Score)
	}

	assert.Nil(t, m.TopMatches("", 3))
	assert.Nil(t, m.TopMatches("water", 0))
}
