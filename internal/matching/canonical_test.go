package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateOverrides(t *testing.T) {
	assert.NoError(t, ValidateOverrides(nil))
	assert.NoError(t, ValidateOverrides(map[string]string{"asst mgr": "assistant manager"}))
	assert.Error(t, ValidateOverrides(map[string]string{"": "x"}))
	assert.Error(t, ValidateOverrides(map[string]string{"  ": "x"}))
	assert.Error(t, ValidateOverrides(map[string]string{"key": "   "}))
}

func TestToCanonicalOverrideWins(t *testing.T) {
	m := newTitleMatcher(t, TitleMatcherOptions{})

	match := m.Match("chief of police", "")
	require.True(t, match.Found())

	// The override beats the inferred canonical, and output is lowercased.
	out := m.ToCanonical("chief of police", match, map[string]string{"chief of police": "Head Constable"})
	assert.Equal(t, "head constable", out)

	out = m.ToCanonical("chief of police", match, nil)
	assert.Equal(t, "police chief", out)
}

func TestToCanonicalIndependentOfTier(t *testing.T) {
	m := newTitleMatcher(t, TitleMatcherOptions{})

	// Same canonical id reached through different tiers names identically.
	exact := m.Match("Chief of Police", "")
	folded := m.Match("chief of police", "")
	curated := m.Match("patrolman", "")
	require.Equal(t, "police-chief", exact.CanonicalID)
	require.Equal(t, "police-chief", folded.CanonicalID)

	assert.Equal(t, m.ToCanonical("Chief of Police", exact, nil), m.ToCanonical("chief of police", folded, nil))
	assert.Equal(t, "police officer", m.ToCanonical("patrolman", curated, nil))
}

func TestToCanonicalCorpusOnlyHit(t *testing.T) {
	m := newTitleMatcher(t, TitleMatcherOptions{})

	// A discovery-corpus entry with no curated mapping still names, from
	// its own lowercased form.
	match := m.Match("Management Analyst", "")
	require.True(t, match.Found())
	require.Empty(t, match.CanonicalID)
	assert.Equal(t, "management analyst", m.ToCanonical("Management Analyst", match, nil))
}

func TestToCanonicalNoMatch(t *testing.T) {
	m := newTitleMatcher(t, TitleMatcherOptions{})

	match := m.Match("xqzzyx", "")
	assert.Equal(t, "", m.ToCanonical("xqzzyx", match, nil))

	// Overrides apply even without a match.
	assert.Equal(t, "archivist", m.ToCanonical("xqzzyx", match, map[string]string{"xqzzyx": "Archivist"}))
}

func TestDepartmentToCanonical(t *testing.T) {
	m := newDepartmentMatcher(t, DepartmentMatcherOptions{})

	match := m.Match("Public Works Dept")
	require.True(t, match.Found())
	assert.Equal(t, "public works", m.ToCanonical("Public Works Dept", match, nil))
	assert.Equal(t, "engineering", m.ToCanonical("Public Works Dept", match, map[string]string{"public works dept": "Engineering"}))
}
