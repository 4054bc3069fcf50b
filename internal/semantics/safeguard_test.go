package semantics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVocabulary(t *testing.T) *Vocabulary {
	t.Helper()
	vocab, err := Default()
	require.NoError(t, err, "embedded vocabulary must load")
	return vocab
}

func TestSafeguard_Check_DisjointDomainsConflict(t *testing.T) {
	guard := NewSafeguard(testVocabulary(t))

	// "web" votes IT, "water" votes INFRA, "developer" is neutral.
	decision := guard.Check("web developer", "water developer")

	assert.Equal(t, VerdictConflict, decision.Verdict)
	assert.True(t, decision.Conflict())
	assert.Contains(t, decision.DomainsA, "IT")
	assert.Contains(t, decision.DomainsB, "INFRA")
}

func TestSafeguard_Check_SharedDomainAgrees(t *testing.T) {
	guard := NewSafeguard(testVocabulary(t))

	decision := guard.Check("software engineer", "senior software engineer")

	assert.Equal(t, VerdictAgreement, decision.Verdict)
	assert.False(t, decision.Conflict())
}

func TestSafeguard_Check_BothNeutralFailsOpen(t *testing.T) {
	guard := NewSafeguard(testVocabulary(t))

	// "manager" and "director" are deliberately absent from the vocabulary.
	decision := guard.Check("manager", "director")

	assert.Equal(t, VerdictNoSignal, decision.Verdict)
	assert.False(t, decision.Conflict())
}

func TestSafeguard_Check_OneSidedSignalIsPartial(t *testing.T) {
	guard := NewSafeguard(testVocabulary(t))

	decision := guard.Check("software developer", "office coordinator")

	assert.Equal(t, VerdictPartialSignal, decision.Verdict)
	assert.False(t, decision.Conflict(), "partial information must never veto")
}

func TestSafeguard_Check_MultiDomainTokensIntersect(t *testing.T) {
	guard := NewSafeguard(testVocabulary(t))

	// "paramedic" carries SAFETY and HEALTH; "nurse" carries HEALTH only.
	decision := guard.Check("paramedic supervisor", "nurse supervisor")

	assert.Equal(t, VerdictAgreement, decision.Verdict)
}

func TestSafeguard_Check_EmptyStrings(t *testing.T) {
	guard := NewSafeguard(testVocabulary(t))

	decision := guard.Check("", "")
	assert.Equal(t, VerdictNoSignal, decision.Verdict)
}

func TestSafeguard_HasSignal(t *testing.T) {
	guard := NewSafeguard(testVocabulary(t))

	assert.True(t, guard.HasSignal("water treatment"))
	assert.False(t, guard.HasSignal("senior coordinator"))
}

func TestVocabulary_Tokenize(t *testing.T) {
	tokens := Tokenize("Senior Web-Developer (IT)")
	assert.Equal(t, []string{"senior", "web", "developer", "it"}, tokens)
}

func TestVocabulary_ExtractDomains_NeutralTokensEvaporate(t *testing.T) {
	vocab := testVocabulary(t)

	domains := vocab.ExtractDomains("deputy manager of operations")
	assert.Empty(t, domains)
}

func TestVocabulary_ParseRejectsEmpty(t *testing.T) {
	_, err := Parse([]byte(`{}`))
	assert.Error(t, err, "an empty vocabulary would silently disable the safeguard")
}

func TestVocabulary_NewVocabularyNormalizesKeys(t *testing.T) {
	vocab := NewVocabulary(map[string][]string{" Water ": {"INFRA"}})
	assert.Equal(t, []string{"INFRA"}, vocab.Domains("water"))
}
