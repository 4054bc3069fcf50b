package refdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedSnapshot(t *testing.T) {
	store, err := Load(EmbeddedSource{})
	require.NoError(t, err)
	require.NotNil(t, store.Titles)
	require.NotNil(t, store.Departments)

	assert.NotEmpty(t, store.Titles.Entries())
	assert.NotEmpty(t, store.Titles.Corpus())
	assert.NotEmpty(t, store.Departments.Entries())
}

func TestDefaultIsStable(t *testing.T) {
	a, err := Default()
	require.NoError(t, err)
	b, err := Default()
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestTitleVariantLookup(t *testing.T) {
	store, err := Default()
	require.NoError(t, err)

	id, ok := store.Titles.CanonicalIDForVariant("Chief of Police")
	require.True(t, ok)
	assert.Equal(t, "police-chief", id)

	entry, ok := store.Titles.ByID(id)
	require.True(t, ok)
	assert.Equal(t, "Police Chief", entry.Display)

	// Display strings resolve to their own id too.
	id, ok = store.Titles.CanonicalIDForVariant("police chief")
	require.True(t, ok)
	assert.Equal(t, "police-chief", id)

	_, ok = store.Titles.CanonicalIDForVariant("underwater basket weaver")
	assert.False(t, ok)
}

func TestCorpusLookupReportsCaseExactness(t *testing.T) {
	store, err := Default()
	require.NoError(t, err)

	original, exact, ok := store.Titles.CorpusContains("Web Developer")
	require.True(t, ok)
	assert.True(t, exact)
	assert.Equal(t, "Web Developer", original)

	original, exact, ok = store.Titles.CorpusContains("web developer")
	require.True(t, ok)
	assert.False(t, exact)
	assert.Equal(t, "Web Developer", original)

	_, _, ok = store.Titles.CorpusContains("grand vizier")
	assert.False(t, ok)
}

func TestDepartmentAbbreviations(t *testing.T) {
	store, err := Default()
	require.NoError(t, err)

	id, ok := store.Departments.ExpandAbbreviation("IT")
	require.True(t, ok)
	assert.Equal(t, "information-technology", id)

	id, ok = store.Departments.ExpandAbbreviation("dpw")
	require.True(t, ok)
	assert.Equal(t, "public-works", id)

	_, ok = store.Departments.ExpandAbbreviation("xyz")
	assert.False(t, ok)

	assert.Equal(t, "Utilities", store.Departments.CategoryOf("water"))
	assert.Equal(t, "", store.Departments.CategoryOf("no-such-dept"))
}

func TestNewTitleSetRejectsAmbiguousVariant(t *testing.T) {
	_, err := NewTitleSet([]CanonicalTitle{
		{ID: "a", Display: "Alpha", Variants: []string{"shared"}},
		{ID: "b", Display: "Beta", Variants: []string{"Shared"}},
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shared")
}

func TestNewTitleSetRejectsDuplicateID(t *testing.T) {
	_, err := NewTitleSet([]CanonicalTitle{
		{ID: "a", Display: "Alpha"},
		{ID: "a", Display: "Also Alpha"},
	}, nil)
	require.Error(t, err)
}

func TestNewDepartmentSetRejectsDanglingAbbreviation(t *testing.T) {
	_, err := NewDepartmentSet(
		[]CanonicalDepartment{{ID: "water", Display: "Water", Category: "Utilities"}},
		map[string]string{"pw": "public-works"},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "public-works")
}

type emptySource struct{}

func (emptySource) LoadTitles() ([]CanonicalTitle, []string, error) { return nil, nil, nil }
func (emptySource) LoadDepartments() ([]CanonicalDepartment, map[string]string, error) {
	return nil, nil, nil
}

func TestLoadRejectsEmptySource(t *testing.T) {
	_, err := Load(emptySource{})
	require.Error(t, err)
}
