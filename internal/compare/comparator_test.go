package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical-ai/contact-engine/internal/semantics"
)

func newComparator(t *testing.T) *Comparator {
	t.Helper()
	vocab, err := semantics.Default()
	require.NoError(t, err)
	c, err := NewComparator(semantics.NewSafeguard(vocab), nil)
	require.NoError(t, err)
	return c
}

func TestCompareIdenticalUpToCase(t *testing.T) {
	c := newComparator(t)

	a := Record{Name: "Jane Doe", Email: "jane.doe@city.gov"}
	b := Record{Name: "jane doe", Email: "JANE.DOE@City.gov"}

	r, err := c.Compare(a, b, Options{})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, r.Score, 95.0)
}

func TestCompareSingleWeightedField(t *testing.T) {
	c := newComparator(t)

	a := Record{Name: "Robert Chen"}
	b := Record{Name: "Bob Chen"}

	r, err := c.Compare(a, b, Options{Weights: map[string]float64{"name": 1.0}})
	require.NoError(t, err)

	// Only the name contributes; the score is its similarity scaled to
	// 0-100, and nickname equivalence makes the first names equal.
	require.Len(t, componentsPresent(r), 1)
	assert.InDelta(t, r.Components[0].Similarity*100, r.Score, 1e-9)
	assert.Equal(t, 100.0, r.Score)
}

func TestCompareAbsentFieldsExcluded(t *testing.T) {
	c := newComparator(t)

	a := Record{Name: "Jane Doe", Phone: "+15551234567"}
	b := Record{Name: "Jane Doe"} // phone absent on one side

	r, err := c.Compare(a, b, Options{})
	require.NoError(t, err)
	assert.Equal(t, 100.0, r.Score)

	for _, fs := range r.Components {
		if fs.Field == "phone" {
			assert.False(t, fs.Present)
			assert.Zero(t, fs.WeightApplied)
		}
	}
}

func TestCompareWeightRescaleInvariance(t *testing.T) {
	c := newComparator(t)

	a := Record{Name: "Jane Doe", Email: "jane@city.gov", Phone: "+15551234567"}
	b := Record{Name: "Jane Дое", Email: "jane@town.gov", Phone: "+15559999999"}

	base, err := c.Compare(a, b, Options{Weights: map[string]float64{"name": 0.4, "email": 0.3, "phone": 0.2}})
	require.NoError(t, err)
	scaled, err := c.Compare(a, b, Options{Weights: map[string]float64{"name": 4, "email": 3, "phone": 2}})
	require.NoError(t, err)

	assert.InDelta(t, base.Score, scaled.Score, 1e-9)
}

func TestCompareRejectsInvalidWeights(t *testing.T) {
	c := newComparator(t)
	a, b := Record{Name: "x"}, Record{Name: "y"}

	_, err := c.Compare(a, b, Options{Weights: map[string]float64{"name": -0.1}})
	assert.Error(t, err)

	inf := 1.0
	for i := 0; i < 2000; i++ {
		inf *= 10
	}
	_, err = c.Compare(a, b, Options{Weights: map[string]float64{"name": inf}})
	assert.Error(t, err)

	_, err = c.Compare(a, b, Options{Weights: map[string]float64{}})
	assert.Error(t, err)
}

func TestCompareExplainOrdering(t *testing.T) {
	c := newComparator(t)

	a := Record{Name: "Jane Doe", Email: "jane@city.gov", Title: "city clerk", Extra: map[string]string{"office": "hall"}}
	b := Record{Name: "Jane Doe", Email: "jane@city.gov", Title: "city clerk", Extra: map[string]string{"office": "hall"}}

	weights := DefaultWeights()
	weights["office"] = 0.1

	r, err := c.Compare(a, b, Options{Weights: weights, Explain: true})
	require.NoError(t, err)
	require.NotEmpty(t, r.Explanation)

	var fields []string
	for _, fs := range r.Components {
		fields = append(fields, fs.Field)
	}
	assert.Equal(t, []string{"name", "email", "phone", "department", "title", "office"}, fields)
	assert.Contains(t, r.Explanation[len(r.Explanation)-1], "total:")
}

func TestCompareDeterministic(t *testing.T) {
	c := newComparator(t)
	a := Record{Name: "Robert Chen", Email: "rchen@city.gov", Title: "web developer"}
	b := Record{Name: "Bob Chen", Email: "robert.chen@city.gov", Title: "software developer"}

	first, err := c.Compare(a, b, Options{Explain: true})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := c.Compare(a, b, Options{Explain: true})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func componentsPresent(r ComparisonResult) []FieldScore {
	var out []FieldScore
	for _, fs := range r.Components {
		if fs.Present {
			out = append(out, fs)
		}
	}
	return out
}
