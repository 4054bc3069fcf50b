// Package compare implements the weighted multi-field record comparator
// used for deduplication: per-field similarity scorers aggregated into one
// explainable 0-100 score under configurable weights.
package compare

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/spherical-ai/contact-engine/internal/observability"
	"github.com/spherical-ai/contact-engine/internal/semantics"
)

// Record holds the already-normalized fields of one contact. Canonical
// department/title strings are expected here, not raw input; the matching
// package produces them. Empty means absent. Extra carries any additional
// caller-configured fields.
type Record struct {
	Name       string            `json:"name,omitempty"`
	Email      string            `json:"email,omitempty"`
	Phone      string            `json:"phone,omitempty"`
	Department string            `json:"department,omitempty"`
	Title      string            `json:"title,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// FieldScore is one field's contribution to a comparison.
type FieldScore struct {
	Field         string  `json:"field"`
	Present       bool    `json:"present"`
	Similarity    float64 `json:"similarity"`
	WeightApplied float64 `json:"weight_applied"`
	Note          string  `json:"note,omitempty"`
}

// ComparisonResult is the outcome of comparing two records.
type ComparisonResult struct {
	Score       float64      `json:"score"`
	Components  []FieldScore `json:"components"`
	Explanation []string     `json:"explanation,omitempty"`
}

// Options tunes one comparison. A nil Weights uses the defaults.
type Options struct {
	Weights map[string]float64
	Explain bool
}

// DefaultWeights returns the default field weighting. The map is a fresh
// copy each call.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		"name":       0.40,
		"email":      0.30,
		"phone":      0.20,
		"department": 0.05,
		"title":      0.05,
	}
}

// coreFieldOrder fixes the explanation/component ordering for the built-in
// fields; extra configured fields follow alphabetically.
var coreFieldOrder = []string{"name", "email", "phone", "department", "title"}

// Comparator scores record pairs. It is stateless over immutable reference
// data and safe for concurrent use.
type Comparator struct {
	guard     *semantics.Safeguard
	nicknames *nicknameTable
	logger    *observability.Logger
}

// NewComparator builds a comparator. The nickname table is loaded from the
// embedded snapshot on first use; a load failure is surfaced here, before
// any comparison runs.
func NewComparator(guard *semantics.Safeguard, logger *observability.Logger) (*Comparator, error) {
	nicknames, err := defaultNicknames()
	if err != nil {
		return nil, fmt.Errorf("load nickname table: %w", err)
	}
	if logger == nil {
		logger = observability.Nop()
	}
	return &Comparator{guard: guard, nicknames: nicknames, logger: logger}, nil
}

// Compare scores two records in [0,100]. Fields absent in either record are
// excluded from both the numerator and the weight denominator. Structurally
// invalid weights are rejected before any scoring.
func (c *Comparator) Compare(a, b Record, opts Options) (ComparisonResult, error) {
	weights := opts.Weights
	if weights == nil {
		weights = DefaultWeights()
	}
	if err := validateWeights(weights); err != nil {
		return ComparisonResult{}, err
	}

	var (
		components []FieldScore
		weightSum  float64
		scoreSum   float64
	)

	for _, field := range fieldOrder(weights) {
		weight := weights[field]
		if weight == 0 {
			continue
		}

		valA, valB := fieldValues(a, b, field)
		if strings.TrimSpace(valA) == "" || strings.TrimSpace(valB) == "" {
			components = append(components, FieldScore{Field: field, Present: false})
			continue
		}

		sim, note := c.fieldSimilarity(field, valA, valB)
		components = append(components, FieldScore{
			Field:         field,
			Present:       true,
			Similarity:    sim,
			WeightApplied: weight,
			Note:          note,
		})
		scoreSum += weight * sim
		weightSum += weight
	}

	result := ComparisonResult{Components: components}
	if weightSum > 0 {
		result.Score = 100 * scoreSum / weightSum
	}
	if opts.Explain {
		result.Explanation = explain(result)
	}

	c.logger.Debug().
		Float64("score", result.Score).
		Int("fields_compared", len(components)).
		Msg("records compared")
	return result, nil
}

func (c *Comparator) fieldSimilarity(field, a, b string) (float64, string) {
	switch field {
	case "name":
		return c.nameSimilarity(a, b)
	case "email":
		return emailSimilarity(a, b)
	case "phone":
		return phoneSimilarity(a, b)
	case "department", "title":
		return c.canonicalSimilarity(a, b)
	default:
		return genericSimilarity(a, b)
	}
}

func fieldValues(a, b Record, field string) (string, string) {
	switch field {
	case "name":
		return a.Name, b.Name
	case "email":
		return a.Email, b.Email
	case "phone":
		return a.Phone, b.Phone
	case "department":
		return a.Department, b.Department
	case "title":
		return a.Title, b.Title
	default:
		return a.Extra[field], b.Extra[field]
	}
}

// fieldOrder yields the configured fields in the fixed presentation order:
// the core fields first, then any extras alphabetically.
func fieldOrder(weights map[string]float64) []string {
	core := make(map[string]struct{}, len(coreFieldOrder))
	order := make([]string, 0, len(weights))
	for _, f := range coreFieldOrder {
		core[f] = struct{}{}
		if _, ok := weights[f]; ok {
			order = append(order, f)
		}
	}
	var extras []string
	for f := range weights {
		if _, isCore := core[f]; !isCore {
			extras = append(extras, f)
		}
	}
	sort.Strings(extras)
	return append(order, extras...)
}

func validateWeights(weights map[string]float64) error {
	if len(weights) == 0 {
		return fmt.Errorf("weights mapping is empty")
	}
	for field, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("weight for %q is not a finite number", field)
		}
		if w < 0 {
			return fmt.Errorf("weight for %q is negative", field)
		}
	}
	return nil
}

func explain(r ComparisonResult) []string {
	lines := make([]string, 0, len(r.Components)+1)
	for _, fs := range r.Components {
		if !fs.Present {
			lines = append(lines, fmt.Sprintf("%s: absent, excluded from score", fs.Field))
			continue
		}
		line := fmt.Sprintf("%s: similarity=%.3f weight=%.2f", fs.Field, fs.Similarity, fs.WeightApplied)
		if fs.Note != "" {
			line += " (" + fs.Note + ")"
		}
		lines = append(lines, line)
	}
	lines = append(lines, fmt.Sprintf("total: %.1f", r.Score))
	return lines
}
