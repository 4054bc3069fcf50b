package matching

import (
	"fmt"
	"strings"
)

// ValidateOverrides rejects structurally broken override mappings before any
// matching happens. Empty keys and values are configuration errors, never
// silently coerced.
func ValidateOverrides(overrides map[string]string) error {
	for key, val := range overrides {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("override has empty key")
		}
		if strings.TrimSpace(val) == "" {
			return fmt.Errorf("override for %q has empty value", key)
		}
	}
	return nil
}

// ToCanonical maps a title match to its published form. Overrides win over
// any inferred match; otherwise the curated display for the canonical id is
// used; a discovery-only hit falls back to its matched corpus entry. Output
// is always lowercase, machine-comparable. An unmatched, un-overridden
// input yields "".
//
// The result depends only on the input, the canonical id, and the override
// mapping, never on which tier found the match: discovery and naming stay
// decoupled.
func (m *TitleMatcher) ToCanonical(input string, match MatchResult, overrides map[string]string) string {
	if out, ok := lookupOverride(input, overrides); ok {
		return out
	}
	if entry, ok := m.titles.ByID(match.CanonicalID); ok {
		return strings.ToLower(entry.Display)
	}
	if match.Found() && match.Matched != "" {
		return strings.ToLower(match.Matched)
	}
	return ""
}

// ToCanonical maps a department match to its published form, with the same
// override-first precedence as titles.
func (m *DepartmentMatcher) ToCanonical(input string, match MatchResult, overrides map[string]string) string {
	if out, ok := lookupOverride(input, overrides); ok {
		return out
	}
	if entry, ok := m.departments.ByID(match.CanonicalID); ok {
		return strings.ToLower(entry.Display)
	}
	if match.Found() && match.Matched != "" {
		return strings.ToLower(match.Matched)
	}
	return ""
}

// lookupOverride tries the trimmed input as-is, then case-folded.
func lookupOverride(input string, overrides map[string]string) (string, bool) {
	if len(overrides) == 0 {
		return "", false
	}
	trimmed := strings.TrimSpace(input)
	if out, ok := overrides[trimmed]; ok {
		return strings.ToLower(out), true
	}
	if out, ok := overrides[strings.ToLower(trimmed)]; ok {
		return strings.ToLower(out), true
	}
	return "", false
}
