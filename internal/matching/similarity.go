// Package matching implements the tiered canonicalization engine: exact
// lookups, fuzzy scoring passes, and semantic gating over the frozen
// reference sets, with calibrated confidences.
package matching

import (
	"sort"
	"strings"

	"github.com/spherical-ai/contact-engine/internal/semantics"
)

// Ratio is a normalized indel similarity in [0,1]. It counts insertions and
// deletions only (no substitutions), which is what keeps token-sorted forms
// of near-miss phrases scoring high enough for the semantic gate to be the
// deciding factor rather than raw edit distance.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1.0
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0.0
	}
	lcs := lcsLength(ra, rb)
	return float64(2*lcs) / float64(len(ra)+len(rb))
}

// TokenSortRatio tokenizes both strings, sorts the tokens, and scores the
// rejoined forms. Word order never affects the result.
func TokenSortRatio(a, b string) float64 {
	return Ratio(sortedTokenString(a), sortedTokenString(b))
}

// TokenSetRatio is the subset-tolerant variant: the shared token set is
// scored against each side's full token set, so trailing qualifiers on one
// side cost little. Always >= TokenSortRatio for the same inputs.
func TokenSetRatio(a, b string) float64 {
	ta := semantics.Tokenize(a)
	tb := semantics.Tokenize(b)

	setA := make(map[string]struct{}, len(ta))
	for _, t := range ta {
		setA[t] = struct{}{}
	}
	setB := make(map[string]struct{}, len(tb))
	for _, t := range tb {
		setB[t] = struct{}{}
	}

	var common, onlyA, onlyB []string
	for t := range setA {
		if _, ok := setB[t]; ok {
			common = append(common, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range setB {
		if _, ok := setA[t]; !ok {
			onlyB = append(onlyB, t)
		}
	}
	sort.Strings(common)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	base := strings.Join(common, " ")
	full1 := strings.TrimSpace(base + " " + strings.Join(onlyA, " "))
	full2 := strings.TrimSpace(base + " " + strings.Join(onlyB, " "))

	best := Ratio(full1, full2)
	if base != "" {
		if r := Ratio(base, full1); r > best {
			best = r
		}
		if r := Ratio(base, full2); r > best {
			best = r
		}
	}
	return best
}

// PartialRatio scores the shorter string against the best-matching
// equal-length window of the longer one.
func PartialRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	if len(ra) == 0 {
		if len(rb) == 0 {
			return 1.0
		}
		return 0.0
	}
	if len(ra) == len(rb) {
		return Ratio(string(ra), string(rb))
	}

	best := 0.0
	for i := 0; i+len(ra) <= len(rb); i++ {
		r := Ratio(string(ra), string(rb[i:i+len(ra)]))
		if r > best {
			best = r
			if best == 1.0 {
				break
			}
		}
	}
	return best
}

func sortedTokenString(s string) string {
	tokens := semantics.Tokenize(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// lcsLength computes the longest-common-subsequence length with a two-row
// dynamic program.
func lcsLength(a, b []rune) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)
	for j := 1; j <= len(b); j++ {
		for i := 1; i <= len(a); i++ {
			if a[i-1] == b[j-1] {
				curr[i] = prev[i-1] + 1
			} else if prev[i] >= curr[i-1] {
				curr[i] = prev[i]
			} else {
				curr[i] = curr[i-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(a)]
}
