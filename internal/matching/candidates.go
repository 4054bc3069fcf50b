package matching

import "sort"

// Candidate is one scored reference entry from a TopMatches scan.
type Candidate struct {
	CanonicalID string  `json:"canonical_id,omitempty"`
	Display     string  `json:"display"`
	Score       float64 `json:"score"`
}

// candidateCollector accumulates candidates and keeps the best ones in a
// deterministic order.
type candidateCollector struct {
	limit int
	items []Candidate
}

func newCandidateCollector(limit int) *candidateCollector {
	return &candidateCollector{limit: limit}
}

func (c *candidateCollector) add(cand Candidate) {
	c.items = append(c.items, cand)
}

func (c *candidateCollector) sorted() []Candidate {
	sort.SliceStable(c.items, func(i, j int) bool {
		a, b := c.items[i], c.items[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if len(a.Display) != len(b.Display) {
			return len(a.Display) < len(b.Display)
		}
		return a.Display < b.Display
	})
	if len(c.items) > c.limit {
		c.items = c.items[:c.limit]
	}
	return c.items
}
