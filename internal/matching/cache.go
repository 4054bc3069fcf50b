package matching

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// defaultMemoSize bounds the per-matcher memo cache. Matching is pure over
// frozen reference data, so a hit and a recompute are indistinguishable;
// the cache only saves the fuzzy scans on repeated inputs, which batch
// workloads produce constantly.
const defaultMemoSize = 4096

func newMemo(size int) *lru.Cache[string, MatchResult] {
	if size < 0 {
		return nil
	}
	if size == 0 {
		size = defaultMemoSize
	}
	cache, err := lru.New[string, MatchResult](size)
	if err != nil {
		return nil
	}
	return cache
}

// memoKey builds a cache key from the match kind, the (case-preserved)
// input, and any context hint. Case matters: exact-tier confidence depends
// on it.
func memoKey(kind, input, context string) string {
	return kind + "\x00" + input + "\x00" + context
}
