package compare

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed data/nicknames.json
var nicknameData []byte

// nicknameTable answers whether two given names are conventional variants
// of the same name ("bob" / "robert", "bill" / "billy"). Built once from
// the embedded table and immutable afterwards.
type nicknameTable struct {
	roots map[string]map[string]struct{} // name -> formal names it belongs to
}

var (
	nickOnce  sync.Once
	nickTable *nicknameTable
	nickErr   error
)

func defaultNicknames() (*nicknameTable, error) {
	nickOnce.Do(func() {
		nickTable, nickErr = parseNicknames(nicknameData)
	})
	return nickTable, nickErr
}

func parseNicknames(raw []byte) (*nicknameTable, error) {
	var groups map[string][]string
	if err := json.Unmarshal(raw, &groups); err != nil {
		return nil, fmt.Errorf("parse nickname table: %w", err)
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("nickname table is empty")
	}

	t := &nicknameTable{roots: make(map[string]map[string]struct{})}
	link := func(name, root string) {
		if t.roots[name] == nil {
			t.roots[name] = make(map[string]struct{})
		}
		t.roots[name][root] = struct{}{}
	}
	for formal, nicks := range groups {
		formal = strings.ToLower(strings.TrimSpace(formal))
		if formal == "" {
			continue
		}
		link(formal, formal)
		for _, nick := range nicks {
			nick = strings.ToLower(strings.TrimSpace(nick))
			if nick != "" {
				link(nick, formal)
			}
		}
	}
	return t, nil
}

// Equivalent reports whether two lowercased given names share a formal root.
func (t *nicknameTable) Equivalent(a, b string) bool {
	if a == b {
		return a != ""
	}
	rootsA, ok := t.roots[a]
	if !ok {
		return false
	}
	rootsB, ok := t.roots[b]
	if !ok {
		return false
	}
	for root := range rootsA {
		if _, shared := rootsB[root]; shared {
			return true
		}
	}
	return false
}
