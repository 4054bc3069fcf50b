// Package semantics provides the domain-token vocabulary and the semantic
// safeguard that keeps fuzzy matching from accepting lexically-similar but
// topically-unrelated candidates (e.g. "web developer" vs "water developer").
package semantics

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"unicode"
)

//go:embed data/semantic_tokens.json
var dataFS embed.FS

// Vocabulary maps normalized tokens to the semantic domains they signal.
// Tokens absent from the vocabulary are domain-neutral and contribute
// nothing; the safeguard fails open on them. A Vocabulary is immutable
// after construction and safe for concurrent readers.
type Vocabulary struct {
	tokens map[string][]string
}

var (
	defaultVocab    *Vocabulary
	defaultVocabErr error
	defaultOnce     sync.Once
)

// Default returns the process-wide vocabulary loaded from embedded data.
// The load happens once; all subsequent calls return the same frozen table.
func Default() (*Vocabulary, error) {
	defaultOnce.Do(func() {
		defaultVocab, defaultVocabErr = loadEmbedded()
	})
	return defaultVocab, defaultVocabErr
}

func loadEmbedded() (*Vocabulary, error) {
	raw, err := dataFS.ReadFile("data/semantic_tokens.json")
	if err != nil {
		return nil, fmt.Errorf("read semantic tokens: %w", err)
	}
	return Parse(raw)
}

// Parse builds a Vocabulary from JSON of the form {"token": ["DOMAIN", ...]}.
func Parse(raw []byte) (*Vocabulary, error) {
	var tokens map[string][]string
	if err := json.Unmarshal(raw, &tokens); err != nil {
		return nil, fmt.Errorf("parse semantic tokens: %w", err)
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("semantic token vocabulary is empty")
	}
	return NewVocabulary(tokens), nil
}

// NewVocabulary builds a Vocabulary from an explicit token map. Keys are
// normalized to lowercase; empty domain lists are dropped.
func NewVocabulary(tokens map[string][]string) *Vocabulary {
	normalized := make(map[string][]string, len(tokens))
	for token, domains := range tokens {
		if len(domains) == 0 {
			continue
		}
		normalized[strings.ToLower(strings.TrimSpace(token))] = domains
	}
	return &Vocabulary{tokens: normalized}
}

// Domains returns the domain tags for a single token, or nil when the token
// is domain-neutral.
func (v *Vocabulary) Domains(token string) []string {
	return v.tokens[strings.ToLower(token)]
}

// Len returns the number of tokens in the vocabulary.
func (v *Vocabulary) Len() int {
	return len(v.tokens)
}

// ExtractDomains tokenizes text and collects the domain tags its tokens
// contribute. Neutral tokens evaporate. The returned set is nil when the
// text carries no domain signal at all.
func (v *Vocabulary) ExtractDomains(text string) map[string]struct{} {
	var domains map[string]struct{}
	for _, token := range Tokenize(text) {
		for _, d := range v.tokens[token] {
			if domains == nil {
				domains = make(map[string]struct{}, 2)
			}
			domains[d] = struct{}{}
		}
	}
	return domains
}

// Tokenize lowercases text, strips non-alphanumeric runes, and splits on
// whitespace. Matches the tokenization the vocabulary was built against.
func Tokenize(text string) []string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Fields(b.String())
}
