package skills

import "strings"

// DictionaryExtractor finds dictionary terms in text by case-insensitive substring search.
// It favours recall: short terms match inside longer words ("go" in "ego").
type DictionaryExtractor struct {
	dict *Dictionary
}

// NewDictionaryExtractor returns an extractor over dict.
func NewDictionaryExtractor(dict *Dictionary) *DictionaryExtractor {
	return &DictionaryExtractor{dict: dict}
}

// Extract returns the canonical terms found in text, each once. Terms matched directly come
// first in dictionary order, followed by terms found only through a synonym, in variant order.
func (e *DictionaryExtractor) Extract(text string) []string {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return []string{}
	}

	found := make([]string, 0)
	seen := make(map[string]bool)
	add := func(term string) {
		if !seen[term] {
			seen[term] = true
			found = append(found, term)
		}
	}

	for _, term := range e.dict.terms {
		if strings.Contains(lower, strings.ToLower(term)) {
			add(term)
		}
	}
	for _, syn := range e.dict.synonyms {
		if strings.Contains(lower, syn.Variant) {
			add(syn.Canonical)
		}
	}
	return found
}
