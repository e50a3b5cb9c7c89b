package tools

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// MaxSearchKeywords is the most values one array-contains-any query accepts.
const MaxSearchKeywords = 30

// Keywords splits text into case-folded words, dropping duplicates and keeping
// first-seen order.
func Keywords(text string) []string {
	folded := cases.Fold().String(text)

	words := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	seen := make(map[string]struct{}, len(words))
	keywords := make([]string, 0, len(words))
	for _, w := range words {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		keywords = append(keywords, w)
	}

	return keywords
}

// SearchKeywords is Keywords capped to what a single query can match on.
func SearchKeywords(term string) []string {
	keywords := Keywords(term)
	if len(keywords) > MaxSearchKeywords {
		keywords = keywords[:MaxSearchKeywords]
	}
	return keywords
}

// MatchesAny reports whether text contains at least one of the keywords.
func MatchesAny(text string, keywords []string) bool {
	if len(keywords) == 0 {
		return false
	}

	words := Keywords(text)
	for _, k := range keywords {
		for _, w := range words {
			if w == k {
				return true
			}
		}
	}
	return false
}
