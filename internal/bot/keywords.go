package bot

import (
	"regexp"
	"strings"
)

const maxKeywords = 5

// Word runs are Unicode-aware so non-ASCII content words tokenize whole.
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// stopWords are filler tokens that never count as content words.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	"i": {}, "you": {}, "he": {}, "she": {}, "it": {}, "we": {}, "they": {},
	"this": {}, "that": {}, "these": {}, "those": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "being": {},
	"have": {}, "has": {}, "had": {},
	"do": {}, "does": {}, "did": {}, "will": {}, "would": {}, "could": {},
	"should": {}, "may": {}, "might": {}, "can": {}, "must": {},
	"not": {}, "no": {}, "yes": {}, "ok": {}, "okay": {}, "um": {}, "uh": {},
	"well": {}, "so": {}, "like": {}, "just": {}, "really": {},
}

// ExtractKeywords returns up to five content words from text in their
// original order: lowercased word tokens with stop-words and tokens shorter
// than three runes dropped. Deterministic, no randomness.
func ExtractKeywords(text string) []string {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	keywords := make([]string, 0, maxKeywords)
	for _, word := range words {
		if _, skip := stopWords[word]; skip {
			continue
		}
		if len([]rune(word)) <= 2 {
			continue
		}
		keywords = append(keywords, word)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}
