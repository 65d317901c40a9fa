package bot

import (
	"math/rand"
	"strings"
	"time"
	"unicode"
)

const namePrefixProbability = 0.3

// Match tries every category's patterns in table order against the
// lowercased input. The first pattern that matches wins; within the winning
// category one response template is picked uniformly at random, the
// category's state update runs, and placeholders are filled. Returns false
// when nothing matched so the caller can fall through to the contextual
// responder.
func (tbl *PatternTable) Match(lowered string, st *State, rng *rand.Rand, now time.Time) (string, bool) {
	for _, category := range tbl.categories {
		for _, pattern := range category.Patterns {
			groups := pattern.FindStringSubmatch(lowered)
			if groups == nil {
				continue
			}
			template := category.Responses[rng.Intn(len(category.Responses))]
			response := template.Text

			captured := ""
			if len(groups) > 1 {
				captured = groups[1]
			}

			// A pattern that matched without capturing leaves state
			// untouched and skips interpolation for that category.
			switch category.Name {
			case categoryNameInquiry:
				if captured != "" {
					name := titleCase(captured)
					st.Name = name
					response = fillPlaceholder(response, placeholderName, name)
				}
			case categoryFeelingsPos, categoryFeelingsNeg:
				if captured != "" {
					st.Mood = captured
					response = fillPlaceholder(response, placeholderEmotion, captured)
				}
			case categoryHobbies:
				if captured != "" {
					st.Interests.Add(captured)
					response = fillPlaceholder(response, placeholderInterest, captured)
				}
			case categoryTime:
				response = fillPlaceholder(response, placeholderTime, formatClock(now))
			}

			// Prefix eligibility is judged on the final text: an
			// uninterpolated {name} blocks it, an already-filled name
			// does not, so even introduction responses can carry it.
			if st.Name != "" && !strings.Contains(response, "{"+placeholderName+"}") && rng.Float64() < namePrefixProbability {
				response = st.Name + ", " + strings.ToLower(response)
			}
			return response, true
		}
	}
	return "", false
}

func fillPlaceholder(text, placeholder, value string) string {
	return strings.ReplaceAll(text, "{"+placeholder+"}", value)
}

// titleCase upper-cases the first rune and lower-cases the rest. Captured
// name tokens are single \w+ words, so this is all the casing they need.
func titleCase(word string) string {
	runes := []rune(strings.ToLower(word))
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// formatClock renders a 12-hour wall clock reading, e.g. "03:27 PM".
func formatClock(now time.Time) string {
	return now.Format("03:04 PM")
}
