package bot

import (
	"fmt"
	"math/rand"
	"strings"
)

const (
	deepConversationThreshold   = 6
	mediumConversationThreshold = 3

	fallbackTopic = "this topic"
)

// genericResponses always has entries, so the contextual responder can
// never come up empty.
var genericResponses = []string{
	"That's really interesting! Can you tell me more about that?",
	"I see what you mean. How does that make you feel?",
	"Thanks for sharing that with me. What else is on your mind?",
	"That sounds important to you. What led you to think about this?",
	"I'm listening. What would you like to explore next?",
	"That's a fascinating perspective! What experiences shaped that view?",
	"I appreciate you opening up about that. How long have you been thinking about this?",
	"That's quite thoughtful of you to consider. What other aspects interest you?",
	"You've got me curious now! What drew you to this topic?",
	"I find that intriguing. What's your personal experience with this?",
}

// contextualResponse is the fallback when no pattern matched. Extracted
// keywords are merged into interests first, then the response family is
// chosen by the post-increment message count: >6 deep, >3 medium, else a
// generic acknowledgement.
func contextualResponse(st *State, message string, rng *rand.Rand) string {
	keywords := ExtractKeywords(message)
	for _, keyword := range keywords {
		st.Interests.Add(keyword)
	}

	switch {
	case st.MessageCount > deepConversationThreshold:
		return deepResponse(keywords, rng)
	case st.MessageCount > mediumConversationThreshold:
		return mediumResponse(keywords, rng)
	default:
		return genericResponses[rng.Intn(len(genericResponses))]
	}
}

func deepResponse(keywords []string, rng *rand.Rand) string {
	pair := joinFirst(keywords, 2)
	lead := fallbackTopic
	if len(keywords) > 0 {
		lead = keywords[0]
	}
	responses := []string{
		fmt.Sprintf("We've been having such an engaging conversation! I'm particularly interested in what you mentioned about %s. What's your deeper perspective on this?", pair),
		fmt.Sprintf("You've shared some really thoughtful ideas about %s. What's been the most surprising thing you've learned about this topic?", pair),
		"I'm really enjoying our discussion! What aspect of this topic do you find most compelling?",
		fmt.Sprintf("Your insights about %s are fascinating. How did you first become interested in this?", lead),
		"We've covered so much ground in our conversation! What would you say has been the most meaningful part for you?",
	}
	return responses[rng.Intn(len(responses))]
}

func mediumResponse(keywords []string, rng *rand.Rand) string {
	if len(keywords) == 0 {
		responses := []string{
			"I'm really enjoying our conversation! What else would you like to explore?",
			"You have some interesting perspectives. What other topics are you passionate about?",
			"Thanks for sharing your thoughts with me. What else is on your mind today?",
		}
		return responses[rng.Intn(len(responses))]
	}
	responses := []string{
		fmt.Sprintf("That's interesting what you mentioned about %s. Tell me more about your experience with that.", keywords[0]),
		fmt.Sprintf("I'm curious about %s - what draws you to these topics?", joinFirst(keywords, 2)),
		fmt.Sprintf("You seem knowledgeable about %s. How long have you been interested in this?", keywords[0]),
		"I can tell this is something you care about. What got you started thinking about this?",
	}
	return responses[rng.Intn(len(responses))]
}

// joinFirst joins up to n keywords; with none extracted it falls back to
// "this topic" so no template ever references an empty subject.
func joinFirst(keywords []string, n int) string {
	if len(keywords) == 0 {
		return fallbackTopic
	}
	if len(keywords) > n {
		keywords = keywords[:n]
	}
	return strings.Join(keywords, ", ")
}
