package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeywordsDropsStopWordsAndShortTokens(t *testing.T) {
	got := ExtractKeywords("I really like the weather in my hometown")
	assert.Equal(t, []string{"weather", "hometown"}, got)
}

func TestExtractKeywordsKeepsOriginalOrder(t *testing.T) {
	got := ExtractKeywords("Quantum physics explains strange particle behavior somehow")
	assert.Equal(t, []string{"quantum", "physics", "explains", "strange", "particle"}, got)
}

func TestExtractKeywordsCapsAtFive(t *testing.T) {
	got := ExtractKeywords("alpha bravo charlie delta echo foxtrot golf")
	assert.Len(t, got, 5)
	assert.Equal(t, "alpha", got[0])
	assert.Equal(t, "echo", got[4])
}

func TestExtractKeywordsIsDeterministic(t *testing.T) {
	input := "Gardening tomatoes requires patience and sunlight"
	first := ExtractKeywords(input)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ExtractKeywords(input))
	}
}

func TestExtractKeywordsHandlesUnicodeWords(t *testing.T) {
	got := ExtractKeywords("Café culture thrives in Zürich")
	assert.Equal(t, []string{"café", "culture", "thrives", "zürich"}, got)
}

func TestExtractKeywordsEmptyInput(t *testing.T) {
	assert.Empty(t, ExtractKeywords(""))
	assert.Empty(t, ExtractKeywords("a an the is"))
}
