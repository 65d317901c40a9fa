package bot

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable(t *testing.T) *PatternTable {
	t.Helper()
	table, err := DefaultTable()
	require.NoError(t, err)
	return table
}

func testRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func TestMatchGreeting(t *testing.T) {
	table := testTable(t)
	for seed := int64(0); seed < 20; seed++ {
		st := NewState(time.Now())
		response, ok := table.Match("hello", st, testRand(seed), time.Now())
		require.True(t, ok)
		assert.NotEmpty(t, response)
		assert.NotContains(t, response, "{")
	}
}

func TestMatchGreetingVariants(t *testing.T) {
	table := testTable(t)
	for _, input := range []string{"hey there", "good morning everyone", "whats up"} {
		st := NewState(time.Now())
		_, ok := table.Match(input, st, testRand(1), time.Now())
		assert.True(t, ok, "expected %q to match a greeting", input)
	}
}

func TestMatchNameIntroduction(t *testing.T) {
	table := testTable(t)
	st := NewState(time.Now())
	response, ok := table.Match("my name is alice", st, testRand(7), time.Now())
	require.True(t, ok)
	assert.Equal(t, "Alice", st.Name)
	assert.Contains(t, response, "Alice")
	assert.NotContains(t, response, "{name}")
}

func TestMatchMoodMostRecentWins(t *testing.T) {
	table := testTable(t)
	st := NewState(time.Now())

	_, ok := table.Match("i feel sad today", st, testRand(3), time.Now())
	require.True(t, ok)
	assert.Equal(t, "sad", st.Mood)

	// A neutral turn must not clear the mood.
	_, ok = table.Match("tell me about oceans", st, testRand(3), time.Now())
	require.True(t, ok)
	assert.Equal(t, "sad", st.Mood)

	_, ok = table.Match("i feel great now", st, testRand(3), time.Now())
	require.True(t, ok)
	assert.Equal(t, "great", st.Mood)
}

func TestMatchHobbyRecordsInterest(t *testing.T) {
	table := testTable(t)
	st := NewState(time.Now())
	response, ok := table.Match("i enjoy painting on weekends", st, testRand(2), time.Now())
	require.True(t, ok)
	assert.True(t, st.Interests.Contains("painting"))
	assert.NotContains(t, response, "{interest}")
}

func TestMatchWithoutCaptureLeavesStateUntouched(t *testing.T) {
	table := testTable(t)
	st := NewState(time.Now())
	_, ok := table.Match("what is the meaning of life", st, testRand(5), time.Now())
	require.True(t, ok)
	assert.Empty(t, st.Name)
	assert.Equal(t, "neutral", st.Mood)
	assert.Zero(t, st.Interests.Len())
}

func TestMatchTimeFillsClock(t *testing.T) {
	table := testTable(t)
	now := time.Date(2026, 3, 1, 15, 27, 0, 0, time.UTC)
	for seed := int64(0); seed < 20; seed++ {
		st := NewState(now)
		response, ok := table.Match("what time is it", st, testRand(seed), now)
		require.True(t, ok)
		assert.NotContains(t, response, "{time}")
		if strings.Contains(response, "PM") {
			assert.Contains(t, response, "03:27 PM")
		}
	}
}

func TestMatchNoMatchReturnsFalse(t *testing.T) {
	table := testTable(t)
	st := NewState(time.Now())
	response, ok := table.Match("zebra stripes fascinate scientists", st, testRand(1), time.Now())
	assert.False(t, ok)
	assert.Empty(t, response)
}

func TestNamePrefixPersonalization(t *testing.T) {
	table := testTable(t)
	prefixed := 0
	total := 200
	for seed := int64(0); seed < int64(total); seed++ {
		st := NewState(time.Now())
		st.Name = "Alice"
		response, ok := table.Match("thanks", st, testRand(seed), time.Now())
		require.True(t, ok)
		if strings.HasPrefix(response, "Alice, ") {
			prefixed++
			rest := strings.TrimPrefix(response, "Alice, ")
			assert.Equal(t, strings.ToLower(rest), rest)
		}
	}
	// The coin flip fires with probability 0.3; across 200 seeds both
	// outcomes must show up.
	assert.Greater(t, prefixed, 0)
	assert.Less(t, prefixed, total)
}

func TestNamePrefixAppliesToNameIntroductions(t *testing.T) {
	table := testTable(t)
	prefixed := 0
	total := 200
	for seed := int64(0); seed < int64(total); seed++ {
		st := NewState(time.Now())
		response, ok := table.Match("call me bob", st, testRand(seed), time.Now())
		require.True(t, ok)
		require.Equal(t, "Bob", st.Name)
		assert.NotContains(t, response, "{name}")
		if strings.HasPrefix(response, "Bob, ") {
			prefixed++
			rest := strings.TrimPrefix(response, "Bob, ")
			assert.Equal(t, strings.ToLower(rest), rest)
			assert.Contains(t, rest, "bob")
		}
	}
	// Once the name is filled in, introduction responses are as
	// prefix-eligible as any other category.
	assert.Greater(t, prefixed, 0)
	assert.Less(t, prefixed, total)
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Alice", titleCase("alice"))
	assert.Equal(t, "Bob", titleCase("BOB"))
	assert.Equal(t, "", titleCase(""))
}
