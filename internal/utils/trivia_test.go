package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/bluckboster/internal/model"
)

const regexTriviaText = `Here are three trivia questions about The Godfather:

**Question 1**
Who played Vito Corleone?
Answer: Marlon Brando

**Question 2:**
What animal's head ends up in a bed?
**Answer:** A horse

**Question 3**
Which novelist wrote the source book?
Answer: Mario Puzo
`

const markerTriviaText = `**Question 1:**

Who played Vito Corleone?

**Answer:** Marlon Brando

**Question 2:**

What animal's head ends up in a bed?

**Answer:** A horse

**Question 3:**

Which novelist wrote the source book?

**Answer:** Mario Puzo
`

var godfatherTrivia = model.Trivia{
	{Question: "Who played Vito Corleone?", Answer: "Marlon Brando"},
	{Question: "What animal's head ends up in a bed?", Answer: "A horse"},
	{Question: "Which novelist wrote the source book?", Answer: "Mario Puzo"},
}

func TestRegexStrategy(t *testing.T) {
	got, err := ParseTrivia(regexTriviaText, RegexStrategy{})
	require.NoError(t, err)
	assert.Equal(t, godfatherTrivia, got)
}

func TestMarkerStrategy(t *testing.T) {
	got, err := ParseTrivia(markerTriviaText, MarkerStrategy{})
	require.NoError(t, err)
	assert.Equal(t, godfatherTrivia, got)
}

func TestRegexStrategyHandlesMarkerLayout(t *testing.T) {
	got, err := ParseTrivia(markerTriviaText, RegexStrategy{})
	require.NoError(t, err)
	assert.Equal(t, godfatherTrivia, got)
}

func TestTriviaEncodeHasNoMarkdown(t *testing.T) {
	got, err := ParseTrivia(regexTriviaText, nil)
	require.NoError(t, err)

	encoded := got.Encode()
	assert.NotContains(t, encoded, "*")
	assert.Equal(t, 3, len(strings.Split(encoded, model.TriviaItemSep)))
	assert.True(t, strings.HasPrefix(encoded, "Who played Vito Corleone?:Marlon Brando&:&"))
}

func TestTriviaFailureModes(t *testing.T) {
	twoQuestions := "**Question 1**\nQ one?\nAnswer: A\n\n**Question 2**\nQ two?\nAnswer: B\n"
	noAnswer := "**Question 1**\nQ one?\n\n**Question 2**\nQ two?\nAnswer: B\n**Question 3**\nQ3?\nAnswer: C"

	cases := []struct {
		name     string
		text     string
		strategy TriviaStrategy
		want     error
	}{
		{"regex no header", "Sorry, I don't know that movie.", RegexStrategy{}, ErrMalformedHeader},
		{"marker no header", "Sorry, I don't know that movie.", MarkerStrategy{}, ErrMalformedHeader},
		{"regex wrong count", twoQuestions, RegexStrategy{}, ErrWrongCount},
		{"regex missing answer", noAnswer, RegexStrategy{}, ErrMissingAnswer},
		{"marker single newline blocks", regexTriviaText, MarkerStrategy{}, ErrMissingAnswer},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseTrivia(tc.text, tc.strategy)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			assert.True(t, IsTriviaParseError(err))
		})
	}
}

func TestNewTriviaStrategy(t *testing.T) {
	s, err := NewTriviaStrategy("marker")
	require.NoError(t, err)
	assert.IsType(t, MarkerStrategy{}, s)

	_, err = NewTriviaStrategy("llm")
	assert.Error(t, err)
}
