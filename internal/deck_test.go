package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDeckComposition(t *testing.T) {
	deck := NewDeck()
	assert.Len(t, deck, DeckSize)

	ids := make(map[string]bool)
	combos := make(map[Suit]map[int]int)
	for _, card := range deck {
		assert.False(t, ids[card.Id], "card id %s repeated", card.Id)
		ids[card.Id] = true
		assert.GreaterOrEqual(t, card.Value, MinCardValue)
		assert.LessOrEqual(t, card.Value, MaxCardValue)
		if combos[card.Suit] == nil {
			combos[card.Suit] = make(map[int]int)
		}
		combos[card.Suit][card.Value]++
	}

	assert.Len(t, combos, 4)
	for suit, values := range combos {
		assert.Len(t, values, MaxCardValue-MinCardValue+1, "suit %s", suit)
		for value, count := range values {
			assert.Equal(t, 1, count, "suit %s value %d", suit, value)
		}
	}
}

func TestNewShuffledDeckKeepsMultiset(t *testing.T) {
	deck := NewShuffledDeck()
	assert.Len(t, deck, DeckSize)

	counts := make(map[Suit]map[int]int)
	for _, card := range deck {
		if counts[card.Suit] == nil {
			counts[card.Suit] = make(map[int]int)
		}
		counts[card.Suit][card.Value]++
	}
	for _, suit := range Suits {
		for value := MinCardValue; value <= MaxCardValue; value++ {
			assert.Equal(t, 1, counts[suit][value], "suit %s value %d", suit, value)
		}
	}
}

func TestResetRoundKeepsScoresAndHands(t *testing.T) {
	st := NewGameState()
	st.Hands[1] = []Card{{Id: "a", Value: 3, Suit: "hearts"}}
	st.Hands[2] = []Card{{Id: "b", Value: 4, Suit: "spades"}}
	st.Selected[1] = &st.Hands[1][0]
	st.Problem = &Problem{Operand1: 3, Operand2: 4}
	st.CorrectAnswer = 12
	st.AnswerOptions = []int{12, 13, 14, 15}
	st.RoundInProgress = true
	st.ProblemSolved = true
	solver := 1
	st.SolvedBy = &solver
	st.RevealProblem = true
	st.Scores[1] = 3
	st.RoundHistory = append(st.RoundHistory, RoundRecord{CorrectAnswer: 12})

	st.ResetRound()

	assert.Nil(t, st.Selected[1])
	assert.Nil(t, st.Selected[2])
	assert.Nil(t, st.Problem)
	assert.Zero(t, st.CorrectAnswer)
	assert.Nil(t, st.AnswerOptions)
	assert.False(t, st.RoundInProgress)
	assert.False(t, st.ProblemSolved)
	assert.Nil(t, st.SolvedBy)
	assert.False(t, st.RevealProblem)

	assert.Equal(t, 3, st.Scores[1])
	assert.Len(t, st.Hands[1], 1)
	assert.Len(t, st.RoundHistory, 1)
}
