package internal

import (
	"math/rand"

	"github.com/google/uuid"
)

// NewDeck builds the full 44-card deck: 4 suits x values 2-12, each
// combination exactly once. Card ids are unique per game instance.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for _, suit := range Suits {
		for value := MinCardValue; value <= MaxCardValue; value++ {
			deck = append(deck, Card{
				Id:    uuid.NewString(),
				Value: value,
				Suit:  suit,
			})
		}
	}
	return deck
}

// NewShuffledDeck returns a freshly built deck in uniformly random order
// (Fisher-Yates).
func NewShuffledDeck() []Card {
	deck := NewDeck()
	rand.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}
