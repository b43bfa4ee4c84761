package game

import (
	"slices"

	"github.com/lox/autojack/internal/deck"
)

// stackedShoe returns a shoe that deals the given cards in the order listed
func stackedShoe(cards string) *deck.Shoe {
	parsed := deck.MustParseCards(cards)
	slices.Reverse(parsed)
	return deck.NewShoeFromCards(parsed)
}

func hand(cards string) Hand {
	return Hand(deck.MustParseCards(cards))
}
