package game

import "github.com/lox/autojack/internal/deck"

const (
	// Blackjack is the best possible total
	Blackjack = 21

	// PlayerStandsOn is the total at which the fixed player strategy stops drawing
	PlayerStandsOn = 17

	// DealerStandsOn is the total at which the dealer stops drawing
	DealerStandsOn = 17
)

// Score returns the best blackjack total for the cards. Aces count 11 until
// the total would exceed 21, then they drop to 1 one at a time.
func Score(cards []deck.Card) int {
	total := 0
	softAces := 0
	for _, c := range cards {
		total += c.Value()
		if c.IsAce() {
			softAces++
		}
	}
	for total > Blackjack && softAces > 0 {
		total -= 10
		softAces--
	}
	return total
}

// IsNaturalBlackjack reports whether the cards are a two-card 21
func IsNaturalBlackjack(cards []deck.Card) bool {
	return len(cards) == 2 && Score(cards) == Blackjack
}

// Hand is the ordered cards held by the player or the dealer
type Hand []deck.Card

// Score returns the hand's best total
func (h Hand) Score() int {
	return Score(h)
}

// IsBlackjack reports whether the hand is a natural
func (h Hand) IsBlackjack() bool {
	return IsNaturalBlackjack(h)
}

// IsBust reports whether the hand is over 21
func (h Hand) IsBust() bool {
	return h.Score() > Blackjack
}

// Clone returns an independent copy of the hand
func (h Hand) Clone() Hand {
	out := make(Hand, len(h))
	copy(out, h)
	return out
}
