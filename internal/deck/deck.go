package deck

import "errors"

// DefaultDecks is the number of 52-card decks in a shoe
const DefaultDecks = 6

// ErrEmptyShoe is returned when drawing from a shoe with no cards left
var ErrEmptyShoe = errors.New("deck: shoe is empty")

// Rand is the randomness a shoe needs to shuffle. *math/rand/v2.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

// Shoe is an ordered stack of cards drawn from the end
type Shoe struct {
	cards []Card
}

// NewShoe builds an unshuffled shoe of the given number of standard decks.
// It panics if decks is not positive.
func NewShoe(decks int) *Shoe {
	if decks <= 0 {
		panic("deck: shoe needs at least one deck")
	}

	shoe := &Shoe{cards: make([]Card, 0, decks*52)}
	for i := 0; i < decks; i++ {
		for _, suit := range Suits {
			for _, rank := range Ranks {
				shoe.cards = append(shoe.cards, NewCard(suit, rank))
			}
		}
	}
	return shoe
}

// NewShoeFromCards creates a shoe holding the given cards. The last card is
// drawn first. The slice is copied.
func NewShoeFromCards(cards []Card) *Shoe {
	return &Shoe{cards: append([]Card(nil), cards...)}
}

// Shuffle randomizes the order of cards with Fisher-Yates
func (s *Shoe) Shuffle(rng Rand) {
	for i := len(s.cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	}
}

// Draw removes and returns the last card in the shoe
func (s *Shoe) Draw() (Card, error) {
	if len(s.cards) == 0 {
		return Card{}, ErrEmptyShoe
	}

	last := len(s.cards) - 1
	card := s.cards[last]
	s.cards = s.cards[:last]
	return card, nil
}

// Len returns the number of cards left in the shoe
func (s *Shoe) Len() int {
	return len(s.cards)
}

// Cards returns a copy of the remaining cards, bottom first
func (s *Shoe) Cards() []Card {
	return append([]Card(nil), s.cards...)
}

// Clone returns an independent copy of the shoe
func (s *Shoe) Clone() *Shoe {
	if s == nil {
		return &Shoe{}
	}
	return &Shoe{cards: append([]Card(nil), s.cards...)}
}
