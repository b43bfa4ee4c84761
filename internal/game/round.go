package game

import (
	"github.com/shopspring/decimal"

	"github.com/lox/autojack/internal/deck"
)

// State is the phase a round is in. Exactly one is active at a time.
type State string

const (
	StateInitial      State = "initial"
	StateDealingSplit State = "dealing_split"
	StatePlayer       State = "player"
	StateDealer       State = "dealer"
	StateEnd          State = "end"
)

// Opening is how the initial deal was classified
type Opening string

const (
	OpeningNormal Opening = "normal"
	OpeningSplit  Opening = "split"
	OpeningDouble Opening = "double"
)

// Wager is the money committed to a round
type Wager struct {
	BaseBet  int
	TotalBet int
}

// Round is everything one round of play owns. Rounds are treated as values:
// Advance clones before mutating so earlier snapshots are never aliased.
type Round struct {
	State      State
	Opening    Opening
	Hands      []Hand
	Dealer     Hand
	Shoe       *deck.Shoe
	ActiveHand int
	Wager      Wager

	// Wallet is the balance left after the bets for this round were taken
	Wallet decimal.Decimal
}

// NewRound returns the empty round shown before the first deal
func NewRound() Round {
	return Round{
		State:  StateInitial,
		Hands:  []Hand{{}},
		Dealer: Hand{},
		Shoe:   deck.NewShoeFromCards(nil),
	}
}

// Clone returns a deep copy of the round
func (r Round) Clone() Round {
	out := r
	out.Hands = make([]Hand, len(r.Hands))
	for i, h := range r.Hands {
		out.Hands[i] = h.Clone()
	}
	out.Dealer = r.Dealer.Clone()
	out.Shoe = r.Shoe.Clone()
	return out
}

// PlayerScores returns the score of every player hand
func (r Round) PlayerScores() []int {
	scores := make([]int, len(r.Hands))
	for i, h := range r.Hands {
		scores[i] = h.Score()
	}
	return scores
}

// DealerHidden reports whether the dealer's first card is face down
func (r Round) DealerHidden() bool {
	return r.State != StateDealer && r.State != StateEnd
}

// DealerVisibleScore is the dealer total a spectator can see: every card
// except the hole card while it is face down.
func (r Round) DealerVisibleScore() int {
	if r.DealerHidden() && len(r.Dealer) > 0 {
		return Score(r.Dealer[1:])
	}
	return r.Dealer.Score()
}

// IsSplit reports whether the round is playing two split hands
func (r Round) IsSplit() bool {
	return len(r.Hands) > 1
}
