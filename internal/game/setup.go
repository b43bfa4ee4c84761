package game

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/lox/autojack/internal/deck"
)

const (
	// MinBet and MaxBet bound the random bet policy; bets are multiples of BetStep
	MinBet  = 5
	MaxBet  = 25
	BetStep = 5
)

// BetPolicy picks the base bet for the next round
type BetPolicy interface {
	NextBet() int
}

// RandomBetPolicy bets a uniformly chosen multiple of 5 between 5 and 25
type RandomBetPolicy struct {
	rng deck.Rand
}

// NewRandomBetPolicy creates a random bet policy drawing from rng
func NewRandomBetPolicy(rng deck.Rand) *RandomBetPolicy {
	return &RandomBetPolicy{rng: rng}
}

// NextBet implements BetPolicy
func (p *RandomBetPolicy) NextBet() int {
	steps := (MaxBet-MinBet)/BetStep + 1
	return (p.rng.IntN(steps) + 1) * BetStep
}

// FixedBet always bets the same amount
type FixedBet int

// NextBet implements BetPolicy
func (f FixedBet) NextBet() int {
	return int(f)
}

// Deal takes the bet, deals the opening cards and classifies the opening.
// It works on a copy of the shoe; on error neither the shoe nor the wallet
// has been touched, so a failed deal never leaves a partial bet behind.
func Deal(shoe *deck.Shoe, wallet decimal.Decimal, policy BetPolicy) (Round, error) {
	baseBet := policy.NextBet()
	bet := decimal.NewFromInt(int64(baseBet))
	if wallet.LessThan(bet) {
		return Round{}, &InsufficientFundsError{Wallet: wallet, Bet: baseBet}
	}

	r := Round{
		Shoe:   shoe.Clone(),
		Wallet: wallet.Sub(bet),
		Wager:  Wager{BaseBet: baseBet, TotalBet: baseBet},
	}

	// Draw order: player, player, dealer, dealer
	opening := make([]deck.Card, 4)
	for i := range opening {
		card, err := r.Shoe.Draw()
		if err != nil {
			return Round{}, fmt.Errorf("dealing opening cards: %w", err)
		}
		opening[i] = card
	}
	player := Hand{opening[0], opening[1]}
	r.Dealer = Hand{opening[2], opening[3]}

	canCoverSecondBet := r.Wallet.GreaterThanOrEqual(bet)
	initialScore := player.Score()

	switch {
	case player[0].Rank == player[1].Rank && canCoverSecondBet:
		r.Wallet = r.Wallet.Sub(bet)
		r.Wager.TotalBet = baseBet * 2
		r.Hands = []Hand{{player[0]}, {player[1]}}
		r.Opening = OpeningSplit
		r.State = StateDealingSplit

	case (initialScore == 10 || initialScore == 11) && canCoverSecondBet:
		card, err := r.Shoe.Draw()
		if err != nil {
			return Round{}, fmt.Errorf("dealing double down card: %w", err)
		}
		r.Wallet = r.Wallet.Sub(bet)
		r.Wager.TotalBet = baseBet * 2
		r.Hands = []Hand{append(player, card)}
		r.Opening = OpeningDouble
		r.State = StateDealer

	default:
		r.Hands = []Hand{player}
		r.Opening = OpeningNormal
		r.State = StatePlayer
	}

	return r, nil
}

// OpeningStatus is the status line announced after the deal
func (r Round) OpeningStatus() string {
	switch r.Opening {
	case OpeningSplit:
		return fmt.Sprintf("Splitting %ss!", r.Hands[0][0].Rank)
	case OpeningDouble:
		return fmt.Sprintf("Doubling down on %d!", Score(r.Hands[0][:2]))
	default:
		return fmt.Sprintf("Player's Turn (Bet: $%d)", r.Wager.BaseBet)
	}
}
