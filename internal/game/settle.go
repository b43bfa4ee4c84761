package game

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Outcome is the result of one player hand against the dealer
type Outcome int

const (
	OutcomeBlackjack Outcome = iota
	OutcomeBust
	OutcomeWin
	OutcomePush
	OutcomeLose
)

// String returns the label shown in the status line
func (o Outcome) String() string {
	switch o {
	case OutcomeBlackjack:
		return "Blackjack!"
	case OutcomeBust:
		return "Bust"
	case OutcomeWin:
		return "Wins"
	case OutcomePush:
		return "Push"
	case OutcomeLose:
		return "Loses"
	default:
		return "Unknown"
	}
}

// IsWin reports whether the outcome counts as a win
func (o Outcome) IsWin() bool {
	return o == OutcomeBlackjack || o == OutcomeWin
}

// IsLoss reports whether the outcome counts as a loss
func (o Outcome) IsLoss() bool {
	return o == OutcomeBust || o == OutcomeLose
}

// Winner classifies a whole round for the history list
type Winner string

const (
	WinnerPlayer Winner = "Player"
	WinnerDealer Winner = "Dealer"
	WinnerPush   Winner = "Push"
)

var (
	blackjackMultiplier = decimal.RequireFromString("2.5")
	winMultiplier       = decimal.NewFromInt(2)
)

// HandResult is the settlement of one player hand
type HandResult struct {
	Score   int
	Outcome Outcome
	Payout  decimal.Decimal
}

// Settlement is the resolved money and counts for a finished round
type Settlement struct {
	Hands         []HandResult
	DealerScore   int
	TotalBet      int
	TotalWinnings decimal.Decimal
	Net           decimal.Decimal
	Wins          int
	Losses        int
}

// Settle compares every player hand with the dealer and totals the payouts.
// Payouts include the returned stake: a push returns the single bet, a win
// returns twice it and a natural blackjack two and a half times.
func Settle(hands []Hand, dealer Hand, totalBet int) Settlement {
	s := Settlement{
		Hands:         make([]HandResult, len(hands)),
		DealerScore:   dealer.Score(),
		TotalBet:      totalBet,
		TotalWinnings: decimal.Zero,
	}
	if len(hands) == 0 {
		s.Net = decimal.NewFromInt(int64(-totalBet))
		return s
	}

	single := decimal.NewFromInt(int64(totalBet)).Div(decimal.NewFromInt(int64(len(hands))))

	for i, hand := range hands {
		result := settleHand(hand, s.DealerScore, single)
		s.Hands[i] = result
		s.TotalWinnings = s.TotalWinnings.Add(result.Payout)
		switch {
		case result.Outcome.IsWin():
			s.Wins++
		case result.Outcome.IsLoss():
			s.Losses++
		}
	}

	s.Net = s.TotalWinnings.Sub(decimal.NewFromInt(int64(totalBet)))
	return s
}

func settleHand(hand Hand, dealerScore int, single decimal.Decimal) HandResult {
	score := hand.Score()
	r := HandResult{Score: score, Payout: decimal.Zero}

	switch {
	case hand.IsBlackjack() && dealerScore != Blackjack:
		r.Outcome = OutcomeBlackjack
		r.Payout = single.Mul(blackjackMultiplier)
	case score > Blackjack:
		r.Outcome = OutcomeBust
	case dealerScore > Blackjack:
		r.Outcome = OutcomeWin
		r.Payout = single.Mul(winMultiplier)
	case score == dealerScore:
		r.Outcome = OutcomePush
		r.Payout = single
	case score > dealerScore:
		r.Outcome = OutcomeWin
		r.Payout = single.Mul(winMultiplier)
	default:
		r.Outcome = OutcomeLose
	}
	return r
}

// Winner returns who took the round by counting hand wins and losses
func (s Settlement) Winner() Winner {
	switch {
	case s.Wins > s.Losses:
		return WinnerPlayer
	case s.Losses > s.Wins:
		return WinnerDealer
	default:
		return WinnerPush
	}
}

// Status renders the per-hand results, e.g. "Hand 1: Wins | Hand 2: Bust"
func (s Settlement) Status() string {
	parts := make([]string, len(s.Hands))
	for i, h := range s.Hands {
		parts[i] = fmt.Sprintf("Hand %d: %s", i+1, h.Outcome)
	}
	return strings.Join(parts, " | ")
}
