package game

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrInsufficientFunds is returned when the wallet cannot cover the next bet
	ErrInsufficientFunds = errors.New("game: insufficient funds")

	// ErrRoundInProgress is returned when a round is started before the previous one ended
	ErrRoundInProgress = errors.New("game: round in progress")

	// ErrRoundOver is returned when advancing a round that has reached the end state
	ErrRoundOver = errors.New("game: round is over")

	// ErrRoundNotStarted is returned when advancing a round that was never dealt
	ErrRoundNotStarted = errors.New("game: round not started")
)

// InsufficientFundsError carries the wallet and bet that failed the check
type InsufficientFundsError struct {
	Wallet decimal.Decimal
	Bet    int
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("game: wallet $%s cannot cover bet $%d", e.Wallet.String(), e.Bet)
}

func (e *InsufficientFundsError) Unwrap() error {
	return ErrInsufficientFunds
}
