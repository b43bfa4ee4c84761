package game

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lox/autojack/internal/deck"
)

const (
	// StartingWallet is the balance after a reset
	StartingWallet = 1000

	// HistoryLimit is how many finished rounds the history keeps
	HistoryLimit = 10

	// IdleStatus is shown before auto-play has started
	IdleStatus = `Click "Start Auto-Play"`

	// BrokeStatus is shown when the wallet cannot cover a bet
	BrokeStatus = "Not enough money to bet! Reset game."
)

// Statistics are the running totals across rounds
type Statistics struct {
	Wallet    decimal.Decimal
	Wins      int
	Losses    int
	TotalWon  decimal.Decimal
	TotalLost decimal.Decimal
}

// HandRecord is a frozen hand inside a RoundRecord
type HandRecord struct {
	Cards  []deck.Card
	Score  int
	Result string
}

// RoundRecord is an immutable snapshot of a finished round
type RoundRecord struct {
	ID          int64
	Timestamp   time.Time
	Winner      Winner
	Opening     Opening
	PlayerHands []HandRecord
	DealerHand  HandRecord
	Bet         int
	Net         decimal.Decimal
	WalletStart decimal.Decimal
	WalletEnd   decimal.Decimal
	Status      string
}

// History keeps the most recent rounds, newest first
type History struct {
	records []RoundRecord
	limit   int
}

// NewHistory creates a history that retains at most limit records
func NewHistory(limit int) *History {
	return &History{limit: limit}
}

// Push inserts a record at the front and drops the oldest beyond the limit
func (h *History) Push(rec RoundRecord) {
	h.records = append([]RoundRecord{rec}, h.records...)
	if len(h.records) > h.limit {
		h.records = h.records[:h.limit]
	}
}

// Records returns a copy of the history, newest first
func (h *History) Records() []RoundRecord {
	return append([]RoundRecord(nil), h.records...)
}

// Len returns the number of records held
func (h *History) Len() int {
	return len(h.records)
}

// Clear drops every record
func (h *History) Clear() {
	h.records = nil
}

// Session is the whole mutable game: money, the round in play, the status
// line and the history. It has a single owner that serialises access.
type Session struct {
	Stats    Statistics
	Round    Round
	Resolved bool
	Status   string
	History  *History
}

// NewSession returns a freshly reset session
func NewSession() *Session {
	s := &Session{History: NewHistory(HistoryLimit)}
	s.Reset()
	return s
}

// Reset restores the starting wallet and clears every counter and the history
func (s *Session) Reset() {
	s.Stats = Statistics{
		Wallet:    decimal.NewFromInt(StartingWallet),
		TotalWon:  decimal.Zero,
		TotalLost: decimal.Zero,
	}
	s.Round = NewRound()
	s.Resolved = false
	s.Status = IdleStatus
	s.History.Clear()
}

// CanStartRound reports whether a new round may be dealt
func (s *Session) CanStartRound() bool {
	return s.Round.State == StateInitial || (s.Round.State == StateEnd && s.Resolved)
}

// CurrentBet is the total staked on the round in play
func (s *Session) CurrentBet() int {
	return s.Round.Wager.TotalBet
}

// StartRound deals a new round from shoe. On insufficient funds the status
// line is updated and the error returned; nothing else changes.
func (s *Session) StartRound(shoe *deck.Shoe, policy BetPolicy) error {
	if !s.CanStartRound() {
		return ErrRoundInProgress
	}

	r, err := Deal(shoe, s.Stats.Wallet, policy)
	if err != nil {
		if errors.Is(err, ErrInsufficientFunds) {
			s.Status = BrokeStatus
		}
		return err
	}

	s.Round = r
	s.Stats.Wallet = r.Wallet
	s.Resolved = false
	s.Status = r.OpeningStatus()
	return nil
}

// Step advances the round by one engine step. When the step reaches the end
// state the round is settled and its record returned.
func (s *Session) Step(now time.Time) (*RoundRecord, error) {
	next, err := Advance(s.Round)
	if err != nil {
		return nil, err
	}
	s.Round = next

	if s.Round.State == StateEnd {
		if rec, ok := s.Resolve(now); ok {
			return &rec, nil
		}
	}
	return nil, nil
}

// Resolve settles a finished round exactly once and records it in the
// history. It returns false if the round is not over or was already settled.
func (s *Session) Resolve(now time.Time) (RoundRecord, bool) {
	if s.Round.State != StateEnd || s.Resolved {
		return RoundRecord{}, false
	}

	r := s.Round
	settlement := Settle(r.Hands, r.Dealer, r.Wager.TotalBet)

	walletStart := s.Stats.Wallet
	s.Stats.Wallet = walletStart.Add(settlement.TotalWinnings)
	s.Stats.Wins += settlement.Wins
	s.Stats.Losses += settlement.Losses
	switch {
	case settlement.Net.IsPositive():
		s.Stats.TotalWon = s.Stats.TotalWon.Add(settlement.Net)
	case settlement.Net.IsNegative():
		s.Stats.TotalLost = s.Stats.TotalLost.Sub(settlement.Net)
	}

	s.Status = settlement.Status()
	s.Resolved = true

	rec := RoundRecord{
		ID:          now.UnixMilli(),
		Timestamp:   now.UTC(),
		Winner:      settlement.Winner(),
		Opening:     r.Opening,
		PlayerHands: make([]HandRecord, len(r.Hands)),
		DealerHand: HandRecord{
			Cards: r.Dealer.Clone(),
			Score: settlement.DealerScore,
		},
		Bet:         r.Wager.TotalBet,
		Net:         settlement.Net,
		WalletStart: walletStart,
		WalletEnd:   s.Stats.Wallet,
		Status:      s.Status,
	}
	for i, h := range r.Hands {
		rec.PlayerHands[i] = HandRecord{
			Cards:  h.Clone(),
			Score:  settlement.Hands[i].Score,
			Result: settlement.Hands[i].Outcome.String(),
		}
	}

	s.History.Push(rec)
	return rec, true
}
