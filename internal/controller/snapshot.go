package controller

import (
	"github.com/shopspring/decimal"

	"github.com/lox/autojack/internal/deck"
	"github.com/lox/autojack/internal/game"
)

// HandView is a player hand as rendered
type HandView struct {
	Cards []deck.Card `json:"cards"`
	Score int         `json:"score"`
}

// DealerView is the dealer hand as rendered. While the first card is hidden
// Score only counts the visible cards.
type DealerView struct {
	Cards         []deck.Card `json:"cards"`
	Score         int         `json:"score"`
	HideFirstCard bool        `json:"hideFirstCard"`
}

// StatsView mirrors the running statistics
type StatsView struct {
	Wins      int             `json:"wins"`
	Losses    int             `json:"losses"`
	TotalWon  decimal.Decimal `json:"totalWon"`
	TotalLost decimal.Decimal `json:"totalLost"`
}

// HistoryEntry is one row of the recent rounds list
type HistoryEntry struct {
	ID           int64           `json:"id"`
	Winner       game.Winner     `json:"winner"`
	Opening      game.Opening    `json:"opening"`
	PlayerScores []int           `json:"playerScores"`
	DealerScore  int             `json:"dealerScore"`
	Bet          int             `json:"bet"`
	Net          decimal.Decimal `json:"net"`
	Wallet       decimal.Decimal `json:"wallet"`
}

// Snapshot is a read-only copy of everything a renderer needs
type Snapshot struct {
	Seq           uint64          `json:"seq"`
	Session       string          `json:"session"`
	State         game.State      `json:"state"`
	Opening       game.Opening    `json:"opening,omitempty"`
	PlayerHands   []HandView      `json:"playerHands"`
	ActiveHand    int             `json:"activeHand"`
	Dealer        DealerView      `json:"dealer"`
	Wallet        decimal.Decimal `json:"wallet"`
	Bet           int             `json:"bet"`
	Stats         StatsView       `json:"stats"`
	Status        string          `json:"status"`
	History       []HistoryEntry  `json:"history"`
	AutoPlay      bool            `json:"autoPlay"`
	ShoeRemaining int             `json:"shoeRemaining"`
}

func newSnapshot(sessionID string, s *game.Session, autoPlay bool) Snapshot {
	r := s.Round
	snap := Snapshot{
		Session:     sessionID,
		State:       r.State,
		Opening:     r.Opening,
		PlayerHands: make([]HandView, len(r.Hands)),
		ActiveHand:  r.ActiveHand,
		Dealer: DealerView{
			Cards:         r.Dealer.Clone(),
			Score:         r.DealerVisibleScore(),
			HideFirstCard: r.DealerHidden(),
		},
		Wallet: s.Stats.Wallet,
		Bet:    s.CurrentBet(),
		Stats: StatsView{
			Wins:      s.Stats.Wins,
			Losses:    s.Stats.Losses,
			TotalWon:  s.Stats.TotalWon,
			TotalLost: s.Stats.TotalLost,
		},
		Status:   s.Status,
		AutoPlay: autoPlay,
	}
	if r.Shoe != nil {
		snap.ShoeRemaining = r.Shoe.Len()
	}
	for i, h := range r.Hands {
		snap.PlayerHands[i] = HandView{Cards: h.Clone(), Score: h.Score()}
	}

	records := s.History.Records()
	snap.History = make([]HistoryEntry, len(records))
	for i, rec := range records {
		entry := HistoryEntry{
			ID:           rec.ID,
			Winner:       rec.Winner,
			Opening:      rec.Opening,
			PlayerScores: make([]int, len(rec.PlayerHands)),
			DealerScore:  rec.DealerHand.Score,
			Bet:          rec.Bet,
			Net:          rec.Net,
			Wallet:       rec.WalletEnd,
		}
		for j, h := range rec.PlayerHands {
			entry.PlayerScores[j] = h.Score
		}
		snap.History[i] = entry
	}
	return snap
}
