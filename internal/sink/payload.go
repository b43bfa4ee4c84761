package sink

import (
	"time"

	"github.com/lox/autojack/internal/deck"
	"github.com/lox/autojack/internal/game"
)

// isoMillis matches the ISO-8601 form the game API expects
const isoMillis = "2006-01-02T15:04:05.000Z"

// HandPayload is one hand on the wire
type HandPayload struct {
	Hand      []deck.Card `json:"hand"`
	Score     int         `json:"score"`
	CardCount int         `json:"cardCount"`
}

// Payload is the wire form of a finished round
type Payload struct {
	GameID            int64         `json:"gameId"`
	Timestamp         string        `json:"timestamp"`
	Result            string        `json:"result"`
	BetAmount         int           `json:"betAmount"`
	NetWinnings       float64       `json:"netWinnings"`
	PlayerWalletStart float64       `json:"playerWallet_start"`
	PlayerWalletEnd   float64       `json:"playerWallet_end"`
	PlayerHands       []HandPayload `json:"playerHands"`
	DealerHand        HandPayload   `json:"dealerHand"`
}

// NewPayload converts a round record to its wire form
func NewPayload(rec game.RoundRecord) Payload {
	p := Payload{
		GameID:            rec.ID,
		Timestamp:         rec.Timestamp.UTC().Format(isoMillis),
		Result:            string(rec.Winner),
		BetAmount:         rec.Bet,
		NetWinnings:       rec.Net.InexactFloat64(),
		PlayerWalletStart: rec.WalletStart.InexactFloat64(),
		PlayerWalletEnd:   rec.WalletEnd.InexactFloat64(),
		PlayerHands:       make([]HandPayload, len(rec.PlayerHands)),
		DealerHand:        handPayload(rec.DealerHand),
	}
	for i, h := range rec.PlayerHands {
		p.PlayerHands[i] = handPayload(h)
	}
	return p
}

func handPayload(h game.HandRecord) HandPayload {
	cards := h.Cards
	if cards == nil {
		cards = []deck.Card{}
	}
	return HandPayload{Hand: cards, Score: h.Score, CardCount: len(h.Cards)}
}

// PlayedAt parses the payload timestamp
func (p Payload) PlayedAt() (time.Time, error) {
	return time.Parse(isoMillis, p.Timestamp)
}
