package deck

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCards(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Card
		wantErr  bool
	}{
		{
			name:  "letters",
			input: "As Kh 10d 2c",
			expected: []Card{
				{Suit: Spades, Rank: Ace},
				{Suit: Hearts, Rank: King},
				{Suit: Diamonds, Rank: Ten},
				{Suit: Clubs, Rank: Two},
			},
		},
		{
			name:     "symbols",
			input:    "Q♦ 9♣",
			expected: []Card{{Suit: Diamonds, Rank: Queen}, {Suit: Clubs, Rank: Nine}},
		},
		{
			name:     "ten shorthand",
			input:    "Ts",
			expected: []Card{{Suit: Spades, Rank: Ten}},
		},
		{name: "invalid rank", input: "Xs", wantErr: true},
		{name: "invalid suit", input: "Ax", wantErr: true},
		{name: "too short", input: "A", wantErr: true},
		{name: "empty string", input: "", expected: []Card{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCards(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCardValues(t *testing.T) {
	expected := map[Rank]int{
		Ace: 11, Two: 2, Three: 3, Four: 4, Five: 5, Six: 6, Seven: 7,
		Eight: 8, Nine: 9, Ten: 10, Jack: 10, Queen: 10, King: 10,
	}
	for rank, value := range expected {
		assert.Equal(t, value, NewCard(Spades, rank).Value(), "rank %s", rank)
	}
}

func TestCardString(t *testing.T) {
	assert.Equal(t, "A♠", NewCard(Spades, Ace).String())
	assert.Equal(t, "10♥", NewCard(Hearts, Ten).String())
	assert.Equal(t, "7♣", NewCard(Clubs, Seven).String())
}

func TestCardJSON(t *testing.T) {
	card := NewCard(Hearts, Ace)

	data, err := json.Marshal(card)
	require.NoError(t, err)
	assert.JSONEq(t, `{"suit":"♥","rank":"A","value":11}`, string(data))

	var decoded Card
	require.NoError(t, json.Unmarshal([]byte(`{"suit":"♣","rank":"10","value":10}`), &decoded))
	assert.Equal(t, NewCard(Clubs, Ten), decoded)

	assert.Error(t, json.Unmarshal([]byte(`{"suit":"x","rank":"10"}`), &decoded))
}
