package game

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/autojack/internal/randutil"
)

func TestDealSplitsPairs(t *testing.T) {
	shoe := stackedShoe("8s 8h 10d 7c 2s 3s")

	r, err := Deal(shoe, decimal.NewFromInt(1000), FixedBet(10))
	require.NoError(t, err)

	assert.Equal(t, StateDealingSplit, r.State)
	assert.Equal(t, OpeningSplit, r.Opening)
	require.Len(t, r.Hands, 2)
	assert.Equal(t, hand("8s"), r.Hands[0])
	assert.Equal(t, hand("8h"), r.Hands[1])
	assert.Equal(t, hand("10d 7c"), r.Dealer)
	assert.Equal(t, Wager{BaseBet: 10, TotalBet: 20}, r.Wager)
	assert.True(t, r.Wallet.Equal(decimal.NewFromInt(980)))
	assert.Equal(t, "Splitting 8s!", r.OpeningStatus())
}

func TestDealSplitRequiresSecondBet(t *testing.T) {
	// Wallet covers exactly one bet: the pair plays as a normal hand
	shoe := stackedShoe("8s 8h 10d 7c")

	r, err := Deal(shoe, decimal.NewFromInt(10), FixedBet(10))
	require.NoError(t, err)

	assert.Equal(t, StatePlayer, r.State)
	assert.Equal(t, OpeningNormal, r.Opening)
	require.Len(t, r.Hands, 1)
	assert.Equal(t, 10, r.Wager.TotalBet)
	assert.True(t, r.Wallet.IsZero())
}

func TestDealDoublesOnTenOrEleven(t *testing.T) {
	for _, opening := range []string{"5s 6h", "4s 6h", "9c 2d"} {
		t.Run(opening, func(t *testing.T) {
			shoe := stackedShoe(opening + " Kd 7c 9s")

			r, err := Deal(shoe, decimal.NewFromInt(100), FixedBet(25))
			require.NoError(t, err)

			assert.Equal(t, StateDealer, r.State)
			assert.Equal(t, OpeningDouble, r.Opening)
			require.Len(t, r.Hands, 1)
			assert.Len(t, r.Hands[0], 3)
			assert.Equal(t, hand("9s"), r.Hands[0][2:])
			assert.Equal(t, 50, r.Wager.TotalBet)
			assert.True(t, r.Wallet.Equal(decimal.NewFromInt(50)))
		})
	}
}

func TestDealDoubleStatus(t *testing.T) {
	r, err := Deal(stackedShoe("5s 6h Kd 7c 9s"), decimal.NewFromInt(100), FixedBet(5))
	require.NoError(t, err)
	assert.Equal(t, "Doubling down on 11!", r.OpeningStatus())
}

func TestDealDoubleRequiresSecondBet(t *testing.T) {
	r, err := Deal(stackedShoe("5s 6h Kd 7c 9s"), decimal.NewFromInt(15), FixedBet(10))
	require.NoError(t, err)

	assert.Equal(t, StatePlayer, r.State)
	assert.Len(t, r.Hands[0], 2)
	assert.Equal(t, 10, r.Wager.TotalBet)
}

func TestDealSplitTakesPriorityOverDouble(t *testing.T) {
	// Two fives score 10 but split wins
	r, err := Deal(stackedShoe("5s 5h Kd 7c"), decimal.NewFromInt(100), FixedBet(5))
	require.NoError(t, err)
	assert.Equal(t, OpeningSplit, r.Opening)
}

func TestDealNormal(t *testing.T) {
	shoe := stackedShoe("10s 6h Kd 7c")

	r, err := Deal(shoe, decimal.NewFromInt(1000), FixedBet(15))
	require.NoError(t, err)

	assert.Equal(t, StatePlayer, r.State)
	assert.Equal(t, []Hand{hand("10s 6h")}, r.Hands)
	assert.Equal(t, hand("Kd 7c"), r.Dealer)
	assert.Equal(t, Wager{BaseBet: 15, TotalBet: 15}, r.Wager)
	assert.Equal(t, "Player's Turn (Bet: $15)", r.OpeningStatus())
	assert.Equal(t, 0, r.ActiveHand)
}

func TestDealInsufficientFunds(t *testing.T) {
	shoe := stackedShoe("10s 6h Kd 7c")

	_, err := Deal(shoe, decimal.NewFromInt(20), FixedBet(25))
	require.ErrorIs(t, err, ErrInsufficientFunds)

	var funds *InsufficientFundsError
	require.ErrorAs(t, err, &funds)
	assert.Equal(t, 25, funds.Bet)
	assert.True(t, funds.Wallet.Equal(decimal.NewFromInt(20)))

	assert.Equal(t, 4, shoe.Len(), "shoe must not be touched")
}

func TestDealDoesNotConsumeCallerShoe(t *testing.T) {
	shoe := stackedShoe("10s 6h Kd 7c 2d")

	r, err := Deal(shoe, decimal.NewFromInt(100), FixedBet(5))
	require.NoError(t, err)

	assert.Equal(t, 5, shoe.Len())
	assert.Equal(t, 1, r.Shoe.Len())
}

func TestDealShortShoe(t *testing.T) {
	_, err := Deal(stackedShoe("10s 6h"), decimal.NewFromInt(100), FixedBet(5))
	assert.Error(t, err)
}

func TestRandomBetPolicy(t *testing.T) {
	policy := NewRandomBetPolicy(randutil.New(3))
	seen := make(map[int]int)
	for i := 0; i < 1000; i++ {
		bet := policy.NextBet()
		require.Contains(t, []int{5, 10, 15, 20, 25}, bet)
		seen[bet]++
	}
	assert.Len(t, seen, 5, "every bet size should appear")
}
