package statistics

import (
	"math"
	"testing"
)

func TestStatistics_Empty(t *testing.T) {
	stats := &Statistics{}

	if stats.Mean() != 0 {
		t.Errorf("Expected mean of 0 for empty stats, got %f", stats.Mean())
	}
	if stats.Variance() != 0 {
		t.Errorf("Expected variance of 0 for empty stats, got %f", stats.Variance())
	}
	if stats.StdError() != 0 {
		t.Errorf("Expected stderr of 0 for empty stats, got %f", stats.StdError())
	}
	if stats.Median() != 0 {
		t.Errorf("Expected median of 0 for empty stats, got %f", stats.Median())
	}
	if stats.Percentile(0.5) != 0 {
		t.Errorf("Expected percentile of 0 for empty stats, got %f", stats.Percentile(0.5))
	}
	if stats.ReturnToPlayer() != 0 {
		t.Errorf("Expected RTP of 0 for empty stats, got %f", stats.ReturnToPlayer())
	}
	if err := stats.Validate(); err == nil {
		t.Error("Expected validation error for empty stats")
	}
}

func TestStatistics_SingleRound(t *testing.T) {
	stats := &Statistics{}
	stats.Add(RoundResult{Net: 15, Bet: 10, Opening: OpeningNormal, HandsWon: 1, Blackjacks: 1})

	if stats.Rounds != 1 {
		t.Errorf("Expected 1 round, got %d", stats.Rounds)
	}
	if stats.Mean() != 15 {
		t.Errorf("Expected mean of 15, got %f", stats.Mean())
	}
	if stats.Variance() != 0 {
		t.Errorf("Expected variance of 0 for single value, got %f", stats.Variance())
	}
	if stats.RoundsWon != 1 || stats.Blackjacks != 1 {
		t.Errorf("Expected 1 won round and 1 blackjack, got %d and %d", stats.RoundsWon, stats.Blackjacks)
	}
	if stats.ReturnToPlayer() != 2.5 {
		t.Errorf("Expected RTP of 2.5, got %f", stats.ReturnToPlayer())
	}
	if err := stats.Validate(); err != nil {
		t.Errorf("Unexpected validation error: %v", err)
	}
}

func TestStatistics_MultipleRounds(t *testing.T) {
	stats := &Statistics{}

	results := []RoundResult{
		{Net: 10, Bet: 10, Opening: OpeningNormal, HandsWon: 1},
		{Net: -20, Bet: 20, Opening: OpeningDouble, HandsLost: 1},
		{Net: 0, Bet: 10, Opening: OpeningSplit, HandsWon: 1, HandsLost: 1, Busts: 1},
		{Net: -5, Bet: 5, Opening: OpeningNormal, HandsLost: 1, Busts: 1},
		{Net: 25, Bet: 10, Opening: "", HandsWon: 1, DealerBust: true},
	}
	for _, r := range results {
		stats.Add(r)
	}

	if stats.Rounds != 5 {
		t.Fatalf("Expected 5 rounds, got %d", stats.Rounds)
	}
	if math.Abs(stats.Mean()-2.0) > 1e-9 {
		t.Errorf("Expected mean of 2.0, got %f", stats.Mean())
	}

	// values: 10, -20, 0, -5, 25; mean 2
	// squared deviations: 64, 484, 4, 49, 529 = 1130; variance 282.5
	if math.Abs(stats.Variance()-282.5) > 1e-9 {
		t.Errorf("Expected variance of 282.5, got %f", stats.Variance())
	}
	if stats.Median() != 0 {
		t.Errorf("Expected median of 0, got %f", stats.Median())
	}
	if stats.RoundsWon != 2 || stats.RoundsLost != 2 || stats.RoundsPushed != 1 {
		t.Errorf("Unexpected round split: won=%d lost=%d pushed=%d",
			stats.RoundsWon, stats.RoundsLost, stats.RoundsPushed)
	}
	if stats.Busts != 2 || stats.DealerBusts != 1 {
		t.Errorf("Expected 2 busts and 1 dealer bust, got %d and %d", stats.Busts, stats.DealerBusts)
	}
	if stats.Openings[OpeningNormal].Rounds != 3 {
		t.Errorf("Expected empty opening to count as normal, got %d normal rounds",
			stats.Openings[OpeningNormal].Rounds)
	}
	if math.Abs(stats.OpeningMean(OpeningNormal)-10) > 1e-9 {
		t.Errorf("Expected normal opening mean of 10, got %f", stats.OpeningMean(OpeningNormal))
	}
	if stats.OpeningMean("missing") != 0 {
		t.Error("Expected 0 mean for unknown opening")
	}
	if stats.MaxWin != 25 || stats.MaxLoss != -20 {
		t.Errorf("Expected max win 25 and max loss -20, got %f and %f", stats.MaxWin, stats.MaxLoss)
	}
	if !stats.IsLedgerBalanced() {
		t.Error("Expected ledger to be balanced")
	}
	if err := stats.Validate(); err != nil {
		t.Errorf("Unexpected validation error: %v", err)
	}
}

func TestStatistics_Percentile(t *testing.T) {
	stats := &Statistics{}
	for _, v := range []float64{-10, 0, 10, 20, 30} {
		stats.Add(RoundResult{Net: v, Bet: 10})
	}

	tests := []struct {
		p    float64
		want float64
	}{
		{0, -10},
		{0.25, 0},
		{0.5, 10},
		{0.875, 25},
		{1, 30},
	}
	for _, tt := range tests {
		if got := stats.Percentile(tt.p); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Percentile(%v) = %f, want %f", tt.p, got, tt.want)
		}
	}
}

func TestStatistics_ConfidenceInterval(t *testing.T) {
	stats := &Statistics{}
	for i := 0; i < 100; i++ {
		net := 10.0
		if i%2 == 0 {
			net = -10
		}
		stats.Add(RoundResult{Net: net, Bet: 10})
	}

	low, high := stats.ConfidenceInterval95()
	if low >= 0 || high <= 0 {
		t.Errorf("Expected interval to straddle zero, got [%f, %f]", low, high)
	}
	if math.Abs((high-low)/2-1.96*stats.StdError()) > 1e-9 {
		t.Error("Expected margin of 1.96 standard errors")
	}
}

func TestStatistics_Merge(t *testing.T) {
	a := &Statistics{}
	b := &Statistics{}
	all := &Statistics{}

	for i, r := range []RoundResult{
		{Net: 10, Bet: 10, Opening: OpeningNormal, HandsWon: 1},
		{Net: -10, Bet: 10, Opening: OpeningSplit, HandsLost: 2, Busts: 1},
		{Net: 12.5, Bet: 5, Opening: OpeningNormal, HandsWon: 1, Blackjacks: 1},
		{Net: -40, Bet: 40, Opening: OpeningDouble, HandsLost: 1, DealerBust: false},
	} {
		if i%2 == 0 {
			a.Add(r)
		} else {
			b.Add(r)
		}
		all.Add(r)
	}

	a.Merge(b)
	a.Merge(nil)

	if a.Rounds != all.Rounds || a.TotalBet != all.TotalBet || a.Blackjacks != all.Blackjacks {
		t.Errorf("Merged counters differ: %+v vs %+v", a, all)
	}
	if math.Abs(a.Mean()-all.Mean()) > 1e-9 || math.Abs(a.Variance()-all.Variance()) > 1e-9 {
		t.Errorf("Merged moments differ: mean %f vs %f", a.Mean(), all.Mean())
	}
	if a.MaxLoss != -40 || a.MaxWin != 12.5 {
		t.Errorf("Unexpected extremes after merge: win %f loss %f", a.MaxWin, a.MaxLoss)
	}
	if a.Openings[OpeningDouble].Rounds != 1 {
		t.Error("Expected merged double opening bucket")
	}
	if err := a.Validate(); err != nil {
		t.Errorf("Unexpected validation error: %v", err)
	}
}

func TestStatistics_ValidateDetectsMismatch(t *testing.T) {
	stats := &Statistics{}
	stats.Add(RoundResult{Net: 10, Bet: 10})

	stats.WonNet = 5
	if err := stats.Validate(); err == nil {
		t.Error("Expected ledger mismatch error")
	}

	stats.WonNet = 10
	stats.Values = nil
	if err := stats.Validate(); err == nil {
		t.Error("Expected values length error")
	}
}
