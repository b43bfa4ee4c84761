package statistics

import (
	"fmt"
	"math"
	"sort"
)

// Opening buckets mirror how a round was dealt
const (
	OpeningNormal = "normal"
	OpeningSplit  = "split"
	OpeningDouble = "double"
)

// RoundResult represents the outcome of a single blackjack round
type RoundResult struct {
	Net        float64 // Net money won/lost on the round
	Bet        int     // Total staked, including split or double bets
	Opening    string  // normal, split or double
	HandsWon   int     // Player hands that won
	HandsLost  int     // Player hands that lost
	Blackjacks int     // Natural blackjacks paid
	Busts      int     // Player hands that busted
	DealerBust bool    // Dealer finished over 21
	Seed       int64   // Shoe seed for replay
}

// OpeningStats tracks statistics for one opening bucket
type OpeningStats struct {
	Rounds  int
	SumNet  float64
	SumNet2 float64
}

// Statistics tracks per-round results for a simulation run
type Statistics struct {
	Rounds  int
	SumNet  float64
	SumNet2 float64   // Sum of squares for variance calculation
	Values  []float64 // Store all values for median/percentile calculation

	RoundsWon    int
	RoundsLost   int
	RoundsPushed int
	HandsWon     int
	HandsLost    int
	Blackjacks   int
	Busts        int
	DealerBusts  int
	TotalBet     int

	WonNet  float64 // Net from winning rounds
	LostNet float64 // Net from losing rounds (negative)
	AllNet  float64 // Total net for sanity check

	Openings map[string]*OpeningStats

	MaxWin  float64
	MaxLoss float64
}

// Mean returns the average net per round
func (s *Statistics) Mean() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.SumNet / float64(s.Rounds)
}

// Variance returns the sample variance of all results
func (s *Statistics) Variance() float64 {
	if s.Rounds < 2 {
		return 0
	}
	mean := s.Mean()
	v := (s.SumNet2 - float64(s.Rounds)*mean*mean) / float64(s.Rounds-1)
	if v < 0 {
		return 0
	}
	return v
}

// StdDev returns the sample standard deviation of all results
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Rounds))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// ReturnToPlayer is total returned over total staked
func (s *Statistics) ReturnToPlayer() float64 {
	if s.TotalBet == 0 {
		return 0
	}
	return (float64(s.TotalBet) + s.AllNet) / float64(s.TotalBet)
}

// Add incorporates a new round result into the statistics
func (s *Statistics) Add(result RoundResult) {
	net := result.Net
	s.Rounds++
	s.SumNet += net
	s.SumNet2 += net * net
	s.Values = append(s.Values, net)
	s.AllNet += net
	s.TotalBet += result.Bet

	switch {
	case net > 0:
		s.RoundsWon++
		s.WonNet += net
	case net < 0:
		s.RoundsLost++
		s.LostNet += net
	default:
		s.RoundsPushed++
	}

	s.HandsWon += result.HandsWon
	s.HandsLost += result.HandsLost
	s.Blackjacks += result.Blackjacks
	s.Busts += result.Busts
	if result.DealerBust {
		s.DealerBusts++
	}

	opening := result.Opening
	if opening == "" {
		opening = OpeningNormal
	}
	if s.Openings == nil {
		s.Openings = make(map[string]*OpeningStats)
	}
	os, ok := s.Openings[opening]
	if !ok {
		os = &OpeningStats{}
		s.Openings[opening] = os
	}
	os.Rounds++
	os.SumNet += net
	os.SumNet2 += net * net

	if net > s.MaxWin {
		s.MaxWin = net
	}
	if net < s.MaxLoss {
		s.MaxLoss = net
	}
}

// Merge folds other into s. Values keep the order s then other.
func (s *Statistics) Merge(other *Statistics) {
	if other == nil {
		return
	}
	s.Rounds += other.Rounds
	s.SumNet += other.SumNet
	s.SumNet2 += other.SumNet2
	s.Values = append(s.Values, other.Values...)
	s.RoundsWon += other.RoundsWon
	s.RoundsLost += other.RoundsLost
	s.RoundsPushed += other.RoundsPushed
	s.HandsWon += other.HandsWon
	s.HandsLost += other.HandsLost
	s.Blackjacks += other.Blackjacks
	s.Busts += other.Busts
	s.DealerBusts += other.DealerBusts
	s.TotalBet += other.TotalBet
	s.WonNet += other.WonNet
	s.LostNet += other.LostNet
	s.AllNet += other.AllNet

	for name, theirs := range other.Openings {
		if s.Openings == nil {
			s.Openings = make(map[string]*OpeningStats)
		}
		ours, ok := s.Openings[name]
		if !ok {
			ours = &OpeningStats{}
			s.Openings[name] = ours
		}
		ours.Rounds += theirs.Rounds
		ours.SumNet += theirs.SumNet
		ours.SumNet2 += theirs.SumNet2
	}

	if other.MaxWin > s.MaxWin {
		s.MaxWin = other.MaxWin
	}
	if other.MaxLoss < s.MaxLoss {
		s.MaxLoss = other.MaxLoss
	}
}

// Median returns the median value of all results
func (s *Statistics) Median() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := s.sorted()
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Percentile returns the value at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := s.sorted()

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

func (s *Statistics) sorted() []float64 {
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)
	return sorted
}

// OpeningMean returns the mean result for rounds dealt with the given opening
func (s *Statistics) OpeningMean(opening string) float64 {
	os, ok := s.Openings[opening]
	if !ok || os.Rounds == 0 {
		return 0
	}
	return os.SumNet / float64(os.Rounds)
}

// IsLedgerBalanced checks if the accounting is consistent
func (s *Statistics) IsLedgerBalanced() bool {
	return math.Abs(s.AllNet-s.WonNet-s.LostNet) <= 1e-6
}

// Validate performs consistency checks across the counters
func (s *Statistics) Validate() error {
	if !s.IsLedgerBalanced() {
		return fmt.Errorf("ledger mismatch: AllNet=%.6f, WonNet=%.6f, LostNet=%.6f",
			s.AllNet, s.WonNet, s.LostNet)
	}

	if s.Rounds <= 0 {
		return fmt.Errorf("invalid rounds count: %d", s.Rounds)
	}

	if len(s.Values) != s.Rounds {
		return fmt.Errorf("values array length (%d) does not match rounds count (%d)",
			len(s.Values), s.Rounds)
	}

	if total := s.RoundsWon + s.RoundsLost + s.RoundsPushed; total != s.Rounds {
		return fmt.Errorf("won/lost/pushed total (%d) does not match rounds count (%d)", total, s.Rounds)
	}

	openingRounds := 0
	for _, os := range s.Openings {
		openingRounds += os.Rounds
	}
	if openingRounds != s.Rounds {
		return fmt.Errorf("opening rounds total (%d) does not match rounds count (%d)",
			openingRounds, s.Rounds)
	}

	return nil
}
