// Package simulator plays blackjack rounds headlessly, without pacing, and
// aggregates the results.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/autojack/internal/deck"
	"github.com/lox/autojack/internal/game"
	"github.com/lox/autojack/internal/randutil"
	"github.com/lox/autojack/internal/statistics"
)

// maxSteps bounds a single round. A round needs one step per drawn card plus
// the hand and dealer transitions, far below this.
const maxSteps = 256

// ErrRoundStuck is returned when a round fails to reach the end state
var ErrRoundStuck = errors.New("round did not finish")

// Config holds configuration for running simulations
type Config struct {
	Rounds  int
	Workers int
	Seed    int64
	Bet     int // Fixed bet, zero draws a random bet each round
	Logger  *log.Logger
}

// Result is the outcome of a simulation run
type Result struct {
	Stats        *statistics.Statistics
	Seed         int64
	Workers      int
	Bankruptcies int
	Duration     time.Duration
}

// Simulator runs blackjack round simulations
type Simulator struct {
	config Config
	logger *log.Logger
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.Workers > config.Rounds && config.Rounds > 0 {
		config.Workers = config.Rounds
	}
	config.Seed = randutil.Seed(config.Seed)

	logger := config.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Simulator{config: config, logger: logger.WithPrefix("simulator")}
}

// Run executes the simulation and returns merged results
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	if s.config.Rounds <= 0 {
		return nil, fmt.Errorf("rounds must be positive, got %d", s.config.Rounds)
	}

	start := time.Now()
	workers := s.config.Workers
	partials := make([]*workerResult, workers)

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		rounds := s.config.Rounds / workers
		if w < s.config.Rounds%workers {
			rounds++
		}
		seed := randutil.Derive(s.config.Seed, w)
		g.Go(func() error {
			res, err := s.runWorker(ctx, w, seed, rounds)
			if err != nil {
				return fmt.Errorf("worker %d: %w", w, err)
			}
			partials[w] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{
		Stats:   &statistics.Statistics{},
		Seed:    s.config.Seed,
		Workers: workers,
	}
	for _, p := range partials {
		result.Stats.Merge(p.stats)
		result.Bankruptcies += p.bankruptcies
	}
	result.Duration = time.Since(start)

	if err := result.Stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}

	s.logger.Debug("Simulation complete",
		"rounds", result.Stats.Rounds,
		"workers", workers,
		"duration", result.Duration)
	return result, nil
}

type workerResult struct {
	stats        *statistics.Statistics
	bankruptcies int
}

func (s *Simulator) runWorker(ctx context.Context, worker int, seed int64, rounds int) (*workerResult, error) {
	rng := randutil.New(seed)

	var policy game.BetPolicy = game.NewRandomBetPolicy(rng)
	if s.config.Bet > 0 {
		policy = game.FixedBet(s.config.Bet)
	}

	res := &workerResult{stats: &statistics.Statistics{}}
	session := game.NewSession()
	now := time.Unix(0, 0).UTC()

	for i := 0; i < rounds; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		shoeSeed := randutil.Derive(seed, i)
		shoe := deck.NewShoe(deck.DefaultDecks)
		shoe.Shuffle(randutil.New(shoeSeed))

		err := session.StartRound(shoe, policy)
		if errors.Is(err, game.ErrInsufficientFunds) {
			res.bankruptcies++
			s.logger.Debug("Session bankrupt, resetting", "worker", worker, "round", i)
			session.Reset()
			err = session.StartRound(shoe, policy)
		}
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", i, err)
		}

		now = now.Add(time.Millisecond)
		rec, err := playRound(session, now)
		if err != nil {
			return nil, fmt.Errorf("round %d (seed %d): %w", i, shoeSeed, err)
		}

		result := NewRoundResult(rec)
		result.Seed = shoeSeed
		res.stats.Add(result)
	}
	return res, nil
}

// playRound steps the dealt round until it settles
func playRound(session *game.Session, now time.Time) (game.RoundRecord, error) {
	for i := 0; i < maxSteps; i++ {
		rec, err := session.Step(now)
		if err != nil {
			return game.RoundRecord{}, err
		}
		if rec != nil {
			return *rec, nil
		}
	}
	return game.RoundRecord{}, ErrRoundStuck
}

// NewRoundResult converts a finished round into a statistics sample
func NewRoundResult(rec game.RoundRecord) statistics.RoundResult {
	result := statistics.RoundResult{
		Net:        rec.Net.InexactFloat64(),
		Bet:        rec.Bet,
		Opening:    string(rec.Opening),
		DealerBust: rec.DealerHand.Score > game.Blackjack,
	}
	for _, h := range rec.PlayerHands {
		switch h.Result {
		case game.OutcomeBlackjack.String():
			result.Blackjacks++
			result.HandsWon++
		case game.OutcomeWin.String():
			result.HandsWon++
		case game.OutcomeBust.String():
			result.Busts++
			result.HandsLost++
		case game.OutcomeLose.String():
			result.HandsLost++
		}
	}
	return result
}
