// Package controller sequences rounds on a clock while auto-play is on and
// fans state snapshots out to renderers.
package controller

import (
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/autojack/internal/deck"
	"github.com/lox/autojack/internal/game"
	"github.com/lox/autojack/internal/randutil"
	"github.com/lox/autojack/internal/scheduler"
	"github.com/lox/autojack/internal/sink"
)

const (
	DefaultStepDelay    = 500 * time.Millisecond
	DefaultRestartDelay = 1500 * time.Millisecond

	// ShoeExhaustedStatus is shown when a round runs out of cards
	ShoeExhaustedStatus = "Shoe exhausted"
)

// Config holds the controller's pacing and sources of randomness
type Config struct {
	StepDelay    time.Duration
	RestartDelay time.Duration
	Seed         int64
	SessionID    string

	// NewShoe builds the shoe for each round; defaults to a shuffled six-deck shoe
	NewShoe func() *deck.Shoe

	// Policy picks each round's bet; defaults to the random 5-25 policy
	Policy game.BetPolicy
}

// Controller owns the session. Every mutation happens under mu, either from
// a command or from a scheduled step.
type Controller struct {
	cfg     Config
	logger  *log.Logger
	clock   quartz.Clock
	sched   *scheduler.Scheduler
	batcher *sink.Batcher

	mu       sync.Mutex
	session  *game.Session
	autoPlay bool
	pending  scheduler.Token
	seq      uint64

	subMu   sync.Mutex
	subs    map[int]*subscriber
	nextSub int
}

type subscriber struct {
	ch   chan Snapshot
	last uint64
}

// New creates a controller. batcher may be nil to discard finished rounds.
func New(cfg Config, clock quartz.Clock, batcher *sink.Batcher, logger *log.Logger) *Controller {
	if cfg.StepDelay <= 0 {
		cfg.StepDelay = DefaultStepDelay
	}
	if cfg.RestartDelay <= 0 {
		cfg.RestartDelay = DefaultRestartDelay
	}

	seed := randutil.Seed(cfg.Seed)
	rng := randutil.New(seed)
	if cfg.NewShoe == nil {
		cfg.NewShoe = func() *deck.Shoe {
			shoe := deck.NewShoe(deck.DefaultDecks)
			shoe.Shuffle(rng)
			return shoe
		}
	}
	if cfg.Policy == nil {
		cfg.Policy = game.NewRandomBetPolicy(rng)
	}

	logger = logger.WithPrefix("controller")
	if cfg.SessionID != "" {
		logger = logger.With("session", cfg.SessionID)
	}
	logger.Debug("Controller created", "seed", seed)

	return &Controller{
		cfg:     cfg,
		logger:  logger,
		clock:   clock,
		sched:   scheduler.New(clock),
		batcher: batcher,
		session: game.NewSession(),
		subs:    make(map[int]*subscriber),
	}
}

// AutoPlay reports whether rounds are being played
func (c *Controller) AutoPlay() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.autoPlay
}

// ToggleAutoPlay flips auto-play and returns the new setting
func (c *Controller) ToggleAutoPlay() bool {
	c.mu.Lock()
	on := !c.autoPlay
	c.setAutoPlayLocked(on)
	on = c.autoPlay
	snap := c.changedLocked()
	c.mu.Unlock()

	c.publish(snap)
	return on
}

// SetAutoPlay turns auto-play on or off
func (c *Controller) SetAutoPlay(on bool) {
	c.mu.Lock()
	if c.autoPlay == on {
		c.mu.Unlock()
		return
	}
	c.setAutoPlayLocked(on)
	snap := c.changedLocked()
	c.mu.Unlock()

	c.publish(snap)
}

func (c *Controller) setAutoPlayLocked(on bool) {
	c.autoPlay = on
	if !on {
		c.cancelLocked()
		c.logger.Info("Auto-play stopped")
		return
	}

	c.logger.Info("Auto-play started")
	if c.session.CanStartRound() {
		c.startRoundLocked()
		return
	}
	// Resume a paused round
	c.scheduleLocked(c.cfg.StepDelay)
}

// Reset stops auto-play and restores the starting wallet, counters and
// history. Buffered uploads are dropped.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.cancelLocked()
	c.autoPlay = false
	c.session.Reset()
	if c.batcher != nil {
		if dropped := c.batcher.Reset(); dropped > 0 {
			c.logger.Debug("Dropped buffered rounds", "count", dropped)
		}
	}
	snap := c.changedLocked()
	c.mu.Unlock()

	c.logger.Info("Game reset")
	c.publish(snap)
}

// Snapshot returns the current state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Stop cancels any scheduled step without changing the session
func (c *Controller) Stop() {
	c.mu.Lock()
	c.cancelLocked()
	c.autoPlay = false
	c.mu.Unlock()
	c.sched.CancelAll()
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := newSnapshot(c.cfg.SessionID, c.session, c.autoPlay)
	snap.Seq = c.seq
	return snap
}

// changedLocked marks a state change and returns the snapshot to publish
func (c *Controller) changedLocked() Snapshot {
	c.seq++
	return c.snapshotLocked()
}

func (c *Controller) scheduleLocked(delay time.Duration) {
	c.cancelLocked()
	// tok is written under mu and read by onTimer under mu
	tok := new(scheduler.Token)
	*tok = c.sched.Schedule(delay, func() { c.onTimer(tok) })
	c.pending = *tok
}

func (c *Controller) cancelLocked() {
	if c.pending != 0 {
		c.sched.Cancel(c.pending)
		c.pending = 0
	}
}

// onTimer runs one scheduled step. Stale tokens are ignored.
func (c *Controller) onTimer(tok *scheduler.Token) {
	c.mu.Lock()
	if *tok != c.pending || !c.autoPlay {
		c.mu.Unlock()
		return
	}
	c.pending = 0

	if c.session.CanStartRound() {
		c.startRoundLocked()
	} else {
		c.stepLocked()
	}
	snap := c.changedLocked()
	c.mu.Unlock()

	c.publish(snap)
}

func (c *Controller) startRoundLocked() {
	err := c.session.StartRound(c.cfg.NewShoe(), c.cfg.Policy)
	switch {
	case err == nil:
		c.logger.Debug("Round dealt",
			"opening", c.session.Round.Opening,
			"bet", c.session.CurrentBet(),
			"wallet", c.session.Stats.Wallet)
		c.scheduleLocked(c.cfg.StepDelay)

	case errors.Is(err, game.ErrInsufficientFunds):
		c.logger.Warn("Insufficient funds, stopping auto-play", "error", err)
		c.autoPlay = false

	default:
		c.failLocked(err)
	}
}

func (c *Controller) stepLocked() {
	rec, err := c.session.Step(c.clock.Now())
	if err != nil {
		c.failLocked(err)
		return
	}

	if rec == nil {
		c.scheduleLocked(c.cfg.StepDelay)
		return
	}

	c.logger.Info("Round finished",
		"round", rec.ID,
		"winner", rec.Winner,
		"bet", rec.Bet,
		"net", rec.Net,
		"wallet", rec.WalletEnd)
	if c.batcher != nil {
		c.batcher.Add(sink.NewPayload(*rec))
	}
	c.scheduleLocked(c.cfg.RestartDelay)
}

// failLocked stops auto-play after an error the round cannot recover from.
// The round is left unsettled.
func (c *Controller) failLocked(err error) {
	c.autoPlay = false
	c.cancelLocked()
	if errors.Is(err, deck.ErrEmptyShoe) {
		c.session.Status = ShoeExhaustedStatus
	}
	c.logger.Error("Round failed, stopping auto-play", "state", c.session.Round.State, "error", err)
}

// Subscribe returns a channel receiving the latest snapshot after every
// change. Slow readers only see the newest snapshot. The returned function
// unsubscribes and closes the channel.
func (c *Controller) Subscribe() (<-chan Snapshot, func()) {
	c.subMu.Lock()
	snap := c.Snapshot()
	sub := &subscriber{ch: make(chan Snapshot, 1), last: snap.Seq}
	sub.ch <- snap
	id := c.nextSub
	c.nextSub++
	c.subs[id] = sub
	c.subMu.Unlock()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			c.subMu.Lock()
			delete(c.subs, id)
			close(sub.ch)
			c.subMu.Unlock()
		})
	}
}

func (c *Controller) publish(snap Snapshot) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	for _, sub := range c.subs {
		if snap.Seq <= sub.last {
			continue
		}
		sub.last = snap.Seq
		// Replace any unread snapshot
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- snap:
		default:
		}
	}
}
