// Package scheduler runs delayed callbacks on a quartz clock and lets callers
// cancel them by token.
package scheduler

import (
	"sync"
	"time"

	"github.com/coder/quartz"
)

// Token identifies a scheduled callback. The zero Token is never issued.
type Token uint64

// Scheduler fires callbacks after a delay. Cancelled callbacks never run,
// even when their timer has already expired but the callback has not yet
// been entered.
type Scheduler struct {
	clock quartz.Clock

	mu     sync.Mutex
	next   Token
	timers map[Token]*quartz.Timer
}

// New creates a scheduler driven by clock
func New(clock quartz.Clock) *Scheduler {
	return &Scheduler{
		clock:  clock,
		timers: make(map[Token]*quartz.Timer),
	}
}

// Schedule runs fn once after delay and returns a token that cancels it
func (s *Scheduler) Schedule(delay time.Duration, fn func()) Token {
	s.mu.Lock()
	s.next++
	tok := s.next
	s.timers[tok] = nil
	s.mu.Unlock()

	// AfterFunc may fire before it returns, so the timer is registered after
	timer := s.clock.AfterFunc(delay, func() {
		if !s.claim(tok) {
			return
		}
		fn()
	}, "scheduler", "step")

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.timers[tok]; ok {
		s.timers[tok] = timer
	} else {
		timer.Stop()
	}
	return tok
}

// claim removes tok from the live set; false means it was cancelled
func (s *Scheduler) claim(tok Token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.timers[tok]; !ok {
		return false
	}
	delete(s.timers, tok)
	return true
}

// Cancel stops the callback for tok. It reports whether the callback was
// still pending.
func (s *Scheduler) Cancel(tok Token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	timer, ok := s.timers[tok]
	if !ok {
		return false
	}
	if timer != nil {
		timer.Stop()
	}
	delete(s.timers, tok)
	return true
}

// CancelAll stops every pending callback
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for tok, timer := range s.timers {
		if timer != nil {
			timer.Stop()
		}
		delete(s.timers, tok)
	}
}

// Pending returns how many callbacks are waiting to fire
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
