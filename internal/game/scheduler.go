package game

import (
	"sync"
	"time"

	"github.com/coder/quartz"
)

// seqStep is one continuation in a scheduled sequence: wait delay, run fn
type seqStep struct {
	delay time.Duration
	fn    func()
}

// scheduler runs cancellable timed sequences on a single injected clock.
// Each Run supersedes the previous sequence: the generation counter bumps
// and callbacks from the old generation become no-ops, so a hand reset in
// the middle of a countdown never leaves an orphaned timer firing into the
// next hand. Zero-delay steps run synchronously in the caller.
type scheduler struct {
	clock quartz.Clock

	mu    sync.Mutex
	gen   int
	timer *quartz.Timer
}

func newScheduler(clock quartz.Clock) *scheduler {
	return &scheduler{clock: clock}
}

// Run starts a new sequence, cancelling whatever was pending
func (s *scheduler) Run(steps []seqStep) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	s.advance(gen, steps)
}

// Cancel stops the pending sequence without starting a new one
func (s *scheduler) Cancel() {
	s.mu.Lock()
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
}

func (s *scheduler) advance(gen int, steps []seqStep) {
	for len(steps) > 0 && steps[0].delay == 0 {
		if s.superseded(gen) {
			return
		}
		steps[0].fn()
		steps = steps[1:]
	}
	if len(steps) == 0 {
		return
	}

	next := steps[0]
	rest := steps[1:]

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.timer = s.clock.AfterFunc(next.delay, func() {
		s.mu.Lock()
		if gen != s.gen {
			s.mu.Unlock()
			return
		}
		s.timer = nil
		s.mu.Unlock()

		next.fn()
		s.advance(gen, rest)
	})
	s.mu.Unlock()
}

func (s *scheduler) superseded(gen int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen != s.gen
}
