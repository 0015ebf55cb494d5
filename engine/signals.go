package engine

import (
	"context"
	"sync"
	"time"
)

// Flag is a set of response-ready bits.
type Flag uint32

// Bit returns the flag for a command id.
func Bit(id int) Flag {
	return 1 << id
}

// Signals is a group of independently settable bits with a timed wait.
// Bits stay set until a waiter consumes them.
type Signals struct {
	mu      sync.Mutex
	bits    Flag
	changed chan struct{}
}

func NewSignals() *Signals {
	return &Signals{changed: make(chan struct{})}
}

// Set asserts mask. It never blocks.
func (s *Signals) Set(mask Flag) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bits |= mask
	close(s.changed)
	s.changed = make(chan struct{})
}

// Clear drops mask without waking anyone.
func (s *Signals) Clear(mask Flag) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bits &^= mask
}

// Pending returns the bits currently set.
func (s *Signals) Pending() Flag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bits
}

// Wait blocks until any bit of mask is set, then clears and returns the
// matched bits. It returns 0 and a nil error when timeout elapses first,
// and ctx.Err() when ctx ends first. A timeout <= 0 waits without bound.
func (s *Signals) Wait(ctx context.Context, mask Flag, timeout time.Duration) (Flag, error) {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	for {
		s.mu.Lock()
		if got := s.bits & mask; got != 0 {
			s.bits &^= got
			s.mu.Unlock()
			return got, nil
		}
		changed := s.changed
		s.mu.Unlock()

		select {
		case <-changed:
		case <-expired:
			return 0, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}
