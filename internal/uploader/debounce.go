package uploader

import (
	"sync"
	"time"
)

// settler fires a callback once a key has been quiet for the settle
// duration. Every new event for the key resets its timer, so a file being
// written in several chunks is handled once, after the last write.
type settler struct {
	mu       sync.Mutex
	timers   map[string]*time.Timer
	duration time.Duration
	closed   bool
}

func newSettler(duration time.Duration) *settler {
	return &settler{timers: make(map[string]*time.Timer), duration: duration}
}

// Touch (re)arms the timer for key.
func (s *settler) Touch(key string, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if t, ok := s.timers[key]; ok {
		t.Stop()
	}
	s.timers[key] = time.AfterFunc(s.duration, func() {
		s.mu.Lock()
		delete(s.timers, key)
		closed := s.closed
		s.mu.Unlock()
		if !closed {
			fn()
		}
	})
}

// Pending returns the number of armed timers.
func (s *settler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Close stops every pending timer; later Touch calls are ignored.
func (s *settler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for k, t := range s.timers {
		t.Stop()
		delete(s.timers, k)
	}
}
