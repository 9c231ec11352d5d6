package session

import (
	"sync"
	"time"
)

// ExpiryScheduler runs one deferred function per session id. Timers are
// fire-and-forget courtesy updates; redemption re-validates the time window
// against the store, so a lost or late firing is a display problem only.
type ExpiryScheduler struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewExpiryScheduler() *ExpiryScheduler {
	return &ExpiryScheduler{timers: make(map[string]*time.Timer)}
}

// Schedule registers fn to run once after d. Scheduling again under the same
// id replaces the pending timer.
func (s *ExpiryScheduler) Schedule(id string, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if timer, ok := s.timers[id]; ok {
		timer.Stop()
	}
	s.timers[id] = time.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()
		fn()
	})
}

// Cancel stops the pending timer for id, reporting whether one was pending.
func (s *ExpiryScheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	timer, ok := s.timers[id]
	if !ok {
		return false
	}
	delete(s.timers, id)
	return timer.Stop()
}

// Stop cancels every pending timer.
func (s *ExpiryScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}
