package cart

import (
	"sync"
	"time"
)

// scheduler coalesces rapid edits into one deferred task per key. Scheduling
// a task for a key that already has one pending cancels the prior task, so at
// most one task per key is ever waiting. Different keys fire independently.
type scheduler struct {
	mu      sync.Mutex
	delay   time.Duration
	pending map[int64]*time.Timer
	stopped bool
}

func newScheduler(delay time.Duration) *scheduler {
	return &scheduler{
		delay:   delay,
		pending: make(map[int64]*time.Timer),
	}
}

// Schedule queues fn to run after the debounce delay, replacing any task
// already pending for the key.
func (s *scheduler) Schedule(key int64, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if t, ok := s.pending[key]; ok {
		t.Stop()
	}
	s.pending[key] = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		delete(s.pending, key)
		stopped := s.stopped
		s.mu.Unlock()
		if stopped {
			return
		}
		fn()
	})
}

// Cancel drops the pending task for a key, if any.
func (s *scheduler) Cancel(key int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.pending[key]; ok {
		t.Stop()
		delete(s.pending, key)
	}
}

// Reset drops every pending task but keeps the scheduler usable.
func (s *scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, t := range s.pending {
		t.Stop()
		delete(s.pending, key)
	}
}

// Stop abandons every pending task. Used when the session navigates away.
func (s *scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for key, t := range s.pending {
		t.Stop()
		delete(s.pending, key)
	}
}
