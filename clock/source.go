package clock

import (
	"sync"
	"time"
)

// Source reports time elapsed since some fixed origin.
type Source interface {
	Now() time.Duration
}

// WallSource reads the monotonic wall clock.
type WallSource struct {
	start time.Time
}

func NewWallSource() *WallSource {
	return &WallSource{start: time.Now()}
}

func (s *WallSource) Now() time.Duration {
	return time.Since(s.start)
}

// FixedStepSource advances by one frame interval on every call to Now.
// Offline recording uses it so frame times do not depend on how long
// rendering takes.
type FixedStepSource struct {
	step time.Duration
	n    int64
}

func NewFixedStepSource(fps int) *FixedStepSource {
	if fps <= 0 {
		fps = 60
	}
	return &FixedStepSource{step: time.Second / time.Duration(fps)}
}

func (s *FixedStepSource) Now() time.Duration {
	t := time.Duration(s.n) * s.step
	s.n++
	return t
}

// ManualSource is driven explicitly by the caller.
type ManualSource struct {
	mu  sync.Mutex
	now time.Duration
}

func NewManualSource() *ManualSource {
	return &ManualSource{}
}

func (s *ManualSource) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *ManualSource) Set(t time.Duration) {
	s.mu.Lock()
	s.now = t
	s.mu.Unlock()
}

func (s *ManualSource) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	s.mu.Unlock()
}
