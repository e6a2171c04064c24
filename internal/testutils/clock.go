package testutils

import (
	"sync"
	"time"
)

// FakeClock is a manually advanced clock shared by cache and breaker tests
type FakeClock struct {
	mutex   sync.Mutex
	current time.Time
}

// NewFakeClock starts a clock at a fixed instant
func NewFakeClock() *FakeClock {
	return &FakeClock{current: time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)}
}

// Now returns the current fake time
func (clock *FakeClock) Now() time.Time {
	clock.mutex.Lock()
	defer clock.mutex.Unlock()
	return clock.current
}

// Advance moves the clock forward by duration
func (clock *FakeClock) Advance(duration time.Duration) {
	clock.mutex.Lock()
	clock.current = clock.current.Add(duration)
	clock.mutex.Unlock()
}
