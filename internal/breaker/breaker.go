package breaker

import (
	"sync"
	"time"
)

// State is the position of the circuit breaker
type State int

const (
	// Closed lets every call through and counts failures
	Closed State = iota
	// HalfOpen lets calls through after the cool-down to probe the provider
	HalfOpen
	// Open rejects calls until the cool-down has elapsed
	Open
)

func (state State) String() string {
	switch state {
	case Closed:
		return "CLOSED"
	case HalfOpen:
		return "HALF_OPEN"
	case Open:
		return "OPEN"
	default:
		return "UNKNOWN"
	}
}

// MarshalText renders the state name in JSON payloads
func (state State) MarshalText() ([]byte, error) {
	return []byte(state.String()), nil
}

// Snapshot is a consistent copy of the breaker fields
type Snapshot struct {
	State         State     `json:"state"`
	FailureCount  int       `json:"failure_count"`
	LastFailureAt time.Time `json:"last_failure_at"`
}

// CircuitBreaker counts provider failures and fails fast once a threshold is reached.
// It owns no timers: time is sampled on IsAvailable and RecordFailure.
//
// Once the cool-down has elapsed every caller that sees HALF_OPEN is allowed
// through, so concurrent probes are not limited to one.
type CircuitBreaker struct {
	failureTimeout   time.Duration
	failureThreshold int
	now              func() time.Time

	mutex         sync.Mutex
	state         State
	failureCount  int
	lastFailureAt time.Time
}

// Option configures a CircuitBreaker
type Option func(*CircuitBreaker)

// WithClock replaces time.Now as the breaker clock
func WithClock(now func() time.Time) Option {
	return func(circuitBreaker *CircuitBreaker) {
		circuitBreaker.now = now
	}
}

// New creates a closed breaker that opens after failureThreshold failures
// and stays open for failureTimeout after the last one
func New(failureTimeout time.Duration, failureThreshold int, options ...Option) *CircuitBreaker {
	circuitBreaker := &CircuitBreaker{
		failureTimeout:   failureTimeout,
		failureThreshold: failureThreshold,
		now:              time.Now,
		state:            Closed,
	}
	for _, option := range options {
		option(circuitBreaker)
	}
	return circuitBreaker
}

// IsAvailable reports whether a guarded call may proceed.
// An open breaker whose cool-down has elapsed moves to HALF_OPEN here.
func (circuitBreaker *CircuitBreaker) IsAvailable() bool {
	circuitBreaker.mutex.Lock()
	defer circuitBreaker.mutex.Unlock()

	if circuitBreaker.state != Open {
		return true
	}
	if circuitBreaker.now().After(circuitBreaker.lastFailureAt.Add(circuitBreaker.failureTimeout)) {
		circuitBreaker.state = HalfOpen
		return true
	}
	return false
}

// RecordFailure counts a failed guarded call and opens the breaker at the threshold.
// In HALF_OPEN the count is already at or past the threshold, so one failure re-opens it.
func (circuitBreaker *CircuitBreaker) RecordFailure() {
	circuitBreaker.mutex.Lock()
	defer circuitBreaker.mutex.Unlock()

	circuitBreaker.failureCount++
	circuitBreaker.lastFailureAt = circuitBreaker.now()
	if circuitBreaker.failureCount >= circuitBreaker.failureThreshold {
		circuitBreaker.state = Open
	}
}

// Reset closes the breaker and clears the failure count
func (circuitBreaker *CircuitBreaker) Reset() {
	circuitBreaker.mutex.Lock()
	defer circuitBreaker.mutex.Unlock()

	circuitBreaker.failureCount = 0
	circuitBreaker.state = Closed
}

// State returns the current state without advancing it
func (circuitBreaker *CircuitBreaker) State() State {
	circuitBreaker.mutex.Lock()
	defer circuitBreaker.mutex.Unlock()
	return circuitBreaker.state
}

// Snapshot returns all breaker fields read under one lock
func (circuitBreaker *CircuitBreaker) Snapshot() Snapshot {
	circuitBreaker.mutex.Lock()
	defer circuitBreaker.mutex.Unlock()
	return Snapshot{
		State:         circuitBreaker.state,
		FailureCount:  circuitBreaker.failureCount,
		LastFailureAt: circuitBreaker.lastFailureAt,
	}
}
