package breaker

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dalfonso89/account-exchange-service/internal/testutils"
)

func TestCircuitBreaker_StartsClosed(t *testing.T) {
	circuitBreaker := New(time.Second, 3)

	assert.True(t, circuitBreaker.IsAvailable())
	snapshot := circuitBreaker.Snapshot()
	assert.Equal(t, Closed, snapshot.State)
	assert.Zero(t, snapshot.FailureCount)
}

func TestCircuitBreaker_OpensAtThreshold(t *testing.T) {
	clock := testutils.NewFakeClock()
	circuitBreaker := New(time.Second, 3, WithClock(clock.Now))

	circuitBreaker.RecordFailure()
	circuitBreaker.RecordFailure()
	assert.Equal(t, Closed, circuitBreaker.State())
	assert.True(t, circuitBreaker.IsAvailable())

	circuitBreaker.RecordFailure()
	assert.Equal(t, Open, circuitBreaker.State())
	assert.False(t, circuitBreaker.IsAvailable())
	assert.Equal(t, clock.Now(), circuitBreaker.Snapshot().LastFailureAt)
}

func TestCircuitBreaker_HalfOpenAfterTimeout(t *testing.T) {
	clock := testutils.NewFakeClock()
	circuitBreaker := New(1000*time.Millisecond, 2, WithClock(clock.Now))
	circuitBreaker.RecordFailure()
	circuitBreaker.RecordFailure()

	clock.Advance(500 * time.Millisecond)
	assert.False(t, circuitBreaker.IsAvailable())
	assert.Equal(t, Open, circuitBreaker.State())

	// the cool-down must be strictly exceeded
	clock.Advance(500 * time.Millisecond)
	assert.False(t, circuitBreaker.IsAvailable())

	clock.Advance(time.Millisecond)
	assert.True(t, circuitBreaker.IsAvailable())
	assert.Equal(t, HalfOpen, circuitBreaker.State())

	// half-open behaves like closed for gating
	assert.True(t, circuitBreaker.IsAvailable())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	clock := testutils.NewFakeClock()
	circuitBreaker := New(time.Second, 2, WithClock(clock.Now))
	circuitBreaker.RecordFailure()
	circuitBreaker.RecordFailure()
	clock.Advance(2 * time.Second)
	require.True(t, circuitBreaker.IsAvailable())

	circuitBreaker.RecordFailure()

	snapshot := circuitBreaker.Snapshot()
	assert.Equal(t, Open, snapshot.State)
	assert.Equal(t, 3, snapshot.FailureCount)
	assert.False(t, circuitBreaker.IsAvailable())
}

func TestCircuitBreaker_ResetFromAnyState(t *testing.T) {
	clock := testutils.NewFakeClock()
	circuitBreaker := New(time.Second, 1, WithClock(clock.Now))

	circuitBreaker.RecordFailure()
	require.Equal(t, Open, circuitBreaker.State())
	circuitBreaker.Reset()
	assert.Equal(t, Closed, circuitBreaker.State())
	assert.Zero(t, circuitBreaker.Snapshot().FailureCount)

	circuitBreaker.RecordFailure()
	clock.Advance(2 * time.Second)
	require.True(t, circuitBreaker.IsAvailable())
	require.Equal(t, HalfOpen, circuitBreaker.State())
	circuitBreaker.Reset()
	assert.Equal(t, Closed, circuitBreaker.State())
}

func TestCircuitBreaker_ConcurrentFailuresAreCounted(t *testing.T) {
	circuitBreaker := New(time.Minute, 1000)

	var waitGroup sync.WaitGroup
	for worker := 0; worker < 50; worker++ {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			for i := 0; i < 20; i++ {
				circuitBreaker.RecordFailure()
			}
		}()
	}
	waitGroup.Wait()

	snapshot := circuitBreaker.Snapshot()
	assert.Equal(t, 1000, snapshot.FailureCount)
	assert.Equal(t, Open, snapshot.State)
}

func TestCircuitBreaker_ConcurrentProbesAreNotSerialized(t *testing.T) {
	clock := testutils.NewFakeClock()
	circuitBreaker := New(time.Second, 1, WithClock(clock.Now))
	circuitBreaker.RecordFailure()
	clock.Advance(2 * time.Second)

	var (
		waitGroup sync.WaitGroup
		mutex     sync.Mutex
		admitted  int
	)
	for worker := 0; worker < 10; worker++ {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			if circuitBreaker.IsAvailable() {
				mutex.Lock()
				admitted++
				mutex.Unlock()
			}
		}()
	}
	waitGroup.Wait()

	assert.Equal(t, 10, admitted)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "CLOSED", Closed.String())
	assert.Equal(t, "HALF_OPEN", HalfOpen.String())
	assert.Equal(t, "OPEN", Open.String())
	assert.Equal(t, "UNKNOWN", State(9).String())
}
