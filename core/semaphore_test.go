package core

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewSemaphore_Invalid verifies negative counts fail at construction
func TestNewSemaphore_Invalid(t *testing.T) {
	s, err := NewSemaphore(-1)
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrInvalidCount)
}

// TestSemaphore_ExactlyNAcquire verifies the count bound
// Given: A semaphore with count 3
// When: Three acquires succeed and a fourth is attempted
// Then: The fourth blocks until a release
func TestSemaphore_ExactlyNAcquire(t *testing.T) {
	for _, n := range []int{1, 3, 8} {
		s, err := NewSemaphore(n)
		require.NoError(t, err)

		for range n {
			require.True(t, s.TryAcquire(0), "acquire within count should not block")
		}
		assert.Zero(t, s.Count())

		var got atomic.Bool
		done := make(chan struct{})
		go func() {
			defer close(done)
			s.Acquire()
			got.Store(true)
		}()

		time.Sleep(20 * time.Millisecond)
		assert.False(t, got.Load(), "n=%d: acquire beyond count did not block", n)

		s.Release(1)
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("n=%d: blocked acquire not released", n)
		}
	}
}

// TestSemaphore_TryAcquireTimeout verifies failure leaves the count intact
func TestSemaphore_TryAcquireTimeout(t *testing.T) {
	s, err := NewSemaphore(0)
	require.NoError(t, err)

	start := time.Now()
	assert.False(t, s.TryAcquire(30*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 25*time.Millisecond)
	assert.Zero(t, s.Count())

	s.Release(2)
	assert.True(t, s.TryAcquire(time.Second))
	assert.Equal(t, 1, s.Count())
}

// TestSemaphore_ReleaseMany verifies Release(n) wakes up to n waiters
func TestSemaphore_ReleaseMany(t *testing.T) {
	s, err := NewSemaphore(0)
	require.NoError(t, err)

	const waiters = 4
	var acquired atomic.Int32
	var wg sync.WaitGroup
	for range waiters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.TryAcquire(500 * time.Millisecond) {
				acquired.Add(1)
			}
		}()
	}

	time.Sleep(20 * time.Millisecond)
	s.Release(3)
	wg.Wait()

	assert.Equal(t, int32(3), acquired.Load())
	assert.Zero(t, s.Count())
}

// TestSemaphore_ReleaseNonPositive verifies n <= 0 is ignored
func TestSemaphore_ReleaseNonPositive(t *testing.T) {
	s, err := NewSemaphore(1)
	require.NoError(t, err)

	s.Release(0)
	s.Release(-5)
	assert.Equal(t, 1, s.Count())
}

// TestSemaphore_AcquireContext verifies cancellation
func TestSemaphore_AcquireContext(t *testing.T) {
	s, err := NewSemaphore(0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	assert.ErrorIs(t, s.AcquireContext(ctx), context.Canceled)
	assert.Zero(t, s.Count())

	s.Release(1)
	assert.NoError(t, s.AcquireContext(context.Background()))
}
