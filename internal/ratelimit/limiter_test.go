package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestAdmit_ExactlyLimitPerWindow(t *testing.T) {
	for _, limit := range []int{1, 20, 30} {
		t.Run(fmt.Sprintf("limit=%d", limit), func(t *testing.T) {
			clock := newFakeClock()
			l := New(limit, time.Minute, WithClock(clock.Now))

			for i := 0; i < limit; i++ {
				require.True(t, l.Admit("1.2.3.4"), "request %d", i+1)
				clock.Advance(time.Millisecond)
			}
			assert.False(t, l.Admit("1.2.3.4"))
			assert.Equal(t, 0, l.Remaining("1.2.3.4"))
		})
	}
}

func TestAdmit_RejectionIsNotRecorded(t *testing.T) {
	clock := newFakeClock()
	l := New(2, time.Minute, WithClock(clock.Now))

	require.True(t, l.Admit("c"))
	clock.Advance(30 * time.Second)
	require.True(t, l.Admit("c"))

	for i := 0; i < 5; i++ {
		assert.False(t, l.Admit("c"))
	}

	// the first stamp leaves the window; the rejections did not extend it
	clock.Advance(30*time.Second + time.Millisecond)
	assert.True(t, l.Admit("c"))
	assert.False(t, l.Admit("c"))
}

func TestAdmit_SucceedsAfterWindow(t *testing.T) {
	clock := newFakeClock()
	l := New(20, 60*time.Second, WithClock(clock.Now))

	for i := 0; i < 20; i++ {
		require.True(t, l.Admit("c"))
	}
	require.False(t, l.Admit("c"))

	clock.Advance(60 * time.Second)
	assert.True(t, l.Admit("c"))
}

func TestAdmit_ClientsAreIndependent(t *testing.T) {
	clock := newFakeClock()
	l := New(1, time.Minute, WithClock(clock.Now))

	assert.True(t, l.Admit("a"))
	assert.False(t, l.Admit("a"))
	assert.True(t, l.Admit("b"))
}

func TestAdmit_ZeroLimitDisables(t *testing.T) {
	l := New(0, time.Minute)
	for i := 0; i < 100; i++ {
		require.True(t, l.Admit("c"))
	}
	assert.Equal(t, 0, l.Clients())
}

func TestSweep_EvictsIdleClients(t *testing.T) {
	clock := newFakeClock()
	l := New(5, time.Minute, WithClock(clock.Now))

	l.Admit("idle")
	clock.Advance(45 * time.Second)
	l.Admit("active")
	clock.Advance(20 * time.Second)

	assert.Equal(t, 1, l.Sweep())
	assert.Equal(t, 1, l.Clients())
	assert.Equal(t, 4, l.Remaining("active"))
}

func TestAdmit_Concurrent(t *testing.T) {
	l := New(50, time.Minute)

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Admit("shared") {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, admitted)
}
