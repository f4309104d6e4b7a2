package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)}
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

func TestVolatile_ExpiryAtReadTime(t *testing.T) {
	const expire = 24 * time.Hour

	tests := []struct {
		name  string
		delta time.Duration
		hit   bool
	}{
		{"fresh", 0, true},
		{"just before expiry", expire - time.Nanosecond, true},
		{"exactly at expiry", expire, false},
		{"long after expiry", 3 * expire, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newFakeClock()
			c := NewVolatile[string](expire, WithClock(clock.Now))
			c.Put("harga emas", "result")

			clock.Advance(tt.delta)
			v, ok := c.Get("harga emas")

			assert.Equal(t, tt.hit, ok)
			if tt.hit {
				assert.Equal(t, "result", v)
			} else {
				assert.Empty(t, v)
			}
		})
	}
}

func TestVolatile_PutRefreshesTimestamp(t *testing.T) {
	clock := newFakeClock()
	c := NewVolatile[int](time.Hour, WithClock(clock.Now))

	c.Put("k", 1)
	clock.Advance(50 * time.Minute)
	c.Put("k", 2)
	clock.Advance(50 * time.Minute)

	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestVolatile_Sweep(t *testing.T) {
	clock := newFakeClock()
	c := NewVolatile[string](time.Hour, WithClock(clock.Now))

	c.Put("old", "a")
	clock.Advance(40 * time.Minute)
	c.Put("new", "b")
	clock.Advance(20 * time.Minute)

	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, 1, c.Len())

	_, ok := c.Get("new")
	assert.True(t, ok)
}

func TestVolatile_KeysAreExact(t *testing.T) {
	c := NewVolatile[string](time.Hour)
	c.Put("Harga Emas", "x")

	_, ok := c.Get("harga emas")
	assert.False(t, ok)
}

func TestVolatile_ConcurrentAccess(t *testing.T) {
	c := NewVolatile[int](time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			c.Put("k", i)
		}(i)
		go func() {
			defer wg.Done()
			c.Get("k")
			c.Sweep()
		}()
	}
	wg.Wait()

	_, ok := c.Get("k")
	assert.True(t, ok)
}
