package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "7:shows", Key(7, "shows"))
	assert.Equal(t, "7:shows:channel=ard", Key(7, "shows", "channel=ard"))
	assert.Equal(t, "8:topics::", Key(8, "topics", "", ""))
	assert.NotEqual(t, Key(1, "shows", "q"), Key(2, "shows", "q"))
}

func TestSetGet(t *testing.T) {
	c := New(time.Minute, time.Minute)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("k", []int{1, 2})
	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, []int{1, 2}, v)

	stats := c.GetStats()
	assert.Equal(t, 1, stats.ItemCount)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestExpiry(t *testing.T) {
	c := New(10*time.Millisecond, time.Minute)
	c.Set("short", "v")

	assert.Eventually(t, func() bool {
		_, ok := c.Get("short")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestDeleteAndClear(t *testing.T) {
	c := New(time.Minute, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.ItemCount())

	c.Clear()
	assert.Zero(t, c.ItemCount())
}

func TestRemember(t *testing.T) {
	c := New(time.Minute, time.Minute)
	calls := 0
	compute := func() (any, error) {
		calls++
		return calls, nil
	}

	v, err := c.Remember("k", compute)
	assert.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = c.Remember("k", compute)
	assert.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, calls)

	boom := errors.New("boom")
	_, err = c.Remember("bad", func() (any, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	_, ok := c.Get("bad")
	assert.False(t, ok)
}
