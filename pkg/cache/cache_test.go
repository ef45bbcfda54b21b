package cache

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(now *time.Time) *TTLCache {
	c := NewTTLCache()
	c.now = func() time.Time { return *now }
	return c
}

func TestCacheGetSet(t *testing.T) {
	now := time.Now()
	c := newTestCache(&now)

	c.Set("a", 1, time.Minute)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCacheExpiry(t *testing.T) {
	now := time.Now()
	c := newTestCache(&now)

	c.Set("a", 1, time.Minute)

	now = now.Add(59 * time.Second)
	_, ok := c.Get("a")
	assert.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok = c.Get("a")
	assert.False(t, ok)
}

func TestCacheSweep(t *testing.T) {
	now := time.Now()
	c := newTestCache(&now)

	c.Set("expired", 1, time.Millisecond)
	now = now.Add(time.Second)

	// Expired entries linger until the periodic sweep runs.
	assert.Equal(t, 1, c.Len())

	for i := 0; i < sweepInterval; i++ {
		c.Set(string(rune('a'+i)), i, time.Minute)
	}
	assert.Equal(t, sweepInterval, c.Len())
	_, ok := c.Get("expired")
	assert.False(t, ok)
}

func TestDoCachesResults(t *testing.T) {
	now := time.Now()
	c := newTestCache(&now)

	calls := 0
	fn := func() (string, error) {
		calls++
		return "value", nil
	}

	v, err := Do(c, "k", time.Minute, fn)
	require.NoError(t, err)
	assert.Equal(t, "value", v)

	v, err = Do(c, "k", time.Minute, fn)
	require.NoError(t, err)
	assert.Equal(t, "value", v)
	assert.Equal(t, 1, calls)

	now = now.Add(2 * time.Minute)
	_, err = Do(c, "k", time.Minute, fn)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDoNeverCachesErrors(t *testing.T) {
	now := time.Now()
	c := newTestCache(&now)

	calls := 0
	fn := func() (int, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("transient")
		}
		return 42, nil
	}

	_, err := Do(c, "k", time.Minute, fn)
	require.Error(t, err)

	v, err := Do(c, "k", time.Minute, fn)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 2, calls)
}

func TestKeyDistinguishesArguments(t *testing.T) {
	assert.NotEqual(t, Key("fn", "ab", "c"), Key("fn", "a", "bc"))
	assert.NotEqual(t, Key("fn", 1), Key("fn", "1"))
	assert.Equal(t, Key("fn", []string{"a"}), Key("fn", []string{"a"}))
}

func TestConnSingleton(t *testing.T) {
	created := 0
	conn := NewConn(func() (int, error) {
		created++
		return created, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := conn.Get()
			assert.NoError(t, err)
			assert.Equal(t, 1, v)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, created)
}

func TestConnRetriesFailedFactory(t *testing.T) {
	calls := 0
	conn := NewConn(func() (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("dial failed")
		}
		return "handle", nil
	})

	_, err := conn.Get()
	require.Error(t, err)

	v, err := conn.Get()
	require.NoError(t, err)
	assert.Equal(t, "handle", v)
}

func TestConnClose(t *testing.T) {
	conn := NewConn(func() (string, error) { return "handle", nil })

	// Close before first Get is a no-op.
	closed := 0
	closer := func(string) error { closed++; return nil }
	require.NoError(t, conn.Close(closer))
	assert.Equal(t, 0, closed)

	_, err := conn.Get()
	require.NoError(t, err)
	require.NoError(t, conn.Close(closer))
	assert.Equal(t, 1, closed)
}
