package id

import (
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Unique(t *testing.T) {
	assert.NotEqual(t, New(), New())
	assert.Len(t, New(), 26)
}

func TestNewAt_SortsByTime(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	earlier := NewAt(t0)
	later := NewAt(t0.Add(time.Second))
	assert.Less(t, earlier, later)

	parsed, err := ulid.Parse(earlier)
	require.NoError(t, err)
	assert.Equal(t, ulid.Timestamp(t0), parsed.Time())
}

func TestNewAt_SameMillisecondIncreases(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	prev := NewAt(t0)
	for i := 0; i < 1000; i++ {
		next := NewAt(t0)
		require.Less(t, prev, next, "call %d", i)
		prev = next
	}
}

func TestNewAt_ConcurrentUnique(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	const n = 64
	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = NewAt(t0)
		}(i)
	}
	wg.Wait()

	seen := make(map[string]struct{}, n)
	for _, v := range ids {
		seen[v] = struct{}{}
	}
	assert.Len(t, seen, n)
}
