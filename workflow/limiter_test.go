package workflow

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestLimiterAllowsExactlyMaxAdvances(t *testing.T) {
	lim := NewHandoffLimiter(5)

	for i := 0; i < 5; i++ {
		assert.True(t, lim.TryAdvance(), "advance %d should be allowed", i+1)
	}
	for i := 0; i < 3; i++ {
		assert.False(t, lim.TryAdvance(), "advance past the limit must be refused")
	}
	assert.Equal(t, 5, lim.Count())
	assert.Equal(t, 0, lim.Remaining())
}

func TestLimiterZeroMaxIsUnlimited(t *testing.T) {
	lim := NewHandoffLimiter(0)

	for i := 0; i < 100; i++ {
		assert.True(t, lim.TryAdvance())
	}
	assert.Equal(t, -1, lim.Remaining())
}

func TestLimiterConcurrentAdvances(t *testing.T) {
	lim := NewHandoffLimiter(10)

	var wg sync.WaitGroup
	granted := make([]bool, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			granted[i] = lim.TryAdvance()
		}(i)
	}
	wg.Wait()

	n := 0
	for _, ok := range granted {
		if ok {
			n++
		}
	}
	assert.Equal(t, 10, n)
}

func TestLimiterBoundHoldsForAnyMax(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		max := rapid.IntRange(1, 50).Draw(rt, "max")
		attempts := rapid.IntRange(1, 120).Draw(rt, "attempts")

		lim := NewHandoffLimiter(max)

		allowed := 0
		for i := 0; i < attempts; i++ {
			if lim.TryAdvance() {
				allowed++
			}
		}

		want := attempts
		if want > max {
			want = max
		}
		if allowed != want {
			rt.Fatalf("allowed %d advances, want %d (max %d, attempts %d)", allowed, want, max, attempts)
		}
		if lim.Count() != want {
			rt.Fatalf("count %d, want %d", lim.Count(), want)
		}
	})
}
