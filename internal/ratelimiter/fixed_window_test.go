package ratelimiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedWindowLimiter(t *testing.T) {
	rl := NewFixedWindowLimiter(2, time.Minute)
	start := time.Now()
	rl.now = func() time.Time { return start }

	ok, _ := rl.Allow("1.1.1.1")
	assert.True(t, ok)
	ok, _ = rl.Allow("1.1.1.1")
	assert.True(t, ok)

	ok, retry := rl.Allow("1.1.1.1")
	assert.False(t, ok)
	assert.Equal(t, time.Minute, retry)

	ok, _ = rl.Allow("2.2.2.2")
	assert.True(t, ok, "keys are limited independently")

	rl.now = func() time.Time { return start.Add(time.Minute) }
	ok, _ = rl.Allow("1.1.1.1")
	assert.True(t, ok, "a new window opens once the old one has passed")
}

func TestFixedWindowTimerClearsKey(t *testing.T) {
	rl := NewFixedWindowLimiter(1, 20*time.Millisecond)

	ok, _ := rl.Allow("k")
	assert.True(t, ok)

	assert.Eventually(t, func() bool {
		rl.Lock()
		defer rl.Unlock()
		return len(rl.clients) == 0
	}, time.Second, 5*time.Millisecond)
}
