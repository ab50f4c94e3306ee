package limiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSleepDuration(t *testing.T) {
	tests := []struct {
		percent  float64
		expected time.Duration
	}{
		{0, 0},
		{100, 0},
		{150, 0},
		{50, 10 * time.Millisecond},
		{20, 40 * time.Millisecond},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, NewCPULimiter(tt.percent).SleepDuration(), "percent=%v", tt.percent)
	}
}

func TestThrottleSleepsAfterWorkWindow(t *testing.T) {
	l := NewCPULimiter(50)
	var slept []time.Duration
	l.sleep = func(d time.Duration) { slept = append(slept, d) }

	// Within the first work window: no pause
	l.lastSleep = time.Now().Add(time.Hour)
	l.Throttle()
	assert.Empty(t, slept)

	l.lastSleep = time.Now().Add(-time.Second)
	l.Throttle()
	assert.Equal(t, []time.Duration{10 * time.Millisecond}, slept)
}

func TestThrottleDisabled(t *testing.T) {
	l := NewCPULimiter(0)
	called := false
	l.sleep = func(time.Duration) { called = true }
	l.lastSleep = time.Now().Add(-time.Second)

	l.Throttle()
	assert.False(t, called)

	l.SetMaxPercent(25)
	assert.True(t, l.Enabled())
}
