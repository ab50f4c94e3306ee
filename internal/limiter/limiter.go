package limiter

import (
	"runtime"
	"time"
)

// CPULimiter throttles a busy loop to roughly a maximum CPU percentage
type CPULimiter struct {
	maxPercent float64
	workTime   time.Duration
	lastSleep  time.Time
	sleep      func(time.Duration)
}

// NewCPULimiter creates a new CPU limiter
func NewCPULimiter(maxPercent float64) *CPULimiter {
	return &CPULimiter{
		maxPercent: maxPercent,
		workTime:   10 * time.Millisecond,
		lastSleep:  time.Now(),
		sleep:      time.Sleep,
	}
}

// Enabled reports whether Throttle will ever sleep
func (l *CPULimiter) Enabled() bool {
	return l.maxPercent > 0 && l.maxPercent < 100
}

// SleepDuration is the pause taken after each work window
func (l *CPULimiter) SleepDuration() time.Duration {
	if !l.Enabled() {
		return 0
	}
	// To use maxPercent of the CPU, sleep (100-maxPercent)/maxPercent per unit of work
	return time.Duration(float64(l.workTime) * ((100.0 - l.maxPercent) / l.maxPercent))
}

// Throttle sleeps once a full work window has elapsed since the last pause
func (l *CPULimiter) Throttle() {
	if !l.Enabled() {
		return
	}

	if time.Since(l.lastSleep) > l.workTime {
		l.sleep(l.SleepDuration())
		l.lastSleep = time.Now()
	}

	runtime.Gosched()
}

// SetMaxPercent updates the maximum CPU percentage
func (l *CPULimiter) SetMaxPercent(maxPercent float64) {
	l.maxPercent = maxPercent
}
