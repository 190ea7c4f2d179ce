package effects

import "time"

// Timer counts down to zero. It never goes negative.
type Timer struct {
	remaining time.Duration
}

// Ready reports whether the timer has run out.
func (t *Timer) Ready() bool {
	return t.remaining <= 0
}

// Remaining returns the time left.
func (t *Timer) Remaining() time.Duration {
	return t.remaining
}

// Set starts the timer at d. Negative values clamp to zero.
func (t *Timer) Set(d time.Duration) {
	t.remaining = max(0, d)
}

// SetAtLeast raises the timer to d if it is currently lower.
func (t *Timer) SetAtLeast(d time.Duration) {
	if d > t.remaining {
		t.remaining = d
	}
}

// Advance counts down by dt and reports whether the timer reached zero
// during this step.
func (t *Timer) Advance(dt time.Duration) bool {
	if t.remaining <= 0 {
		return false
	}
	t.remaining -= dt
	if t.remaining <= 0 {
		t.remaining = 0
		return true
	}
	return false
}

// Reset makes the timer ready.
func (t *Timer) Reset() {
	t.remaining = 0
}
