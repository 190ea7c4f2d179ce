package effects

import "time"

// RefreshPolicy decides what re-applying an active aura does.
type RefreshPolicy int

const (
	// RefreshReplace restarts the duration.
	RefreshReplace RefreshPolicy = iota
	// RefreshExtend adds the full duration to what is left.
	RefreshExtend
	// RefreshNoop leaves an active aura untouched.
	RefreshNoop
)

func (p RefreshPolicy) String() string {
	switch p {
	case RefreshExtend:
		return "extend"
	case RefreshNoop:
		return "noop"
	default:
		return "replace"
	}
}

// Aura is a timed buff or debuff with optional periodic ticks and stacks.
// A zero Duration means the aura lasts until faded.
type Aura struct {
	Label         string
	Duration      time.Duration
	TickInterval  time.Duration
	MaxStacks     int
	InitialStacks int
	Refresh       RefreshPolicy

	// Magnitude is a value snapshotted on apply, such as per-tick damage.
	Magnitude float64

	active        bool
	stacks        int
	remaining     time.Duration
	tickRemaining time.Duration
	sinceTick     time.Duration

	gains  int
	uptime time.Duration

	OnGain func(a *Aura)
	// OnTick fires once per tick with scale 1, and once more at expiry with
	// scale in (0, 1) when time has elapsed since the last full tick.
	OnTick         func(a *Aura, scale float64)
	OnFade         func(a *Aura)
	OnStacksChange func(a *Aura, oldStacks, newStacks int)
}

// NewAura returns a ready-to-use aura instance.
func NewAura(label string, duration time.Duration, maxStacks int) *Aura {
	return &Aura{
		Label:     label,
		Duration:  duration,
		MaxStacks: maxStacks,
	}
}

// Active reports whether the aura is currently active.
func (a *Aura) Active() bool {
	return a != nil && a.active
}

// Stacks returns the current stack count.
func (a *Aura) Stacks() int {
	if a == nil {
		return 0
	}
	return a.stacks
}

// Remaining returns remaining duration if active, zero otherwise.
func (a *Aura) Remaining() time.Duration {
	if a == nil || !a.active {
		return 0
	}
	return a.remaining
}

// Gains returns how many times the aura went from inactive to active since
// the last Reset.
func (a *Aura) Gains() int { return a.gains }

// Uptime returns the accumulated active time since the last Reset.
func (a *Aura) Uptime() time.Duration { return a.uptime }

// Apply activates the aura or, when already active, follows the refresh
// policy. Stacks grow by one per apply up to MaxStacks. It reports whether
// the aura changed.
func (a *Aura) Apply() bool {
	if a.active {
		if a.Refresh == RefreshNoop {
			return false
		}
		if a.Duration > 0 {
			switch a.Refresh {
			case RefreshExtend:
				a.remaining += a.Duration
			default:
				a.remaining = a.Duration
			}
		}
		a.addStack()
		return true
	}
	a.active = true
	a.gains++
	a.remaining = a.Duration
	a.tickRemaining = a.TickInterval
	a.sinceTick = 0
	old := a.stacks
	a.stacks = max(1, a.InitialStacks)
	if a.MaxStacks > 0 && a.stacks > a.MaxStacks {
		a.stacks = a.MaxStacks
	}
	if a.OnGain != nil {
		a.OnGain(a)
	}
	if a.OnStacksChange != nil && old != a.stacks {
		a.OnStacksChange(a, old, a.stacks)
	}
	return true
}

func (a *Aura) addStack() {
	if a.MaxStacks <= 1 || a.stacks >= a.MaxStacks {
		return
	}
	old := a.stacks
	a.stacks++
	if a.OnStacksChange != nil {
		a.OnStacksChange(a, old, a.stacks)
	}
}

// RemoveStack consumes one stack, fading the aura at zero.
func (a *Aura) RemoveStack() {
	if !a.active {
		return
	}
	old := a.stacks
	a.stacks--
	if a.stacks <= 0 {
		a.Fade()
		return
	}
	if a.OnStacksChange != nil {
		a.OnStacksChange(a, old, a.stacks)
	}
}

// NextEvent returns the time until the aura's next tick or expiry. The
// second result is false when nothing is pending.
func (a *Aura) NextEvent() (time.Duration, bool) {
	if !a.active {
		return 0, false
	}
	next, ok := time.Duration(0), false
	if a.Duration > 0 {
		next, ok = a.remaining, true
	}
	if a.TickInterval > 0 && (!ok || a.tickRemaining < next) {
		next, ok = a.tickRemaining, true
	}
	return next, ok
}

// Advance moves the aura forward by dt, firing due ticks and fading on
// expiry. Callers step no further than NextEvent so at most one tick is due.
func (a *Aura) Advance(dt time.Duration) {
	a.advance(dt, true)
}

// AdvanceLast moves the aura forward by the encounter's final step. Due
// full ticks fire, but an expiry landing on the end of the encounter
// fades without a partial tick.
func (a *Aura) AdvanceLast(dt time.Duration) {
	a.advance(dt, false)
}

func (a *Aura) advance(dt time.Duration, partial bool) {
	if !a.active || dt <= 0 {
		return
	}
	a.uptime += dt
	if a.TickInterval > 0 {
		a.tickRemaining -= dt
		a.sinceTick += dt
		for a.active && a.tickRemaining <= 0 {
			a.tickRemaining += a.TickInterval
			a.sinceTick = 0
			if a.OnTick != nil {
				a.OnTick(a, 1)
			}
		}
	}
	if !a.active || a.Duration <= 0 {
		return
	}
	a.remaining -= dt
	if a.remaining > 0 {
		return
	}
	a.remaining = 0
	if partial && a.TickInterval > 0 && a.sinceTick > 0 && a.OnTick != nil {
		a.OnTick(a, float64(a.sinceTick)/float64(a.TickInterval))
	}
	a.Fade()
}

// Fade deactivates the aura and clears its stacks.
func (a *Aura) Fade() {
	if !a.active {
		return
	}
	a.active = false
	old := a.stacks
	a.stacks = 0
	a.remaining = 0
	a.tickRemaining = 0
	a.sinceTick = 0
	if a.OnFade != nil {
		a.OnFade(a)
	}
	if a.OnStacksChange != nil && old != 0 {
		a.OnStacksChange(a, old, 0)
	}
}

// Reset silently clears all transient state, including uptime bookkeeping.
func (a *Aura) Reset() {
	a.active = false
	a.stacks = 0
	a.remaining = 0
	a.tickRemaining = 0
	a.sinceTick = 0
	a.gains = 0
	a.uptime = 0
}
