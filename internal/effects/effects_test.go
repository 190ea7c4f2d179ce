package effects

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestTimer(t *testing.T) {
	var tm Timer
	assert.True(t, tm.Ready())
	assert.False(t, tm.Advance(time.Second), "a ready timer does not fire again")

	tm.Set(3 * time.Second)
	assert.False(t, tm.Ready())
	assert.False(t, tm.Advance(2*time.Second))
	assert.Equal(t, time.Second, tm.Remaining())
	assert.True(t, tm.Advance(5*time.Second))
	assert.Equal(t, time.Duration(0), tm.Remaining())

	tm.Set(-time.Second)
	assert.True(t, tm.Ready())

	tm.Set(10 * time.Second)
	tm.SetAtLeast(4 * time.Second)
	assert.Equal(t, 10*time.Second, tm.Remaining())
	tm.SetAtLeast(12 * time.Second)
	assert.Equal(t, 12*time.Second, tm.Remaining())

	tm.Reset()
	assert.True(t, tm.Ready())
}

func TestTimerNeverNegative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var tm Timer
		tm.Set(time.Duration(rapid.Int64Range(-1e10, 1e11).Draw(t, "start")))
		steps := rapid.SliceOf(rapid.Int64Range(0, 1e10)).Draw(t, "steps")
		for _, s := range steps {
			tm.Advance(time.Duration(s))
			if tm.Remaining() < 0 {
				t.Fatalf("remaining went negative: %v", tm.Remaining())
			}
		}
	})
}

func TestAuraPeriodicTicks(t *testing.T) {
	a := NewAura("dot", 18*time.Second, 1)
	a.TickInterval = 3 * time.Second
	total := 0.0
	ticks := 0
	a.OnTick = func(_ *Aura, scale float64) {
		ticks++
		total += 10 * scale
	}

	require.True(t, a.Apply())
	elapsed := time.Duration(0)
	for elapsed < 10*time.Second {
		next, ok := a.NextEvent()
		require.True(t, ok)
		dt := min(next, 10*time.Second-elapsed)
		a.Advance(dt)
		elapsed += dt
	}

	assert.Equal(t, 3, ticks)
	assert.Equal(t, 30.0, total)
	assert.True(t, a.Active())
	assert.Equal(t, 8*time.Second, a.Remaining())
}

func TestAuraFullDurationHasNoPartialTick(t *testing.T) {
	a := NewAura("corruption", 18*time.Second, 1)
	a.TickInterval = 3 * time.Second
	var scales []float64
	a.OnTick = func(_ *Aura, scale float64) { scales = append(scales, scale) }
	faded := false
	a.OnFade = func(*Aura) { faded = true }

	a.Apply()
	for a.Active() {
		next, _ := a.NextEvent()
		a.Advance(next)
	}
	assert.Equal(t, []float64{1, 1, 1, 1, 1, 1}, scales)
	assert.True(t, faded)
	assert.Equal(t, 18*time.Second, a.Uptime())
}

func TestAuraPartialTickAtExpiry(t *testing.T) {
	a := NewAura("extended", 4*time.Second, 1)
	a.TickInterval = 3 * time.Second
	var scales []float64
	a.OnTick = func(_ *Aura, scale float64) { scales = append(scales, scale) }

	a.Apply()
	for a.Active() {
		next, _ := a.NextEvent()
		a.Advance(next)
	}
	require.Len(t, scales, 2)
	assert.Equal(t, 1.0, scales[0])
	assert.InDelta(t, 1.0/3, scales[1], 1e-12)
}

func TestAuraLastStepDropsPartialTick(t *testing.T) {
	a := NewAura("corruption", 10*time.Second, 1)
	a.TickInterval = 3 * time.Second
	var scales []float64
	faded := false
	a.OnTick = func(_ *Aura, scale float64) { scales = append(scales, scale) }
	a.OnFade = func(*Aura) { faded = true }

	a.Apply()
	for i := 0; i < 3; i++ {
		a.Advance(3 * time.Second)
	}
	a.AdvanceLast(time.Second)
	assert.Equal(t, []float64{1, 1, 1}, scales)
	assert.True(t, faded)
	assert.False(t, a.Active())
	assert.Equal(t, 10*time.Second, a.Uptime())
}

func TestAuraLastStepKeepsDueTicks(t *testing.T) {
	a := NewAura("corruption", 18*time.Second, 1)
	a.TickInterval = 3 * time.Second
	ticks := 0
	a.OnTick = func(*Aura, float64) { ticks++ }

	a.Apply()
	a.Advance(3 * time.Second)
	a.AdvanceLast(3 * time.Second)
	assert.Equal(t, 2, ticks)
	assert.True(t, a.Active())
}

func TestAuraRefreshPolicies(t *testing.T) {
	tests := []struct {
		policy RefreshPolicy
		want   time.Duration
		change bool
	}{
		{RefreshReplace, 10 * time.Second, true},
		{RefreshExtend, 16 * time.Second, true},
		{RefreshNoop, 6 * time.Second, false},
	}
	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			a := NewAura("buff", 10*time.Second, 1)
			a.Refresh = tt.policy
			gains := 0
			a.OnGain = func(*Aura) { gains++ }

			a.Apply()
			a.Advance(4 * time.Second)
			assert.Equal(t, tt.change, a.Apply())
			assert.Equal(t, tt.want, a.Remaining())
			assert.Equal(t, 1, gains, "refreshing is not a new gain")
			assert.Equal(t, 1, a.Gains())
		})
	}
}

func TestAuraStacks(t *testing.T) {
	a := NewAura("crusade", 10*time.Second, 3)
	var changes [][2]int
	a.OnStacksChange = func(_ *Aura, o, n int) { changes = append(changes, [2]int{o, n}) }

	for range 5 {
		a.Apply()
	}
	assert.Equal(t, 3, a.Stacks())

	b := NewAura("isb", 12*time.Second, 4)
	b.InitialStacks = 4
	b.Apply()
	assert.Equal(t, 4, b.Stacks())
	for range 3 {
		b.RemoveStack()
	}
	assert.True(t, b.Active())
	b.RemoveStack()
	assert.False(t, b.Active())
	assert.Equal(t, 0, b.Stacks())

	assert.Equal(t, [][2]int{{0, 1}, {1, 2}, {2, 3}}, changes)
}

func TestAuraPermanentHasNoEvent(t *testing.T) {
	a := NewAura("aura", 0, 1)
	a.Apply()
	_, ok := a.NextEvent()
	assert.False(t, ok)
	a.Advance(time.Hour)
	assert.True(t, a.Active())
	a.Fade()
	assert.False(t, a.Active())
}

func TestAuraResetIsSilent(t *testing.T) {
	a := NewAura("buff", 10*time.Second, 1)
	fades := 0
	a.OnFade = func(*Aura) { fades++ }
	a.Apply()
	a.Advance(time.Second)
	a.Reset()

	assert.False(t, a.Active())
	assert.Zero(t, fades)
	assert.Zero(t, a.Gains())
	assert.Zero(t, a.Uptime())
}

func TestAuraRemainingNeverNegative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := NewAura("dot", time.Duration(rapid.Int64Range(1, 3e10).Draw(t, "duration")), 1)
		a.TickInterval = time.Duration(rapid.Int64Range(0, 5e9).Draw(t, "interval"))
		a.Refresh = RefreshPolicy(rapid.IntRange(0, 2).Draw(t, "policy"))
		a.Apply()
		for _, s := range rapid.SliceOf(rapid.Int64Range(0, 1e10)).Draw(t, "steps") {
			if rapid.Bool().Draw(t, "reapply") {
				a.Apply()
			}
			next, ok := a.NextEvent()
			if !ok {
				break
			}
			a.Advance(min(next, time.Duration(s)))
			if a.Remaining() < 0 {
				t.Fatalf("remaining went negative")
			}
		}
	})
}
