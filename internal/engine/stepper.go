package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"tbc-warlock-sim/internal/spells"
)

// maxDecisions bounds the off-GCD actions a combatant can take before
// time has to move.
const maxDecisions = 8

// RunIteration simulates one encounter. The combat log, when this is the
// logged iteration, is flushed before returning, including on error.
func (c *Combatant) RunIteration(ctx context.Context, iteration int) (*IterationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.Reset(iteration)
	res := &IterationResult{Iteration: iteration, Duration: c.duration}
	c.result = res
	c.acc = newAccumulator(c.cfg.Simulation.AccumulatorLimit)
	defer func() {
		c.result, c.acc = nil, nil
	}()

	for c.fightTime < c.duration {
		c.dispatch()
		if c.pet != nil && c.err == nil {
			c.pet.dispatch()
		}
		if c.err == nil {
			c.advance(c.nextEvent())
		}
		if c.err != nil {
			rerr := newRuntimeError(iteration, c.fightTime, c.err)
			c.Logf("ERROR %s", rerr.Code)
			if err := c.log.Flush(); err != nil {
				return nil, fmt.Errorf("%w (flush: %v)", rerr, err)
			}
			return nil, rerr
		}
	}

	c.endAuras()
	c.acc.flushAll(res)
	c.collectAuras(res)
	if c.pet != nil {
		c.pet.collectAuras(res)
	}
	if err := c.log.Flush(); err != nil {
		return nil, err
	}
	return res, nil
}

// dispatch lets the combatant act at the current instant.
func (c *Combatant) dispatch() {
	if c.Casting() {
		return
	}
	if c.owner == nil {
		c.useCooldowns()
	} else {
		c.use(spells.Melee)
	}
	if !c.gcd.Ready() || c.wait > 0 {
		return
	}
	for range maxDecisions {
		if c.root().err != nil {
			return
		}
		d := c.policy.Decide(c)
		switch {
		case d.Cast != nil:
			started, err := d.Cast.StartCast(c)
			if err != nil {
				c.fail(err)
				return
			}
			if !started {
				c.fallback()
				return
			}
			if !(d.Cast.Def.OffGCD || d.Cast.Def.ZeroGCD) || c.Casting() {
				return
			}
		case d.Wait > 0:
			c.wait = d.Wait
			return
		default:
			c.fallback()
			return
		}
	}
}

// fallback recovers mana when the policy has nothing to cast, or idles for
// one GCD.
func (c *Combatant) fallback() {
	for _, id := range []spells.ID{spells.DarkPact, spells.LifeTap} {
		if a := c.castable(id); a != nil {
			if _, err := a.StartCast(c); err != nil {
				c.fail(err)
			}
			return
		}
	}
	c.wait = c.sheet.GCD()
}

// nextEvent returns the time until anything on the combatant or its pet
// changes, bounded by the end of the fight.
func (c *Combatant) nextEvent() time.Duration {
	remaining := c.duration - c.fightTime
	next := remaining
	c.pendingEvents(func(d time.Duration, ok bool) {
		if ok && d > 0 && d < next {
			next = d
		}
	})
	if next <= 0 {
		return remaining
	}
	return next
}

func (c *Combatant) pendingEvents(visit func(time.Duration, bool)) {
	for _, id := range c.order {
		visit(c.actions[id].NextEvent())
	}
	for _, id := range c.auraOrder {
		visit(c.auras[id].NextEvent())
	}
	visit(c.gcd.Remaining(), true)
	visit(c.mp5.Remaining(), true)
	visit(c.wait, true)
	if c.pet != nil {
		c.pet.pendingEvents(visit)
	}
}

// advance moves the combatant forward by dt. Only auras active at the start
// of the step advance, so an aura gained during the step starts fresh.
func (c *Combatant) advance(dt time.Duration) {
	if c.owner == nil {
		c.fightTime += dt
	} else {
		c.fightTime = c.owner.fightTime
	}
	c.gcd.Advance(dt)
	c.fiveSecondRule.Advance(dt)

	c.stepAuras = c.stepAuras[:0]
	for _, id := range c.auraOrder {
		if a := c.auras[id]; a.Active() {
			c.stepAuras = append(c.stepAuras, a)
		}
	}
	last := c.FightRemaining() <= 0
	for _, a := range c.stepAuras {
		if last {
			a.AdvanceLast(dt)
		} else {
			a.Advance(dt)
		}
	}
	for _, id := range c.order {
		if err := c.actions[id].Advance(c, dt); err != nil {
			c.fail(err)
		}
	}
	if c.mp5.Advance(dt) {
		c.regen()
		c.mp5.Set(mp5Interval)
	}
	c.wait = max(0, c.wait-dt)

	if c.pet != nil {
		c.pet.advance(dt)
	}
}

// regen applies a five second regeneration tick. Spirit only counts outside
// the five second rule.
func (c *Combatant) regen() {
	s := c.sheet
	amount := s.MP5()
	if c.fiveSecondRule.Ready() {
		amount += 5 * (0.001 + math.Sqrt(s.Intellect())*s.Spirit()*0.009327)
	}
	if amount <= 0 {
		return
	}
	gained := c.res.GainMana(amount)
	if c.owner != nil {
		return
	}
	c.Logf("MANA_GAIN MP5 +%.0f", gained)
	c.Record(spells.Outcome{ID: spells.Mp5, Tick: true, ManaGain: gained})
}

// endAuras fades everything still active when the fight ends.
func (c *Combatant) endAuras() {
	for _, id := range c.auraOrder {
		c.auras[id].Fade()
	}
	if c.pet != nil {
		c.pet.endAuras()
	}
}

func (c *Combatant) collectAuras(res *IterationResult) {
	for _, id := range c.auraOrder {
		a := c.auras[id]
		res.Auras[id].Gains += int64(a.Gains())
		res.Auras[id].Uptime += a.Uptime()
	}
}
