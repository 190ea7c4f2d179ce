package engine

import (
	"time"

	"tbc-warlock-sim/internal/spells"
)

// Decision is what a policy wants the combatant to do next. A nil Cast
// with a zero Wait falls back to mana recovery.
type Decision struct {
	Cast *spells.Action
	Wait time.Duration
}

// Policy picks the next action whenever the combatant is free to act.
// Implementations must not keep per-iteration state: one policy value can
// be shared by combatants running on different workers.
type Policy interface {
	Decide(c *Combatant) Decision
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(c *Combatant) Decision

func (f PolicyFunc) Decide(c *Combatant) Decision { return f(c) }

// castable returns the registered action when it can start right now.
func (c *Combatant) castable(id spells.ID) *spells.Action {
	a := c.Action(id)
	if a == nil || !a.Ready(c) || !a.Usable(c) {
		return nil
	}
	return a
}

// defaultPolicy is the built-in priority. It keeps the curse and the damage
// over time spells up before spending the GCD on instants or the filler.
type defaultPolicy struct {
	curses  []spells.ID
	dots    []spells.ID
	instant []spells.ID
	filler  []spells.ID
}

func newDefaultPolicy(c *Combatant) *defaultPolicy {
	p := &defaultPolicy{}
	for _, id := range []spells.ID{spells.CurseOfTheElements, spells.CurseOfRecklessness, spells.CurseOfDoom, spells.CurseOfAgony} {
		if c.actions[id] != nil {
			p.curses = append(p.curses, id)
			// Curse of Agony is registered alongside Curse of Doom as its
			// end-of-fight replacement.
			if id != spells.CurseOfDoom {
				break
			}
		}
	}
	for _, id := range []spells.ID{spells.Immolate, spells.Corruption, spells.UnstableAffliction, spells.SiphonLife} {
		if c.actions[id] != nil {
			p.dots = append(p.dots, id)
		}
	}
	for _, id := range []spells.ID{spells.Shadowfury, spells.Conflagrate, spells.Shadowburn, spells.DeathCoil} {
		if c.actions[id] != nil {
			p.instant = append(p.instant, id)
		}
	}
	for _, id := range []spells.ID{spells.Incinerate, spells.SearingPain, spells.ShadowBolt} {
		if c.actions[id] != nil {
			p.filler = append(p.filler, id)
			break
		}
	}
	return p
}

func (p *defaultPolicy) Decide(c *Combatant) Decision {
	if a := p.curse(c); a != nil {
		return Decision{Cast: a}
	}
	for _, id := range p.dots {
		if c.Aura(c.actions[id].Def.Aura).Active() {
			continue
		}
		if a := c.castable(id); a != nil {
			return Decision{Cast: a}
		}
	}
	// An instant Shadow Bolt from Shadow Trance beats the filler.
	if c.Aura(spells.AuraShadowTrance).Active() {
		if a := c.castable(spells.ShadowBolt); a != nil {
			return Decision{Cast: a}
		}
	}
	for _, id := range p.instant {
		if a := c.castable(id); a != nil {
			return Decision{Cast: a}
		}
	}
	for _, id := range p.filler {
		if a := c.castable(id); a != nil {
			return Decision{Cast: a}
		}
	}
	return Decision{}
}

func (p *defaultPolicy) curse(c *Combatant) *spells.Action {
	for _, id := range p.curses {
		def := c.actions[id].Def
		if c.Aura(def.Aura).Active() {
			return nil
		}
		switch id {
		case spells.CurseOfDoom:
			if c.FightRemaining() < c.cat.Aura(def.Aura).Duration {
				continue
			}
		case spells.CurseOfAgony:
			if c.Aura(spells.AuraCurseOfDoom).Active() {
				return nil
			}
		}
		a := c.castable(id)
		if a != nil && a.Def.EmpoweredBy != nil && !c.Aura(a.Def.EmpoweredBy.Aura).Active() {
			if amp := c.castable(spells.AmplifyCurse); amp != nil {
				return amp
			}
		}
		return a
	}
	return nil
}

// petPolicy casts the demon's spell whenever it can. Melee swings are
// handled off the GCD by dispatch.
type petPolicy struct{}

var petSpells = [...]spells.ID{spells.Firebolt, spells.LashOfPain, spells.Cleave}

func (petPolicy) Decide(c *Combatant) Decision {
	for _, id := range petSpells {
		if a := c.castable(id); a != nil {
			return Decision{Cast: a}
		}
	}
	return Decision{}
}
