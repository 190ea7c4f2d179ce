package engine

import (
	"time"

	"tbc-warlock-sim/internal/apl"
	"tbc-warlock-sim/internal/spells"
)

// rotationContext answers rotation conditions for one combatant.
type rotationContext struct {
	c *Combatant
}

func (r rotationContext) AuraActive(id spells.AuraID) bool {
	return r.c.Aura(id).Active()
}

func (r rotationContext) AuraRemaining(id spells.AuraID) time.Duration {
	return r.c.Aura(id).Remaining()
}

func (r rotationContext) AuraStacks(id spells.AuraID) int {
	return r.c.Aura(id).Stacks()
}

func (r rotationContext) ResourcePercent(res apl.Resource) float64 {
	c := r.c
	if res == apl.ResourceHealth {
		if full := c.sheet.MaxHealth(); full > 0 {
			return c.res.Health / full
		}
		return 0
	}
	if full := c.res.MaxMana(); full > 0 {
		return c.res.Mana / full
	}
	return 0
}

func (r rotationContext) ManaDeficit() float64 {
	return r.c.res.MaxMana() - r.c.res.Mana
}

// CooldownReady is false for actions the combatant does not have.
func (r rotationContext) CooldownReady(id spells.ID) bool {
	a := r.c.Action(id)
	return a != nil && a.ReadyCopies() > 0
}

func (r rotationContext) CooldownRemaining(id spells.ID) time.Duration {
	a := r.c.Action(id)
	if a == nil {
		return 0
	}
	return a.Cooldown()
}

func (r rotationContext) FightRemaining() time.Duration {
	return r.c.FightRemaining()
}

// rotationPolicy walks a compiled rotation top to bottom and takes the
// first entry whose condition holds and that can act now.
type rotationPolicy struct {
	rotation *apl.CompiledRotation
}

func newRotationPolicy(rot *apl.CompiledRotation) rotationPolicy {
	return rotationPolicy{rotation: rot}
}

func (p rotationPolicy) Decide(c *Combatant) Decision {
	if p.rotation == nil {
		return Decision{}
	}
	d, _ := evaluate(rotationContext{c: c}, p.rotation.Actions)
	return d
}

func evaluate(ctx rotationContext, actions []*apl.Action) (Decision, bool) {
	for _, action := range actions {
		if action == nil {
			continue
		}
		if action.Condition != nil && !action.Condition.Eval(ctx) {
			continue
		}
		switch action.Type {
		case apl.ActionCastSpell, apl.ActionUseItem:
			if a := ctx.c.castable(action.Spell); a != nil {
				return Decision{Cast: a}, true
			}
		case apl.ActionWait:
			if action.Duration > 0 {
				return Decision{Wait: action.Duration}, true
			}
		case apl.ActionMacro:
			if d, ok := evaluate(ctx, action.Steps); ok {
				return d, true
			}
		}
	}
	return Decision{}, false
}
