package spells

import (
	"slices"

	"tbc-warlock-sim/internal/character"
	"tbc-warlock-sim/internal/gear"
)

// Listens reports whether a proc action reacts to outcome o of the action
// src. Only spells trigger procs: resource actions count for cast triggers,
// and hit triggers need a damaging spell.
func (a *Action) Listens(src *Definition, o Outcome) bool {
	def := a.Def
	if def.Kind != KindProc || src == nil || o.Proc || src.Kind == KindProc {
		return false
	}
	if src.School == character.SchoolNone || src.School == character.SchoolPhysical {
		return false
	}
	if def.TriggerSchool != character.SchoolNone && src.School != def.TriggerSchool {
		return false
	}
	if len(def.TriggerSpells) > 0 && !slices.Contains(def.TriggerSpells, src.ID) {
		return false
	}
	damaging := src.Kind == KindDirect || src.Kind == KindPeriodic
	switch def.Trigger {
	case gear.TriggerCast:
		return o.Cast
	case gear.TriggerMiss:
		return o.Cast && o.Miss
	case gear.TriggerHit:
		return o.Cast && o.Hit && damaging
	case gear.TriggerCrit:
		return o.Cast && o.Crit
	case gear.TriggerTick:
		return o.Tick && o.Damage > 0
	}
	return false
}

// Trigger rolls a proc action's chance and resolves its effect. A proc on
// internal cooldown does not roll. Charge procs stack their aura and
// discharge their damage at DischargeAt stacks.
func (a *Action) Trigger(c Caster) error {
	def := a.Def
	slot := a.readyCopy()
	if def.Kind != KindProc || slot < 0 {
		return nil
	}
	if !c.Rng().IsSuccess(def.TriggerChance) {
		return nil
	}
	a.pending = slot

	switch {
	case def.DischargeAt > 0:
		c.ApplyAura(def.Aura, 0)
		if aura := c.Aura(def.Aura); aura != nil && aura.Stacks() >= def.DischargeAt {
			aura.Fade()
			a.strike(c)
		}
	case def.ManaGainMax > 0:
		c.Record(Outcome{ID: def.ID, Cast: true, Hit: true, Proc: true, ManaGain: a.restore(c)})
	case def.MaxDamage > 0:
		a.strike(c)
	default:
		c.ApplyAura(def.Aura, 0)
	}
	return a.startCooldown(c)
}

// strike resolves a proc's direct damage with its own hit and crit rolls.
func (a *Action) strike(c Caster) {
	def := a.Def
	out := Outcome{ID: def.ID, Cast: true, Proc: true}
	if !a.hits(c) {
		out.Miss = true
		c.Logf("PROC_RESULT %s MISS", def.Label)
		c.Record(out)
		return
	}
	out.Hit = true
	out.Damage, out.Crit = a.damage(c)
	c.Logf("PROC_RESULT %s %s damage=%.0f", def.Label, resultName(out.Crit), out.Damage)
	c.Record(out)
}
