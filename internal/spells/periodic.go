package spells

import "tbc-warlock-sim/internal/effects"

// Tick applies one tick of a periodic aura on behalf of the action that
// applied it. scale is 1 for a full tick and below 1 for the partial tick
// at expiry. Damage ticks use the snapshotted magnitude with the current
// school modifier and never crit.
func Tick(c Caster, src *Definition, def *AuraDefinition, aura *effects.Aura, scale float64) {
	out := Outcome{ID: src.ID, Tick: true, Hit: true}

	if def.ManaPerTick > 0 || def.ManaPerTickPct > 0 {
		amount := (def.ManaPerTick + def.ManaPerTickPct/100*c.Sheet().MaxMana()) * scale
		out.ManaGain = c.GainMana(amount)
		c.Logf("MANA_GAIN %s +%.0f", def.Label, out.ManaGain)
		c.Record(out)
		return
	}
	if aura.Magnitude <= 0 {
		return
	}

	s := c.Sheet()
	out.Damage = aura.Magnitude * scale * s.DamageModifier(src.School) * s.Mitigation(src.School)
	c.Logf("DOT_TICK %s damage=%.0f", def.Label, out.Damage)
	c.Record(out)

	if p := src.TickProc; p != nil && c.Rng().IsSuccess(p.Chance) {
		c.ApplyAura(p.Aura, 0)
	}
}
