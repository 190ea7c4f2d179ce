package spells

import (
	"time"

	"tbc-warlock-sim/internal/character"
	"tbc-warlock-sim/internal/config"
)

// Talent effects that change action data rather than the stat sheet.
const (
	banePerPoint               = 100 * time.Millisecond
	improvedCorruptionPerPoint = 400 * time.Millisecond
	cataclysmPerPoint          = 0.01
	improvedLifeTapPerPoint    = 0.1
	nightfallPerPoint          = 2.0
	improvedShadowBoltPerPoint = 0.04
)

// ApplyTalents returns a copy of c with talent-dependent fields adjusted.
func ApplyTalents(c *Catalogue, t config.Talents) *Catalogue {
	out := c.Clone()

	if t.Bane > 0 {
		for _, id := range []ID{ShadowBolt, Immolate} {
			if def := out.Spell(id); def != nil {
				def.CastTime = max(0, def.CastTime-time.Duration(t.Bane)*banePerPoint)
			}
		}
	}
	if def := out.Spell(Corruption); def != nil {
		def.CastTime = max(0, def.CastTime-time.Duration(t.ImprovedCorruption)*improvedCorruptionPerPoint)
		def.TickProc = nil
		if t.Nightfall > 0 && out.Aura(AuraShadowTrance) != nil {
			def.TickProc = &Proc{Aura: AuraShadowTrance, Chance: nightfallPerPoint * float64(t.Nightfall)}
		}
	}
	if t.Cataclysm > 0 {
		for _, def := range out.Spells {
			if def != nil && def.Tree == character.TreeDestruction {
				def.ManaCost *= 1 - cataclysmPerPoint*float64(t.Cataclysm)
			}
		}
	}
	if def := out.Spell(LifeTap); def != nil {
		def.ManaGainScale = 1 + improvedLifeTapPerPoint*float64(t.ImprovedLifeTap)
	}
	if def := out.Spell(ShadowBolt); def != nil {
		def.OnCrit = nil
		if isb := out.Aura(AuraImprovedShadowBolt); isb != nil && t.ImprovedShadowBolt > 0 {
			def.OnCrit = &Proc{Aura: AuraImprovedShadowBolt, Chance: 100}
			isb.Bonus.ShadowModifier = 1 + improvedShadowBoltPerPoint*float64(t.ImprovedShadowBolt)
		}
	}
	return out
}
