package engine

import (
	"time"

	"tbc-warlock-sim/internal/spells"
)

// useCooldowns fires every selected cooldown that is ready. Cooldowns are
// used as early as possible with a few exceptions for overlap and mana.
func (c *Combatant) useCooldowns() {
	// Power Infusion does not stack with Bloodlust unless enough copies are
	// left to cover the rest of the fight.
	if pi := c.actions[spells.PowerInfusion]; pi != nil && !c.Aura(spells.AuraPowerInfusion).Active() {
		lust := c.actions[spells.Bloodlust] != nil && c.Aura(spells.AuraBloodlust).Active()
		covers := false
		if def := c.cat.Aura(spells.AuraPowerInfusion); def != nil {
			covers = def.Duration*time.Duration(pi.ReadyCopies()) >= c.FightRemaining()
		}
		if !lust || covers {
			c.use(spells.PowerInfusion)
		}
	}
	if !c.Aura(spells.AuraInnervate).Active() {
		c.use(spells.Innervate)
	}
	if !c.use(spells.ChippedPowerCore) {
		c.use(spells.CrackedPowerCore)
	}
	c.use(spells.DestructionPotion)
	c.use(spells.FlameCap)
	c.use(spells.BloodFury)
	c.use(spells.Trinket1)
	c.use(spells.Trinket2)
	if !c.Aura(spells.AuraBloodlust).Active() {
		c.use(spells.Bloodlust)
	}
	for _, drums := range []struct {
		id   spells.ID
		aura spells.AuraID
	}{
		{spells.DrumsOfBattle, spells.AuraDrumsOfBattle},
		{spells.DrumsOfWar, spells.AuraDrumsOfWar},
		{spells.DrumsOfRestoration, spells.AuraDrumsOfRestoration},
	} {
		if !c.Aura(drums.aura).Active() {
			c.use(drums.id)
		}
	}
	c.use(spells.ManaTideTotem)

	// Mana consumables wait until the whole restore fits.
	for _, id := range []spells.ID{spells.SuperManaPotion, spells.DemonicRune} {
		a := c.actions[id]
		if a == nil || c.res.MaxMana()-c.res.Mana < a.Def.ManaGainMax {
			continue
		}
		if c.use(id) {
			break
		}
	}
}

// use starts an off-GCD cooldown when it is registered and ready.
func (c *Combatant) use(id spells.ID) bool {
	a := c.castable(id)
	if a == nil || !a.Def.OffGCD {
		return false
	}
	started, err := a.StartCast(c)
	if err != nil {
		c.fail(err)
		return false
	}
	return started
}
