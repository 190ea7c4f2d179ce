package spells

import (
	"fmt"

	"tbc-warlock-sim/internal/gear"
)

var trinketSlots = [...]struct {
	spell ID
	aura  AuraID
}{
	{Trinket1, AuraTrinket1},
	{Trinket2, AuraTrinket2},
}

// WithTrinkets returns a copy of c with the trinket slots filled from the
// equipped trinket names, in slot order. Two equipped on-use trinkets that
// share a cooldown are linked to each other.
func (c *Catalogue) WithTrinkets(names []string) (*Catalogue, error) {
	if len(names) > len(trinketSlots) {
		return nil, fmt.Errorf("at most %d trinkets can be equipped, got %d", len(trinketSlots), len(names))
	}
	out := c.Clone()
	var sharing []ID
	for i, name := range names {
		t, ok := gear.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown trinket %q", name)
		}
		slot := trinketSlots[i]
		def, aura, err := trinketDefinitions(slot.spell, slot.aura, t)
		if err != nil {
			return nil, err
		}
		out.Spells[slot.spell], out.Auras[slot.aura] = def, aura
		out.sources[slot.aura] = slot.spell
		if t.Kind == gear.KindUse && t.SharesCooldown {
			sharing = append(sharing, slot.spell)
		}
	}
	if len(sharing) == 2 {
		for i, id := range sharing {
			def := out.Spells[id]
			def.Links = append(def.Links, CooldownLink{
				Target:   sharing[1-i],
				Mode:     LinkAtLeast,
				From:     FromAura,
				Required: true,
			})
		}
	}
	return out, nil
}

func trinketDefinitions(id ID, aura AuraID, t gear.Trinket) (*Definition, *AuraDefinition, error) {
	def := &Definition{
		ID:            id,
		Label:         t.Name,
		Kind:          KindBuff,
		Cooldown:      t.Cooldown,
		OffGCD:        true,
		NoMiss:        true,
		NoCrit:        true,
		Aura:          aura,
		ManaGainScale: 1,
	}
	auraDef := &AuraDefinition{
		ID:        aura,
		Label:     t.Name,
		Duration:  t.Duration,
		MaxStacks: max(1, t.MaxStacks),
	}
	if t.Kind == gear.KindProc {
		def.Kind = KindProc
		def.Trigger = t.Trigger
		def.TriggerChance = t.ProcChance
		if t.TriggerSpell != "" {
			src, ok := ParseID(t.TriggerSpell)
			if !ok {
				return nil, nil, fmt.Errorf("trinket %s listens to unknown action %q", t.Name, t.TriggerSpell)
			}
			def.TriggerSpells = []ID{src}
		}
	}

	switch t.Effect {
	case gear.EffectDamage:
		school, ok := schoolNames[t.School]
		if !ok {
			return nil, nil, fmt.Errorf("trinket %s deals unknown school %q", t.Name, t.School)
		}
		def.School = school
		def.NoMiss, def.NoCrit = false, false
		def.MinDamage, def.MaxDamage = t.Min, t.Max
		def.Aura = AuraNone
		if t.Charges > 0 {
			def.Aura = aura
			def.DischargeAt = t.Charges
			auraDef.MaxStacks = t.Charges
		}
	case gear.EffectMana:
		def.ManaGainMin, def.ManaGainMax = t.Min, t.Max
		def.Aura = AuraNone
	default:
		switch t.Stat {
		case gear.StatSpellPower:
			auraDef.Bonus.SpellPower = t.Amount
		case gear.StatHasteRating:
			auraDef.Bonus.HasteRating = t.Amount
		case gear.StatCritRating:
			auraDef.Bonus.CritRating = t.Amount
		}
	}
	return def, auraDef, nil
}
