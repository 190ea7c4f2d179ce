package apl

import (
	"fmt"
	"strings"

	"tbc-warlock-sim/internal/spells"
)

// Resource names a pool a condition can compare.
type Resource int

const (
	ResourceMana Resource = iota
	ResourceHealth
)

func (r Resource) String() string {
	if r == ResourceHealth {
		return "health"
	}
	return "mana"
}

// NOTE: keep these sets in sync with the action catalogue.
var (
	// Actions that only exist as items; they are valid for use_item and
	// cooldown checks but not for cast_spell.
	knownItems = map[spells.ID]struct{}{
		spells.SuperManaPotion:    {},
		spells.DemonicRune:        {},
		spells.ChippedPowerCore:   {},
		spells.CrackedPowerCore:   {},
		spells.DestructionPotion:  {},
		spells.FlameCap:           {},
		spells.DrumsOfBattle:      {},
		spells.DrumsOfWar:         {},
		spells.DrumsOfRestoration: {},
		spells.Trinket1:           {},
		spells.Trinket2:           {},
	}
	// Actions the player never casts.
	uncastable = map[spells.ID]struct{}{
		spells.Firebolt:   {},
		spells.LashOfPain: {},
		spells.Cleave:     {},
		spells.Melee:      {},
		spells.Mp5:        {},

		spells.JudgementOfWisdom:           {},
		spells.Flameshadow:                 {},
		spells.Shadowflame:                 {},
		spells.Spellstrike:                 {},
		spells.ManaEtched4:                 {},
		spells.BladeOfWizardry:             {},
		spells.RobeOfTheElderScribes:       {},
		spells.BandOfTheEternalSage:        {},
		spells.MysticalSkyfireDiamond:      {},
		spells.InsightfulEarthstormDiamond: {},
	}
	knownDebuffs = map[spells.AuraID]struct{}{
		spells.AuraCorruption:          {},
		spells.AuraImmolate:            {},
		spells.AuraCurseOfAgony:        {},
		spells.AuraCurseOfDoom:         {},
		spells.AuraCurseOfTheElements:  {},
		spells.AuraCurseOfRecklessness: {},
		spells.AuraImprovedShadowBolt:  {},
		spells.AuraUnstableAffliction:  {},
		spells.AuraSiphonLife:          {},
	}
	knownResources = map[string]Resource{
		"mana":   ResourceMana,
		"health": ResourceHealth,
	}
)

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func lookupAction(name string) (spells.ID, error) {
	n := normalizeName(name)
	if n == "" {
		return 0, fmt.Errorf("spell name missing")
	}
	id, ok := spells.ParseID(n)
	if !ok {
		return 0, fmt.Errorf("unknown spell '%s'", name)
	}
	if _, ok := uncastable[id]; ok {
		return 0, fmt.Errorf("spell '%s' cannot be used by a rotation", name)
	}
	return id, nil
}

func validateSpellName(name string) (spells.ID, error) {
	id, err := lookupAction(name)
	if err != nil {
		return 0, err
	}
	if _, ok := knownItems[id]; ok {
		return 0, fmt.Errorf("'%s' is an item, use use_item", name)
	}
	return id, nil
}

func validateItemName(name string) (spells.ID, error) {
	n := normalizeName(name)
	if n == "" {
		return 0, fmt.Errorf("item name missing")
	}
	id, ok := spells.ParseID(n)
	if !ok {
		return 0, fmt.Errorf("unknown item '%s'", name)
	}
	if _, ok := knownItems[id]; !ok {
		return 0, fmt.Errorf("'%s' is not an item", name)
	}
	return id, nil
}

func validateAuraName(name string) (spells.AuraID, error) {
	n := normalizeName(name)
	if n == "" {
		return spells.AuraNone, fmt.Errorf("aura name missing")
	}
	id, ok := spells.ParseAuraID(n)
	if !ok || id == spells.AuraNone {
		return spells.AuraNone, fmt.Errorf("unknown aura '%s'", name)
	}
	return id, nil
}

func validateBuffName(name string) (spells.AuraID, error) {
	id, err := validateAuraName(name)
	if err != nil {
		return id, err
	}
	if _, ok := knownDebuffs[id]; ok {
		return spells.AuraNone, fmt.Errorf("'%s' is a debuff", name)
	}
	return id, nil
}

func validateDebuffName(name string) (spells.AuraID, error) {
	id, err := validateAuraName(name)
	if err != nil {
		return id, err
	}
	if _, ok := knownDebuffs[id]; !ok {
		return spells.AuraNone, fmt.Errorf("unknown debuff '%s'", name)
	}
	return id, nil
}

func validateResourceName(name string) (Resource, error) {
	n := normalizeName(name)
	if n == "" {
		return 0, fmt.Errorf("resource name missing")
	}
	r, ok := knownResources[n]
	if !ok {
		return 0, fmt.Errorf("unknown resource '%s'", name)
	}
	return r, nil
}
