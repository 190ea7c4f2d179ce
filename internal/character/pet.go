package character

import (
	"math"

	"tbc-warlock-sim/internal/config"
)

// petBase holds a demon's level 70 attributes before owner scaling.
type petBase struct {
	stamina   float64
	intellect float64
	spirit    float64
	strength  float64
	agility   float64
	spellCrit float64
}

var petBases = map[string]petBase{
	config.PetImp:       {stamina: 101, intellect: 327, spirit: 263, strength: 145, agility: 38, spellCrit: 5},
	config.PetSuccubus:  {stamina: 280, intellect: 133, spirit: 122, strength: 153, agility: 109, spellCrit: 5},
	config.PetFelhunter: {stamina: 280, intellect: 133, spirit: 122, strength: 153, agility: 108, spellCrit: 5},
	config.PetFelguard:  {stamina: 280, intellect: 133, spirit: 122, strength: 153, agility: 108, spellCrit: 5},
}

// Shares of the owner's attributes a demon inherits.
const (
	petStaminaFromOwner     = 0.3
	petIntellectFromOwner   = 0.3
	petSpellPowerFromOwner  = 0.15
	petAttackPowerFromOwner = 0.57
	petManaPerIntellect     = 11.555
	petAgilityPerCrit       = 33.0
	petBaseMeleeCrit        = 5.0
)

// NewPetSheet derives the summoned demon's sheet from its owner. An
// unrecognised summon falls back to the imp so Demonic Knowledge still
// has numbers to work from.
func NewPetSheet(owner *Sheet, cfg *config.Configuration) *Sheet {
	t := cfg.Talents
	summon := config.NormalizeName(cfg.Pet.Summon)
	base, ok := petBases[summon]
	if !ok {
		summon = config.PetImp
		base = petBases[summon]
	}

	miss, dodge := MeleeAvoidance(owner.Enemy.Level)
	stats := CombatStats{
		Stamina:           base.stamina + owner.Stamina()*petStaminaFromOwner,
		Intellect:         base.intellect + owner.Intellect()*petIntellectFromOwner,
		Spirit:            base.spirit,
		StaminaModifier:   1 + 0.05*float64(t.FelStamina),
		IntellectModifier: 1 + 0.05*float64(t.FelIntellect),
		SpiritModifier:    1,
		SpellPower:        owner.SpellPower(SchoolFire) * petSpellPowerFromOwner,
		CritChance:        base.spellCrit,
		HitChance:         owner.Base.HitChance,
		ExtraHitChance:    owner.Base.ExtraHitChance,
		AttackPower:       base.strength*2 - 20 + owner.SpellPower(SchoolShadow)*petAttackPowerFromOwner,
		MeleeHitChance:    100 - miss - dodge,
		MeleeCritChance:   petBaseMeleeCrit + base.agility/petAgilityPerCrit,
		HasteMultiplier:   1,
		ManaCostModifier:  1,
	}

	mod := 1.0
	if t.SoulLink == 1 {
		mod *= 1.05
	}
	if cfg.Auras.FerociousInspiration {
		mod *= math.Pow(1.03, float64(cfg.Raid.FerociousInspirationAmount))
	}
	coe := 1.0
	if cfg.Auras.CurseOfTheElements {
		coe = 1.1 + 0.01*float64(cfg.Raid.ImprovedCurseOfTheElements)
	}
	stats.ShadowModifier = mod * coe
	stats.FireModifier = mod * coe
	stats.PhysicalModifier = mod
	if summon == config.PetImp {
		stats.FireModifier *= 1 + 0.1*float64(t.ImprovedImp)
	}

	stats.Health = stats.EffectiveStamina() * HealthPerStamina
	stats.MaxMana = stats.EffectiveIntellect() * petManaPerIntellect

	return &Sheet{
		Base:  stats,
		Enemy: owner.Enemy,
		bonus: NoBonus(),
	}
}
