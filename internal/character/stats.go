package character

import "time"

// Conversion constants for a level 70 caster.
const (
	Level                  = 70
	HitRatingPerPercent    = 12.62
	CritRatingPerPercent   = 22.08
	HasteRatingPerPercent  = 15.77
	ManaPerIntellect       = 15
	HealthPerStamina       = 10
	CritChancePerIntellect = 1 / 81.95
	BaseCritChancePercent  = 1.701
	HitChanceCap           = 99.0

	GCDBase    = 1500 * time.Millisecond
	GCDMinimum = time.Second

	// armorConstant is the armor divisor for a level 70 attacker.
	armorConstant = 400 + 85*(Level+4.5*(Level-59))
)

// School is a damage school.
type School int

const (
	SchoolNone School = iota
	SchoolShadow
	SchoolFire
	SchoolNature
	// SchoolPhysical is melee damage, mitigated by armor instead of
	// resistance.
	SchoolPhysical
)

func (s School) String() string {
	switch s {
	case SchoolShadow:
		return "shadow"
	case SchoolFire:
		return "fire"
	case SchoolNature:
		return "nature"
	case SchoolPhysical:
		return "physical"
	default:
		return "none"
	}
}

// Resistible reports whether partial resists apply to the school.
func (s School) Resistible() bool {
	return s == SchoolShadow || s == SchoolFire
}

// Tree is the talent tree a spell belongs to. Hit and crit talents are
// scoped by tree.
type Tree int

const (
	TreeNone Tree = iota
	TreeAffliction
	TreeDemonology
	TreeDestruction
)

func (t Tree) String() string {
	switch t {
	case TreeAffliction:
		return "affliction"
	case TreeDemonology:
		return "demonology"
	case TreeDestruction:
		return "destruction"
	default:
		return "none"
	}
}

// CombatStats is the derived attribute record produced by Aggregate.
// Percent fields are percentages; modifier fields are multipliers.
type CombatStats struct {
	Health  float64
	MaxMana float64

	Stamina           float64
	Intellect         float64
	Spirit            float64
	StaminaModifier   float64
	IntellectModifier float64
	SpiritModifier    float64

	SpellPower  float64
	ShadowPower float64
	FirePower   float64

	CritRating  float64
	HitRating   float64
	HasteRating float64

	CritChance     float64
	HitChance      float64
	ExtraHitChance float64

	MP5              float64
	SpellPenetration float64

	// Melee attributes, used only by demons that attack in melee.
	AttackPower     float64
	MeleeHitChance  float64
	MeleeCritChance float64

	ShadowModifier   float64
	FireModifier     float64
	PhysicalModifier float64
	HasteMultiplier  float64
	ManaCostModifier float64
}

// EffectiveStamina is stamina after its modifier, truncated to a whole point.
func (s CombatStats) EffectiveStamina() float64 {
	return float64(int(s.Stamina * s.StaminaModifier))
}

// EffectiveIntellect is intellect after its modifier, truncated to a whole point.
func (s CombatStats) EffectiveIntellect() float64 {
	return float64(int(s.Intellect * s.IntellectModifier))
}

// EffectiveSpirit is spirit after its modifier, truncated to a whole point.
func (s CombatStats) EffectiveSpirit() float64 {
	return float64(int(s.Spirit * s.SpiritModifier))
}

// Enemy holds target-side derived values.
type Enemy struct {
	Level        int
	Armor        float64
	ShadowResist float64
	FireResist   float64
}

// Resist returns the resistance for a school, zero for unresistible schools.
func (e Enemy) Resist(school School) float64 {
	switch school {
	case SchoolShadow:
		return e.ShadowResist
	case SchoolFire:
		return e.FireResist
	default:
		return 0
	}
}

// BaseHitChance is the spell hit chance against a target before any bonuses.
func BaseHitChance(playerLevel, enemyLevel int) float64 {
	diff := enemyLevel - playerLevel
	switch {
	case diff <= 2:
		return min(99, float64(100-diff-4))
	case diff == 3:
		return 83
	default:
		return float64(83 - 11*diff)
	}
}

// MeleeAvoidance returns the miss and dodge chances of an enemy of the
// given level against a level 70 attacker.
func MeleeAvoidance(enemyLevel int) (miss, dodge float64) {
	skill := float64(5 * max(0, enemyLevel-Level))
	miss = 5 + 0.1*skill
	if skill > 10 {
		miss = 7 + 0.4*(skill-10)
	}
	return miss, 5 + 0.1*skill
}

// ArmorReduction returns the fraction of physical damage absorbed by armor.
func ArmorReduction(armor float64) float64 {
	if armor <= 0 {
		return 0
	}
	return armor / (armor + armorConstant)
}
