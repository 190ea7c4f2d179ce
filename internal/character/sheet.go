package character

import (
	"math"
	"time"

	"tbc-warlock-sim/internal/config"
)

// Bonus is the combined effect of active temporary auras. Additive fields
// default to zero and multiplier fields to one; use NoBonus for the identity.
type Bonus struct {
	SpellPower  float64 `yaml:"spell_power"`
	ShadowPower float64 `yaml:"shadow_power"`
	FirePower   float64 `yaml:"fire_power"`
	CritRating  float64 `yaml:"crit_rating"`
	HitRating   float64 `yaml:"hit_rating"`
	HasteRating float64 `yaml:"haste_rating"`
	CritChance  float64 `yaml:"crit_chance"`
	Intellect   float64 `yaml:"intellect"`
	Spirit      float64 `yaml:"spirit"`
	MP5         float64 `yaml:"mp5"`

	ShadowModifier   float64 `yaml:"shadow_modifier"`
	FireModifier     float64 `yaml:"fire_modifier"`
	HasteMultiplier  float64 `yaml:"haste_multiplier"`
	ManaCostModifier float64 `yaml:"mana_cost_modifier"`
}

// NoBonus returns the identity bonus.
func NoBonus() Bonus {
	return Bonus{ShadowModifier: 1, FireModifier: 1, HasteMultiplier: 1, ManaCostModifier: 1}
}

// Add combines two bonuses: sums for additive fields, products for multipliers.
func (b Bonus) Add(o Bonus) Bonus {
	return Bonus{
		SpellPower:       b.SpellPower + o.SpellPower,
		ShadowPower:      b.ShadowPower + o.ShadowPower,
		FirePower:        b.FirePower + o.FirePower,
		CritRating:       b.CritRating + o.CritRating,
		HitRating:        b.HitRating + o.HitRating,
		HasteRating:      b.HasteRating + o.HasteRating,
		CritChance:       b.CritChance + o.CritChance,
		Intellect:        b.Intellect + o.Intellect,
		Spirit:           b.Spirit + o.Spirit,
		MP5:              b.MP5 + o.MP5,
		ShadowModifier:   orOne(b.ShadowModifier) * orOne(o.ShadowModifier),
		FireModifier:     orOne(b.FireModifier) * orOne(o.FireModifier),
		HasteMultiplier:  orOne(b.HasteMultiplier) * orOne(o.HasteMultiplier),
		ManaCostModifier: orOne(b.ManaCostModifier) * orOne(o.ManaCostModifier),
	}
}

// Scale multiplies the additive fields by n. Multipliers are raised to n.
func (b Bonus) Scale(n int) Bonus {
	f := float64(n)
	return Bonus{
		SpellPower:       b.SpellPower * f,
		ShadowPower:      b.ShadowPower * f,
		FirePower:        b.FirePower * f,
		CritRating:       b.CritRating * f,
		HitRating:        b.HitRating * f,
		HasteRating:      b.HasteRating * f,
		CritChance:       b.CritChance * f,
		Intellect:        b.Intellect * f,
		Spirit:           b.Spirit * f,
		MP5:              b.MP5 * f,
		ShadowModifier:   math.Pow(orOne(b.ShadowModifier), f),
		FireModifier:     math.Pow(orOne(b.FireModifier), f),
		HasteMultiplier:  math.Pow(orOne(b.HasteMultiplier), f),
		ManaCostModifier: math.Pow(orOne(b.ManaCostModifier), f),
	}
}

// Sheet answers runtime stat queries. Base and Enemy are fixed for the
// lifetime of a combatant; the bonus changes as auras come and go.
type Sheet struct {
	Base    CombatStats
	Enemy   Enemy
	Talents config.Talents
	Sets    config.SetBonuses

	// DemonicKnowledge is spell power granted from the summoned pet's stats.
	DemonicKnowledge float64

	bonus Bonus
}

// NewSheet aggregates cfg into a sheet with no active bonus.
func NewSheet(cfg *config.Configuration) *Sheet {
	base, enemy := Aggregate(cfg)
	s := &Sheet{
		Base:    base,
		Enemy:   enemy,
		Talents: cfg.Talents,
		Sets:    cfg.Sets,
		bonus:   NoBonus(),
	}
	if cfg.PetActive() && cfg.Talents.DemonicKnowledge > 0 {
		pet := NewPetSheet(s, cfg)
		s.DemonicKnowledge = (pet.Stamina() + pet.Intellect()) * 0.04 * float64(cfg.Talents.DemonicKnowledge)
	}
	return s
}

// SetBonus replaces the active aura bonus.
func (s *Sheet) SetBonus(b Bonus) {
	s.bonus = b
}

// Bonus returns the active aura bonus.
func (s *Sheet) Bonus() Bonus {
	return s.bonus
}

func (s *Sheet) Stamina() float64 {
	return s.Base.EffectiveStamina()
}

func (s *Sheet) Intellect() float64 {
	return float64(int((s.Base.Intellect + s.bonus.Intellect) * s.Base.IntellectModifier))
}

func (s *Sheet) Spirit() float64 {
	return float64(int((s.Base.Spirit + s.bonus.Spirit) * s.Base.SpiritModifier))
}

func (s *Sheet) MaxHealth() float64 { return s.Base.Health }

func (s *Sheet) MaxMana() float64 { return s.Base.MaxMana }

func (s *Sheet) MP5() float64 { return s.Base.MP5 + s.bonus.MP5 }

// SpellPower returns bonus damage for a school, including school-specific power.
func (s *Sheet) SpellPower(school School) float64 {
	sp := s.Base.SpellPower + s.bonus.SpellPower + s.DemonicKnowledge
	if s.Sets.Spellfire == 3 {
		sp += s.Intellect() * 0.07
	}
	switch school {
	case SchoolShadow:
		sp += s.Base.ShadowPower + s.bonus.ShadowPower
	case SchoolFire:
		sp += s.Base.FirePower + s.bonus.FirePower
	}
	return sp
}

// CritChance returns the crit percentage for a spell of the given tree.
// Devastation only counts for destruction spells.
func (s *Sheet) CritChance(tree Tree) float64 {
	c := s.Base.CritChance + s.bonus.CritChance +
		s.Intellect()*CritChancePerIntellect +
		(s.Base.CritRating+s.bonus.CritRating)/CritRatingPerPercent
	if tree != TreeDestruction {
		c -= float64(s.Talents.Devastation)
	}
	return c
}

// HitChance returns the hit percentage for a spell of the given tree,
// clamped to [0, HitChanceCap].
func (s *Sheet) HitChance(tree Tree) float64 {
	h := s.Base.HitChance + s.Base.ExtraHitChance + s.bonus.HitRating/HitRatingPerPercent
	if tree == TreeAffliction {
		h += float64(s.Talents.Suppression * 2)
	}
	return math.Max(0, math.Min(HitChanceCap, h))
}

// HastePercent returns the cast speed multiplier.
func (s *Sheet) HastePercent() float64 {
	mult := s.Base.HasteMultiplier * s.bonus.HasteMultiplier
	return mult * (1 + (s.Base.HasteRating+s.bonus.HasteRating)/HasteRatingPerPercent/100)
}

// GCD returns the hasted global cooldown, rounded to 0.1ms and floored at
// GCDMinimum.
func (s *Sheet) GCD() time.Duration {
	ticks := math.Round(GCDBase.Seconds() / s.HastePercent() * 10000)
	return max(GCDMinimum, time.Duration(ticks)*100*time.Microsecond)
}

// DamageModifier returns the school damage multiplier.
func (s *Sheet) DamageModifier(school School) float64 {
	switch school {
	case SchoolShadow:
		return s.Base.ShadowModifier * s.bonus.ShadowModifier
	case SchoolFire:
		return s.Base.FireModifier * s.bonus.FireModifier
	case SchoolPhysical:
		return orOne(s.Base.PhysicalModifier)
	default:
		return 1
	}
}

// ManaCostModifier returns the mana cost multiplier.
func (s *Sheet) ManaCostModifier() float64 {
	return s.Base.ManaCostModifier * s.bonus.ManaCostModifier
}

// PartialResist returns the average damage fraction that survives the
// target's resistance. The resistance reduction is truncated to a whole
// percent.
func (s *Sheet) PartialResist(school School) float64 {
	if !school.Resistible() {
		return 1
	}
	resist := int(s.Enemy.Resist(school))
	return 1 - float64((75*resist)/(Level*5))/100
}

// Power returns the bonus an action of the given school scales with:
// attack power for melee, spell power otherwise.
func (s *Sheet) Power(school School) float64 {
	if school == SchoolPhysical {
		return s.Base.AttackPower
	}
	return s.SpellPower(school)
}

// AttackHitChance returns the hit percentage of an action. Melee attacks
// use the melee table.
func (s *Sheet) AttackHitChance(school School, tree Tree) float64 {
	if school == SchoolPhysical {
		return s.Base.MeleeHitChance
	}
	return s.HitChance(tree)
}

// AttackCritChance returns the crit percentage of an action.
func (s *Sheet) AttackCritChance(school School, tree Tree) float64 {
	if school == SchoolPhysical {
		return s.Base.MeleeCritChance
	}
	return s.CritChance(tree)
}

// Mitigation returns the damage fraction that survives resistance, or
// armor for physical damage.
func (s *Sheet) Mitigation(school School) float64 {
	if school == SchoolPhysical {
		return 1 - ArmorReduction(s.Enemy.Armor)
	}
	return s.PartialResist(school)
}
