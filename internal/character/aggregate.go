package character

import (
	"math"

	"tbc-warlock-sim/internal/config"
)

// enemyBaseResist is the innate resistance of a level 73 boss.
const enemyBaseResist = (6 * Level * 5) / 75.0

// Aggregate derives combat stats and enemy values from a configuration. It
// is a pure function of cfg.
func Aggregate(cfg *config.Configuration) (CombatStats, Enemy) {
	p := cfg.Player
	t := cfg.Talents
	a := cfg.Auras
	r := cfg.Raid

	s := CombatStats{
		Health:            p.Health,
		MaxMana:           p.Mana,
		Stamina:           p.Stamina,
		Intellect:         p.Intellect,
		Spirit:            p.Spirit,
		StaminaModifier:   orOne(p.StaminaModifier),
		IntellectModifier: orOne(p.IntellectModifier),
		SpiritModifier:    orOne(p.SpiritModifier),
		SpellPower:        p.SpellPower,
		ShadowPower:       p.ShadowPower,
		FirePower:         p.FirePower,
		CritRating:        p.CritRating,
		HitRating:         p.HitRating,
		HasteRating:       p.HasteRating,
		MP5:               p.MP5,
		SpellPenetration:  p.SpellPenetration,
		ShadowModifier:    1,
		FireModifier:      1,
		HasteMultiplier:   1,
		ManaCostModifier:  1,
	}
	pet := config.NormalizeName(cfg.Pet.Summon)

	// Crit
	if a.AtieshMage {
		s.CritRating += 28 * float64(r.MageAtieshAmount)
	}
	s.CritChance = BaseCritChancePercent + float64(t.Devastation+t.Backlash+t.DemonicTactics)
	if a.MoonkinAura {
		s.CritChance += 5
	}
	if a.JudgementOfTheCrusader {
		s.CritChance += 3
	}
	if a.TotemOfWrath {
		s.CritChance += 3 * float64(r.TotemOfWrathAmount)
	}
	if a.ChainOfTheTwilightOwl {
		s.CritChance += 2
	}

	// Hit
	if cfg.Sets.ManaEtched >= 2 {
		s.HitRating += 35
	}
	s.ExtraHitChance = s.HitRating / HitRatingPerPercent
	if a.TotemOfWrath {
		s.ExtraHitChance += 3 * float64(r.TotemOfWrathAmount)
	}
	if a.InspiringPresence {
		s.ExtraHitChance++
	}
	s.HitChance = math.Round(BaseHitChance(Level, cfg.Encounter.EnemyLevel))

	// Demonic Sacrifice and the living-pet bonuses never both apply.
	if t.DemonicSacrifice == 1 && cfg.Pet.Sacrificed {
		switch pet {
		case config.PetImp:
			s.FireModifier *= 1.15
		case config.PetSuccubus:
			s.ShadowModifier *= 1.15
		case config.PetFelguard:
			s.ShadowModifier *= 1.1
		}
	} else {
		if t.SoulLink == 1 {
			s.ShadowModifier *= 1.05
			s.FireModifier *= 1.05
		}
		if t.MasterDemonologist > 0 {
			switch pet {
			case config.PetSuccubus:
				s.ShadowModifier *= 1 + 0.02*float64(t.MasterDemonologist)
				s.FireModifier *= 1 + 0.02*float64(t.MasterDemonologist)
			case config.PetFelguard:
				s.ShadowModifier *= 1 + 0.01*float64(t.MasterDemonologist)
				s.FireModifier *= 1 + 0.01*float64(t.MasterDemonologist)
			}
		}
	}

	s.ShadowModifier *= 1 + 0.02*float64(t.ShadowMastery)
	if a.FerociousInspiration {
		fi := math.Pow(1.03, float64(r.FerociousInspirationAmount))
		s.ShadowModifier *= fi
		s.FireModifier *= fi
	}
	if a.CurseOfTheElements {
		coe := 1.1 + 0.01*float64(r.ImprovedCurseOfTheElements)
		s.ShadowModifier *= coe
		s.FireModifier *= coe
	}
	if t.Emberstorm > 0 {
		s.FireModifier *= 1 + 0.02*float64(t.Emberstorm)
	}
	if a.FelArmor {
		s.SpellPower += 100 * (0 + 0.1*float64(t.DemonicAegis))
	}
	if r.UsingCustomISBUptime {
		s.ShadowModifier *= 1 + 0.2*(r.CustomISBUptimeValue/100)
	}

	s.SpiritModifier *= 1 - 0.01*float64(t.DemonicEmbrace)
	if a.PrayerOfSpirit && r.ImprovedDivineSpirit > 0 {
		s.SpellPower += s.EffectiveSpirit() * (float64(r.ImprovedDivineSpirit) / 20)
	}
	if a.WrathOfAirTotem && r.HasElementalShamanT4Bonus {
		s.SpellPower += 20
	}
	if a.BloodPact {
		impPoints := r.ImprovedImp
		if pet == config.PetImp && (!cfg.Pet.Sacrificed || t.DemonicSacrifice == 0) && t.ImprovedImp > impPoints {
			impPoints = t.ImprovedImp
		}
		s.Stamina += 70 * 0.1 * float64(impPoints)
	}
	s.StaminaModifier *= 1 + 0.03*float64(t.DemonicEmbrace)
	if a.VampiricTouch {
		s.MP5 += r.ShadowPriestDPS * 0.25
	}
	if a.AtieshWarlock {
		s.SpellPower += 33 * float64(r.WarlockAtieshAmount)
	}
	if cfg.Sets.TwinStars == 2 {
		s.SpellPower += 15
	}

	e := Enemy{
		Level:        cfg.Encounter.EnemyLevel,
		Armor:        cfg.Encounter.EnemyArmor,
		ShadowResist: cfg.Encounter.EnemyShadowResist,
		FireResist:   cfg.Encounter.EnemyFireResist,
	}
	if e.Level >= 73 {
		e.ShadowResist = math.Max(e.ShadowResist, enemyBaseResist)
		e.FireResist = math.Max(e.FireResist, enemyBaseResist)
	}

	// Armor: Expose Armor and Sunder Armor do not stack.
	if a.FaerieFire {
		e.Armor -= 610
	}
	if (a.SunderArmor && a.ExposeArmor && r.ImprovedExposeArmor == 2) || (a.ExposeArmor && !a.SunderArmor) {
		e.Armor -= 2050 * (1 + 0.25*float64(r.ImprovedExposeArmor))
	} else if a.SunderArmor {
		e.Armor -= 520 * 5
	}
	if a.CurseOfRecklessness {
		e.Armor -= 800
	}
	if a.Annihilator {
		e.Armor -= 600
	}
	e.Armor = math.Max(0, e.Armor)

	s.Health = (s.Health + s.EffectiveStamina()*HealthPerStamina) * (1 + 0.01*float64(t.FelStamina))
	s.MaxMana = (s.MaxMana + s.EffectiveIntellect()*ManaPerIntellect) * (1 + 0.01*float64(t.FelIntellect))

	return s, e
}

func orOne(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}
