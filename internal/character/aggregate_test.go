package character

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"tbc-warlock-sim/internal/config"
)

func baseConfig() *config.Configuration {
	cfg := config.Default()
	cfg.Encounter.EnemyArmor = 7700
	return cfg
}

func TestAggregatePoolsAndCrit(t *testing.T) {
	cfg := baseConfig()
	cfg.Talents.Devastation = 5
	cfg.Talents.Backlash = 3
	cfg.Talents.FelStamina = 3
	cfg.Talents.FelIntellect = 3
	cfg.Auras.MoonkinAura = true
	cfg.Auras.TotemOfWrath = true
	cfg.Raid.TotemOfWrathAmount = 2

	s, _ := Aggregate(cfg)

	assert.InDelta(t, 1.701+5+3+5+6, s.CritChance, 1e-9)
	assert.InDelta(t, 6.0, s.ExtraHitChance, 1e-9)
	assert.InDelta(t, (3310+300*10)*1.03, s.Health, 1e-9)
	assert.InDelta(t, (2335+350*15)*1.03, s.MaxMana, 1e-9)
}

func TestAggregateDemonicSacrificeBranches(t *testing.T) {
	tests := []struct {
		name       string
		pet        string
		sacrificed bool
		soulLink   int
		masterDemo int
		wantShadow float64
		wantFire   float64
	}{
		{"sacrificed imp", config.PetImp, true, 1, 5, 1, 1.15},
		{"sacrificed succubus", config.PetSuccubus, true, 1, 5, 1.15, 1},
		{"sacrificed felguard", config.PetFelguard, true, 1, 5, 1.1, 1},
		{"sacrificed felhunter", config.PetFelhunter, true, 1, 5, 1, 1},
		{"living succubus", config.PetSuccubus, false, 1, 5, 1.05 * 1.1, 1.05 * 1.1},
		{"living felguard", config.PetFelguard, false, 0, 5, 1.05, 1.05},
		{"living imp", config.PetImp, false, 1, 5, 1.05, 1.05},
		{"no soul link no master", config.PetSuccubus, false, 0, 0, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			cfg.Talents.DemonicSacrifice = 1
			cfg.Talents.SoulLink = tt.soulLink
			cfg.Talents.MasterDemonologist = tt.masterDemo
			cfg.Pet.Summon = tt.pet
			cfg.Pet.Sacrificed = tt.sacrificed

			s, _ := Aggregate(cfg)
			assert.InDelta(t, tt.wantShadow, s.ShadowModifier, 1e-9)
			assert.InDelta(t, tt.wantFire, s.FireModifier, 1e-9)
		})
	}
}

func TestAggregateSacrificeNeedsTalent(t *testing.T) {
	cfg := baseConfig()
	cfg.Pet.Summon = config.PetSuccubus
	cfg.Pet.Sacrificed = true
	cfg.Talents.SoulLink = 1

	s, _ := Aggregate(cfg)
	assert.InDelta(t, 1.05, s.ShadowModifier, 1e-9, "without the talent the living-pet path applies")
}

func TestAggregateChainedMultipliers(t *testing.T) {
	cfg := baseConfig()
	cfg.Talents.ShadowMastery = 5
	cfg.Talents.Emberstorm = 5
	cfg.Auras.FerociousInspiration = true
	cfg.Raid.FerociousInspirationAmount = 2
	cfg.Auras.CurseOfTheElements = true
	cfg.Raid.ImprovedCurseOfTheElements = 3

	s, _ := Aggregate(cfg)
	fi := 1.03 * 1.03
	assert.InDelta(t, 1.1*fi*1.13, s.ShadowModifier, 1e-9)
	assert.InDelta(t, fi*1.13*1.1, s.FireModifier, 1e-9)
}

func TestAggregateSpellPowerSources(t *testing.T) {
	cfg := baseConfig()
	cfg.Auras.FelArmor = true
	cfg.Talents.DemonicAegis = 3
	cfg.Auras.WrathOfAirTotem = true
	cfg.Raid.HasElementalShamanT4Bonus = true
	cfg.Auras.AtieshWarlock = true
	cfg.Raid.WarlockAtieshAmount = 2
	cfg.Sets.TwinStars = 2
	cfg.Auras.PrayerOfSpirit = true
	cfg.Raid.ImprovedDivineSpirit = 2
	cfg.Talents.DemonicEmbrace = 5

	s, _ := Aggregate(cfg)
	spirit := 142.0
	want := 1000 + 30 + 20 + 66 + 15 + spirit*0.1
	assert.InDelta(t, want, s.SpellPower, 1e-9)
	assert.InDelta(t, 1.15, s.StaminaModifier, 1e-9)
}

func TestAggregateBloodPact(t *testing.T) {
	tests := []struct {
		name       string
		pet        string
		sacrificed bool
		talent     int
		raid       int
		want       float64
	}{
		{"raid value only", config.PetNone, false, 3, 1, 7},
		{"own imp raises", config.PetImp, false, 3, 1, 21},
		{"own imp lower than raid", config.PetImp, false, 1, 2, 14},
		{"sacrificed imp", config.PetImp, true, 3, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			cfg.Auras.BloodPact = true
			cfg.Pet.Summon = tt.pet
			cfg.Pet.Sacrificed = tt.sacrificed
			cfg.Talents.DemonicSacrifice = 1
			cfg.Talents.ImprovedImp = tt.talent
			cfg.Raid.ImprovedImp = tt.raid

			s, _ := Aggregate(cfg)
			assert.InDelta(t, 300+tt.want, s.Stamina, 1e-9)
		})
	}
}

func TestAggregateArmorBranches(t *testing.T) {
	tests := []struct {
		name     string
		sunder   bool
		expose   bool
		improved int
		want     float64
	}{
		{"none", false, false, 0, 7700},
		{"expose only", false, true, 0, 7700 - 2050},
		{"expose only improved", false, true, 2, 7700 - 2050*1.5},
		{"sunder only", true, false, 0, 7700 - 2600},
		{"both unimproved takes sunder", true, true, 1, 7700 - 2600},
		{"both improved takes expose", true, true, 2, 7700 - 3075},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			cfg.Auras.SunderArmor = tt.sunder
			cfg.Auras.ExposeArmor = tt.expose
			cfg.Raid.ImprovedExposeArmor = tt.improved

			_, e := Aggregate(cfg)
			assert.InDelta(t, tt.want, e.Armor, 1e-9)
		})
	}
}

func TestAggregateArmorFloor(t *testing.T) {
	cfg := baseConfig()
	cfg.Encounter.EnemyArmor = 1000
	cfg.Auras.FaerieFire = true
	cfg.Auras.CurseOfRecklessness = true
	cfg.Auras.Annihilator = true

	_, e := Aggregate(cfg)
	assert.Equal(t, 0.0, e.Armor)
}

func TestAggregateEnemyResist(t *testing.T) {
	cfg := baseConfig()
	cfg.Encounter.EnemyShadowResist = 10
	cfg.Encounter.EnemyFireResist = 75

	_, e := Aggregate(cfg)
	assert.Equal(t, 28.0, e.ShadowResist)
	assert.Equal(t, 75.0, e.FireResist)

	cfg.Encounter.EnemyLevel = 72
	_, e = Aggregate(cfg)
	assert.Equal(t, 10.0, e.ShadowResist)
}

func TestBaseHitChance(t *testing.T) {
	assert.Equal(t, 83.0, BaseHitChance(70, 73))
	assert.Equal(t, 94.0, BaseHitChance(70, 72))
	assert.Equal(t, 96.0, BaseHitChance(70, 70))
	assert.Equal(t, 99.0, BaseHitChance(70, 60))
	assert.Equal(t, 83.0-44, BaseHitChance(70, 74))
}

func genConfig(t *rapid.T) *config.Configuration {
	cfg := baseConfig()
	cfg.Player.Stamina = rapid.Float64Range(0, 1000).Draw(t, "stamina")
	cfg.Player.Intellect = rapid.Float64Range(0, 1000).Draw(t, "intellect")
	cfg.Player.HitRating = rapid.Float64Range(0, 600).Draw(t, "hit_rating")
	cfg.Talents.Suppression = rapid.IntRange(0, 5).Draw(t, "suppression")
	cfg.Talents.DemonicSacrifice = rapid.IntRange(0, 1).Draw(t, "sacrifice")
	cfg.Talents.SoulLink = rapid.IntRange(0, 1).Draw(t, "soul_link")
	cfg.Talents.MasterDemonologist = rapid.IntRange(0, 5).Draw(t, "master_demonologist")
	cfg.Pet.Summon = rapid.SampledFrom([]string{config.PetNone, config.PetImp, config.PetSuccubus, config.PetFelguard}).Draw(t, "pet")
	cfg.Pet.Sacrificed = rapid.Bool().Draw(t, "sacrificed")
	cfg.Encounter.EnemyLevel = rapid.IntRange(60, 73).Draw(t, "enemy_level")
	cfg.Encounter.EnemyArmor = rapid.Float64Range(0, 10000).Draw(t, "armor")
	cfg.Auras.TotemOfWrath = rapid.Bool().Draw(t, "totem")
	cfg.Raid.TotemOfWrathAmount = rapid.IntRange(0, 5).Draw(t, "totem_amount")
	cfg.Auras.FaerieFire = rapid.Bool().Draw(t, "faerie_fire")
	cfg.Auras.SunderArmor = rapid.Bool().Draw(t, "sunder")
	cfg.Auras.ExposeArmor = rapid.Bool().Draw(t, "expose")
	cfg.Raid.ImprovedExposeArmor = rapid.IntRange(0, 2).Draw(t, "improved_expose")
	cfg.Auras.CurseOfRecklessness = rapid.Bool().Draw(t, "recklessness")
	cfg.Auras.Annihilator = rapid.Bool().Draw(t, "annihilator")
	return cfg
}

func TestAggregateIsPure(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := genConfig(t)
		snapshot := *cfg

		s1, e1 := Aggregate(cfg)
		s2, e2 := Aggregate(cfg)

		require.Equal(t, s1, s2)
		require.Equal(t, e1, e2)
		require.Equal(t, snapshot, *cfg, "configuration must not be mutated")
	})
}

func TestDerivedClamps(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := genConfig(t)
		sheet := NewSheet(cfg)

		for _, tree := range []Tree{TreeNone, TreeAffliction, TreeDemonology, TreeDestruction} {
			h := sheet.HitChance(tree)
			if h < 0 || h > HitChanceCap {
				t.Fatalf("hit chance %v out of range for %s", h, tree)
			}
		}
		if sheet.Enemy.Armor < 0 {
			t.Fatalf("armor %v below zero", sheet.Enemy.Armor)
		}
	})
}

func TestSacrificeAndLivingBonusesNeverBothApply(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := genConfig(t)
		cfg.Talents.ShadowMastery = 0
		s, _ := Aggregate(cfg)

		sacrificing := cfg.Talents.DemonicSacrifice == 1 && cfg.Pet.Sacrificed
		if sacrificing {
			for _, m := range []float64{s.ShadowModifier, s.FireModifier} {
				if m != 1 && m != 1.15 && m != 1.1 {
					t.Fatalf("sacrifice path applied a living-pet bonus: %v", m)
				}
			}
		}
	})
}
