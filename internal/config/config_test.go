package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "player.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 73, cfg.Encounter.EnemyLevel)
	assert.Equal(t, 150*time.Second, cfg.Encounter.MinFightLength)
	assert.Equal(t, 1.0, cfg.Player.IntellectModifier)
	assert.Equal(t, 10, cfg.Simulation.CombatLogIteration)
}

func TestLoadReadsFileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
player:
  intellect: 400
  spell_power: 1200
talents:
  devastation: 5
pet:
  summon: Imp
items:
  trinket_1: "32483"
  trinket_2: icon_of_the_silver_crescent
encounter:
  min_fight_length: 2m
  max_fight_length: 3m
simulation:
  iterations: 50
  seed: 42
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 400.0, cfg.Player.Intellect)
	assert.Equal(t, 5, cfg.Talents.Devastation)
	assert.Equal(t, PetImp, cfg.Pet.Summon)
	assert.True(t, cfg.PetActive())
	assert.Equal(t, []string{"skull_of_guldan", "icon_of_the_silver_crescent"}, cfg.Trinkets())
	assert.Equal(t, 2*time.Minute, cfg.Encounter.MinFightLength)
	assert.Equal(t, uint64(42), cfg.Simulation.Seed)
	assert.Equal(t, "gnome", cfg.Player.Race)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "simulation:\n  iterations: 50\n")
	t.Setenv("WARLOCK_SIMULATION_ITERATIONS", "7")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Simulation.Iterations)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := writeConfig(t, "simulation:\n  iterations: 0\n")
	_, err := Load(path)
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "simulation.iterations")
}

func TestValidateContradictions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Configuration)
		want   string
	}{
		{"two drums", func(c *Configuration) {
			c.Auras.DrumsOfBattle = true
			c.Auras.DrumsOfWar = true
		}, "only one of drums"},
		{"sacrifice without pet", func(c *Configuration) {
			c.Talents.DemonicSacrifice = 1
			c.Pet.Sacrificed = true
		}, "pet.sacrificed requires pet.summon"},
		{"sacrifice without talent", func(c *Configuration) {
			c.Pet.Summon = PetImp
			c.Pet.Sacrificed = true
		}, "requires talents.demonic_sacrifice"},
		{"raid and player elements", func(c *Configuration) {
			c.Auras.CurseOfTheElements = true
			c.Rotation.CurseOfTheElements = true
		}, "rotation.curse_of_the_elements conflicts"},
		{"raid and player recklessness", func(c *Configuration) {
			c.Auras.CurseOfRecklessness = true
			c.Rotation.CurseOfRecklessness = true
		}, "rotation.curse_of_recklessness conflicts"},
		{"duplicate trinket", func(c *Configuration) {
			c.Items.Trinket1 = "skull_of_guldan"
			c.Items.Trinket2 = "32483"
		}, "equipped more than once"},
		{"unknown trinket", func(c *Configuration) {
			c.Items.Trinket2 = "mirror_of_truth"
		}, "items.trinket_2: unknown trinket"},
		{"talent out of range", func(c *Configuration) {
			c.Talents.Devastation = 6
		}, "talents.devastation must be in [0, 5]"},
		{"fight length order", func(c *Configuration) {
			c.Encounter.MaxFightLength = time.Second
		}, "max_fight_length"},
		{"unknown pet", func(c *Configuration) {
			c.Pet.Summon = "voidwalker"
		}, "pet.summon must be one of"},
		{"conflagrate untalented", func(c *Configuration) {
			c.Rotation.Conflagrate = true
		}, "rotation.conflagrate requires"},
		{"custom isb with talent", func(c *Configuration) {
			c.Raid.UsingCustomISBUptime = true
			c.Talents.ImprovedShadowBolt = 5
		}, "using_custom_isb_uptime conflicts"},
		{"bad log level", func(c *Configuration) {
			c.Logging.Level = "verbose"
		}, "logging.level"},
		{"unstable affliction untalented", func(c *Configuration) {
			c.Rotation.UnstableAffliction = true
		}, "rotation.unstable_affliction requires"},
		{"shadowfury untalented", func(c *Configuration) {
			c.Rotation.Shadowfury = true
		}, "rotation.shadowfury requires"},
		{"unknown item", func(c *Configuration) {
			c.Items.Chest = "frozen_shadoweave_robe"
		}, "items.chest: unknown item"},
		{"item in the wrong slot", func(c *Configuration) {
			c.Items.MainHand = "robe_of_the_elder_scribes"
		}, "items.main_hand: 'robe_of_the_elder_scribes' is a chest item"},
		{"same ring twice", func(c *Configuration) {
			c.Items.Finger1 = "band_of_the_eternal_sage"
			c.Items.Finger2 = "29305"
		}, "ring 'band_of_the_eternal_sage' equipped more than once"},
		{"t4 out of range", func(c *Configuration) {
			c.Sets.T4 = 6
		}, "sets.t4 must be in [0, 5]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Simulation.Iterations = 0
	cfg.Player.Intellect = -1
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"simulation.iterations", "player.intellect", "logging.format"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestSacrificingDisablesPet(t *testing.T) {
	cfg := Default()
	cfg.Pet.Summon = PetSuccubus
	assert.True(t, cfg.PetActive())

	cfg.Pet.Sacrificed = true
	assert.True(t, cfg.PetActive(), "sacrifice has no effect without the talent")

	cfg.Talents.DemonicSacrifice = 1
	assert.True(t, cfg.Sacrificing())
	assert.False(t, cfg.PetActive())
}

func TestRuntimeOptions(t *testing.T) {
	t.Setenv("WARLOCK_WORKERS", "3")
	t.Setenv("WARLOCK_SEED", "99")
	t.Setenv("WARLOCK_ARCHIVE", "/tmp/runs.db")

	opts, err := LoadRuntimeOptions()
	require.NoError(t, err)
	assert.Equal(t, "configs/player.yaml", opts.ConfigPath)
	assert.Equal(t, "/tmp/runs.db", opts.ArchivePath)

	cfg := Default()
	opts.Apply(cfg)
	assert.Equal(t, 3, cfg.Simulation.Workers)
	assert.Equal(t, uint64(99), cfg.Simulation.Seed)
}

func TestParseEnvError(t *testing.T) {
	t.Setenv("WARLOCK_WORKERS", "many")
	_, err := LoadRuntimeOptions()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
}

func TestShippedProfileLoads(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "player.yaml"))
	require.NoError(t, err)
	assert.Equal(t, PetImp, cfg.Pet.Summon)
	assert.Equal(t, "rotations/default.yaml", cfg.Rotation.File)
	assert.Equal(t, 1.0, cfg.Player.IntellectModifier)
	assert.Equal(t, 150*time.Second, cfg.Encounter.MinFightLength)
}

func TestEquippedItems(t *testing.T) {
	cfg := Default()
	cfg.Items.MainHand = "Blade of Wizardry"
	cfg.Items.Finger2 = "29305"
	cfg.Items.MetaGem = "mystical_skyfire_diamond"
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []string{"blade_of_wizardry", "band_of_the_eternal_sage", "mystical_skyfire_diamond"}, cfg.EquippedItems())
	assert.Empty(t, Default().EquippedItems())
}
