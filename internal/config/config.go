package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"tbc-warlock-sim/internal/gear"
)

// Pet summons.
const (
	PetNone      = "none"
	PetImp       = "imp"
	PetSuccubus  = "succubus"
	PetFelhunter = "felhunter"
	PetFelguard  = "felguard"
)

// PlayerConfig holds the character's gear-derived base attributes.
// Modifiers are multiplicative and default to 1.
type PlayerConfig struct {
	Name              string  `mapstructure:"name"`
	Race              string  `mapstructure:"race"`
	Health            float64 `mapstructure:"health"`
	Mana              float64 `mapstructure:"mana"`
	Stamina           float64 `mapstructure:"stamina"`
	Intellect         float64 `mapstructure:"intellect"`
	Spirit            float64 `mapstructure:"spirit"`
	StaminaModifier   float64 `mapstructure:"stamina_modifier"`
	IntellectModifier float64 `mapstructure:"intellect_modifier"`
	SpiritModifier    float64 `mapstructure:"spirit_modifier"`
	SpellPower        float64 `mapstructure:"spell_power"`
	ShadowPower       float64 `mapstructure:"shadow_power"`
	FirePower         float64 `mapstructure:"fire_power"`
	CritRating        float64 `mapstructure:"crit_rating"`
	HitRating         float64 `mapstructure:"hit_rating"`
	HasteRating       float64 `mapstructure:"haste_rating"`
	MP5               float64 `mapstructure:"mp5"`
	SpellPenetration  float64 `mapstructure:"spell_penetration"`
}

// Talents holds talent point allocations. Crit talents are stored as the
// percentage they grant, one percent per point.
type Talents struct {
	Suppression        int `mapstructure:"suppression"`
	ImprovedCorruption int `mapstructure:"improved_corruption"`
	ImprovedLifeTap    int `mapstructure:"improved_life_tap"`
	Nightfall          int `mapstructure:"nightfall"`
	AmplifyCurse       int `mapstructure:"amplify_curse"`
	SiphonLife         int `mapstructure:"siphon_life"`
	UnstableAffliction int `mapstructure:"unstable_affliction"`
	ShadowMastery      int `mapstructure:"shadow_mastery"`
	DarkPact           int `mapstructure:"dark_pact"`
	ImprovedImp        int `mapstructure:"improved_imp"`
	DemonicEmbrace     int `mapstructure:"demonic_embrace"`
	FelIntellect       int `mapstructure:"fel_intellect"`
	FelStamina         int `mapstructure:"fel_stamina"`
	DemonicAegis       int `mapstructure:"demonic_aegis"`
	MasterDemonologist int `mapstructure:"master_demonologist"`
	DemonicSacrifice   int `mapstructure:"demonic_sacrifice"`
	SoulLink           int `mapstructure:"soul_link"`
	DemonicKnowledge   int `mapstructure:"demonic_knowledge"`
	DemonicTactics     int `mapstructure:"demonic_tactics"`
	ImprovedShadowBolt int `mapstructure:"improved_shadow_bolt"`
	Cataclysm          int `mapstructure:"cataclysm"`
	Bane               int `mapstructure:"bane"`
	Devastation        int `mapstructure:"devastation"`
	Shadowburn         int `mapstructure:"shadowburn"`
	Emberstorm         int `mapstructure:"emberstorm"`
	Backlash           int `mapstructure:"backlash"`
	Conflagrate        int `mapstructure:"conflagrate"`
	Shadowfury         int `mapstructure:"shadowfury"`
}

// AuraSelection lists externally provided buffs, debuffs and consumables.
type AuraSelection struct {
	AtieshMage             bool `mapstructure:"atiesh_mage"`
	AtieshWarlock          bool `mapstructure:"atiesh_warlock"`
	MoonkinAura            bool `mapstructure:"moonkin_aura"`
	JudgementOfTheCrusader bool `mapstructure:"judgement_of_the_crusader"`
	JudgementOfWisdom      bool `mapstructure:"judgement_of_wisdom"`
	TotemOfWrath           bool `mapstructure:"totem_of_wrath"`
	ChainOfTheTwilightOwl  bool `mapstructure:"chain_of_the_twilight_owl"`
	InspiringPresence      bool `mapstructure:"inspiring_presence"`
	FerociousInspiration   bool `mapstructure:"ferocious_inspiration"`
	CurseOfTheElements     bool `mapstructure:"curse_of_the_elements"`
	FelArmor               bool `mapstructure:"fel_armor"`
	PrayerOfSpirit         bool `mapstructure:"prayer_of_spirit"`
	WrathOfAirTotem        bool `mapstructure:"wrath_of_air_totem"`
	BloodPact              bool `mapstructure:"blood_pact"`
	VampiricTouch          bool `mapstructure:"vampiric_touch"`
	FaerieFire             bool `mapstructure:"faerie_fire"`
	SunderArmor            bool `mapstructure:"sunder_armor"`
	ExposeArmor            bool `mapstructure:"expose_armor"`
	CurseOfRecklessness    bool `mapstructure:"curse_of_recklessness"`
	Annihilator            bool `mapstructure:"annihilator"`
	ManaTideTotem          bool `mapstructure:"mana_tide_totem"`
	ChippedPowerCore       bool `mapstructure:"chipped_power_core"`
	CrackedPowerCore       bool `mapstructure:"cracked_power_core"`
	PowerInfusion          bool `mapstructure:"power_infusion"`
	Innervate              bool `mapstructure:"innervate"`
	Bloodlust              bool `mapstructure:"bloodlust"`
	DestructionPotion      bool `mapstructure:"destruction_potion"`
	FlameCap               bool `mapstructure:"flame_cap"`
	SuperManaPotion        bool `mapstructure:"super_mana_potion"`
	DemonicRune            bool `mapstructure:"demonic_rune"`
	DrumsOfBattle          bool `mapstructure:"drums_of_battle"`
	DrumsOfWar             bool `mapstructure:"drums_of_war"`
	DrumsOfRestoration     bool `mapstructure:"drums_of_restoration"`
}

// RaidSettings quantifies the selected auras.
type RaidSettings struct {
	TotemOfWrathAmount          int     `mapstructure:"totem_of_wrath_amount"`
	FerociousInspirationAmount  int     `mapstructure:"ferocious_inspiration_amount"`
	ImprovedCurseOfTheElements  int     `mapstructure:"improved_curse_of_the_elements"`
	ImprovedDivineSpirit        int     `mapstructure:"improved_divine_spirit"`
	ImprovedImp                 int     `mapstructure:"improved_imp"`
	ImprovedExposeArmor         int     `mapstructure:"improved_expose_armor"`
	ShadowPriestDPS             float64 `mapstructure:"shadow_priest_dps"`
	MageAtieshAmount            int     `mapstructure:"mage_atiesh_amount"`
	WarlockAtieshAmount         int     `mapstructure:"warlock_atiesh_amount"`
	PowerInfusionAmount         int     `mapstructure:"power_infusion_amount"`
	BloodlustAmount             int     `mapstructure:"bloodlust_amount"`
	InnervateAmount             int     `mapstructure:"innervate_amount"`
	HasElementalShamanT4Bonus   bool    `mapstructure:"has_elemental_shaman_t4_bonus"`
	UsingCustomISBUptime        bool    `mapstructure:"using_custom_isb_uptime"`
	CustomISBUptimeValue        float64 `mapstructure:"custom_isb_uptime_value"`
}

// SetBonuses holds the number of equipped pieces per item set.
type SetBonuses struct {
	ManaEtched  int `mapstructure:"mana_etched"`
	TwinStars   int `mapstructure:"twin_stars"`
	Spellfire   int `mapstructure:"spellfire"`
	Spellstrike int `mapstructure:"spellstrike"`
	T4          int `mapstructure:"t4"`
}

// ItemSelection holds equipped items the engine models individually.
type ItemSelection struct {
	Trinket1 string `mapstructure:"trinket_1"`
	Trinket2 string `mapstructure:"trinket_2"`
	MainHand string `mapstructure:"main_hand"`
	Chest    string `mapstructure:"chest"`
	Finger1  string `mapstructure:"finger_1"`
	Finger2  string `mapstructure:"finger_2"`
	MetaGem  string `mapstructure:"meta_gem"`
}

// PetConfig selects the summoned demon.
type PetConfig struct {
	Summon     string `mapstructure:"summon"`
	Sacrificed bool   `mapstructure:"sacrificed"`
}

// EncounterConfig describes the target and fight length.
type EncounterConfig struct {
	EnemyLevel        int           `mapstructure:"enemy_level"`
	EnemyArmor        float64       `mapstructure:"enemy_armor"`
	EnemyShadowResist float64       `mapstructure:"enemy_shadow_resist"`
	EnemyFireResist   float64       `mapstructure:"enemy_fire_resist"`
	MinFightLength    time.Duration `mapstructure:"min_fight_length"`
	MaxFightLength    time.Duration `mapstructure:"max_fight_length"`
}

// SimulationConfig holds run parameters.
type SimulationConfig struct {
	Iterations         int     `mapstructure:"iterations"`
	Seed               uint64  `mapstructure:"seed"`
	Workers            int     `mapstructure:"workers"`
	CombatLog          bool    `mapstructure:"combat_log"`
	CombatLogIteration int     `mapstructure:"combat_log_iteration"`
	AccumulatorLimit   float64 `mapstructure:"accumulator_limit"`
}

// RotationConfig selects the spells the rotation may use. File, when set,
// points at an action priority list that replaces the built-in priority.
type RotationConfig struct {
	File                string `mapstructure:"file"`
	ShadowBolt          bool   `mapstructure:"shadow_bolt"`
	Incinerate          bool   `mapstructure:"incinerate"`
	SearingPain         bool   `mapstructure:"searing_pain"`
	Immolate            bool   `mapstructure:"immolate"`
	Corruption          bool   `mapstructure:"corruption"`
	CurseOfAgony        bool   `mapstructure:"curse_of_agony"`
	CurseOfDoom         bool   `mapstructure:"curse_of_doom"`
	CurseOfTheElements  bool   `mapstructure:"curse_of_the_elements"`
	CurseOfRecklessness bool   `mapstructure:"curse_of_recklessness"`
	Conflagrate         bool   `mapstructure:"conflagrate"`
	Shadowburn          bool   `mapstructure:"shadowburn"`
	DarkPact            bool   `mapstructure:"dark_pact"`
	UnstableAffliction  bool   `mapstructure:"unstable_affliction"`
	SiphonLife          bool   `mapstructure:"siphon_life"`
	DeathCoil           bool   `mapstructure:"death_coil"`
	Shadowfury          bool   `mapstructure:"shadowfury"`
	AmplifyCurse        bool   `mapstructure:"amplify_curse"`
}

// LoggingConfig holds zap logger settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Configuration is the fully populated input to the engine.
type Configuration struct {
	Player     PlayerConfig     `mapstructure:"player"`
	Talents    Talents          `mapstructure:"talents"`
	Auras      AuraSelection    `mapstructure:"auras"`
	Raid       RaidSettings     `mapstructure:"raid"`
	Sets       SetBonuses       `mapstructure:"sets"`
	Items      ItemSelection    `mapstructure:"items"`
	Pet        PetConfig        `mapstructure:"pet"`
	Encounter  EncounterConfig  `mapstructure:"encounter"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Rotation   RotationConfig   `mapstructure:"rotation"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// PetActive reports whether a demon is summoned and not sacrificed.
func (c *Configuration) PetActive() bool {
	summon := NormalizeName(c.Pet.Summon)
	if summon == "" || summon == PetNone {
		return false
	}
	return !c.Sacrificing()
}

// Sacrificing reports whether the pet is sacrificed through Demonic Sacrifice.
func (c *Configuration) Sacrificing() bool {
	return c.Pet.Sacrificed && c.Talents.DemonicSacrifice > 0
}

// Trinkets returns the canonical names of the non-empty trinket slots in
// slot order.
func (c *Configuration) Trinkets() []string {
	var out []string
	for _, name := range []string{c.Items.Trinket1, c.Items.Trinket2} {
		if n := gear.Normalize(name); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// EquippedItems returns the canonical names of the non-empty item slots
// other than trinkets, in slot order.
func (c *Configuration) EquippedItems() []string {
	var out []string
	for _, e := range c.itemSlots() {
		if n := gear.Normalize(e.name); n != "" {
			out = append(out, n)
		}
	}
	return out
}

type itemSlot struct {
	key  string
	slot gear.Slot
	name string
}

func (c *Configuration) itemSlots() []itemSlot {
	i := c.Items
	return []itemSlot{
		{"main_hand", gear.SlotMainHand, i.MainHand},
		{"chest", gear.SlotChest, i.Chest},
		{"finger_1", gear.SlotFinger, i.Finger1},
		{"finger_2", gear.SlotFinger, i.Finger2},
		{"meta_gem", gear.SlotMetaGem, i.MetaGem},
	}
}

// NormalizeName lower-cases and trims an identifier.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Load reads configuration from path, overlays WARLOCK_* environment
// variables, applies defaults and validates the result.
func Load(path string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvPrefix("WARLOCK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// LoadFromViper decodes and validates an already-populated viper instance.
func LoadFromViper(v *viper.Viper) (*Configuration, error) {
	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	cfg.Pet.Summon = NormalizeName(cfg.Pet.Summon)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration produced by SetDefaults alone.
func Default() *Configuration {
	v := viper.New()
	SetDefaults(v)
	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("default config: %v", err))
	}
	return &cfg
}

// SetDefaults registers default values for every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("player.name", "Warlock")
	v.SetDefault("player.race", "gnome")
	v.SetDefault("player.health", 3310)
	v.SetDefault("player.mana", 2335)
	v.SetDefault("player.stamina", 300)
	v.SetDefault("player.intellect", 350)
	v.SetDefault("player.spirit", 150)
	v.SetDefault("player.stamina_modifier", 1.0)
	v.SetDefault("player.intellect_modifier", 1.0)
	v.SetDefault("player.spirit_modifier", 1.0)
	v.SetDefault("player.spell_power", 1000)

	v.SetDefault("pet.summon", PetNone)

	v.SetDefault("encounter.enemy_level", 73)
	v.SetDefault("encounter.enemy_armor", 7700)
	v.SetDefault("encounter.min_fight_length", "150s")
	v.SetDefault("encounter.max_fight_length", "210s")

	v.SetDefault("simulation.iterations", 1000)
	v.SetDefault("simulation.combat_log_iteration", 10)

	v.SetDefault("rotation.shadow_bolt", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}
