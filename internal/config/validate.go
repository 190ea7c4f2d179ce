package config

import (
	"errors"
	"fmt"
	"strings"

	"tbc-warlock-sim/internal/gear"
)

// ErrInvalid is wrapped by every error returned from Validate.
var ErrInvalid = errors.New("configuration validation failed")

// Validate reports every out-of-range or contradictory selection at once.
func (c *Configuration) Validate() error {
	var errs []string

	for _, check := range []func() []string{
		c.validatePlayer,
		c.validateTalents,
		c.validateSelections,
		c.validateItems,
		c.validateEncounter,
		c.validateSimulation,
		c.validateLogging,
	} {
		errs = append(errs, check()...)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(errs, "; "))
	}
	return nil
}

func (c *Configuration) validatePlayer() []string {
	var errs []string
	p := c.Player
	for _, f := range []numField{
		{"health", p.Health},
		{"mana", p.Mana},
		{"stamina", p.Stamina},
		{"intellect", p.Intellect},
		{"spirit", p.Spirit},
		{"spell_power", p.SpellPower},
		{"shadow_power", p.ShadowPower},
		{"fire_power", p.FirePower},
		{"crit_rating", p.CritRating},
		{"hit_rating", p.HitRating},
		{"haste_rating", p.HasteRating},
		{"mp5", p.MP5},
		{"spell_penetration", p.SpellPenetration},
	} {
		if f.value < 0 {
			errs = append(errs, fmt.Sprintf("player.%s must not be negative, got %v", f.name, f.value))
		}
	}
	for _, f := range []numField{
		{"stamina_modifier", p.StaminaModifier},
		{"intellect_modifier", p.IntellectModifier},
		{"spirit_modifier", p.SpiritModifier},
	} {
		if f.value <= 0 {
			errs = append(errs, fmt.Sprintf("player.%s must be > 0, got %v", f.name, f.value))
		}
	}
	validRaces := map[string]bool{"human": true, "gnome": true, "orc": true, "undead": true, "blood_elf": true}
	if !validRaces[NormalizeName(p.Race)] {
		errs = append(errs, fmt.Sprintf("player.race must be one of [human, gnome, orc, undead, blood_elf], got %q", p.Race))
	}
	return errs
}

type numField struct {
	name  string
	value float64
}

type talentLimit struct {
	name   string
	points int
	max    int
}

func (c *Configuration) validateTalents() []string {
	t := c.Talents
	limits := []talentLimit{
		{"suppression", t.Suppression, 5},
		{"improved_corruption", t.ImprovedCorruption, 5},
		{"improved_life_tap", t.ImprovedLifeTap, 2},
		{"nightfall", t.Nightfall, 2},
		{"amplify_curse", t.AmplifyCurse, 1},
		{"siphon_life", t.SiphonLife, 1},
		{"unstable_affliction", t.UnstableAffliction, 1},
		{"shadow_mastery", t.ShadowMastery, 5},
		{"dark_pact", t.DarkPact, 1},
		{"improved_imp", t.ImprovedImp, 3},
		{"demonic_embrace", t.DemonicEmbrace, 5},
		{"fel_intellect", t.FelIntellect, 3},
		{"fel_stamina", t.FelStamina, 3},
		{"demonic_aegis", t.DemonicAegis, 3},
		{"master_demonologist", t.MasterDemonologist, 5},
		{"demonic_sacrifice", t.DemonicSacrifice, 1},
		{"soul_link", t.SoulLink, 1},
		{"demonic_knowledge", t.DemonicKnowledge, 3},
		{"demonic_tactics", t.DemonicTactics, 5},
		{"improved_shadow_bolt", t.ImprovedShadowBolt, 5},
		{"cataclysm", t.Cataclysm, 5},
		{"bane", t.Bane, 5},
		{"devastation", t.Devastation, 5},
		{"shadowburn", t.Shadowburn, 1},
		{"emberstorm", t.Emberstorm, 5},
		{"backlash", t.Backlash, 3},
		{"conflagrate", t.Conflagrate, 1},
		{"shadowfury", t.Shadowfury, 1},
	}
	var errs []string
	for _, l := range limits {
		if l.points < 0 || l.points > l.max {
			errs = append(errs, fmt.Sprintf("talents.%s must be in [0, %d], got %d", l.name, l.max, l.points))
		}
	}
	return errs
}

func (c *Configuration) validateSelections() []string {
	var errs []string
	a := c.Auras
	r := c.Rotation

	drums := 0
	for _, on := range []bool{a.DrumsOfBattle, a.DrumsOfWar, a.DrumsOfRestoration} {
		if on {
			drums++
		}
	}
	if drums > 1 {
		errs = append(errs, "auras: only one of drums_of_battle, drums_of_war, drums_of_restoration may be selected")
	}
	if a.CurseOfTheElements && r.CurseOfTheElements {
		errs = append(errs, "rotation.curse_of_the_elements conflicts with the raid-provided auras.curse_of_the_elements")
	}
	if a.CurseOfRecklessness && r.CurseOfRecklessness {
		errs = append(errs, "rotation.curse_of_recklessness conflicts with the raid-provided auras.curse_of_recklessness")
	}

	switch NormalizeName(c.Pet.Summon) {
	case "", PetNone:
		if c.Pet.Sacrificed {
			errs = append(errs, "pet.sacrificed requires pet.summon to name a demon")
		}
	case PetImp, PetSuccubus, PetFelhunter, PetFelguard:
	default:
		errs = append(errs, fmt.Sprintf("pet.summon must be one of [none, imp, succubus, felhunter, felguard], got %q", c.Pet.Summon))
	}
	if c.Pet.Sacrificed && c.Talents.DemonicSacrifice == 0 {
		errs = append(errs, "pet.sacrificed requires talents.demonic_sacrifice")
	}

	if r.Conflagrate && c.Talents.Conflagrate == 0 {
		errs = append(errs, "rotation.conflagrate requires talents.conflagrate")
	}
	if r.Shadowburn && c.Talents.Shadowburn == 0 {
		errs = append(errs, "rotation.shadowburn requires talents.shadowburn")
	}
	if r.DarkPact && c.Talents.DarkPact == 0 {
		errs = append(errs, "rotation.dark_pact requires talents.dark_pact")
	}
	if r.UnstableAffliction && c.Talents.UnstableAffliction == 0 {
		errs = append(errs, "rotation.unstable_affliction requires talents.unstable_affliction")
	}
	if r.SiphonLife && c.Talents.SiphonLife == 0 {
		errs = append(errs, "rotation.siphon_life requires talents.siphon_life")
	}
	if r.Shadowfury && c.Talents.Shadowfury == 0 {
		errs = append(errs, "rotation.shadowfury requires talents.shadowfury")
	}
	if r.AmplifyCurse && c.Talents.AmplifyCurse == 0 {
		errs = append(errs, "rotation.amplify_curse requires talents.amplify_curse")
	}

	rd := c.Raid
	for _, f := range []numField{
		{"totem_of_wrath_amount", float64(rd.TotemOfWrathAmount)},
		{"ferocious_inspiration_amount", float64(rd.FerociousInspirationAmount)},
		{"mage_atiesh_amount", float64(rd.MageAtieshAmount)},
		{"warlock_atiesh_amount", float64(rd.WarlockAtieshAmount)},
		{"power_infusion_amount", float64(rd.PowerInfusionAmount)},
		{"bloodlust_amount", float64(rd.BloodlustAmount)},
		{"innervate_amount", float64(rd.InnervateAmount)},
		{"improved_curse_of_the_elements", float64(rd.ImprovedCurseOfTheElements)},
		{"improved_divine_spirit", float64(rd.ImprovedDivineSpirit)},
		{"improved_imp", float64(rd.ImprovedImp)},
		{"improved_expose_armor", float64(rd.ImprovedExposeArmor)},
		{"shadow_priest_dps", rd.ShadowPriestDPS},
	} {
		if f.value < 0 {
			errs = append(errs, fmt.Sprintf("raid.%s must not be negative, got %v", f.name, f.value))
		}
	}
	if rd.ImprovedExposeArmor > 2 {
		errs = append(errs, fmt.Sprintf("raid.improved_expose_armor must be in [0, 2], got %d", rd.ImprovedExposeArmor))
	}
	if rd.UsingCustomISBUptime && (rd.CustomISBUptimeValue < 0 || rd.CustomISBUptimeValue > 100) {
		errs = append(errs, fmt.Sprintf("raid.custom_isb_uptime_value must be in [0, 100], got %v", rd.CustomISBUptimeValue))
	}
	if rd.UsingCustomISBUptime && c.Talents.ImprovedShadowBolt > 0 {
		errs = append(errs, "raid.using_custom_isb_uptime conflicts with talents.improved_shadow_bolt")
	}
	return errs
}

func (c *Configuration) validateItems() []string {
	var errs []string
	seen := map[string]bool{}
	for i, raw := range []string{c.Items.Trinket1, c.Items.Trinket2} {
		slot := fmt.Sprintf("trinket_%d", i+1)
		if strings.TrimSpace(raw) == "" {
			continue
		}
		if !gear.IsKnown(raw) {
			errs = append(errs, fmt.Sprintf("items.%s: unknown trinket '%s'", slot, raw))
			continue
		}
		name := gear.Normalize(raw)
		if seen[name] {
			errs = append(errs, fmt.Sprintf("items: trinket '%s' equipped more than once", name))
		}
		seen[name] = true
	}
	for _, e := range c.itemSlots() {
		if strings.TrimSpace(e.name) == "" {
			continue
		}
		item, ok := gear.LookupItem(e.name)
		if !ok {
			errs = append(errs, fmt.Sprintf("items.%s: unknown item '%s'", e.key, e.name))
			continue
		}
		if item.Slot != e.slot {
			errs = append(errs, fmt.Sprintf("items.%s: '%s' is a %s item", e.key, item.Name, item.Slot))
		}
	}
	if f1, f2 := gear.Normalize(c.Items.Finger1), gear.Normalize(c.Items.Finger2); f1 != "" && f1 == f2 {
		errs = append(errs, fmt.Sprintf("items: ring '%s' equipped more than once", f1))
	}
	s := c.Sets
	if s.ManaEtched < 0 || s.ManaEtched > 5 {
		errs = append(errs, fmt.Sprintf("sets.mana_etched must be in [0, 5], got %d", s.ManaEtched))
	}
	if s.TwinStars < 0 || s.TwinStars > 2 {
		errs = append(errs, fmt.Sprintf("sets.twin_stars must be in [0, 2], got %d", s.TwinStars))
	}
	if s.Spellfire < 0 || s.Spellfire > 3 {
		errs = append(errs, fmt.Sprintf("sets.spellfire must be in [0, 3], got %d", s.Spellfire))
	}
	if s.Spellstrike < 0 || s.Spellstrike > 2 {
		errs = append(errs, fmt.Sprintf("sets.spellstrike must be in [0, 2], got %d", s.Spellstrike))
	}
	if s.T4 < 0 || s.T4 > 5 {
		errs = append(errs, fmt.Sprintf("sets.t4 must be in [0, 5], got %d", s.T4))
	}
	return errs
}

func (c *Configuration) validateEncounter() []string {
	var errs []string
	e := c.Encounter
	if e.EnemyLevel < 1 || e.EnemyLevel > 73 {
		errs = append(errs, fmt.Sprintf("encounter.enemy_level must be in [1, 73], got %d", e.EnemyLevel))
	}
	if e.EnemyArmor < 0 {
		errs = append(errs, fmt.Sprintf("encounter.enemy_armor must not be negative, got %v", e.EnemyArmor))
	}
	if e.EnemyShadowResist < 0 || e.EnemyFireResist < 0 {
		errs = append(errs, "encounter enemy resistances must not be negative")
	}
	if e.MinFightLength <= 0 {
		errs = append(errs, fmt.Sprintf("encounter.min_fight_length must be > 0, got %s", e.MinFightLength))
	}
	if e.MaxFightLength < e.MinFightLength {
		errs = append(errs, fmt.Sprintf("encounter.max_fight_length (%s) must be >= min_fight_length (%s)", e.MaxFightLength, e.MinFightLength))
	}
	return errs
}

func (c *Configuration) validateSimulation() []string {
	var errs []string
	s := c.Simulation
	if s.Iterations <= 0 {
		errs = append(errs, fmt.Sprintf("simulation.iterations must be > 0, got %d", s.Iterations))
	}
	if s.Workers < 0 {
		errs = append(errs, fmt.Sprintf("simulation.workers must not be negative, got %d", s.Workers))
	}
	if s.CombatLogIteration < 0 {
		errs = append(errs, fmt.Sprintf("simulation.combat_log_iteration must not be negative, got %d", s.CombatLogIteration))
	}
	if s.AccumulatorLimit < 0 {
		errs = append(errs, fmt.Sprintf("simulation.accumulator_limit must not be negative, got %v", s.AccumulatorLimit))
	}
	return errs
}

func (c *Configuration) validateLogging() []string {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validFormats := map[string]bool{"json": true, "console": true}
	var errs []string
	if !validLevels[c.Logging.Level] {
		errs = append(errs, fmt.Sprintf("logging.level must be one of [debug, info, warn, error], got %q", c.Logging.Level))
	}
	if !validFormats[c.Logging.Format] {
		errs = append(errs, fmt.Sprintf("logging.format must be one of [json, console], got %q", c.Logging.Format))
	}
	return errs
}
