package spells

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"tbc-warlock-sim/internal/character"
	"tbc-warlock-sim/internal/effects"
	"tbc-warlock-sim/internal/gear"
)

//go:embed catalogue.yaml
var catalogueYAML []byte

// ErrCatalogue is wrapped by every catalogue decoding error.
var ErrCatalogue = errors.New("invalid catalogue")

// Catalogue holds every action and aura definition, indexed by identity.
// Entries are nil for identities the catalogue does not describe.
type Catalogue struct {
	Spells [NumIDs]*Definition
	Auras  [NumAuras]*AuraDefinition

	// sources maps a periodic aura to the action that applies it.
	sources [NumAuras]ID
}

type rawCatalogue struct {
	Spells map[string]rawSpell `yaml:"spells"`
	Auras  map[string]rawAura  `yaml:"auras"`
}

type rawSpell struct {
	Label    string        `yaml:"label"`
	Kind     string        `yaml:"kind"`
	School   string        `yaml:"school"`
	Tree     string        `yaml:"tree"`
	CastTime time.Duration `yaml:"cast_time"`
	Cooldown time.Duration `yaml:"cooldown"`
	OffGCD   bool          `yaml:"off_gcd"`
	ZeroGCD  bool          `yaml:"zero_gcd"`
	ManaCost float64       `yaml:"mana_cost"`

	Damage      []float64 `yaml:"damage"`
	Coefficient float64   `yaml:"coefficient"`
	NoMiss      bool      `yaml:"no_miss"`
	NoCrit      bool      `yaml:"no_crit"`
	BonusCrit   float64   `yaml:"bonus_crit"`

	Aura           string    `yaml:"aura"`
	PeriodicDamage float64   `yaml:"periodic_damage"`
	PeriodicCoeff  float64   `yaml:"periodic_coefficient"`
	ManaGain       []float64 `yaml:"mana_gain"`
	ManaGainCoeff  float64   `yaml:"mana_gain_coefficient"`
	CostsHealth    bool      `yaml:"costs_health"`
	DrainsPet      bool      `yaml:"drains_pet"`
	Requires       string    `yaml:"requires"`
	ConsumesAura   bool      `yaml:"consumes_aura"`
	InstantWith    string    `yaml:"instant_with"`
	OnCrit         *rawProc  `yaml:"on_crit"`
	TickProc       *rawProc  `yaml:"tick_proc"`
	WithAura       *rawBonus `yaml:"with_aura"`
	EmpoweredBy    *rawPower `yaml:"empowered_by"`
	Links          []rawLink `yaml:"links"`

	Trigger       string   `yaml:"trigger"`
	TriggerChance float64  `yaml:"trigger_chance"`
	TriggerSchool string   `yaml:"trigger_school"`
	TriggerSpells []string `yaml:"trigger_spells"`
	DischargeAt   int      `yaml:"discharge_at"`
}

type rawPower struct {
	Aura     string  `yaml:"aura"`
	Modifier float64 `yaml:"modifier"`
}

type rawProc struct {
	Aura   string  `yaml:"aura"`
	Chance float64 `yaml:"chance"`
}

type rawBonus struct {
	Aura   string    `yaml:"aura"`
	Damage []float64 `yaml:"damage"`
}

type rawLink struct {
	Target   string `yaml:"target"`
	Mode     string `yaml:"mode"`
	From     string `yaml:"from"`
	Required bool   `yaml:"required"`
}

type rawAura struct {
	Label          string          `yaml:"label"`
	Duration       time.Duration   `yaml:"duration"`
	TickInterval   time.Duration   `yaml:"tick_interval"`
	MaxStacks      int             `yaml:"max_stacks"`
	InitialStacks  int             `yaml:"initial_stacks"`
	Refresh        string          `yaml:"refresh"`
	Charges        bool            `yaml:"charges"`
	Bonus          character.Bonus `yaml:"bonus"`
	ManaPerTick    float64         `yaml:"mana_per_tick"`
	ManaPerTickPct float64         `yaml:"mana_per_tick_pct"`
	ConsumedBy     string          `yaml:"consumed_by"`
}

var schoolNames = map[string]character.School{
	"":         character.SchoolNone,
	"none":     character.SchoolNone,
	"shadow":   character.SchoolShadow,
	"fire":     character.SchoolFire,
	"nature":   character.SchoolNature,
	"physical": character.SchoolPhysical,
}

var triggerNames = map[string]gear.Trigger{
	"":     gear.TriggerNone,
	"miss": gear.TriggerMiss,
	"cast": gear.TriggerCast,
	"hit":  gear.TriggerHit,
	"crit": gear.TriggerCrit,
	"tick": gear.TriggerTick,
}

var treeNames = map[string]character.Tree{
	"":            character.TreeNone,
	"none":        character.TreeNone,
	"affliction":  character.TreeAffliction,
	"demonology":  character.TreeDemonology,
	"destruction": character.TreeDestruction,
}

var refreshNames = map[string]effects.RefreshPolicy{
	"":        effects.RefreshReplace,
	"replace": effects.RefreshReplace,
	"extend":  effects.RefreshExtend,
	"noop":    effects.RefreshNoop,
}

// Load decodes the embedded catalogue.
func Load() (*Catalogue, error) {
	return Parse(catalogueYAML)
}

// Parse decodes a catalogue document.
func Parse(data []byte) (*Catalogue, error) {
	var raw rawCatalogue
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse catalogue: %w", err)
	}

	c := &Catalogue{}
	var errs []string

	for _, name := range sortedKeys(raw.Auras) {
		def, err := raw.Auras[name].build(name)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		c.Auras[def.ID] = def
	}
	for _, name := range sortedKeys(raw.Spells) {
		def, err := raw.Spells[name].build(name)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		c.Spells[def.ID] = def
	}
	if len(errs) == 0 {
		errs = c.check()
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrCatalogue, strings.Join(errs, "; "))
	}
	c.index()
	return c, nil
}

func (r rawAura) build(name string) (*AuraDefinition, error) {
	id, ok := ParseAuraID(name)
	if !ok || id == AuraNone {
		return nil, fmt.Errorf("auras.%s: unknown aura", name)
	}
	refresh, ok := refreshNames[r.Refresh]
	if !ok {
		return nil, fmt.Errorf("auras.%s: unknown refresh policy %q", name, r.Refresh)
	}
	school, ok := schoolNames[r.ConsumedBy]
	if !ok {
		return nil, fmt.Errorf("auras.%s: unknown school %q", name, r.ConsumedBy)
	}
	if r.Duration < 0 || r.TickInterval < 0 {
		return nil, fmt.Errorf("auras.%s: durations must not be negative", name)
	}
	label := r.Label
	if label == "" {
		label = name
	}
	return &AuraDefinition{
		ID:             id,
		Label:          label,
		Duration:       r.Duration,
		TickInterval:   r.TickInterval,
		MaxStacks:      r.MaxStacks,
		InitialStacks:  r.InitialStacks,
		Refresh:        refresh,
		Charges:        r.Charges,
		Bonus:          r.Bonus,
		ManaPerTick:    r.ManaPerTick,
		ManaPerTickPct: r.ManaPerTickPct,
		ConsumedBy:     school,
	}, nil
}

func (r rawSpell) build(name string) (*Definition, error) {
	id, ok := ParseID(name)
	if !ok {
		return nil, fmt.Errorf("spells.%s: unknown action", name)
	}
	kind, ok := kindNames[r.Kind]
	if !ok {
		return nil, fmt.Errorf("spells.%s: unknown kind %q", name, r.Kind)
	}
	school, ok := schoolNames[r.School]
	if !ok {
		return nil, fmt.Errorf("spells.%s: unknown school %q", name, r.School)
	}
	tree, ok := treeNames[r.Tree]
	if !ok {
		return nil, fmt.Errorf("spells.%s: unknown tree %q", name, r.Tree)
	}
	if r.CastTime < 0 || r.Cooldown < 0 {
		return nil, fmt.Errorf("spells.%s: durations must not be negative", name)
	}

	def := &Definition{
		ID:             id,
		Label:          r.Label,
		Kind:           kind,
		School:         school,
		Tree:           tree,
		CastTime:       r.CastTime,
		Cooldown:       r.Cooldown,
		OffGCD:         r.OffGCD,
		ZeroGCD:        r.ZeroGCD,
		ManaCost:       r.ManaCost,
		Coefficient:    r.Coefficient,
		NoMiss:         r.NoMiss,
		NoCrit:         r.NoCrit,
		BonusCrit:      r.BonusCrit,
		PeriodicDamage: r.PeriodicDamage,
		PeriodicCoeff:  r.PeriodicCoeff,
		ManaGainCoeff:  r.ManaGainCoeff,
		ManaGainScale:  1,
		CostsHealth:    r.CostsHealth,
		DrainsPet:      r.DrainsPet,
		ConsumesAura:   r.ConsumesAura,
		TriggerChance:  r.TriggerChance,
		DischargeAt:    r.DischargeAt,
	}
	if def.Label == "" {
		def.Label = name
	}

	var err error
	if def.MinDamage, def.MaxDamage, err = span(r.Damage); err != nil {
		return nil, fmt.Errorf("spells.%s: damage: %w", name, err)
	}
	if def.ManaGainMin, def.ManaGainMax, err = span(r.ManaGain); err != nil {
		return nil, fmt.Errorf("spells.%s: mana_gain: %w", name, err)
	}
	if def.Aura, err = optionalAura(r.Aura); err != nil {
		return nil, fmt.Errorf("spells.%s: aura: %w", name, err)
	}
	if def.Requires, err = optionalAura(r.Requires); err != nil {
		return nil, fmt.Errorf("spells.%s: requires: %w", name, err)
	}
	if def.InstantWith, err = optionalAura(r.InstantWith); err != nil {
		return nil, fmt.Errorf("spells.%s: instant_with: %w", name, err)
	}
	if def.OnCrit, err = r.OnCrit.build(); err != nil {
		return nil, fmt.Errorf("spells.%s: on_crit: %w", name, err)
	}
	if def.TickProc, err = r.TickProc.build(); err != nil {
		return nil, fmt.Errorf("spells.%s: tick_proc: %w", name, err)
	}
	if r.WithAura != nil {
		aura, err := optionalAura(r.WithAura.Aura)
		if err != nil {
			return nil, fmt.Errorf("spells.%s: with_aura: %w", name, err)
		}
		lo, hi, err := span(r.WithAura.Damage)
		if err != nil {
			return nil, fmt.Errorf("spells.%s: with_aura: %w", name, err)
		}
		def.WithAuraBonus = &AuraBonus{Aura: aura, MinDamage: lo, MaxDamage: hi}
	}
	if r.EmpoweredBy != nil {
		aura, err := optionalAura(r.EmpoweredBy.Aura)
		if err != nil || aura == AuraNone {
			return nil, fmt.Errorf("spells.%s: empowered_by: aura %q", name, r.EmpoweredBy.Aura)
		}
		if r.EmpoweredBy.Modifier <= 0 {
			return nil, fmt.Errorf("spells.%s: empowered_by: modifier must be > 0", name)
		}
		def.EmpoweredBy = &Empowerment{Aura: aura, Modifier: r.EmpoweredBy.Modifier}
	}
	if def.Trigger, ok = triggerNames[r.Trigger]; !ok {
		return nil, fmt.Errorf("spells.%s: unknown trigger %q", name, r.Trigger)
	}
	if def.TriggerSchool, ok = schoolNames[r.TriggerSchool]; !ok {
		return nil, fmt.Errorf("spells.%s: unknown trigger_school %q", name, r.TriggerSchool)
	}
	for _, n := range r.TriggerSpells {
		src, ok := ParseID(n)
		if !ok {
			return nil, fmt.Errorf("spells.%s: trigger_spells: unknown action %q", name, n)
		}
		def.TriggerSpells = append(def.TriggerSpells, src)
	}
	for i, l := range r.Links {
		link, err := l.build()
		if err != nil {
			return nil, fmt.Errorf("spells.%s: links[%d]: %w", name, i, err)
		}
		def.Links = append(def.Links, link)
	}
	return def, nil
}

func (r *rawProc) build() (*Proc, error) {
	if r == nil {
		return nil, nil
	}
	aura, err := optionalAura(r.Aura)
	if err != nil {
		return nil, err
	}
	if aura == AuraNone {
		return nil, errors.New("aura is required")
	}
	return &Proc{Aura: aura, Chance: r.Chance}, nil
}

func (r rawLink) build() (CooldownLink, error) {
	target, ok := ParseID(r.Target)
	if !ok {
		return CooldownLink{}, fmt.Errorf("unknown target %q", r.Target)
	}
	link := CooldownLink{Target: target, Required: r.Required}
	switch r.Mode {
	case "", "set":
		link.Mode = LinkSet
	case "at_least":
		link.Mode = LinkAtLeast
	default:
		return CooldownLink{}, fmt.Errorf("unknown mode %q", r.Mode)
	}
	switch r.From {
	case "", "cooldown":
		link.From = FromCooldown
	case "aura":
		link.From = FromAura
	default:
		return CooldownLink{}, fmt.Errorf("unknown duration source %q", r.From)
	}
	return link, nil
}

func optionalAura(name string) (AuraID, error) {
	if name == "" {
		return AuraNone, nil
	}
	id, ok := ParseAuraID(name)
	if !ok {
		return AuraNone, fmt.Errorf("unknown aura %q", name)
	}
	return id, nil
}

// span reads a [min, max] or [value] pair.
func span(v []float64) (float64, float64, error) {
	switch len(v) {
	case 0:
		return 0, 0, nil
	case 1:
		return v[0], v[0], nil
	case 2:
		if v[1] < v[0] {
			return 0, 0, fmt.Errorf("max %v below min %v", v[1], v[0])
		}
		return v[0], v[1], nil
	default:
		return 0, 0, fmt.Errorf("want 1 or 2 values, got %d", len(v))
	}
}

// check verifies cross references between definitions.
func (c *Catalogue) check() []string {
	var errs []string
	for _, def := range c.Spells {
		if def == nil {
			continue
		}
		for _, ref := range []AuraID{def.Aura, def.Requires, def.InstantWith} {
			if ref != AuraNone && c.Auras[ref] == nil {
				errs = append(errs, fmt.Sprintf("spells.%s: aura %s is not defined", def.ID, ref))
			}
		}
		for _, p := range []*Proc{def.OnCrit, def.TickProc} {
			if p != nil && c.Auras[p.Aura] == nil {
				errs = append(errs, fmt.Sprintf("spells.%s: proc aura %s is not defined", def.ID, p.Aura))
			}
		}
		if (def.Kind == KindPeriodic || def.Kind == KindBuff) && def.Aura == AuraNone {
			errs = append(errs, fmt.Sprintf("spells.%s: %s action needs an aura", def.ID, def.Kind))
		}
		for _, l := range def.Links {
			if l.Target == def.ID {
				errs = append(errs, fmt.Sprintf("spells.%s: links to itself", def.ID))
			}
		}
		if e := def.EmpoweredBy; e != nil && c.Auras[e.Aura] == nil {
			errs = append(errs, fmt.Sprintf("spells.%s: empowering aura %s is not defined", def.ID, e.Aura))
		}
		errs = append(errs, checkProc(def)...)
	}
	return errs
}

func checkProc(def *Definition) []string {
	if def.Kind != KindProc {
		if def.Trigger != gear.TriggerNone {
			return []string{fmt.Sprintf("spells.%s: only proc actions take a trigger", def.ID)}
		}
		return nil
	}
	var errs []string
	if def.Trigger == gear.TriggerNone {
		errs = append(errs, fmt.Sprintf("spells.%s: proc action needs a trigger", def.ID))
	}
	if def.TriggerChance <= 0 || def.TriggerChance > 100 {
		errs = append(errs, fmt.Sprintf("spells.%s: trigger_chance must be in (0, 100], got %v", def.ID, def.TriggerChance))
	}
	if def.Aura == AuraNone && def.MaxDamage <= 0 && def.ManaGainMax <= 0 {
		errs = append(errs, fmt.Sprintf("spells.%s: proc action needs an aura, damage or mana_gain", def.ID))
	}
	if def.DischargeAt > 0 && (def.Aura == AuraNone || def.MaxDamage <= 0) {
		errs = append(errs, fmt.Sprintf("spells.%s: discharge_at needs an aura and damage", def.ID))
	}
	return errs
}

func (c *Catalogue) index() {
	for i := range c.sources {
		c.sources[i] = -1
	}
	for _, def := range c.Spells {
		if def == nil || def.Aura == AuraNone {
			continue
		}
		if c.sources[def.Aura] < 0 {
			c.sources[def.Aura] = def.ID
		}
	}
}

// Spell returns the definition for id, or nil.
func (c *Catalogue) Spell(id ID) *Definition {
	if !id.Valid() {
		return nil
	}
	return c.Spells[id]
}

// Aura returns the aura definition for id, or nil.
func (c *Catalogue) Aura(id AuraID) *AuraDefinition {
	if id <= AuraNone || id >= NumAuras {
		return nil
	}
	return c.Auras[id]
}

// Source returns the action that applies aura id.
func (c *Catalogue) Source(id AuraID) (*Definition, bool) {
	if id <= AuraNone || id >= NumAuras || c.sources[id] < 0 {
		return nil, false
	}
	return c.Spells[c.sources[id]], true
}

// Clone returns a deep copy that can be modified without touching c.
func (c *Catalogue) Clone() *Catalogue {
	out := &Catalogue{sources: c.sources}
	for i, def := range c.Spells {
		if def == nil {
			continue
		}
		cp := *def
		cp.Links = append([]CooldownLink(nil), def.Links...)
		if def.OnCrit != nil {
			p := *def.OnCrit
			cp.OnCrit = &p
		}
		if def.TickProc != nil {
			p := *def.TickProc
			cp.TickProc = &p
		}
		if def.WithAuraBonus != nil {
			b := *def.WithAuraBonus
			cp.WithAuraBonus = &b
		}
		if def.EmpoweredBy != nil {
			e := *def.EmpoweredBy
			cp.EmpoweredBy = &e
		}
		cp.TriggerSpells = append([]ID(nil), def.TriggerSpells...)
		out.Spells[i] = &cp
	}
	for i, def := range c.Auras {
		if def == nil {
			continue
		}
		cp := *def
		out.Auras[i] = &cp
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
