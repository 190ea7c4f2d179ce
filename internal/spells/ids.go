package spells

import "fmt"

// ID identifies an action. IDs are dense so per-action state and results
// live in fixed arrays.
type ID int

const (
	ShadowBolt ID = iota
	Incinerate
	SearingPain
	Immolate
	Corruption
	CurseOfAgony
	CurseOfDoom
	CurseOfTheElements
	CurseOfRecklessness
	Conflagrate
	Shadowburn
	LifeTap
	DarkPact
	SuperManaPotion
	DemonicRune
	ChippedPowerCore
	CrackedPowerCore
	DestructionPotion
	FlameCap
	BloodFury
	PowerInfusion
	Innervate
	Bloodlust
	ManaTideTotem
	DrumsOfBattle
	DrumsOfWar
	DrumsOfRestoration
	UnstableAffliction
	SiphonLife
	DeathCoil
	Shadowfury
	AmplifyCurse
	Trinket1
	Trinket2
	// Item, set and raid procs. They are never cast.
	JudgementOfWisdom
	Flameshadow
	Shadowflame
	Spellstrike
	ManaEtched4
	BladeOfWizardry
	RobeOfTheElderScribes
	BandOfTheEternalSage
	MysticalSkyfireDiamond
	InsightfulEarthstormDiamond
	// Demon abilities.
	Firebolt
	LashOfPain
	Cleave
	Melee
	// Mp5 is never cast. It attributes passive regeneration in results.
	Mp5
	NumIDs
)

var idNames = [NumIDs]string{
	ShadowBolt:          "shadow_bolt",
	Incinerate:          "incinerate",
	SearingPain:         "searing_pain",
	Immolate:            "immolate",
	Corruption:          "corruption",
	CurseOfAgony:        "curse_of_agony",
	CurseOfDoom:         "curse_of_doom",
	CurseOfTheElements:  "curse_of_the_elements",
	CurseOfRecklessness: "curse_of_recklessness",
	Conflagrate:         "conflagrate",
	Shadowburn:          "shadowburn",
	LifeTap:             "life_tap",
	DarkPact:            "dark_pact",
	SuperManaPotion:     "super_mana_potion",
	DemonicRune:         "demonic_rune",
	ChippedPowerCore:    "chipped_power_core",
	CrackedPowerCore:    "cracked_power_core",
	DestructionPotion:   "destruction_potion",
	FlameCap:            "flame_cap",
	BloodFury:           "blood_fury",
	PowerInfusion:       "power_infusion",
	Innervate:           "innervate",
	Bloodlust:           "bloodlust",
	ManaTideTotem:       "mana_tide_totem",
	DrumsOfBattle:       "drums_of_battle",
	DrumsOfWar:          "drums_of_war",
	DrumsOfRestoration:  "drums_of_restoration",
	UnstableAffliction:  "unstable_affliction",
	SiphonLife:          "siphon_life",
	DeathCoil:           "death_coil",
	Shadowfury:          "shadowfury",
	AmplifyCurse:        "amplify_curse",
	Trinket1:            "trinket_1",
	Trinket2:            "trinket_2",

	JudgementOfWisdom:           "judgement_of_wisdom",
	Flameshadow:                 "flameshadow",
	Shadowflame:                 "shadowflame",
	Spellstrike:                 "spellstrike",
	ManaEtched4:                 "mana_etched_4",
	BladeOfWizardry:             "blade_of_wizardry",
	RobeOfTheElderScribes:       "robe_of_the_elder_scribes",
	BandOfTheEternalSage:        "band_of_the_eternal_sage",
	MysticalSkyfireDiamond:      "mystical_skyfire_diamond",
	InsightfulEarthstormDiamond: "insightful_earthstorm_diamond",

	Firebolt:   "firebolt",
	LashOfPain: "lash_of_pain",
	Cleave:     "cleave",
	Melee:      "melee",
	Mp5:        "mp5",
}

var idByName = func() map[string]ID {
	out := make(map[string]ID, NumIDs)
	for id, name := range idNames {
		out[name] = ID(id)
	}
	return out
}()

func (id ID) String() string {
	if id < 0 || id >= NumIDs {
		return fmt.Sprintf("spell(%d)", int(id))
	}
	return idNames[id]
}

// Valid reports whether id names a real action.
func (id ID) Valid() bool {
	return id >= 0 && id < NumIDs
}

// ParseID resolves a snake_case action name.
func ParseID(name string) (ID, bool) {
	id, ok := idByName[name]
	return id, ok
}

// AuraID identifies an aura. AuraNone is the zero value.
type AuraID int

const (
	AuraNone AuraID = iota
	AuraCorruption
	AuraImmolate
	AuraCurseOfAgony
	AuraCurseOfDoom
	AuraCurseOfTheElements
	AuraCurseOfRecklessness
	AuraShadowTrance
	AuraImprovedShadowBolt
	AuraPowerInfusion
	AuraInnervate
	AuraBloodlust
	AuraManaTideTotem
	AuraDestructionPotion
	AuraFlameCap
	AuraBloodFury
	AuraChippedPowerCore
	AuraCrackedPowerCore
	AuraDrumsOfBattle
	AuraDrumsOfWar
	AuraDrumsOfRestoration
	AuraTrinket1
	AuraTrinket2
	AuraUnstableAffliction
	AuraSiphonLife
	AuraAmplifyCurse
	AuraFlameshadow
	AuraShadowflame
	AuraSpellstrike
	AuraManaEtched4
	AuraBladeOfWizardry
	AuraRobeOfTheElderScribes
	AuraBandOfTheEternalSage
	AuraMysticalSkyfireDiamond
	NumAuras
)

var auraNames = [NumAuras]string{
	AuraNone:                "none",
	AuraCorruption:          "corruption",
	AuraImmolate:            "immolate",
	AuraCurseOfAgony:        "curse_of_agony",
	AuraCurseOfDoom:         "curse_of_doom",
	AuraCurseOfTheElements:  "curse_of_the_elements",
	AuraCurseOfRecklessness: "curse_of_recklessness",
	AuraShadowTrance:        "shadow_trance",
	AuraImprovedShadowBolt:  "improved_shadow_bolt",
	AuraPowerInfusion:       "power_infusion",
	AuraInnervate:           "innervate",
	AuraBloodlust:           "bloodlust",
	AuraManaTideTotem:       "mana_tide_totem",
	AuraDestructionPotion:   "destruction_potion",
	AuraFlameCap:            "flame_cap",
	AuraBloodFury:           "blood_fury",
	AuraChippedPowerCore:    "chipped_power_core",
	AuraCrackedPowerCore:    "cracked_power_core",
	AuraDrumsOfBattle:       "drums_of_battle",
	AuraDrumsOfWar:          "drums_of_war",
	AuraDrumsOfRestoration:  "drums_of_restoration",
	AuraTrinket1:            "trinket_1",
	AuraTrinket2:            "trinket_2",

	AuraUnstableAffliction:     "unstable_affliction",
	AuraSiphonLife:             "siphon_life",
	AuraAmplifyCurse:           "amplify_curse",
	AuraFlameshadow:            "flameshadow",
	AuraShadowflame:            "shadowflame",
	AuraSpellstrike:            "spellstrike",
	AuraManaEtched4:            "mana_etched_4",
	AuraBladeOfWizardry:        "blade_of_wizardry",
	AuraRobeOfTheElderScribes:  "robe_of_the_elder_scribes",
	AuraBandOfTheEternalSage:   "band_of_the_eternal_sage",
	AuraMysticalSkyfireDiamond: "mystical_skyfire_diamond",
}

var auraByName = func() map[string]AuraID {
	out := make(map[string]AuraID, NumAuras)
	for id, name := range auraNames {
		out[name] = AuraID(id)
	}
	return out
}()

func (id AuraID) String() string {
	if id < 0 || id >= NumAuras {
		return fmt.Sprintf("aura(%d)", int(id))
	}
	return auraNames[id]
}

// ParseAuraID resolves a snake_case aura name.
func ParseAuraID(name string) (AuraID, bool) {
	id, ok := auraByName[name]
	return id, ok
}
