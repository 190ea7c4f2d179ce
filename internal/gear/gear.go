package gear

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

type Kind string

const (
	KindUse  Kind = "use"
	KindProc Kind = "proc"
)

// Stat names a bonus a trinket grants while its aura is active.
type Stat string

const (
	StatSpellPower  Stat = "spell_power"
	StatHasteRating Stat = "haste_rating"
	StatCritRating  Stat = "crit_rating"
)

// Trigger names the event a proc trinket listens to.
type Trigger string

const (
	TriggerNone Trigger = ""
	TriggerMiss Trigger = "miss"
	TriggerCast Trigger = "cast"
	TriggerHit  Trigger = "hit"
	TriggerCrit Trigger = "crit"
	// TriggerTick fires on periodic damage ticks.
	TriggerTick Trigger = "tick"
)

// Effect is what a proc trinket does when it fires.
type Effect string

const (
	EffectStat   Effect = ""
	EffectDamage Effect = "damage"
	EffectMana   Effect = "mana"
)

const (
	TrinketSkullOfGuldan                = "skull_of_guldan"
	TrinketShiftingNaaruSliver          = "shifting_naaru_sliver"
	TrinketHexShrunkenHead              = "hex_shrunken_head"
	TrinketIconOfTheSilverCrescent      = "icon_of_the_silver_crescent"
	TrinketScryersBloodgem              = "scryers_bloodgem"
	TrinketRestrainedEssenceOfSapphiron = "restrained_essence_of_sapphiron"
	TrinketXirisGift                    = "xiris_gift"
	TrinketAncientCrystalTalisman       = "ancient_crystal_talisman"
	TrinketArcanistsStone               = "arcanists_stone"
	TrinketTerokkarTabletOfVim          = "terokkar_tablet_of_vim"
	TrinketVengeanceOfTheIllidari       = "vengeance_of_the_illidari"
	TrinketFigurineLivingRubySerpent    = "figurine_living_ruby_serpent"
	TrinketEssenceOfTheMartyr           = "essence_of_the_martyr"
	TrinketStarkillersBauble            = "starkillers_bauble"
	TrinketDarkIronSmokingPipe          = "dark_iron_smoking_pipe"
	TrinketHazzarahsCharmOfDestruction  = "hazzarahs_charm_of_destruction"
	TrinketEyeOfMagtheridon             = "eye_of_magtheridon"
	TrinketDarkmoonCardCrusade          = "darkmoon_card_crusade"
	TrinketTheLightningCapacitor        = "the_lightning_capacitor"
	TrinketQuagmirransEye               = "quagmirrans_eye"
	TrinketShiffarsNexusHorn            = "shiffars_nexus_horn"
	TrinketSextantOfUnstableCurrents    = "sextant_of_unstable_currents"
	TrinketAshtongueTalismanOfShadows   = "ashtongue_talisman_of_shadows"
	TrinketTimbalsFocusingCrystal       = "timbals_focusing_crystal"
	TrinketMarkOfDefiance               = "mark_of_defiance"
)

// Trinket describes an equipped trinket the engine models.
type Trinket struct {
	Name     string
	ItemID   int
	Kind     Kind
	Stat     Stat
	Amount   float64
	Duration time.Duration
	Cooldown time.Duration
	// SharesCooldown puts the other equipped sharing trinket on cooldown for
	// this trinket's duration when used.
	SharesCooldown bool
	Trigger        Trigger
	ProcChance     float64
	MaxStacks      int
	// TriggerSpell limits a proc to events of one action, by name.
	TriggerSpell string

	// Effect selects between a stat aura and an instant damage or mana
	// effect rolled in [Min, Max].
	Effect   Effect
	School   string
	Min, Max float64
	// Charges is the number of triggers stored before a damage effect
	// discharges.
	Charges int
}

func proc(name string, id int, trigger Trigger, chance float64, icd time.Duration) Trinket {
	return Trinket{
		Name:       name,
		ItemID:     id,
		Kind:       KindProc,
		Trigger:    trigger,
		ProcChance: chance,
		Cooldown:   icd,
		MaxStacks:  1,
	}
}

func (t Trinket) grants(stat Stat, amount float64, dur time.Duration) Trinket {
	t.Stat, t.Amount, t.Duration = stat, amount, dur
	return t
}

func (t Trinket) deals(school string, lo, hi float64) Trinket {
	t.Effect, t.School, t.Min, t.Max = EffectDamage, school, lo, hi
	return t
}

func (t Trinket) restores(lo, hi float64) Trinket {
	t.Effect, t.Min, t.Max = EffectMana, lo, hi
	return t
}

func use(name string, id int, stat Stat, amount float64, dur, cd time.Duration) Trinket {
	return Trinket{
		Name:           name,
		ItemID:         id,
		Kind:           KindUse,
		Stat:           stat,
		Amount:         amount,
		Duration:       dur,
		Cooldown:       cd,
		SharesCooldown: true,
	}
}

const sec = time.Second

var trinkets = map[string]Trinket{
	TrinketSkullOfGuldan:                use(TrinketSkullOfGuldan, 32483, StatHasteRating, 175, 20*sec, 120*sec),
	TrinketShiftingNaaruSliver:          use(TrinketShiftingNaaruSliver, 34429, StatSpellPower, 320, 15*sec, 90*sec),
	TrinketHexShrunkenHead:              use(TrinketHexShrunkenHead, 33829, StatSpellPower, 211, 20*sec, 120*sec),
	TrinketIconOfTheSilverCrescent:      use(TrinketIconOfTheSilverCrescent, 29370, StatSpellPower, 155, 20*sec, 120*sec),
	TrinketScryersBloodgem:              use(TrinketScryersBloodgem, 29132, StatSpellPower, 150, 15*sec, 90*sec),
	TrinketRestrainedEssenceOfSapphiron: use(TrinketRestrainedEssenceOfSapphiron, 23046, StatSpellPower, 130, 20*sec, 120*sec),
	TrinketXirisGift:                    use(TrinketXirisGift, 29179, StatSpellPower, 150, 15*sec, 90*sec),
	TrinketAncientCrystalTalisman:       use(TrinketAncientCrystalTalisman, 25620, StatSpellPower, 104, 20*sec, 120*sec),
	TrinketArcanistsStone:               use(TrinketArcanistsStone, 28223, StatSpellPower, 167, 20*sec, 120*sec),
	TrinketTerokkarTabletOfVim:          use(TrinketTerokkarTabletOfVim, 25936, StatSpellPower, 84, 15*sec, 90*sec),
	TrinketVengeanceOfTheIllidari:       use(TrinketVengeanceOfTheIllidari, 28040, StatSpellPower, 120, 15*sec, 90*sec),
	TrinketFigurineLivingRubySerpent:    use(TrinketFigurineLivingRubySerpent, 24126, StatSpellPower, 150, 20*sec, 300*sec),
	TrinketEssenceOfTheMartyr:           use(TrinketEssenceOfTheMartyr, 29376, StatSpellPower, 99, 20*sec, 120*sec),
	TrinketStarkillersBauble:            use(TrinketStarkillersBauble, 30340, StatSpellPower, 125, 20*sec, 90*sec),
	TrinketDarkIronSmokingPipe:          use(TrinketDarkIronSmokingPipe, 38290, StatSpellPower, 155, 20*sec, 120*sec),
	TrinketHazzarahsCharmOfDestruction:  use(TrinketHazzarahsCharmOfDestruction, 19957, StatCritRating, 190, 20*sec, 180*sec),

	TrinketEyeOfMagtheridon: {
		Name: TrinketEyeOfMagtheridon, ItemID: 28789, Kind: KindProc,
		Stat: StatSpellPower, Amount: 170, Duration: 10 * sec,
		Trigger: TriggerMiss, ProcChance: 100, MaxStacks: 1,
	},
	TrinketDarkmoonCardCrusade: {
		Name: TrinketDarkmoonCardCrusade, ItemID: 31856, Kind: KindProc,
		Stat: StatSpellPower, Amount: 8, Duration: 10 * sec,
		Trigger: TriggerCast, ProcChance: 100, MaxStacks: 10,
	},

	TrinketTheLightningCapacitor: func() Trinket {
		t := proc(TrinketTheLightningCapacitor, 28785, TriggerCrit, 100, 2500*time.Millisecond).deals("nature", 694, 806)
		t.Charges = 3
		return t
	}(),
	TrinketQuagmirransEye: proc(TrinketQuagmirransEye, 27683, TriggerCast, 10, 45*sec).
		grants(StatHasteRating, 320, 6*sec),
	TrinketShiffarsNexusHorn: proc(TrinketShiffarsNexusHorn, 28418, TriggerCrit, 20, 45*sec).
		grants(StatSpellPower, 225, 10*sec),
	TrinketSextantOfUnstableCurrents: proc(TrinketSextantOfUnstableCurrents, 30626, TriggerCrit, 20, 45*sec).
		grants(StatSpellPower, 190, 15*sec),
	TrinketAshtongueTalismanOfShadows: func() Trinket {
		t := proc(TrinketAshtongueTalismanOfShadows, 32493, TriggerTick, 20, 0).grants(StatSpellPower, 220, 5*sec)
		t.TriggerSpell = "corruption"
		return t
	}(),
	TrinketTimbalsFocusingCrystal: proc(TrinketTimbalsFocusingCrystal, 34470, TriggerTick, 10, 15*sec).
		deals("shadow", 285, 475),
	TrinketMarkOfDefiance: proc(TrinketMarkOfDefiance, 27922, TriggerHit, 15, 17*sec).
		restores(128, 172),
}

// Slot is an equipment slot holding a modelled non-trinket item.
type Slot string

const (
	SlotMainHand Slot = "main_hand"
	SlotChest    Slot = "chest"
	SlotFinger   Slot = "finger"
	SlotMetaGem  Slot = "meta_gem"
)

const (
	ItemBladeOfWizardry             = "blade_of_wizardry"
	ItemRobeOfTheElderScribes       = "robe_of_the_elder_scribes"
	ItemBandOfTheEternalSage        = "band_of_the_eternal_sage"
	ItemMysticalSkyfireDiamond      = "mystical_skyfire_diamond"
	ItemInsightfulEarthstormDiamond = "insightful_earthstorm_diamond"
)

// Item is an equipped non-trinket item with a proc. Its effect is the
// action catalogue entry of the same name.
type Item struct {
	Name   string
	ItemID int
	Slot   Slot
}

var items = map[string]Item{
	ItemBladeOfWizardry:             {ItemBladeOfWizardry, 31336, SlotMainHand},
	ItemRobeOfTheElderScribes:       {ItemRobeOfTheElderScribes, 28602, SlotChest},
	ItemBandOfTheEternalSage:        {ItemBandOfTheEternalSage, 29305, SlotFinger},
	ItemMysticalSkyfireDiamond:      {ItemMysticalSkyfireDiamond, 25893, SlotMetaGem},
	ItemInsightfulEarthstormDiamond: {ItemInsightfulEarthstormDiamond, 25901, SlotMetaGem},
}

var byItemID = func() map[int]string {
	out := make(map[int]string, len(trinkets)+len(items))
	for name, t := range trinkets {
		out[t.ItemID] = name
	}
	for name, it := range items {
		out[it.ItemID] = name
	}
	return out
}()

// Normalize returns the canonical lowercase snake_case item name. Numeric
// item ids are translated to their name when known.
func Normalize(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, " ", "_")
	n = strings.ReplaceAll(n, "'", "")
	n = strings.ReplaceAll(n, "-", "_")
	if id, err := strconv.Atoi(n); err == nil {
		if named, ok := byItemID[id]; ok {
			return named
		}
	}
	return n
}

// Lookup returns the trinket and whether it is known.
func Lookup(name string) (Trinket, bool) {
	t, ok := trinkets[Normalize(name)]
	return t, ok
}

// IsKnown returns true if the trinket identifier is recognized.
func IsKnown(name string) bool {
	_, ok := Lookup(name)
	return ok
}

// Known returns all trinket identifiers in sorted order.
func Known() []string {
	out := make([]string, 0, len(trinkets))
	for k := range trinkets {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// LookupItem returns the non-trinket item and whether it is known.
func LookupItem(name string) (Item, bool) {
	it, ok := items[Normalize(name)]
	return it, ok
}

// KnownItems returns all non-trinket item identifiers in sorted order.
func KnownItems() []string {
	out := make([]string, 0, len(items))
	for k := range items {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
