package spells

import (
	"time"

	"tbc-warlock-sim/internal/character"
	"tbc-warlock-sim/internal/effects"
	"tbc-warlock-sim/internal/gear"
)

// Kind selects how an action resolves.
type Kind int

const (
	// KindDirect deals damage when the cast completes.
	KindDirect Kind = iota
	// KindPeriodic applies a damage-over-time aura, with optional direct damage.
	KindPeriodic
	// KindResource restores mana immediately.
	KindResource
	// KindBuff applies a stat or mana-over-time aura.
	KindBuff
	// KindProc is never cast; its aura is applied by another event.
	KindProc
	numKinds
)

var kindLabels = [numKinds]string{
	KindDirect:   "direct",
	KindPeriodic: "periodic",
	KindResource: "resource",
	KindBuff:     "buff",
	KindProc:     "proc",
}

var kindNames = func() map[string]Kind {
	out := make(map[string]Kind, numKinds)
	for k, name := range kindLabels {
		out[name] = Kind(k)
	}
	return out
}()

func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return "unknown"
	}
	return kindLabels[k]
}

// Critical damage multipliers for spells and melee attacks.
const (
	CritMultiplier      = 1.5
	MeleeCritMultiplier = 2.0
)

// LinkMode selects how a cooldown link writes its target.
type LinkMode int

const (
	// LinkSet overwrites the target's remaining cooldown.
	LinkSet LinkMode = iota
	// LinkAtLeast raises the target's remaining cooldown if lower.
	LinkAtLeast
)

// LinkDuration selects which duration of the source a link propagates.
type LinkDuration int

const (
	// FromCooldown propagates the source action's cooldown.
	FromCooldown LinkDuration = iota
	// FromAura propagates the duration of the aura the source applies.
	FromAura
)

// CooldownLink declares that resolving an action writes the cooldown of
// another action, identified by ID.
type CooldownLink struct {
	Target ID
	Mode   LinkMode
	From   LinkDuration
	// Required links fail the run when the target is not registered.
	Required bool
}

// Proc applies an aura with a percentage chance.
type Proc struct {
	Aura   AuraID
	Chance float64
}

// AuraBonus adds damage while an aura is active on the target.
type AuraBonus struct {
	Aura      AuraID
	MinDamage float64
	MaxDamage float64
}

// Empowerment scales the periodic damage of the next application while an
// aura is active, consuming the aura.
type Empowerment struct {
	Aura     AuraID
	Modifier float64
}

// Definition is the static description of an action.
type Definition struct {
	ID    ID
	Label string
	Kind  Kind

	School character.School
	Tree   character.Tree

	CastTime time.Duration
	Cooldown time.Duration
	OffGCD   bool
	// ZeroGCD actions wait for the global cooldown but do not start it.
	ZeroGCD  bool
	ManaCost float64

	MinDamage   float64
	MaxDamage   float64
	Coefficient float64
	NoMiss      bool
	NoCrit      bool
	BonusCrit   float64

	Aura           AuraID
	PeriodicDamage float64
	PeriodicCoeff  float64
	ManaGainMin    float64
	ManaGainMax    float64
	ManaGainCoeff  float64
	ManaGainScale  float64
	CostsHealth    bool
	DrainsPet      bool
	Requires       AuraID
	ConsumesAura   bool
	InstantWith    AuraID
	OnCrit         *Proc
	TickProc       *Proc
	WithAuraBonus  *AuraBonus
	EmpoweredBy    *Empowerment
	Links          []CooldownLink

	// Trigger and TriggerChance drive KindProc definitions. A proc's
	// Cooldown is its internal cooldown.
	Trigger       gear.Trigger
	TriggerChance float64
	// TriggerSchool and TriggerSpells narrow the events a proc listens to.
	TriggerSchool character.School
	TriggerSpells []ID
	// DischargeAt is the number of stacks of Aura a proc collects before
	// its damage fires.
	DischargeAt int
}

// AuraDefinition is the static description of an aura.
type AuraDefinition struct {
	ID            AuraID
	Label         string
	Duration      time.Duration
	TickInterval  time.Duration
	MaxStacks     int
	InitialStacks int
	Refresh       effects.RefreshPolicy
	// Charges marks stacks as uses rather than intensity.
	Charges bool

	// Bonus is applied to the owner's sheet once per stack while active,
	// or once in total for charges.
	Bonus character.Bonus
	// ManaPerTick restores mana each tick; ManaPerTickPct restores a
	// percentage of maximum mana.
	ManaPerTick    float64
	ManaPerTickPct float64
	// ConsumedBy removes one stack per direct hit of this school.
	ConsumedBy character.School
}

// Ticks returns the number of full ticks over the aura's duration.
func (d *AuraDefinition) Ticks() int {
	if d.TickInterval <= 0 || d.Duration <= 0 {
		return 0
	}
	return int(d.Duration / d.TickInterval)
}

// ActiveBonus returns the sheet bonus for the given stack count.
func (d *AuraDefinition) ActiveBonus(stacks int) character.Bonus {
	if stacks <= 0 {
		return character.NoBonus()
	}
	if d.Charges {
		stacks = 1
	}
	return character.NoBonus().Add(d.Bonus.Scale(stacks))
}

// NewAura builds the runtime aura for a definition.
func (d *AuraDefinition) NewAura() *effects.Aura {
	return &effects.Aura{
		Label:         d.Label,
		Duration:      d.Duration,
		TickInterval:  d.TickInterval,
		MaxStacks:     d.MaxStacks,
		InitialStacks: d.InitialStacks,
		Refresh:       d.Refresh,
	}
}
