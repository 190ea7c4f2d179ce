package spells

import (
	"errors"
	"fmt"
	"math"
	"time"

	"tbc-warlock-sim/internal/character"
	"tbc-warlock-sim/internal/effects"
	"tbc-warlock-sim/internal/rng"
)

var (
	// ErrNegativeCooldown reports an attempt to start a cooldown below zero.
	ErrNegativeCooldown = errors.New("negative cooldown")
	// ErrMissingSibling reports a required cooldown link whose target is not
	// registered on the caster.
	ErrMissingSibling = errors.New("missing linked action")
)

// Caster is the combatant that owns and resolves actions.
type Caster interface {
	Rng() *rng.Source
	Sheet() *character.Sheet

	Mana() float64
	SpendMana(amount float64)
	// GainMana restores mana and returns the amount actually gained.
	GainMana(amount float64) float64
	SpendHealth(amount float64)
	PetMana() float64
	// DrainPetMana removes up to amount from the pet and returns what was taken.
	DrainPetMana(amount float64) float64

	GCD() *effects.Timer
	Action(id ID) *Action
	Aura(id AuraID) *effects.Aura
	// ApplyAura activates an aura with a snapshotted magnitude.
	ApplyAura(id AuraID, magnitude float64) bool
	// ConsumeCharges removes one charge from every aura consumed by school.
	ConsumeCharges(school character.School)

	Record(o Outcome)
	Logf(format string, args ...any)
}

// Outcome is one resolved cast or periodic tick.
type Outcome struct {
	ID       ID
	Damage   float64
	ManaGain float64
	Cast     bool
	Hit      bool
	Crit     bool
	Miss     bool
	Tick     bool
	// Proc marks damage or mana from a passive proc, which never triggers
	// further procs.
	Proc bool
}

// Action is the runtime state of a definition on one caster. An action with
// several copies has one cooldown per copy, as when a raid provides more
// than one of the same external cooldown.
type Action struct {
	Def *Definition

	cooldowns []effects.Timer
	cast      effects.Timer
	casting   bool
	pending   int
}

// NewAction returns an idle action with the given number of cooldown copies.
func NewAction(def *Definition, copies int) *Action {
	return &Action{
		Def:       def,
		cooldowns: make([]effects.Timer, max(1, copies)),
	}
}

// Reset returns the action to idle with every cooldown ready.
func (a *Action) Reset() {
	for i := range a.cooldowns {
		a.cooldowns[i].Reset()
	}
	a.cast.Reset()
	a.casting = false
	a.pending = 0
}

// Copies returns the number of independent cooldowns.
func (a *Action) Copies() int { return len(a.cooldowns) }

// ReadyCopies returns how many copies are off cooldown.
func (a *Action) ReadyCopies() int {
	n := 0
	for i := range a.cooldowns {
		if a.cooldowns[i].Ready() {
			n++
		}
	}
	return n
}

// Casting reports whether a cast is in progress.
func (a *Action) Casting() bool { return a.casting }

// CastRemaining returns the time until the cast in progress resolves.
func (a *Action) CastRemaining() time.Duration {
	if !a.casting {
		return 0
	}
	return a.cast.Remaining()
}

// Cooldown returns the shortest remaining cooldown across copies.
func (a *Action) Cooldown() time.Duration {
	best := a.cooldowns[0].Remaining()
	for i := range a.cooldowns[1:] {
		best = min(best, a.cooldowns[i+1].Remaining())
	}
	return best
}

func (a *Action) readyCopy() int {
	for i := range a.cooldowns {
		if a.cooldowns[i].Ready() {
			return i
		}
	}
	return -1
}

// ManaCost returns the current cost after mana cost modifiers.
func (a *Action) ManaCost(c Caster) float64 {
	return a.Def.ManaCost * c.Sheet().ManaCostModifier()
}

// CastTime returns the hasted cast time, rounded to 0.1ms.
func (a *Action) CastTime(c Caster) time.Duration {
	if a.Def.CastTime <= 0 {
		return 0
	}
	ticks := math.Round(a.Def.CastTime.Seconds() / c.Sheet().HastePercent() * 10000)
	return time.Duration(ticks) * 100 * time.Microsecond
}

// Ready reports whether a cooldown copy is available, the cost is
// affordable and, for actions on the global cooldown, the GCD has elapsed.
func (a *Action) Ready(c Caster) bool {
	if a.Def.Kind == KindProc || a.readyCopy() < 0 {
		return false
	}
	if !a.Def.OffGCD && !c.GCD().Ready() {
		return false
	}
	return c.Mana() >= a.ManaCost(c)
}

// Usable reports whether the action's situational preconditions hold.
func (a *Action) Usable(c Caster) bool {
	def := a.Def
	if def.Requires != AuraNone && !c.Aura(def.Requires).Active() {
		return false
	}
	if def.DrainsPet && c.PetMana() < a.manaGain(c, def.ManaGainMax) {
		return false
	}
	return true
}

// StartCast spends the cost, starts the GCD and begins casting. Instant
// casts resolve immediately. It returns false without changing state when
// the action is not Ready.
func (a *Action) StartCast(c Caster) (bool, error) {
	if !a.Ready(c) {
		return false, nil
	}
	def := a.Def
	a.pending = a.readyCopy()
	if cost := a.ManaCost(c); cost > 0 {
		c.SpendMana(cost)
	}
	if !def.OffGCD && !def.ZeroGCD {
		c.GCD().Set(c.Sheet().GCD())
	}

	castTime := a.CastTime(c)
	if def.InstantWith != AuraNone {
		if aura := c.Aura(def.InstantWith); aura.Active() {
			castTime = 0
			aura.Fade()
		}
	}
	if castTime <= 0 {
		return true, a.resolve(c)
	}
	a.casting = true
	a.cast.Set(castTime)
	c.Logf("CAST_START %s (cast %.2fs)", def.Label, castTime.Seconds())
	return true, nil
}

// NextEvent returns the time until the cast resolves or a cooldown copy
// becomes ready.
func (a *Action) NextEvent() (time.Duration, bool) {
	next, ok := time.Duration(0), false
	if a.casting {
		next, ok = a.cast.Remaining(), true
	}
	for i := range a.cooldowns {
		if r := a.cooldowns[i].Remaining(); r > 0 && (!ok || r < next) {
			next, ok = r, true
		}
	}
	return next, ok
}

// Advance counts down cooldowns and the cast, resolving it when it completes.
func (a *Action) Advance(c Caster, dt time.Duration) error {
	for i := range a.cooldowns {
		a.cooldowns[i].Advance(dt)
	}
	if a.casting && a.cast.Advance(dt) {
		a.casting = false
		return a.resolve(c)
	}
	return nil
}

// SetCooldown overwrites the remaining cooldown of every copy.
func (a *Action) SetCooldown(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("%w: %s set to %s", ErrNegativeCooldown, a.Def.ID, d)
	}
	for i := range a.cooldowns {
		a.cooldowns[i].Set(d)
	}
	return nil
}

// RaiseCooldown lifts every copy's remaining cooldown to at least d.
func (a *Action) RaiseCooldown(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("%w: %s raised to %s", ErrNegativeCooldown, a.Def.ID, d)
	}
	for i := range a.cooldowns {
		a.cooldowns[i].SetAtLeast(d)
	}
	return nil
}

func (a *Action) resolve(c Caster) error {
	def := a.Def
	out := Outcome{ID: def.ID, Cast: true}

	if def.Kind == KindResource {
		out.Hit = true
		out.ManaGain = a.restore(c)
		c.Record(out)
		return a.startCooldown(c)
	}

	if !a.hits(c) {
		out.Miss = true
		c.Logf("CAST_RESULT %s MISS", def.Label)
		c.Record(out)
		return a.startCooldown(c)
	}
	out.Hit = true

	if def.MaxDamage > 0 || def.Coefficient > 0 {
		out.Damage, out.Crit = a.damage(c)
		c.Logf("CAST_RESULT %s %s damage=%.0f", def.Label, resultName(out.Crit), out.Damage)
		c.ConsumeCharges(def.School)
	}

	switch def.Kind {
	case KindPeriodic:
		magnitude := a.periodicMagnitude(c)
		if e := def.EmpoweredBy; e != nil {
			if aura := c.Aura(e.Aura); aura.Active() {
				magnitude *= e.Modifier
				aura.Fade()
			}
		}
		c.ApplyAura(def.Aura, magnitude)
	case KindBuff:
		c.ApplyAura(def.Aura, 0)
	}

	if def.ConsumesAura && def.Requires != AuraNone {
		if aura := c.Aura(def.Requires); aura != nil {
			aura.Fade()
		}
	}
	if out.Crit && def.OnCrit != nil && c.Rng().IsSuccess(def.OnCrit.Chance) {
		c.ApplyAura(def.OnCrit.Aura, 0)
	}
	c.Record(out)
	return a.startCooldown(c)
}

func resultName(crit bool) string {
	if crit {
		return "CRIT"
	}
	return "HIT"
}

// hits rolls the hit check, using the melee table for physical attacks.
func (a *Action) hits(c Caster) bool {
	def := a.Def
	return def.NoMiss || c.Rng().IsSuccess(c.Sheet().AttackHitChance(def.School, def.Tree))
}

func (a *Action) damage(c Caster) (float64, bool) {
	def := a.Def
	s := c.Sheet()
	r := c.Rng()

	crit := false
	if !def.NoCrit {
		crit = r.IsSuccess(s.AttackCritChance(def.School, def.Tree) + def.BonusCrit)
	}
	dmg := roll(r, def.MinDamage, def.MaxDamage) + s.Power(def.School)*def.Coefficient
	if b := def.WithAuraBonus; b != nil && c.Aura(b.Aura).Active() {
		dmg += roll(r, b.MinDamage, b.MaxDamage)
	}
	dmg *= s.DamageModifier(def.School) * s.Mitigation(def.School)
	if crit {
		dmg *= critMultiplier(def.School)
	}
	return dmg, crit
}

func critMultiplier(school character.School) float64 {
	if school == character.SchoolPhysical {
		return MeleeCritMultiplier
	}
	return CritMultiplier
}

// periodicMagnitude snapshots the per-tick damage at application time.
func (a *Action) periodicMagnitude(c Caster) float64 {
	def := a.Def
	aura := c.Aura(def.Aura)
	if aura == nil || aura.TickInterval <= 0 || aura.Duration <= 0 {
		return 0
	}
	ticks := float64(aura.Duration / aura.TickInterval)
	return (def.PeriodicDamage + c.Sheet().SpellPower(def.School)*def.PeriodicCoeff) / ticks
}

func (a *Action) manaGain(c Caster, base float64) float64 {
	return (base + c.Sheet().SpellPower(a.Def.School)*a.Def.ManaGainCoeff) * a.Def.ManaGainScale
}

// restore resolves a mana-restoring action and returns the mana gained.
func (a *Action) restore(c Caster) float64 {
	def := a.Def
	amount := a.manaGain(c, roll(c.Rng(), def.ManaGainMin, def.ManaGainMax))
	if def.CostsHealth {
		c.SpendHealth(amount / def.ManaGainScale)
	}
	if def.DrainsPet {
		amount = c.DrainPetMana(amount)
	}
	gained := c.GainMana(amount)
	c.Logf("MANA_GAIN %s +%.0f", def.Label, gained)
	return gained
}

func (a *Action) startCooldown(c Caster) error {
	def := a.Def
	if def.Cooldown < 0 {
		return fmt.Errorf("%w: %s has cooldown %s", ErrNegativeCooldown, def.ID, def.Cooldown)
	}
	if a.pending >= 0 && a.pending < len(a.cooldowns) {
		a.cooldowns[a.pending].Set(def.Cooldown)
	}
	for _, l := range def.Links {
		target := c.Action(l.Target)
		if target == nil {
			if l.Required {
				return fmt.Errorf("%w: %s requires %s", ErrMissingSibling, def.ID, l.Target)
			}
			continue
		}
		d := def.Cooldown
		if l.From == FromAura {
			d = 0
			if aura := c.Aura(def.Aura); aura != nil {
				d = aura.Duration
			}
		}
		var err error
		switch l.Mode {
		case LinkAtLeast:
			err = target.RaiseCooldown(d)
		default:
			err = target.SetCooldown(d)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// roll draws a whole number in [lo, hi].
func roll(r *rng.Source, lo, hi float64) float64 {
	return float64(r.Range(int(lo), int(hi)))
}
