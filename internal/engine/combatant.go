package engine

import (
	"errors"
	"fmt"
	"time"

	"tbc-warlock-sim/internal/apl"
	"tbc-warlock-sim/internal/character"
	"tbc-warlock-sim/internal/combatlog"
	"tbc-warlock-sim/internal/config"
	"tbc-warlock-sim/internal/effects"
	"tbc-warlock-sim/internal/rng"
	"tbc-warlock-sim/internal/spells"
)

const (
	mp5Interval            = 5 * time.Second
	fiveSecondRuleDuration = 5 * time.Second
)

// Options tunes Initialize beyond what the configuration holds.
type Options struct {
	// Seed overrides simulation.seed when non-zero.
	Seed     uint64
	Rotation *apl.CompiledRotation
	// Policy replaces both the rotation and the built-in priority.
	Policy Policy
	Sink   combatlog.Sink
}

// Combatant is a player or pet with its own stats, actions, auras, pools
// and random stream. A pet shares its owner's clock, log and result.
type Combatant struct {
	Name string

	cfg   *config.Configuration
	cat   *spells.Catalogue
	sheet *character.Sheet
	rng   *rng.Source
	res   character.Resources

	actions   [spells.NumIDs]*spells.Action
	auras     [spells.NumAuras]*effects.Aura
	order     []spells.ID
	procs     []spells.ID
	auraOrder []spells.AuraID
	stepAuras []*effects.Aura

	gcd            effects.Timer
	mp5            effects.Timer
	fiveSecondRule effects.Timer
	wait           time.Duration

	fightTime time.Duration
	duration  time.Duration
	iteration int

	policy    Policy
	pet       *Combatant
	owner     *Combatant
	logPrefix string

	sink   combatlog.Sink
	log    *combatlog.Buffer
	result *IterationResult
	acc    *accumulator
	err    error
}

// Initialize validates cfg and builds the player, and its pet when one is
// summoned. Actions and auras are created once here; Reset only clears
// their transient state.
func Initialize(cfg *config.Configuration, cat *spells.Catalogue, opts Options) (*Combatant, error) {
	if cfg == nil {
		return nil, errors.New("nil configuration")
	}
	if cat == nil {
		return nil, errors.New("nil action catalogue")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cat, err := spells.ApplyTalents(cat, cfg.Talents).WithTrinkets(cfg.Trinkets())
	if err != nil {
		return nil, fmt.Errorf("equip trinkets: %w", err)
	}

	seed := cfg.Simulation.Seed
	if opts.Seed != 0 {
		seed = opts.Seed
	}
	sheet := character.NewSheet(cfg)
	c := &Combatant{
		Name:  cfg.Player.Name,
		cfg:   cfg,
		cat:   cat,
		sheet: sheet,
		rng:   rng.New(seed, rng.StreamPlayer),
		res:   character.NewResources(sheet.MaxMana(), sheet.MaxHealth()),
		sink:  opts.Sink,
	}
	c.registerConfigured()
	if err := c.registerRotation(opts.Rotation); err != nil {
		return nil, err
	}
	c.registerAuras()

	switch {
	case opts.Policy != nil:
		c.policy = opts.Policy
	case opts.Rotation != nil:
		c.policy = newRotationPolicy(opts.Rotation)
	default:
		c.policy = newDefaultPolicy(c)
	}
	if cfg.PetActive() {
		c.pet = newPet(c, config.NormalizeName(cfg.Pet.Summon), seed)
	}
	return c, nil
}

func (c *Combatant) registerConfigured() {
	cfg := c.cfg
	r := cfg.Rotation
	a := cfg.Auras
	t := cfg.Talents

	c.register(spells.LifeTap, 1)
	if r.ShadowBolt || t.Nightfall > 0 {
		c.register(spells.ShadowBolt, 1)
	}
	for _, sel := range []struct {
		on bool
		id spells.ID
	}{
		{r.Incinerate, spells.Incinerate},
		{r.SearingPain, spells.SearingPain},
		{r.Immolate, spells.Immolate},
		{r.Corruption, spells.Corruption},
		{r.CurseOfAgony || r.CurseOfDoom, spells.CurseOfAgony},
		{r.CurseOfTheElements, spells.CurseOfTheElements},
		{r.CurseOfRecklessness, spells.CurseOfRecklessness},
		{r.CurseOfDoom, spells.CurseOfDoom},
		{r.Conflagrate && t.Conflagrate > 0, spells.Conflagrate},
		{r.Shadowburn && t.Shadowburn > 0, spells.Shadowburn},
		{r.DarkPact && t.DarkPact > 0, spells.DarkPact},
		{r.UnstableAffliction && t.UnstableAffliction > 0, spells.UnstableAffliction},
		{r.SiphonLife && t.SiphonLife > 0, spells.SiphonLife},
		{r.DeathCoil, spells.DeathCoil},
		{r.Shadowfury && t.Shadowfury > 0, spells.Shadowfury},
		{r.AmplifyCurse && t.AmplifyCurse > 0, spells.AmplifyCurse},
		{a.ManaTideTotem, spells.ManaTideTotem},
		{a.ChippedPowerCore, spells.ChippedPowerCore},
		{a.CrackedPowerCore, spells.CrackedPowerCore},
		{a.SuperManaPotion, spells.SuperManaPotion},
		{a.DemonicRune, spells.DemonicRune},
		{a.DestructionPotion, spells.DestructionPotion},
		{a.FlameCap, spells.FlameCap},
		{config.NormalizeName(cfg.Player.Race) == "orc", spells.BloodFury},
	} {
		if sel.on {
			c.register(sel.id, 1)
		}
	}
	switch {
	case a.DrumsOfBattle:
		c.register(spells.DrumsOfBattle, 1)
	case a.DrumsOfWar:
		c.register(spells.DrumsOfWar, 1)
	case a.DrumsOfRestoration:
		c.register(spells.DrumsOfRestoration, 1)
	}
	if a.PowerInfusion && cfg.Raid.PowerInfusionAmount > 0 {
		c.register(spells.PowerInfusion, cfg.Raid.PowerInfusionAmount)
	}
	if a.Bloodlust && cfg.Raid.BloodlustAmount > 0 {
		c.register(spells.Bloodlust, cfg.Raid.BloodlustAmount)
	}
	if a.Innervate && cfg.Raid.InnervateAmount > 0 {
		c.register(spells.Innervate, cfg.Raid.InnervateAmount)
	}
	c.register(spells.Trinket1, 1)
	c.register(spells.Trinket2, 1)
	c.registerProcs()
}

// registerProcs adds the passive procs of equipped items, set bonuses and
// raid debuffs.
func (c *Combatant) registerProcs() {
	cfg := c.cfg
	for _, name := range cfg.EquippedItems() {
		if id, ok := spells.ParseID(name); ok {
			c.register(id, 1)
		}
	}
	for _, sel := range []struct {
		on  bool
		ids []spells.ID
	}{
		{cfg.Sets.T4 >= 2, []spells.ID{spells.Flameshadow, spells.Shadowflame}},
		{cfg.Sets.Spellstrike >= 2, []spells.ID{spells.Spellstrike}},
		{cfg.Sets.ManaEtched >= 4, []spells.ID{spells.ManaEtched4}},
		{cfg.Auras.JudgementOfWisdom, []spells.ID{spells.JudgementOfWisdom}},
	} {
		if !sel.on {
			continue
		}
		for _, id := range sel.ids {
			c.register(id, 1)
		}
	}
}

// registerRotation adds every action a rotation can start. Actions that
// depend on talents, race or raid selections must already be available.
func (c *Combatant) registerRotation(rot *apl.CompiledRotation) error {
	for _, id := range rot.Spells() {
		if c.actions[id] != nil {
			continue
		}
		if err := c.available(id); err != nil {
			return fmt.Errorf("rotation uses %s: %w", id, err)
		}
		c.register(id, 1)
	}
	return nil
}

func (c *Combatant) available(id spells.ID) error {
	t := c.cfg.Talents
	switch id {
	case spells.Conflagrate:
		if t.Conflagrate == 0 {
			return errors.New("talents.conflagrate is not taken")
		}
	case spells.Shadowburn:
		if t.Shadowburn == 0 {
			return errors.New("talents.shadowburn is not taken")
		}
	case spells.DarkPact:
		if t.DarkPact == 0 {
			return errors.New("talents.dark_pact is not taken")
		}
	case spells.UnstableAffliction:
		if t.UnstableAffliction == 0 {
			return errors.New("talents.unstable_affliction is not taken")
		}
	case spells.SiphonLife:
		if t.SiphonLife == 0 {
			return errors.New("talents.siphon_life is not taken")
		}
	case spells.Shadowfury:
		if t.Shadowfury == 0 {
			return errors.New("talents.shadowfury is not taken")
		}
	case spells.AmplifyCurse:
		if t.AmplifyCurse == 0 {
			return errors.New("talents.amplify_curse is not taken")
		}
	case spells.BloodFury:
		return errors.New("player.race is not orc")
	case spells.PowerInfusion, spells.Bloodlust, spells.Innervate:
		return fmt.Errorf("auras.%s is not selected", id)
	case spells.Trinket1, spells.Trinket2:
		return errors.New("no on-use trinket is equipped in that slot")
	}
	if c.cat.Spell(id) == nil {
		return errors.New("no definition in the action catalogue")
	}
	return nil
}

func (c *Combatant) register(id spells.ID, copies int) {
	if c.actions[id] != nil {
		return
	}
	def := c.cat.Spell(id)
	if def == nil {
		return
	}
	c.actions[id] = spells.NewAction(def, copies)
	c.order = append(c.order, id)
	if def.Kind == spells.KindProc {
		c.procs = append(c.procs, id)
	}
}

// registerAuras creates every aura a registered action can apply or query,
// in identity order.
func (c *Combatant) registerAuras() {
	var needed [spells.NumAuras]bool
	mark := func(id spells.AuraID) {
		if id > spells.AuraNone && id < spells.NumAuras {
			needed[id] = true
		}
	}
	for _, id := range c.order {
		def := c.actions[id].Def
		mark(def.Aura)
		mark(def.Requires)
		mark(def.InstantWith)
		if def.OnCrit != nil {
			mark(def.OnCrit.Aura)
		}
		if def.TickProc != nil {
			mark(def.TickProc.Aura)
		}
		if def.WithAuraBonus != nil {
			mark(def.WithAuraBonus.Aura)
		}
	}
	for i, ok := range needed {
		id := spells.AuraID(i)
		if !ok || c.cat.Aura(id) == nil {
			continue
		}
		c.auras[id] = c.newAura(id)
		c.auraOrder = append(c.auraOrder, id)
	}
}

func (c *Combatant) newAura(id spells.AuraID) *effects.Aura {
	def := c.cat.Aura(id)
	a := def.NewAura()
	a.OnGain = func(a *effects.Aura) {
		c.Logf("BUFF_GAIN %s (duration %.1fs)", a.Label, a.Duration.Seconds())
	}
	a.OnFade = func(a *effects.Aura) {
		c.Logf("BUFF_EXPIRE %s", a.Label)
	}
	a.OnStacksChange = func(*effects.Aura, int, int) {
		c.recomputeBonus()
	}
	if def.TickInterval > 0 {
		if src, ok := c.cat.Source(id); ok {
			a.OnTick = func(a *effects.Aura, scale float64) {
				spells.Tick(c, src, def, a, scale)
			}
		}
	}
	return a
}

// recomputeBonus rebuilds the sheet bonus from the active auras. Bloodlust
// and Power Infusion haste do not stack.
func (c *Combatant) recomputeBonus() {
	b := character.NoBonus()
	for _, id := range c.auraOrder {
		if a := c.auras[id]; a.Active() {
			b = b.Add(c.cat.Aura(id).ActiveBonus(a.Stacks()))
		}
	}
	if c.auras[spells.AuraBloodlust].Active() && c.auras[spells.AuraPowerInfusion].Active() {
		if pi := c.cat.Aura(spells.AuraPowerInfusion).Bonus.HasteMultiplier; pi > 0 {
			b.HasteMultiplier /= pi
		}
	}
	c.sheet.SetBonus(b)
}

// Reset clears per-iteration state and reseeds the random stream for the
// iteration. Stats, actions and auras persist.
func (c *Combatant) Reset(iteration int) {
	c.iteration = iteration
	c.rng.Reseed(iteration)
	c.res.Refill()
	c.gcd.Reset()
	c.mp5.Set(mp5Interval)
	c.fiveSecondRule.Set(fiveSecondRuleDuration)
	c.fightTime = 0
	c.wait = 0
	c.err = nil
	for _, id := range c.order {
		c.actions[id].Reset()
	}
	for _, id := range c.auraOrder {
		c.auras[id].Reset()
	}
	c.sheet.SetBonus(character.NoBonus())

	if c.owner == nil {
		c.duration = c.rollDuration()
		c.log = nil
		sim := c.cfg.Simulation
		if c.sink != nil && sim.CombatLog && iteration == sim.CombatLogIteration {
			c.log = combatlog.NewBuffer(c.sink)
			c.logStats()
		}
	}
	if c.pet != nil {
		c.pet.Reset(iteration)
	}
}

// rollDuration draws the fight length in whole seconds.
func (c *Combatant) rollDuration() time.Duration {
	lo := int(c.cfg.Encounter.MinFightLength / time.Second)
	hi := int(c.cfg.Encounter.MaxFightLength / time.Second)
	return time.Duration(c.rng.Range(lo, hi)) * time.Second
}

func (c *Combatant) root() *Combatant {
	if c.owner != nil {
		return c.owner
	}
	return c
}

func (c *Combatant) fail(err error) {
	root := c.root()
	if root.err == nil {
		root.err = err
	}
}

// Accessors used by policies and rotation conditions.

func (c *Combatant) FightTime() time.Duration { return c.fightTime }
func (c *Combatant) Duration() time.Duration  { return c.duration }
func (c *Combatant) Iteration() int           { return c.iteration }
func (c *Combatant) Pet() *Combatant          { return c.pet }

// FightRemaining returns the time left in the encounter.
func (c *Combatant) FightRemaining() time.Duration {
	root := c.root()
	return max(0, root.duration-root.fightTime)
}

// Health returns current health.
func (c *Combatant) Health() float64 { return c.res.Health }

// Casting reports whether a cast is in progress.
func (c *Combatant) Casting() bool {
	for _, id := range c.order {
		if c.actions[id].Casting() {
			return true
		}
	}
	return false
}

// Actions returns the registered actions in registration order.
func (c *Combatant) Actions() []spells.ID {
	return append([]spells.ID(nil), c.order...)
}

var _ spells.Caster = (*Combatant)(nil)

func (c *Combatant) Rng() *rng.Source          { return c.rng }
func (c *Combatant) Sheet() *character.Sheet   { return c.sheet }
func (c *Combatant) GCD() *effects.Timer       { return &c.gcd }
func (c *Combatant) Mana() float64             { return c.res.Mana }
func (c *Combatant) SpendHealth(amount float64) { c.res.SpendHealth(amount) }

// SpendMana deducts mana and restarts the five second rule.
func (c *Combatant) SpendMana(amount float64) {
	c.res.SpendMana(amount)
	c.fiveSecondRule.Set(fiveSecondRuleDuration)
}

func (c *Combatant) GainMana(amount float64) float64 {
	return c.res.GainMana(amount)
}

func (c *Combatant) PetMana() float64 {
	if c.pet == nil {
		return 0
	}
	return c.pet.res.Mana
}

func (c *Combatant) DrainPetMana(amount float64) float64 {
	if c.pet == nil {
		return 0
	}
	taken := min(amount, c.pet.res.Mana)
	c.pet.res.SpendMana(taken)
	return taken
}

func (c *Combatant) Action(id spells.ID) *spells.Action {
	if !id.Valid() {
		return nil
	}
	return c.actions[id]
}

func (c *Combatant) Aura(id spells.AuraID) *effects.Aura {
	if id <= spells.AuraNone || id >= spells.NumAuras {
		return nil
	}
	return c.auras[id]
}

// ApplyAura activates an aura. The magnitude is only replaced when the
// application changes the aura.
func (c *Combatant) ApplyAura(id spells.AuraID, magnitude float64) bool {
	a := c.Aura(id)
	if a == nil {
		return false
	}
	if a.Active() && a.Refresh == effects.RefreshNoop {
		return false
	}
	a.Magnitude = magnitude
	return a.Apply()
}

func (c *Combatant) ConsumeCharges(school character.School) {
	if school == character.SchoolNone {
		return
	}
	for _, id := range c.auraOrder {
		if a := c.auras[id]; a.Active() && c.cat.Aura(id).ConsumedBy == school {
			a.RemoveStack()
		}
	}
}

// Record books an outcome into the running iteration and fires procs
// triggered by casts.
func (c *Combatant) Record(o spells.Outcome) {
	root := c.root()
	res := root.result
	if res == nil || !o.ID.Valid() {
		return
	}
	st := &res.Actions[o.ID]
	switch {
	case o.Tick:
		st.Ticks++
	case o.Cast:
		st.Casts++
		if o.Hit {
			st.Hits++
		}
		if o.Crit {
			st.Crits++
		}
		if o.Miss {
			st.Misses++
		}
	}
	st.ManaGain += o.ManaGain
	if o.Damage > 0 {
		res.Damage += o.Damage
		if err := root.acc.add(res, o.ID, o.Damage); err != nil {
			c.fail(err)
		}
	}
	if (o.Cast || o.Tick) && !o.Proc {
		c.triggerProcs(o)
	}
}

// triggerProcs offers an outcome to every registered proc in registration
// order.
func (c *Combatant) triggerProcs(o spells.Outcome) {
	if len(c.procs) == 0 {
		return
	}
	src := c.cat.Spell(o.ID)
	for _, id := range c.procs {
		a := c.actions[id]
		if !a.Listens(src, o) {
			continue
		}
		if err := a.Trigger(c); err != nil {
			c.fail(err)
		}
	}
}

// Logf adds a combat log line at the current fight time.
func (c *Combatant) Logf(format string, args ...any) {
	root := c.root()
	if root.log == nil {
		return
	}
	root.log.Add(root.fightTime, c.logPrefix+format, args...)
}

func (c *Combatant) logStats() {
	s := c.sheet
	l := c.log
	l.Static("---------------- Player stats ----------------")
	l.Static("Health: %.0f", s.MaxHealth())
	l.Static("Mana: %.0f", s.MaxMana())
	l.Static("Stamina: %.0f", s.Stamina())
	l.Static("Intellect: %.0f", s.Intellect())
	l.Static("Spell Power: %.0f", s.SpellPower(character.SchoolNone))
	l.Static("Shadow Power: %.0f", s.Base.ShadowPower)
	l.Static("Fire Power: %.0f", s.Base.FirePower)
	l.Static("Crit Chance: %.2f%%", s.CritChance(character.TreeDestruction))
	l.Static("Hit Chance: %.2f%%", s.Base.ExtraHitChance)
	l.Static("Haste: %.2f%%", s.Base.HasteRating/character.HasteRatingPerPercent)
	l.Static("Shadow Modifier: %.2f%%", s.Base.ShadowModifier*100)
	l.Static("Fire Modifier: %.2f%%", s.Base.FireModifier*100)
	l.Static("MP5: %.0f", s.MP5())
	l.Static("Spell Penetration: %.0f", s.Base.SpellPenetration)
	if c.pet != nil {
		p := c.pet.sheet
		l.Static("---------------- Pet stats ----------------")
		l.Static("Stamina: %.0f", p.Stamina())
		l.Static("Intellect: %.0f", p.Intellect())
		l.Static("Spirit: %.0f", p.Spirit())
		l.Static("Spell Power: %.0f", p.SpellPower(character.SchoolFire))
		l.Static("Mana: %.0f", p.MaxMana())
		l.Static("Spell Hit Chance: %.2f%%", p.HitChance(character.TreeNone))
		l.Static("Spell Crit Chance: %.2f%%", p.CritChance(character.TreeNone))
		l.Static("Damage Modifier: %.2f%%", p.DamageModifier(character.SchoolFire)*100)
	}
	l.Static("---------------- Enemy stats ----------------")
	l.Static("Level: %d", s.Enemy.Level)
	l.Static("Shadow Resistance: %.0f", s.Enemy.ShadowResist)
	l.Static("Fire Resistance: %.0f", s.Enemy.FireResist)
	l.Static("---------------------------------------------")
}

// labels copies the display names of registered actions and auras.
func (c *Combatant) labels(r *AggregateResult) {
	for _, id := range c.order {
		r.Labels[id] = c.actions[id].Def.Label
	}
	for _, id := range c.auraOrder {
		r.AuraLabels[id] = c.auras[id].Label
	}
	if c.pet != nil {
		c.pet.labels(r)
	}
}
