package spells

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tbc-warlock-sim/internal/character"
	"tbc-warlock-sim/internal/config"
	"tbc-warlock-sim/internal/effects"
	"tbc-warlock-sim/internal/gear"
)

func TestLoadEmbeddedCatalogue(t *testing.T) {
	cat, err := Load()
	require.NoError(t, err)

	for id := ID(0); id < NumIDs; id++ {
		switch id {
		case Trinket1, Trinket2, Mp5:
			assert.Nil(t, cat.Spell(id), id.String())
		default:
			assert.NotNil(t, cat.Spell(id), id.String())
		}
	}

	sb := cat.Spell(ShadowBolt)
	assert.Equal(t, "Shadow Bolt", sb.Label)
	assert.Equal(t, KindDirect, sb.Kind)
	assert.Equal(t, character.SchoolShadow, sb.School)
	assert.Equal(t, character.TreeDestruction, sb.Tree)
	assert.Equal(t, 3*time.Second, sb.CastTime)
	assert.Equal(t, 544.0, sb.MinDamage)
	assert.Equal(t, 607.0, sb.MaxDamage)
	assert.Equal(t, AuraShadowTrance, sb.InstantWith)

	inc := cat.Spell(Incinerate)
	assert.Equal(t, 2500*time.Millisecond, inc.CastTime)
	require.NotNil(t, inc.WithAuraBonus)
	assert.Equal(t, AuraImmolate, inc.WithAuraBonus.Aura)

	demonicRune := cat.Spell(DemonicRune)
	require.Len(t, demonicRune.Links, 2)
	assert.Equal(t, CooldownLink{Target: ChippedPowerCore, Mode: LinkSet, From: FromCooldown}, demonicRune.Links[0])

	corruption := cat.Aura(AuraCorruption)
	assert.Equal(t, 6, corruption.Ticks())
	assert.Equal(t, effects.RefreshReplace, corruption.Refresh)

	isb := cat.Aura(AuraImprovedShadowBolt)
	assert.True(t, isb.Charges)
	assert.Equal(t, character.SchoolShadow, isb.ConsumedBy)

	src, ok := cat.Source(AuraCurseOfAgony)
	require.True(t, ok)
	assert.Equal(t, CurseOfAgony, src.ID)
	_, ok = cat.Source(AuraShadowTrance)
	assert.False(t, ok)
}

func TestParseRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"unknown action", "spells:\n  fireball:\n    kind: direct\n", "spells.fireball: unknown action"},
		{"unknown kind", "spells:\n  shadow_bolt:\n    kind: channel\n", `unknown kind "channel"`},
		{"unknown school", "spells:\n  shadow_bolt:\n    kind: direct\n    school: frost\n", `unknown school "frost"`},
		{"negative cast", "spells:\n  shadow_bolt:\n    kind: direct\n    cast_time: -1s\n", "must not be negative"},
		{"undefined aura", "spells:\n  corruption:\n    kind: periodic\n    aura: corruption\n", "aura corruption is not defined"},
		{"periodic without aura", "spells:\n  corruption:\n    kind: periodic\n", "needs an aura"},
		{"bad damage", "spells:\n  shadow_bolt:\n    kind: direct\n    damage: [600, 500]\n", "below min"},
		{"bad link", "spells:\n  demonic_rune:\n    kind: resource\n    links:\n      - target: healthstone\n", `unknown target "healthstone"`},
		{"bad refresh", "auras:\n  corruption:\n    refresh: stack\n", `unknown refresh policy "stack"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.ErrorIs(t, err, ErrCatalogue)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("spells: ["))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse catalogue")
}

func TestCloneIsIndependent(t *testing.T) {
	cat, err := Load()
	require.NoError(t, err)
	cp := cat.Clone()

	cp.Spell(ShadowBolt).CastTime = time.Second
	cp.Spell(DemonicRune).Links[0].Target = Trinket1
	cp.Aura(AuraImprovedShadowBolt).Bonus.ShadowModifier = 9

	assert.Equal(t, 3*time.Second, cat.Spell(ShadowBolt).CastTime)
	assert.Equal(t, ChippedPowerCore, cat.Spell(DemonicRune).Links[0].Target)
	assert.Equal(t, 1.2, cat.Aura(AuraImprovedShadowBolt).Bonus.ShadowModifier)
}

func TestApplyTalents(t *testing.T) {
	cat, err := Load()
	require.NoError(t, err)

	out := ApplyTalents(cat, config.Talents{
		Bane:               5,
		ImprovedCorruption: 5,
		Cataclysm:          5,
		Nightfall:          2,
		ImprovedShadowBolt: 3,
		ImprovedLifeTap:    2,
	})

	assert.Equal(t, 2500*time.Millisecond, out.Spell(ShadowBolt).CastTime)
	assert.Equal(t, 1500*time.Millisecond, out.Spell(Immolate).CastTime)
	assert.Zero(t, out.Spell(Corruption).CastTime)
	assert.InDelta(t, 420*0.95, out.Spell(ShadowBolt).ManaCost, 1e-9)
	assert.Equal(t, 370.0, out.Spell(Corruption).ManaCost, "affliction costs are untouched")
	assert.Equal(t, &Proc{Aura: AuraShadowTrance, Chance: 4}, out.Spell(Corruption).TickProc)
	assert.Equal(t, &Proc{Aura: AuraImprovedShadowBolt, Chance: 100}, out.Spell(ShadowBolt).OnCrit)
	assert.InDelta(t, 1.12, out.Aura(AuraImprovedShadowBolt).Bonus.ShadowModifier, 1e-12)
	assert.InDelta(t, 1.2, out.Spell(LifeTap).ManaGainScale, 1e-12)

	assert.Equal(t, 3*time.Second, cat.Spell(ShadowBolt).CastTime, "input catalogue is not modified")

	none := ApplyTalents(cat, config.Talents{})
	assert.Nil(t, none.Spell(ShadowBolt).OnCrit)
	assert.Nil(t, none.Spell(Corruption).TickProc)
	assert.Equal(t, 1.0, none.Spell(LifeTap).ManaGainScale)
}

func TestWithTrinkets(t *testing.T) {
	cat, err := Load()
	require.NoError(t, err)

	out, err := cat.WithTrinkets([]string{"32483", gear.TrinketEyeOfMagtheridon})
	require.NoError(t, err)

	skull := out.Spell(Trinket1)
	require.NotNil(t, skull)
	assert.Equal(t, KindBuff, skull.Kind)
	assert.Equal(t, 2*time.Minute, skull.Cooldown)
	assert.Empty(t, skull.Links, "a proc trinket does not share cooldowns")
	assert.Equal(t, 175.0, out.Aura(AuraTrinket1).Bonus.HasteRating)

	eye := out.Spell(Trinket2)
	assert.Equal(t, KindProc, eye.Kind)
	assert.Equal(t, gear.TriggerMiss, eye.Trigger)
	assert.Equal(t, 170.0, out.Aura(AuraTrinket2).Bonus.SpellPower)

	src, ok := out.Source(AuraTrinket2)
	require.True(t, ok)
	assert.Equal(t, Trinket2, src.ID)

	assert.Nil(t, cat.Spell(Trinket1), "input catalogue is not modified")
}

func TestWithTrinketsLinksSharedCooldowns(t *testing.T) {
	cat, err := Load()
	require.NoError(t, err)

	out, err := cat.WithTrinkets([]string{gear.TrinketSkullOfGuldan, gear.TrinketShiftingNaaruSliver})
	require.NoError(t, err)

	want := func(target ID) []CooldownLink {
		return []CooldownLink{{Target: target, Mode: LinkAtLeast, From: FromAura, Required: true}}
	}
	assert.Equal(t, want(Trinket2), out.Spell(Trinket1).Links)
	assert.Equal(t, want(Trinket1), out.Spell(Trinket2).Links)
}

func TestWithTrinketsErrors(t *testing.T) {
	cat, err := Load()
	require.NoError(t, err)

	_, err = cat.WithTrinkets([]string{"mirror_of_truth"})
	require.Error(t, err)
	_, err = cat.WithTrinkets([]string{"a", "b", "c"})
	require.Error(t, err)
}

func TestActiveBonus(t *testing.T) {
	stacking := &AuraDefinition{MaxStacks: 10, Bonus: character.Bonus{SpellPower: 8}}
	assert.Equal(t, 80.0, stacking.ActiveBonus(10).SpellPower)
	assert.Equal(t, 1.0, stacking.ActiveBonus(10).ShadowModifier)

	charges := &AuraDefinition{MaxStacks: 4, Charges: true, Bonus: character.Bonus{ShadowModifier: 1.2}}
	assert.InDelta(t, 1.2, charges.ActiveBonus(3).ShadowModifier, 1e-12)

	assert.Equal(t, character.NoBonus(), charges.ActiveBonus(0))
}

func TestIDNames(t *testing.T) {
	for id := ID(0); id < NumIDs; id++ {
		got, ok := ParseID(id.String())
		require.True(t, ok, id.String())
		assert.Equal(t, id, got)
	}
	for id := AuraNone; id < NumAuras; id++ {
		got, ok := ParseAuraID(id.String())
		require.True(t, ok, id.String())
		assert.Equal(t, id, got)
	}
	_, ok := ParseID("fireball")
	assert.False(t, ok)
	assert.Equal(t, "spell(99)", ID(99).String())
}

func TestKindNames(t *testing.T) {
	for k := KindDirect; k < numKinds; k++ {
		got, ok := kindNames[k.String()]
		require.True(t, ok, "kind %d", int(k))
		assert.Equal(t, k, got)
	}
	assert.Equal(t, "periodic", KindPeriodic.String())
	assert.Equal(t, "unknown", Kind(-1).String())
	assert.Equal(t, "unknown", numKinds.String())
}
