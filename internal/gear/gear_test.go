package gear

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAcceptsNamesAndItemIDs(t *testing.T) {
	assert.Equal(t, TrinketSkullOfGuldan, Normalize("  Skull of Guldan "))
	assert.Equal(t, TrinketXirisGift, Normalize("Xiri's Gift"))
	assert.Equal(t, TrinketShiftingNaaruSliver, Normalize("34429"))
	assert.Equal(t, "99999", Normalize("99999"))
}

func TestLookup(t *testing.T) {
	tr, ok := Lookup("eye_of_magtheridon")
	require.True(t, ok)
	assert.Equal(t, KindProc, tr.Kind)
	assert.Equal(t, TriggerMiss, tr.Trigger)
	assert.Equal(t, 10*time.Second, tr.Duration)

	tr, ok = Lookup("32483")
	require.True(t, ok)
	assert.Equal(t, KindUse, tr.Kind)
	assert.True(t, tr.SharesCooldown)
	assert.Equal(t, StatHasteRating, tr.Stat)

	_, ok = Lookup("mirror_of_truth")
	assert.False(t, ok)
}

func TestKnownIsSortedAndComplete(t *testing.T) {
	names := Known()
	require.Len(t, names, len(trinkets))
	assert.IsIncreasing(t, names)
	for _, n := range names {
		assert.True(t, IsKnown(n), n)
	}
}

func TestItemIDsAreUnique(t *testing.T) {
	assert.Len(t, byItemID, len(trinkets)+len(items))
}

func TestProcTrinketEffects(t *testing.T) {
	lc, ok := Lookup("The Lightning Capacitor")
	require.True(t, ok)
	assert.Equal(t, TriggerCrit, lc.Trigger)
	assert.Equal(t, EffectDamage, lc.Effect)
	assert.Equal(t, "nature", lc.School)
	assert.Equal(t, 3, lc.Charges)
	assert.Equal(t, 2500*time.Millisecond, lc.Cooldown)

	horn, ok := Lookup("Shiffar's Nexus-Horn")
	require.True(t, ok)
	assert.Equal(t, EffectStat, horn.Effect)
	assert.Equal(t, StatSpellPower, horn.Stat)
	assert.Equal(t, 225.0, horn.Amount)
	assert.Equal(t, 45*time.Second, horn.Cooldown)

	talisman, ok := Lookup("32493")
	require.True(t, ok)
	assert.Equal(t, TriggerTick, talisman.Trigger)
	assert.Equal(t, "corruption", talisman.TriggerSpell)

	mark, ok := Lookup(TrinketMarkOfDefiance)
	require.True(t, ok)
	assert.Equal(t, EffectMana, mark.Effect)
	assert.Equal(t, 128.0, mark.Min)
	assert.Equal(t, 172.0, mark.Max)
}

func TestLookupItem(t *testing.T) {
	it, ok := LookupItem("Robe of the Elder Scribes")
	require.True(t, ok)
	assert.Equal(t, SlotChest, it.Slot)

	it, ok = LookupItem("25893")
	require.True(t, ok)
	assert.Equal(t, ItemMysticalSkyfireDiamond, it.Name)
	assert.Equal(t, SlotMetaGem, it.Slot)

	_, ok = LookupItem(TrinketSkullOfGuldan)
	assert.False(t, ok, "trinkets are not slot items")
	assert.False(t, IsKnown(ItemBladeOfWizardry), "slot items are not trinkets")

	names := KnownItems()
	assert.Len(t, names, len(items))
	assert.IsIncreasing(t, names)
}
