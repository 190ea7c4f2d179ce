package apl

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"tbc-warlock-sim/internal/spells"
)

type fakeContext struct {
	active    map[spells.AuraID]time.Duration
	stacks    map[spells.AuraID]int
	mana      float64
	health    float64
	deficit   float64
	cooldowns map[spells.ID]time.Duration
	remaining time.Duration
}

func (f *fakeContext) AuraActive(id spells.AuraID) bool {
	_, ok := f.active[id]
	return ok
}

func (f *fakeContext) AuraRemaining(id spells.AuraID) time.Duration { return f.active[id] }
func (f *fakeContext) AuraStacks(id spells.AuraID) int              { return f.stacks[id] }

func (f *fakeContext) ResourcePercent(r Resource) float64 {
	if r == ResourceHealth {
		return f.health
	}
	return f.mana
}

func (f *fakeContext) ManaDeficit() float64 { return f.deficit }

func (f *fakeContext) CooldownReady(id spells.ID) bool { return f.cooldowns[id] == 0 }

func (f *fakeContext) CooldownRemaining(id spells.ID) time.Duration { return f.cooldowns[id] }
func (f *fakeContext) FightRemaining() time.Duration                { return f.remaining }

func compileYAML(t *testing.T, doc string) (*CompiledRotation, error) {
	t.Helper()
	var file File
	require.NoError(t, yaml.Unmarshal([]byte(doc), &file))
	return Compile(&file)
}

func condition(t *testing.T, when string) Condition {
	t.Helper()
	rot, err := compileYAML(t, "rotation:\n  - action: cast_spell\n    spell: shadow_bolt\n    when:\n"+when)
	require.NoError(t, err)
	require.Len(t, rot.Actions, 1)
	return rot.Actions[0].Condition
}

func TestCompileActions(t *testing.T) {
	rot, err := compileYAML(t, `
name: test
rotation:
  - action: use_item
    item: super_mana_potion
  - action: cast_spell
    spell: Curse_Of_Agony
  - action: macro
    steps:
      - action: cast
        spell: immolate
      - action: use_item
        item: trinket_1
  - action: wait
    duration_seconds: 0.5
  - action: cast_spell
    spell: immolate
`)
	require.NoError(t, err)
	assert.Equal(t, "test", rot.Name)
	require.Len(t, rot.Actions, 5)
	assert.Equal(t, ActionUseItem, rot.Actions[0].Type)
	assert.Equal(t, spells.SuperManaPotion, rot.Actions[0].Spell)
	assert.Equal(t, spells.CurseOfAgony, rot.Actions[1].Spell)
	assert.Equal(t, ActionMacro, rot.Actions[2].Type)
	require.Len(t, rot.Actions[2].Steps, 2)
	assert.Equal(t, 500*time.Millisecond, rot.Actions[3].Duration)
	assert.True(t, rot.Actions[4].Condition.Eval(&fakeContext{}), "missing when is always true")

	assert.Equal(t,
		[]spells.ID{spells.SuperManaPotion, spells.CurseOfAgony, spells.Immolate, spells.Trinket1},
		rot.Spells())
}

func TestCompileRejectsBadNames(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"unknown spell", "rotation:\n  - action: cast_spell\n    spell: fireball\n", "unknown spell 'fireball'"},
		{"item as spell", "rotation:\n  - action: cast_spell\n    spell: demonic_rune\n", "is an item"},
		{"spell as item", "rotation:\n  - action: use_item\n    item: shadow_bolt\n", "is not an item"},
		{"pet spell", "rotation:\n  - action: cast_spell\n    spell: firebolt\n", "cannot be used"},
		{"missing spell", "rotation:\n  - action: cast_spell\n", "requires 'spell'"},
		{"bad wait", "rotation:\n  - action: wait\n", "duration_seconds"},
		{"unknown action", "rotation:\n  - action: dance\n", "unsupported action 'dance'"},
		{"buff as debuff", "rotation:\n  - action: cast_spell\n    spell: corruption\n    when:\n      debuff_active:\n        debuff: shadow_trance\n", "unknown debuff"},
		{"debuff as buff", "rotation:\n  - action: cast_spell\n    spell: corruption\n    when:\n      buff_active:\n        buff: corruption\n", "is a debuff"},
		{"unknown condition", "rotation:\n  - action: cast_spell\n    spell: corruption\n    when:\n      target_health: {}\n", "unknown condition"},
		{"unknown resource", "rotation:\n  - action: cast_spell\n    spell: corruption\n    when:\n      resource_percent:\n        resource: rage\n", "unknown resource"},
		{"undefined variable", "rotation:\n  - action: cast_spell\n    spell: corruption\n    when:\n      fight_remaining:\n        gt_seconds: ${later}\n", "variable 'later' not defined"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileYAML(t, tt.doc)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestConditions(t *testing.T) {
	ctx := &fakeContext{
		active: map[spells.AuraID]time.Duration{
			spells.AuraCorruption:   2 * time.Second,
			spells.AuraShadowTrance: 10 * time.Second,
		},
		stacks:    map[spells.AuraID]int{spells.AuraImprovedShadowBolt: 3},
		mana:      0.25,
		health:    0.9,
		deficit:   3200,
		cooldowns: map[spells.ID]time.Duration{spells.DemonicRune: 30 * time.Second},
		remaining: 40 * time.Second,
	}

	tests := []struct {
		name string
		when string
		want bool
	}{
		{"debuff active", "      debuff_active:\n        debuff: corruption\n", true},
		{"debuff inactive", "      debuff_active:\n        debuff: immolate\n", false},
		{"debuff min remaining", "      debuff_active:\n        debuff: corruption\n        min_remaining: 3\n", false},
		{"buff max remaining", "      buff_active:\n        buff: shadow_trance\n        max_remaining: 12\n", true},
		{"dot remaining", "      dot_remaining:\n        spell: corruption\n        lt_seconds: 3\n", true},
		{"dot remaining inactive", "      dot_remaining:\n        spell: immolate\n        lte_seconds: 0\n", true},
		{"mana below", "      resource_percent:\n        resource: mana\n        lt: 0.3\n", true},
		{"health above", "      resource_percent:\n        resource: health\n        gte: 0.95\n", false},
		{"cooldown ready", "      cooldown_ready:\n        item: super_mana_potion\n", true},
		{"cooldown not ready", "      cooldown_ready:\n        item: demonic_rune\n", false},
		{"cooldown remaining", "      cooldown_remaining:\n        item: demonic_rune\n        gt_seconds: 20\n        lt_seconds: 40\n", true},
		{"charges", "      charges:\n        aura: improved_shadow_bolt\n        gte: 2\n", true},
		{"charges on buff key", "      charges:\n        buff: improved_shadow_bolt\n        lt: 3\n", false},
		{"fight remaining", "      fight_remaining:\n        lt_seconds: 60\n", true},
		{"mana deficit", "      mana_deficit:\n        gte: 3000\n", true},
		{"mana deficit short", "      mana_deficit:\n        gt: 3200\n", false},
		{"not", "      not:\n        debuff_active:\n          debuff: corruption\n", false},
		{"any", "      any:\n        - debuff_active:\n            debuff: immolate\n        - false: {}\n        - true: {}\n", true},
		{"all", "      all:\n        - debuff_active:\n            debuff: corruption\n        - fight_remaining:\n            gt_seconds: 50\n", false},
		{"implicit all", "      - debuff_active:\n          debuff: corruption\n      - buff_active:\n          buff: shadow_trance\n", true},
		{"scalar", "      false\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, condition(t, tt.when).Eval(ctx))
		})
	}
}

func TestVariablesResolve(t *testing.T) {
	rot, err := compileYAML(t, `
variables:
  tap_below: 0.4
  curse: curse_of_doom
rotation:
  - action: cast_spell
    spell: life_tap
    when:
      resource_percent:
        resource: mana
        lt: ${tap_below}
  - action: cast_spell
    spell: shadow_bolt
    when:
      not:
        debuff_active:
          debuff: ${ curse }
`)
	require.NoError(t, err)
	assert.True(t, rot.Actions[0].Condition.Eval(&fakeContext{mana: 0.3}))
	assert.False(t, rot.Actions[0].Condition.Eval(&fakeContext{mana: 0.5}))
	doom := &fakeContext{active: map[spells.AuraID]time.Duration{spells.AuraCurseOfDoom: time.Minute}}
	assert.False(t, rot.Actions[1].Condition.Eval(doom))
}

func writeRotation(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func TestLoadResolvesImports(t *testing.T) {
	dir := t.TempDir()
	writeRotation(t, dir, "cooldowns.yaml", "rotation:\n  - action: use_item\n    item: destruction_potion\n")
	writeRotation(t, dir, "main.yaml", "name: main\nimports: [cooldowns.yaml]\nrotation:\n  - action: cast_spell\n    spell: shadow_bolt\n")

	rot, err := Load(filepath.Join(dir, "main.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []spells.ID{spells.DestructionPotion, spells.ShadowBolt}, rot.Spells())
}

func TestLoadDetectsImportCycle(t *testing.T) {
	dir := t.TempDir()
	writeRotation(t, dir, "a.yaml", "imports: [b.yaml]\n")
	writeRotation(t, dir, "b.yaml", "imports: [a.yaml]\n")

	_, err := Load(filepath.Join(dir, "a.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "import cycle")
}

func TestLoadReportsCompileErrors(t *testing.T) {
	dir := t.TempDir()
	writeRotation(t, dir, "bad.yaml", "rotation:\n  - action: cast_spell\n    spell: chaos_bolt\n")

	_, err := Load(filepath.Join(dir, "bad.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rotation entry 0")
}

func TestNilRotation(t *testing.T) {
	var rot *CompiledRotation
	assert.Nil(t, rot.Spells())
	_, err := Compile(nil)
	assert.Error(t, err)
}

func TestShippedRotationCompiles(t *testing.T) {
	rot, err := Load(filepath.Join("..", "..", "configs", "rotations", "default.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "default", rot.Name)
	require.NotEmpty(t, rot.Actions)
	assert.Equal(t, spells.CurseOfAgony, rot.Actions[0].Spell)
}

func TestLoadFSMergesImportedVariables(t *testing.T) {
	fsys := fstest.MapFS{
		"shared/mana.yaml": {Data: []byte("variables:\n  tap_below: 0.2\nrotation:\n  - action: cast_spell\n    spell: life_tap\n    when:\n      resource_percent:\n        resource: mana\n        lt: ${tap_below}\n")},
		"main.yaml":        {Data: []byte("name: main\nimports: [shared/mana.yaml]\nvariables:\n  tap_below: 0.5\nrotation:\n  - action: cast_spell\n    spell: shadow_bolt\n")},
	}
	rot, err := LoadFS(fsys, "main.yaml")
	require.NoError(t, err)
	assert.Equal(t, []spells.ID{spells.LifeTap, spells.ShadowBolt}, rot.Spells())
	assert.True(t, rot.Actions[0].Condition.Eval(&fakeContext{mana: 0.4}), "importer overrides the variable")
}

func TestLoadFSReportsCycleChain(t *testing.T) {
	fsys := fstest.MapFS{
		"a.yaml": {Data: []byte("imports: [b.yaml]\n")},
		"b.yaml": {Data: []byte("imports: [a.yaml]\n")},
	}
	_, err := LoadFS(fsys, "a.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a.yaml -> b.yaml -> a.yaml")
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	_, err := Decode([]byte("rotation:\n  - action: cast_spell\n    spell: shadow_bolt\n    wen:\n      true: {}\n"))
	require.Error(t, err)

	file, err := Decode(nil)
	require.NoError(t, err)
	assert.Empty(t, file.Rotation)
}

func TestDecodeKeepsConditionTrees(t *testing.T) {
	file, err := Decode([]byte(`
rotation:
  - action: cast_spell
    spell: corruption
    when:
      not:
        debuff_active: {debuff: corruption}
  - action: cast_spell
    spell: life_tap
    when:
      all:
        - mana_deficit: {gte: 1000}
        - fight_remaining: {gt_seconds: 5}
`))
	require.NoError(t, err)
	require.NotNil(t, file.Rotation[0].When.Node())

	rot, err := Compile(file)
	require.NoError(t, err)
	dotted := &fakeContext{active: map[spells.AuraID]time.Duration{spells.AuraCorruption: 6 * time.Second}}
	assert.False(t, rot.Actions[0].Condition.Eval(dotted))
	assert.True(t, rot.Actions[0].Condition.Eval(&fakeContext{}))

	assert.True(t, rot.Actions[1].Condition.Eval(&fakeContext{deficit: 1500, remaining: time.Minute}))
	assert.False(t, rot.Actions[1].Condition.Eval(&fakeContext{deficit: 500, remaining: time.Minute}))
}
