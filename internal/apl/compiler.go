package apl

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"tbc-warlock-sim/internal/spells"
)

// CompiledRotation is a rotation ready to evaluate.
type CompiledRotation struct {
	Name        string
	Description string
	Variables   map[string]any
	Actions     []*Action
}

// ActionType enumerates supported rotation actions.
type ActionType int

const (
	ActionCastSpell ActionType = iota
	ActionUseItem
	ActionWait
	ActionMacro
)

// Action is one compiled priority entry.
type Action struct {
	Type      ActionType
	Spell     spells.ID
	Duration  time.Duration
	Steps     []*Action
	Condition Condition
	Tags      []string
}

// Spells returns every action the rotation can start, in first-use order.
func (r *CompiledRotation) Spells() []spells.ID {
	if r == nil {
		return nil
	}
	seen := map[spells.ID]bool{}
	var out []spells.ID
	var walk func([]*Action)
	walk = func(actions []*Action) {
		for _, a := range actions {
			if a.Type == ActionMacro {
				walk(a.Steps)
				continue
			}
			if (a.Type == ActionCastSpell || a.Type == ActionUseItem) && !seen[a.Spell] {
				seen[a.Spell] = true
				out = append(out, a.Spell)
			}
		}
	}
	walk(r.Actions)
	return out
}

// Compile validates every entry of file against the action catalogue and
// builds its conditions.
func Compile(file *File) (*CompiledRotation, error) {
	if file == nil {
		return nil, fmt.Errorf("nil rotation file")
	}
	c := compiler{vars: file.Variables}
	actions := make([]*Action, 0, len(file.Rotation))
	for i := range file.Rotation {
		action, err := c.action(&file.Rotation[i])
		if err != nil {
			return nil, fmt.Errorf("rotation entry %d (%s): %w", i, file.Rotation[i], err)
		}
		actions = append(actions, action)
	}
	return &CompiledRotation{
		Name:        file.Name,
		Description: file.Description,
		Variables:   file.Variables,
		Actions:     actions,
	}, nil
}

type compiler struct {
	vars map[string]any
}

func (c compiler) action(def *ActionDefinition) (*Action, error) {
	cond, err := c.condition(def.When.Node())
	if err != nil {
		return nil, err
	}
	action := &Action{Condition: cond, Tags: def.Tags}

	switch strings.ToLower(strings.TrimSpace(def.Action)) {
	case "cast_spell", "cast":
		if def.Spell == "" {
			return nil, fmt.Errorf("cast_spell action requires 'spell'")
		}
		action.Type = ActionCastSpell
		action.Spell, err = validateSpellName(def.Spell)
	case "use_item":
		if def.Item == "" {
			return nil, fmt.Errorf("use_item action requires 'item'")
		}
		action.Type = ActionUseItem
		action.Spell, err = validateItemName(def.Item)
	case "wait":
		if def.DurationSeconds <= 0 {
			return nil, fmt.Errorf("wait action requires duration_seconds > 0")
		}
		action.Type = ActionWait
		action.Duration = seconds(def.DurationSeconds)
	case "macro":
		if len(def.Steps) == 0 {
			return nil, fmt.Errorf("macro action requires 'steps'")
		}
		action.Type = ActionMacro
		for i := range def.Steps {
			step, err := c.action(&def.Steps[i])
			if err != nil {
				return nil, fmt.Errorf("macro step %d: %w", i, err)
			}
			action.Steps = append(action.Steps, step)
		}
	default:
		return nil, fmt.Errorf("unsupported action '%s'", def.Action)
	}
	if err != nil {
		return nil, err
	}
	return action, nil
}

func (c compiler) condition(node *yaml.Node) (Condition, error) {
	if node == nil || node.Kind == 0 {
		return constant(true), nil
	}
	switch node.Kind {
	case yaml.MappingNode:
		return c.mapping(node)
	case yaml.SequenceNode:
		// A bare list means all of.
		children, err := c.sequence(node)
		return allOf(children), err
	case yaml.ScalarNode:
		var v bool
		if err := node.Decode(&v); err != nil {
			return nil, fmt.Errorf("unsupported scalar condition: %s", node.Value)
		}
		return constant(v), nil
	default:
		return nil, fmt.Errorf("line %d: unsupported condition node", node.Line)
	}
}

func (c compiler) sequence(node *yaml.Node) ([]Condition, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: expected a list", node.Line)
	}
	out := make([]Condition, 0, len(node.Content))
	for i, child := range node.Content {
		cond, err := c.condition(child)
		if err != nil {
			return nil, fmt.Errorf("condition %d: %w", i, err)
		}
		out = append(out, cond)
	}
	return out, nil
}

func (c compiler) mapping(node *yaml.Node) (Condition, error) {
	if len(node.Content) != 2 {
		return nil, fmt.Errorf("line %d: condition mapping must have exactly one entry", node.Line)
	}
	key, val := node.Content[0].Value, node.Content[1]

	switch key {
	case "all", "any":
		children, err := c.sequence(val)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		if key == "any" {
			return anyOf(children), nil
		}
		return allOf(children), nil
	case "not":
		child, err := c.condition(val)
		if err != nil {
			return nil, fmt.Errorf("not: %w", err)
		}
		return negate{child: child}, nil
	case "true":
		return constant(true), nil
	case "false":
		return constant(false), nil
	}

	parse, ok := leaves[key]
	if !ok {
		return nil, fmt.Errorf("unknown condition '%s'", key)
	}
	p, err := c.params(val)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	cond, err := parse(p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return cond, nil
}

var leaves = map[string]func(params) (Condition, error){
	"debuff_active": func(p params) (Condition, error) {
		return p.auraWindow("debuff", validateDebuffName)
	},
	"buff_active": func(p params) (Condition, error) {
		return p.auraWindow("buff", validateBuffName)
	},
	"dot_remaining": func(p params) (Condition, error) {
		raw, err := p.str("spell", true)
		if err != nil {
			return nil, err
		}
		id, err := validateDebuffName(raw)
		if err != nil {
			return nil, err
		}
		b, err := durationBounds(p)
		return measure[time.Duration]{
			read:   func(ctx EvaluationContext) time.Duration { return ctx.AuraRemaining(id) },
			bounds: b,
		}, err
	},
	"resource_percent": func(p params) (Condition, error) {
		raw, err := p.str("resource", true)
		if err != nil {
			return nil, err
		}
		res, err := validateResourceName(raw)
		if err != nil {
			return nil, err
		}
		b, err := floatBounds(p)
		return measure[float64]{
			read:   func(ctx EvaluationContext) float64 { return ctx.ResourcePercent(res) },
			bounds: b,
		}, err
	},
	"mana_deficit": func(p params) (Condition, error) {
		b, err := floatBounds(p)
		return measure[float64]{
			read:   func(ctx EvaluationContext) float64 { return ctx.ManaDeficit() },
			bounds: b,
		}, err
	},
	"cooldown_ready": func(p params) (Condition, error) {
		id, err := p.cooldownTarget()
		return cooldownReady(id), err
	},
	"cooldown_remaining": func(p params) (Condition, error) {
		id, err := p.cooldownTarget()
		if err != nil {
			return nil, err
		}
		b, err := durationBounds(p)
		return measure[time.Duration]{
			read:   func(ctx EvaluationContext) time.Duration { return ctx.CooldownRemaining(id) },
			bounds: b,
		}, err
	},
	"charges": func(p params) (Condition, error) {
		raw, err := p.str("buff", false)
		if err != nil {
			return nil, err
		}
		if raw == "" {
			if raw, err = p.str("aura", true); err != nil {
				return nil, err
			}
		}
		id, err := validateAuraName(raw)
		if err != nil {
			return nil, err
		}
		var b bounds[int]
		for _, f := range []struct {
			key string
			dst **int
		}{{"lt", &b.lt}, {"lte", &b.lte}, {"gt", &b.gt}, {"gte", &b.gte}} {
			if *f.dst, err = p.int(f.key); err != nil {
				return nil, err
			}
		}
		return measure[int]{
			read:   func(ctx EvaluationContext) int { return ctx.AuraStacks(id) },
			bounds: b,
		}, nil
	},
	"fight_remaining": func(p params) (Condition, error) {
		b, err := durationBounds(p)
		return measure[time.Duration]{
			read:   func(ctx EvaluationContext) time.Duration { return ctx.FightRemaining() },
			bounds: b,
		}, err
	},
}

// params are the fields of one leaf condition with variables applied.
type params struct {
	fields map[string]*yaml.Node
	vars   map[string]any
}

func (c compiler) params(node *yaml.Node) (params, error) {
	if node.Kind != yaml.MappingNode {
		return params{}, fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	fields := make(map[string]*yaml.Node, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		fields[node.Content[i].Value] = node.Content[i+1]
	}
	return params{fields: fields, vars: c.vars}, nil
}

func (p params) scalar(key string) (any, bool, error) {
	node, ok := p.fields[key]
	if !ok {
		return nil, false, nil
	}
	var out any
	if err := node.Decode(&out); err != nil {
		return nil, true, err
	}
	if s, ok := out.(string); ok {
		s = strings.TrimSpace(s)
		if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
			name := strings.TrimSpace(s[2 : len(s)-1])
			v, ok := p.vars[name]
			if !ok {
				return nil, true, fmt.Errorf("variable '%s' not defined", name)
			}
			return v, true, nil
		}
	}
	return out, true, nil
}

func (p params) str(key string, required bool) (string, error) {
	v, ok, err := p.scalar(key)
	if err != nil {
		return "", err
	}
	if !ok {
		if required {
			return "", fmt.Errorf("missing field '%s'", key)
		}
		return "", nil
	}
	if s, ok := v.(string); ok {
		return s, nil
	}
	return fmt.Sprint(v), nil
}

func (p params) float(key string) (*float64, error) {
	v, ok, err := p.scalar(key)
	if err != nil || !ok {
		return nil, err
	}
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint64:
		f = float64(n)
	case string:
		if f, err = strconv.ParseFloat(strings.TrimSpace(n), 64); err != nil {
			return nil, fmt.Errorf("field '%s': %w", key, err)
		}
	default:
		return nil, fmt.Errorf("field '%s': cannot use %T as a number", key, v)
	}
	return &f, nil
}

func (p params) int(key string) (*int, error) {
	f, err := p.float(key)
	if err != nil || f == nil {
		return nil, err
	}
	n := int(*f)
	return &n, nil
}

func (p params) duration(key string) (*time.Duration, error) {
	f, err := p.float(key)
	if err != nil || f == nil {
		return nil, err
	}
	d := seconds(*f)
	return &d, nil
}

func (p params) auraWindow(field string, validate func(string) (spells.AuraID, error)) (Condition, error) {
	raw, err := p.str(field, true)
	if err != nil {
		return nil, err
	}
	id, err := validate(raw)
	if err != nil {
		return nil, err
	}
	cond := auraWindow{aura: id}
	if cond.min, err = p.duration("min_remaining"); err != nil {
		return nil, err
	}
	if cond.max, err = p.duration("max_remaining"); err != nil {
		return nil, err
	}
	return cond, nil
}

// cooldownTarget reads the spell or item a cooldown condition watches.
func (p params) cooldownTarget() (spells.ID, error) {
	name, err := p.str("spell", false)
	if err != nil {
		return 0, err
	}
	if name == "" {
		if name, err = p.str("item", true); err != nil {
			return 0, err
		}
	}
	return lookupAction(name)
}

func durationBounds(p params) (bounds[time.Duration], error) {
	var b bounds[time.Duration]
	var err error
	for _, f := range []struct {
		key string
		dst **time.Duration
	}{{"lt_seconds", &b.lt}, {"lte_seconds", &b.lte}, {"gt_seconds", &b.gt}, {"gte_seconds", &b.gte}} {
		if *f.dst, err = p.duration(f.key); err != nil {
			return b, err
		}
	}
	return b, nil
}

func floatBounds(p params) (bounds[float64], error) {
	var b bounds[float64]
	var err error
	for _, f := range []struct {
		key string
		dst **float64
	}{{"lt", &b.lt}, {"lte", &b.lte}, {"gt", &b.gt}, {"gte", &b.gte}} {
		if *f.dst, err = p.float(f.key); err != nil {
			return b, err
		}
	}
	return b, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
