package apl

import (
	"cmp"
	"time"

	"tbc-warlock-sim/internal/spells"
)

// EvaluationContext is the combatant state a rotation can observe.
type EvaluationContext interface {
	AuraActive(id spells.AuraID) bool
	AuraRemaining(id spells.AuraID) time.Duration
	AuraStacks(id spells.AuraID) int
	// ResourcePercent returns the current pool as a fraction of its maximum.
	ResourcePercent(r Resource) float64
	// ManaDeficit is maximum mana minus current mana.
	ManaDeficit() float64
	CooldownReady(id spells.ID) bool
	CooldownRemaining(id spells.ID) time.Duration
	FightRemaining() time.Duration
}

// Condition gates a rotation entry.
type Condition interface {
	Eval(ctx EvaluationContext) bool
}

type bounds[T cmp.Ordered] struct {
	lt, lte, gt, gte *T
}

func (b bounds[T]) match(v T) bool {
	switch {
	case b.lt != nil && v >= *b.lt:
		return false
	case b.lte != nil && v > *b.lte:
		return false
	case b.gt != nil && v <= *b.gt:
		return false
	case b.gte != nil && v < *b.gte:
		return false
	}
	return true
}

type constant bool

func (c constant) Eval(EvaluationContext) bool { return bool(c) }

type anyOf []Condition

func (c anyOf) Eval(ctx EvaluationContext) bool {
	for _, child := range c {
		if child.Eval(ctx) {
			return true
		}
	}
	return false
}

type allOf []Condition

func (c allOf) Eval(ctx EvaluationContext) bool {
	for _, child := range c {
		if !child.Eval(ctx) {
			return false
		}
	}
	return true
}

type negate struct {
	child Condition
}

func (c negate) Eval(ctx EvaluationContext) bool {
	return c.child == nil || !c.child.Eval(ctx)
}

// measure compares one observed quantity against bounds.
type measure[T cmp.Ordered] struct {
	read func(EvaluationContext) T
	bounds[T]
}

func (m measure[T]) Eval(ctx EvaluationContext) bool {
	if ctx == nil {
		return false
	}
	return m.match(m.read(ctx))
}

// auraWindow is true while the aura is up with remaining time inside
// [min, max].
type auraWindow struct {
	aura     spells.AuraID
	min, max *time.Duration
}

func (c auraWindow) Eval(ctx EvaluationContext) bool {
	if ctx == nil || !ctx.AuraActive(c.aura) {
		return false
	}
	remaining := ctx.AuraRemaining(c.aura)
	if c.min != nil && remaining < *c.min {
		return false
	}
	return c.max == nil || remaining <= *c.max
}

type cooldownReady spells.ID

func (c cooldownReady) Eval(ctx EvaluationContext) bool {
	return ctx != nil && ctx.CooldownReady(spells.ID(c))
}
