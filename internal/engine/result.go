package engine

import (
	"fmt"
	"math"
	"time"

	"tbc-warlock-sim/internal/spells"
)

// ActionStats keeps per-action performance details.
type ActionStats struct {
	Casts    int64
	Hits     int64
	Crits    int64
	Misses   int64
	Ticks    int64
	Damage   float64
	ManaGain float64
	// DamageSq is the sum of squared per-iteration damage. It is only
	// populated on aggregates.
	DamageSq float64
}

func (s *ActionStats) add(other ActionStats) {
	s.Casts += other.Casts
	s.Hits += other.Hits
	s.Crits += other.Crits
	s.Misses += other.Misses
	s.Ticks += other.Ticks
	s.Damage += other.Damage
	s.ManaGain += other.ManaGain
	s.DamageSq += other.DamageSq
}

// AuraStats counts applications and active time.
type AuraStats struct {
	Gains  int64
	Uptime time.Duration
}

// IterationResult is the outcome of a single encounter.
type IterationResult struct {
	Iteration int
	Duration  time.Duration
	// Damage is the total of every resolved contribution, counted
	// independently of the per-action breakdown.
	Damage  float64
	Actions [spells.NumIDs]ActionStats
	Auras   [spells.NumAuras]AuraStats
	// Flushes counts accumulator flushes forced by the accumulator limit.
	Flushes int
}

// DPS returns the iteration's damage per second.
func (r *IterationResult) DPS() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return r.Damage / r.Duration.Seconds()
}

// AggregateResult sums iteration results.
type AggregateResult struct {
	Iterations int
	FightTime  time.Duration
	Damage     float64
	DPSSum     float64
	DPSSq      float64
	MinDPS     float64
	MaxDPS     float64
	Actions    [spells.NumIDs]ActionStats
	Auras      [spells.NumAuras]AuraStats
	Flushes    int

	Labels     [spells.NumIDs]string
	AuraLabels [spells.NumAuras]string
}

// Add folds one iteration into the aggregate.
func (r *AggregateResult) Add(it *IterationResult) {
	dps := it.DPS()
	if r.Iterations == 0 {
		r.MinDPS, r.MaxDPS = dps, dps
	} else {
		r.MinDPS = math.Min(r.MinDPS, dps)
		r.MaxDPS = math.Max(r.MaxDPS, dps)
	}
	r.Iterations++
	r.FightTime += it.Duration
	r.Damage += it.Damage
	r.DPSSum += dps
	r.DPSSq += dps * dps
	r.Flushes += it.Flushes
	for i := range it.Actions {
		stats := it.Actions[i]
		stats.DamageSq = stats.Damage * stats.Damage
		r.Actions[i].add(stats)
	}
	for i, a := range it.Auras {
		r.Auras[i].Gains += a.Gains
		r.Auras[i].Uptime += a.Uptime
	}
}

// Merge folds another aggregate into r.
func (r *AggregateResult) Merge(other *AggregateResult) {
	if other == nil || other.Iterations == 0 {
		return
	}
	if r.Iterations == 0 {
		r.MinDPS, r.MaxDPS = other.MinDPS, other.MaxDPS
	} else {
		r.MinDPS = math.Min(r.MinDPS, other.MinDPS)
		r.MaxDPS = math.Max(r.MaxDPS, other.MaxDPS)
	}
	r.Iterations += other.Iterations
	r.FightTime += other.FightTime
	r.Damage += other.Damage
	r.DPSSum += other.DPSSum
	r.DPSSq += other.DPSSq
	r.Flushes += other.Flushes
	for i := range other.Actions {
		r.Actions[i].add(other.Actions[i])
	}
	for i, a := range other.Auras {
		r.Auras[i].Gains += a.Gains
		r.Auras[i].Uptime += a.Uptime
	}
	for i, l := range other.Labels {
		if r.Labels[i] == "" {
			r.Labels[i] = l
		}
	}
	for i, l := range other.AuraLabels {
		if r.AuraLabels[i] == "" {
			r.AuraLabels[i] = l
		}
	}
}

// MeanDPS returns the average DPS across iterations.
func (r *AggregateResult) MeanDPS() float64 {
	if r.Iterations == 0 {
		return 0
	}
	return r.DPSSum / float64(r.Iterations)
}

// StdDevDPS returns the sample standard deviation of per-iteration DPS.
func (r *AggregateResult) StdDevDPS() float64 {
	if r.Iterations < 2 {
		return 0
	}
	n := float64(r.Iterations)
	v := (r.DPSSq - r.DPSSum*r.DPSSum/n) / (n - 1)
	if v <= 0 {
		return 0
	}
	return math.Sqrt(v)
}

// MeanFightLength returns the average encounter duration.
func (r *AggregateResult) MeanFightLength() time.Duration {
	if r.Iterations == 0 {
		return 0
	}
	return r.FightTime / time.Duration(r.Iterations)
}

// Label returns the display name of an action.
func (r *AggregateResult) Label(id spells.ID) string {
	if id.Valid() && r.Labels[id] != "" {
		return r.Labels[id]
	}
	return id.String()
}

// accumulator holds per-iteration damage sums below a fixed limit. A sum
// that would cross the limit is flushed into the iteration result first.
type accumulator struct {
	limit   float64
	pending [spells.NumIDs]float64
}

func newAccumulator(limit float64) *accumulator {
	if limit <= 0 {
		limit = math.MaxFloat64
	}
	return &accumulator{limit: limit}
}

func (a *accumulator) add(res *IterationResult, id spells.ID, damage float64) error {
	if damage > a.limit {
		return fmt.Errorf("%w: %s contributed %.0f, limit is %.0f", ErrAccumulatorOverflow, id, damage, a.limit)
	}
	if a.pending[id] > a.limit-damage {
		a.flush(res, id)
		res.Flushes++
	}
	a.pending[id] += damage
	return nil
}

func (a *accumulator) flush(res *IterationResult, id spells.ID) {
	res.Actions[id].Damage += a.pending[id]
	a.pending[id] = 0
}

func (a *accumulator) flushAll(res *IterationResult) {
	for i := range a.pending {
		a.flush(res, spells.ID(i))
	}
}
