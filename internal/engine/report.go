package engine

import (
	"fmt"
	"io"
	"math"
	"sort"

	"tbc-warlock-sim/internal/spells"
)

// PrintResults writes a human-readable summary of r to w.
func (r *AggregateResult) PrintResults(w io.Writer) {
	if r.Iterations == 0 {
		fmt.Fprintln(w, "No iterations were run.")
		return
	}
	n := float64(r.Iterations)
	fightSeconds := r.MeanFightLength().Seconds()

	fmt.Fprintln(w, "========================================")
	fmt.Fprintln(w, "Simulation Results")
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Iterations: %d\n", r.Iterations)
	fmt.Fprintf(w, "Average fight length: %.1fs\n", fightSeconds)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "DPS: %.2f (stddev %.2f, min %.2f, max %.2f)\n", r.MeanDPS(), r.StdDevDPS(), r.MinDPS, r.MaxDPS)
	fmt.Fprintf(w, "Damage (avg): %.0f\n", r.Damage/n)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Spell Breakdown (average per iteration):")
	fmt.Fprintln(w, "--------------------------------------------------------------------------------------")
	fmt.Fprintf(w, "%-22s | %7s | %7s | %10s | %6s | %7s | %7s | %7s | %8s\n",
		"Spell", "Casts", "Ticks", "Damage", "Share", "Avg", "Crit%", "Miss%", "Mana")
	fmt.Fprintln(w, "--------------------------------------------------------------------------------------")
	type row struct {
		label string
		stats ActionStats
	}
	var rows []row
	for i, stats := range r.Actions {
		if stats.Casts == 0 && stats.Ticks == 0 {
			continue
		}
		rows = append(rows, row{label: r.Label(spells.ID(i)), stats: stats})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		di, dj := rows[i].stats.Damage, rows[j].stats.Damage
		if di == dj {
			return rows[i].label < rows[j].label
		}
		return di > dj
	})
	for _, row := range rows {
		s := row.stats
		share := 0.0
		if r.Damage > 0 {
			share = s.Damage / r.Damage * 100
		}
		var avg, critPct, missPct float64
		if hits := s.Hits + s.Ticks; hits > 0 {
			avg = s.Damage / float64(hits)
		}
		if s.Hits > 0 {
			critPct = float64(s.Crits) / float64(s.Hits) * 100
		}
		if s.Casts > 0 {
			missPct = float64(s.Misses) / float64(s.Casts) * 100
		}
		fmt.Fprintf(w, "%-22s | %7.1f | %7.1f | %10.0f | %5.1f%% | %7.0f | %6.1f%% | %6.1f%% | %8.0f\n",
			row.label, float64(s.Casts)/n, float64(s.Ticks)/n, s.Damage/n, share, avg, critPct, missPct, s.ManaGain/n)
	}
	fmt.Fprintln(w, "--------------------------------------------------------------------------------------")

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Buff Uptimes:")
	fmt.Fprintln(w, "----------------------------------------")
	for i, a := range r.Auras {
		if a.Gains == 0 {
			continue
		}
		label := r.AuraLabels[i]
		if label == "" {
			label = spells.AuraID(i).String()
		}
		avg := a.Uptime.Seconds() / n
		pct := 0.0
		if fightSeconds > 0 {
			pct = avg / fightSeconds * 100
		}
		fmt.Fprintf(w, "%-28s %7.1fs (%5.1f%%) | applied %.1f\n", label+":", avg, pct, float64(a.Gains)/n)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Statistics:")
	fmt.Fprintln(w, "----------------------------------------")
	var casts, misses, crits, hits int64
	for _, s := range r.Actions {
		casts += s.Casts
		misses += s.Misses
		crits += s.Crits
		hits += s.Hits
	}
	fmt.Fprintf(w, "Total Casts: %.1f\n", float64(casts)/n)
	if casts > 0 {
		fmt.Fprintf(w, "Misses:      %.1f (%.1f%%)\n", float64(misses)/n, float64(misses)/float64(casts)*100)
	}
	if hits > 0 {
		fmt.Fprintf(w, "Crits:       %.1f (%.1f%%)\n", float64(crits)/n, float64(crits)/float64(hits)*100)
	}
	if r.Flushes > 0 {
		fmt.Fprintf(w, "Accumulator flushes: %d\n", r.Flushes)
	}
	if r.Iterations > 1 {
		// 95% confidence interval of the mean.
		margin := 1.96 * r.StdDevDPS() / math.Sqrt(n)
		fmt.Fprintf(w, "DPS 95%% CI:  %.2f - %.2f\n", r.MeanDPS()-margin, r.MeanDPS()+margin)
	}
	fmt.Fprintln(w, "========================================")
}
