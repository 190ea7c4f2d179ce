package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"tbc-warlock-sim/internal/config"
)

type sweepConfig struct {
	stat         string
	start        float64
	stop         float64
	step         float64
	avgSeeds     int
	concurrency  int
	includeDelta bool
	outputDir    string
}

type sweepPointResult struct {
	value float64
	dps   float64
}

func buildSweepConfig(stat string, start, stop, step float64, concurrency, avgSeeds int, includeDelta bool, outputDir string, base config.PlayerConfig) (sweepConfig, error) {
	cfg := sweepConfig{
		start:        start,
		stop:         stop,
		step:         step,
		concurrency:  concurrency,
		avgSeeds:     avgSeeds,
		includeDelta: includeDelta,
		outputDir:    outputDir,
	}

	var defStart, defStop, defStep float64
	switch strings.ToLower(strings.TrimSpace(stat)) {
	case "crit":
		cfg.stat = "crit"
		defStart, defStop, defStep = 0, 400, 10
	case "haste":
		cfg.stat = "haste"
		defStart, defStop, defStep = 0, 400, 10
	case "hit":
		cfg.stat = "hit"
		defStart, defStop, defStep = 0, 202, 2
	case "sp", "spellpower", "spell_power":
		cfg.stat = "sp"
		defStart, defStop, defStep = base.SpellPower, base.SpellPower+800, 10
	default:
		return sweepConfig{}, fmt.Errorf("unsupported stat %q (use crit|haste|hit|sp)", stat)
	}
	if math.IsNaN(cfg.start) {
		cfg.start = defStart
	}
	if math.IsNaN(cfg.stop) {
		cfg.stop = defStop
	}
	if math.IsNaN(cfg.step) {
		cfg.step = defStep
	}

	if cfg.step <= 0 {
		return sweepConfig{}, fmt.Errorf("step must be > 0 (got %.2f)", cfg.step)
	}
	if cfg.stop <= cfg.start {
		return sweepConfig{}, fmt.Errorf("stop must be > start (start=%.2f, stop=%.2f)", cfg.start, cfg.stop)
	}
	if cfg.concurrency <= 0 {
		cfg.concurrency = 1
	}
	if cfg.avgSeeds < 1 {
		cfg.avgSeeds = 1
	}
	return cfg, nil
}

func sweepValues(cfg sweepConfig) []float64 {
	var values []float64
	for i := 0; ; i++ {
		v := cfg.start + float64(i)*cfg.step
		if v > cfg.stop+1e-9 {
			return values
		}
		values = append(values, v)
	}
}

// sweepSeeds derives avgSeeds seeds per point from base. Every point uses
// the same seeds so neighbouring points differ only by the stat.
func sweepSeeds(base uint64, avgSeeds int) []uint64 {
	r := rand.New(rand.NewPCG(base, 0))
	seeds := make([]uint64, avgSeeds)
	for i := range seeds {
		seeds[i] = r.Uint64() | 1
	}
	return seeds
}

func applyStat(base config.PlayerConfig, stat string, value float64) config.PlayerConfig {
	p := base
	switch stat {
	case "crit":
		p.CritRating = value
	case "haste":
		p.HasteRating = value
	case "hit":
		p.HitRating = value
	case "sp":
		p.SpellPower = value
	}
	return p
}

func runSweep(ctx context.Context, r runner, baseSeed uint64, sweepCfg sweepConfig) error {
	values := sweepValues(sweepCfg)
	if len(values) == 0 {
		return fmt.Errorf("no sweep points generated")
	}
	seeds := sweepSeeds(baseSeed, sweepCfg.avgSeeds)

	results := make([]sweepPointResult, len(values))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sweepCfg.concurrency)
	for i, v := range values {
		g.Go(func() error {
			player := applyStat(r.base.Player, sweepCfg.stat, v)
			var total float64
			for _, seed := range seeds {
				dps, err := r.dps(gctx, player, seed)
				if err != nil {
					return fmt.Errorf("sweep %s=%.2f: %w", sweepCfg.stat, v, err)
				}
				total += dps
			}
			results[i] = sweepPointResult{value: v, dps: total / float64(len(seeds))}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := os.MkdirAll(sweepCfg.outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	outPath := filepath.Join(sweepCfg.outputDir, sweepCfg.stat+".csv")
	file, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create file %s: %w", outPath, err)
	}
	defer file.Close()

	if err := writeSweepCSV(file, results, sweepCfg.includeDelta); err != nil {
		return err
	}
	fmt.Printf("Sweep complete (%s): %d points, seeds/point=%d, output=%s\n", sweepCfg.stat, len(results), len(seeds), outPath)
	return nil
}

func writeSweepCSV(f io.Writer, results []sweepPointResult, includeDelta bool) error {
	writer := csv.NewWriter(f)
	header := []string{"stat_value", "dps"}
	if includeDelta {
		header = append(header, "dps_per_point")
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, res := range results {
		record := []string{
			fmt.Sprintf("%.4f", res.value),
			fmt.Sprintf("%.4f", res.dps),
		}
		if includeDelta {
			if i == 0 {
				record = append(record, "")
			} else {
				prev := results[i-1]
				record = append(record, fmt.Sprintf("%.6f", (res.dps-prev.dps)/(res.value-prev.value)))
			}
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
