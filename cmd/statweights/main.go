package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tbc-warlock-sim/internal/apl"
	"tbc-warlock-sim/internal/character"
	"tbc-warlock-sim/internal/config"
	"tbc-warlock-sim/internal/engine"
	"tbc-warlock-sim/internal/observability"
	"tbc-warlock-sim/internal/rng"
	"tbc-warlock-sim/internal/spells"
)

type statDelta struct {
	name  string
	unit  string
	delta float64
	apply func(*config.PlayerConfig, float64)
}

type weightResult struct {
	delta    statDelta
	weight   float64
	dpsPlus  float64
	dpsMinus float64
}

var deltas = []statDelta{
	{name: "Spell Power", unit: "SP", delta: 10, apply: func(p *config.PlayerConfig, d float64) { p.SpellPower += d }},
	{name: "Crit", unit: "crit rating", delta: character.CritRatingPerPercent, apply: func(p *config.PlayerConfig, d float64) { p.CritRating += d }},
	{name: "Hit", unit: "hit rating", delta: character.HitRatingPerPercent, apply: func(p *config.PlayerConfig, d float64) { p.HitRating += d }},
	{name: "Haste", unit: "haste rating", delta: character.HasteRatingPerPercent, apply: func(p *config.PlayerConfig, d float64) { p.HasteRating += d }},
	{name: "Intellect", unit: "Int", delta: 10, apply: func(p *config.PlayerConfig, d float64) { p.Intellect += d }},
	{name: "Spirit", unit: "Spirit", delta: 10, apply: func(p *config.PlayerConfig, d float64) { p.Spirit += d }},
}

// runner evaluates a profile variant on a shared seed.
type runner struct {
	base      *config.Configuration
	catalogue *spells.Catalogue
	rotation  *apl.CompiledRotation
	logger    *zap.Logger
}

func (r runner) dps(ctx context.Context, player config.PlayerConfig, seed uint64) (float64, error) {
	cfg := *r.base
	cfg.Player = player
	cfg.Simulation.Workers = 1
	cfg.Simulation.CombatLog = false
	sim := engine.NewSimulator(&cfg, r.catalogue, r.rotation, seed, r.logger, nil)
	res, err := sim.Run(ctx)
	if err != nil {
		return 0, err
	}
	return res.MeanDPS(), nil
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("load .env: %v", err)
	}
	opts, err := config.LoadRuntimeOptions()
	if err != nil {
		log.Fatalf("runtime options: %v", err)
	}

	configPath := flag.String("config", opts.ConfigPath, "Path to the player profile")
	rotationFlag := flag.String("rotation", "", "Rotation file (defaults to rotation.file)")
	iterations := flag.Int("iterations", 0, "Iterations (0 = use profile)")
	seedBase := flag.Uint64("seed-base", 0, "Base RNG seed (0 = random)")
	verbose := flag.Bool("verbose", false, "Show plus/minus DPS columns")
	concurrency := flag.Int("concurrency", 0, "Concurrent sims (0 = num CPU)")
	sweepStat := flag.String("stat", "", "Stat to sweep (crit|haste|hit|sp). If set, runs sweep mode instead of central-diff weights.")
	sweepStart := flag.Float64("start", math.NaN(), "Sweep start rating (or spell power). Defaults depend on stat.")
	sweepStop := flag.Float64("stop", math.NaN(), "Sweep stop rating (or spell power). Defaults depend on stat.")
	sweepStep := flag.Float64("step", math.NaN(), "Sweep step. Defaults depend on stat.")
	sweepAvgSeeds := flag.Int("avg-seeds", 1, "Number of seeds to average per sweep point (>=1).")
	includeDelta := flag.Bool("deltas", true, "Include DPS-per-point delta column in sweep CSV.")
	outputDir := flag.String("output-dir", "output/stat_curves", "Directory for sweep CSV output.")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config %s: %v", *configPath, err)
	}
	opts.Apply(cfg)
	if *iterations > 0 {
		cfg.Simulation.Iterations = *iterations
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	catalogue, err := spells.Load()
	if err != nil {
		log.Fatalf("load spell catalogue: %v", err)
	}

	rotationFile := *rotationFlag
	if rotationFile == "" && cfg.Rotation.File != "" {
		rotationFile = filepath.Join(filepath.Dir(*configPath), cfg.Rotation.File)
	}
	var rotation *apl.CompiledRotation
	if rotationFile != "" {
		if rotation, err = apl.Load(rotationFile); err != nil {
			log.Fatalf("load rotation: %v", err)
		}
	}

	baseSeed := *seedBase
	if baseSeed == 0 {
		baseSeed = cfg.Simulation.Seed
	}
	if baseSeed == 0 {
		if baseSeed, err = rng.NewSeed(); err != nil {
			log.Fatalf("seed: %v", err)
		}
	}
	workers := *concurrency
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	r := runner{base: cfg, catalogue: catalogue, rotation: rotation, logger: logger.Named("statweights")}
	ctx := context.Background()

	if *sweepStat != "" {
		sweepCfg, err := buildSweepConfig(*sweepStat, *sweepStart, *sweepStop, *sweepStep, workers, *sweepAvgSeeds, *includeDelta, *outputDir, cfg.Player)
		if err != nil {
			log.Fatalf("sweep config error: %v", err)
		}
		if err := runSweep(ctx, r, baseSeed, sweepCfg); err != nil {
			log.Fatalf("sweep failed: %v", err)
		}
		return
	}

	baselineDPS, err := r.dps(ctx, cfg.Player, baseSeed)
	if err != nil {
		log.Fatalf("baseline: %v", err)
	}
	fmt.Printf("Stat Weights (central diff, shared seed %d)\n", baseSeed)
	if rotation != nil {
		fmt.Printf("Rotation: %s\n", rotation.Name)
	}
	fmt.Printf("Iterations: %d\n\n", cfg.Simulation.Iterations)
	fmt.Printf("Baseline DPS: %.2f\n\n", baselineDPS)

	results, err := centralDifferences(ctx, r, baseSeed, workers)
	if err != nil {
		log.Fatalf("stat weights: %v", err)
	}

	w := tabWriter()
	if *verbose {
		fmt.Fprintf(w, "Stat\tDelta\tDPS/Unit\tPlus DPS\tMinus DPS\n")
	} else {
		fmt.Fprintf(w, "Stat\tDelta\tDPS/Unit\n")
	}
	for _, res := range results {
		if *verbose {
			fmt.Fprintf(w, "%s\t%+.2f %s\t%.3f\t%.2f\t%.2f\n",
				res.delta.name, res.delta.delta, res.delta.unit, res.weight, res.dpsPlus, res.dpsMinus)
		} else {
			fmt.Fprintf(w, "%s\t%+.2f %s\t%.3f\n",
				res.delta.name, res.delta.delta, res.delta.unit, res.weight)
		}
	}
	_ = w.Flush()

	sp := results[0].weight
	if sp == 0 {
		return
	}
	nw := tabWriter()
	fmt.Fprintf(nw, "\nNormalized (SP = 1.0)\n")
	fmt.Fprintf(nw, "Stat\tWeight vs SP\n")
	for _, res := range results {
		fmt.Fprintf(nw, "%s\t%.3f\n", res.delta.name, res.weight/sp)
	}
	_ = nw.Flush()
	fmt.Printf("\n%s\n", pawnString(results))
}

// centralDifferences runs every delta at +d and -d on the same seed. The
// first entry is always spell power.
func centralDifferences(ctx context.Context, r runner, seed uint64, workers int) ([]weightResult, error) {
	results := make([]weightResult, len(deltas))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, sd := range deltas {
		results[i].delta = sd
		for _, sign := range []float64{1, -1} {
			g.Go(func() error {
				player := r.base.Player
				sd.apply(&player, sign*sd.delta)
				dps, err := r.dps(gctx, player, seed)
				if err != nil {
					return fmt.Errorf("%s %+.2f: %w", sd.name, sign*sd.delta, err)
				}
				if sign > 0 {
					results[i].dpsPlus = dps
				} else {
					results[i].dpsMinus = dps
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i := range results {
		results[i].weight = (results[i].dpsPlus - results[i].dpsMinus) / (2 * results[i].delta.delta)
	}
	return results, nil
}

// pawnString formats the weights per rating point relative to spell power.
func pawnString(results []weightResult) string {
	sp := results[0].weight
	byName := make(map[string]float64, len(results))
	for _, res := range results {
		byName[res.delta.name] = res.weight / sp
	}
	return fmt.Sprintf("Pawn: v1: \"StatWeights (Sim)\": SpellDamage=1, SpellCritRating=%.2f, SpellHitRating=%.2f, SpellHasteRating=%.2f, Intellect=%.2f, Spirit=%.2f",
		byName["Crit"], byName["Hit"], byName["Haste"], byName["Intellect"], byName["Spirit"])
}

// tabWriter creates a tab-aligned writer for consistent table output.
func tabWriter() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
}
