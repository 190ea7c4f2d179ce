package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"tbc-warlock-sim/internal/apl"
	"tbc-warlock-sim/internal/combatlog"
	"tbc-warlock-sim/internal/config"
	"tbc-warlock-sim/internal/engine"
	"tbc-warlock-sim/internal/observability"
	"tbc-warlock-sim/internal/rng"
	"tbc-warlock-sim/internal/spells"
	"tbc-warlock-sim/internal/storage/sqlite"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("load .env: %v", err)
	}
	opts, err := config.LoadRuntimeOptions()
	if err != nil {
		log.Fatalf("runtime options: %v", err)
	}

	configPath := flag.String("config", opts.ConfigPath, "Path to the player profile")
	rotationPath := flag.String("rotation", "", "Rotation file (overrides rotation.file)")
	iterations := flag.Int("iterations", 0, "Iterations (0 = use profile)")
	logToZap := flag.Bool("log-zap", false, "Send the combat log through the structured logger instead of stdout")
	label := flag.String("label", "", "Label stored with the archived run")
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, runOptions{
		configPath:   *configPath,
		rotationPath: *rotationPath,
		archivePath:  opts.ArchivePath,
		label:        *label,
		logToZap:     *logToZap,
	}, logger); err != nil {
		logger.Error("simulation failed", zap.Error(err))
		os.Exit(1)
	}
}

type runOptions struct {
	configPath   string
	rotationPath string
	archivePath  string
	label        string
	logToZap     bool
}

func run(ctx context.Context, cfg *config.Configuration, opts runOptions, logger *zap.Logger) error {
	runID := uuid.New()
	logger = logger.With(zap.String("run_id", runID.String()))

	if cfg.Simulation.Seed == 0 {
		seed, err := rng.NewSeed()
		if err != nil {
			return err
		}
		cfg.Simulation.Seed = seed
	}

	catalogue, err := spells.Load()
	if err != nil {
		return fmt.Errorf("load spell catalogue: %w", err)
	}

	rotationFile := opts.rotationPath
	if rotationFile == "" && cfg.Rotation.File != "" {
		rotationFile = cfg.Rotation.File
		if !filepath.IsAbs(rotationFile) {
			rotationFile = filepath.Join(filepath.Dir(opts.configPath), rotationFile)
		}
	}
	var rotation *apl.CompiledRotation
	if rotationFile != "" {
		if rotation, err = apl.Load(rotationFile); err != nil {
			return fmt.Errorf("load rotation: %w", err)
		}
		logger.Info("rotation loaded", zap.String("name", rotation.Name), zap.String("path", rotationFile))
	}

	var sink combatlog.Sink = combatlog.NewWriterSink(os.Stdout)
	if opts.logToZap {
		sink = combatlog.NewZapSink(logger.Named("combatlog"))
	}

	sim := engine.NewSimulator(cfg, catalogue, rotation, 0, logger, sink)
	logger.Info("simulation starting",
		zap.Uint64("seed", cfg.Simulation.Seed),
		zap.Int("iterations", cfg.Simulation.Iterations))

	started := time.Now()
	res, err := sim.Run(ctx)
	if err != nil {
		return err
	}
	res.PrintResults(os.Stdout)
	fmt.Printf("Seed: %d, elapsed %s\n", cfg.Simulation.Seed, time.Since(started).Round(time.Millisecond))

	if opts.archivePath == "" {
		return nil
	}
	store, err := sqlite.Open(opts.archivePath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	label := opts.label
	if label == "" {
		label = cfg.Player.Name
	}
	record := sqlite.NewRun(label, cfg.Simulation.Seed, res)
	record.ID = runID
	if err := store.SaveRun(ctx, record); err != nil {
		return fmt.Errorf("archive run: %w", err)
	}
	logger.Info("run archived", zap.String("path", opts.archivePath))
	return nil
}
