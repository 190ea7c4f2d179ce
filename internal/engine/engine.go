package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tbc-warlock-sim/internal/apl"
	"tbc-warlock-sim/internal/combatlog"
	"tbc-warlock-sim/internal/config"
	"tbc-warlock-sim/internal/spells"
)

// Simulator runs a configured encounter many times and aggregates the
// results.
type Simulator struct {
	Config    *config.Configuration
	Catalogue *spells.Catalogue
	Rotation  *apl.CompiledRotation
	// Policy, when set, replaces the rotation and the built-in priority.
	Policy Policy
	// Seed overrides simulation.seed when non-zero.
	Seed   uint64
	Logger *zap.Logger
	Sink   combatlog.Sink
}

func NewSimulator(cfg *config.Configuration, cat *spells.Catalogue, rotation *apl.CompiledRotation, seed uint64, logger *zap.Logger, sink combatlog.Sink) *Simulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulator{
		Config:    cfg,
		Catalogue: cat,
		Rotation:  rotation,
		Seed:      seed,
		Logger:    logger,
		Sink:      sink,
	}
}

// NewCombatant builds a fresh player for one worker.
func (s *Simulator) NewCombatant() (*Combatant, error) {
	return Initialize(s.Config, s.Catalogue, Options{
		Seed:     s.Seed,
		Rotation: s.Rotation,
		Policy:   s.Policy,
		Sink:     s.Sink,
	})
}

// Run executes simulation.iterations encounters.
func (s *Simulator) Run(ctx context.Context) (*AggregateResult, error) {
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if s.Config == nil {
		return nil, errors.New("nil configuration")
	}
	if err := s.Config.Validate(); err != nil {
		return nil, err
	}
	sim := s.Config.Simulation
	started := time.Now()

	if s.Sink != nil && sim.CombatLog {
		header := combatlog.Entry{
			Line: fmt.Sprintf("=== Combat Log Start (iteration %d of %d) ===",
				sim.CombatLogIteration, sim.Iterations),
			Static: true,
		}
		if err := s.Sink.Write(header); err != nil {
			return nil, fmt.Errorf("write combat log: %w", err)
		}
	}

	logger.Debug("simulation starting",
		zap.Int("iterations", sim.Iterations),
		zap.Int("workers", sim.Workers),
		zap.Bool("rotation", s.Rotation != nil))

	var (
		res *AggregateResult
		err error
	)
	if sim.Workers > 1 {
		res, err = RunParallel(ctx, s.NewCombatant, sim.Iterations, sim.Workers)
	} else {
		var c *Combatant
		if c, err = s.NewCombatant(); err == nil {
			res, err = RunSequential(ctx, c, sim.Iterations)
		}
	}
	if err != nil {
		logger.Error("simulation failed", zap.Error(err))
		return nil, err
	}

	logger.Info("simulation complete",
		zap.Int("iterations", res.Iterations),
		zap.Float64("dps", res.MeanDPS()),
		zap.Float64("stddev", res.StdDevDPS()),
		zap.Int("accumulator_flushes", res.Flushes),
		zap.Duration("elapsed", time.Since(started)))
	return res, nil
}
