package cli

import (
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/google/uuid"
	"github.com/on-the-ground/ramtab/intern"
	"github.com/on-the-ground/ramtab/internal/bench"
	"github.com/on-the-ground/ramtab/internal/config"
	"github.com/on-the-ground/ramtab/internal/logging"
	"github.com/on-the-ground/ramtab/ram"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "ramtab-bench v%s\n", Version)
		},
	}
}

func newSymbolsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "symbols",
		Short: "Benchmark symbol table insert, lookup and resolve",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, "symbols", func(env runEnv) ([]bench.Phase, error) {
				words, err := loadWords(env.cfg, env.rng)
				if err != nil {
					return nil, err
				}
				env.logger.Info("running symbol benchmark",
					zap.String("run", env.runID),
					zap.Int("symbols", len(words)),
				)
				return bench.Symbols(cmd.Context(), env.opts, words)
			})
		},
	}
}

func newRecordsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "records",
		Short: "Benchmark record table pack and unpack",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, "records", func(env runEnv) ([]bench.Phase, error) {
				records := bench.GenerateRecords(env.cfg.Count, env.cfg.Arity, env.rng)
				env.logger.Info("running record benchmark",
					zap.String("run", env.runID),
					zap.Int("records", len(records)),
					zap.Int("arity", env.cfg.Arity),
				)
				return bench.Records(cmd.Context(), env.opts, records)
			})
		},
	}
}

type runEnv struct {
	runID  string
	cfg    *config.Config
	opts   bench.Options
	rng    *rand.Rand
	logger *zap.Logger
}

func run(cmd *cobra.Command, title string, measure func(runEnv) ([]bench.Phase, error)) error {
	cfg, err := configFrom(cmd)
	if err != nil {
		return err
	}
	threads, err := cfg.ThreadCounts()
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Level(cfg.LogLevel), cfg.Verbose)
	if err != nil {
		return err
	}
	defer logging.Sync(logger)

	env := runEnv{
		runID: uuid.New().String(),
		cfg:   cfg,
		opts: bench.Options{
			Threads: threads,
			Mode:    cfg.Mode,
			Table:   intern.NewConfig(cfg.Shards, ram.MaxDomain, logger),
			Logger:  logger,
		},
		rng:    rand.New(rand.NewPCG(cfg.Seed, cfg.Seed)),
		logger: logger,
	}

	phases, err := measure(env)
	if err != nil {
		return fmt.Errorf("%s benchmark failed: %w", title, err)
	}
	report := bench.Report{RunID: env.runID, Title: title, Phases: phases}
	return report.Render(cmd.OutOrStdout(), cfg.Format)
}

func loadWords(cfg *config.Config, rng *rand.Rand) ([]string, error) {
	if cfg.Input == "" {
		return bench.GenerateStrings(cfg.Count, rng), nil
	}
	f, err := os.Open(cfg.Input)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()
	return bench.ReadStrings(f, rng)
}
