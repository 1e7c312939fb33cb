// Package cli provides the command-line interface of the benchmark harness.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/on-the-ground/ramtab/internal/config"
	"github.com/spf13/cobra"
)

// Version information (set at build time).
var Version = "0.1.0"

var cfgFile string

// configKey is used to store config in context.
type configKey struct{}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ramtab-bench",
		Short: "Throughput benchmarks for the symbol and record tables",
		Long: `ramtab-bench measures how the interning tables behave when many
goroutines insert and resolve content at the same time.

Each run times every phase once per worker count in --threads, on a fresh table.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" || cmd.Name() == "version" {
				return nil
			}
			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (YAML)")
	flags.String("input", "", "file with one symbol per line (default: generated symbols)")
	flags.Int("count", 0, "number of generated items")
	flags.Uint64("seed", 0, "random seed for generated workloads")
	flags.String("threads", "", "comma-separated worker counts, e.g. 1,2,4,8")
	flags.String("mode", "", "work distribution (shared|partitioned)")
	flags.Int("shards", 0, "lock shards per table; 1 uses a single table-wide lock")
	flags.Int("arity", 0, "record arity")
	flags.StringP("format", "f", "", "output format (table|markdown|csv)")
	flags.String("log-level", "", "log level (debug|info|warn|error)")
	flags.BoolP("verbose", "v", false, "human-readable logs")

	_ = rootCmd.RegisterFlagCompletionFunc("mode", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{config.ModeShared, config.ModePartitioned}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "markdown", "csv"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newVersionCommand())
	rootCmd.AddCommand(newSymbolsCommand())
	rootCmd.AddCommand(newRecordsCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func configFrom(cmd *cobra.Command) (*config.Config, error) {
	cfg, ok := cmd.Context().Value(configKey{}).(*config.Config)
	if !ok {
		return nil, fmt.Errorf("configuration not loaded")
	}
	return cfg, nil
}
