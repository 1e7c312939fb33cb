// Package config loads the benchmark harness configuration.
//
// Sources are layered with koanf, later ones overriding earlier ones:
// built-in defaults, an optional YAML file, RAMTAB_* environment variables,
// and finally command-line flags that were explicitly set.
package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "RAMTAB_"

const (
	ModeShared      = "shared"
	ModePartitioned = "partitioned"
)

var (
	modes   = []string{ModeShared, ModePartitioned}
	formats = []string{"table", "markdown", "csv"}
)

// Config is the harness configuration.
type Config struct {
	Input    string `koanf:"input"`
	Count    int    `koanf:"count"`
	Seed     uint64 `koanf:"seed"`
	Threads  string `koanf:"threads"`
	Mode     string `koanf:"mode"`
	Shards   int    `koanf:"shards"`
	Arity    int    `koanf:"arity"`
	Format   string `koanf:"format"`
	LogLevel string `koanf:"log_level"`
	Verbose  bool   `koanf:"verbose"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"count":     100000,
		"seed":      1,
		"threads":   "1,2,4,8",
		"mode":      ModeShared,
		"shards":    64,
		"arity":     3,
		"format":    "table",
		"log_level": "info",
	}
}

// Load builds a Config. path names an optional YAML file; flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field ranges and enumerations.
func (c *Config) Validate() error {
	if c.Input == "" && c.Count <= 0 {
		return fmt.Errorf("count must be positive when no input file is given, got %d", c.Count)
	}
	if !slices.Contains(modes, c.Mode) {
		return fmt.Errorf("unknown mode %q (available: %s)", c.Mode, strings.Join(modes, ", "))
	}
	if !slices.Contains(formats, c.Format) {
		return fmt.Errorf("unknown format %q (available: %s)", c.Format, strings.Join(formats, ", "))
	}
	if c.Arity < 0 {
		return fmt.Errorf("arity must not be negative, got %d", c.Arity)
	}
	if _, err := c.ThreadCounts(); err != nil {
		return err
	}
	return nil
}

// ThreadCounts parses Threads, a comma-separated list of positive worker counts.
func (c *Config) ThreadCounts() ([]int, error) {
	var counts []int
	for _, field := range strings.Split(c.Threads, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("invalid thread count %q: %w", field, err)
		}
		if n <= 0 {
			return nil, fmt.Errorf("thread count must be positive, got %d", n)
		}
		counts = append(counts, n)
	}
	if len(counts) == 0 {
		return nil, fmt.Errorf("no thread counts in %q", c.Threads)
	}
	return counts, nil
}
