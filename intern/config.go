package intern

import (
	"math/bits"

	"github.com/on-the-ground/ramtab/ram"
	"go.uber.org/zap"
)

// DefaultNumShards is the shard count used when none is configured.
const DefaultNumShards = 64

type Config struct {
	NumShards int         // default: DefaultNumShards; 1 selects a single table-wide lock
	MaxID     ram.Domain  // default: ram.MaxDomain
	Logger    *zap.Logger // default: no-op
}

func NewConfig(numShards int, maxID ram.Domain, logger *zap.Logger) Config {
	return Config{
		NumShards: numShards,
		MaxID:     maxID,
		Logger:    logger,
	}.normalize()
}

func DefaultConfig() Config {
	return NewConfig(DefaultNumShards, ram.MaxDomain, nil)
}

func (c Config) normalize() Config {
	if c.NumShards <= 0 {
		c.NumShards = DefaultNumShards
	}
	c.NumShards = 1 << bits.Len(uint(c.NumShards-1))
	if c.MaxID <= 0 {
		c.MaxID = ram.MaxDomain
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}
