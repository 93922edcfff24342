package telemetry

import (
	"time"

	"codeberg.org/mutker/econrcx/internal/errors"
)

const (
	// File system permissions and paths
	defaultDirPerm       = 0o755
	defaultDBPath        = "/var/lib/econrcx/telemetry.db"
	defaultBatchSize     = 20
	defaultFlushInterval = 30 * time.Second

	// Pending snapshots are capped at this many batches, never below minBufferLimit
	bufferBatches  = 10
	minBufferLimit = 100
)

type Config struct {
	Enabled       bool
	DBPath        string
	BatchSize     int
	FlushInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		DBPath:        defaultDBPath,
		BatchSize:     defaultBatchSize,
		FlushInterval: defaultFlushInterval,
		Enabled:       false, // Disabled by default
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	// Only validate DBPath if telemetry is enabled
	if c.Enabled && c.DBPath == "" {
		return errFactory.New(ErrInvalidDBPath)
	}
	if c.BatchSize < 0 || c.FlushInterval < 0 {
		return errFactory.WithData(ErrInvalidConfig, "batch_size and flush_interval must not be negative")
	}

	return nil
}
