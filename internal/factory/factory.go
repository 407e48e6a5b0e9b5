// Package factory wires the application's components together.
package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/mcoot/bluetrace-go/internal/dependencies/clock"
	"github.com/mcoot/bluetrace-go/internal/dependencies/random"
	"github.com/mcoot/bluetrace-go/internal/services/block"
	"github.com/mcoot/bluetrace-go/internal/services/reconcile"
	"github.com/mcoot/bluetrace-go/internal/services/tempid"
	"github.com/mcoot/bluetrace-go/internal/storage"
	filestorage "github.com/mcoot/bluetrace-go/internal/storage/file"
	"github.com/mcoot/bluetrace-go/internal/storage/memory"
	redisstorage "github.com/mcoot/bluetrace-go/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeFile   = "file"
	StorageTypeRedis  = "redis"
)

// App contains all wired server-side components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Blocks     *block.Registry
	TempIDs    *tempid.Registry
	Reconciler *reconcile.Service
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "file" or "redis")
	// If empty, defaults to "file"
	StorageType string
	// FileConfig holds file storage settings (optional; defaults apply)
	FileConfig *filestorage.Config
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeFile
	}

	var store storage.Storage
	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeFile:
		fileCfg := filestorage.DefaultConfig()
		if cfg.FileConfig != nil {
			fileCfg = *cfg.FileConfig
		}
		store = filestorage.New(fileCfg)
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'file' or 'redis'")
	}

	return newWithDependencies(store, clock.New(), random.New(), logger), nil
}

// newWithDependencies wires the services with explicit dependencies
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	logger *slog.Logger,
) *App {
	blocks := block.NewRegistry(clk)
	tempIDs := tempid.NewRegistry(store, clk, rnd)
	reconciler := reconcile.New(tempIDs, logger)

	return &App{
		Storage:    store,
		Clock:      clk,
		Random:     rnd,
		Blocks:     blocks,
		TempIDs:    tempIDs,
		Reconciler: reconciler,
	}
}
