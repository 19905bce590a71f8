// Package storage opens the key-value engine selected by configuration.
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ssargent/raffle/pkg/config"
	"github.com/ssargent/raffle/pkg/store"
	"go.uber.org/zap"
)

// PebbleDirName is the directory created inside data_dir by the pebble engine
const PebbleDirName = "raffle.pebble"

// Open builds and opens the engine named by cfg.Storage.Engine
func Open(cfg *config.Config, logger *zap.Logger) (store.Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("engine", cfg.Storage.Engine))

	switch cfg.Storage.Engine {
	case config.EngineLog, "":
		kv, err := store.NewKVStore(store.KVStoreConfig{
			DataDir:       cfg.DataDir,
			FsyncInterval: cfg.Storage.FsyncInterval,
			Logger:        logger,
		})
		if err != nil {
			return nil, err
		}
		if _, err := kv.Open(); err != nil {
			return nil, fmt.Errorf("failed to open log store: %w", err)
		}
		return kv, nil

	case config.EnginePebble:
		if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		path := filepath.Join(cfg.DataDir, PebbleDirName)
		engine, err := NewPebbleEngine(path, cfg.Storage.FsyncInterval == 0, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("pebble store opened", zap.String("path", path))
		return engine, nil

	case config.EngineRedis:
		engine, err := NewRedisEngine(RedisConfig{
			Addr:     cfg.Storage.Redis.Addr,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
			Key:      cfg.Storage.Redis.Key,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("redis store connected", zap.String("addr", cfg.Storage.Redis.Addr))
		return engine, nil

	case config.EngineMemory:
		logger.Warn("memory store selected, records will not survive a restart")
		return NewMemoryEngine(), nil
	}

	return nil, fmt.Errorf("unknown storage engine %q", cfg.Storage.Engine)
}
