/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported storage engines
const (
	EngineLog    = "log"
	EnginePebble = "pebble"
	EngineRedis  = "redis"
	EngineMemory = "memory"
)

// Supported identifier formats
const (
	IDFormatUUID  = "uuid"
	IDFormatKSUID = "ksuid"
)

// Config represents the raffle configuration
type Config struct {
	DataDir string  `yaml:"data_dir"`
	Port    int     `yaml:"port"`
	Bind    string  `yaml:"bind"`
	Storage Storage `yaml:"storage"`
	IDs     IDs     `yaml:"ids"`
	Logging Logging `yaml:"logging"`
}

// Storage selects and tunes the key-value engine
type Storage struct {
	Engine string `yaml:"engine"`
	// FsyncInterval of zero syncs every write
	FsyncInterval time.Duration `yaml:"fsync_interval"`
	Redis         Redis         `yaml:"redis"`
}

// Redis contains connection settings used by the redis engine
type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
}

// IDs controls how record identifiers are generated
type IDs struct {
	Format string `yaml:"format"`
}

// Logging contains logging configuration
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data",
		Port:    8080,
		Bind:    "127.0.0.1",
		Storage: Storage{
			Engine: EngineLog,
			Redis: Redis{
				Addr: "localhost:6379",
				Key:  "raffle",
			},
		},
		IDs: IDs{
			Format: IDFormatUUID,
		},
		Logging: Logging{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	switch c.Storage.Engine {
	case EngineLog, EnginePebble, EngineMemory:
	case EngineRedis:
		if c.Storage.Redis.Addr == "" {
			return errors.New("storage.redis.addr is required for the redis engine")
		}
	default:
		return fmt.Errorf("unknown storage engine %q", c.Storage.Engine)
	}

	if c.Storage.Engine != EngineMemory && c.Storage.Engine != EngineRedis && c.DataDir == "" {
		return errors.New("data_dir is required")
	}
	if c.Storage.FsyncInterval < 0 {
		return errors.New("storage.fsync_interval must not be negative")
	}

	switch c.IDs.Format {
	case IDFormatUUID, IDFormatKSUID:
	default:
		return fmt.Errorf("unknown id format %q", c.IDs.Format)
	}

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	return nil
}

// LoadConfig loads configuration from the specified path. Settings missing
// from the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// 0600 since the file may hold a redis password
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// BootstrapConfig writes a default configuration, optionally pointing at dataDir
func BootstrapConfig(configPath string, dataDir string) (*Config, error) {
	config := DefaultConfig()
	if dataDir != "" {
		config.DataDir = dataDir
	}

	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./raffle.yaml"
	}

	// ~/.config/raffle/config.yaml
	return filepath.Join(homeDir, ".config", "raffle", "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
