/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ssargent/raffle/pkg/config"
	"github.com/ssargent/raffle/pkg/di"
	"github.com/ssargent/raffle/pkg/logging"
	"github.com/ssargent/raffle/pkg/records"
	"go.uber.org/zap"
)

var container *di.Container

// SetContainer injects the dependency container used by every command
func SetContainer(c *di.Container) {
	container = c
}

type appKey struct{}

// app is what PersistentPreRunE opens for a command and PersistentPostRunE closes
type app struct {
	config  *config.Config
	logger  *zap.Logger
	records *records.Store
}

func (a *app) close() error {
	err := a.records.Close()
	_ = a.logger.Sync()
	return err
}

// opened is the app of the running command. It is closed by closeApp even
// when the command fails, since cobra skips post-run hooks after an error.
var opened *app

func closeApp() error {
	if opened == nil {
		return nil
	}
	err := opened.close()
	opened = nil
	return err
}

// appFrom returns the app opened for cmd
func appFrom(cmd *cobra.Command) (*app, error) {
	a, ok := cmd.Context().Value(appKey{}).(*app)
	if !ok || a == nil {
		return nil, errors.New("store not found in context")
	}
	return a, nil
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "raffle",
	Short: "Raffle - signup registry and prize draw",
	Long: `Raffle collects signups through a small web form, keeps them in an
embedded key-value store and draws a uniformly random winner.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		a, err := openApp(cfg)
		if err != nil {
			return err
		}

		opened = a
		cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, a))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeApp()
	},
}

// loadConfig reads the config file when it exists and applies flag overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	cfg := config.DefaultConfig()
	if config.ConfigExists(configPath) {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.DataDir, _ = flags.GetString("data-dir")
	}
	if flags.Changed("engine") {
		cfg.Storage.Engine, _ = flags.GetString("engine")
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openApp builds the logger, opens the engine and wraps it in a record store
func openApp(cfg *config.Config) (*app, error) {
	if container == nil {
		return nil, errors.New("dependency container not initialized")
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}

	newID, err := records.GeneratorFor(cfg.IDs.Format)
	if err != nil {
		return nil, err
	}

	engine, err := container.GetEngineFactory()(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	return &app{
		config: cfg,
		logger: logger,
		records: records.New(engine,
			records.WithIDGenerator(newID),
			records.WithLogger(logger),
		),
	}, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if cerr := closeApp(); cerr != nil {
		rootCmd.PrintErrln("Error closing store:", cerr)
		err = cerr
	}
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: OS-specific location)")
	rootCmd.PersistentFlags().StringP("data-dir", "d", "./data", "Data directory for the store")
	rootCmd.PersistentFlags().String("engine", config.EngineLog, "Storage engine: log, pebble, redis or memory")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
}
