/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/ssargent/raffle/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write a default raffle configuration file.

The file holds the data directory, listen address, storage engine and
logging settings. Flags given to other commands override it.

Examples:
  raffle init
  raffle init --config ./raffle.yaml --data-dir /var/lib/raffle`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// init writes the config the store would be opened with
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		dataDir, _ := cmd.Flags().GetString("data-dir")
		force, _ := cmd.Flags().GetBool("force")

		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}

		if config.ConfigExists(configPath) && !force {
			cmd.Printf("Configuration already exists at %s. Use --force to overwrite.\n", configPath)
			return nil
		}

		cfg, err := config.BootstrapConfig(configPath, dataDir)
		if err != nil {
			return err
		}

		cmd.Println(successStyle.Render("Configuration written to " + configPath))
		cmd.Printf("Data directory: %s\n", cfg.DataDir)
		cmd.Printf("Storage engine: %s\n", cfg.Storage.Engine)
		cmd.Printf("\nStart the server with:\n  raffle serve --config %s\n", configPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().Bool("force", false, "Overwrite an existing configuration file")
}
