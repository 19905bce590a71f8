/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/ssargent/raffle/pkg/api"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the signup web server",
	Long: `Start the raffle web server: the signup form, the registration pages,
the raffle draw, CSV and Excel exports and Prometheus metrics on /metrics.

The server stops gracefully on SIGINT or SIGTERM and the store is flushed
and closed before the command exits.

Examples:
  raffle serve
  raffle serve --port 9000 --bind 0.0.0.0 --engine pebble`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("port") {
			a.config.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("bind") {
			a.config.Bind, _ = cmd.Flags().GetString("bind")
		}

		if container == nil {
			return errors.New("dependency container not initialized")
		}
		starter := container.GetServerFactory().CreateServerStarter()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cmd.Printf("Starting raffle server on %s:%d\n", a.config.Bind, a.config.Port)
		cmd.Printf("Data directory: %s (%s engine)\n", a.config.DataDir, a.config.Storage.Engine)

		return starter.StartServer(ctx, a.records, api.ServerConfig{
			Bind: a.config.Bind,
			Port: a.config.Port,
		}, a.logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind server to")
}
