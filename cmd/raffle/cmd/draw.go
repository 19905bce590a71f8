/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/ssargent/raffle/pkg/records"
)

// drawCmd represents the draw command
var drawCmd = &cobra.Command{
	Use:   "draw",
	Short: "Draw a random winner",
	Long: `Draw one registration uniformly at random and announce the winner.

Example:
  raffle draw`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}

		winner, err := a.records.PickRandom()
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), renderWinner(winner))
		return nil
	},
}

func renderWinner(winner records.Entry) string {
	card := lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render("And the winner is"),
		"",
		nameStyle.Render(winner.Record.FullName()),
		winner.Record.Email,
		"",
		helpStyle.Render(winner.ID),
	)
	return winnerStyle.Render(card)
}

func init() {
	rootCmd.AddCommand(drawCmd)
}
