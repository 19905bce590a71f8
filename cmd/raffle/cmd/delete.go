package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a registration",
	Long: `Delete a registration. Deleting an id that does not exist is not an error.

Example:
  raffle delete 0b7c1e9a-54c4-4c53-9d9e-5f4a1c1f2f0e`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}

		if err := a.records.Delete(args[0]); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Deleted registration "+args[0]))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
