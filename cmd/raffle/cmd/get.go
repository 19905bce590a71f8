package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ssargent/raffle/pkg/codec"
)

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one registration",
	Long: `Show every field of one registration.

Example:
  raffle get 0b7c1e9a-54c4-4c53-9d9e-5f4a1c1f2f0e`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}

		record, err := a.records.Get(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(record)
		}

		fmt.Fprintf(out, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-12s", "id")), args[0])
		values := record.Fields()
		for i, name := range codec.FieldNames() {
			fmt.Fprintf(out, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-12s", name)), values[i])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().Bool("json", false, "Print the registration as JSON")
}
