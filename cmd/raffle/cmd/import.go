package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import registrations from a CSV or XLSX export",
	Long: `Import registrations written by 'raffle export'. Rows with an id replace
the stored registration, rows with an empty id are added under a new id.
Files ending in .xlsx are read as spreadsheets, anything else as CSV.

Example:
  raffle import raffle.csv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", args[0], err)
		}
		defer f.Close()

		importFn := a.records.ImportCSV
		if strings.EqualFold(filepath.Ext(args[0]), ".xlsx") {
			importFn = a.records.ImportXLSX
		}

		n, err := importFn(f)
		if err != nil {
			return fmt.Errorf("import stopped after %d registrations: %w", n, err)
		}
		if err := a.records.Sync(); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Imported %d registrations", n)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
