/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export registrations as CSV or XLSX",
	Long: `Export every registration. CSV rows are ';' separated with every field
quoted and the phone number written as a text formula. XLSX writes one sheet
with a header row.

Examples:
  raffle export > raffle.csv
  raffle export --format xlsx -o raffle.xlsx`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		write, err := exportWriter(format, a)
		if err != nil {
			return err
		}

		if output == "" {
			if format == "xlsx" {
				return fmt.Errorf("xlsx export needs --output")
			}
			return write(cmd.OutOrStdout())
		}

		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", output, err)
		}
		if err := write(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}

		fmt.Fprintln(cmd.ErrOrStderr(), successStyle.Render("Exported registrations to "+output))
		return nil
	},
}

func exportWriter(format string, a *app) (func(io.Writer) error, error) {
	switch format {
	case "csv":
		return a.records.WriteCSV, nil
	case "xlsx":
		return a.records.WriteXLSX, nil
	}
	return nil, fmt.Errorf("unknown export format %q (want csv or xlsx)", format)
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().String("format", "csv", "Export format: csv or xlsx")
	exportCmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
}
