package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/recycling-locator/internal/output"
	"github.com/jonathan/recycling-locator/internal/schemas"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a result file against the results schema",
	RunE:  runValidate,
}

var validateInputFile string

func init() {
	validateCmd.Flags().StringVarP(&validateInputFile, "in", "i", output.DefaultPath, "Path to the result JSON file")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	if err := schemas.ValidateResultsFile(validateInputFile); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✅ %s matches the %s schema\n", validateInputFile, schemas.ResultsSchemaName)
	return nil
}
