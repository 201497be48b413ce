package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"budgetplanner/internal/budget"
	"budgetplanner/internal/csvfile"
	"budgetplanner/internal/logger"
)

func validateCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a budget CSV file",
		Long: `Validate every row of a budget CSV file the way an import would and report
valid rows, categories that would be created and row errors. Exits non-zero
when any row is invalid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := validateFile(args[0], splitList(v.GetString("existing_categories")))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Valid rows: %d\n", len(result.ValidRows))
			if len(result.MissingCategories) > 0 {
				fmt.Fprintln(out, "Categories to create:")
				for _, name := range result.MissingCategories {
					fmt.Fprintf(out, "  %s\n", name)
				}
			}
			if !result.OK() {
				fmt.Fprintf(out, "Errors (%d):\n", len(result.Errors))
				for _, msg := range result.Errors {
					fmt.Fprintf(out, "  %s\n", msg)
				}
				return errInvalidRows
			}
			return nil
		},
	}

	cmd.Flags().String("existing-categories", "", "comma separated category names that already exist")
	_ = v.BindPFlag("existing_categories", cmd.Flags().Lookup("existing-categories"))
	return cmd
}

func validateFile(path string, existing []string) (budget.ValidationResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return budget.ValidationResult{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := csvfile.Read(f)
	if err != nil {
		return budget.ValidationResult{}, err
	}
	logger.Get().Debugw("read CSV", "file", path, "rows", len(rows))

	return budget.ValidateRows(rows, existing), nil
}
