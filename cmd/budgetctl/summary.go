package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"budgetplanner/internal/budget"
)

var monthNames = [budget.MonthsPerYear]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

func summaryCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary <file>",
		Short: "Summarize the valid rows of a budget CSV file",
		Long: `Aggregate the valid rows of a budget CSV file into monthly income, expense,
net and running balance. Invalid rows are reported and left out.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			starting, err := decimal.NewFromString(v.GetString("starting_balance"))
			if err != nil {
				return fmt.Errorf("invalid starting balance %q", v.GetString("starting_balance"))
			}

			// Category existence does not affect the totals.
			result, err := validateFile(args[0], nil)
			if err != nil {
				return err
			}

			lines := make([]budget.Line, 0, len(result.ValidRows))
			for _, row := range result.ValidRows {
				lines = append(lines, row.Line())
			}
			s := budget.Aggregate(lines, starting)

			out := cmd.OutOrStdout()
			for _, msg := range result.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped: %s\n", msg)
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(tw, "Month\tIncome\tExpense\tNet\tBalance\t")
			for i := range monthNames {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n", monthNames[i],
					s.MonthlyIncome[i].StringFixed(2), s.MonthlyExpense[i].StringFixed(2),
					s.MonthlyNet[i].StringFixed(2), s.RunningBalance[i].StringFixed(2))
			}
			fmt.Fprintf(tw, "Total\t%s\t%s\t%s\t%s\t\n",
				s.TotalIncome.StringFixed(2), s.TotalExpense.StringFixed(2),
				s.GrandTotal.StringFixed(2), s.EndBalance().StringFixed(2))
			return tw.Flush()
		},
	}

	cmd.Flags().String("starting-balance", "0", "balance before January")
	_ = v.BindPFlag("starting_balance", cmd.Flags().Lookup("starting-balance"))
	return cmd
}
