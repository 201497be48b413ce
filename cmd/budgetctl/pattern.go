package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"budgetplanner/internal/budget"
)

func patternCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pattern",
		Short: "Expand or detect amount patterns",
	}
	cmd.AddCommand(expandCmd())
	cmd.AddCommand(detectCmd())
	return cmd
}

func expandCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expand <pattern> <amount>",
		Short: "Print the twelve monthly amounts of a pattern",
		Long:  `Expand monthly, quarterly, half-yearly or yearly with a repeating amount into twelve months.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := budget.ParsePattern(args[0])
			if err != nil {
				return err
			}
			amount, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("invalid amount %q", args[1])
			}
			months, err := budget.Expand(p, amount)
			if err != nil {
				return err
			}
			printMonths(cmd.OutOrStdout(), months)
			return nil
		},
	}
}

func detectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect <a1> ... <a12>",
		Short: "Detect the pattern of twelve monthly amounts",
		Args:  cobra.ExactArgs(budget.MonthsPerYear),
		RunE: func(cmd *cobra.Command, args []string) error {
			months, err := budget.ParseMonths(args)
			if err != nil {
				return err
			}
			p, amount := budget.RepeatingAmount(months)
			if p == budget.PatternCustom {
				fmt.Fprintln(cmd.OutOrStdout(), p)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", p, amount)
			return nil
		},
	}
}

func printMonths(w io.Writer, m budget.Months) {
	values := make([]string, len(m))
	for i, v := range m {
		values[i] = v.String()
	}
	fmt.Fprintln(w, strings.Join(values, " "))
}
