package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mendoza-g/centavo/internal/model"
)

func monthsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "months",
		Short: "Inspect stored months",
	}

	cmd.AddCommand(monthsListCmd())
	cmd.AddCommand(monthsShowCmd())

	return cmd
}

func monthsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored months with scores",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStorage()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			months, err := store.GetMonths(cmd.Context())
			if err != nil {
				return err
			}
			if len(months) == 0 {
				fmt.Println("no months stored")
				return nil
			}

			for _, month := range months {
				fmt.Printf("%s  transactions=%d score=%.1f\n",
					month.MonthID, month.TransactionCount, month.Score)
			}
			return nil
		},
	}
}

func monthsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <YYYY-MM>",
		Short: "Show a month's transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			monthID := args[0]
			if _, _, err := model.ParseMonthID(monthID); err != nil {
				return err
			}

			store, err := openStorage()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			transactions, err := store.GetTransactionsForMonth(cmd.Context(), monthID)
			if err != nil {
				return err
			}
			if len(transactions) == 0 {
				fmt.Printf("no transactions stored for %s\n", monthID)
				return nil
			}

			for _, txn := range transactions {
				flag := ""
				if txn.Confidence < model.LowConfidenceThreshold {
					flag = "  [review]"
				}
				fmt.Printf("%s  %-40s %10s  %s/%s (%.2f)%s\n",
					txn.Date.Format("2006-01-02"),
					txn.Description,
					txn.Amount.StringFixed(2),
					txn.BudgetType,
					txn.BudgetSubcategory,
					txn.Confidence,
					flag)
			}
			return nil
		},
	}
}
