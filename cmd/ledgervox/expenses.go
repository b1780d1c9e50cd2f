package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/ledgervox/internal/cli"
	"github.com/Veraticus/ledgervox/internal/service"
)

func expensesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expenses",
		Short: "Inspect and manage the stored ledger",
	}

	cmd.PersistentFlags().String("user", "local", "user id")
	_ = viper.BindPFlag("expenses.user", cmd.PersistentFlags().Lookup("user"))

	cmd.AddCommand(expensesListCmd())
	cmd.AddCommand(expensesClearCmd())

	return cmd
}

func expensesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored expenses with spending totals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			userID := viper.GetString("expenses.user")

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			expenses, err := store.GetExpenses(ctx, userID)
			if err != nil {
				return fmt.Errorf("failed to load expenses: %w", err)
			}

			if len(expenses) == 0 {
				fmt.Println(cli.FormatHint(fmt.Sprintf("No expenses stored for %s.", userID)))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tAMOUNT\tCATEGORY\tMERCHANT\tDESCRIPTION")
			for _, e := range expenses {
				fmt.Fprintf(w, "%s\t$%.2f\t%s\t%s\t%s\n",
					e.Date, e.Amount, e.Category, e.Merchant, e.Description)
			}
			if err := w.Flush(); err != nil {
				return fmt.Errorf("failed to write table: %w", err)
			}

			summary := service.Summarize(expenses)
			fmt.Println()
			fmt.Println(cli.FormatTitle(fmt.Sprintf("Total: $%.2f across %d expense(s)", summary.Total, summary.Count)))
			for category, amount := range summary.ByCategory {
				fmt.Printf("  %s: $%.2f\n", category, amount)
			}

			return nil
		},
	}
}

func expensesClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all expenses and chat history for a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			userID := viper.GetString("expenses.user")

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.ClearExpenses(ctx, userID); err != nil {
				return fmt.Errorf("failed to clear expenses: %w", err)
			}
			if err := store.ClearChatMessages(ctx, userID); err != nil {
				return fmt.Errorf("failed to clear chat history: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Cleared ledger for %s.", userID)))
			return nil
		},
	}
}
