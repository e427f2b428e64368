package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var balanceLimit int

var balanceCmd = &cobra.Command{
	Use:   "balance <worker-id>",
	Short: "Show a worker's running balance and recent credits",
	Args:  cobra.ExactArgs(1),
	RunE:  runBalance,
}

func init() {
	balanceCmd.Flags().IntVar(&balanceLimit, "limit", 10, "Number of journal lines to show")
}

func runBalance(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id := args[0]

	balance, err := cli.balances.Balance(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", id, err)
	}
	entries, err := cli.balances.Entries(ctx, id, balanceLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Balance for %s: %s\n", id, balance)
	if len(entries) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WORK DATE\tAMOUNT\tBALANCE\tCREDITED AT")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.WorkDate, e.Amount, e.BalanceAfter, e.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}
