package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/wakala/attendance/internal/domain"
)

var (
	workerName        string
	workerFingerprint string
	workerWage        string
)

var workersCmd = &cobra.Command{
	Use:   "workers",
	Short: "Maintain the worker directory",
}

var workersAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Add or update a worker",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkersAdd,
}

var workersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all workers",
	Args:  cobra.NoArgs,
	RunE:  runWorkersList,
}

func init() {
	workersAddCmd.Flags().StringVar(&workerName, "name", "", "Display name (required)")
	workersAddCmd.Flags().StringVar(&workerFingerprint, "fingerprint", "", "Biometric terminal id")
	workersAddCmd.Flags().StringVar(&workerWage, "wage", "0", "Daily wage")
	_ = workersAddCmd.MarkFlagRequired("name")

	workersCmd.AddCommand(workersAddCmd)
	workersCmd.AddCommand(workersListCmd)
}

func runWorkersAdd(cmd *cobra.Command, args []string) error {
	wage, err := decimal.NewFromString(workerWage)
	if err != nil || wage.IsNegative() {
		return fmt.Errorf("--wage must be a non-negative number, got %q", workerWage)
	}

	w := &domain.Worker{
		ID:            args[0],
		Name:          workerName,
		FingerprintID: workerFingerprint,
		DailyWage:     wage,
	}
	if err := cli.workers.Save(cmd.Context(), w); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved worker %s (%s), daily wage %s\n", w.ID, w.Name, w.DailyWage)
	return nil
}

func runWorkersList(cmd *cobra.Command, args []string) error {
	workers, err := cli.workers.List(cmd.Context())
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tFINGERPRINT\tDAILY WAGE\tBALANCE")
	for _, w := range workers {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", w.ID, w.Name, w.FingerprintID, w.DailyWage, w.Balance)
	}
	return tw.Flush()
}
