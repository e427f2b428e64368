package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wakala/attendance/internal/domain"
	"github.com/wakala/attendance/internal/ingestion"
)

var templateDate string

var templateCmd = &cobra.Command{
	Use:   "template <out.xlsx>",
	Short: "Write a blank attendance workbook for every worker",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplate,
}

func init() {
	templateCmd.Flags().StringVar(&templateDate, "date", "", "Work date to pre-fill (YYYY-MM-DD, default today)")
}

func runTemplate(cmd *cobra.Command, args []string) error {
	day := time.Now().In(cli.cfg.Location)
	if templateDate != "" {
		t, err := time.ParseInLocation(domain.DateLayout, templateDate, cli.cfg.Location)
		if err != nil {
			return fmt.Errorf("--date: %w", err)
		}
		day = t
	}

	workers, err := cli.workers.List(cmd.Context())
	if err != nil {
		return err
	}

	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	if err := ingestion.WriteTemplate(f, workers, day); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s with %d workers for %s\n", args[0], len(workers), day.Format(domain.DateLayout))
	return nil
}
