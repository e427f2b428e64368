package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var importDate1904 bool

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Ingest an xlsx or csv attendance sheet",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	importCmd.Flags().BoolVar(&importDate1904, "date1904", false, "Decode serial dates with the 1904 epoch (overrides the workbook)")
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	var override *bool
	if cmd.Flags().Changed("date1904") {
		override = &importDate1904
	}

	report, err := cli.ingestion.IngestUpload(cmd.Context(), data, filepath.Base(args[0]), override)
	if err != nil {
		return fmt.Errorf("import %s: %w", args[0], err)
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
