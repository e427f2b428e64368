package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wakala/attendance/internal/config"
	"github.com/wakala/attendance/internal/ingestion"
	"github.com/wakala/attendance/internal/payroll"
	"github.com/wakala/attendance/internal/repository"
)

// app holds the wired stores and services for one command run.
type app struct {
	cfg        *config.Config
	db         *sql.DB
	workers    *repository.WorkerRepo
	attendance *repository.AttendanceRepo
	balances   *repository.BalanceRepo
	imports    *repository.ImportRepo
	ingestion  *ingestion.Service
}

var (
	dbPathFlag string
	cli        *app
)

var rootCmd = &cobra.Command{
	Use:   "attendctl",
	Short: "attendctl: attendance imports and balances from the command line",
	Long: `attendctl works directly on the attendance database used by the server.
Configuration is read from .env and the environment (DB_PATH, TIMEZONE,
TIME_VALIDATION, ACCRUAL_MODE); --db overrides DB_PATH.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(dbPathFlag)
		if err != nil {
			return err
		}
		cli = a
		return nil
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// execute runs the command tree and closes the database whether or not the
// command failed.
func execute() error {
	err := rootCmd.Execute()
	if cli != nil {
		cli.db.Close()
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPathFlag, "db", "", "SQLite database path (default $DB_PATH or attendance.db)")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(workersCmd)
}

func newApp(dbPath string) (*app, error) {
	cfg, err := config.LoadEnv()
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}

	db, err := repository.InitDB(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:        cfg,
		db:         db,
		workers:    repository.NewWorkerRepo(db),
		attendance: repository.NewAttendanceRepo(db, cfg.Location),
		balances:   repository.NewBalanceRepo(db),
		imports:    repository.NewImportRepo(db),
	}
	pay := payroll.NewService(a.balances, cfg.AccrualMode, cfg.Location)
	a.ingestion = ingestion.NewService(a.workers, a.attendance, pay, a.imports, ingestion.Options{
		Validation: cfg.TimeValidation,
		Location:   cfg.Location,
	})
	return a, nil
}
