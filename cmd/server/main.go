package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/wakala/attendance/internal/api"
	"github.com/wakala/attendance/internal/config"
	"github.com/wakala/attendance/internal/domain"
	"github.com/wakala/attendance/internal/ingestion"
	"github.com/wakala/attendance/internal/payroll"
	"github.com/wakala/attendance/internal/repository"
)

func main() {
	cfg, err := config.LoadEnv()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Printf("Initializing database at %s", cfg.DBPath)
	db, err := repository.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to init DB: %v", err)
	}
	defer db.Close()

	// Create repositories.
	workerRepo := repository.NewWorkerRepo(db)
	attendanceRepo := repository.NewAttendanceRepo(db, cfg.Location)
	balanceRepo := repository.NewBalanceRepo(db)
	importRepo := repository.NewImportRepo(db)

	// Create services.
	payrollSvc := payroll.NewService(balanceRepo, cfg.AccrualMode, cfg.Location)
	ingestionSvc := ingestion.NewService(workerRepo, attendanceRepo, payrollSvc, importRepo, ingestion.Options{
		Validation: cfg.TimeValidation,
		Location:   cfg.Location,
	})

	// Seed workers if the directory is empty.
	count, err := workerRepo.Count(context.Background())
	if err != nil {
		log.Fatalf("Failed to count workers: %v", err)
	}
	if count == 0 {
		log.Println("Directory is empty, seeding workers...")
		if err := seedWorkers(workerRepo, cfg.SeedWorkers); err != nil {
			log.Printf("WARNING: Failed to seed workers: %v", err)
		}
	} else {
		log.Printf("Directory already has %d workers, skipping seed", count)
	}

	router := api.NewRouter(api.Deps{
		WorkerRepo:     workerRepo,
		AttendanceRepo: attendanceRepo,
		BalanceRepo:    balanceRepo,
		ImportRepo:     importRepo,
		IngestionSvc:   ingestionSvc,
	}, api.Options{
		AllowedOrigins: cfg.CORSOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Location:       cfg.Location,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Attendance ingestion service (timezone %s, accrual %s, validation %s)",
			cfg.Location, cfg.AccrualMode, cfg.TimeValidation)
		log.Printf("Listening on http://localhost:%s", cfg.Port)
		log.Printf("API base: http://localhost:%s/api/v1", cfg.Port)
		log.Printf("")
		log.Printf("Endpoints:")
		log.Printf("  POST   /api/v1/attendance/import")
		log.Printf("  POST   /api/v1/attendance/terminal")
		log.Printf("  GET    /api/v1/attendance/template")
		log.Printf("  GET    /api/v1/attendance")
		log.Printf("  GET    /api/v1/workers")
		log.Printf("  POST   /api/v1/workers")
		log.Printf("  GET    /api/v1/workers/{id}/balance")
		log.Printf("  GET    /api/v1/imports")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func seedWorkers(repo *repository.WorkerRepo, path string) error {
	candidates := []string{path}
	if path == "" {
		candidates = []string{
			"testdata/workers.json",
			filepath.Join(".", "testdata", "workers.json"),
		}
		if exe, err := os.Executable(); err == nil {
			dir := filepath.Dir(exe)
			candidates = append(candidates,
				filepath.Join(dir, "testdata", "workers.json"),
				filepath.Join(dir, "..", "..", "testdata", "workers.json"),
			)
		}
	}

	var data []byte
	var loadErr error
	for _, p := range candidates {
		data, loadErr = os.ReadFile(p)
		if loadErr == nil {
			log.Printf("Loaded workers from %s", p)
			break
		}
	}
	if loadErr != nil {
		return fmt.Errorf("could not find workers.json in any candidate path: %w", loadErr)
	}

	var workers []domain.Worker
	if err := json.Unmarshal(data, &workers); err != nil {
		return fmt.Errorf("unmarshal workers: %w", err)
	}

	inserted, err := repo.BulkInsert(context.Background(), workers)
	if err != nil {
		return fmt.Errorf("bulk insert: %w", err)
	}

	log.Printf("Seeded %d workers (out of %d in file)", inserted, len(workers))
	return nil
}
