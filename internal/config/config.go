package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"github.com/wakala/attendance/internal/payroll"
	"github.com/wakala/attendance/internal/temporal"
)

// Config is the runtime configuration of the server and the CLI.
type Config struct {
	Port           string
	DBPath         string
	Location       *time.Location
	TimeValidation temporal.ValidationMode
	AccrualMode    payroll.AccrualMode
	CORSOrigins    []string
	MaxUploadBytes int64
	SeedWorkers    string
}

// =======================
// ENV LOADER
// =======================

// LoadEnv reads .env files when present and then builds the Config from the
// process environment.
func LoadEnv(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil {
		log.Println("[config] no .env file found, using system environment")
	} else {
		log.Println("[config] .env file loaded")
	}
	return FromEnv()
}

// FromEnv builds the Config from environment variables only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:        GetEnv("PORT", "8080"),
		DBPath:      GetEnv("DB_PATH", "attendance.db"),
		SeedWorkers: GetEnv("SEED_WORKERS"),
	}

	loc, err := time.LoadLocation(GetEnv("TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}
	cfg.Location = loc

	if cfg.TimeValidation, err = temporal.ParseValidationMode(GetEnv("TIME_VALIDATION")); err != nil {
		return nil, fmt.Errorf("TIME_VALIDATION: %w", err)
	}
	if cfg.AccrualMode, err = payroll.ParseAccrualMode(GetEnv("ACCRUAL_MODE")); err != nil {
		return nil, fmt.Errorf("ACCRUAL_MODE: %w", err)
	}

	for _, o := range strings.Split(GetEnv("CORS_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	mb, err := strconv.Atoi(GetEnv("MAX_UPLOAD_MB", "32"))
	if err != nil || mb < 1 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB: must be a positive integer, got %q", GetEnv("MAX_UPLOAD_MB"))
	}
	cfg.MaxUploadBytes = int64(mb) << 20

	return cfg, nil
}

// GetEnv returns the variable, or the default when it is unset.
func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}
