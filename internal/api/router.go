package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/wakala/attendance/internal/ingestion"
	"github.com/wakala/attendance/internal/repository"
)

// Deps are the collaborators the handlers need.
type Deps struct {
	WorkerRepo     *repository.WorkerRepo
	AttendanceRepo *repository.AttendanceRepo
	BalanceRepo    *repository.BalanceRepo
	ImportRepo     *repository.ImportRepo
	IngestionSvc   *ingestion.Service
}

// Options configure the HTTP surface.
type Options struct {
	AllowedOrigins []string
	MaxUploadBytes int64
	Location       *time.Location
}

// NewRouter creates the Chi router with all API routes mounted.
func NewRouter(deps Deps, opts Options) http.Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	h := &Handlers{
		workerRepo:     deps.WorkerRepo,
		attendanceRepo: deps.AttendanceRepo,
		balanceRepo:    deps.BalanceRepo,
		importRepo:     deps.ImportRepo,
		ingestionSvc:   deps.IngestionSvc,
		maxUpload:      opts.MaxUploadBytes,
		loc:            opts.Location,
	}

	r := chi.NewRouter()

	// Middleware.
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
	}))
	r.Use(middleware.SetHeader("Content-Type", "application/json"))

	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		// Attendance.
		r.Route("/attendance", func(r chi.Router) {
			r.Get("/", h.ListAttendance)
			r.Post("/import", h.ImportAttendance)
			r.Post("/terminal", h.SyncTerminal)
			r.Get("/template", h.DownloadTemplate)
		})

		// Workers.
		r.Route("/workers", func(r chi.Router) {
			r.Get("/", h.ListWorkers)
			r.Post("/", h.CreateWorker)
			r.Get("/{id}/balance", h.GetBalance)
		})

		// Import audit.
		r.Get("/imports", h.ListImports)
	})

	return r
}
