package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wakala/attendance/internal/domain"
	"github.com/wakala/attendance/internal/ingestion"
	"github.com/wakala/attendance/internal/repository"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handlers groups all HTTP handler methods and their dependencies.
type Handlers struct {
	workerRepo     *repository.WorkerRepo
	attendanceRepo *repository.AttendanceRepo
	balanceRepo    *repository.BalanceRepo
	importRepo     *repository.ImportRepo
	ingestionSvc   *ingestion.Service
	maxUpload      int64
	loc            *time.Location
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[api] encode error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (h *Handlers) parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t, err = time.ParseInLocation(domain.DateLayout, s, h.loc)
		if err != nil {
			return nil
		}
	}
	return &t
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return def
	}
	return v
}

// --- ImportAttendance ---

func (h *Handlers) ImportAttendance(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	var date1904 *bool
	if v := r.FormValue("date1904"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date1904 must be a boolean")
			return
		}
		date1904 = &b
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required: "+err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "read file: "+err.Error())
		return
	}

	report, err := h.ingestionSvc.IngestUpload(r.Context(), data, header.Filename, date1904)
	if err != nil {
		if domain.IsBatchError(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// --- SyncTerminal ---

func (h *Handlers) SyncTerminal(w http.ResponseWriter, r *http.Request) {
	var records []ingestion.TerminalRecord
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&records); err != nil {
		writeJSON(w, http.StatusBadRequest, TerminalResponse{Success: false, Error: "invalid JSON body"})
		return
	}

	if _, err := h.ingestionSvc.SyncTerminal(r.Context(), records); err != nil {
		log.Printf("[terminal] sync failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, TerminalResponse{Success: false})
		return
	}

	writeJSON(w, http.StatusOK, TerminalResponse{Success: true})
}

// --- DownloadTemplate ---

func (h *Handlers) DownloadTemplate(w http.ResponseWriter, r *http.Request) {
	day := time.Now().In(h.loc)
	if t := h.parseTime(r.URL.Query().Get("date")); t != nil {
		day = *t
	}

	workers, err := h.workerRepo.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="attendance-`+day.Format(domain.DateLayout)+`.xlsx"`)
	if err := ingestion.WriteTemplate(w, workers, day); err != nil {
		log.Printf("[api] template error: %v", err)
	}
}

// --- ListAttendance ---

func (h *Handlers) ListAttendance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.AttendanceFilter{
		WorkerID: q.Get("worker_id"),
		From:     h.parseTime(q.Get("from")),
		To:       h.parseTime(q.Get("to")),
		Page:     parseIntDefault(q.Get("page"), 1),
		Limit:    parseIntDefault(q.Get("limit"), 50),
	}

	records, total, err := h.attendanceRepo.List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []domain.AttendanceRecord{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"records": records,
		"total":   total,
		"page":    filter.Page,
		"limit":   filter.Limit,
	})
}

// --- Workers ---

func (h *Handlers) ListWorkers(w http.ResponseWriter, r *http.Request) {
	workers, err := h.workerRepo.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if workers == nil {
		workers = []domain.Worker{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"workers": workers})
}

func (h *Handlers) CreateWorker(w http.ResponseWriter, r *http.Request) {
	var req CreateWorkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.ID = strings.TrimSpace(req.ID)
	req.FingerprintID = strings.TrimSpace(req.FingerprintID)

	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.DailyWage.IsNegative() {
		writeError(w, http.StatusBadRequest, "daily_wage must not be negative")
		return
	}

	worker := req.toDomain()
	if err := h.workerRepo.Save(r.Context(), worker); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	saved, err := h.workerRepo.GetByID(r.Context(), worker.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// --- GetBalance ---

func (h *Handlers) GetBalance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	balance, err := h.balanceRepo.Balance(r.Context(), id)
	if errors.Is(err, domain.ErrWorkerNotFound) {
		writeError(w, http.StatusNotFound, "worker not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	entries, err := h.balanceRepo.Entries(r.Context(), id, parseIntDefault(r.URL.Query().Get("limit"), 20))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []domain.BalanceEntry{}
	}

	writeJSON(w, http.StatusOK, BalanceResponse{WorkerID: id, Balance: balance, Entries: entries})
}

// --- ListImports ---

func (h *Handlers) ListImports(w http.ResponseWriter, r *http.Request) {
	batches, err := h.importRepo.List(r.Context(), parseIntDefault(r.URL.Query().Get("limit"), 20))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if batches == nil {
		batches = []domain.ImportBatch{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"imports": batches})
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
