package api_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakala/attendance/internal/api"
	"github.com/wakala/attendance/internal/domain"
	"github.com/wakala/attendance/internal/ingestion"
	"github.com/wakala/attendance/internal/payroll"
	"github.com/wakala/attendance/internal/repository"
	"github.com/wakala/attendance/internal/temporal"
)

func newTestServer(t *testing.T) http.Handler {
	db, err := repository.InitDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	deps := api.Deps{
		WorkerRepo:     repository.NewWorkerRepo(db),
		AttendanceRepo: repository.NewAttendanceRepo(db, time.UTC),
		BalanceRepo:    repository.NewBalanceRepo(db),
		ImportRepo:     repository.NewImportRepo(db),
	}
	pay := payroll.NewService(deps.BalanceRepo, payroll.AccrualUnconditional, time.UTC)
	deps.IngestionSvc = ingestion.NewService(deps.WorkerRepo, deps.AttendanceRepo, pay, deps.ImportRepo, ingestion.Options{
		Validation: temporal.ValidationLenient,
		Location:   time.UTC,
	})
	return api.NewRouter(deps, api.Options{Location: time.UTC})
}

func do(t *testing.T, h http.Handler, method, path string, body []byte, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func createWorker(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	return do(t, h, http.MethodPost, "/api/v1/workers", []byte(body), "application/json")
}

func upload(t *testing.T, h http.Handler, filename string, content []byte, fields map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return do(t, h, http.MethodPost, "/api/v1/attendance/import", buf.Bytes(), mw.FormDataContentType())
}

func TestHealth(t *testing.T) {
	h := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCreateWorker_Validation(t *testing.T) {
	h := newTestServer(t)

	rec := createWorker(t, h, `{"id":"A1","name":"Ade","daily_wage":"800"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var w domain.Worker
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &w))
	assert.Equal(t, "A1", w.ID)
	assert.Equal(t, "800", w.DailyWage.String())

	assert.Equal(t, http.StatusBadRequest, createWorker(t, h, `{"name":"No Id"}`).Code)
	assert.Equal(t, http.StatusBadRequest, createWorker(t, h, `{"id":"B2","name":"B","daily_wage":-5}`).Code)
	assert.Equal(t, http.StatusBadRequest, createWorker(t, h, `not json`).Code)

	rec = do(t, h, http.MethodGet, "/api/v1/workers", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"A1"`)
}

func TestImportAttendance_ReportAndBalance(t *testing.T) {
	h := newTestServer(t)
	require.Equal(t, http.StatusCreated, createWorker(t, h, `{"id":"A1","name":"Ade","daily_wage":800}`).Code)

	csv := "worker_id,date,check_in,check_out\nA1,2024-03-01,08:00,17:30\nZZ,2024-03-01,08:00,17:30\n"
	rec := upload(t, h, "march.csv", []byte(csv), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"processedCount":1,"failedCount":1,"errors":[{"workerId":"ZZ","error":"worker not found","row":3}]}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/v1/workers/A1/balance", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var bal api.BalanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bal))
	assert.Equal(t, "1025", bal.Balance.String())
	assert.Len(t, bal.Entries, 1)

	rec = do(t, h, http.MethodGet, "/api/v1/attendance?worker_id=A1&from=2024-03-01&to=2024-03-31", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":1`)

	rec = do(t, h, http.MethodGet, "/api/v1/imports", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"file_name":"march.csv"`)
}

func TestImportAttendance_BatchErrors(t *testing.T) {
	h := newTestServer(t)

	rec := upload(t, h, "empty.csv", nil, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = upload(t, h, "cols.csv", []byte("name,date\nx,2024-03-01\n"), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "required column missing")

	rec = upload(t, h, "a.csv", []byte("worker_id,date,check_in\nA1,2024-03-01,08:00\n"), map[string]string{"date1904": "maybe"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/attendance/import", []byte("{}"), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetBalance_UnknownWorker(t *testing.T) {
	h := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/api/v1/workers/ghost/balance", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSyncTerminal(t *testing.T) {
	h := newTestServer(t)
	require.Equal(t, http.StatusCreated, createWorker(t, h, `{"id":"A1","name":"Ade","fingerprint_id":"FP1","daily_wage":800}`).Code)

	body := `[
		{"fingerprint":"FP1","date":"2024-03-01","checkIn":"08:00","checkOut":"17:00"},
		{"fingerprint":"FP404","date":"2024-03-01","checkIn":"08:00"},
		{"fingerprint":"FP1","date":45353,"checkIn":0.375}
	]`
	rec := do(t, h, http.MethodPost, "/api/v1/attendance/terminal", []byte(body), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/v1/attendance?worker_id=A1", nil, "")
	assert.Contains(t, rec.Body.String(), `"total":2`)
	assert.Contains(t, rec.Body.String(), `"source":"terminal"`)

	rec = do(t, h, http.MethodGet, "/api/v1/workers/A1/balance", nil, "")
	assert.Contains(t, rec.Body.String(), `"balance":"0"`)

	rec = do(t, h, http.MethodPost, "/api/v1/attendance/terminal", []byte(`{"not":"an array"}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestDownloadTemplate(t *testing.T) {
	h := newTestServer(t)
	require.Equal(t, http.StatusCreated, createWorker(t, h, `{"id":"A1","name":"Ade","daily_wage":800}`).Code)

	rec := do(t, h, http.MethodGet, "/api/v1/attendance/template?date=2024-03-04", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/vnd.openxmlformats"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attendance-2024-03-04.xlsx")

	up, err := ingestion.ReadUpload(rec.Body.Bytes(), "template.xlsx")
	require.NoError(t, err)
	require.Len(t, up.Rows, 1)
	assert.Equal(t, "A1", up.Rows[0].Identifier)
}
