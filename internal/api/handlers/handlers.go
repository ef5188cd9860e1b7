package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/statement-editor/internal/api/middleware"
	"github.com/dvloznov/statement-editor/internal/domain"
	"github.com/dvloznov/statement-editor/internal/export"
	"github.com/dvloznov/statement-editor/internal/extract"
	"github.com/dvloznov/statement-editor/internal/gcs"
	"github.com/dvloznov/statement-editor/internal/jobs"
	"github.com/dvloznov/statement-editor/internal/process"
	"github.com/dvloznov/statement-editor/internal/store"
)

// StatementsHandler handles statement-related endpoints.
type StatementsHandler struct {
	store     store.StatementStore
	extractor *extract.Service
	publisher jobs.Publisher
	archiver  gcs.Archiver
	auditDir  string
	log       zerolog.Logger
}

// NewStatementsHandler creates a new statements handler. archiver may be nil
// when no bucket is configured; GCS-backed features then return errors.
// auditDir is where per-statement audit logs are written as JSONL.
func NewStatementsHandler(st store.StatementStore, extractor *extract.Service, publisher jobs.Publisher, archiver gcs.Archiver, auditDir string, log zerolog.Logger) *StatementsHandler {
	return &StatementsHandler{
		store:     st,
		extractor: extractor,
		publisher: publisher,
		archiver:  archiver,
		auditDir:  auditDir,
		log:       log,
	}
}

type statementResponse struct {
	ID        string            `json:"id"`
	Source    string            `json:"source"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	Statement *domain.Statement `json:"statement"`
}

func toResponse(rec *store.Record) statementResponse {
	return statementResponse{
		ID:        rec.ID,
		Source:    rec.Source,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
		Statement: rec.Statement,
	}
}

// CreateStatement handles POST /api/statements
func (h *StatementsHandler) CreateStatement(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RawText string `json:"raw_text"`
		GCSURI  string `json:"gcs_uri"`
		Async   bool   `json:"async"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.RawText == "" && req.GCSURI == "" {
		middleware.WriteError(w, http.StatusBadRequest, "raw_text or gcs_uri is required")
		return
	}

	ctx := r.Context()

	rawText := req.RawText
	if req.GCSURI != "" {
		if h.archiver == nil {
			middleware.WriteError(w, http.StatusBadRequest, "GCS is not configured")
			return
		}
		data, err := h.archiver.Fetch(ctx, req.GCSURI)
		if err != nil {
			h.log.Error().Err(err).Str("gcs_uri", req.GCSURI).Msg("Failed to fetch statement text")
			middleware.WriteError(w, http.StatusBadGateway, "Failed to fetch statement text")
			return
		}
		rawText = string(data)
	}

	if req.Async {
		job := &jobs.ExtractStatementJob{RawText: rawText}
		if err := h.publisher.PublishExtractStatement(ctx, job); err != nil {
			h.log.Error().Err(err).Msg("Failed to enqueue extraction job")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue extraction job")
			return
		}

		h.log.Info().Str("job_id", job.JobID).Msg("Extraction job enqueued")
		middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
			"job_id": job.JobID,
			"status": string(job.Status),
		})
		return
	}

	st, source := h.extractor.ExtractStatement(ctx, rawText)
	process.Recalculate(st)

	rec, err := h.store.Create(ctx, st, source)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to register statement")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to register statement")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, toResponse(rec))
}

// ListStatements handles GET /api/statements
func (h *StatementsHandler) ListStatements(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.List(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list statements")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list statements")
		return
	}

	type summary struct {
		ID            string    `json:"id"`
		Source        string    `json:"source"`
		AccountHolder string    `json:"account_holder"`
		Transactions  int       `json:"transactions"`
		CreatedAt     time.Time `json:"created_at"`
	}

	summaries := make([]summary, 0, len(records))
	for _, rec := range records {
		summaries = append(summaries, summary{
			ID:            rec.ID,
			Source:        rec.Source,
			AccountHolder: rec.Statement.Header.AccountHolder,
			Transactions:  len(rec.Statement.Transactions),
			CreatedAt:     rec.CreatedAt,
		})
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"statements": summaries,
		"count":      len(summaries),
	})
}

// GetStatement handles GET /api/statements/{id}
func (h *StatementsHandler) GetStatement(w http.ResponseWriter, r *http.Request, id string) {
	rec, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, err, id)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, toResponse(rec))
}

// EditStatement handles POST /api/statements/{id}/edit
func (h *StatementsHandler) EditStatement(w http.ResponseWriter, r *http.Request, id string) {
	var req domain.EditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := domain.ValidateEditRequest(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()

	rec, err := h.store.Get(ctx, id)
	if err != nil {
		h.writeStoreError(w, err, id)
		return
	}

	userID := r.Header.Get("X-User-ID")
	process.ApplyEdits(rec.Statement, &req, rec.Trail, userID)

	if err := h.store.Update(ctx, id, rec.Statement); err != nil {
		h.log.Error().Err(err).Str("statement_id", id).Msg("Failed to save edited statement")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to save edited statement")
		return
	}

	h.persistTrail(r, rec)

	h.log.Info().
		Str("statement_id", id).
		Int("audit_entries", rec.Trail.Len()).
		Msg("Statement edited")

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"id":        id,
		"statement": rec.Statement,
		"audit":     rec.Trail.Summarize(),
	})
}

// persistTrail writes the statement's audit trail as JSONL to the local
// audit directory and, when configured, to GCS. Failures are logged, not
// surfaced: the edit itself already succeeded.
func (h *StatementsHandler) persistTrail(r *http.Request, rec *store.Record) {
	if rec.Trail.Len() == 0 {
		return
	}

	var buf bytes.Buffer
	if _, err := rec.Trail.WriteTo(&buf); err != nil {
		h.log.Error().Err(err).Str("statement_id", rec.ID).Msg("Failed to serialize audit trail")
		return
	}

	if h.auditDir != "" {
		path := filepath.Join(h.auditDir, rec.ID+".jsonl")
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			h.log.Error().Err(err).Str("statement_id", rec.ID).Str("path", path).Msg("Failed to write audit log")
		}
	}

	if h.archiver == nil {
		return
	}

	objectName := gcs.AuditObjectName(rec.ID, time.Now())
	uri, err := h.archiver.UploadObject(r.Context(), objectName, "application/x-ndjson", buf.Bytes())
	if err != nil {
		h.log.Error().Err(err).Str("statement_id", rec.ID).Msg("Failed to archive audit trail")
		return
	}

	h.log.Info().Str("statement_id", rec.ID).Str("gcs_uri", uri).Msg("Audit trail archived")
}

// GetAudit handles GET /api/statements/{id}/audit
func (h *StatementsHandler) GetAudit(w http.ResponseWriter, r *http.Request, id string) {
	rec, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, err, id)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, rec.Trail.Summarize())
}

// ExportStatement handles GET /api/statements/{id}/export?format=csv
func (h *StatementsHandler) ExportStatement(w http.ResponseWriter, r *http.Request, id string) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" {
		middleware.WriteError(w, http.StatusBadRequest, fmt.Sprintf("Unsupported export format %q", format))
		return
	}

	ctx := r.Context()

	rec, err := h.store.Get(ctx, id)
	if err != nil {
		h.writeStoreError(w, err, id)
		return
	}

	writer := &export.CSVWriter{IncludeHeader: true}

	if r.URL.Query().Get("archive") == "true" {
		if h.archiver == nil {
			middleware.WriteError(w, http.StatusBadRequest, "GCS is not configured")
			return
		}

		var buf bytes.Buffer
		if err := writer.Write(&buf, rec.Statement); err != nil {
			h.log.Error().Err(err).Str("statement_id", id).Msg("Failed to render export")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to render export")
			return
		}

		objectName := gcs.ExportObjectName(id, format, time.Now())
		uri, err := h.archiver.UploadObject(ctx, objectName, "text/csv", buf.Bytes())
		if err != nil {
			h.log.Error().Err(err).Str("statement_id", id).Msg("Failed to archive export")
			middleware.WriteError(w, http.StatusBadGateway, "Failed to archive export")
			return
		}

		middleware.WriteJSON(w, http.StatusOK, map[string]string{"gcs_uri": uri})
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+".csv"))
	if err := writer.Write(w, rec.Statement); err != nil {
		h.log.Error().Err(err).Str("statement_id", id).Msg("Failed to write export")
	}
}

func (h *StatementsHandler) writeStoreError(w http.ResponseWriter, err error, id string) {
	if errors.Is(err, store.ErrNotFound) {
		middleware.WriteError(w, http.StatusNotFound, "Statement not found")
		return
	}
	h.log.Error().Err(err).Str("statement_id", id).Msg("Statement lookup failed")
	middleware.WriteError(w, http.StatusInternalServerError, "Statement lookup failed")
}

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		store: store,
		log:   log,
	}
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	ctx := r.Context()

	job, err := h.store.GetJob(ctx, jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Parse query parameters
	query := r.URL.Query()
	filter := jobs.JobFilter{
		StatementID: query.Get("statement_id"),
		Status:      jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}

// NewMux assembles the route table for the API server.
func NewMux(statements *StatementsHandler, jobsHandler *JobsHandler) *http.ServeMux {
	mux := http.NewServeMux()

	// Statements endpoints
	mux.HandleFunc("/api/statements", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			statements.ListStatements(w, r)
		case http.MethodPost:
			statements.CreateStatement(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/statements/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/statements/")
		parts := strings.SplitN(rest, "/", 2)
		id := parts[0]
		if id == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Statement ID is required")
			return
		}

		action := ""
		if len(parts) == 2 {
			action = parts[1]
		}

		switch {
		case action == "" && r.Method == http.MethodGet:
			statements.GetStatement(w, r, id)
		case action == "edit" && r.Method == http.MethodPost:
			statements.EditStatement(w, r, id)
		case action == "audit" && r.Method == http.MethodGet:
			statements.GetAudit(w, r, id)
		case action == "export" && r.Method == http.MethodGet:
			statements.ExportStatement(w, r, id)
		case action != "" && action != "edit" && action != "audit" && action != "export":
			middleware.WriteError(w, http.StatusNotFound, "Not found")
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Jobs endpoints
	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			jobsHandler.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return mux
}
