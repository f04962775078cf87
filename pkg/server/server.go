// Package server provides the HTTP API for uploading catalogs and running
// analyses as background jobs.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/catqa/catqa/internal/model"
	"github.com/catqa/catqa/pkg/analyze"
	"github.com/catqa/catqa/pkg/config"
	qaerrors "github.com/catqa/catqa/pkg/errors"
	"github.com/catqa/catqa/pkg/export"
	"github.com/catqa/catqa/pkg/loader"
)

// Job statuses.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Job tracks one uploaded catalog and its analysis lifecycle.
type Job struct {
	mu sync.Mutex

	ID        string     `json:"id"`
	Status    string     `json:"status"`
	InputName string     `json:"input_name"`
	FilePath  string     `json:"-"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Error     string     `json:"error,omitempty"`
	ErrorCode string     `json:"error_code,omitempty"`

	result *analyze.Result
}

func (j *Job) snapshot() map[string]any {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := map[string]any{
		"id":         j.ID,
		"status":     j.Status,
		"input_name": j.InputName,
		"start_time": j.StartTime,
	}
	if j.EndTime != nil {
		out["end_time"] = *j.EndTime
	}
	if j.Error != "" {
		out["error"] = j.Error
		out["error_code"] = j.ErrorCode
	}
	return out
}

// Server handles HTTP requests.
type Server struct {
	cfg     *config.Config
	jobs    sync.Map // job ID -> *Job
	mux     *http.ServeMux
	tempDir string
}

// NewServer creates a server using the given configuration.
func NewServer(cfg *config.Config) *Server {
	s := &Server{
		cfg:     cfg,
		mux:     http.NewServeMux(),
		tempDir: os.TempDir(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/upload", s.handleUpload)
	s.mux.HandleFunc("/api/analyze", s.handleAnalyze)
	s.mux.HandleFunc("/api/jobs/", s.handleJob)
	s.mux.HandleFunc("/api/reports/", s.handleReport)
	s.mux.HandleFunc("/api/health", s.handleHealth)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	s.mux.ServeHTTP(w, r)
}

// handleUpload receives a multipart catalog upload and registers a job.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(s.cfg.Server.MaxUploadSize); err != nil {
		jsonError(w, "Failed to parse upload", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "No file provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	jobID := uuid.New().String()
	tempPath := filepath.Join(s.tempDir, "catqa-"+jobID+filepath.Ext(header.Filename))

	out, err := os.Create(tempPath)
	if err != nil {
		jsonError(w, "Failed to save file", http.StatusInternalServerError)
		return
	}
	size, err := io.Copy(out, file)
	out.Close()
	if err != nil {
		jsonError(w, "Failed to save file", http.StatusInternalServerError)
		return
	}

	job := &Job{
		ID:        jobID,
		Status:    StatusPending,
		InputName: header.Filename,
		FilePath:  tempPath,
		StartTime: time.Now(),
	}
	s.jobs.Store(jobID, job)

	jsonResponse(w, http.StatusOK, map[string]any{
		"job_id":    jobID,
		"file_name": header.Filename,
		"file_size": size,
	})
}

// analyzeRequest selects a job and optionally overrides column roles.
type analyzeRequest struct {
	JobID       string   `json:"job_id"`
	ProductID   string   `json:"product_id_column,omitempty"`
	Description string   `json:"description_column,omitempty"`
	Codes       []string `json:"code_columns,omitempty"`
}

// handleAnalyze starts a background analysis of an uploaded catalog.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	v, ok := s.jobs.Load(req.JobID)
	if !ok {
		jsonError(w, "Job not found", http.StatusNotFound)
		return
	}
	job := v.(*Job)

	job.mu.Lock()
	if job.Status == StatusRunning {
		job.mu.Unlock()
		jsonError(w, "Job already running", http.StatusConflict)
		return
	}
	job.Status = StatusRunning
	job.Error = ""
	job.ErrorCode = ""
	job.mu.Unlock()

	go s.runAnalysis(job, req)

	jsonResponse(w, http.StatusAccepted, map[string]string{
		"job_id": job.ID,
		"status": "started",
	})
}

func (s *Server) runAnalysis(job *Job, req analyzeRequest) {
	result, err := s.analyzeFile(context.Background(), job.FilePath, req)

	job.mu.Lock()
	defer job.mu.Unlock()

	now := time.Now()
	job.EndTime = &now
	if err != nil {
		job.Status = StatusFailed
		job.Error = err.Error()
		job.ErrorCode = string(qaerrors.GetCode(err))
		return
	}
	job.Status = StatusCompleted
	job.result = result
}

func (s *Server) analyzeFile(ctx context.Context, path string, req analyzeRequest) (*analyze.Result, error) {
	ds, err := loader.Load(ctx, path, loader.Options{})
	if err != nil {
		return nil, err
	}

	explicit := s.cfg.Roles()
	if req.ProductID != "" {
		explicit.ID = req.ProductID
	}
	if req.Description != "" {
		explicit.Description = req.Description
	}
	if len(req.Codes) > 0 {
		explicit.Codes = req.Codes
	}
	roles := model.ResolveRoles(ds.Columns(), explicit, model.InferID, model.InferDescription)

	return analyze.New(s.cfg.Params()).Analyze(ctx, ds, roles)
}

// handleJob returns job status.
func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	if jobID == "" {
		jsonError(w, "Job ID required", http.StatusBadRequest)
		return
	}

	v, ok := s.jobs.Load(jobID)
	if !ok {
		jsonError(w, "Job not found", http.StatusNotFound)
		return
	}
	jsonResponse(w, http.StatusOK, v.(*Job).snapshot())
}

// handleReport serves a completed analysis in the requested format.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	jobID := strings.TrimPrefix(r.URL.Path, "/api/reports/")
	if jobID == "" {
		jsonError(w, "Job ID required", http.StatusBadRequest)
		return
	}

	v, ok := s.jobs.Load(jobID)
	if !ok {
		jsonError(w, "Job not found", http.StatusNotFound)
		return
	}
	job := v.(*Job)

	job.mu.Lock()
	status := job.Status
	result := job.result
	job.mu.Unlock()

	if status != StatusCompleted || result == nil {
		jsonError(w, "Report not ready", http.StatusConflict)
		return
	}

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		jsonError(w, "Unknown format", http.StatusBadRequest)
		return
	}

	switch format {
	case export.FormatJSON:
		w.Header().Set("Content-Type", "application/json")
	case export.FormatCSV:
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="report.csv"`)
	case export.FormatXLSX:
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="report.xlsx"`)
	}

	if err := export.Write(w, result, format); err != nil {
		jsonError(w, "Failed to render report", http.StatusInternalServerError)
	}
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListenAndServe runs the server until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Server.Addr(),
		Handler: s,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, message string, status int) {
	jsonResponse(w, status, map[string]string{"error": message})
}
