// Package server exposes the screening pipeline over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eazyai/screener/internal/export"
	"github.com/eazyai/screener/internal/logger"
	"github.com/eazyai/screener/internal/screener"
	"github.com/eazyai/screener/internal/store"
)

// maxUploadSize bounds one multipart upload request.
const maxUploadSize = 32 << 20

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".txt":  true,
}

// Analyzer runs a screening batch. Satisfied by *screener.Screener.
type Analyzer interface {
	AnalyzeBatch(ctx context.Context, cfg screener.JobConfig, resumes []screener.Resume) (*screener.BatchResult, error)
}

// Server holds uploaded resumes in a staging area until an analyze request
// consumes them.
type Server struct {
	analyzer Analyzer
	runs     store.RunStore
	log      *zap.Logger

	mu      sync.Mutex
	staging map[string][]byte
}

// New creates a Server.
func New(analyzer Analyzer, runs store.RunStore, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		analyzer: analyzer,
		runs:     runs,
		log:      logger.WithComponent(log, "server"),
		staging:  make(map[string][]byte),
	}
}

// Router returns the HTTP handler with all routes registered.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/screener/upload", s.handleUpload)
	mux.HandleFunc("DELETE /api/screener/uploads", s.handleClearUploads)
	mux.HandleFunc("POST /api/screener/analyze", s.handleAnalyze)
	mux.HandleFunc("PATCH /api/screener/candidate", s.handleUpdateCandidate)
	mux.HandleFunc("GET /api/screener/export/csv", s.handleExportCSV)
	mux.HandleFunc("GET /api/screener/export/xlsx", s.handleExportExcel)
	mux.HandleFunc("GET /api/dashboard/stats", s.handleDashboardStats)

	return s.loggingMiddleware(mux)
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"service": "screener",
		"endpoints": map[string]string{
			"POST /api/screener/upload":     "stage resume files",
			"DELETE /api/screener/uploads":  "clear staged files",
			"POST /api/screener/analyze":    "screen staged resumes against a job config",
			"PATCH /api/screener/candidate": "update recruiter notes or verdict",
			"GET /api/screener/export/csv":  "export the latest run as CSV",
			"GET /api/screener/export/xlsx": "export the latest run as XLSX",
			"GET /api/dashboard/stats":      "summary of the latest run",
			"GET /health":                   "health check",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleUpload stages resume files for the next analyze call. Re-uploading
// a filename replaces its content.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("parse multipart form: %v", err))
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		s.respondError(w, http.StatusBadRequest, "no files uploaded")
		return
	}

	var accepted, skipped []string
	for _, header := range files {
		ext := strings.ToLower(filepath.Ext(header.Filename))
		if !allowedExtensions[ext] {
			skipped = append(skipped, header.Filename)
			continue
		}

		file, err := header.Open()
		if err != nil {
			s.respondError(w, http.StatusBadRequest, fmt.Sprintf("open uploaded file %s: %v", header.Filename, err))
			return
		}

		data, err := readAll(file, header.Size)
		file.Close()
		if err != nil {
			s.respondError(w, http.StatusBadRequest, fmt.Sprintf("read uploaded file %s: %v", header.Filename, err))
			return
		}

		s.mu.Lock()
		s.staging[header.Filename] = data
		s.mu.Unlock()
		accepted = append(accepted, header.Filename)
	}

	s.log.Info("resumes staged",
		zap.Int("accepted", len(accepted)),
		zap.Int("skipped", len(skipped)),
	)

	s.respondJSON(w, http.StatusOK, map[string]any{
		"staged":  accepted,
		"skipped": skipped,
		"total":   s.stagedCount(),
	})
}

func (s *Server) handleClearUploads(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	cleared := len(s.staging)
	s.staging = make(map[string][]byte)
	s.mu.Unlock()

	s.respondJSON(w, http.StatusOK, map[string]any{"cleared": cleared})
}

// handleAnalyze screens all staged resumes against the posted job config.
// The staging area is cleared only after a successful run.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	cfg := screener.DefaultJobConfig()
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("decode job config: %v", err))
		return
	}
	if err := cfg.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	resumes := s.stagedResumes()
	if len(resumes) == 0 {
		s.respondError(w, http.StatusBadRequest, "no resumes uploaded")
		return
	}

	result, err := s.analyzer.AnalyzeBatch(r.Context(), cfg, resumes)
	if err != nil {
		if errors.Is(err, screener.ErrNoTasks) || errors.Is(err, screener.ErrAllFailed) {
			s.respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.log.Error("batch analysis failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	run := store.AnalysisRun{
		SessionID:  result.SessionID,
		Candidates: result.Candidates,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.runs.Put(r.Context(), run); err != nil {
		s.log.Error("store run failed", zap.String("session_id", result.SessionID), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to store results")
		return
	}

	s.mu.Lock()
	s.staging = make(map[string][]byte)
	s.mu.Unlock()

	s.respondJSON(w, http.StatusOK, result)
}

type updateCandidateRequest struct {
	CandidateID    string  `json:"candidate_id"`
	RecruiterNotes *string `json:"recruiter_notes"`
	Verdict        *string `json:"verdict"`
}

func (s *Server) handleUpdateCandidate(w http.ResponseWriter, r *http.Request) {
	var req updateCandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("decode request: %v", err))
		return
	}
	if req.CandidateID == "" {
		s.respondError(w, http.StatusBadRequest, "candidate_id is required")
		return
	}
	if req.Verdict != nil {
		switch *req.Verdict {
		case screener.VerdictShortlist, screener.VerdictReview, screener.VerdictReject:
		default:
			s.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid verdict %q", *req.Verdict))
			return
		}
	}

	err := s.runs.UpdateCandidate(r.Context(), req.CandidateID, store.CandidateUpdate{
		RecruiterNotes: req.RecruiterNotes,
		Verdict:        req.Verdict,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "candidate not found")
			return
		}
		s.log.Error("update candidate failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "update failed")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	run, ok := s.latestRun(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", run.SessionID))
	if err := export.WriteCSV(w, run.Candidates, r.URL.Query().Get("verdict")); err != nil {
		s.log.Error("csv export failed", zap.Error(err))
	}
}

func (s *Server) handleExportExcel(w http.ResponseWriter, r *http.Request) {
	run, ok := s.latestRun(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.xlsx", run.SessionID))
	if err := export.WriteExcel(w, run, r.URL.Query().Get("verdict")); err != nil {
		s.log.Error("excel export failed", zap.Error(err))
	}
}

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	run, ok := s.latestRun(w, r)
	if !ok {
		return
	}

	var shortlisted, inReview, rejected, fraud int
	var totalScore float64
	formats := map[string]int{}
	for _, c := range run.Candidates {
		totalScore += c.Score
		if c.FraudDetected {
			fraud++
		}
		if ext := strings.ToLower(filepath.Ext(c.ResumeFile)); ext != "" {
			formats[ext]++
		}
		switch c.Verdict {
		case screener.VerdictShortlist:
			shortlisted++
		case screener.VerdictReject:
			rejected++
		default:
			inReview++
		}
	}

	avg := 0.0
	if len(run.Candidates) > 0 {
		avg = totalScore / float64(len(run.Candidates))
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"session_id":     run.SessionID,
		"created_at":     run.CreatedAt,
		"total_resumes":  len(run.Candidates),
		"shortlisted":    shortlisted,
		"in_review":      inReview,
		"rejected":       rejected,
		"fraud_detected": fraud,
		"average_score":  avg,
		"file_formats":   formats,
		"top_candidates": topCandidates(run.Candidates, 5),
	})
}

type topCandidate struct {
	Name    string  `json:"name"`
	Score   float64 `json:"score"`
	Verdict string  `json:"verdict"`
}

func topCandidates(candidates []screener.CandidateAnalysis, n int) []topCandidate {
	ranked := make([]screener.CandidateAnalysis, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}

	top := make([]topCandidate, 0, len(ranked))
	for _, c := range ranked {
		top = append(top, topCandidate{Name: c.Name, Score: c.Score, Verdict: c.Verdict})
	}
	return top
}

// latestRun fetches the most recent run or writes a 404 and reports false.
func (s *Server) latestRun(w http.ResponseWriter, r *http.Request) (store.AnalysisRun, bool) {
	run, err := s.runs.Latest(r.Context())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "no analysis runs available")
			return store.AnalysisRun{}, false
		}
		s.log.Error("load latest run failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to load results")
		return store.AnalysisRun{}, false
	}
	return run, true
}

// stagedResumes snapshots the staging area in filename order so batches are
// deterministic regardless of upload order.
func (s *Server) stagedResumes() []screener.Resume {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.staging))
	for name := range s.staging {
		names = append(names, name)
	}
	sort.Strings(names)

	resumes := make([]screener.Resume, 0, len(names))
	for _, name := range names {
		resumes = append(resumes, screener.Resume{Filename: name, Data: s.staging[name]})
	}
	return resumes
}

func (s *Server) stagedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.staging)
}

func readAll(r io.Reader, sizeHint int64) ([]byte, error) {
	if sizeHint < 0 {
		sizeHint = 0
	}
	buf := bytes.NewBuffer(make([]byte, 0, sizeHint))
	if _, err := io.Copy(buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Warn("encode response failed", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("request handled",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}
