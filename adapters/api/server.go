// Package api exposes the analysis engine over HTTP. Responses are JSON by
// default; passing ?format=html renders the narrative sections as HTML.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"tablens/adapters/ingest"
	"tablens/domain/core"
	"tablens/domain/table"
	"tablens/internal/config"
	"tablens/internal/logging"
	"tablens/internal/query"
)

// Server is the HTTP application.
type Server struct {
	router *chi.Mux
	reader *ingest.Reader
	cfg    config.Config
	log    *logging.Logger
}

// NewServer creates the HTTP application with its routes wired.
func NewServer(cfg config.Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		reader: ingest.NewReader(ingest.WithMaxRows(cfg.Upload.MaxRows)),
		cfg:    cfg,
		log:    logging.New("api", logging.ParseLevel(cfg.Log.Level)),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes() {
	s.router.Get("/api/health", s.handleHealth)
	s.router.Post("/api/analyze", s.handleAnalyze)
	s.router.Post("/api/upload", s.handleUpload)
}

// Router returns the HTTP handler for mounting or serving.
func (s *Server) Router() http.Handler {
	return s.router
}

// analyzeRequest is the body of POST /api/analyze.
type analyzeRequest struct {
	Query string        `json:"query"`
	Rows  table.Dataset `json:"rows"`
}

// envelope wraps every successful response with request metadata.
type envelope struct {
	RequestID core.ID        `json:"requestId"`
	ElapsedMs float64        `json:"elapsedMs"`
	Result    query.Response `json:"result"`
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req analyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxBytes)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	result := query.Analyze(req.Query, req.Rows)
	s.respond(w, r, start, result)
}

// handleUpload accepts a multipart form with a "file" part (CSV or XLSX)
// and an optional "query" field, and analyzes the uploaded dataset.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxBytes)
	if err := r.ParseMultipartForm(s.cfg.Upload.MaxBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("parse form: %w", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("missing file part: %w", err))
		return
	}
	defer file.Close()

	ds, err := s.reader.Read(header.Filename, file)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	queryText := r.FormValue("query")
	if queryText == "" {
		queryText = "explain this dataset"
	}
	result := query.Analyze(queryText, ds)
	s.respond(w, r, start, result)
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, start time.Time, result query.Response) {
	if r.URL.Query().Get("format") == "html" {
		writeHTML(w, result)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		RequestID: core.NewID(),
		ElapsedMs: float64(time.Since(start).Nanoseconds()) / 1e6,
		Result:    result,
	})
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.log.Error("request failed: %v", err)
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func statusFor(err error) int {
	if core.IsPrecondition(err) ||
		errors.Is(err, core.ErrUnsupportedFile) ||
		errors.Is(err, core.ErrEmptyFile) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeHTML renders the narrative sections of a response as an HTML
// fragment, treating them as markdown.
func writeHTML(w http.ResponseWriter, result query.Response) {
	source := "## Summary\n\n" + result.TextSummary
	if result.ExecutiveSummary != "" && result.ExecutiveSummary != result.TextSummary {
		source += "\n\n## Executive Summary\n\n" + result.ExecutiveSummary
	}
	if len(result.Recommendations) > 0 {
		source += "\n\n## Recommendations\n"
		for _, rec := range result.Recommendations {
			source += "\n- " + rec
		}
	}

	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	rendered := markdown.ToHTML([]byte(source), p, renderer)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(rendered)
}
