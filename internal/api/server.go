package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/ergosense/posture.report/internal/analysis"
	"github.com/ergosense/posture.report/internal/analysisdb"
	"github.com/ergosense/posture.report/internal/config"
	"github.com/ergosense/posture.report/internal/monitoring"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

type Server struct {
	db  *analysisdb.DB
	cfg *config.AnalysisConfig

	mu     sync.Mutex
	active *activeRun
}

// activeRun tracks the in-flight worker so the state endpoint can report
// progress without touching the database.
type activeRun struct {
	id     string
	source string
	worker *analysis.Worker

	mu      sync.Mutex
	current int
	total   int
	skipped int
}

func (r *activeRun) progress() (current, total, skipped int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current, r.total, r.skipped
}

func NewServer(db *analysisdb.DB, cfg *config.AnalysisConfig) *Server {
	if cfg == nil {
		cfg = config.EmptyAnalysisConfig()
	}
	return &Server{
		db:  db,
		cfg: cfg,
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/assess/rula", s.assessRULA)
	mux.HandleFunc("/api/assess/reba", s.assessREBA)
	mux.HandleFunc("/api/assess/owas", s.assessOWAS)
	mux.HandleFunc("/api/assess/nle", s.assessNLE)
	mux.HandleFunc("/api/assess/si", s.assessSI)
	mux.HandleFunc("/api/analysis/start", s.startAnalysis)
	mux.HandleFunc("/api/analysis/cancel", s.cancelAnalysis)
	mux.HandleFunc("/api/analysis/state", s.analysisState)
	mux.HandleFunc("/api/runs", s.listRuns)
	mux.HandleFunc("/api/runs/", s.getRun)
	mux.HandleFunc("/debug/movement-chart", s.movementChart)
	return mux
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logf("failed to encode response: %v", err)
	}
}

func (s *Server) logf(format string, v ...any) {
	monitoring.Logf("[API] "+format, v...)
}

// decodeJSON reads the request body into dst with unknown fields
// rejected, so typos in worksheet field names fail loudly.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
