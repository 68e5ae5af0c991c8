package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/config"
	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/db"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

type Server struct {
	db  *db.DB
	cfg *config.Config
}

func NewServer(database *db.DB, cfg *config.Config) *Server {
	if cfg == nil {
		cfg = config.Empty()
	}
	return &Server{
		db:  database,
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
	mux.HandleFunc("/api/learners", s.listLearners)
	mux.HandleFunc("/api/groups", s.listGroups)
	mux.HandleFunc("/api/progress", s.showProgress)
	mux.HandleFunc("/api/stats", s.showCohortStats)
	mux.HandleFunc("/api/sessions", s.recordSession)
	mux.HandleFunc("/api/tracker.csv", s.downloadTracker)
	mux.HandleFunc("/api/charts/progress", s.progressChart)
	mux.HandleFunc("/api/config", s.showConfig)
	return mux
}
