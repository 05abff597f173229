// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/okian/fairway/internal/adapters/http/swagger"
)

const (
	defaultTopLimit = 10
	defaultMaxLimit = 100
	maxBodyBytes    = 1 << 20
)

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxTopLimit caps the limit accepted by GET /shots/top.
func WithMaxTopLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithCORSOrigins enables CORS for the given origins on Handler.
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) {
		s.corsOrigins = append(s.corsOrigins, origins...)
	}
}

// Server wires HTTP routes for the shot API.
type Server struct {
	maxLimit    int
	corsOrigins []string

	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	analyzeHandler *AnalyzeHandler
	shotsHandler   *ShotsHandler
	historyHandler *HistoryHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(engine Engine, shots ShotDependencies, history HistoryDependencies, stats StatsProvider, opts ...Option) *Server {
	s := &Server{maxLimit: defaultMaxLimit}
	for _, opt := range opts {
		opt(s)
	}

	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(stats, s.maxLimit)
	s.analyzeHandler = NewAnalyzeHandler(engine)
	s.shotsHandler = NewShotsHandler(shots)
	s.historyHandler = NewHistoryHandler(history, s.maxLimit)
	return s
}

// Handler returns a mux with every API and docs route registered, behind
// CORS when origins were configured.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	swagger.Register(mux)
	if len(s.corsOrigins) == 0 {
		return mux
	}
	return CORS(s.corsOrigins)(mux)
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("POST /analyze", MetricsMiddleware(s.analyzeHandler.HandleAnalyze, "analyze"))
	mux.HandleFunc("POST /shots", MetricsMiddleware(s.shotsHandler.HandlePostShot, "shots"))
	mux.HandleFunc("GET /shots/latest", MetricsMiddleware(s.historyHandler.HandleLatest, "shots_latest"))
	mux.HandleFunc("GET /shots/top", MetricsMiddleware(s.historyHandler.HandleTop, "shots_top"))
	mux.HandleFunc("GET /shots/{id}", MetricsMiddleware(s.historyHandler.HandleGet, "shots_get"))
}

type ackResponse struct {
	Status    string `json:"status"`
	ID        string `json:"id"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decodeShot reads a device shot message from the request body.
func decodeShot(w http.ResponseWriter, r *http.Request, op string, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return wrap(op, ErrBadRequest, err)
	}
	return nil
}
