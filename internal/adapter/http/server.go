package adapthttp

import (
	"net/http"

	"go.uber.org/zap"

	"patients/internal/app"
	"patients/internal/metrics"
)

// Server is the driving HTTP adapter that routes requests to the patient
// service.
type Server struct {
	patients *app.PatientService
	log      *zap.Logger
	metrics  *metrics.Metrics
}

// New creates a Server wired to the patient service. A nil logger discards
// log output and a nil metrics set disables instrumentation and /metrics.
func New(ps *app.PatientService, logger *zap.Logger, m *metrics.Metrics) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{patients: ps, log: logger, metrics: m}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/{$}", s.handleRoot)
	mux.HandleFunc("/about", s.handleAbout)
	mux.HandleFunc("/view", s.handleView)
	mux.HandleFunc("/patient/{id}", s.handlePatient)
	mux.HandleFunc("/sort", s.handleSort)
	mux.HandleFunc("/create", s.handleCreate)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}

	return withRequestID(s.instrument(mux, withNoCache(mux)))
}
