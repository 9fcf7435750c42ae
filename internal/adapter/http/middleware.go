package adapthttp

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const requestIDContextKey contextKey = "request_id"

// RequestIDHeader carries the request identifier in both directions.
const RequestIDHeader = "X-Request-ID"

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}

// withRequestID reuses the caller's X-Request-ID or generates one, echoes it
// on the response and stores it in the request context.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDContextKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument logs and counts every request. Routes are labeled with the
// pattern mux matched, or "unmatched".
func (s *Server) instrument(mux *http.ServeMux, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		if s.metrics != nil {
			route := "unmatched"
			if _, pattern := mux.Handler(r); pattern != "" {
				route = pattern
			}
			s.metrics.ObserveRequest(r.Method, route, rec.status, elapsed)
		}
		s.logRequest(r, rec.status, elapsed)
	})
}

func (s *Server) logRequest(r *http.Request, status int, elapsed time.Duration) {
	s.log.Info("http request",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Duration("duration", elapsed),
		zap.String("request_id", requestIDFrom(r.Context())),
	)
}
