package adapthttp

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"patients/internal/adapter/memory"
	"patients/internal/app"
)

func TestLoggingMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s := New(app.NewPatientService(memory.New()), zap.New(core), nil)

	mux := http.NewServeMux()
	mux.HandleFunc("/test-path", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("OK"))
	})
	handler := withRequestID(s.instrument(mux, mux))

	req := httptest.NewRequest(http.MethodGet, "/test-path", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusTeapot {
		t.Errorf("Expected status %d, got %d", http.StatusTeapot, w.Code)
	}

	entries := logs.FilterMessage("http request").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["method"] != "GET" || fields["path"] != "/test-path" || fields["status"] != int64(418) || fields["request_id"] != "req-1" {
		t.Errorf("Log fields missing expected values. Got: %v", fields)
	}
}

func TestInternalErrorIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	s := New(nil, zap.New(core), nil)

	req := httptest.NewRequest(http.MethodGet, "/view", nil)
	w := httptest.NewRecorder()
	s.writeServiceError(w, req, errTest("backend unavailable"))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if logs.Len() != 1 {
		t.Fatalf("expected 1 error log, got %d", logs.Len())
	}
	if got := logs.All()[0].ContextMap()["error"]; got != "backend unavailable" {
		t.Fatalf("unexpected logged error %v", got)
	}
}

type errTest string

func (e errTest) Error() string { return string(e) }
