package adapthttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"patients/internal/app"
	"patients/internal/domain"
)

// maxBodyBytes bounds the create request body.
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

func writeViolations(w http.ResponseWriter, vs []domain.Violation) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"error":      "validation failed",
		"violations": vs,
	})
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	w.WriteHeader(http.StatusMethodNotAllowed)
}

// writeServiceError maps service and storage errors onto status codes.
// Unexpected errors are logged and reported without detail.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeViolations(w, verr.Violations)
	case errors.Is(err, app.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, app.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, app.ErrPatientExists):
		writeError(w, http.StatusBadRequest, err)
	default:
		s.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", requestIDFrom(r.Context())),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, errors.New("internal server error"))
	}
}

// parsePatientInput decodes a create body strictly: one JSON object, no
// unknown fields, every value of the declared type.
func parsePatientInput(r *http.Request) (domain.PatientInput, []domain.Violation) {
	var in domain.PatientInput
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return in, []domain.Violation{decodeViolation(err)}
	}
	if dec.More() {
		return in, []domain.Violation{{Field: "body", Message: "unexpected data after JSON object"}}
	}
	return in, nil
}

func decodeViolation(err error) domain.Violation {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return domain.Violation{Field: field, Message: fmt.Sprintf("must be of type %s, got %s", typeErr.Type, typeErr.Value)}
	case errors.As(err, &syntaxErr):
		return domain.Violation{Field: "body", Message: fmt.Sprintf("invalid json at offset %d: %v", syntaxErr.Offset, err)}
	case errors.Is(err, io.EOF):
		return domain.Violation{Field: "body", Message: "request body must be a JSON object"}
	default:
		return domain.Violation{Field: "body", Message: "invalid json: " + err.Error()}
	}
}

func withNoCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
