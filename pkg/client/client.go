// Package client is a typed Go client for the patient records HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Patient is a patient as returned by the API, including derived values.
type Patient struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	City    string  `json:"city"`
	Height  float64 `json:"height"`
	Weight  float64 `json:"weight"`
	Gender  string  `json:"gender"`
	Age     int     `json:"age"`
	BMI     float64 `json:"bmi"`
	Verdict string  `json:"verdict"`
}

// NewPatient is the body of a create request.
type NewPatient struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	City   string  `json:"city"`
	Height float64 `json:"height"`
	Weight float64 `json:"weight"`
	Gender string  `json:"gender"`
	Age    int     `json:"age"`
}

// Violation is one rejected field of a create request.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is returned for every non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
	Violations []Violation
}

func (e *APIError) Error() string {
	if len(e.Violations) == 0 {
		return fmt.Sprintf("patients api: %d: %s", e.StatusCode, e.Message)
	}
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return fmt.Sprintf("patients api: %d: %s (%s)", e.StatusCode, e.Message, strings.Join(parts, "; "))
}

type errorBody struct {
	Error      string      `json:"error"`
	Violations []Violation `json:"violations"`
}

type messageBody struct {
	Message   string `json:"message"`
	PatientID string `json:"patient_id"`
}

// Client calls the API at a fixed base URL.
type Client struct {
	http *resty.Client
}

// New returns a Client for baseURL.
func New(baseURL string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(10*time.Second).
			SetHeader("Accept", "application/json"),
	}
}

// do sends one request. prepare, when non-nil, adds query or path
// parameters before sending.
func (c *Client) do(ctx context.Context, method, path string, body, result any, prepare func(*resty.Request)) error {
	var apiErr errorBody
	req := c.http.R().
		SetContext(ctx).
		SetError(&apiErr)
	if result != nil {
		req.SetResult(result)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if prepare != nil {
		prepare(req)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		msg := apiErr.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode())
		}
		return &APIError{StatusCode: resp.StatusCode(), Message: msg, Violations: apiErr.Violations}
	}
	return nil
}

// Info returns the service banner.
func (c *Client) Info(ctx context.Context) (string, error) {
	var out messageBody
	if err := c.do(ctx, http.MethodGet, "/", nil, &out, nil); err != nil {
		return "", err
	}
	return out.Message, nil
}

// About returns the service description.
func (c *Client) About(ctx context.Context) (string, error) {
	var out messageBody
	if err := c.do(ctx, http.MethodGet, "/about", nil, &out, nil); err != nil {
		return "", err
	}
	return out.Message, nil
}

// List returns every patient in the order the server holds them.
func (c *Client) List(ctx context.Context) ([]Patient, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/view", nil, &raw, nil); err != nil {
		return nil, err
	}
	return decodeIndex(raw)
}

// Get returns one patient.
func (c *Client) Get(ctx context.Context, id string) (Patient, error) {
	var out Patient
	// Path parameters are escaped, so IDs containing '/', '?' or '%' survive.
	withID := func(r *resty.Request) { r.SetPathParam("id", id) }
	if err := c.do(ctx, http.MethodGet, "/patient/{id}", nil, &out, withID); err != nil {
		return Patient{}, err
	}
	return out, nil
}

// Sort returns every patient ordered by field ("height", "weight" or "bmi").
// An empty order means ascending.
func (c *Client) Sort(ctx context.Context, field, order string) ([]Patient, error) {
	q := map[string]string{"sort_by": field}
	if order != "" {
		q["order"] = order
	}
	var out []Patient
	if err := c.do(ctx, http.MethodGet, "/sort", nil, &out, func(r *resty.Request) { r.SetQueryParams(q) }); err != nil {
		return nil, err
	}
	return out, nil
}

// Create stores a new patient and returns its identifier.
func (c *Client) Create(ctx context.Context, p NewPatient) (string, error) {
	var out messageBody
	if err := c.do(ctx, http.MethodPost, "/create", p, &out, nil); err != nil {
		return "", err
	}
	return out.PatientID, nil
}

// decodeIndex reads a JSON object of patients keyed by ID, keeping key order.
func decodeIndex(raw []byte) ([]Patient, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if tok, err := dec.Token(); err != nil {
		return nil, err
	} else if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected JSON object, got %v", tok)
	}
	var out []Patient
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		id, _ := tok.(string)
		var p Patient
		if err := dec.Decode(&p); err != nil {
			return nil, fmt.Errorf("decode patient %q: %w", id, err)
		}
		if p.ID == "" {
			p.ID = id
		}
		out = append(out, p)
	}
	return out, nil
}
