package domain

import (
	"fmt"
	"strings"
)

// Violation describes one invalid or missing input field.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every violation found in a patient input.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// PatientInput carries the attributes of a patient to be created. Pointer
// fields distinguish an absent attribute from its zero value.
type PatientInput struct {
	ID     *string  `json:"id"`
	Name   *string  `json:"name"`
	City   *string  `json:"city"`
	Height *float64 `json:"height"`
	Weight *float64 `json:"weight"`
	Gender *string  `json:"gender"`
	Age    *int     `json:"age"`
}

// Validate checks every field and returns a *ValidationError holding all
// violations, or nil.
func (in PatientInput) Validate() error {
	var vs []Violation
	add := func(field, format string, args ...any) {
		vs = append(vs, Violation{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	switch {
	case in.ID == nil:
		add("id", "field required")
	case strings.TrimSpace(*in.ID) == "":
		add("id", "must not be empty")
	}
	if in.Name == nil {
		add("name", "field required")
	}
	if in.City == nil {
		add("city", "field required")
	}
	switch {
	case in.Height == nil:
		add("height", "field required")
	case *in.Height <= 0:
		add("height", "must be greater than 0, got %v", *in.Height)
	}
	switch {
	case in.Weight == nil:
		add("weight", "field required")
	case *in.Weight <= 0:
		add("weight", "must be greater than 0, got %v", *in.Weight)
	}
	switch {
	case in.Gender == nil:
		add("gender", "field required")
	case !Gender(*in.Gender).Valid():
		add("gender", "must be one of male, female, other, got %q", *in.Gender)
	}
	switch {
	case in.Age == nil:
		add("age", "field required")
	case *in.Age < 0:
		add("age", "must be non-negative, got %d", *in.Age)
	}

	if len(vs) > 0 {
		return &ValidationError{Violations: vs}
	}
	return nil
}

// NewPatient validates in and builds a Patient from it.
func NewPatient(in PatientInput) (Patient, error) {
	if err := in.Validate(); err != nil {
		return Patient{}, err
	}
	return Patient{
		ID:     *in.ID,
		Name:   *in.Name,
		City:   *in.City,
		Height: *in.Height,
		Weight: *in.Weight,
		Gender: Gender(*in.Gender),
		Age:    *in.Age,
	}, nil
}
