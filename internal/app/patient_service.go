// Package app holds the application services and business logic.
package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"patients/internal/domain"
)

var (
	// ErrPatientNotFound indicates that no record exists for the identifier.
	ErrPatientNotFound = errors.New("patient not found")
	// ErrPatientExists indicates that a record with the identifier already exists.
	ErrPatientExists = errors.New("patient with this ID already exists")
	// ErrInvalidArgument indicates a bad query parameter.
	ErrInvalidArgument = errors.New("invalid argument")
)

// SortField names the numeric attribute used by Sort.
type SortField string

const (
	SortByHeight SortField = "height"
	SortByWeight SortField = "weight"
	SortByBMI    SortField = "bmi"
)

// SortFields lists the accepted sort fields.
var SortFields = []SortField{SortByHeight, SortByWeight, SortByBMI}

// SortOrder is the direction of Sort.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// ParseSortField validates a sort field name.
func ParseSortField(s string) (SortField, error) {
	f := SortField(s)
	if !slices.Contains(SortFields, f) {
		return "", fmt.Errorf("%w: invalid sort field %q, select from %v", ErrInvalidArgument, s, SortFields)
	}
	return f, nil
}

// ParseSortOrder validates a sort order; the empty string means ascending.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(s) {
	case "", OrderAsc:
		return OrderAsc, nil
	case OrderDesc:
		return OrderDesc, nil
	}
	return "", fmt.Errorf("%w: invalid order %q, select from asc or desc", ErrInvalidArgument, s)
}

func sortKey(p domain.Patient, f SortField) float64 {
	switch f {
	case SortByHeight:
		return p.Height
	case SortByWeight:
		return p.Weight
	case SortByBMI:
		return p.BMI()
	}
	return 0
}

// PatientService encapsulates the patient record use cases. Create holds the
// write lock across its load-modify-save cycle so writers in this process
// never interleave.
type PatientService struct {
	repo domain.PatientRepository
	mu   sync.RWMutex
}

// NewPatientService creates a PatientService backed by the given repository.
func NewPatientService(repo domain.PatientRepository) *PatientService {
	return &PatientService{repo: repo}
}

func (s *PatientService) load(ctx context.Context) (*domain.Collection, error) {
	c, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load patients: %w", err)
	}
	return c, nil
}

// ListAll returns every patient in insertion order.
func (s *PatientService) ListAll(ctx context.Context) ([]domain.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return c.Patients(), nil
}

// Get returns the patient stored under id.
func (s *PatientService) Get(ctx context.Context, id string) (domain.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.load(ctx)
	if err != nil {
		return domain.Patient{}, err
	}
	p, ok := c.Get(id)
	if !ok {
		return domain.Patient{}, ErrPatientNotFound
	}
	return p, nil
}

// Sort returns all patients ordered by field. Ascending order is a stable
// sort on the field value; descending order is its exact reverse. Arguments
// are validated before the store is read.
func (s *PatientService) Sort(ctx context.Context, field, order string) ([]domain.Patient, error) {
	f, err := ParseSortField(field)
	if err != nil {
		return nil, err
	}
	o, err := ParseSortOrder(order)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	c, err := s.load(ctx)
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	ps := c.Patients()
	sort.SliceStable(ps, func(i, j int) bool {
		return sortKey(ps[i], f) < sortKey(ps[j], f)
	})
	if o == OrderDesc {
		slices.Reverse(ps)
	}
	return ps, nil
}

// Create validates in and stores a new patient, returning its identifier.
// An existing identifier yields ErrPatientExists and nothing is written.
func (s *PatientService) Create(ctx context.Context, in domain.PatientInput) (string, error) {
	p, err := domain.NewPatient(in)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	if !c.Add(p) {
		return "", fmt.Errorf("%w: %s", ErrPatientExists, p.ID)
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return "", fmt.Errorf("save patients: %w", err)
	}
	return p.ID, nil
}
