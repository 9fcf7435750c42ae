// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"math"
)

// Gender is the enumerated gender of a patient.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Valid reports whether g is one of the enumerated genders.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// Verdict is the weight-status category derived from a BMI value.
type Verdict string

const (
	VerdictUnderweight Verdict = "Underweight"
	VerdictNormal      Verdict = "Normal weight"
	VerdictOverweight  Verdict = "Overweight"
	VerdictObesity     Verdict = "Obesity"
)

// Patient is one person's health record. Height is in centimeters and weight
// in kilograms.
type Patient struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	City   string  `json:"city"`
	Height float64 `json:"height"`
	Weight float64 `json:"weight"`
	Gender Gender  `json:"gender"`
	Age    int     `json:"age"`
}

// BMI returns the body-mass index in kg/m², rounded to two decimals.
// A non-positive height has no defined BMI and yields 0.
func (p Patient) BMI() float64 {
	return ComputeBMI(p.Weight, p.Height)
}

// Verdict returns the weight-status category for the patient's BMI.
func (p Patient) Verdict() Verdict {
	return ClassifyBMI(p.BMI())
}

// ComputeBMI computes weight / (height in meters)² rounded to two decimals.
func ComputeBMI(weightKg, heightCm float64) float64 {
	if heightCm <= 0 {
		return 0
	}
	m := heightCm / 100
	return math.Round(weightKg/(m*m)*100) / 100
}

// ClassifyBMI maps a BMI value onto contiguous half-open buckets:
// [0,18.5) underweight, [18.5,25) normal, [25,30) overweight, [30,∞) obesity.
func ClassifyBMI(bmi float64) Verdict {
	switch {
	case bmi < 18.5:
		return VerdictUnderweight
	case bmi < 25:
		return VerdictNormal
	case bmi < 30:
		return VerdictOverweight
	default:
		return VerdictObesity
	}
}

// Record is the persisted form of a patient: every attribute except the
// identifier, which is the key of the enclosing collection.
type Record struct {
	Name   string  `json:"name"`
	City   string  `json:"city"`
	Height float64 `json:"height"`
	Weight float64 `json:"weight"`
	Gender Gender  `json:"gender"`
	Age    int     `json:"age"`
}

// Record returns the persisted form of p.
func (p Patient) Record() Record {
	return Record{Name: p.Name, City: p.City, Height: p.Height, Weight: p.Weight, Gender: p.Gender, Age: p.Age}
}

// Patient rehydrates a stored record under the given identifier.
func (r Record) Patient(id string) Patient {
	return Patient{ID: id, Name: r.Name, City: r.City, Height: r.Height, Weight: r.Weight, Gender: r.Gender, Age: r.Age}
}

// PatientRepository is the port for whole-collection persistence. Every call
// reads or writes the entire document.
type PatientRepository interface {
	Load(ctx context.Context) (*Collection, error)
	Save(ctx context.Context, c *Collection) error
}
