package adapthttp

import (
	"bytes"
	"encoding/json"

	"patients/internal/domain"
)

// patientView is the response form of a patient: its stored attributes plus
// the identifier and the derived BMI and verdict.
type patientView struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	City    string         `json:"city"`
	Height  float64        `json:"height"`
	Weight  float64        `json:"weight"`
	Gender  domain.Gender  `json:"gender"`
	Age     int            `json:"age"`
	BMI     float64        `json:"bmi"`
	Verdict domain.Verdict `json:"verdict"`
}

func newPatientView(p domain.Patient) patientView {
	return patientView{
		ID:      p.ID,
		Name:    p.Name,
		City:    p.City,
		Height:  p.Height,
		Weight:  p.Weight,
		Gender:  p.Gender,
		Age:     p.Age,
		BMI:     p.BMI(),
		Verdict: p.Verdict(),
	}
}

func newPatientViews(ps []domain.Patient) []patientView {
	out := make([]patientView, 0, len(ps))
	for _, p := range ps {
		out = append(out, newPatientView(p))
	}
	return out
}

// patientIndex encodes as a JSON object keyed by patient ID, in slice order.
type patientIndex []patientView

func (idx patientIndex) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, v := range idx {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(v.ID)
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
