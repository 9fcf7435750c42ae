package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Collection is the full set of patient records keyed by identifier. It keeps
// the insertion order of its keys, which is also the key order of the stored
// JSON object.
type Collection struct {
	ids     []string
	records map[string]Record
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{records: make(map[string]Record)}
}

// Len returns the number of records.
func (c *Collection) Len() int { return len(c.ids) }

// Has reports whether id is present.
func (c *Collection) Has(id string) bool {
	_, ok := c.records[id]
	return ok
}

// Get returns the patient stored under id.
func (c *Collection) Get(id string) (Patient, bool) {
	r, ok := c.records[id]
	if !ok {
		return Patient{}, false
	}
	return r.Patient(id), true
}

// Add appends p under its identifier. It returns false and leaves the
// collection untouched when the identifier is already present.
func (c *Collection) Add(p Patient) bool {
	if c.Has(p.ID) {
		return false
	}
	if c.records == nil {
		c.records = make(map[string]Record)
	}
	c.ids = append(c.ids, p.ID)
	c.records[p.ID] = p.Record()
	return true
}

// Patients returns every record in insertion order.
func (c *Collection) Patients() []Patient {
	out := make([]Patient, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.records[id].Patient(id))
	}
	return out
}

// MarshalJSON encodes the collection as a JSON object in insertion order.
func (c *Collection) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range c.ids {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(c.records[id])
		if err != nil {
			return nil, fmt.Errorf("encode record %q: %w", id, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object of records, keeping key order. A
// repeated key keeps its first position and its last value.
func (c *Collection) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("collection must be a JSON object, got %v", tok)
	}

	var ids []string
	records := make(map[string]Record)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		id, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected key token %v", tok)
		}
		var r Record
		if err := dec.Decode(&r); err != nil {
			return fmt.Errorf("decode record %q: %w", id, err)
		}
		if _, seen := records[id]; !seen {
			ids = append(ids, id)
		}
		records[id] = r
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	c.ids = ids
	c.records = records
	return nil
}

// EncodeCollection serializes c into its stored document form.
func EncodeCollection(c *Collection) ([]byte, error) {
	if c == nil {
		c = NewCollection()
	}
	return c.MarshalJSON()
}

// DecodeCollection parses a stored document.
func DecodeCollection(b []byte) (*Collection, error) {
	c := NewCollection()
	if err := json.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("decode collection: %w", err)
	}
	return c, nil
}
