package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patients/internal/domain"
)

func TestStore_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "patients.json")
	s := New(path)
	ctx := context.Background()

	c := domain.NewCollection()
	c.Add(domain.Patient{ID: "P001", Name: "Ann", City: "X", Height: 160, Weight: 48, Gender: domain.GenderFemale, Age: 22})
	c.Add(domain.Patient{ID: "P000", Name: "Bob", City: "Y", Height: 180, Weight: 90, Gender: domain.GenderMale, Age: 50})
	require.NoError(t, s.Save(ctx, c))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"P001": {"name":"Ann","city":"X","height":160,"weight":48,"gender":"female","age":22},
		"P000": {"name":"Bob","city":"Y","height":180,"weight":90,"gender":"male","age":50}
	}`, string(raw))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, got.Len())
	assert.Equal(t, "P001", got.Patients()[0].ID)
	assert.Equal(t, "P000", got.Patients()[1].ID)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestStore_LoadMissing(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "absent.json"))
	_, err := s.Load(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDocumentNotFound))
	var se *domain.StorageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "load", se.Op)
}

func TestStore_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patients.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"P001": {`), 0o644))

	_, err := New(path).Load(context.Background())
	var se *domain.StorageError
	require.True(t, errors.As(err, &se))
	assert.False(t, errors.Is(err, domain.ErrDocumentNotFound))
}

func TestStore_SaveReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patients.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"OLD":{}}`), 0o644))
	s := New(path)

	require.NoError(t, s.Save(context.Background(), domain.NewCollection()))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(raw))
}

func TestNew_DefaultPath(t *testing.T) {
	assert.Equal(t, "patients.json", New("").Path())
}
