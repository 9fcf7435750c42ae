package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patients/internal/domain"
)

func openTestDB(t *testing.T, name string) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "patients.db"), name)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestLoad_Missing(t *testing.T) {
	db := openTestDB(t, "")
	_, err := db.Load(context.Background())
	assert.True(t, errors.Is(err, domain.ErrDocumentNotFound))
}

func TestSaveLoad(t *testing.T) {
	db := openTestDB(t, "clinic-a")
	ctx := context.Background()

	c := domain.NewCollection()
	c.Add(domain.Patient{ID: "P002", Name: "B", City: "Y", Height: 180, Weight: 90, Gender: domain.GenderMale, Age: 50})
	c.Add(domain.Patient{ID: "P001", Name: "A", City: "X", Height: 160, Weight: 48, Gender: domain.GenderFemale, Age: 22})
	require.NoError(t, db.Save(ctx, c))

	got, err := db.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, got.Len())
	assert.Equal(t, []domain.Patient{
		{ID: "P002", Name: "B", City: "Y", Height: 180, Weight: 90, Gender: domain.GenderMale, Age: 50},
		{ID: "P001", Name: "A", City: "X", Height: 160, Weight: 48, Gender: domain.GenderFemale, Age: 22},
	}, got.Patients())

	// A second save overwrites the same row.
	got.Add(domain.Patient{ID: "P003", Name: "C", Height: 170, Weight: 70, Gender: domain.GenderOther, Age: 30})
	require.NoError(t, db.Save(ctx, got))

	again, err := db.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, again.Len())

	var rows int
	require.NoError(t, db.sql.QueryRow(`SELECT COUNT(1) FROM patient_documents`).Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestLoad_Corrupt(t *testing.T) {
	db := openTestDB(t, "patients")
	_, err := db.sql.Exec(`INSERT INTO patient_documents(name, payload, updated_at) VALUES('patients', '[1,2]', '')`)
	require.NoError(t, err)

	_, err = db.Load(context.Background())
	var se *domain.StorageError
	require.True(t, errors.As(err, &se))
	assert.False(t, errors.Is(err, domain.ErrDocumentNotFound))
}
