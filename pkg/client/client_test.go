package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapthttp "patients/internal/adapter/http"
	"patients/internal/adapter/memory"
	"patients/internal/app"
	"patients/pkg/client"
)

func newClient(t *testing.T) *client.Client {
	t.Helper()
	srv := adapthttp.New(app.NewPatientService(memory.New()), nil, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return client.New(ts.URL)
}

func TestClient_EndToEnd(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	info, err := c.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Patient Management System API", info)

	about, err := c.About(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A fully functional API to manage your patient records.", about)

	ann := client.NewPatient{ID: "P010", Name: "Ann", City: "X", Height: 160, Weight: 48, Gender: "female", Age: 22}
	id, err := c.Create(ctx, ann)
	require.NoError(t, err)
	assert.Equal(t, "P010", id)

	p, err := c.Get(ctx, "P010")
	require.NoError(t, err)
	assert.Equal(t, 18.75, p.BMI)
	assert.Equal(t, "Normal weight", p.Verdict)

	all, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "P010", all[0].ID)

	_, err = c.Create(ctx, ann)
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "already exists")
}

func TestClient_ListAndSortOrder(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	for _, p := range []client.NewPatient{
		{ID: "B", Name: "b", City: "c", Height: 180, Weight: 70, Gender: "male", Age: 40},
		{ID: "A", Name: "a", City: "c", Height: 150, Weight: 70, Gender: "female", Age: 30},
		{ID: "C", Name: "c", City: "c", Height: 165, Weight: 70, Gender: "other", Age: 20},
	} {
		_, err := c.Create(ctx, p)
		require.NoError(t, err)
	}

	all, err := c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A", "C"}, ids(all))

	asc, err := c.Sort(ctx, "height", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C", "B"}, ids(asc))

	desc, err := c.Sort(ctx, "bmi", "desc")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C", "B"}, ids(desc))

	// Equal weights keep insertion order ascending and reverse it descending.
	byWeight, err := c.Sort(ctx, "weight", "desc")
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A", "B"}, ids(byWeight))
}

func TestClient_Errors(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	_, err := c.Get(ctx, "missing")
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)

	_, err = c.Sort(ctx, "age", "")
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)

	_, err = c.Create(ctx, client.NewPatient{ID: "X", Gender: "robot"})
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.NotEmpty(t, apiErr.Violations)
}

func TestClient_GetEscapesID(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	for _, id := range []string{"a/b", "x?y", "50%", "tag#1", "with space"} {
		t.Run(id, func(t *testing.T) {
			created, err := c.Create(ctx, client.NewPatient{ID: id, Name: "n", City: "c", Height: 170, Weight: 70, Gender: "other", Age: 30})
			require.NoError(t, err)
			assert.Equal(t, id, created)

			p, err := c.Get(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, id, p.ID)
		})
	}
}

func ids(ps []client.Patient) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}
