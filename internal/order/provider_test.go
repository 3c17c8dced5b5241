package order

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jaswdr/faker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"fournisseurId": "S1", "delay_days": 1, "has_return": 0, "total_quantity": 2, "is_canceled": 0}]`))
	}))
	defer srv.Close()

	records, err := NewProvider(srv.URL, time.Second, "", 0).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 2, records[0].TotalQuantity)
}

func TestProvider_Fetch_BearerToken(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := NewProvider(srv.URL, time.Second, "secret", 0).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", auth)
}

func TestProvider_Fetch_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewProvider(srv.URL, time.Second, "", 0).Fetch(context.Background())

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusInternalServerError, fetchErr.Status)
}

func TestProvider_Fetch_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewProvider(url, time.Second, "", 0).Fetch(context.Background())

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Zero(t, fetchErr.Status)
}

func TestProvider_Fetch_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	_, err := NewProvider(srv.URL, time.Second, "", 0).Fetch(context.Background())

	var fetchErr *FetchError
	assert.ErrorAs(t, err, &fetchErr)
}

func TestProvider_Fetch_MissingFieldsPassThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"fournisseurId": "S1"}]`))
	}))
	defer srv.Close()

	_, err := NewProvider(srv.URL, time.Second, "", 0).Fetch(context.Background())

	var missing *MissingFieldsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{FieldDelayDays, FieldHasReturn, FieldTotalQuantity, FieldIsCanceled}, missing.Fields)

	var fetchErr *FetchError
	assert.NotErrorAs(t, err, &fetchErr)
}

func TestProvider_Fetch_BodyLimit(t *testing.T) {
	payload := `[{"fournisseurId": "S1", "delay_days": 1, "has_return": 0, "total_quantity": 2, "is_canceled": 0}]`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	_, err := NewProvider(srv.URL, time.Second, "", int64(len(payload)-1)).Fetch(context.Background())

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.ErrorContains(t, err, "exceeds")

	records, err := NewProvider(srv.URL, time.Second, "", int64(len(payload))).Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestGenerate(t *testing.T) {
	records := Generate(faker.New(), 4, 50)
	require.Len(t, records, 50)

	seen := make(map[string]bool)
	for _, rec := range records {
		seen[rec.SupplierID] = true
		assert.GreaterOrEqual(t, rec.TotalQuantity, 1)
		assert.Nil(t, rec.IsLate)
	}
	assert.Len(t, seen, 4, "every supplier should receive at least one order")

	assert.Empty(t, Generate(faker.New(), 0, 10))
}
