package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowershop/internal/models"
)

type fakeStore struct {
	orders  []models.OrderInfo
	listErr error
	pingErr error
}

func (f *fakeStore) ListOrders(_ context.Context, status string) ([]models.OrderInfo, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if status == "" {
		return f.orders, nil
	}
	var out []models.OrderInfo
	for _, o := range f.orders {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeStore) PingContext(context.Context) error {
	return f.pingErr
}

func newTestServer(store *fakeStore, apiKey string) *httptest.Server {
	logger := zerolog.Nop()
	return httptest.NewServer(NewServer(store, &logger, apiKey).Handler())
}

func TestStatisticsJSON(t *testing.T) {
	store := &fakeStore{orders: []models.OrderInfo{
		{
			ID:           1,
			Customer:     "Anna",
			Phone:        "+1000",
			Bouquet:      "Нежность",
			Price:        900,
			Address:      "Main St 1",
			DeliveryTime: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
			Status:       models.OrderStatusNew,
		},
	}}
	srv := newTestServer(store, "")
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/statistics")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body struct {
		Count  int                `json:"count"`
		Orders []models.OrderInfo `json:"orders"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 1, body.Count)
	require.Len(t, body.Orders, 1)
	assert.Equal(t, "Anna", body.Orders[0].Customer)
	assert.Equal(t, 900, body.Orders[0].Price)
}

func TestStatisticsEmpty(t *testing.T) {
	srv := newTestServer(&fakeStore{}, "")
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/statistics")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Count  int                `json:"count"`
		Orders []models.OrderInfo `json:"orders"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 0, body.Count)
	assert.NotNil(t, body.Orders)
}

func TestStatisticsAuth(t *testing.T) {
	srv := newTestServer(&fakeStore{}, "secret")
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/statistics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/statistics", nil)
	req.Header.Set("X-API-Key", "secret")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStatisticsStatusFilter(t *testing.T) {
	store := &fakeStore{orders: []models.OrderInfo{
		{ID: 1, Customer: "Anna", Status: models.OrderStatusNew},
		{ID: 2, Customer: "Борис", Status: models.OrderStatusDelivered},
	}}
	srv := newTestServer(store, "")
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/statistics?status=delivered")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Count  int                `json:"count"`
		Orders []models.OrderInfo `json:"orders"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 1, body.Count)
	require.Len(t, body.Orders, 1)
	assert.Equal(t, "Борис", body.Orders[0].Customer)

	resp, err = http.Get(srv.URL + "/api/v1/statistics?status=shipped")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/v1/statistics/export?status=shipped")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStatisticsMethodNotAllowed(t *testing.T) {
	srv := newTestServer(&fakeStore{}, "")
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/v1/statistics", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestStatisticsStoreError(t *testing.T) {
	srv := newTestServer(&fakeStore{listErr: errors.New("boom")}, "")
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/statistics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestExport(t *testing.T) {
	store := &fakeStore{orders: []models.OrderInfo{
		{ID: 1, Customer: "Anna", Bouquet: "Нежность", Price: 900},
	}}
	srv := newTestServer(store, "")
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/statistics/export")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xlsx")
}

func TestHealthEndpoints(t *testing.T) {
	store := &fakeStore{}
	srv := newTestServer(store, "secret")
	defer srv.Close()

	// Health endpoints are not behind the API key.
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	store.pingErr = errors.New("db gone")
	resp, err = http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
