package deliveryeta

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictHandler(t *testing.T) {
	s := newTestService()

	body := `{
		"restaurant_address": "MG Road, Bangalore",
		"delivery_address": "Koramangala, Bangalore",
		"delivery_person_age": 30,
		"delivery_person_rating": 3,
		"vehicle_type": "bike",
		"vehicle_condition": 3,
		"multiple_deliveries": 0
	}`
	req := httptest.NewRequest(http.MethodPost, "/predict-eta", strings.NewReader(body))
	w := httptest.NewRecorder()
	s.PredictHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp ETAResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 15.0, resp.PredictedETA)
	assert.Equal(t, "low", resp.TrafficDensity)
}

func TestPredictHandlerMalformedBody(t *testing.T) {
	s := newTestService()

	req := httptest.NewRequest(http.MethodPost, "/predict-eta", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	s.PredictHandler(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Malformed request body", body.Error)
}

func TestPredictHandlerRejectsGet(t *testing.T) {
	s := newTestService()

	req := httptest.NewRequest(http.MethodGet, "/predict-eta", nil)
	w := httptest.NewRecorder()
	s.PredictHandler(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestPredictHandlerValidationError(t *testing.T) {
	s := newTestService()

	body := `{
		"restaurant_address": "MG Road, Bangalore",
		"delivery_address": "Koramangala, Bangalore",
		"delivery_person_age": 30,
		"delivery_person_rating": 3,
		"vehicle_type": "car",
		"vehicle_condition": 3
	}`
	req := httptest.NewRequest(http.MethodPost, "/predict-eta", strings.NewReader(body))
	w := httptest.NewRecorder()
	s.PredictHandler(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var errResp errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	assert.Contains(t, errResp.Error, "vehicle type")
}

func TestHealthHandler(t *testing.T) {
	s := newTestService()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.HealthHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, false, body["model_configured"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestRootHandler(t *testing.T) {
	s := newTestService()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	s.RootHandler(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/nope", nil)
	w = httptest.NewRecorder()
	s.RootHandler(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHistoryHandler(t *testing.T) {
	s := newTestService()
	rec := &recordingStore{}
	s.store = rec

	_, err := s.Estimate(httptest.NewRequest(http.MethodGet, "/", nil).Context(), validRequest())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/history?limit=5", nil)
	w := httptest.NewRecorder()
	s.HistoryHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Estimates []map[string]any `json:"estimates"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Estimates, 1)
	assert.Equal(t, "MG Road, Bangalore", body.Estimates[0]["restaurant_address"])
}

func TestHistoryHandlerBadLimit(t *testing.T) {
	s := newTestService()

	req := httptest.NewRequest(http.MethodGet, "/history?limit=-3", nil)
	w := httptest.NewRecorder()
	s.HistoryHandler(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	s := newTestService()
	handler := s.withRequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	// Caller-supplied id is preserved.
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-Id"))
}

func TestRequestIDMiddlewareRecoversPanic(t *testing.T) {
	s := newTestService()
	handler := s.withRequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", w.Body.String())
}
