package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var fixedNow = time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC)

func setupTestRouter(t *testing.T) (http.Handler, *Handler) {
	t.Helper()

	handler := NewHandler(WithClock(func() time.Time { return fixedNow }))
	router := NewRouter(handler, zaptest.NewLogger(t), WithLogging(false))

	return router, handler
}

func postJSON(t *testing.T, router http.Handler, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRequestIDHelpers(t *testing.T) {
	ctx := contextWithRequestID(context.Background(), "abc")
	if got := requestIDFromContext(ctx); got != "abc" {
		t.Fatalf("expected abc, got %s", got)
	}
	resp := httptest.NewRecorder()
	writeInternalError(resp, assertError("boom"))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 status, got %d", resp.Code)
	}
}

type assertError string

func (a assertError) Error() string { return string(a) }

func TestHealthEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Status != "ok" || !body.Timestamp.Equal(fixedNow) {
		t.Fatalf("unexpected health response: %+v", body)
	}
}

func TestReportEndpoint(t *testing.T) {
	router, handler := setupTestRouter(t)

	rec := postJSON(t, router, "/api/workouts/report", `{"code":"RUN","values":[15000,1,75]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body reportResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))

	assert.Equal(t, "Running", body.TrainingType)
	assert.InDelta(t, 9.75, body.Distance, 1e-9)
	assert.InDelta(t, 9.75, body.Speed, 1e-9)
	assert.InDelta(t, 699.75, body.Calories, 1e-9)
	assert.Equal(t, "Тип тренировки: Running; Длительность: 1.000 ч.; Дистанция: 9.750 км; Ср. скорость: 9.750 км/ч; Потрачено ккал: 699.750.", body.Message)

	assert.Equal(t, 1.0, testutil.ToFloat64(handler.metrics.reports.WithLabelValues("Running")))
}

func TestReportEndpointRejectsUnknownCode(t *testing.T) {
	router, handler := setupTestRouter(t)

	rec := postJSON(t, router, "/api/workouts/report", `{"code":"XYZ","values":[1,1,1]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Unknown workout type", body.Error)
	assert.Contains(t, body.Details, `"XYZ"`)
	assert.NotEmpty(t, body.Suggestion)

	assert.Equal(t, 1.0, testutil.ToFloat64(handler.metrics.failures.WithLabelValues(reasonUnknownCode)))
}

func TestReportEndpointRejectsMalformedValues(t *testing.T) {
	router, handler := setupTestRouter(t)

	cases := []string{
		`{"code":"WLK","values":[9000,1,75]}`,
		`{"code":"RUN","values":["fast",1,75]}`,
		`{"code":"SWM","values":[720,1,80,25,40.5]}`,
	}
	for _, payload := range cases {
		rec := postJSON(t, router, "/api/workouts/report", payload)
		require.Equal(t, http.StatusBadRequest, rec.Code, payload)

		var body errorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "Malformed workout values", body.Error)
		assert.Contains(t, body.Suggestion, "expects values in order: action, duration, weight")
	}

	assert.Equal(t, float64(len(cases)), testutil.ToFloat64(handler.metrics.failures.WithLabelValues(reasonMalformedValues)))
}

func TestReportEndpointRejectsZeroDuration(t *testing.T) {
	router, handler := setupTestRouter(t)

	for _, payload := range []string{
		`{"code":"RUN","values":[15000,0,75]}`,
		`{"code":"SWM","values":[720,0,80,25,40]}`,
	} {
		rec := postJSON(t, router, "/api/workouts/report", payload)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code, payload)

		var body errorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body), payload)
		assert.Equal(t, "Cannot compute workout", body.Error)
		assert.Contains(t, body.Details, "not finite")
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(handler.metrics.failures.WithLabelValues(reasonNonFinite)))
}

func TestReportEndpointRejectsInvalidJSON(t *testing.T) {
	router, _ := setupTestRouter(t)

	rec := postJSON(t, router, "/api/workouts/report", `{"code":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestBatchEndpointContinuesOnError(t *testing.T) {
	router, _ := setupTestRouter(t)

	payload := map[string]any{
		"packages": []map[string]any{
			{"code": "SWM", "values": []any{720, 1, 80, 25, 40}},
			{"code": "XYZ", "values": []any{1, 2, 3}},
			{"code": "WLK", "values": []any{9000, 1, 75, 180}},
		},
	}
	data, err := json.Marshal(payload)
	require.NoError(t, err)

	rec := postJSON(t, router, "/api/workouts/batch", string(data))
	require.Equal(t, http.StatusOK, rec.Code)

	var body batchResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))

	require.Len(t, body.Results, 3)
	assert.Equal(t, 2, body.Succeeded)
	assert.Equal(t, 1, body.Failed)

	require.NotNil(t, body.Results[0].Report)
	assert.InDelta(t, 336.0, body.Results[0].Report.Calories, 1e-9)

	assert.Nil(t, body.Results[1].Report)
	assert.Equal(t, "XYZ", body.Results[1].Code)
	assert.Contains(t, body.Results[1].Error, "unrecognized workout type")

	require.NotNil(t, body.Results[2].Report)
	assert.Equal(t, "SportsWalking", body.Results[2].Report.TrainingType)
	assert.InDelta(t, 157.5, body.Results[2].Report.Calories, 1e-9)
}

func TestBatchEndpointKeepsResultsAroundZeroDuration(t *testing.T) {
	router, _ := setupTestRouter(t)

	rec := postJSON(t, router, "/api/workouts/batch",
		`{"packages":[{"code":"RUN","values":[15000,1,75]},{"code":"RUN","values":[15000,0,75]}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body batchResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Results, 2)
	assert.Equal(t, 1, body.Succeeded)
	assert.Equal(t, 1, body.Failed)

	require.NotNil(t, body.Results[0].Report)
	assert.InDelta(t, 699.75, body.Results[0].Report.Calories, 1e-9)

	assert.Nil(t, body.Results[1].Report)
	assert.Contains(t, body.Results[1].Error, "not finite")
}

func TestWriteJSONReportsEncodingFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, map[string]float64{"speed": math.Inf(1)})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for unencodable payload, got %d", rec.Code)
	}
	var body errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("expected JSON error body: %v", err)
	}
	if body.Error != "Internal error" {
		t.Fatalf("unexpected error body: %+v", body)
	}
}

func TestBatchEndpointValidatesSize(t *testing.T) {
	router, _ := setupTestRouter(t)

	rec := postJSON(t, router, "/api/workouts/batch", `{"packages":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for empty batch, got %d", rec.Code)
	}

	var buf bytes.Buffer
	buf.WriteString(`{"packages":[`)
	for i := 0; i <= maxBatchSize; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(`{"code":"RUN","values":[15000,1,75]}`)
	}
	buf.WriteString(`]}`)

	rec = postJSON(t, router, "/api/workouts/batch", buf.String())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for oversized batch, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	registry := prometheus.NewRegistry()
	handler := NewHandler(WithRegistry(registry))
	router := NewRouter(handler, zaptest.NewLogger(t), WithLogging(false))

	postJSON(t, router, "/api/workouts/report", `{"code":"SWM","values":[720,1,80,25,40]}`)

	req := httptest.NewRequest(http.MethodGet, "/api/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	data, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), `fitness_tracker_reports_total{kind="Swimming"} 1`)
}
