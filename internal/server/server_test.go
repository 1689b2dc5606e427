package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/verte-zerg/liftcalc/internal/formula"
	"github.com/verte-zerg/liftcalc/internal/model"
	"github.com/verte-zerg/liftcalc/internal/state"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestServer() *Server {
	return New(state.Default(), model.AllFormulas, "https://lift.example/")
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestServer(), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestCalculate(t *testing.T) {
	rec := get(t, newTestServer(), "/api/v1/calculate?w=100&r=5")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[calculateResponse](t, rec)
	assert.InDelta(t, 116.6667, resp.Result.Best, 1e-3)
	assert.Len(t, resp.Percentages, 9)
	assert.Len(t, resp.Warmup.Sets, 5)
	assert.Empty(t, resp.Warning)
	assert.Contains(t, resp.ShareURL, "https://lift.example/?")
	assert.Empty(t, resp.Ignored)
}

func TestCalculateWarnsAboveTenReps(t *testing.T) {
	rec := get(t, newTestServer(), "/api/v1/calculate?w=60&r=12")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[calculateResponse](t, rec)
	assert.Equal(t, formula.AccuracyWarning, resp.Warning)
}

func TestCalculateRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name  string
		query string
		want  string
	}{
		{"missing weight", "r=5", "weight must be greater than 0"},
		{"zero weight", "w=0&r=5", "weight must be greater than 0"},
		{"missing reps", "w=100", "reps must be between 1 and 20"},
		{"too many reps", "w=100&r=21", "reps must be between 1 and 20"},
		{"fractional reps", "w=100&r=5.5", "reps must be between 1 and 20"},
	}
	s := newTestServer()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := get(t, s, "/api/v1/calculate?"+tc.query)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.want, decode[errorResponse](t, rec).Error)
		})
	}
}

func TestCalculateReportsIgnoredParameters(t *testing.T) {
	rec := get(t, newTestServer(), "/api/v1/calculate?w=225&r=3&unit=stone&bar=-1")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[calculateResponse](t, rec)
	assert.Len(t, resp.Ignored, 2)
	assert.Equal(t, model.Kilograms, resp.Input.Unit)
}

func TestWarmupUsesQueryUnit(t *testing.T) {
	rec := get(t, newTestServer(), "/api/v1/warmup?weight=225&unit=lb&bar=45")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[warmupResponse](t, rec)
	assert.Equal(t, model.Pounds, resp.Unit)
	require.Len(t, resp.Sets, 5)
	assert.Equal(t, 45.0, resp.Sets[0].Weight)
}

func TestWarmupRequiresWeight(t *testing.T) {
	rec := get(t, newTestServer(), "/api/v1/warmup")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlates(t *testing.T) {
	rec := get(t, newTestServer(), "/api/v1/plates?target=140")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[platesResponse](t, rec)
	assert.Equal(t, 140.0, resp.Result.Total)
	assert.Equal(t, "20 kg bar + 25 kg + 20 kg + 15 kg per side", resp.Description)
	assert.Empty(t, resp.Hint)
}

func TestPlatesWithDisabledPlate(t *testing.T) {
	rec := get(t, newTestServer(), "/api/v1/plates?target=140&plates=%5B1%2C1%2C0%2C1%2C1%2C1%2C1%2C1%5D")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[platesResponse](t, rec)
	assert.Equal(t, "20 kg bar + 25 kg + 20 kg + 10 kg + 5 kg per side", resp.Description)
}

func TestPlatesBelowBar(t *testing.T) {
	rec := get(t, newTestServer(), "/api/v1/plates?target=15")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[platesResponse](t, rec)
	assert.Equal(t, "Weight must be greater than bar weight (20 kg)", resp.Hint)
	assert.Empty(t, resp.Description)
}

func TestStateDoesNotMutateSnapshot(t *testing.T) {
	s := newTestServer()
	rec := get(t, s, "/api/v1/state?w=150&unit=lb")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[stateResponse](t, rec)
	assert.Equal(t, 150.0, resp.State.Weight)
	assert.Equal(t, model.Pounds, resp.State.PlateConfig.Unit)

	rec = get(t, s, "/api/v1/state")
	resp = decode[stateResponse](t, rec)
	assert.Equal(t, state.Default(), resp.State)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- newTestServer().Serve(ctx, l)
	}()

	client := &http.Client{Timeout: 2 * time.Second, Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + l.Addr().String() + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
