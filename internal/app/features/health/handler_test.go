package health_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/vetmentor/internal/app/features/health"
	"github.com/dalemusser/vetmentor/internal/testutil"
	"go.uber.org/zap"
)

type fakeRedis struct{ err error }

func (f fakeRedis) Ping(context.Context) error { return f.err }

type healthBody struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
}

func TestServe_DatabaseConnected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := health.NewHandler(db.Client(), nil, zap.NewNop())

	rec := testutil.NewRecorder()
	handler.Serve(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	rec.AssertStatus(t, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want %q", ct, "application/json")
	}
	var body healthBody
	rec.DecodeJSON(t, &body)
	if body.Status != "ok" || body.Database != "connected" || body.Cache != "" {
		t.Errorf("body = %+v", body)
	}
}

func TestServe_CacheDownIsReported(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := health.NewHandler(db.Client(), fakeRedis{err: errors.New("refused")}, zap.NewNop())

	rec := testutil.NewRecorder()
	handler.Serve(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	rec.AssertStatus(t, http.StatusOK)
	var body healthBody
	rec.DecodeJSON(t, &body)
	if body.Status != "ok" || body.Cache != "disconnected" {
		t.Errorf("body = %+v", body)
	}
}

func TestServe_DatabaseDisconnected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := health.NewHandler(db.Client(), nil, zap.NewNop())

	// A cancelled request context makes the ping fail.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/health", nil).WithContext(ctx)

	rec := testutil.NewRecorder()
	handler.Serve(rec, req)

	rec.AssertStatus(t, http.StatusServiceUnavailable)
	rec.AssertContains(t, `"database":"disconnected"`)
}
