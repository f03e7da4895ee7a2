package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/vetmentor/internal/app/system/metrics"
	"github.com/go-chi/chi/v5"
)

func TestMiddleware_RecordsRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(metrics.Middleware)
	r.Get("/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Handle("/metrics", metrics.Handler())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/sessions/abc123", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d", rec.Code)
	}

	metrics.RecordBookingEvent("request_created")
	metrics.RecordJobRun("session-reminders", true, 50*time.Millisecond)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	out := string(body)

	for _, want := range []string{
		`vetmentor_http_requests_total{method="GET",route="/sessions/{id}",status="418"}`,
		`vetmentor_booking_events_total{event="request_created"}`,
		`vetmentor_job_runs_total{job="session-reminders",outcome="ok"}`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
	if strings.Contains(out, "abc123") {
		t.Error("raw path parameter leaked into labels")
	}
}
