package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"
)

func TestLimiter_Window(t *testing.T) {
	l := New(3, time.Hour)
	defer l.Stop()

	now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if ok, _ := l.Allow(ctx, "mentee-1"); !ok {
			t.Fatalf("action %d should be allowed", i+1)
		}
	}
	if ok, _ := l.Allow(ctx, "mentee-1"); ok {
		t.Error("4th action should be throttled")
	}
	if ok, _ := l.Allow(ctx, "mentee-2"); !ok {
		t.Error("other keys have their own window")
	}
	if got, _ := l.Remaining(ctx, "mentee-1"); got != 0 {
		t.Errorf("Remaining = %d, want 0", got)
	}

	now = now.Add(time.Hour + time.Second)
	if ok, _ := l.Allow(ctx, "mentee-1"); !ok {
		t.Error("window should reset after expiry")
	}
	if got, _ := l.Remaining(ctx, "mentee-1"); got != 2 {
		t.Errorf("Remaining = %d, want 2", got)
	}
}

func TestLimiter_Reset(t *testing.T) {
	l := New(1, time.Minute)
	defer l.Stop()
	ctx := context.Background()

	_, _ = l.Allow(ctx, "k")
	if ok, _ := l.Allow(ctx, "k"); ok {
		t.Fatal("expected throttle")
	}
	l.Reset("k")
	if ok, _ := l.Allow(ctx, "k"); !ok {
		t.Error("expected allow after Reset")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded first hop", map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"}, "10.0.0.2:1234", "203.0.113.9"},
		{"real ip", map[string]string{"X-Real-IP": " 198.51.100.4 "}, "10.0.0.2:1234", "198.51.100.4"},
		{"remote addr", nil, "192.0.2.7:5555", "192.0.2.7"},
		{"remote without port", nil, "192.0.2.8", "192.0.2.8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestByIP(t *testing.T) {
	l := New(1, time.Minute)
	defer l.Stop()

	h := ByIP(l, "test")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/", nil)
		req.RemoteAddr = "192.0.2.1:1000"
		h.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Errorf("request %d: status = %d, want %d", i+1, rec.Code, want)
		}
		if i == 0 {
			if got := rec.Header().Get("X-RateLimit-Remaining"); got != "0" {
				t.Errorf("X-RateLimit-Remaining = %q, want 0", got)
			}
		}
	}
}

func TestRedisLimiter(t *testing.T) {
	url := os.Getenv("VETMENTOR_TEST_REDIS_URL")
	if url == "" {
		t.Skip("VETMENTOR_TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	client, err := Connect(ctx, url)
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	defer client.Close()

	prefix := "vetmentor_test:" + time.Now().Format("150405.000000")
	l := NewRedis(client, prefix, 2, time.Minute)

	for i, want := range []bool{true, true, false} {
		ok, err := l.Allow(ctx, "mentee-1")
		if err != nil {
			t.Fatalf("Allow: %v", err)
		}
		if ok != want {
			t.Errorf("action %d: allowed = %v, want %v", i+1, ok, want)
		}
	}
	if rem, _ := l.Remaining(ctx, "mentee-1"); rem != 0 {
		t.Errorf("Remaining = %d, want 0", rem)
	}
}
