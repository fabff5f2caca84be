package limiter

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/time/rate"
)

func TestGetLimiterReusesPerIP(t *testing.T) {
	l := NewIPRateLimiter(1, 2)

	first := l.GetLimiter("10.0.0.1")
	if first == nil {
		t.Fatal("GetLimiter returned nil")
	}
	if l.GetLimiter("10.0.0.1") != first {
		t.Error("same IP produced a different limiter instance")
	}
	if l.GetLimiter("10.0.0.2") == first {
		t.Error("different IPs share a limiter instance")
	}
}

func TestMiddlewareEnforcesBurst(t *testing.T) {
	// A tiny refill rate makes the burst the effective budget for the test.
	l := NewIPRateLimiter(rate.Limit(0.001), 2)

	served := 0
	handler := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served++
	}))

	statuses := make([]int, 0, 3)
	for n := 0; n < 3; n++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		statuses = append(statuses, rr.Code)
	}

	if served != 2 {
		t.Errorf("handler served %d requests, want 2", served)
	}
	if statuses[2] != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want 429", statuses[2])
	}

	// A different IP has its own budget.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("fresh IP status = %d, want 200", rr.Code)
	}
}
