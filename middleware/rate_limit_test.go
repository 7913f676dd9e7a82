package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newRateLimitedRouter(limit int) *gin.Engine {
	router := gin.New()
	router.Use(RequestID())
	router.Use(RateLimit(limit, time.Minute))
	router.GET("/api/actas", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"actas": []string{}})
	})
	return router
}

func TestRateLimitCapsPerClient(t *testing.T) {
	router := newRateLimitedRouter(3)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/actas", nil)
		req.RemoteAddr = "203.0.113.7:41000"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Request %d: expected status 200, got %d", i+1, w.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/actas", nil)
	req.RemoteAddr = "203.0.113.7:41000"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("Expected status 429 after the limit, got %d", w.Code)
	}
}

func TestRateLimitSeparatesClients(t *testing.T) {
	router := newRateLimitedRouter(2)

	// Exhaust the first neighbour's allowance
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/actas", nil)
		req.Header.Set("X-Forwarded-For", "10.0.0.1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/actas", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.2")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("A different client should not share the limit, got %d", w.Code)
	}
}

func TestRequestCounterWindowRollover(t *testing.T) {
	counter := &requestCounter{
		counts:      map[string]int{"10.0.0.5": 1},
		windowStart: time.Now().Add(-2 * time.Minute),
		limit:       1,
		window:      time.Minute,
	}

	if !counter.take("10.0.0.5") {
		t.Error("Expected a fresh window to admit the request")
	}
	if counter.take("10.0.0.5") {
		t.Error("Expected the new window to enforce the limit again")
	}
}
