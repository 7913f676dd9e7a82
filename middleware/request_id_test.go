package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newRequestIDRouter() *gin.Engine {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/api/actas", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": GetRequestID(c)})
	})
	return router
}

func TestRequestIDGenerated(t *testing.T) {
	router := newRequestIDRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/actas", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("Expected a generated X-Request-ID header")
	}
}

func TestRequestIDHonorsClientHeader(t *testing.T) {
	router := newRequestIDRouter()

	clientID := "acta-upload-retry-42"
	req := httptest.NewRequest(http.MethodGet, "/api/actas", nil)
	req.Header.Set("X-Request-ID", clientID)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != clientID {
		t.Errorf("Expected request ID %q, got %q", clientID, got)
	}
}

func TestGetRequestIDUnset(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if id := GetRequestID(c); id != "" {
		t.Errorf("Expected empty string outside the middleware, got %q", id)
	}
}
