package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Vecinus/vecinus/config"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("testpass"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Hashing password: %v", err)
	}
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:        "test-secret",
			TokenExpireHours: 24,
		},
		Users: []config.User{
			{
				Username:     "mgarcia",
				PasswordHash: string(hash),
				Name:         "Maria Garcia",
				Community:    "las-flores",
				Role:         "presidente",
			},
		},
	}
}

func TestAuthHandlerLogin(t *testing.T) {
	handler := NewAuthHandler(testConfig(t))

	tests := []struct {
		name           string
		body           map[string]string
		expectedStatus int
	}{
		{
			name:           "valid login",
			body:           map[string]string{"username": "mgarcia", "password": "testpass"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid username",
			body:           map[string]string{"username": "wronguser", "password": "testpass"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "invalid password",
			body:           map[string]string{"username": "mgarcia", "password": "wrongpass"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "missing fields",
			body:           map[string]string{"username": "mgarcia"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.POST("/api/auth/login", handler.Login)

			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestAuthHandlerLoginResponse(t *testing.T) {
	handler := NewAuthHandler(testConfig(t))

	router := gin.New()
	router.POST("/api/auth/login", handler.Login)

	body, _ := json.Marshal(map[string]string{"username": "mgarcia", "password": "testpass"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Login failed: %s", w.Body.String())
	}

	var resp LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Parsing response: %v", err)
	}
	if resp.Token == "" {
		t.Error("Expected a token")
	}
	if resp.Name != "Maria Garcia" {
		t.Errorf("Name = %q", resp.Name)
	}
	if resp.Community != "las-flores" {
		t.Errorf("Community = %q", resp.Community)
	}
	if resp.Role != "presidente" {
		t.Errorf("Role = %q", resp.Role)
	}
}

func TestGetCurrentUser(t *testing.T) {
	handler := NewAuthHandler(testConfig(t))

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("username", "mgarcia")
		c.Set("name", "Maria Garcia")
		c.Set("community", "las-flores")
		c.Set("role", "presidente")
	})
	router.GET("/api/auth/me", handler.GetCurrentUser)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Parsing response: %v", err)
	}
	if resp["username"] != "mgarcia" || resp["community"] != "las-flores" {
		t.Errorf("Unexpected response: %+v", resp)
	}
}
