package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Vecinus/vecinus/config"
	"github.com/Vecinus/vecinus/service"
	"github.com/gin-gonic/gin"
)

func newChatbotTestRouter(upstream string) *gin.Engine {
	h := NewChatbotHandler(service.NewChatbotService(&config.ChatbotConfig{BaseURL: upstream}))
	router := gin.New()
	router.Use(fakeAuth("Maria Garcia", "las-flores", "vecino"))
	router.POST("/api/comunities/:id/chatbot", h.Ask)
	router.POST("/api/comunities/:id/documents", h.IngestDocument)
	return router
}

func TestChatbotAsk(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/comunities/las-flores/chatbot" {
			t.Errorf("Upstream path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{"answer": "La piscina abre a las 10:00."})
	}))
	defer upstream.Close()

	router := newChatbotTestRouter(upstream.URL)

	req := httptest.NewRequest(http.MethodPost, "/api/comunities/las-flores/chatbot?request=horario+piscina", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Ask failed: %s", w.Body.String())
	}
	var answer service.ChatAnswer
	if err := json.Unmarshal(w.Body.Bytes(), &answer); err != nil {
		t.Fatalf("Parsing response: %v", err)
	}
	if answer.Answer != "La piscina abre a las 10:00." {
		t.Errorf("Answer = %q", answer.Answer)
	}
}

func TestChatbotAskValidation(t *testing.T) {
	router := newChatbotTestRouter("http://localhost:1")

	// Missing question
	req := httptest.NewRequest(http.MethodPost, "/api/comunities/las-flores/chatbot", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without a question, got %d", w.Code)
	}

	// Foreign community
	req = httptest.NewRequest(http.MethodPost, "/api/comunities/los-olivos/chatbot?request=hola", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for a foreign community, got %d", w.Code)
	}
}

func TestChatbotAskUpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	router := newChatbotTestRouter(upstream.URL)

	req := httptest.NewRequest(http.MethodPost, "/api/comunities/las-flores/chatbot?request=hola", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Errorf("Expected 502 when the assistant is down, got %d", w.Code)
	}
}

func TestChatbotIngestDocument(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/comunities/las-flores/documents" {
			t.Errorf("Upstream path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]int{"chunks": 4})
	}))
	defer upstream.Close()

	router := newChatbotTestRouter(upstream.URL)

	body, _ := json.Marshal(IngestDocumentRequest{
		Title:   "Normas de la piscina",
		Content: "Horario de verano: 10:00 a 21:00.",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/comunities/las-flores/documents", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("IngestDocument failed: %s", w.Body.String())
	}
	var result service.IngestResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("Parsing response: %v", err)
	}
	if result.Chunks != 4 {
		t.Errorf("Chunks = %d, want 4", result.Chunks)
	}
}

func TestChatbotIngestDocumentValidation(t *testing.T) {
	router := newChatbotTestRouter("http://localhost:1")

	body, _ := json.Marshal(map[string]string{"title": "Normas"})
	req := httptest.NewRequest(http.MethodPost, "/api/comunities/las-flores/documents", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without content, got %d", w.Code)
	}
}
