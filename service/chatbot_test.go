package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Vecinus/vecinus/config"
)

func TestChatbotServiceAsk(t *testing.T) {
	var gotPath, gotQuestion string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuestion = r.URL.Query().Get("request")
		json.NewEncoder(w).Encode(map[string]any{
			"answer":     "La piscina abre de 10:00 a 21:00.",
			"source":     map[string]string{"type": "acta", "reference": "a1"},
			"disclaimer": "Respuesta generada automáticamente.",
		})
	}))
	defer server.Close()

	svc := NewChatbotService(&config.ChatbotConfig{BaseURL: server.URL})

	answer, err := svc.Ask(context.Background(), "las-flores", "¿Cuál es el horario de la piscina?")
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}

	if gotPath != "/comunities/las-flores/chatbot" {
		t.Errorf("Path = %q", gotPath)
	}
	if gotQuestion != "¿Cuál es el horario de la piscina?" {
		t.Errorf("Question = %q", gotQuestion)
	}
	if answer.Answer != "La piscina abre de 10:00 a 21:00." {
		t.Errorf("Answer = %q", answer.Answer)
	}
	if answer.Source == nil || answer.Source.Reference != "a1" {
		t.Errorf("Source = %+v", answer.Source)
	}
}

func TestChatbotServiceAskEmptyQuestion(t *testing.T) {
	svc := NewChatbotService(&config.ChatbotConfig{BaseURL: "http://localhost:1"})
	if _, err := svc.Ask(context.Background(), "las-flores", ""); err == nil {
		t.Error("Expected an error for an empty question")
	}
}

func TestChatbotServiceAskErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := NewChatbotService(&config.ChatbotConfig{BaseURL: server.URL})
	if _, err := svc.Ask(context.Background(), "las-flores", "hola"); err == nil {
		t.Error("Expected an error for HTTP 500")
	}
}

func TestChatbotServiceIngestDocument(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]int{"chunks": 7})
	}))
	defer server.Close()

	svc := NewChatbotService(&config.ChatbotConfig{BaseURL: server.URL})

	result, err := svc.IngestDocument(context.Background(), "las-flores", "Normas de la piscina", "Horario de verano...")
	if err != nil {
		t.Fatalf("IngestDocument failed: %v", err)
	}

	if gotPath != "/comunities/las-flores/documents" {
		t.Errorf("Path = %q", gotPath)
	}
	if gotBody["title"] != "Normas de la piscina" || gotBody["content"] != "Horario de verano..." {
		t.Errorf("Body = %+v", gotBody)
	}
	if result.Chunks != 7 {
		t.Errorf("Chunks = %d, want 7", result.Chunks)
	}
}

func TestChatbotServiceIngestDocumentValidation(t *testing.T) {
	svc := NewChatbotService(&config.ChatbotConfig{BaseURL: "http://localhost:1"})

	if _, err := svc.IngestDocument(context.Background(), "las-flores", "", "contenido"); err == nil {
		t.Error("Expected an error for a missing title")
	}
	if _, err := svc.IngestDocument(context.Background(), "las-flores", "titulo", ""); err == nil {
		t.Error("Expected an error for missing content")
	}
}
