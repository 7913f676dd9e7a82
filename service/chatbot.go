package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Vecinus/vecinus/config"
)

// ChatbotService is the client for the community chatbot collaborator and its
// document-ingestion endpoint. No retry policy: failures surface as a generic
// error and the caller reports them.
type ChatbotService struct {
	baseURL    string
	httpClient *http.Client
}

// ChatAnswerSource names where a chatbot answer came from.
type ChatAnswerSource struct {
	Type      string `json:"type"`
	Reference string `json:"reference,omitempty"`
}

// ChatAnswer is the chatbot's reply to one question.
type ChatAnswer struct {
	Answer     string            `json:"answer"`
	Source     *ChatAnswerSource `json:"source,omitempty"`
	Disclaimer string            `json:"disclaimer,omitempty"`
}

// IngestResult reports how many knowledge chunks a document produced.
type IngestResult struct {
	Chunks int `json:"chunks"`
}

func NewChatbotService(cfg *config.ChatbotConfig) *ChatbotService {
	return &ChatbotService{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Ask sends one question about a community to the chatbot.
func (s *ChatbotService) Ask(ctx context.Context, communityID, question string) (*ChatAnswer, error) {
	if question == "" {
		return nil, fmt.Errorf("question must not be empty")
	}

	endpoint := fmt.Sprintf("%s/comunities/%s/chatbot?request=%s",
		s.baseURL, url.PathEscape(communityID), url.QueryEscape(question))

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chatbot API error (HTTP %d)", resp.StatusCode)
	}

	var answer ChatAnswer
	if err := json.Unmarshal(body, &answer); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &answer, nil
}

// IngestDocument submits a document's text to the community knowledge base.
func (s *ChatbotService) IngestDocument(ctx context.Context, communityID, title, content string) (*IngestResult, error) {
	if title == "" || content == "" {
		return nil, fmt.Errorf("document title and content must not be empty")
	}

	payload, err := json.Marshal(map[string]string{
		"title":   title,
		"content": content,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/comunities/%s/documents", s.baseURL, url.PathEscape(communityID))

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chatbot API error (HTTP %d)", resp.StatusCode)
	}

	var result IngestResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &result, nil
}
