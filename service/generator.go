package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Vecinus/vecinus/config"
	"github.com/Vecinus/vecinus/model"
	"github.com/Vecinus/vecinus/workflow"
	"github.com/google/uuid"
)

// MaxAudioBytes is the upload cap the generation collaborator accepts.
const MaxAudioBytes = 150 * 1024 * 1024

// GeneratorService is the client for the AI generation collaborator: it
// submits title plus audio and receives structured minutes back. Failures are
// returned whole; callers keep their form state and may resubmit.
type GeneratorService struct {
	config     *config.GeneratorConfig
	httpClient *http.Client
}

// minutesResponse is the collaborator's structured result.
type minutesResponse struct {
	Summary       string       `json:"summary"`
	Topics        []string     `json:"topics"`
	Agreements    []string     `json:"agreements"`
	Tasks         []model.Task `json:"tasks"`
	Transcription string       `json:"transcription"`
}

// generatorError is the collaborator's error envelope.
type generatorError struct {
	Detail string `json:"detail"`
}

var _ workflow.Generator = (*GeneratorService)(nil)

func NewGeneratorService(cfg *config.GeneratorConfig) *GeneratorService {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &GeneratorService{
		config: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Generate implements workflow.Generator: it streams the audio behind the
// locator to the collaborator and assembles the returned minutes into a fresh
// draft acta.
func (s *GeneratorService) Generate(ctx context.Context, req workflow.GenerateRequest) (model.Acta, error) {
	audio, filename, err := openLocator(ctx, req.AudioLocator)
	if err != nil {
		return model.Acta{}, fmt.Errorf("opening audio source: %w", err)
	}
	defer audio.Close()

	body, contentType, err := buildMultipart(req.Title, filename, audio)
	if err != nil {
		return model.Acta{}, fmt.Errorf("building request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", s.config.APIURL+"/api/minutes/transcribe", body)
	if err != nil {
		return model.Acta{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	if s.config.APIToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.config.APIToken)
	}

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return model.Acta{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Acta{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr generatorError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Detail != "" {
			return model.Acta{}, fmt.Errorf("generator API error (HTTP %d): %s", resp.StatusCode, apiErr.Detail)
		}
		return model.Acta{}, fmt.Errorf("generator API error (HTTP %d)", resp.StatusCode)
	}

	var result minutesResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return model.Acta{}, fmt.Errorf("failed to parse response: %w", err)
	}

	now := time.Now()
	return model.Acta{
		ID:               uuid.New().String(),
		Title:            req.Title,
		Date:             now.Format("2006-01-02"),
		ExecutiveSummary: result.Summary,
		Topics:           result.Topics,
		Agreements:       result.Agreements,
		Tasks:            result.Tasks,
		Transcript:       result.Transcription,
		CreatedBy:        req.CreatedBy,
		Community:        req.Community,
		Status:           model.StatusDraft,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// openLocator resolves an audio locator to a readable stream: presigned URLs
// are fetched, anything else is treated as a local file path.
func openLocator(ctx context.Context, locator string) (io.ReadCloser, string, error) {
	if strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://") {
		req, err := http.NewRequestWithContext(ctx, "GET", locator, nil)
		if err != nil {
			return nil, "", err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, "", err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, "", fmt.Errorf("fetching audio: HTTP %d", resp.StatusCode)
		}
		name := filepath.Base(req.URL.Path)
		if name == "/" || name == "." {
			name = "audio"
		}
		return resp.Body, name, nil
	}

	f, err := os.Open(locator)
	if err != nil {
		return nil, "", err
	}
	return f, filepath.Base(locator), nil
}

// buildMultipart assembles the title field and the audio file part. The body
// is buffered; audio uploads are already capped well below memory limits.
func buildMultipart(title, filename string, audio io.Reader) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("title", title); err != nil {
		return nil, "", err
	}

	part, err := writer.CreateFormFile("audio", filename)
	if err != nil {
		return nil, "", err
	}
	n, err := io.Copy(part, io.LimitReader(audio, MaxAudioBytes+1))
	if err != nil {
		return nil, "", err
	}
	if n > MaxAudioBytes {
		return nil, "", fmt.Errorf("audio exceeds the %d byte limit", MaxAudioBytes)
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return &buf, writer.FormDataContentType(), nil
}
