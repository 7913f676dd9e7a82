package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Vecinus/vecinus/middleware"
	"github.com/Vecinus/vecinus/model"
	"github.com/Vecinus/vecinus/pkg/logger"
	"github.com/Vecinus/vecinus/service"
	"github.com/Vecinus/vecinus/workflow"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// audioStorage is the slice of the object store the acta flow needs.
type audioStorage interface {
	UploadAudio(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	GetPresignedURL(ctx context.Context, objectName string) (string, error)
	DeleteAudio(ctx context.Context, objectName string) error
}

// minutesGenerator is the AI collaborator turning audio into a draft acta.
type minutesGenerator interface {
	Generate(ctx context.Context, req workflow.GenerateRequest) (model.Acta, error)
}

type ActasHandler struct {
	audio     audioStorage
	generator minutesGenerator
	store     *service.ActaStore
}

func NewActasHandler(minioSvc *service.MinioService, generatorSvc *service.GeneratorService) *ActasHandler {
	return &ActasHandler{
		audio:     minioSvc,
		generator: generatorSvc,
		store:     service.GetActaStore(),
	}
}

// Generate handles acta generation: it validates the title+audio
// precondition, stores the audio, awaits the AI collaborator and returns the
// draft. Nothing is added to the collection yet; the draft stays with the
// client through review and is only listed once published.
func (h *ActasHandler) Generate(c *gin.Context) {
	community := middleware.GetCommunity(c)
	createdBy := middleware.GetName(c)

	title := c.PostForm("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	file, header, err := c.Request.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No audio provided"})
		return
	}
	defer file.Close()

	if !workflow.IsAudioFile(header.Filename) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is not a supported audio format"})
		return
	}
	if header.Size > service.MaxAudioBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Audio exceeds the 150 MB limit"})
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = "audio/mpeg"
	}

	// Store the audio and hand a presigned URL to the collaborator
	actaID := uuid.New().String()
	objectName := fmt.Sprintf("%s/%s/%s", community, actaID, header.Filename)

	if err := h.audio.UploadAudio(c.Request.Context(), objectName, file, header.Size, contentType); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store audio: " + err.Error()})
		return
	}

	audioURL, err := h.audio.GetPresignedURL(c.Request.Context(), objectName)
	if err != nil {
		h.removeAudio(c, objectName)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate URL: " + err.Error()})
		return
	}

	logger.Info(c.Request.Context(), "generating acta", "acta_id", actaID, "title", title)

	draft, err := h.generator.Generate(c.Request.Context(), workflow.GenerateRequest{
		Title:        title,
		Community:    community,
		CreatedBy:    createdBy,
		AudioLocator: audioURL,
	})
	if err != nil {
		// The client keeps its form state and may resubmit; the stored audio
		// has no draft to belong to anymore.
		logger.Error(c.Request.Context(), "acta generation failed", "acta_id", actaID, "error", err)
		h.removeAudio(c, objectName)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Generation failed: " + err.Error()})
		return
	}
	draft.ID = actaID

	c.JSON(http.StatusOK, draft)
}

// removeAudio deletes an uploaded object that lost its draft.
func (h *ActasHandler) removeAudio(c *gin.Context, objectName string) {
	if err := h.audio.DeleteAudio(c.Request.Context(), objectName); err != nil {
		logger.Warn(c.Request.Context(), "failed to remove orphaned audio", "object", objectName, "error", err)
	}
}

type PublishRequest struct {
	Acta      model.Acta `json:"acta" binding:"required"`
	Signature string     `json:"signature" binding:"required"`
}

// Publish signs a pending draft and prepends it to the community collection.
func (h *ActasHandler) Publish(c *gin.Context) {
	community := middleware.GetCommunity(c)

	var req PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.Acta.Status != model.StatusDraft {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only draft actas can be published"})
		return
	}
	if req.Acta.Community != "" && req.Acta.Community != community {
		c.JSON(http.StatusForbidden, gin.H{"error": "Acta belongs to another community"})
		return
	}

	draft := req.Acta
	draft.Community = community
	if draft.ID == "" {
		draft.ID = uuid.New().String()
	}
	if err := draft.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	signed := model.Sign(draft, req.Signature, middleware.GetName(c), time.Now())
	h.store.Prepend(signed)

	logger.Info(c.Request.Context(), "acta published", "acta_id", signed.ID)
	c.JSON(http.StatusOK, signed)
}

type SignRequest struct {
	Signature string `json:"signature" binding:"required"`
}

// Sign re-signs an already-listed acta, replacing it in place.
func (h *ActasHandler) Sign(c *gin.Context) {
	community := middleware.GetCommunity(c)
	id := c.Param("id")

	var req SignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	acta, ok := h.store.Get(id)
	if !ok || acta.Community != community {
		c.JSON(http.StatusNotFound, gin.H{"error": "Acta not found"})
		return
	}

	signed := model.Sign(acta, req.Signature, middleware.GetName(c), time.Now())
	if !h.store.Replace(signed) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Acta not found"})
		return
	}

	logger.Info(c.Request.Context(), "acta re-signed", "acta_id", signed.ID)
	c.JSON(http.StatusOK, signed)
}

// List returns all actas for the current community, most recent first.
func (h *ActasHandler) List(c *gin.Context) {
	community := middleware.GetCommunity(c)
	actas := h.store.ListByCommunity(community)

	// Return without transcript or signature payloads for the list view
	result := make([]gin.H, len(actas))
	for i, acta := range actas {
		result[i] = gin.H{
			"id":                acta.ID,
			"title":             acta.Title,
			"date":              acta.Date,
			"executive_summary": acta.ExecutiveSummary,
			"status":            acta.Status,
			"created_by":        acta.CreatedBy,
			"created_at":        acta.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			"updated_at":        acta.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}

	c.JSON(http.StatusOK, gin.H{"actas": result})
}

// Get returns a single acta with its full content
func (h *ActasHandler) Get(c *gin.Context) {
	community := middleware.GetCommunity(c)
	id := c.Param("id")

	acta, ok := h.store.Get(id)
	if !ok || acta.Community != community {
		c.JSON(http.StatusNotFound, gin.H{"error": "Acta not found"})
		return
	}

	c.JSON(http.StatusOK, acta)
}
