package handler

import (
	"net/http"

	"github.com/Vecinus/vecinus/middleware"
	"github.com/Vecinus/vecinus/pkg/logger"
	"github.com/Vecinus/vecinus/service"
	"github.com/gin-gonic/gin"
)

type ChatbotHandler struct {
	chatbotService *service.ChatbotService
}

func NewChatbotHandler(chatbotSvc *service.ChatbotService) *ChatbotHandler {
	return &ChatbotHandler{chatbotService: chatbotSvc}
}

// Ask forwards a question to the community assistant. The question travels in
// the request query parameter, matching the assistant's own API.
func (h *ChatbotHandler) Ask(c *gin.Context) {
	communityID := c.Param("id")
	if communityID != middleware.GetCommunity(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Community mismatch"})
		return
	}

	question := c.Query("request")
	if question == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Question is required"})
		return
	}

	answer, err := h.chatbotService.Ask(c.Request.Context(), communityID, question)
	if err != nil {
		logger.Error(c.Request.Context(), "chatbot request failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Assistant unavailable: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, answer)
}

type IngestDocumentRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// IngestDocument uploads a community document into the assistant's knowledge base.
func (h *ChatbotHandler) IngestDocument(c *gin.Context) {
	communityID := c.Param("id")
	if communityID != middleware.GetCommunity(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Community mismatch"})
		return
	}

	var req IngestDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	result, err := h.chatbotService.IngestDocument(c.Request.Context(), communityID, req.Title, req.Content)
	if err != nil {
		logger.Error(c.Request.Context(), "document ingestion failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Assistant unavailable: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
