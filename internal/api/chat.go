package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dietpal/backend/internal/llm"
	"github.com/dietpal/backend/internal/service"
	"github.com/dietpal/backend/internal/store"
	"github.com/dietpal/backend/internal/types"
)

// ChatHandler serves the advisor chat endpoints.
type ChatHandler struct {
	chat  *service.ChatService
	store *store.ContextStore
}

// NewChatHandler creates the chat handler.
func NewChatHandler(chat *service.ChatService, contextStore *store.ContextStore) *ChatHandler {
	return &ChatHandler{chat: chat, store: contextStore}
}

// RegisterRoutes registers the chat routes on the group.
func (h *ChatHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/chat", h.Chat)
	r.POST("/chat/clear", h.Clear)
}

// Chat answers one conversation turn.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req types.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message required"})
		return
	}

	resp, err := h.chat.Respond(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrMessageRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "message required"})
			return
		}

		log.Printf("Chat error: %v", err)
		status := llm.Status(err)
		c.JSON(status, gin.H{
			"error":   chatErrorMessage(status),
			"details": llm.ErrorDetails(err),
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func chatErrorMessage(status int) string {
	switch status {
	case http.StatusTooManyRequests:
		return "AI service rate limit reached. Please wait and try again."
	case http.StatusUnauthorized:
		return "AI provider authentication failed. Check HF_API_TOKEN."
	case http.StatusPaymentRequired:
		return "AI provider billing/credits issue (HF 402)."
	case http.StatusServiceUnavailable:
		return "AI model is warming up. Please retry in a few seconds."
	default:
		return "Failed to generate response"
	}
}

type clearRequest struct {
	ChatKey string `json:"chatKey"`
}

// Clear deletes the stored history and context for a conversation.
func (h *ChatHandler) Clear(c *gin.Context) {
	var req clearRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ChatKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "chatKey required"})
		return
	}

	if err := h.store.Clear(c.Request.Context(), req.ChatKey); err != nil {
		log.Printf("Failed to clear chat memory for %s: %v", req.ChatKey, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear chat memory"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"cleared": true})
}
