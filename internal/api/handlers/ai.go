// Package handlers contains the Gin HTTP handlers for the chat and recipe
// APIs.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ai-chef-server/internal/core/recipe"
	"ai-chef-server/internal/pkg/common"
)

// ChatHandler serves the conversational endpoints.
type ChatHandler struct {
	chats   *recipe.ChatService
	gateway chatGateway
}

// chatGateway is the slice of the store the handler reads directly.
type chatGateway interface {
	ListChats(ctx context.Context, userID string) ([]common.Chat, error)
	ListMessages(ctx context.Context, chatID string) ([]common.Message, error)
}

// NewChatHandler creates a chat handler.
func NewChatHandler(chats *recipe.ChatService, gateway chatGateway) *ChatHandler {
	return &ChatHandler{chats: chats, gateway: gateway}
}

type chatRequest struct {
	ChatID  string `json:"chat_id"`
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// Chat handles POST /ai/chat: appends the user's message, runs a completion
// and returns the normalized assistant reply.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: "invalid request body",
			Details: err.Error(),
		})
		return
	}

	turn, err := h.chats.SendMessage(c.Request.Context(), req.ChatID, req.UserID, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"chat_id": turn.ChatID,
		"message": turn.AssistantMessage,
	})
}

// ListChats handles GET /ai/chats?user_id=...
func (h *ChatHandler) ListChats(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: "user_id is required",
		})
		return
	}

	chats, err := h.gateway.ListChats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, common.NewPersistenceError("list chats", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"chats": chats})
}

// ListMessages handles GET /ai/messages?chat_id=...
func (h *ChatHandler) ListMessages(c *gin.Context) {
	chatID := c.Query("chat_id")
	if chatID == "" {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: "chat_id is required",
		})
		return
	}

	messages, err := h.gateway.ListMessages(c.Request.Context(), chatID)
	if err != nil {
		respondError(c, common.NewPersistenceError("list messages", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// respondError maps service errors to HTTP responses.
func respondError(c *gin.Context, err error) {
	if ie, ok := common.IsIncompleteProposalError(err); ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"code":         common.ErrCodeIncompleteProposal,
			"message":      ie.Reason,
			"raw_proposal": ie.RawProposal,
		})
		return
	}

	switch {
	case common.IsValidationError(err):
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: err.Error(),
		})
	case common.IsCompletionError(err):
		common.LogError("completion failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, common.ErrorResponse{
			Code:    common.ErrCodeAIService,
			Message: "The AI service is temporarily unavailable. Please try again.",
		})
	case err == common.ErrNotFound:
		c.JSON(http.StatusNotFound, common.ErrorResponse{
			Code:    common.ErrCodeNotFound,
			Message: "resource not found",
		})
	case common.IsPersistenceError(err):
		common.LogError("persistence failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, common.ErrorResponse{
			Code:    common.ErrCodePersistence,
			Message: "failed to persist data",
			Details: err.Error(),
		})
	default:
		common.LogError("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, common.ErrorResponse{
			Code:    common.ErrCodeInternalError,
			Message: "internal server error",
		})
	}
}
