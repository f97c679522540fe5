package handlers

import (
	"net/http"

	"medibook/middleware"
	"medibook/services/chat"
	"medibook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChatHandler serves the support messaging endpoints.
type ChatHandler struct {
	Service chat.ChatService
	Logger  *zap.Logger
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(svc chat.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{Service: svc, Logger: logger}
}

// MessagesHandler handles GET /api/chat/messages/:userId.
func (h *ChatHandler) MessagesHandler(c *gin.Context) {
	userID, _, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse{Message: "Authentication required"})
		return
	}

	messages, err := h.Service.GetConversation(userID, c.Param("userId"))
	if err != nil {
		h.Logger.Error("Failed to load conversation", zap.String("userID", userID), zap.Error(err))
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// ConversationsHandler handles GET /api/chat/conversations.
func (h *ChatHandler) ConversationsHandler(c *gin.Context) {
	userID, role, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse{Message: "Authentication required"})
		return
	}

	conversations, err := h.Service.ListConversations(userID, role)
	if err != nil {
		h.Logger.Error("Failed to list conversations", zap.String("userID", userID), zap.Error(err))
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conversations)
}

// SendHandler handles POST /api/chat/send.
func (h *ChatHandler) SendHandler(c *gin.Context) {
	userID, _, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse{Message: "Authentication required"})
		return
	}

	var req struct {
		ReceiverID string `json:"receiverId" binding:"required"`
		Message    string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid chat request", err.Error())
		return
	}

	msg, err := h.Service.SendMessage(userID, req.ReceiverID, req.Message)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// MarkReadHandler handles PUT /api/chat/mark-read/:userId.
func (h *ChatHandler) MarkReadHandler(c *gin.Context) {
	userID, _, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse{Message: "Authentication required"})
		return
	}

	if err := h.Service.MarkRead(userID, c.Param("userId")); err != nil {
		h.Logger.Error("Failed to mark messages read", zap.String("userID", userID), zap.Error(err))
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Messages marked as read"})
}
