package handlers

import (
	"context"
	"net/http"
	"strings"

	"nexia/models"
	"nexia/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Chatter is the conversational agent behind the chat endpoints.
type Chatter interface {
	Reply(ctx context.Context, userID, text string) (string, error)
	Reset(ctx context.Context, userID string) error
}

type ChatHandler struct {
	Agent  Chatter
	Logger *zap.Logger
}

func NewChatHandler(agent Chatter, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{Agent: agent, Logger: logger}
}

// HandleChat handles POST /api/ai/chat. A request without user_id starts a
// new conversation whose id is returned for the follow-up turns.
func (h *ChatHandler) HandleChat(c *gin.Context) {
	var req models.AIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, h.Logger, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		utils.JSONError(c, h.Logger, http.StatusBadRequest, "invalid request body", "text must not be empty")
		return
	}
	if req.UserID == "" {
		req.UserID = uuid.New().String()
	}

	reply, err := h.Agent.Reply(c.Request.Context(), req.UserID, req.Text)
	if err != nil {
		if reply == "" {
			h.Logger.Error("HandleChat: agent turn failed", zap.String("userID", req.UserID), zap.Error(err))
			utils.JSONError(c, h.Logger, http.StatusInternalServerError, "failed to process message", err.Error())
			return
		}
		h.Logger.Warn("HandleChat: reply produced but not persisted", zap.String("userID", req.UserID), zap.Error(err))
	}

	c.JSON(http.StatusOK, models.AIResponse{UserID: req.UserID, ResponseText: reply})
}

// ResetChat handles DELETE /api/ai/chat/:userID.
func (h *ChatHandler) ResetChat(c *gin.Context) {
	userID := c.Param("userID")
	if err := h.Agent.Reset(c.Request.Context(), userID); err != nil {
		h.Logger.Error("ResetChat: failed to clear session", zap.String("userID", userID), zap.Error(err))
		utils.JSONError(c, h.Logger, http.StatusInternalServerError, "failed to clear conversation", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "conversation cleared"})
}
