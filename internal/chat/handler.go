package chat

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lexiguard-backend/internal/llm"
	"lexiguard-backend/internal/shared/server/respond"
)

type chatRequest struct {
	DocumentContext string    `json:"document_context"`
	Message         string    `json:"message"`
	History         []Message `json:"history"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// Handler serves POST /api/chat.
type Handler struct {
	Stage *Stage
}

func NewHandler(stage *Stage) *Handler {
	return &Handler{Stage: stage}
}

// RegisterRoutes attaches the chat route; extra handlers (rate limiting) run first.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, pre ...gin.HandlerFunc) {
	rg.POST("/chat", append(pre, h.chat)...)
}

func (h *Handler) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid JSON body", nil)
		return
	}

	// The history slice is owned by this request only.
	turn := Turn{
		DocumentContext: req.DocumentContext,
		Question:        req.Message,
		History:         append([]Message(nil), req.History...),
	}
	reply, err := h.Stage.Respond(c.Request.Context(), turn)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidTurn):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, context.DeadlineExceeded):
			respond.Error(c, http.StatusGatewayTimeout, "model_timeout", "The assistant took too long to answer.", nil)
		case errors.Is(err, llm.ErrNotConfigured):
			respond.Error(c, http.StatusServiceUnavailable, "model_unavailable", "The chat service is not configured.", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "chat_failed", "An error occurred while answering.", nil)
		}
		return
	}
	respond.OK(c, chatResponse{Reply: reply})
}
