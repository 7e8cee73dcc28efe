package history

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lexiguard-backend/internal/shared/server/middleware"
	"lexiguard-backend/internal/shared/server/respond"
)

// Handler serves the per-user analysis history. Routes must sit behind
// middleware.Auth.
type Handler struct {
	Service *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Service: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyses", h.save)
	rg.GET("/analyses", h.list)
}

func (h *Handler) save(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
		return
	}
	var in SaveInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid JSON body", nil)
		return
	}
	if _, err := h.Service.Save(c.Request.Context(), userID, in); err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"status": "success"})
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
		return
	}
	records, err := h.Service.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, records)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidRecord):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrStoreUnavailable):
		respond.Error(c, http.StatusServiceUnavailable, "store_unavailable", "History is temporarily unavailable.", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal", "internal error", nil)
	}
}
