package analyses

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"lexiguard-backend/internal/extract"
	"lexiguard-backend/internal/llm"
	"lexiguard-backend/internal/shared/server/middleware"
	"lexiguard-backend/internal/shared/server/respond"
	"lexiguard-backend/internal/shared/storage/object"
	"lexiguard-backend/internal/shared/telemetry"
)

// DocumentKeyHeader carries the archive key of the uploaded document.
const DocumentKeyHeader = "X-Document-Key"

const defaultMaxUploadBytes = 20 << 20

// Handler serves POST /api/analyze.
type Handler struct {
	Pipeline *Pipeline
	// Archive, when set, keeps a copy of every upload. Failures are logged only.
	Archive        object.ObjectStore
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(pipeline *Pipeline, archive object.ObjectStore, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{Pipeline: pipeline, Archive: archive, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches the analyze route; extra handlers (rate limiting) run first.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, pre ...gin.HandlerFunc) {
	rg.POST("/analyze", append(pre, h.analyze)...)
}

func (h *Handler) analyze(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes+1<<20)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "The uploaded file is too large.", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	if fh.Size > h.MaxUploadBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "The uploaded file is too large.", nil)
		return
	}
	persona := strings.TrimSpace(c.PostForm("persona"))
	language := strings.TrimSpace(c.PostForm("language"))
	c.Set(middleware.LogFileNameKey, fh.Filename)
	c.Set(middleware.LogPersonaKey, persona)
	c.Set(middleware.LogLanguageKey, language)

	if err := ValidateInput(persona, language); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}

	f, err := fh.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "could not read uploaded file", nil)
		return
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "could not read uploaded file", nil)
		return
	}
	mediaType := fh.Header.Get("Content-Type")

	if key := h.archive(c.Request.Context(), middleware.UserIDFromContext(c), fh.Filename, mediaType, data); key != "" {
		c.Header(DocumentKeyHeader, key)
	}

	report, err := h.Pipeline.Run(c.Request.Context(), data, mediaType, persona, language)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, report)
}

func (h *Handler) archive(ctx context.Context, owner, fileName, mediaType string, data []byte) string {
	if h.Archive == nil {
		return ""
	}
	key, _, err := h.Archive.Save(ctx, owner, fileName, mediaType, bytes.NewReader(data))
	if err != nil {
		telemetry.Warn("analysis.archive_failed", map[string]any{"file_name": fileName, "error": err})
		return ""
	}
	return key
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, extract.ErrEmptyDocument):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, extract.ErrUnsupportedMediaType):
		respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_media_type", "This file type is not supported. Upload a PDF or an image.", nil)
	case errors.Is(err, extract.ErrExtractionFailed):
		respond.Error(c, http.StatusInternalServerError, "extraction_failed", "Could not extract text from the document.", nil)
	case errors.Is(err, ErrMalformedModelOutput):
		respond.Error(c, http.StatusInternalServerError, "malformed_model_output", "The analysis could not be completed. Please try again.", nil)
	case errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusGatewayTimeout, "model_timeout", "The analysis took too long. Please try again.", nil)
	case errors.Is(err, llm.ErrNotConfigured):
		respond.Error(c, http.StatusServiceUnavailable, "model_unavailable", "The analysis service is not configured.", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "analysis_failed", "An error occurred during analysis.", nil)
	}
}
