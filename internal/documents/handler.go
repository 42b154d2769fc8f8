package documents

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/telemetry"
)

const maxUploadBytes = 10 << 20

// Handler wires HTTP handlers to the documents service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents", h.upload)
	rg.POST("/documents/text", h.createFromText)
	rg.GET("/documents", h.list)
	rg.GET("/documents/current", h.current)
	rg.GET("/documents/:id", h.get)
	rg.DELETE("/documents/:id", h.remove)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	defer file.Close()

	doc, err := h.Svc.Upload(c.Request.Context(), userID, header.Filename, file)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid upload", nil)
			return
		}
		telemetry.Error("document upload failed", map[string]any{"error": err.Error(), "user_id": userID})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to store document", nil)
		return
	}

	respond.JSON(c, http.StatusCreated, toDocumentResponse(doc))
}

func (h *Handler) createFromText(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req createFromTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "text is required", nil)
		return
	}

	doc, err := h.Svc.CreateFromText(c.Request.Context(), userID, req.Text)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "text is required", nil)
			return
		}
		telemetry.Error("document create from text failed", map[string]any{"error": err.Error(), "user_id": userID})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to store document", nil)
		return
	}

	respond.JSON(c, http.StatusCreated, toDocumentResponse(doc))
}

func (h *Handler) current(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	doc, err := h.Svc.Current(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "no documents uploaded yet", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch document", nil)
		return
	}

	respond.JSON(c, http.StatusOK, toDocumentResponse(doc))
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	documentID := c.Param("id")

	doc, err := h.Svc.Get(c.Request.Context(), userID, documentID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "document id is required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch document", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, toDocumentResponse(doc))
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	docs, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list documents", nil)
		return
	}

	items := make([]DocumentResponse, 0, len(docs))
	for _, d := range docs {
		items = append(items, toDocumentResponse(d))
	}

	respond.JSON(c, http.StatusOK, gin.H{"items": items, "limit": limit, "offset": offset})
}

func (h *Handler) remove(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	documentID := c.Param("id")

	if err := h.Svc.Delete(c.Request.Context(), userID, documentID); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "document id is required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete document", nil)
		}
		return
	}

	c.Status(http.StatusNoContent)
}
