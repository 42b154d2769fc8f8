package fragments

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the fragments service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches fragment routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/fragments", h.create)
	rg.GET("/fragments", h.list)
	rg.GET("/fragments/:id", h.get)
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req createParseJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	hasDoc := req.DocumentID != ""
	hasText := strings.TrimSpace(req.RawText) != ""
	if hasDoc == hasText {
		respond.Error(c, http.StatusBadRequest, "validation_error", "exactly one of documentId or rawText is required", nil)
		return
	}

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	var job ParseJob
	var err error
	if hasDoc {
		job, err = h.Svc.Create(ctx, userID, req.DocumentID, req.PromptVersion)
	} else {
		job, err = h.Svc.CreateFromText(ctx, userID, req.RawText, req.PromptVersion)
	}
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start parse", nil)
		}
		return
	}

	respond.JSON(c, http.StatusAccepted, gin.H{
		"fragmentId": job.ID,
		"status":     job.Status,
	})
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	jobID := c.Param("id")

	job, err := h.Svc.Get(c.Request.Context(), userID, jobID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "fragment not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "fragment id is required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch fragment", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, toParseJobResponse(job))
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

	jobs, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list fragments", nil)
		return
	}

	items := make([]ParseJobResponse, 0, len(jobs))
	for _, job := range jobs {
		items = append(items, toParseJobResponse(job))
	}

	respond.JSON(c, http.StatusOK, gin.H{"items": items, "limit": limit, "offset": offset})
}
