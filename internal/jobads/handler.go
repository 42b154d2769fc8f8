package jobads

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the job ads service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches job ad routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/job-ads/parse", h.parse)
	rg.GET("/job-ads", h.list)
	rg.GET("/job-ads/:id", h.get)
	rg.DELETE("/job-ads/:id", h.remove)
}

type parseRequest struct {
	RawText string `json:"rawText"`
	URL     string `json:"url"`
}

func (h *Handler) parse(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req parseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid JSON body", nil)
		return
	}

	ad, err := h.Svc.Parse(c.Request.Context(), userID, req.RawText, req.URL)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "rawText or url is required", nil)
		case errors.Is(err, ErrFetchFailed):
			respond.Error(c, http.StatusBadRequest, "fetch_failed", "failed to fetch or parse URL", nil)
		case errors.Is(err, ErrParseFailed):
			respond.Error(c, http.StatusUnprocessableEntity, "parse_failed", "the posting could not be parsed", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to parse job ad", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, ad)
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	adID := c.Param("id")

	ad, err := h.Svc.Get(c.Request.Context(), userID, adID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "job ad not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "job ad id is required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch job ad", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, ad)
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

	ads, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list job ads", nil)
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"items": ads, "limit": limit, "offset": offset})
}

func (h *Handler) remove(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	adID := c.Param("id")

	if err := h.Svc.Delete(c.Request.Context(), userID, adID); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "job ad not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "job ad id is required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete job ad", nil)
		}
		return
	}

	c.Status(http.StatusNoContent)
}
