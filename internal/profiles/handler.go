package profiles

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
)

// FragmentSource resolves a completed parse fragment for merging.
// Implementations translate their own errors into this package's
// sentinels (ErrNotFound, ErrUnauthorized, ErrFragmentNotReady,
// ErrParseFailure).
type FragmentSource interface {
	CompletedFragment(ctx context.Context, userID, fragmentID string) (Fragment, error)
}

// Handler wires HTTP handlers to the profiles service.
type Handler struct {
	Svc       *Service
	Fragments FragmentSource
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, fragments FragmentSource) *Handler {
	return &Handler{Svc: svc, Fragments: fragments}
}

// RegisterRoutes attaches profile routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/profiles", h.create)
	rg.GET("/profiles", h.list)
	rg.GET("/profiles/:id", h.get)
	rg.PATCH("/profiles/:id", h.rename)
	rg.DELETE("/profiles/:id", h.delete)

	rg.PATCH("/profiles/:id/sections/:section", h.updateSection)
	rg.POST("/profiles/:id/sections/:section/save", h.saveSection)
	rg.POST("/profiles/:id/save", h.saveAll)
	rg.POST("/profiles/:id/merge/:fragmentId", h.mergeFragment)

	rg.POST("/profiles/:id/jobs", h.addJob)
	rg.PUT("/profiles/:id/jobs/:entryId", h.updateJob)
	rg.DELETE("/profiles/:id/jobs/:entryId", h.deleteJob)
	rg.POST("/profiles/:id/education", h.addEducation)
	rg.PUT("/profiles/:id/education/:entryId", h.updateEducation)
	rg.DELETE("/profiles/:id/education/:entryId", h.deleteEducation)
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req createProfileRequest
	// Body is optional; an empty one yields the default name.
	_ = c.ShouldBindJSON(&req)

	doc, err := h.Svc.Create(c.Request.Context(), userID, req.Name)
	if err != nil {
		h.fail(c, err, "failed to create profile")
		return
	}
	respond.JSON(c, http.StatusCreated, toSummary(doc))
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	docs, err := h.Svc.List(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err, "failed to list profiles")
		return
	}
	out := make([]ProfileSummary, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toSummary(doc))
	}
	respond.JSON(c, http.StatusOK, out)
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	engine, err := h.Svc.Engine(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to load profile")
		return
	}
	respond.JSON(c, http.StatusOK, toProfileResponse(engine))
}

func (h *Handler) rename(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req renameProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "name is required", nil)
		return
	}

	if err := h.Svc.Rename(c.Request.Context(), userID, c.Param("id"), req.Name); err != nil {
		h.fail(c, err, "failed to rename profile")
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) delete(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	if err := h.Svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.fail(c, err, "failed to delete profile")
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) updateSection(c *gin.Context) {
	engine, section, ok := h.engineAndSection(c)
	if !ok {
		return
	}

	var patch SectionPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid patch body", nil)
		return
	}

	if err := engine.UpdateSection(section, patch); err != nil {
		h.fail(c, err, "failed to update section")
		return
	}
	respond.JSON(c, http.StatusOK, toProfileResponse(engine))
}

func (h *Handler) saveSection(c *gin.Context) {
	engine, section, ok := h.engineAndSection(c)
	if !ok {
		return
	}

	// Contact email and phone are required at submit time, not at
	// storage time; partial data is otherwise acceptable.
	if section == SectionContactInfo {
		ci := engine.Snapshot().ContactInfo
		if strings.TrimSpace(ci.Email) == "" || strings.TrimSpace(ci.Phone) == "" {
			respond.Error(c, http.StatusBadRequest, "validation_error", "email and phone are required", nil)
			return
		}
	}

	if err := engine.WriteSectionThrough(c.Request.Context(), section); err != nil {
		h.fail(c, err, "failed to save section")
		return
	}
	respond.JSON(c, http.StatusOK, toProfileResponse(engine))
}

func (h *Handler) saveAll(c *gin.Context) {
	engine, ok := h.engine(c)
	if !ok {
		return
	}
	if err := engine.SaveAll(c.Request.Context()); err != nil {
		h.fail(c, err, "failed to save profile")
		return
	}
	respond.JSON(c, http.StatusOK, toProfileResponse(engine))
}

func (h *Handler) mergeFragment(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	engine, ok := h.engine(c)
	if !ok {
		return
	}
	if h.Fragments == nil {
		respond.Error(c, http.StatusServiceUnavailable, "parse_unavailable", "parse pipeline not configured", nil)
		return
	}

	frag, err := h.Fragments.CompletedFragment(c.Request.Context(), userID, c.Param("fragmentId"))
	if err != nil {
		h.fail(c, err, "failed to fetch fragment")
		return
	}

	engine.MergeParsedFragment(frag)
	respond.JSON(c, http.StatusOK, toProfileResponse(engine))
}

func (h *Handler) addJob(c *gin.Context) {
	engine, ok := h.engine(c)
	if !ok {
		return
	}
	var req jobEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid job entry", nil)
		return
	}
	entry := engine.AddJobEntry(req.toEntry())
	respond.JSON(c, http.StatusCreated, entry)
}

func (h *Handler) updateJob(c *gin.Context) {
	engine, ok := h.engine(c)
	if !ok {
		return
	}
	var req jobEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid job entry", nil)
		return
	}
	if err := engine.UpdateJobEntry(c.Param("entryId"), req.toEntry()); err != nil {
		h.fail(c, err, "failed to update job entry")
		return
	}
	respond.JSON(c, http.StatusOK, toProfileResponse(engine))
}

func (h *Handler) deleteJob(c *gin.Context) {
	engine, ok := h.engine(c)
	if !ok {
		return
	}
	if err := engine.DeleteJobEntry(c.Param("entryId")); err != nil {
		h.fail(c, err, "failed to delete job entry")
		return
	}
	respond.JSON(c, http.StatusOK, toProfileResponse(engine))
}

func (h *Handler) addEducation(c *gin.Context) {
	engine, ok := h.engine(c)
	if !ok {
		return
	}
	var req educationEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid education entry", nil)
		return
	}
	entry := engine.AddEducationEntry(req.toEntry())
	respond.JSON(c, http.StatusCreated, entry)
}

func (h *Handler) updateEducation(c *gin.Context) {
	engine, ok := h.engine(c)
	if !ok {
		return
	}
	var req educationEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid education entry", nil)
		return
	}
	if err := engine.UpdateEducationEntry(c.Param("entryId"), req.toEntry()); err != nil {
		h.fail(c, err, "failed to update education entry")
		return
	}
	respond.JSON(c, http.StatusOK, toProfileResponse(engine))
}

func (h *Handler) deleteEducation(c *gin.Context) {
	engine, ok := h.engine(c)
	if !ok {
		return
	}
	if err := engine.DeleteEducationEntry(c.Param("entryId")); err != nil {
		h.fail(c, err, "failed to delete education entry")
		return
	}
	respond.JSON(c, http.StatusOK, toProfileResponse(engine))
}

func (h *Handler) engine(c *gin.Context) (*Engine, bool) {
	userID := middleware.UserIDFromContext(c)
	engine, err := h.Svc.Engine(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to load profile")
		return nil, false
	}
	return engine, true
}

func (h *Handler) engineAndSection(c *gin.Context) (*Engine, Section, bool) {
	section := Section(c.Param("section"))
	if !ValidSection(section) {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unknown section", nil)
		return nil, "", false
	}
	engine, ok := h.engine(c)
	if !ok {
		return nil, "", false
	}
	return engine, section, true
}

// fail converts service errors into the standard error envelope. Every
// failure is scoped to the single request that triggered it.
func (h *Handler) fail(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "profile not found", nil)
	case errors.Is(err, ErrUnauthorized):
		respond.Error(c, http.StatusForbidden, "forbidden", "profile belongs to another user", nil)
	case errors.Is(err, ErrInvalidSection):
		respond.Error(c, http.StatusBadRequest, "validation_error", "unknown section", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrWriteInFlight):
		respond.Error(c, http.StatusConflict, "write_in_flight", "a save for this section is already in progress", nil)
	case errors.Is(err, ErrFragmentNotReady):
		respond.Error(c, http.StatusConflict, "fragment_not_ready", "fragment has not finished parsing", nil)
	case errors.Is(err, ErrParseFailure):
		respond.Error(c, http.StatusUnprocessableEntity, "parse_failed", "parsing failed", nil)
	case errors.Is(err, ErrRemoteRead), errors.Is(err, ErrRemoteWrite):
		respond.Error(c, http.StatusBadGateway, "store_unavailable", fallback, nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
