package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	googleauth "resume-builder/internal/auth"
	"resume-builder/internal/documents"
	"resume-builder/internal/fragments"
	"resume-builder/internal/jobads"
	"resume-builder/internal/profiles"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/users"
)

// RouterDeps carries the handlers required to build the HTTP router.
type RouterDeps struct {
	Config           config.Config
	DocumentsHandler *documents.Handler
	FragmentsHandler *fragments.Handler
	ProfilesHandler  *profiles.Handler
	JobAdsHandler    *jobads.Handler
	UsersHandler     *users.Handler
	GoogleAuth       *googleauth.GoogleService
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(),
		middleware.RateLimit(rateLimits()),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/metrics", metrics.Handler())

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.UsersHandler != nil {
		deps.UsersHandler.RegisterRoutes(api)
	}
	if deps.DocumentsHandler != nil {
		deps.DocumentsHandler.RegisterRoutes(api)
	}
	if deps.FragmentsHandler != nil {
		deps.FragmentsHandler.RegisterRoutes(api)
	}
	if deps.ProfilesHandler != nil {
		deps.ProfilesHandler.RegisterRoutes(api)
	}
	if deps.JobAdsHandler != nil {
		deps.JobAdsHandler.RegisterRoutes(api)
	}

	return r
}

// rateLimits throttles the LLM-backed endpoints harder than plain CRUD.
func rateLimits() middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			"parse": {Rate: 0.2, Burst: 3},
			"write": {Rate: 5, Burst: 20},
		},
		GroupFor: func(c *gin.Context) string {
			path := c.FullPath()
			switch {
			case c.Request.Method == http.MethodPost && (path == "/api/v1/fragments" || path == "/api/v1/job-ads/parse"):
				return "parse"
			case c.Request.Method == http.MethodPost || c.Request.Method == http.MethodPut ||
				c.Request.Method == http.MethodPatch || c.Request.Method == http.MethodDelete:
				if strings.HasPrefix(path, "/api/v1/") {
					return "write"
				}
				return ""
			default:
				return ""
			}
		},
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
