package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newRateLimitedRouter(limiter *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)

	groupFor := func(c *gin.Context) string {
		if c.Request.Method == http.MethodPost && c.FullPath() == "/api/v1/fragments" {
			return "parse"
		}
		if c.Request.Method == http.MethodPost {
			return "write"
		}
		return ""
	}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", "user-1")
		c.Next()
	})
	r.Use(RateLimit(RateLimitConfig{
		GroupFor: groupFor,
		Limiter:  limiter,
		Rules: map[string]RateLimitRule{
			"parse": {Rate: 0.2, Burst: 2},
			"write": {Rate: 5, Burst: 4},
		},
	}))

	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) }
	r.POST("/api/v1/fragments", ok)
	r.POST("/api/v1/profiles", ok)
	r.GET("/api/v1/profiles", ok)
	return r
}

func TestRateLimitSeparatesGroups(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	r := newRateLimitedRouter(limiter)

	// Exhaust the parse bucket.
	for i := 0; i < 2; i++ {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/fragments", nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("parse request %d expected 200, got %d", i+1, resp.Code)
		}
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/fragments", nil))
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("parse request 3 expected 429, got %d", resp.Code)
	}

	// Write bucket is untouched.
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/profiles", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("write request expected 200, got %d", resp.Code)
	}
}

func TestRateLimitIgnoresUnmatchedRequests(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	r := newRateLimitedRouter(limiter)

	for i := 0; i < 20; i++ {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/profiles", nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("read request %d expected 200, got %d", i+1, resp.Code)
		}
	}
}

func TestRateLimit429IncludesRetryAfter(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	r := newRateLimitedRouter(limiter)

	for i := 0; i < 2; i++ {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/fragments", nil))
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/fragments", nil))
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.Code)
	}

	header := resp.Header().Get("Retry-After")
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds <= 0 {
		t.Fatalf("expected positive Retry-After, got %q", header)
	}
}

func TestRateLimitRefillsOverTime(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	r := newRateLimitedRouter(limiter)

	for i := 0; i < 2; i++ {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/fragments", nil))
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/fragments", nil))
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 before refill, got %d", resp.Code)
	}

	// 0.2 tokens/sec means one token back after 5 seconds.
	now = now.Add(5 * time.Second)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/fragments", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 after refill, got %d", resp.Code)
	}
}

func TestRateLimitKeysByPrincipal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })

	nextUser := "user-1"
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", nextUser)
		c.Next()
	})
	r.Use(RateLimit(RateLimitConfig{
		GroupFor: func(c *gin.Context) string { return "parse" },
		Limiter:  limiter,
		Rules:    map[string]RateLimitRule{"parse": {Rate: 0.2, Burst: 1}},
	}))
	r.POST("/api/v1/fragments", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/fragments", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("first user request expected 200, got %d", resp.Code)
	}
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/fragments", nil))
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("first user second request expected 429, got %d", resp.Code)
	}

	nextUser = "user-2"
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/fragments", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("second user expected independent bucket, got %d", resp.Code)
	}
}
