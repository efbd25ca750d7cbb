package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homechef-inc/mealsub/internal/infrastructure/auth"
	"github.com/homechef-inc/mealsub/internal/shared/constants"
	"github.com/homechef-inc/mealsub/internal/shared/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(t *testing.T) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	jwtService := auth.NewJWTService("test-secret", "mealsub")
	m := NewAuthMiddleware(jwtService, "admin", logger.Nop())

	r := gin.New()
	r.Use(m.RequireAuth())
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"principal_id": c.GetUint(constants.ContextKeyPrincipalID)})
	})
	r.GET("/admin", m.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r, jwtService
}

func serve(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	r, jwtService := newAuthRouter(t)

	token, err := jwtService.Issue(42, "", time.Hour)
	require.NoError(t, err)

	w := serve(r, "/me", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"principal_id":42}`, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, serve(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "/me", token).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "/me", "Bearer nope").Code)
}

func TestRequireAdmin(t *testing.T) {
	r, jwtService := newAuthRouter(t)

	consumer, err := jwtService.Issue(42, "", time.Hour)
	require.NoError(t, err)
	admin, err := jwtService.Issue(1, "admin", time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, serve(r, "/admin", "Bearer "+consumer).Code)
	assert.Equal(t, http.StatusNoContent, serve(r, "/admin", "Bearer "+admin).Code)
}

func TestRateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter := NewRateLimiter(client, "checkout", 2, time.Minute, logger.Nop())

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if c.GetHeader("X-Principal") == "7" {
			c.Set(constants.ContextKeyPrincipalID, uint(7))
		}
		c.Next()
	})
	r.Use(limiter.Limit())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(principal string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if principal != "" {
			req.Header.Set("X-Principal", principal)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call("7"))
	assert.Equal(t, http.StatusOK, call("7"))
	assert.Equal(t, http.StatusTooManyRequests, call("7"))

	// Anonymous callers are counted separately, by IP.
	assert.Equal(t, http.StatusOK, call(""))

	mr.Close()
	assert.Equal(t, http.StatusOK, call("7"), "redis outage lets requests through")
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(logger.Nop()))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := serve(r, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error occurred")
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(constants.ContextKeyRequestID)) })

	w := serve(r, "/", "")
	assert.NotEmpty(t, w.Header().Get(constants.HeaderXRequestID))
	assert.Equal(t, w.Header().Get(constants.HeaderXRequestID), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(constants.HeaderXRequestID, "req-1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-1", w.Body.String())
}
