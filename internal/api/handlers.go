// Package api contains the HTTP handlers of the public site and the admin API
package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aethra/haven/internal/auth"
	apperrors "github.com/aethra/haven/internal/errors"
)

const (
	// SessionCookie carries the admin token for browser navigation
	SessionCookie = "haven_session"

	ctxAdminID    = "admin_id"
	ctxAdminEmail = "admin_email"
)

// Pinger reports whether the database answers
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds the cross-cutting endpoints and middleware
type Handler struct {
	db  Pinger
	jwt *auth.JWTService
}

// NewHandler creates the base handler
func NewHandler(db Pinger, jwt *auth.JWTService) *Handler {
	return &Handler{db: db, jwt: jwt}
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

// RequireAdmin rejects requests without a valid session. Browsers asking for
// a page are sent to the login screen; API clients get a 401.
func (h *Handler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			h.denySession(c, "authentication required")
			return
		}

		claims, err := h.jwt.ValidateToken(token)
		if err != nil {
			h.denySession(c, "session expired or invalid")
			return
		}

		c.Set(ctxAdminID, claims.AdminID)
		c.Set(ctxAdminEmail, claims.Email)
		c.Next()
	}
}

func (h *Handler) denySession(c *gin.Context, message string) {
	if wantsHTML(c) {
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return
	}
	respondError(c, apperrors.NewUnauthorizedError(message))
	c.Abort()
}

func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}

func wantsHTML(c *gin.Context) bool {
	return c.Request.Method == http.MethodGet && strings.Contains(c.GetHeader("Accept"), "text/html")
}

func adminID(c *gin.Context) string {
	return c.GetString(ctxAdminID)
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// Health returns the health status
// GET /api/health
func (h *Handler) Health(c *gin.Context) {
	status, code := "ok", http.StatusOK
	if err := h.db.Ping(c.Request.Context()); err != nil {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":  status,
		"service": "haven",
		"version": "1.0.0",
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func respondError(c *gin.Context, err error) {
	status, body := apperrors.ToHTTPError(err)
	c.JSON(status, body)
}

func parseIntParam(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return i
}
