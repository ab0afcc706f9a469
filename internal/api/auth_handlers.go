package api

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aethra/haven/internal/auth"
	apperrors "github.com/aethra/haven/internal/errors"
	"github.com/aethra/haven/internal/models"
	"github.com/aethra/haven/internal/shell"
	"github.com/aethra/haven/internal/store"
)

// AdminStore is the admin account slice of the backend access layer
type AdminStore interface {
	AdminByEmail(ctx context.Context, email string) store.Result[models.Admin]
	CreateAdmin(ctx context.Context, admin models.Admin) store.Result[models.Admin]
	CreateFirstAdmin(ctx context.Context, admin models.Admin) store.Result[models.Admin]
	AdminCount(ctx context.Context) store.Result[int64]
	TouchLogin(ctx context.Context, id string) store.Result[bool]
}

// AuthHandler handles sign-in and sign-out of the admin area
type AuthHandler struct {
	admins  AdminStore
	jwt     *auth.JWTService
	limiter *auth.LoginLimiter
	shells  *shell.Container
	secure  bool
}

// NewAuthHandler creates the auth handler. secure marks the session cookie
// as HTTPS only.
func NewAuthHandler(admins AdminStore, jwt *auth.JWTService, limiter *auth.LoginLimiter, shells *shell.Container, secure bool) *AuthHandler {
	return &AuthHandler{admins: admins, jwt: jwt, limiter: limiter, shells: shells, secure: secure}
}

// LoginRequest is the sign-in form
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login signs an admin in
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewBadRequestError("email and password are required"))
		return
	}

	key := auth.Key(c.ClientIP(), req.Email)
	if ok, wait := h.limiter.Allow(key); !ok {
		c.Header("Retry-After", strconv.Itoa(int(wait.Seconds())+1))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "too_many_attempts",
			"message":     "Too many failed sign-in attempts. Try again later.",
			"retry_after": int(wait.Seconds()) + 1,
		})
		return
	}

	ctx := c.Request.Context()
	res := h.admins.AdminByEmail(ctx, req.Email)
	if !res.OK() && res.Kind() != apperrors.KindNotFound {
		respondError(c, res.Err)
		return
	}
	admin := res.Data
	if !res.OK() || !admin.IsActive || !auth.CheckPassword(req.Password, admin.PasswordHash) {
		remaining := h.limiter.Fail(key)
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":              string(apperrors.KindUnauthorized),
			"message":            "Invalid email or password",
			"attempts_remaining": remaining,
		})
		return
	}

	h.limiter.Reset(key)
	if touched := h.admins.TouchLogin(ctx, admin.ID); !touched.OK() {
		log.Printf("Failed to record login of %s: %v", admin.Email, touched.Err)
	}

	token, err := h.jwt.Issue(admin)
	if err != nil {
		respondError(c, apperrors.NewInternalError(err))
		return
	}

	state, err := h.shells.Open(ctx, admin.ID)
	if err != nil {
		log.Printf("Failed to load preferences of %s: %v", admin.Email, err)
		state = shell.Default()
	}

	h.setSession(c, token.AccessToken, time.Until(token.ExpiresAt))
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"admin": admin,
		"shell": state,
	})
}

// Logout ends the session
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if token := bearerToken(c); token != "" {
		if claims, err := h.jwt.ValidateToken(token); err == nil {
			h.shells.Close(claims.AdminID)
		}
	}
	h.setSession(c, "", -time.Second)
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

// Session describes the signed-in admin
// GET /api/auth/session
func (h *AuthHandler) Session(c *gin.Context) {
	id := adminID(c)
	state, err := h.shells.Get(c.Request.Context(), id)
	if err != nil {
		log.Printf("Failed to load preferences of %s: %v", id, err)
		state = shell.Default()
	}
	c.JSON(http.StatusOK, gin.H{
		"admin_id": id,
		"email":    c.GetString(ctxAdminEmail),
		"shell":    state,
	})
}

func (h *AuthHandler) setSession(c *gin.Context, token string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(SessionCookie, token, int(ttl.Seconds()), "/", "", h.secure, true)
}
