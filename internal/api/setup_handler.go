package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aethra/haven/internal/auth"
	apperrors "github.com/aethra/haven/internal/errors"
	"github.com/aethra/haven/internal/models"
	"github.com/aethra/haven/internal/site"
)

// SetupHandler creates the first admin account of a fresh install
type SetupHandler struct {
	pageWriter
	admins AdminStore
}

// NewSetupHandler creates a new setup handler
func NewSetupHandler(admins AdminStore, s *site.Site, pages *site.Renderer) *SetupHandler {
	return &SetupHandler{pageWriter: pageWriter{site: s, pages: pages}, admins: admins}
}

// SetupRequest is the first-run form
type SetupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name"`
}

func (h *SetupHandler) pending(c *gin.Context) (bool, bool) {
	res := h.admins.AdminCount(c.Request.Context())
	if !res.OK() {
		respondError(c, res.Err)
		return false, false
	}
	return res.Data == 0, true
}

// Status reports whether setup is still pending. Browsers get the wizard
// page, or the login page once an admin exists.
// GET /setup
func (h *SetupHandler) Status(c *gin.Context) {
	pending, ok := h.pending(c)
	if !ok {
		return
	}
	if wantsHTML(c) {
		if !pending {
			c.Redirect(http.StatusFound, "/login")
			return
		}
		h.render(c, "setup", "Setup", http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"setup_required": pending})
}

// Setup creates the first admin
// POST /setup
func (h *SetupHandler) Setup(c *gin.Context) {
	var req SetupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewValidationError("password", "A valid email and a password of at least 8 characters are required"))
		return
	}

	pending, ok := h.pending(c)
	if !ok {
		return
	}
	if !pending {
		respondError(c, apperrors.NewConflictError("admin", "setup has already been completed"))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(c, apperrors.NewInternalError(err))
		return
	}

	name := strings.TrimSpace(req.FullName)
	if name == "" {
		name = "Administrator"
	}
	// a concurrent setup may pass the check above; the store re-checks atomically
	res := h.admins.CreateFirstAdmin(c.Request.Context(), models.Admin{
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     name,
		IsActive:     true,
	})
	if !res.OK() {
		respondError(c, res.Err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Setup complete. You can now sign in.",
		"admin":   res.Data,
	})
}
