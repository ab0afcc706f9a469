package api

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aethra/haven/internal/engine"
	apperrors "github.com/aethra/haven/internal/errors"
	"github.com/aethra/haven/internal/models"
	"github.com/aethra/haven/internal/shell"
	"github.com/aethra/haven/internal/site"
	"github.com/aethra/haven/internal/store"
)

// DashboardStore is the statistics slice of the backend access layer
type DashboardStore interface {
	Counts(ctx context.Context) store.Result[store.DashboardCounts]
	RecentPosts(ctx context.Context, limit int) store.Result[[]models.BlogPost]
}

// PanelHandler serves the admin shell page, the dashboard and the shell settings
type PanelHandler struct {
	pageWriter
	stats    DashboardStore
	registry *engine.Registry
	shells   *shell.Container
}

// NewPanelHandler creates the admin panel handler
func NewPanelHandler(s *site.Site, pages *site.Renderer, stats DashboardStore, registry *engine.Registry, shells *shell.Container) *PanelHandler {
	return &PanelHandler{
		pageWriter: pageWriter{site: s, pages: pages},
		stats:      stats,
		registry:   registry,
		shells:     shells,
	}
}

func (h *PanelHandler) state(c *gin.Context) shell.State {
	st, err := h.shells.Get(c.Request.Context(), adminID(c))
	if err != nil {
		log.Printf("Failed to load preferences of %s: %v", adminID(c), err)
		return shell.Default()
	}
	return st
}

// Page serves the admin single page
// GET /admin
func (h *PanelHandler) Page(c *gin.Context) {
	st := h.state(c)
	page := site.AdminPage{Email: c.GetString(ctxAdminEmail), SidebarOpen: st.SidebarOpen}
	for _, s := range h.registry.Schemas() {
		page.Entities = append(page.Entities, site.AdminEntity{Code: s.Code, Plural: capitalize(s.Plural)})
	}
	h.renderView(c, "admin", "Admin", http.StatusOK, page, st.DarkMode)
}

// Dashboard returns the record counts and the latest posts
// GET /admin/dashboard
func (h *PanelHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	counts := h.stats.Counts(ctx)
	if !counts.OK() {
		respondError(c, counts.Err)
		return
	}

	body := gin.H{"counts": counts.Data}
	if recent := h.stats.RecentPosts(ctx, 5); recent.OK() {
		body["recent_posts"] = recent.Data
	} else {
		body["recent_posts"] = []models.BlogPost{}
		body["notices"] = []engine.Notice{{Level: engine.NoticeAlert, Message: "Failed to load recent posts"}}
	}
	c.JSON(http.StatusOK, body)
}

// Shell returns the shell settings of the signed-in admin
// GET /admin/shell
func (h *PanelHandler) Shell(c *gin.Context) {
	st, err := h.shells.Get(c.Request.Context(), adminID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// ShellUpdate changes the dark mode and sidebar settings
type ShellUpdate struct {
	DarkMode    *bool `json:"dark_mode"`
	SidebarOpen *bool `json:"sidebar_open"`
}

// UpdateShell persists shell settings; the last write wins
// PUT /admin/shell
func (h *PanelHandler) UpdateShell(c *gin.Context) {
	var req ShellUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewBadRequestError("invalid request body"))
		return
	}

	ctx, id := c.Request.Context(), adminID(c)
	st, err := h.shells.Get(ctx, id)
	if err == nil && req.DarkMode != nil {
		st, err = h.shells.SetDarkMode(ctx, id, *req.DarkMode)
	}
	if err == nil && req.SidebarOpen != nil {
		st, err = h.shells.SetSidebar(ctx, id, *req.SidebarOpen)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
