package api

import (
	"bytes"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/aethra/haven/internal/errors"
	"github.com/aethra/haven/internal/mailer"
	"github.com/aethra/haven/internal/site"
)

// pageWriter renders site pages inside the shared layout
type pageWriter struct {
	site  *site.Site
	pages *site.Renderer
}

// render writes a page with the given status
func (p pageWriter) render(c *gin.Context, page, title string, status int, data interface{}) {
	p.renderView(c, page, title, status, data, false)
}

func (p pageWriter) renderView(c *gin.Context, page, title string, status int, data interface{}, dark bool) {
	meta := p.site.Meta(c.Request.Context(), c.Request.URL.Path, title)
	view := site.NewView(p.site.Config(), meta, c.Request.URL.Path, data)
	view.DarkMode = dark

	var buf bytes.Buffer
	if err := p.pages.Render(&buf, page, view); err != nil {
		log.Printf("Failed to render %s: %v", page, err)
		c.String(http.StatusInternalServerError, "Something went wrong")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// PublicHandler serves the marketing pages and their JSON twins
type PublicHandler struct {
	pageWriter
	mailer mailer.Sender
}

// NewPublicHandler creates the public handler
func NewPublicHandler(s *site.Site, pages *site.Renderer, m mailer.Sender) *PublicHandler {
	return &PublicHandler{pageWriter: pageWriter{site: s, pages: pages}, mailer: m}
}

// =============================================================================
// PAGES
// =============================================================================

func (h *PublicHandler) HomePage(c *gin.Context) {
	h.render(c, "home", "", http.StatusOK, h.site.Home(c.Request.Context()))
}

func (h *PublicHandler) RoomsPage(c *gin.Context) {
	h.render(c, "rooms", "Rooms & Suites", http.StatusOK, h.site.Rooms(c.Request.Context()))
}

func (h *PublicHandler) RoomPage(c *gin.Context) {
	v := h.site.Room(c.Request.Context(), c.Param("slug"))
	title, status := "Room not found", statusOf(v.Room.State)
	if v.Room.Populated() {
		title = v.Room.Item.Name
	}
	h.render(c, "room", title, status, v)
}

func (h *PublicHandler) BlogPage(c *gin.Context) {
	h.render(c, "blog", "Blog", http.StatusOK, h.site.Blog(c.Request.Context(), c.Query("category"), c.Query("q")))
}

func (h *PublicHandler) PostPage(c *gin.Context) {
	v := h.site.Post(c.Request.Context(), c.Param("slug"))
	title, status := "Story not found", statusOf(v.Post.State)
	if v.Post.Populated() {
		title = v.Post.Item.Title
	}
	h.render(c, "post", title, status, v)
}

func (h *PublicHandler) PricingPage(c *gin.Context) {
	h.render(c, "pricing", "Pricing", http.StatusOK, h.site.Pricing(c.Request.Context()))
}

func (h *PublicHandler) ServicesPage(c *gin.Context) {
	h.render(c, "services", "Services", http.StatusOK, h.site.Services(c.Request.Context(), c.Query("category")))
}

func (h *PublicHandler) MenuPage(c *gin.Context) {
	h.render(c, "menu", "Restaurant", http.StatusOK, h.site.Menu(c.Request.Context(), c.Query("category")))
}

func (h *PublicHandler) OffersPage(c *gin.Context) {
	h.render(c, "offers", "Special Offers", http.StatusOK, h.site.Offers(c.Request.Context()))
}

func (h *PublicHandler) FAQPage(c *gin.Context) {
	h.render(c, "faq", "FAQ", http.StatusOK, h.site.FAQ(c.Request.Context()))
}

func (h *PublicHandler) ContactPage(c *gin.Context) {
	h.render(c, "contact", "Contact", http.StatusOK, nil)
}

func (h *PublicHandler) LoginPage(c *gin.Context) {
	h.render(c, "login", "Sign in", http.StatusOK, nil)
}

// NotFound answers unknown routes with the HTML page or a JSON error
func (h *PublicHandler) NotFound(c *gin.Context) {
	if !wantsHTML(c) {
		respondError(c, apperrors.NewNotFoundError("route"))
		return
	}
	h.render(c, "notfound", "Page not found", http.StatusNotFound, nil)
}

func statusOf(state site.State) int {
	switch state {
	case site.StateNotFound:
		return http.StatusNotFound
	case site.StateUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusOK
	}
}

// =============================================================================
// JSON
// =============================================================================

// GET /api/public/home
func (h *PublicHandler) Home(c *gin.Context) {
	c.JSON(http.StatusOK, h.site.Home(c.Request.Context()))
}

// GET /api/public/rooms
func (h *PublicHandler) Rooms(c *gin.Context) {
	c.JSON(http.StatusOK, h.site.Rooms(c.Request.Context()))
}

// GET /api/public/rooms/:slug
func (h *PublicHandler) Room(c *gin.Context) {
	v := h.site.Room(c.Request.Context(), c.Param("slug"))
	c.JSON(statusOf(v.Room.State), v)
}

// GET /api/public/blog?category=&q=
func (h *PublicHandler) Blog(c *gin.Context) {
	c.JSON(http.StatusOK, h.site.Blog(c.Request.Context(), c.Query("category"), c.Query("q")))
}

// GET /api/public/blog/:slug
func (h *PublicHandler) Post(c *gin.Context) {
	v := h.site.Post(c.Request.Context(), c.Param("slug"))
	body := gin.H{"post": v.Post}
	if v.Post.Populated() {
		body["body"] = gin.H{
			"structured":  v.Body.Structured,
			"description": v.Body.Description,
			"highlights":  v.Body.Highlights,
			"tip":         v.Body.Tip,
			"html":        string(v.Body.HTML),
		}
	}
	c.JSON(statusOf(v.Post.State), body)
}

// GET /api/public/pricing
func (h *PublicHandler) Pricing(c *gin.Context) {
	c.JSON(http.StatusOK, h.site.Pricing(c.Request.Context()))
}

// GET /api/public/faq
func (h *PublicHandler) FAQ(c *gin.Context) {
	c.JSON(http.StatusOK, h.site.FAQ(c.Request.Context()))
}

// GET /api/public/offers
func (h *PublicHandler) Offers(c *gin.Context) {
	c.JSON(http.StatusOK, h.site.Offers(c.Request.Context()))
}

// GET /api/public/services?category=
func (h *PublicHandler) Services(c *gin.Context) {
	c.JSON(http.StatusOK, h.site.Services(c.Request.Context(), c.Query("category")))
}

// GET /api/public/menu?category=
func (h *PublicHandler) Menu(c *gin.Context) {
	c.JSON(http.StatusOK, h.site.Menu(c.Request.Context(), c.Query("category")))
}

// GET /api/public/seo?path=/rooms
func (h *PublicHandler) SEO(c *gin.Context) {
	path := c.DefaultQuery("path", "/")
	c.JSON(http.StatusOK, h.site.Meta(c.Request.Context(), path, ""))
}

// =============================================================================
// FORMS
// =============================================================================

// Contact sends the contact form
// POST /api/public/contact
func (h *PublicHandler) Contact(c *gin.Context) {
	var msg mailer.ContactMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		respondError(c, apperrors.NewBadRequestError("invalid request body"))
		return
	}
	if err := h.mailer.SendContact(c.Request.Context(), msg); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Message sent"})
}

// Inquiry sends a booking inquiry
// POST /api/public/booking-inquiry
func (h *PublicHandler) Inquiry(c *gin.Context) {
	var inq mailer.BookingInquiry
	if err := c.ShouldBindJSON(&inq); err != nil {
		respondError(c, apperrors.NewBadRequestError("invalid request body"))
		return
	}
	if err := h.mailer.SendInquiry(c.Request.Context(), inq); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Inquiry sent"})
}
