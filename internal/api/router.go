package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/aethra/haven/internal/config"
)

// Handlers bundles every handler the router mounts
type Handlers struct {
	Base     *Handler
	Public   *PublicHandler
	Auth     *AuthHandler
	Setup    *SetupHandler
	Admin    *AdminHandler
	Panel    *PanelHandler
	Calendar *CalendarHandler
	Uploads  *UploadHandler
}

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// With credentials, origins must be listed explicitly (not *)
	if len(cfg.CORS.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
			ExposeHeaders:    []string{"Content-Length", "Content-Type", "Retry-After"},
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           12 * time.Hour,
		}))
	}

	uploads := r.Group("/uploads", uploadHeaders())
	uploads.Static("", cfg.Storage.Dir)
	r.GET("/api/health", h.Base.Health)

	// ==========================================================================
	// PUBLIC SITE
	// ==========================================================================
	r.GET("/", h.Public.HomePage)
	r.GET("/rooms", h.Public.RoomsPage)
	r.GET("/rooms/:slug", h.Public.RoomPage)
	r.GET("/blog", h.Public.BlogPage)
	r.GET("/blog/:slug", h.Public.PostPage)
	r.GET("/pricing", h.Public.PricingPage)
	r.GET("/services", h.Public.ServicesPage)
	r.GET("/menu", h.Public.MenuPage)
	r.GET("/offers", h.Public.OffersPage)
	r.GET("/faq", h.Public.FAQPage)
	r.GET("/contact", h.Public.ContactPage)
	r.GET("/login", h.Public.LoginPage)
	r.NoRoute(h.Public.NotFound)

	public := r.Group("/api/public")
	{
		public.GET("/home", h.Public.Home)
		public.GET("/rooms", h.Public.Rooms)
		public.GET("/rooms/:slug", h.Public.Room)
		public.GET("/blog", h.Public.Blog)
		public.GET("/blog/:slug", h.Public.Post)
		public.GET("/pricing", h.Public.Pricing)
		public.GET("/faq", h.Public.FAQ)
		public.GET("/offers", h.Public.Offers)
		public.GET("/services", h.Public.Services)
		public.GET("/menu", h.Public.Menu)
		public.GET("/seo", h.Public.SEO)
		public.POST("/contact", h.Public.Contact)
		public.POST("/booking-inquiry", h.Public.Inquiry)
	}

	// ==========================================================================
	// AUTH + SETUP
	// ==========================================================================
	authRoutes := r.Group("/api/auth")
	{
		authRoutes.POST("/login", h.Auth.Login)
		authRoutes.POST("/logout", h.Auth.Logout)
		authRoutes.GET("/session", h.Base.RequireAdmin(), h.Auth.Session)
	}

	r.GET("/setup", h.Setup.Status)
	r.POST("/setup", h.Setup.Setup)

	// ==========================================================================
	// ADMIN - every route requires a session
	// ==========================================================================
	admin := r.Group("/admin")
	admin.Use(h.Base.RequireAdmin())
	{
		admin.GET("", h.Panel.Page)
		admin.GET("/dashboard", h.Panel.Dashboard)
		admin.GET("/shell", h.Panel.Shell)
		admin.PUT("/shell", h.Panel.UpdateShell)

		admin.GET("/schema", h.Admin.Schemas)
		admin.GET("/schema/:entity", h.Admin.Schema)

		admin.GET("/data/:entity", h.Admin.List)
		admin.GET("/data/:entity/:id", h.Admin.Get)
		admin.POST("/data/:entity", h.Admin.Create)
		admin.PUT("/data/:entity/:id", h.Admin.Update)
		admin.DELETE("/data/:entity/:id", h.Admin.Delete)

		admin.GET("/availability", h.Calendar.Availability)
		admin.POST("/availability/range", h.Calendar.AvailabilityRange)
		admin.GET("/rates", h.Calendar.Rates)
		admin.POST("/rates/range", h.Calendar.RateRange)

		admin.GET("/uploads", h.Uploads.List)
		admin.POST("/uploads", h.Uploads.Upload)
		admin.DELETE("/uploads/*name", h.Uploads.Delete)
	}

	return r
}

// uploadHeaders keeps stored files from being sniffed or run as documents
func uploadHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Content-Security-Policy", "default-src 'none'; img-src 'self'; sandbox")
		c.Next()
	}
}
