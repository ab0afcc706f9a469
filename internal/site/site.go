package site

import (
	"context"
	"log"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/aethra/haven/internal/config"
	apperrors "github.com/aethra/haven/internal/errors"
	"github.com/aethra/haven/internal/models"
	"github.com/aethra/haven/internal/store"
)

// Source is the read path of the backend access layer; *store.Store satisfies it
type Source interface {
	ActiveRoomTypes(ctx context.Context) store.Result[[]models.RoomType]
	RoomBySlug(ctx context.Context, slug string) store.Result[models.RoomType]
	PlansForRoom(ctx context.Context, roomTypeID string) store.Result[[]models.RatePlan]
	ActivePricingPlans(ctx context.Context) store.Result[[]models.PricingPlan]
	ActiveFAQs(ctx context.Context) store.Result[[]models.FAQ]
	ActiveBlogCategories(ctx context.Context) store.Result[[]models.BlogCategory]
	PublishedPosts(ctx context.Context, categorySlug, search string) store.Result[[]models.BlogPost]
	PostBySlug(ctx context.Context, slug string) store.Result[models.BlogPost]
	IncrementViews(ctx context.Context, id string) store.Result[int]
	ActiveOffers(ctx context.Context) store.Result[[]models.SpecialOffer]
	FeaturedOffers(ctx context.Context) store.Result[[]models.SpecialOffer]
	ActiveMenuCategories(ctx context.Context) store.Result[[]models.MenuCategory]
	AvailableMenu(ctx context.Context, category string) store.Result[[]models.MenuItem]
	ActiveServices(ctx context.Context, category string) store.Result[[]models.Service]
	SEOFor(ctx context.Context, path string) store.Result[models.SEOPage]
}

// Site builds the views of the public pages
type Site struct {
	src Source
	cfg config.SiteConfig
	md  goldmark.Markdown
}

// New creates the public site
func New(src Source, cfg config.SiteConfig) *Site {
	return &Site{src: src, cfg: cfg, md: newMarkdown()}
}

// Config returns the site settings
func (s *Site) Config() config.SiteConfig { return s.cfg }

// =============================================================================
// VIEWS
// =============================================================================

type HomeView struct {
	Rooms  Page[models.RoomType]     `json:"rooms"`
	Offers Page[models.SpecialOffer] `json:"offers"`
	Posts  Page[models.BlogPost]     `json:"posts"`
}

type RoomView struct {
	Room  Page[models.RoomType] `json:"room"`
	Plans Page[models.RatePlan] `json:"plans"`
}

type BlogView struct {
	Posts      Page[models.BlogPost] `json:"posts"`
	Categories []models.BlogCategory `json:"categories"`
	Category   string                `json:"category,omitempty"`
	Search     string                `json:"search,omitempty"`
}

type PostView struct {
	Post Page[models.BlogPost] `json:"post"`
	Body BlogBody              `json:"-"`
}

type MenuView struct {
	Categories []models.MenuCategory `json:"categories"`
	Items      Page[models.MenuItem] `json:"items"`
	Category   string                `json:"category,omitempty"`
}

type ServicesView struct {
	Services Page[models.Service] `json:"services"`
	Category string               `json:"category,omitempty"`
}

// Home shows rooms, featured offers and the latest three posts
func (s *Site) Home(ctx context.Context) HomeView {
	return HomeView{
		Rooms:  List(s.src.ActiveRoomTypes(ctx), "Our rooms are being prepared. Check back soon."),
		Offers: List(s.src.FeaturedOffers(ctx), "No special offers right now."),
		Posts:  List(s.src.PublishedPosts(ctx, "", ""), "No stories yet.").Take(3),
	}
}

func (s *Site) Rooms(ctx context.Context) Page[models.RoomType] {
	return List(s.src.ActiveRoomTypes(ctx), "No rooms are available at the moment.")
}

// Room resolves a room by slug together with its rate plans
func (s *Site) Room(ctx context.Context, slug string) RoomView {
	v := RoomView{Room: Detail(s.src.RoomBySlug(ctx, slug), "We couldn't find that room.")}
	if v.Room.Populated() {
		v.Plans = List(s.src.PlansForRoom(ctx, v.Room.Item.ID), "Contact us for rates.")
	}
	return v
}

// Blog lists published posts, optionally filtered by category slug and search term
func (s *Site) Blog(ctx context.Context, category, search string) BlogView {
	search = strings.TrimSpace(search)
	empty := "No stories yet."
	if category != "" || search != "" {
		empty = "No stories match your filter."
	}
	v := BlogView{
		Posts:    List(s.src.PublishedPosts(ctx, category, search), empty),
		Category: category,
		Search:   search,
	}
	if res := s.src.ActiveBlogCategories(ctx); res.OK() {
		v.Categories = res.Data
	}
	return v
}

// Post resolves a published post and counts the view
func (s *Site) Post(ctx context.Context, slug string) PostView {
	v := PostView{Post: Detail(s.src.PostBySlug(ctx, slug), "We couldn't find that story.")}
	if !v.Post.Populated() {
		return v
	}

	if res := s.src.IncrementViews(ctx, v.Post.Item.ID); res.OK() {
		v.Post.Item.Views = res.Data
	} else {
		log.Printf("site: failed to count view of %s: %v", slug, res.Err)
	}
	v.Body = RenderBlog(s.md, v.Post.Item.Content)
	return v
}

func (s *Site) Pricing(ctx context.Context) Page[models.PricingPlan] {
	return List(s.src.ActivePricingPlans(ctx), "Pricing will be published soon.")
}

func (s *Site) FAQ(ctx context.Context) Page[models.FAQ] {
	return List(s.src.ActiveFAQs(ctx), "No questions have been answered yet.")
}

func (s *Site) Offers(ctx context.Context) Page[models.SpecialOffer] {
	return List(s.src.ActiveOffers(ctx), "No special offers right now.")
}

func (s *Site) Services(ctx context.Context, category string) ServicesView {
	return ServicesView{
		Services: List(s.src.ActiveServices(ctx, category), "No services listed yet."),
		Category: category,
	}
}

func (s *Site) Menu(ctx context.Context, category string) MenuView {
	v := MenuView{
		Items:    List(s.src.AvailableMenu(ctx, category), "The menu is being updated."),
		Category: category,
	}
	if res := s.src.ActiveMenuCategories(ctx); res.OK() {
		v.Categories = res.Data
	}
	return v
}

// =============================================================================
// SEO
// =============================================================================

// Meta is the head metadata of a page
type Meta struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Keywords    string `json:"keywords,omitempty"`
	Image       string `json:"image,omitempty"`
}

// Meta returns the SEO record of path, or defaults built from the page title
func (s *Site) Meta(ctx context.Context, path, pageTitle string) Meta {
	m := Meta{Title: s.cfg.DefaultTitle, Description: s.cfg.DefaultDesc}
	if pageTitle != "" {
		m.Title = pageTitle + " | " + s.cfg.Name
	}

	res := s.src.SEOFor(ctx, path)
	if !res.OK() {
		if res.Kind() != apperrors.KindNotFound {
			log.Printf("site: SEO lookup for %s failed: %v", path, res.Err)
		}
		return m
	}

	page := res.Data
	if page.MetaTitle != "" {
		m.Title = page.MetaTitle
	}
	if page.MetaDescription != "" {
		m.Description = page.MetaDescription
	}
	m.Keywords = page.Keywords
	m.Image = page.OGImage
	return m
}
