package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "github.com/aethra/haven/internal/errors"
	"github.com/aethra/haven/internal/models"
	"github.com/aethra/haven/internal/security"
)

// =============================================================================
// ROOMS
// =============================================================================

// ActiveRoomTypes lists the room types shown on the rooms page, cheapest first
func (s *Store) ActiveRoomTypes(ctx context.Context) Result[[]models.RoomType] {
	return s.RoomTypes.GetActive(ctx)
}

// RoomBySlug returns an active room type
func (s *Store) RoomBySlug(ctx context.Context, slug string) Result[models.RoomType] {
	return s.RoomTypes.GetBySlug(ctx, slug)
}

// PlansForRoom lists the active rate plans of a room type
func (s *Store) PlansForRoom(ctx context.Context, roomTypeID string) Result[[]models.RatePlan] {
	t := s.RatePlans
	return t.where(ctx, "list active", func(q *gorm.DB) *gorm.DB {
		return t.activeScope(q).Where("room_type_id = ?", roomTypeID)
	})
}

// ActivePricingPlans lists the packages shown on the pricing page
func (s *Store) ActivePricingPlans(ctx context.Context) Result[[]models.PricingPlan] {
	return s.PricingPlans.GetActive(ctx)
}

// ActiveFAQs lists published questions in display order
func (s *Store) ActiveFAQs(ctx context.Context) Result[[]models.FAQ] {
	return s.FAQs.GetActive(ctx)
}

// =============================================================================
// BLOG
// =============================================================================

// ActiveBlogCategories lists the categories offered as blog filters
func (s *Store) ActiveBlogCategories(ctx context.Context) Result[[]models.BlogCategory] {
	return s.BlogCategories.GetActive(ctx)
}

// PublishedPosts lists published posts, newest first, optionally narrowed to
// a category slug and a search term
func (s *Store) PublishedPosts(ctx context.Context, categorySlug, search string) Result[[]models.BlogPost] {
	t := s.BlogPosts
	return t.where(ctx, "list published", func(q *gorm.DB) *gorm.DB {
		q = t.activeScope(q).Order("published_at DESC")
		if categorySlug != "" {
			sub := s.db.Model(&models.BlogCategory{}).Select("id").Where("slug = ?", categorySlug)
			q = q.Where("category_id IN (?)", sub)
		}
		if cond, args := security.SearchCondition(t.cfg.Searchable, search); cond != "" {
			q = q.Where(cond, args...)
		}
		return q
	})
}

// PostBySlug returns a published post
func (s *Store) PostBySlug(ctx context.Context, slug string) Result[models.BlogPost] {
	return s.BlogPosts.GetBySlug(ctx, slug)
}

// IncrementViews bumps the view counter without touching updated_at
func (s *Store) IncrementViews(ctx context.Context, id string) Result[int] {
	res := s.db.WithContext(ctx).Model(&models.BlogPost{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return failed[int]("count view of", s.BlogPosts.Label(), res.Error)
	}
	if res.RowsAffected == 0 {
		return Fail[int](apperrors.NewNotFoundError(s.BlogPosts.Label()))
	}

	var views int
	if err := s.db.WithContext(ctx).Model(&models.BlogPost{}).Where("id = ?", id).Pluck("views", &views).Error; err != nil {
		return failed[int]("count view of", s.BlogPosts.Label(), err)
	}
	return OK(views)
}

// RecentPosts returns the newest posts of any status
func (s *Store) RecentPosts(ctx context.Context, limit int) Result[[]models.BlogPost] {
	res := s.BlogPosts.Find(ctx, Query{Sort: "created_at", Desc: true, Limit: limit})
	if !res.OK() {
		return Fail[[]models.BlogPost](res.Err)
	}
	return OK(res.Data.Items)
}

// =============================================================================
// OFFERS, MENU, SERVICES, SEO
// =============================================================================

// ActiveOffers lists offers currently running
func (s *Store) ActiveOffers(ctx context.Context) Result[[]models.SpecialOffer] {
	return s.Offers.GetActive(ctx)
}

// FeaturedOffers lists active offers flagged for the home page
func (s *Store) FeaturedOffers(ctx context.Context) Result[[]models.SpecialOffer] {
	t := s.Offers
	return t.where(ctx, "list featured", func(q *gorm.DB) *gorm.DB {
		return t.activeScope(q).Where("is_featured = ?", true)
	})
}

// ActiveMenuCategories lists the restaurant sections in display order
func (s *Store) ActiveMenuCategories(ctx context.Context) Result[[]models.MenuCategory] {
	return s.MenuCategories.GetActive(ctx)
}

// AvailableMenu lists orderable menu items, optionally for one category name
func (s *Store) AvailableMenu(ctx context.Context, category string) Result[[]models.MenuItem] {
	t := s.MenuItems
	return t.where(ctx, "list available", func(q *gorm.DB) *gorm.DB {
		q = t.activeScope(q)
		if category != "" {
			q = q.Where("category_name = ?", category)
		}
		return q
	})
}

// ActiveServices lists active services, optionally for one category
func (s *Store) ActiveServices(ctx context.Context, category string) Result[[]models.Service] {
	t := s.Services
	return t.where(ctx, "list active", func(q *gorm.DB) *gorm.DB {
		q = t.activeScope(q)
		if category != "" {
			q = q.Where("category = ?", category)
		}
		return q
	})
}

// SEOFor returns the active metadata of a public path
func (s *Store) SEOFor(ctx context.Context, path string) Result[models.SEOPage] {
	var page models.SEOPage
	err := s.db.WithContext(ctx).Where("page_path = ? AND is_active = ?", path, true).First(&page).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// most pages have no override
		return Fail[models.SEOPage](apperrors.NewNotFoundError(s.SEOPages.Label()))
	}
	if err != nil {
		return failed[models.SEOPage]("get", s.SEOPages.Label(), err)
	}
	return OK(page)
}
