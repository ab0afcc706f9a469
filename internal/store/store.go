package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/aethra/haven/internal/models"
)

// Store groups the table clients of every entity
type Store struct {
	db *gorm.DB

	RoomTypes         *Table[models.RoomType]
	RatePlans         *Table[models.RatePlan]
	Availability      *Table[models.RoomAvailability]
	Rates             *Table[models.RoomRate]
	BlogCategories    *Table[models.BlogCategory]
	BlogPosts         *Table[models.BlogPost]
	Offers            *Table[models.SpecialOffer]
	PricingPlans      *Table[models.PricingPlan]
	FAQs              *Table[models.FAQ]
	MenuCategories    *Table[models.MenuCategory]
	MenuItems         *Table[models.MenuItem]
	Services          *Table[models.Service]
	ServiceCategories *Table[models.ServiceCategory]
	SEOPages          *Table[models.SEOPage]
	Admins            *Table[models.Admin]
}

func isActive(q *gorm.DB) *gorm.DB {
	return q.Where("is_active = ?", true)
}

func withStatus(status string) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("status = ?", status)
	}
}

func roomTypeName(rt *models.RoomType) string {
	if rt == nil {
		return ""
	}
	return rt.Name
}

// New creates the store over an open connection
func New(db *gorm.DB) *Store {
	return &Store{
		db: db,
		RoomTypes: NewTable(db, TableConfig[models.RoomType]{
			Label:      "room type",
			Order:      "base_price ASC",
			Active:     isActive,
			Searchable: []string{"name", "description"},
		}),
		RatePlans: NewTable(db, TableConfig[models.RatePlan]{
			Label:      "rate plan",
			Order:      "name ASC",
			Active:     isActive,
			Preloads:   []string{"RoomType"},
			Normalize:  func(p *models.RatePlan) { p.RoomTypeName = roomTypeName(p.RoomType) },
			Searchable: []string{"name", "description"},
		}),
		Availability: NewTable(db, TableConfig[models.RoomAvailability]{
			Label:     "availability",
			Order:     "date ASC",
			Preloads:  []string{"RoomType"},
			Normalize: func(a *models.RoomAvailability) { a.RoomTypeName = roomTypeName(a.RoomType) },
		}),
		Rates: NewTable(db, TableConfig[models.RoomRate]{
			Label:     "room rate",
			Order:     "date ASC",
			Preloads:  []string{"RoomType"},
			Normalize: func(r *models.RoomRate) { r.RoomTypeName = roomTypeName(r.RoomType) },
		}),
		BlogCategories: NewTable(db, TableConfig[models.BlogCategory]{
			Label:  "blog category",
			Order:  "name ASC",
			Active: isActive,
		}),
		BlogPosts: NewTable(db, TableConfig[models.BlogPost]{
			Label:    "blog post",
			Order:    "created_at DESC",
			Active:   withStatus(models.StatusPublished),
			Preloads: []string{"Category"},
			Normalize: func(p *models.BlogPost) {
				if p.Category != nil {
					p.CategoryName = p.Category.Name
				}
			},
			Searchable: []string{"title", "excerpt", "content"},
		}),
		Offers: NewTable(db, TableConfig[models.SpecialOffer]{
			Label:      "special offer",
			Order:      "valid_from ASC",
			Active:     withStatus(models.OfferActive),
			Searchable: []string{"title", "description"},
		}),
		PricingPlans: NewTable(db, TableConfig[models.PricingPlan]{
			Label:  "pricing plan",
			Order:  "created_at ASC",
			Active: isActive,
		}),
		FAQs: NewTable(db, TableConfig[models.FAQ]{
			Label:      "FAQ",
			Order:      "display_order ASC",
			Active:     isActive,
			Searchable: []string{"question", "answer"},
		}),
		MenuCategories: NewTable(db, TableConfig[models.MenuCategory]{
			Label:  "menu category",
			Order:  "display_order ASC",
			Active: isActive,
		}),
		MenuItems: NewTable(db, TableConfig[models.MenuItem]{
			Label: "menu item",
			Order: "category_name ASC, name ASC",
			Active: func(q *gorm.DB) *gorm.DB {
				return q.Where("is_active = ? AND is_available = ?", true, true)
			},
			Searchable: []string{"name", "description"},
		}),
		Services: NewTable(db, TableConfig[models.Service]{
			Label:      "service",
			Order:      "number ASC",
			Active:     withStatus("active"),
			Searchable: []string{"heading", "description"},
		}),
		ServiceCategories: NewTable(db, TableConfig[models.ServiceCategory]{
			Label:  "service category",
			Order:  "name ASC",
			Active: isActive,
		}),
		SEOPages: NewTable(db, TableConfig[models.SEOPage]{
			Label:  "SEO page",
			Order:  "page_path ASC",
			Active: isActive,
		}),
		Admins: NewTable(db, TableConfig[models.Admin]{
			Label:  "admin",
			Order:  "email ASC",
			Active: isActive,
		}),
	}
}

// Ping checks the connection
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
