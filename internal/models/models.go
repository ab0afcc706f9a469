// Package models contains the resort content records persisted by Haven.
// JSON names equal column names so a form map can be applied as a column patch.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// =============================================================================
// BASE
// =============================================================================

// Base carries the generated identifier and timestamps shared by every record
type Base struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID when the caller did not provide one
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// RecordID returns the record identifier
func (b Base) RecordID() string {
	return b.ID
}

// StringList is a JSON-encoded list of strings (amenities, image URLs, highlights)
type StringList = datatypes.JSONSlice[string]

// =============================================================================
// ROOMS
// =============================================================================

// RoomType is a sellable category of room shown on the rooms pages
type RoomType struct {
	Base
	Name        string     `json:"name" gorm:"size:150;not null"`
	Slug        string     `json:"slug" gorm:"size:180;index"`
	Description string     `json:"description" gorm:"type:text"`
	Capacity    int        `json:"capacity"`
	Size        string     `json:"size" gorm:"size:50"`
	BasePrice   float64    `json:"base_price"`
	Amenities   StringList `json:"amenities"`
	TotalRooms  int        `json:"total_rooms"`
	Images      StringList `json:"images"`
	IsActive    bool       `json:"is_active"`
}

func (RoomType) TableName() string { return "room_types" }

// RatePlan prices a room type
type RatePlan struct {
	Base
	Name         string    `json:"name" gorm:"size:150;not null"`
	RoomTypeID   string    `json:"room_type_id" gorm:"size:36;index"`
	RoomType     *RoomType `json:"-" gorm:"foreignKey:RoomTypeID"`
	RoomTypeName string    `json:"room_type_name" gorm:"-"`
	BaseRate     float64   `json:"base_rate"`
	WeekendRate  float64   `json:"weekend_rate"`
	SeasonalRate float64   `json:"seasonal_rate"`
	Description  string    `json:"description" gorm:"type:text"`
	IsActive     bool      `json:"is_active"`
}

func (RatePlan) TableName() string { return "rate_plans" }

// RoomAvailability is one row per (room type, day)
type RoomAvailability struct {
	Base
	RoomTypeID     string    `json:"room_type_id" gorm:"size:36;not null;uniqueIndex:idx_availability_day"`
	RoomType       *RoomType `json:"-" gorm:"foreignKey:RoomTypeID"`
	RoomTypeName   string    `json:"room_type_name" gorm:"-"`
	Date           string    `json:"date" gorm:"size:10;not null;uniqueIndex:idx_availability_day"`
	AvailableRooms int       `json:"available_rooms"`
	BlockedRooms   int       `json:"blocked_rooms"`
	MinimumStay    int       `json:"minimum_stay"`
	Reason         string    `json:"reason" gorm:"size:255"`
	Notes          string    `json:"notes" gorm:"type:text"`
}

func (RoomAvailability) TableName() string { return "room_availability" }

// RoomRate is the nightly rate of a room type on one day (rate calendar)
type RoomRate struct {
	Base
	RoomTypeID   string    `json:"room_type_id" gorm:"size:36;not null;uniqueIndex:idx_rate_day"`
	RoomType     *RoomType `json:"-" gorm:"foreignKey:RoomTypeID"`
	RoomTypeName string    `json:"room_type_name" gorm:"-"`
	Date         string    `json:"date" gorm:"size:10;not null;uniqueIndex:idx_rate_day"`
	Rate         float64   `json:"rate"`
	Notes        string    `json:"notes" gorm:"size:255"`
}

func (RoomRate) TableName() string { return "room_rates" }

// =============================================================================
// BLOG
// =============================================================================

// BlogCategory groups blog posts
type BlogCategory struct {
	Base
	Name        string `json:"name" gorm:"size:120;not null"`
	Slug        string `json:"slug" gorm:"size:150;index"`
	Description string `json:"description" gorm:"type:text"`
	IsActive    bool   `json:"is_active"`
}

func (BlogCategory) TableName() string { return "blog_categories" }

// BlogPost is an article; Content is plain text/markdown or a JSON document (see BlogContent)
type BlogPost struct {
	Base
	Title         string        `json:"title" gorm:"size:255;not null"`
	Slug          string        `json:"slug" gorm:"size:280;index"`
	CategoryID    *string       `json:"category_id" gorm:"size:36;index"`
	Category      *BlogCategory `json:"-" gorm:"foreignKey:CategoryID"`
	CategoryName  string        `json:"category_name" gorm:"-"`
	FeaturedImage string        `json:"featured_image" gorm:"size:500"`
	Content       string        `json:"content" gorm:"type:text"`
	Excerpt       string        `json:"excerpt" gorm:"type:text"`
	Author        string        `json:"author" gorm:"size:120"`
	Status        string        `json:"status" gorm:"size:20;index"`
	Views         int           `json:"views"`
	PublishedAt   *time.Time    `json:"published_at"`
}

func (BlogPost) TableName() string { return "blog_posts" }

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// =============================================================================
// OFFERS, PRICING, FAQ
// =============================================================================

// SpecialOffer is a time-boxed promotion
type SpecialOffer struct {
	Base
	Title           string  `json:"title" gorm:"size:255;not null"`
	Slug            string  `json:"slug" gorm:"size:280;index"`
	Description     string  `json:"description" gorm:"type:text"`
	DiscountValue   float64 `json:"discount_value"`
	ValidFrom       string  `json:"valid_from" gorm:"size:10"`
	ValidTo         string  `json:"valid_to" gorm:"size:10"`
	RoomType        string  `json:"room_type" gorm:"size:150"`
	Status          string  `json:"status" gorm:"size:20;index"`
	IsFeatured      bool    `json:"is_featured"`
	CurrentBookings int     `json:"current_bookings"`
}

func (SpecialOffer) TableName() string { return "special_offers" }

const (
	OfferActive    = "active"
	OfferScheduled = "scheduled"
)

// PricingPlan is a package shown on the pricing page; Price is free text ("$120 / night")
type PricingPlan struct {
	Base
	Name     string `json:"name" gorm:"size:150;not null"`
	Duration string `json:"duration" gorm:"size:100"`
	Includes string `json:"includes" gorm:"type:text"`
	Price    string `json:"price" gorm:"size:60"`
	IsActive bool   `json:"is_active"`
}

func (PricingPlan) TableName() string { return "pricing_plans" }

type FAQ struct {
	Base
	Question     string `json:"question" gorm:"type:text;not null"`
	Answer       string `json:"answer" gorm:"type:text"`
	DisplayOrder int    `json:"display_order"`
	IsActive     bool   `json:"is_active"`
}

func (FAQ) TableName() string { return "faqs" }

// =============================================================================
// RESTAURANT
// =============================================================================

type MenuCategory struct {
	Base
	Name         string `json:"name" gorm:"size:120;not null"`
	Description  string `json:"description" gorm:"type:text"`
	DisplayOrder int    `json:"display_order"`
	IsActive     bool   `json:"is_active"`
}

func (MenuCategory) TableName() string { return "menu_categories" }

// MenuItem references its category by name only
type MenuItem struct {
	Base
	Name         string  `json:"name" gorm:"size:150;not null"`
	Description  string  `json:"description" gorm:"type:text"`
	Price        float64 `json:"price"`
	CategoryName string  `json:"category_name" gorm:"size:120;index"`
	ImageURL     string  `json:"image_url" gorm:"size:500"`
	IsVeg        bool    `json:"is_veg"`
	SpiceLevel   int     `json:"spice_level"`
	IsAvailable  bool    `json:"is_available"`
	IsActive     bool    `json:"is_active"`
}

func (MenuItem) TableName() string { return "menu_items" }

// =============================================================================
// SERVICES & SEO
// =============================================================================

type ServiceCategory struct {
	Base
	Name        string `json:"name" gorm:"size:120;not null"`
	Slug        string `json:"slug" gorm:"size:150;index"`
	Description string `json:"description" gorm:"type:text"`
	IsActive    bool   `json:"is_active"`
}

func (ServiceCategory) TableName() string { return "service_categories" }

// Service is a numbered card on the services page
type Service struct {
	Base
	Image       string `json:"image" gorm:"size:500"`
	Number      int    `json:"number"`
	Category    string `json:"category" gorm:"size:120;index"`
	Heading     string `json:"heading" gorm:"size:255;not null"`
	Description string `json:"description" gorm:"type:text"`
	Status      string `json:"status" gorm:"size:20;index"`
}

func (Service) TableName() string { return "services" }

// SEOPage holds the metadata of one public route
type SEOPage struct {
	Base
	PagePath        string `json:"page_path" gorm:"size:255;uniqueIndex"`
	MetaTitle       string `json:"meta_title" gorm:"size:255"`
	MetaDescription string `json:"meta_description" gorm:"type:text"`
	Keywords        string `json:"keywords" gorm:"size:500"`
	OGImage         string `json:"og_image" gorm:"size:500"`
	IsActive        bool   `json:"is_active"`
}

func (SEOPage) TableName() string { return "seo_pages" }

// =============================================================================
// ADMIN
// =============================================================================

// Admin is a dashboard user
type Admin struct {
	Base
	Email        string     `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string     `json:"-" gorm:"size:255"`
	FullName     string     `json:"full_name" gorm:"size:150"`
	IsActive     bool       `json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	// Founder is set only on the account created by first-run setup; the
	// unique index lets at most one row carry it
	Founder *bool `json:"-" gorm:"uniqueIndex"`
}

func (Admin) TableName() string { return "admins" }

// Preference is one persisted shell setting of an admin (dark mode, sidebar, ...)
type Preference struct {
	ID      uint   `gorm:"primaryKey"`
	AdminID string `gorm:"size:36;not null;uniqueIndex:idx_preference_key"`
	Key     string `gorm:"column:pref_key;size:64;not null;uniqueIndex:idx_preference_key"`
	Value   string `gorm:"size:255"`
}

func (Preference) TableName() string { return "admin_preferences" }

// All lists every model in migration order (parents before children)
func All() []interface{} {
	return []interface{}{
		&Admin{},
		&Preference{},
		&RoomType{},
		&RatePlan{},
		&RoomAvailability{},
		&RoomRate{},
		&BlogCategory{},
		&BlogPost{},
		&SpecialOffer{},
		&PricingPlan{},
		&FAQ{},
		&MenuCategory{},
		&MenuItem{},
		&ServiceCategory{},
		&Service{},
		&SEOPage{},
	}
}
