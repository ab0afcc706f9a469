package engine

import (
	"strings"

	apperrors "github.com/aethra/haven/internal/errors"
	"github.com/aethra/haven/internal/models"
)

// Entity codes used in admin routes (/admin/data/:entity)
const (
	CodeRoomTypes         = "room-types"
	CodeRatePlans         = "rate-plans"
	CodeAvailability      = "availability"
	CodeRoomRates         = "room-rates"
	CodeBlogPosts         = "blog-posts"
	CodeBlogCategories    = "blog-categories"
	CodeFAQs              = "faqs"
	CodePricingPlans      = "pricing-plans"
	CodeSpecialOffers     = "special-offers"
	CodeMenuCategories    = "menu-categories"
	CodeMenuItems         = "menu-items"
	CodeServices          = "services"
	CodeServiceCategories = "service-categories"
	CodeSEOPages          = "seo-pages"
)

var activeRule = &PublishRule{Column: "is_active", Published: true, Draft: false}

var (
	RoomTypeSchema = &EntitySchema{
		Code: CodeRoomTypes, Singular: "room type", Plural: "room types",
		Fields: []FieldSpec{
			{Column: "name", Label: "Name", Type: FieldText, Required: true},
			{Column: "slug", Label: "Slug", Type: FieldText, Help: "Derived from the name when left blank"},
			{Column: "description", Label: "Description", Type: FieldLongText},
			{Column: "capacity", Label: "Capacity", Type: FieldInteger, Min: bound(1)},
			{Column: "size", Label: "Size", Type: FieldText, Help: "e.g. 32 m²"},
			{Column: "base_price", Label: "Base price", Type: FieldNumber, Required: true, Min: bound(0)},
			{Column: "amenities", Label: "Amenities", Type: FieldList},
			{Column: "total_rooms", Label: "Total rooms", Type: FieldInteger, Min: bound(0)},
			{Column: "images", Label: "Images", Type: FieldList, Help: "Image URLs, one per line"},
			{Column: "is_active", Label: "Active", Type: FieldBool},
		},
		Defaults:    map[string]interface{}{"capacity": 2, "total_rooms": 1, "amenities": []string{}, "images": []string{}, "is_active": true},
		SlugFrom:    "name",
		Publish:     activeRule,
		ListColumns: []string{"name", "capacity", "base_price", "total_rooms", "is_active"},
	}

	RatePlanSchema = &EntitySchema{
		Code: CodeRatePlans, Singular: "rate plan", Plural: "rate plans",
		Fields: []FieldSpec{
			{Column: "name", Label: "Name", Type: FieldText, Required: true},
			{Column: "room_type_id", Label: "Room type", Type: FieldReference, Ref: CodeRoomTypes, Required: true},
			{Column: "base_rate", Label: "Base rate", Type: FieldNumber, Required: true, Min: bound(0)},
			{Column: "weekend_rate", Label: "Weekend rate", Type: FieldNumber, Min: bound(0)},
			{Column: "seasonal_rate", Label: "Seasonal rate", Type: FieldNumber, Min: bound(0)},
			{Column: "description", Label: "Description", Type: FieldLongText},
			{Column: "is_active", Label: "Active", Type: FieldBool},
		},
		Defaults:    map[string]interface{}{"is_active": true},
		Publish:     activeRule,
		ListColumns: []string{"name", "room_type_name", "base_rate", "weekend_rate", "is_active"},
	}

	AvailabilitySchema = &EntitySchema{
		Code: CodeAvailability, Singular: "availability entry", Plural: "availability",
		Fields: []FieldSpec{
			{Column: "room_type_id", Label: "Room type", Type: FieldReference, Ref: CodeRoomTypes, Required: true},
			{Column: "date", Label: "Date", Type: FieldDate, Required: true},
			{Column: "available_rooms", Label: "Available rooms", Type: FieldInteger, Required: true, Min: bound(0)},
			{Column: "blocked_rooms", Label: "Blocked rooms", Type: FieldInteger, Min: bound(0)},
			{Column: "minimum_stay", Label: "Minimum stay", Type: FieldInteger, Min: bound(1)},
			{Column: "reason", Label: "Reason", Type: FieldText},
			{Column: "notes", Label: "Notes", Type: FieldLongText},
		},
		Defaults:    map[string]interface{}{"blocked_rooms": 0, "minimum_stay": 1},
		ListColumns: []string{"date", "room_type_name", "available_rooms", "blocked_rooms", "minimum_stay"},
	}

	RoomRateSchema = &EntitySchema{
		Code: CodeRoomRates, Singular: "room rate", Plural: "room rates",
		Fields: []FieldSpec{
			{Column: "room_type_id", Label: "Room type", Type: FieldReference, Ref: CodeRoomTypes, Required: true},
			{Column: "date", Label: "Date", Type: FieldDate, Required: true},
			{Column: "rate", Label: "Rate", Type: FieldNumber, Required: true, Min: bound(0)},
			{Column: "notes", Label: "Notes", Type: FieldText},
		},
		ListColumns: []string{"date", "room_type_name", "rate"},
	}

	BlogCategorySchema = &EntitySchema{
		Code: CodeBlogCategories, Singular: "blog category", Plural: "blog categories",
		Fields: []FieldSpec{
			{Column: "name", Label: "Name", Type: FieldText, Required: true},
			{Column: "slug", Label: "Slug", Type: FieldText},
			{Column: "description", Label: "Description", Type: FieldLongText},
			{Column: "is_active", Label: "Active", Type: FieldBool},
		},
		Defaults:    map[string]interface{}{"is_active": true},
		SlugFrom:    "name",
		Publish:     activeRule,
		ListColumns: []string{"name", "slug", "is_active"},
	}

	BlogPostSchema = &EntitySchema{
		Code: CodeBlogPosts, Singular: "blog post", Plural: "blog posts",
		Fields: []FieldSpec{
			{Column: "title", Label: "Title", Type: FieldText, Required: true},
			{Column: "slug", Label: "Slug", Type: FieldText},
			{Column: "category_id", Label: "Category", Type: FieldReference, Ref: CodeBlogCategories, Nullable: true},
			{Column: "featured_image", Label: "Featured image", Type: FieldImage},
			{Column: "content", Label: "Content", Type: FieldLongText, Required: true, Help: "Markdown, or JSON with description, highlights and tip"},
			{Column: "excerpt", Label: "Excerpt", Type: FieldLongText},
			{Column: "author", Label: "Author", Type: FieldText},
			{Column: "status", Label: "Status", Type: FieldChoice, Options: []string{models.StatusDraft, models.StatusPublished}},
		},
		Defaults: map[string]interface{}{"status": models.StatusDraft},
		SlugFrom: "title",
		Publish: &PublishRule{
			Column:      "status",
			Published:   models.StatusPublished,
			Draft:       models.StatusDraft,
			StampColumn: "published_at",
		},
		ListColumns: []string{"title", "category_name", "status", "views", "published_at"},
	}

	FAQSchema = &EntitySchema{
		Code: CodeFAQs, Singular: "FAQ", Plural: "FAQs",
		Fields: []FieldSpec{
			{Column: "question", Label: "Question", Type: FieldLongText, Required: true},
			{Column: "answer", Label: "Answer", Type: FieldLongText, Required: true},
			{Column: "display_order", Label: "Display order", Type: FieldInteger, Min: bound(0)},
			{Column: "is_active", Label: "Active", Type: FieldBool},
		},
		Defaults:    map[string]interface{}{"display_order": 0, "is_active": true},
		Publish:     activeRule,
		ListColumns: []string{"question", "display_order", "is_active"},
	}

	PricingPlanSchema = &EntitySchema{
		Code: CodePricingPlans, Singular: "pricing plan", Plural: "pricing plans",
		Fields: []FieldSpec{
			{Column: "name", Label: "Name", Type: FieldText, Required: true},
			{Column: "duration", Label: "Duration", Type: FieldText},
			{Column: "includes", Label: "Includes", Type: FieldLongText},
			{Column: "price", Label: "Price", Type: FieldText, Required: true, Help: "Shown as entered, e.g. $120 / night"},
			{Column: "is_active", Label: "Active", Type: FieldBool},
		},
		Defaults:    map[string]interface{}{"is_active": true},
		Publish:     activeRule,
		ListColumns: []string{"name", "duration", "price", "is_active"},
	}

	SpecialOfferSchema = &EntitySchema{
		Code: CodeSpecialOffers, Singular: "special offer", Plural: "special offers",
		Fields: []FieldSpec{
			{Column: "title", Label: "Title", Type: FieldText, Required: true},
			{Column: "slug", Label: "Slug", Type: FieldText},
			{Column: "description", Label: "Description", Type: FieldLongText},
			{Column: "discount_value", Label: "Discount (%)", Type: FieldNumber, Min: bound(0), Max: bound(100)},
			{Column: "valid_from", Label: "Valid from", Type: FieldDate, Required: true},
			{Column: "valid_to", Label: "Valid to", Type: FieldDate, Required: true},
			{Column: "room_type", Label: "Room type", Type: FieldText},
			{Column: "status", Label: "Status", Type: FieldChoice, Options: []string{models.OfferActive, models.OfferScheduled}},
			{Column: "is_featured", Label: "Featured", Type: FieldBool},
			{Column: "current_bookings", Label: "Current bookings", Type: FieldInteger, Min: bound(0)},
		},
		Defaults: map[string]interface{}{"status": models.OfferScheduled, "is_featured": false, "current_bookings": 0},
		SlugFrom: "title",
		Publish:  &PublishRule{Column: "status", Published: models.OfferActive, Draft: models.OfferScheduled},
		Check: func(values map[string]interface{}) error {
			from, _ := values["valid_from"].(string)
			to, _ := values["valid_to"].(string)
			if from != "" && to != "" && to < from {
				return apperrors.NewValidationError("valid_to", "Valid to must not be before valid from")
			}
			return nil
		},
		ListColumns: []string{"title", "discount_value", "valid_from", "valid_to", "status", "is_featured"},
	}

	MenuCategorySchema = &EntitySchema{
		Code: CodeMenuCategories, Singular: "menu category", Plural: "menu categories",
		Fields: []FieldSpec{
			{Column: "name", Label: "Name", Type: FieldText, Required: true},
			{Column: "description", Label: "Description", Type: FieldLongText},
			{Column: "display_order", Label: "Display order", Type: FieldInteger, Min: bound(0)},
			{Column: "is_active", Label: "Active", Type: FieldBool},
		},
		Defaults:    map[string]interface{}{"display_order": 0, "is_active": true},
		Publish:     activeRule,
		ListColumns: []string{"name", "display_order", "is_active"},
	}

	MenuItemSchema = &EntitySchema{
		Code: CodeMenuItems, Singular: "menu item", Plural: "menu items",
		Fields: []FieldSpec{
			{Column: "name", Label: "Name", Type: FieldText, Required: true},
			{Column: "description", Label: "Description", Type: FieldLongText},
			{Column: "price", Label: "Price", Type: FieldNumber, Required: true, Min: bound(0)},
			{Column: "category_name", Label: "Category", Type: FieldText, Required: true, Help: "Name of a menu category"},
			{Column: "image_url", Label: "Image", Type: FieldImage},
			{Column: "is_veg", Label: "Vegetarian", Type: FieldBool},
			{Column: "spice_level", Label: "Spice level", Type: FieldInteger, Min: bound(0), Max: bound(3)},
			{Column: "is_available", Label: "Available", Type: FieldBool},
			{Column: "is_active", Label: "Active", Type: FieldBool},
		},
		Defaults:    map[string]interface{}{"spice_level": 0, "is_veg": false, "is_available": true, "is_active": true},
		Publish:     activeRule,
		ListColumns: []string{"name", "category_name", "price", "is_veg", "is_available"},
	}

	ServiceSchema = &EntitySchema{
		Code: CodeServices, Singular: "service", Plural: "services",
		Fields: []FieldSpec{
			{Column: "heading", Label: "Heading", Type: FieldText, Required: true},
			{Column: "number", Label: "Number", Type: FieldInteger, Min: bound(0)},
			{Column: "category", Label: "Category", Type: FieldText},
			{Column: "image", Label: "Image", Type: FieldImage},
			{Column: "description", Label: "Description", Type: FieldLongText},
			{Column: "status", Label: "Status", Type: FieldChoice, Options: []string{"active", "inactive"}},
		},
		Defaults:    map[string]interface{}{"status": "active", "number": 0},
		Publish:     &PublishRule{Column: "status", Published: "active", Draft: "inactive"},
		ListColumns: []string{"number", "heading", "category", "status"},
	}

	ServiceCategorySchema = &EntitySchema{
		Code: CodeServiceCategories, Singular: "service category", Plural: "service categories",
		Fields: []FieldSpec{
			{Column: "name", Label: "Name", Type: FieldText, Required: true},
			{Column: "slug", Label: "Slug", Type: FieldText},
			{Column: "description", Label: "Description", Type: FieldLongText},
			{Column: "is_active", Label: "Active", Type: FieldBool},
		},
		Defaults:    map[string]interface{}{"is_active": true},
		SlugFrom:    "name",
		Publish:     activeRule,
		ListColumns: []string{"name", "slug", "is_active"},
	}

	SEOPageSchema = &EntitySchema{
		Code: CodeSEOPages, Singular: "SEO page", Plural: "SEO pages",
		Fields: []FieldSpec{
			{Column: "page_path", Label: "Page path", Type: FieldText, Required: true, Help: "Public route, e.g. /rooms"},
			{Column: "meta_title", Label: "Meta title", Type: FieldText, Required: true},
			{Column: "meta_description", Label: "Meta description", Type: FieldLongText},
			{Column: "keywords", Label: "Keywords", Type: FieldText},
			{Column: "og_image", Label: "Social image", Type: FieldImage},
			{Column: "is_active", Label: "Active", Type: FieldBool},
		},
		Defaults: map[string]interface{}{"is_active": true},
		Publish:  activeRule,
		Check: func(values map[string]interface{}) error {
			if path, ok := values["page_path"].(string); ok && !strings.HasPrefix(path, "/") {
				return apperrors.NewValidationError("page_path", "Page path must start with /")
			}
			return nil
		},
		ListColumns: []string{"page_path", "meta_title", "is_active"},
	}
)
