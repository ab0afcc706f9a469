package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/aethra/haven/internal/models"
)

// MigrationRecord tracks which one-off data steps have been applied
type MigrationRecord struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"uniqueIndex;size:255"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

// TableName returns the table name for migrations
func (MigrationRecord) TableName() string {
	return "_haven_migrations"
}

// step is a data migration applied at most once
type step struct {
	name string
	run  func(tx *gorm.DB) error
}

// RunMigrations creates or updates every table, then applies pending data steps
func RunMigrations(db *gorm.DB, seedDemo bool) error {
	if err := db.AutoMigrate(&MigrationRecord{}); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	log.Printf("  → Migrating schema...")
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	steps := []step{
		{name: "0001_default_seo", run: seedDefaultSEO},
	}
	if seedDemo {
		steps = append(steps, step{name: "0002_demo_content", run: seedDemoContent})
	}

	for _, s := range steps {
		var count int64
		db.Model(&MigrationRecord{}).Where("name = ?", s.name).Count(&count)
		if count > 0 {
			log.Printf("  ✓ Migration %s already applied", s.name)
			continue
		}

		log.Printf("  → Applying migration %s...", s.name)
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := s.run(tx); err != nil {
				return err
			}
			return tx.Create(&MigrationRecord{Name: s.name}).Error
		})
		if err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", s.name, err)
		}
		log.Printf("  ✓ Migration %s applied successfully", s.name)
	}

	return nil
}

func seedDefaultSEO(tx *gorm.DB) error {
	pages := []models.SEOPage{
		{PagePath: "/", MetaTitle: "Welcome", MetaDescription: "Rooms, dining and seasonal offers.", IsActive: true},
		{PagePath: "/rooms", MetaTitle: "Rooms & Suites", MetaDescription: "Find the room that fits your stay.", IsActive: true},
		{PagePath: "/blog", MetaTitle: "Journal", MetaDescription: "Stories and travel tips from the resort.", IsActive: true},
		{PagePath: "/offers", MetaTitle: "Special Offers", MetaDescription: "Current packages and seasonal deals.", IsActive: true},
	}
	return tx.Create(&pages).Error
}

func seedDemoContent(tx *gorm.DB) error {
	rooms := []models.RoomType{
		{
			Name: "Garden Room", Slug: "garden-room", Capacity: 2, Size: "28 m²", BasePrice: 120,
			Description: "Ground floor room opening onto the garden terrace.",
			Amenities:   models.StringList{"Wi-Fi", "Air conditioning", "Terrace"},
			TotalRooms:  10, IsActive: true,
		},
		{
			Name: "Ocean Suite", Slug: "ocean-suite", Capacity: 4, Size: "55 m²", BasePrice: 260,
			Description: "Corner suite with a separate lounge and sea views.",
			Amenities:   models.StringList{"Wi-Fi", "Bathtub", "Sea view", "Minibar"},
			TotalRooms:  4, IsActive: true,
		},
	}
	if err := tx.Create(&rooms).Error; err != nil {
		return err
	}

	faqs := []models.FAQ{
		{Question: "What time is check-in?", Answer: "Check-in starts at 2 pm; check-out is until 11 am.", DisplayOrder: 1, IsActive: true},
		{Question: "Is breakfast included?", Answer: "Breakfast is included in every rate plan.", DisplayOrder: 2, IsActive: true},
	}
	if err := tx.Create(&faqs).Error; err != nil {
		return err
	}

	category := models.BlogCategory{Name: "Travel Tips", Slug: "travel-tips", IsActive: true}
	if err := tx.Create(&category).Error; err != nil {
		return err
	}

	now := time.Now()
	post := models.BlogPost{
		Title:       "Five Things to Pack for the Coast",
		Slug:        "five-things-to-pack-for-the-coast",
		CategoryID:  &category.ID,
		Content:     `{"description":"Light layers and a good book go a long way.","highlights":["Reef-safe sunscreen","A light jacket for the evenings","Sandals"],"tip":"Ask reception for a beach bag on arrival."}`,
		Excerpt:     "Light layers and a good book go a long way.",
		Author:      "Front Desk",
		Status:      models.StatusPublished,
		PublishedAt: &now,
	}
	return tx.Create(&post).Error
}
