package store

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "github.com/aethra/haven/internal/errors"
	"github.com/aethra/haven/internal/models"
)

// =============================================================================
// ADMINS
// =============================================================================

// AdminByEmail finds an admin by email, case-insensitively
func (s *Store) AdminByEmail(ctx context.Context, email string) Result[models.Admin] {
	return s.Admins.first(ctx, "get", "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

// CreateAdmin stores a new admin; the email is normalized to lower case
func (s *Store) CreateAdmin(ctx context.Context, admin models.Admin) Result[models.Admin] {
	admin.Email = strings.ToLower(strings.TrimSpace(admin.Email))
	return s.Admins.Create(ctx, admin)
}

// CreateFirstAdmin stores the setup admin. It conflicts once any admin
// exists, and the founder index rejects a concurrent second setup.
func (s *Store) CreateFirstAdmin(ctx context.Context, admin models.Admin) Result[models.Admin] {
	admin.Email = strings.ToLower(strings.TrimSpace(admin.Email))
	founder := true
	admin.Founder = &founder

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Admin{}).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return apperrors.NewConflictError("admin", "setup has already been completed")
		}
		return tx.Create(&admin).Error
	})
	if err != nil {
		return failed[models.Admin]("create", s.Admins.Label(), err)
	}
	return s.Admins.GetByID(ctx, admin.ID)
}

// AdminCount reports how many admins exist; zero means setup is pending
func (s *Store) AdminCount(ctx context.Context) Result[int64] {
	return s.Admins.Count(ctx)
}

// ListAdmins returns every admin ordered by email
func (s *Store) ListAdmins(ctx context.Context) Result[[]models.Admin] {
	return s.Admins.GetAll(ctx)
}

// TouchLogin records a successful sign-in
func (s *Store) TouchLogin(ctx context.Context, id string) Result[bool] {
	err := s.db.WithContext(ctx).Model(&models.Admin{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", time.Now()).Error
	if err != nil {
		return failed[bool]("record login of", s.Admins.Label(), err)
	}
	return OK(true)
}

// =============================================================================
// PREFERENCES
// =============================================================================

// LoadPreferences returns every persisted shell setting of an admin
func (s *Store) LoadPreferences(ctx context.Context, adminID string) Result[map[string]string] {
	var rows []models.Preference
	if err := s.db.WithContext(ctx).Where("admin_id = ?", adminID).Find(&rows).Error; err != nil {
		return failed[map[string]string]("load", "preferences", err)
	}
	prefs := make(map[string]string, len(rows))
	for _, r := range rows {
		prefs[r.Key] = r.Value
	}
	return OK(prefs)
}

// SavePreference writes one setting; the last write wins
func (s *Store) SavePreference(ctx context.Context, adminID, key, value string) Result[bool] {
	row := models.Preference{AdminID: adminID, Key: key, Value: value}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "admin_id"}, {Name: "pref_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&row).Error
	if err != nil {
		return failed[bool]("save", "preference", err)
	}
	return OK(true)
}

// =============================================================================
// DASHBOARD
// =============================================================================

// DashboardCounts is the number of records per entity shown on the admin home
type DashboardCounts struct {
	RoomTypes      int64 `json:"room_types"`
	RatePlans      int64 `json:"rate_plans"`
	BlogPosts      int64 `json:"blog_posts"`
	PublishedPosts int64 `json:"published_posts"`
	DraftPosts     int64 `json:"draft_posts"`
	ActiveOffers   int64 `json:"active_offers"`
	MenuItems      int64 `json:"menu_items"`
	FAQs           int64 `json:"faqs"`
	Services       int64 `json:"services"`
	TotalViews     int64 `json:"total_views"`
}

// Counts gathers the dashboard statistics
func (s *Store) Counts(ctx context.Context) Result[DashboardCounts] {
	var c DashboardCounts
	db := s.db.WithContext(ctx)

	counts := []struct {
		model interface{}
		where string
		args  []interface{}
		dest  *int64
	}{
		{&models.RoomType{}, "", nil, &c.RoomTypes},
		{&models.RatePlan{}, "", nil, &c.RatePlans},
		{&models.BlogPost{}, "", nil, &c.BlogPosts},
		{&models.BlogPost{}, "status = ?", []interface{}{models.StatusPublished}, &c.PublishedPosts},
		{&models.BlogPost{}, "status = ?", []interface{}{models.StatusDraft}, &c.DraftPosts},
		{&models.SpecialOffer{}, "status = ?", []interface{}{models.OfferActive}, &c.ActiveOffers},
		{&models.MenuItem{}, "", nil, &c.MenuItems},
		{&models.FAQ{}, "", nil, &c.FAQs},
		{&models.Service{}, "", nil, &c.Services},
	}
	for _, q := range counts {
		tx := db.Model(q.model)
		if q.where != "" {
			tx = tx.Where(q.where, q.args...)
		}
		if err := tx.Count(q.dest).Error; err != nil {
			return failed[DashboardCounts]("count", "dashboard", err)
		}
	}

	if err := db.Model(&models.BlogPost{}).Select("COALESCE(SUM(views), 0)").Scan(&c.TotalViews).Error; err != nil {
		return failed[DashboardCounts]("count", "dashboard", err)
	}
	return OK(c)
}
