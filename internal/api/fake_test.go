package api

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/aethra/haven/internal/engine"
	apperrors "github.com/aethra/haven/internal/errors"
	"github.com/aethra/haven/internal/models"
	"github.com/aethra/haven/internal/store"
)

var errOffline = errors.New("database offline")

// pinger

type fakePinger struct{ err error }

func (p fakePinger) Ping(ctx context.Context) error { return p.err }

// content source with nothing published

type emptySource struct{ broken bool }

func emptyList[T any](broken bool) store.Result[[]T] {
	if broken {
		return store.Fail[[]T](apperrors.NewInternalError(errOffline))
	}
	return store.OK[[]T](nil)
}

func (s emptySource) ActiveRoomTypes(ctx context.Context) store.Result[[]models.RoomType] {
	return emptyList[models.RoomType](s.broken)
}
func (s emptySource) RoomBySlug(ctx context.Context, slug string) store.Result[models.RoomType] {
	return store.Fail[models.RoomType](apperrors.NewNotFoundError("room type"))
}
func (s emptySource) PlansForRoom(ctx context.Context, id string) store.Result[[]models.RatePlan] {
	return emptyList[models.RatePlan](s.broken)
}
func (s emptySource) ActivePricingPlans(ctx context.Context) store.Result[[]models.PricingPlan] {
	return emptyList[models.PricingPlan](s.broken)
}
func (s emptySource) ActiveFAQs(ctx context.Context) store.Result[[]models.FAQ] {
	return emptyList[models.FAQ](s.broken)
}
func (s emptySource) ActiveBlogCategories(ctx context.Context) store.Result[[]models.BlogCategory] {
	return emptyList[models.BlogCategory](s.broken)
}
func (s emptySource) PublishedPosts(ctx context.Context, category, search string) store.Result[[]models.BlogPost] {
	return emptyList[models.BlogPost](s.broken)
}
func (s emptySource) PostBySlug(ctx context.Context, slug string) store.Result[models.BlogPost] {
	return store.Fail[models.BlogPost](apperrors.NewNotFoundError("blog post"))
}
func (s emptySource) IncrementViews(ctx context.Context, id string) store.Result[int] {
	return store.OK(1)
}
func (s emptySource) ActiveOffers(ctx context.Context) store.Result[[]models.SpecialOffer] {
	return emptyList[models.SpecialOffer](s.broken)
}
func (s emptySource) FeaturedOffers(ctx context.Context) store.Result[[]models.SpecialOffer] {
	return emptyList[models.SpecialOffer](s.broken)
}
func (s emptySource) ActiveMenuCategories(ctx context.Context) store.Result[[]models.MenuCategory] {
	return emptyList[models.MenuCategory](s.broken)
}
func (s emptySource) AvailableMenu(ctx context.Context, category string) store.Result[[]models.MenuItem] {
	return emptyList[models.MenuItem](s.broken)
}
func (s emptySource) ActiveServices(ctx context.Context, category string) store.Result[[]models.Service] {
	return emptyList[models.Service](s.broken)
}
func (s emptySource) SEOFor(ctx context.Context, path string) store.Result[models.SEOPage] {
	return store.Fail[models.SEOPage](apperrors.NewNotFoundError("SEO page"))
}

// admin accounts

type memoryAdmins struct {
	mu     sync.Mutex
	admins []models.Admin
}

func (m *memoryAdmins) AdminByEmail(ctx context.Context, email string) store.Result[models.Admin] {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.admins {
		if a.Email == strings.ToLower(email) {
			return store.OK(a)
		}
	}
	return store.Fail[models.Admin](apperrors.NewNotFoundError("admin"))
}

func (m *memoryAdmins) CreateAdmin(ctx context.Context, admin models.Admin) store.Result[models.Admin] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return store.OK(m.add(admin))
}

func (m *memoryAdmins) CreateFirstAdmin(ctx context.Context, admin models.Admin) store.Result[models.Admin] {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.admins) > 0 {
		return store.Fail[models.Admin](apperrors.NewConflictError("admin", "setup has already been completed"))
	}
	return store.OK(m.add(admin))
}

func (m *memoryAdmins) add(admin models.Admin) models.Admin {
	admin.ID = fmt.Sprintf("admin-%d", len(m.admins)+1)
	admin.Email = strings.ToLower(admin.Email)
	m.admins = append(m.admins, admin)
	return admin
}

func (m *memoryAdmins) AdminCount(ctx context.Context) store.Result[int64] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return store.OK(int64(len(m.admins)))
}

func (m *memoryAdmins) TouchLogin(ctx context.Context, id string) store.Result[bool] {
	return store.OK(true)
}

// dashboard statistics

type fakeStats struct{}

func (fakeStats) Counts(ctx context.Context) store.Result[store.DashboardCounts] {
	return store.OK(store.DashboardCounts{FAQs: 2})
}

func (fakeStats) RecentPosts(ctx context.Context, limit int) store.Result[[]models.BlogPost] {
	return store.Fail[[]models.BlogPost](apperrors.NewInternalError(errOffline))
}

// shell preferences

type memoryPrefs struct {
	values map[string]map[string]string
}

func newMemoryPrefs() *memoryPrefs {
	return &memoryPrefs{values: map[string]map[string]string{}}
}

func (p *memoryPrefs) LoadPreferences(ctx context.Context, adminID string) store.Result[map[string]string] {
	out := map[string]string{}
	for k, v := range p.values[adminID] {
		out[k] = v
	}
	return store.OK(out)
}

func (p *memoryPrefs) SavePreference(ctx context.Context, adminID, key, value string) store.Result[bool] {
	if p.values[adminID] == nil {
		p.values[adminID] = map[string]string{}
	}
	p.values[adminID][key] = value
	return store.OK(true)
}

// FAQ table

type faqTable struct {
	rows    []models.FAQ
	next    int
	deletes int
}

func (t *faqTable) GetAll(ctx context.Context) store.Result[[]models.FAQ] {
	return store.OK(append([]models.FAQ(nil), t.rows...))
}

func (t *faqTable) Find(ctx context.Context, q store.Query) store.Result[store.Listing[models.FAQ]] {
	var out []models.FAQ
	for _, r := range t.rows {
		if q.Search == "" || strings.Contains(strings.ToLower(r.Question), strings.ToLower(q.Search)) {
			out = append(out, r)
		}
	}
	total := int64(len(out))
	if q.Offset < len(out) {
		out = out[q.Offset:]
	} else {
		out = nil
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return store.OK(store.Listing[models.FAQ]{Items: out, Total: total})
}

func (t *faqTable) GetByID(ctx context.Context, id string) store.Result[models.FAQ] {
	for _, r := range t.rows {
		if r.ID == id {
			return store.OK(r)
		}
	}
	return store.Fail[models.FAQ](apperrors.NewNotFoundError("FAQ"))
}

func (t *faqTable) Create(ctx context.Context, record models.FAQ) store.Result[models.FAQ] {
	t.next++
	record.ID = fmt.Sprintf("faq-%d", t.next)
	t.rows = append(t.rows, record)
	return store.OK(record)
}

func (t *faqTable) Update(ctx context.Context, id string, patch map[string]interface{}) store.Result[models.FAQ] {
	for i, r := range t.rows {
		if r.ID != id {
			continue
		}
		if v, ok := patch["question"].(string); ok {
			r.Question = v
		}
		if v, ok := patch["answer"].(string); ok {
			r.Answer = v
		}
		if v, ok := patch["display_order"].(int); ok {
			r.DisplayOrder = v
		}
		if v, ok := patch["is_active"].(bool); ok {
			r.IsActive = v
		}
		t.rows[i] = r
		return store.OK(r)
	}
	return store.Fail[models.FAQ](apperrors.NewNotFoundError("FAQ"))
}

func (t *faqTable) Delete(ctx context.Context, id string) store.Result[bool] {
	t.deletes++
	for i, r := range t.rows {
		if r.ID == id {
			t.rows = append(t.rows[:i:i], t.rows[i+1:]...)
			return store.OK(true)
		}
	}
	return store.Fail[bool](apperrors.NewNotFoundError("FAQ"))
}

var _ engine.Table[models.FAQ] = (*faqTable)(nil)

// calendar

type memoryCalendar struct {
	availability []models.RoomAvailability
	rates        []models.RoomRate
	failOn       string
}

func (m *memoryCalendar) UpsertAvailability(ctx context.Context, row models.RoomAvailability) store.Result[models.RoomAvailability] {
	if row.Date == m.failOn {
		return store.Fail[models.RoomAvailability](apperrors.NewInternalError(errOffline))
	}
	m.availability = append(m.availability, row)
	return store.OK(row)
}

func (m *memoryCalendar) UpsertRate(ctx context.Context, row models.RoomRate) store.Result[models.RoomRate] {
	if row.Date == m.failOn {
		return store.Fail[models.RoomRate](apperrors.NewInternalError(errOffline))
	}
	m.rates = append(m.rates, row)
	return store.OK(row)
}

func (m *memoryCalendar) AvailabilityBetween(ctx context.Context, roomTypeID, from, to string) store.Result[[]models.RoomAvailability] {
	var out []models.RoomAvailability
	for _, r := range m.availability {
		if r.Date >= from && r.Date <= to {
			out = append(out, r)
		}
	}
	return store.OK(out)
}

func (m *memoryCalendar) RatesBetween(ctx context.Context, roomTypeID, from, to string) store.Result[[]models.RoomRate] {
	var out []models.RoomRate
	for _, r := range m.rates {
		if r.Date >= from && r.Date <= to {
			out = append(out, r)
		}
	}
	return store.OK(out)
}
