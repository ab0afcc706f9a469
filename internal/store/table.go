package store

import (
	"context"
	"fmt"
	"log"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	apperrors "github.com/aethra/haven/internal/errors"
	"github.com/aethra/haven/internal/models"
	"github.com/aethra/haven/internal/security"
)

// TableConfig describes how one entity table is read
type TableConfig[T any] struct {
	Label      string                  // human name used in errors and logs ("blog post")
	Order      string                  // default ORDER BY
	Active     func(*gorm.DB) *gorm.DB // scope selecting the public subset
	Preloads   []string                // belongs-to relations to load
	Normalize  func(*T)                // flattens loaded relations into display fields
	Searchable []string                // columns matched by Query.Search
}

// Table is the generic query client of one entity table
type Table[T any] struct {
	db  *gorm.DB
	cfg TableConfig[T]

	once    sync.Once
	columns map[string]bool
}

// Query narrows a list call
type Query struct {
	Search     string
	Filters    []Filter
	Sort       string
	Desc       bool
	Limit      int
	Offset     int
	ActiveOnly bool
}

// Filter is one column condition; Op is one of security.AllowedFilterOperators
type Filter struct {
	Column string
	Op     string
	Value  interface{}
}

// readOnly columns are managed by the database layer and never patched
var readOnly = map[string]bool{"id": true, "created_at": true, "updated_at": true}

// NewTable creates a table client
func NewTable[T any](db *gorm.DB, cfg TableConfig[T]) *Table[T] {
	if cfg.Order == "" {
		cfg.Order = "created_at DESC"
	}
	return &Table[T]{db: db, cfg: cfg}
}

// Label returns the human name of the entity
func (t *Table[T]) Label() string {
	return t.cfg.Label
}

// Columns returns the persisted column names of T
func (t *Table[T]) Columns() map[string]bool {
	t.once.Do(func() {
		var namer schema.Namer = schema.NamingStrategy{}
		if t.db != nil {
			namer = t.db.NamingStrategy
		}
		t.columns = make(map[string]bool)
		s, err := schema.Parse(new(T), &sync.Map{}, namer)
		if err != nil {
			log.Printf("store: failed to parse schema of %s: %v", t.cfg.Label, err)
			return
		}
		for _, f := range s.Fields {
			if f.DBName != "" {
				t.columns[f.DBName] = true
			}
		}
	})
	return t.columns
}

func (t *Table[T]) query(ctx context.Context) *gorm.DB {
	q := t.db.WithContext(ctx).Model(new(T))
	for _, p := range t.cfg.Preloads {
		q = q.Preload(p)
	}
	return q
}

func (t *Table[T]) normalize(items []T) []T {
	if t.cfg.Normalize != nil {
		for i := range items {
			t.cfg.Normalize(&items[i])
		}
	}
	return items
}

func failed[R any](op, label string, err error) Result[R] {
	log.Printf("store: failed to %s %s: %v", op, label, err)
	return Fail[R](apperrors.FromDB(err, label))
}

// GetAll returns every row in the default order
func (t *Table[T]) GetAll(ctx context.Context) Result[[]T] {
	var items []T
	if err := t.query(ctx).Order(t.cfg.Order).Find(&items).Error; err != nil {
		return failed[[]T]("list", t.cfg.Label, err)
	}
	return OK(t.normalize(items))
}

// GetActive returns the public subset; tables without an active scope return everything
func (t *Table[T]) GetActive(ctx context.Context) Result[[]T] {
	return t.where(ctx, "list active", t.activeScope)
}

func (t *Table[T]) activeScope(q *gorm.DB) *gorm.DB {
	if t.cfg.Active == nil {
		return q
	}
	return t.cfg.Active(q)
}

// where lists rows matching a scope in the default order
func (t *Table[T]) where(ctx context.Context, op string, scope func(*gorm.DB) *gorm.DB) Result[[]T] {
	var items []T
	if err := scope(t.query(ctx)).Order(t.cfg.Order).Find(&items).Error; err != nil {
		return failed[[]T](op, t.cfg.Label, err)
	}
	return OK(t.normalize(items))
}

// Find lists rows filtered, searched, sorted and paged by q
func (t *Table[T]) Find(ctx context.Context, q Query) Result[Listing[T]] {
	base := t.db.WithContext(ctx).Model(new(T))
	if q.ActiveOnly {
		base = t.activeScope(base)
	}

	if cond, args := security.SearchCondition(t.cfg.Searchable, q.Search); cond != "" {
		base = base.Where(cond, args...)
	}

	cols := t.Columns()
	for _, f := range q.Filters {
		if !cols[f.Column] {
			return Fail[Listing[T]](apperrors.NewValidationError(f.Column, fmt.Sprintf("unknown filter column %q", f.Column)))
		}
		cond, args, err := security.FilterCondition(f.Column, f.Op, f.Value)
		if err != nil {
			return Fail[Listing[T]](apperrors.NewValidationError(f.Column, err.Error()))
		}
		base = base.Where(cond, args...)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return failed[Listing[T]]("count", t.cfg.Label, err)
	}

	order := t.cfg.Order
	if q.Sort != "" {
		if !cols[q.Sort] {
			return Fail[Listing[T]](apperrors.NewValidationError(q.Sort, fmt.Sprintf("cannot sort by %q", q.Sort)))
		}
		clauseStr, err := security.OrderClause(q.Sort, q.Desc)
		if err != nil {
			return Fail[Listing[T]](apperrors.NewValidationError(q.Sort, err.Error()))
		}
		order = clauseStr
	}

	list := base.Order(order)
	for _, p := range t.cfg.Preloads {
		list = list.Preload(p)
	}
	if q.Limit > 0 {
		list = list.Limit(q.Limit).Offset(q.Offset)
	}

	var items []T
	if err := list.Find(&items).Error; err != nil {
		return failed[Listing[T]]("list", t.cfg.Label, err)
	}
	return OK(Listing[T]{Items: t.normalize(items), Total: total})
}

// GetByID returns one row or a not-found error
func (t *Table[T]) GetByID(ctx context.Context, id string) Result[T] {
	return t.first(ctx, "get", "id = ?", id)
}

// GetBySlug returns one active row by slug
func (t *Table[T]) GetBySlug(ctx context.Context, slug string) Result[T] {
	if !t.Columns()["slug"] {
		return Fail[T](apperrors.NewBadRequestError(t.cfg.Label + " has no slug"))
	}
	var item T
	if err := t.activeScope(t.query(ctx)).Where("slug = ?", slug).First(&item).Error; err != nil {
		return failed[T]("get", t.cfg.Label, err)
	}
	t.normalizeOne(&item)
	return OK(item)
}

func (t *Table[T]) first(ctx context.Context, op string, cond string, args ...interface{}) Result[T] {
	var item T
	if err := t.query(ctx).Where(cond, args...).First(&item).Error; err != nil {
		return failed[T](op, t.cfg.Label, err)
	}
	t.normalizeOne(&item)
	return OK(item)
}

func (t *Table[T]) normalizeOne(item *T) {
	if t.cfg.Normalize != nil {
		t.cfg.Normalize(item)
	}
}

// Create inserts record and returns it as stored
func (t *Table[T]) Create(ctx context.Context, record T) Result[T] {
	if err := t.db.WithContext(ctx).Omit(clause.Associations).Create(&record).Error; err != nil {
		return failed[T]("create", t.cfg.Label, err)
	}
	if id := recordID(record); id != "" {
		return t.GetByID(ctx, id)
	}
	return OK(record)
}

// Update applies a partial update: only the keys present in patch change
func (t *Table[T]) Update(ctx context.Context, id string, patch map[string]interface{}) Result[T] {
	clean, err := t.SanitizePatch(patch)
	if err != nil {
		return Fail[T](err)
	}

	var current T
	if err := t.db.WithContext(ctx).Where("id = ?", id).First(&current).Error; err != nil {
		return failed[T]("update", t.cfg.Label, err)
	}
	if len(clean) > 0 {
		if err := t.db.WithContext(ctx).Model(&current).Omit(clause.Associations).Updates(clean).Error; err != nil {
			return failed[T]("update", t.cfg.Label, err)
		}
	}
	return t.GetByID(ctx, id)
}

// SanitizePatch drops read-only keys, rejects unknown columns and
// converts string lists into JSON list values
func (t *Table[T]) SanitizePatch(patch map[string]interface{}) (map[string]interface{}, error) {
	cols := t.Columns()
	clean := make(map[string]interface{}, len(patch))
	for key, value := range patch {
		if readOnly[key] {
			continue
		}
		if !cols[key] {
			return nil, apperrors.NewValidationError(key, fmt.Sprintf("unknown field %q", key))
		}
		clean[key] = listValue(value)
	}
	return clean, nil
}

func listValue(v interface{}) interface{} {
	switch list := v.(type) {
	case []string:
		return models.StringList(list)
	case []interface{}:
		out := make(models.StringList, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return v
			}
			out = append(out, s)
		}
		return out
	default:
		return v
	}
}

// Delete removes the row; a missing id is a not-found error
func (t *Table[T]) Delete(ctx context.Context, id string) Result[bool] {
	res := t.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return failed[bool]("delete", t.cfg.Label, res.Error)
	}
	if res.RowsAffected == 0 {
		return Fail[bool](apperrors.NewNotFoundError(t.cfg.Label))
	}
	return OK(true)
}

// Count returns the number of rows
func (t *Table[T]) Count(ctx context.Context) Result[int64] {
	var n int64
	if err := t.db.WithContext(ctx).Model(new(T)).Count(&n).Error; err != nil {
		return failed[int64]("count", t.cfg.Label, err)
	}
	return OK(n)
}

func recordID(record interface{}) string {
	if r, ok := record.(interface{ RecordID() string }); ok {
		return r.RecordID()
	}
	return ""
}
