package engine

import (
	"context"
	"encoding/json"
	"sort"

	apperrors "github.com/aethra/haven/internal/errors"
	"github.com/aethra/haven/internal/models"
	"github.com/aethra/haven/internal/store"
)

// Table is what a resource needs from its backing table; *store.Table satisfies it
type Table[T any] interface {
	Backend[T]
	Find(ctx context.Context, q store.Query) store.Result[store.Listing[T]]
}

// Outcome is returned by every admin write: the saved record, the list as
// refreshed after the write, and the notices raised on the way
type Outcome struct {
	Record  interface{} `json:"record,omitempty"`
	Items   interface{} `json:"items"`
	Notices []Notice    `json:"notices"`
}

// Option is one choice of a reference field
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Resource is the type-erased face of a Manager used by the HTTP layer
type Resource interface {
	Schema() *EntitySchema
	List(ctx context.Context, q store.Query) (store.Listing[interface{}], error)
	Get(ctx context.Context, id string) (interface{}, error)
	Draft() Modal
	Save(ctx context.Context, id string, form Form, mode SaveMode) (Outcome, error)
	Remove(ctx context.Context, id string) (Outcome, error)
	Options(ctx context.Context) ([]Option, error)
}

type resource[T Identified] struct {
	schema *EntitySchema
	table  Table[T]
}

// NewResource binds a schema to its table
func NewResource[T Identified](schema *EntitySchema, table Table[T]) Resource {
	return &resource[T]{schema: schema, table: table}
}

func (r *resource[T]) Schema() *EntitySchema { return r.schema }

func (r *resource[T]) List(ctx context.Context, q store.Query) (store.Listing[interface{}], error) {
	res := r.table.Find(ctx, q)
	if !res.OK() {
		return store.Listing[interface{}]{}, res.Err
	}
	items := make([]interface{}, len(res.Data.Items))
	for i, item := range res.Data.Items {
		items[i] = item
	}
	return store.Listing[interface{}]{Items: items, Total: res.Data.Total}, nil
}

func (r *resource[T]) Get(ctx context.Context, id string) (interface{}, error) {
	return r.table.GetByID(ctx, id).Unwrap()
}

func (r *resource[T]) Draft() Modal {
	m := NewManager[T](r.schema, r.table)
	m.OpenCreate()
	return m.Modal()
}

// Save creates (empty id) or updates a record through a fresh manager
func (r *resource[T]) Save(ctx context.Context, id string, form Form, mode SaveMode) (Outcome, error) {
	var notices []Notice
	m := NewManager[T](r.schema, r.table, WithNotifier(collect(&notices)))

	if id == "" {
		m.OpenCreate()
	} else if err := m.OpenEdit(ctx, id); err != nil {
		return Outcome{Notices: notices}, err
	}

	if err := m.Submit(ctx, form, mode); err != nil {
		return Outcome{Notices: notices}, err
	}

	out := Outcome{Items: m.Items(), Notices: notices}
	if saved, ok := m.Last(); ok {
		out.Record = saved
	}
	return out, nil
}

// Remove deletes a record through a fresh manager
func (r *resource[T]) Remove(ctx context.Context, id string) (Outcome, error) {
	var notices []Notice
	m := NewManager[T](r.schema, r.table, WithNotifier(collect(&notices)))
	m.RequestDelete(id)
	if err := m.ConfirmDelete(ctx); err != nil {
		return Outcome{Notices: notices}, err
	}
	return Outcome{Items: m.Items(), Notices: notices}, nil
}

// Options lists every record as a reference choice labelled by its first
// descriptive column
func (r *resource[T]) Options(ctx context.Context) ([]Option, error) {
	res := r.table.GetAll(ctx)
	if !res.OK() {
		return nil, res.Err
	}
	opts := make([]Option, 0, len(res.Data))
	for _, item := range res.Data {
		opts = append(opts, Option{Value: item.RecordID(), Label: labelOf(item)})
	}
	return opts, nil
}

func collect(dst *[]Notice) Notifier {
	return NotifierFunc(func(n Notice) { *dst = append(*dst, n) })
}

func labelOf(record interface{}) string {
	data, err := json.Marshal(record)
	if err != nil {
		return ""
	}
	var fields map[string]interface{}
	if json.Unmarshal(data, &fields) != nil {
		return ""
	}
	for _, key := range []string{"name", "title", "heading", "question", "page_path", "date"} {
		if s, ok := fields[key].(string); ok && s != "" {
			return s
		}
	}
	if id, ok := fields["id"].(string); ok {
		return id
	}
	return ""
}

// =============================================================================
// REGISTRY
// =============================================================================

// Registry resolves entity codes to resources
type Registry struct {
	resources map[string]Resource
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{resources: make(map[string]Resource)}
}

// Register adds a resource under its schema code
func (g *Registry) Register(r Resource) {
	g.resources[r.Schema().Code] = r
}

// Get returns the resource of an entity code
func (g *Registry) Get(code string) (Resource, error) {
	r, ok := g.resources[code]
	if !ok {
		return nil, apperrors.NewNotFoundError("entity " + code)
	}
	return r, nil
}

// Schemas returns every registered schema ordered by code
func (g *Registry) Schemas() []*EntitySchema {
	out := make([]*EntitySchema, 0, len(g.resources))
	for _, r := range g.resources {
		out = append(out, r.Schema())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// BuildRegistry wires every managed entity to its store table
func BuildRegistry(s *store.Store) *Registry {
	g := NewRegistry()
	g.Register(NewResource[models.RoomType](RoomTypeSchema, s.RoomTypes))
	g.Register(NewResource[models.RatePlan](RatePlanSchema, s.RatePlans))
	g.Register(NewResource[models.RoomAvailability](AvailabilitySchema, s.Availability))
	g.Register(NewResource[models.RoomRate](RoomRateSchema, s.Rates))
	g.Register(NewResource[models.BlogCategory](BlogCategorySchema, s.BlogCategories))
	g.Register(NewResource[models.BlogPost](BlogPostSchema, s.BlogPosts))
	g.Register(NewResource[models.FAQ](FAQSchema, s.FAQs))
	g.Register(NewResource[models.PricingPlan](PricingPlanSchema, s.PricingPlans))
	g.Register(NewResource[models.SpecialOffer](SpecialOfferSchema, s.Offers))
	g.Register(NewResource[models.MenuCategory](MenuCategorySchema, s.MenuCategories))
	g.Register(NewResource[models.MenuItem](MenuItemSchema, s.MenuItems))
	g.Register(NewResource[models.Service](ServiceSchema, s.Services))
	g.Register(NewResource[models.ServiceCategory](ServiceCategorySchema, s.ServiceCategories))
	g.Register(NewResource[models.SEOPage](SEOPageSchema, s.SEOPages))
	return g
}
