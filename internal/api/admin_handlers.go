package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aethra/haven/internal/engine"
	apperrors "github.com/aethra/haven/internal/errors"
	"github.com/aethra/haven/internal/store"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// AdminHandler exposes every registered entity through one generic CRUD API
type AdminHandler struct {
	registry *engine.Registry
}

// NewAdminHandler creates the admin CRUD handler
func NewAdminHandler(registry *engine.Registry) *AdminHandler {
	return &AdminHandler{registry: registry}
}

func (h *AdminHandler) resource(c *gin.Context) (engine.Resource, bool) {
	r, err := h.registry.Get(c.Param("entity"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return r, true
}

// =============================================================================
// SCHEMA
// =============================================================================

// Schemas lists every managed entity
// GET /admin/schema
func (h *AdminHandler) Schemas(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"entities": h.registry.Schemas()})
}

// Schema describes one entity
// GET /admin/schema/:entity
func (h *AdminHandler) Schema(c *gin.Context) {
	r, ok := h.resource(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, r.Schema())
}

// =============================================================================
// DATA
// =============================================================================

// List returns one page of records
// GET /admin/data/:entity?search=&sort=&desc=&limit=&offset=&filter[col]=&op[col]=
// A missing limit pages by 50; limit=0 returns every row.
func (h *AdminHandler) List(c *gin.Context) {
	r, ok := h.resource(c)
	if !ok {
		return
	}

	listing, err := r.List(c.Request.Context(), listQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// Get returns one record. The reserved ids "new" and "options" return the
// draft form and the reference choices.
// GET /admin/data/:entity/:id
func (h *AdminHandler) Get(c *gin.Context) {
	r, ok := h.resource(c)
	if !ok {
		return
	}

	switch id := c.Param("id"); id {
	case "new":
		c.JSON(http.StatusOK, r.Draft())
	case "options":
		opts, err := r.Options(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"options": opts})
	default:
		record, err := r.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, record)
	}
}

// Create saves a new record
// POST /admin/data/:entity?mode=publish|draft
func (h *AdminHandler) Create(c *gin.Context) {
	h.save(c, "", http.StatusCreated)
}

// Update saves an existing record
// PUT /admin/data/:entity/:id?mode=publish|draft
func (h *AdminHandler) Update(c *gin.Context) {
	h.save(c, c.Param("id"), http.StatusOK)
}

func (h *AdminHandler) save(c *gin.Context, id string, status int) {
	r, ok := h.resource(c)
	if !ok {
		return
	}

	var form engine.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		respondError(c, apperrors.NewBadRequestError("invalid request body"))
		return
	}

	mode, err := saveMode(c.Query("mode"))
	if err != nil {
		respondError(c, err)
		return
	}

	out, err := r.Save(c.Request.Context(), id, form, mode)
	if err != nil {
		respondOutcome(c, out, err)
		return
	}
	c.JSON(status, out)
}

// Delete removes a record
// DELETE /admin/data/:entity/:id
func (h *AdminHandler) Delete(c *gin.Context) {
	r, ok := h.resource(c)
	if !ok {
		return
	}

	out, err := r.Remove(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondOutcome(c, out, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// =============================================================================
// HELPERS
// =============================================================================

func saveMode(raw string) (engine.SaveMode, error) {
	switch engine.SaveMode(strings.ToLower(raw)) {
	case engine.SaveDefault:
		return engine.SaveDefault, nil
	case engine.SavePublish:
		return engine.SavePublish, nil
	case engine.SaveDraft:
		return engine.SaveDraft, nil
	}
	return engine.SaveDefault, apperrors.NewBadRequestError("mode must be publish or draft")
}

func listQuery(c *gin.Context) store.Query {
	// limit=0 asks for the whole list, as the admin screen does on load
	limit := parseIntParam(c.Query("limit"), defaultPageSize)
	if limit < 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	offset := parseIntParam(c.Query("offset"), 0)
	if offset < 0 {
		offset = 0
	}

	q := store.Query{
		Search: c.Query("search"),
		Sort:   c.Query("sort"),
		Desc:   c.Query("desc") == "true",
		Limit:  limit,
		Offset: offset,
	}

	values := c.QueryMap("filter")
	ops := c.QueryMap("op")
	columns := make([]string, 0, len(values))
	for col := range values {
		columns = append(columns, col)
	}
	sort.Strings(columns)
	for _, col := range columns {
		op := ops[col]
		if op == "" {
			op = "eq"
		}
		q.Filters = append(q.Filters, store.Filter{Column: col, Op: op, Value: values[col]})
	}
	return q
}

// respondOutcome answers a failed write with the error and the notices the
// manager raised before failing
func respondOutcome(c *gin.Context, out engine.Outcome, err error) {
	status, body := apperrors.ToHTTPError(err)
	body["notices"] = out.Notices
	c.JSON(status, body)
}
