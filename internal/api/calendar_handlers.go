package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aethra/haven/internal/engine"
	apperrors "github.com/aethra/haven/internal/errors"
	"github.com/aethra/haven/internal/models"
	"github.com/aethra/haven/internal/shell"
	"github.com/aethra/haven/internal/store"
)

// defaultCalendarDays is the span shown when no range was picked before
const defaultCalendarDays = 30

// CalendarStore is the availability and rate slice of the backend access layer
type CalendarStore interface {
	engine.AvailabilityWriter
	engine.RateWriter
	AvailabilityBetween(ctx context.Context, roomTypeID, from, to string) store.Result[[]models.RoomAvailability]
	RatesBetween(ctx context.Context, roomTypeID, from, to string) store.Result[[]models.RoomRate]
}

// CalendarHandler serves the availability and rate calendars
type CalendarHandler struct {
	calendar CalendarStore
	shells   *shell.Container
}

// NewCalendarHandler creates the calendar handler
func NewCalendarHandler(calendar CalendarStore, shells *shell.Container) *CalendarHandler {
	return &CalendarHandler{calendar: calendar, shells: shells}
}

// window resolves the requested range, falling back to the range the admin
// last picked and then to the next defaultCalendarDays days
func (h *CalendarHandler) window(c *gin.Context) (string, string, error) {
	from, to := c.Query("from"), c.Query("to")
	if from == "" || to == "" {
		if st, err := h.shells.Get(c.Request.Context(), adminID(c)); err == nil && st.AvailabilityFrom != "" {
			from, to = st.AvailabilityFrom, st.AvailabilityTo
		} else {
			today := time.Now()
			from = today.Format(engine.DateLayout)
			to = today.AddDate(0, 0, defaultCalendarDays-1).Format(engine.DateLayout)
		}
	}
	if _, err := engine.ExpandDateRange(from, to); err != nil {
		return "", "", err
	}
	return from, to, nil
}

func (h *CalendarHandler) remember(c *gin.Context, from, to string) {
	if _, err := h.shells.RememberAvailabilityRange(c.Request.Context(), adminID(c), from, to); err != nil {
		log.Printf("Failed to remember calendar range of %s: %v", adminID(c), err)
	}
}

// Availability lists availability rows of a range
// GET /admin/availability?room_type_id=&from=&to=
func (h *CalendarHandler) Availability(c *gin.Context) {
	from, to, err := h.window(c)
	if err != nil {
		respondError(c, err)
		return
	}
	res := h.calendar.AvailabilityBetween(c.Request.Context(), c.Query("room_type_id"), from, to)
	if !res.OK() {
		respondError(c, res.Err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"from": from, "to": to, "items": res.Data})
}

// AvailabilityRange writes the same availability on every day of a range
// POST /admin/availability/range
func (h *CalendarHandler) AvailabilityRange(c *gin.Context) {
	var req engine.AvailabilityRange
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewBadRequestError("invalid request body"))
		return
	}

	out, err := engine.ApplyAvailabilityRange(c.Request.Context(), h.calendar, req)
	if err != nil {
		respondRange(c, out, err)
		return
	}
	h.remember(c, req.From, req.To)
	c.JSON(http.StatusOK, out)
}

// Rates lists nightly rates of a range
// GET /admin/rates?room_type_id=&from=&to=
func (h *CalendarHandler) Rates(c *gin.Context) {
	from, to, err := h.window(c)
	if err != nil {
		respondError(c, err)
		return
	}
	res := h.calendar.RatesBetween(c.Request.Context(), c.Query("room_type_id"), from, to)
	if !res.OK() {
		respondError(c, res.Err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"from": from, "to": to, "items": res.Data})
}

// RateRange writes the same rate on every day of a range
// POST /admin/rates/range
func (h *CalendarHandler) RateRange(c *gin.Context) {
	var req engine.RateRange
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewBadRequestError("invalid request body"))
		return
	}

	out, err := engine.ApplyRateRange(c.Request.Context(), h.calendar, req)
	if err != nil {
		respondRange(c, out, err)
		return
	}
	h.remember(c, req.From, req.To)
	c.JSON(http.StatusOK, out)
}

// respondRange reports how far a failed range write got
func respondRange(c *gin.Context, out engine.RangeOutcome, err error) {
	status, body := apperrors.ToHTTPError(err)
	body["written"] = out.Written
	if out.Written < len(out.Days) && len(out.Days) > 0 {
		body["failed_day"] = out.Days[out.Written]
	}
	c.JSON(status, body)
}
