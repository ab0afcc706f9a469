package engine

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/aethra/haven/internal/errors"
	"github.com/aethra/haven/internal/models"
	"github.com/aethra/haven/internal/store"
)

// MaxRangeDays bounds one range write
const MaxRangeDays = 366

// ExpandDateRange enumerates every day from from to to, both inclusive
func ExpandDateRange(from, to string) ([]string, error) {
	start, err := time.Parse(DateLayout, from)
	if err != nil {
		return nil, apperrors.NewValidationError("from", "Start date must be a date (YYYY-MM-DD)")
	}
	end, err := time.Parse(DateLayout, to)
	if err != nil {
		return nil, apperrors.NewValidationError("to", "End date must be a date (YYYY-MM-DD)")
	}
	if end.Before(start) {
		return nil, apperrors.NewValidationError("to", "End date must not be before start date")
	}

	days := int(end.Sub(start).Hours()/24) + 1
	if days > MaxRangeDays {
		return nil, apperrors.NewValidationError("to", fmt.Sprintf("A range may cover at most %d days", MaxRangeDays))
	}

	out := make([]string, 0, days)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Format(DateLayout))
	}
	return out, nil
}

// AvailabilityWriter upserts one availability row; *store.Store satisfies it
type AvailabilityWriter interface {
	UpsertAvailability(ctx context.Context, row models.RoomAvailability) store.Result[models.RoomAvailability]
}

// RateWriter upserts one rate row; *store.Store satisfies it
type RateWriter interface {
	UpsertRate(ctx context.Context, row models.RoomRate) store.Result[models.RoomRate]
}

// RangeOutcome reports a range write
type RangeOutcome struct {
	Days    []string `json:"days"`
	Written int      `json:"written"`
}

// AvailabilityRange is the form of the bulk availability screen
type AvailabilityRange struct {
	RoomTypeID     string `json:"room_type_id"`
	From           string `json:"from"`
	To             string `json:"to"`
	AvailableRooms int    `json:"available_rooms"`
	BlockedRooms   int    `json:"blocked_rooms"`
	MinimumStay    int    `json:"minimum_stay"`
	Reason         string `json:"reason"`
	Notes          string `json:"notes"`
}

// RateRange is the form of the rate calendar
type RateRange struct {
	RoomTypeID string  `json:"room_type_id"`
	From       string  `json:"from"`
	To         string  `json:"to"`
	Rate       float64 `json:"rate"`
	Notes      string  `json:"notes"`
}

// ApplyAvailabilityRange upserts one row per day with identical values.
// Days are written in order and the first failure stops the run; rows
// already written stay written.
func ApplyAvailabilityRange(ctx context.Context, w AvailabilityWriter, req AvailabilityRange) (RangeOutcome, error) {
	if req.RoomTypeID == "" {
		return RangeOutcome{}, apperrors.NewValidationError("room_type_id", "Room type is required")
	}
	if req.AvailableRooms < 0 || req.BlockedRooms < 0 {
		return RangeOutcome{}, apperrors.NewValidationError("available_rooms", "Room counts must not be negative")
	}
	if req.MinimumStay < 1 {
		req.MinimumStay = 1
	}

	days, err := ExpandDateRange(req.From, req.To)
	if err != nil {
		return RangeOutcome{}, err
	}

	out := RangeOutcome{Days: days}
	for _, day := range days {
		res := w.UpsertAvailability(ctx, models.RoomAvailability{
			RoomTypeID:     req.RoomTypeID,
			Date:           day,
			AvailableRooms: req.AvailableRooms,
			BlockedRooms:   req.BlockedRooms,
			MinimumStay:    req.MinimumStay,
			Reason:         req.Reason,
			Notes:          req.Notes,
		})
		if !res.OK() {
			return out, res.Err
		}
		out.Written++
	}
	return out, nil
}

// ApplyRateRange upserts one rate row per day with identical values
func ApplyRateRange(ctx context.Context, w RateWriter, req RateRange) (RangeOutcome, error) {
	if req.RoomTypeID == "" {
		return RangeOutcome{}, apperrors.NewValidationError("room_type_id", "Room type is required")
	}
	if req.Rate < 0 {
		return RangeOutcome{}, apperrors.NewValidationError("rate", "Rate must not be negative")
	}

	days, err := ExpandDateRange(req.From, req.To)
	if err != nil {
		return RangeOutcome{}, err
	}

	out := RangeOutcome{Days: days}
	for _, day := range days {
		res := w.UpsertRate(ctx, models.RoomRate{
			RoomTypeID: req.RoomTypeID,
			Date:       day,
			Rate:       req.Rate,
			Notes:      req.Notes,
		})
		if !res.OK() {
			return out, res.Err
		}
		out.Written++
	}
	return out, nil
}
