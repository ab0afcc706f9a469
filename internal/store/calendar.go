package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aethra/haven/internal/models"
)

var dayKey = []clause.Column{{Name: "room_type_id"}, {Name: "date"}}

// UpsertAvailability writes the availability of one room type on one day,
// replacing any existing row for that (room type, date)
func (s *Store) UpsertAvailability(ctx context.Context, row models.RoomAvailability) Result[models.RoomAvailability] {
	row.RoomType = nil
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: dayKey,
		DoUpdates: clause.AssignmentColumns([]string{
			"available_rooms", "blocked_rooms", "minimum_stay", "reason", "notes", "updated_at",
		}),
	}).Create(&row).Error
	if err != nil {
		return failed[models.RoomAvailability]("save", s.Availability.Label(), err)
	}
	return s.Availability.first(ctx, "get", "room_type_id = ? AND date = ?", row.RoomTypeID, row.Date)
}

// AvailabilityBetween lists availability rows in [from, to]; an empty roomTypeID means all room types
func (s *Store) AvailabilityBetween(ctx context.Context, roomTypeID, from, to string) Result[[]models.RoomAvailability] {
	return s.Availability.where(ctx, "list", betweenDays(roomTypeID, from, to))
}

// UpsertRate writes the nightly rate of one room type on one day
func (s *Store) UpsertRate(ctx context.Context, row models.RoomRate) Result[models.RoomRate] {
	row.RoomType = nil
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   dayKey,
		DoUpdates: clause.AssignmentColumns([]string{"rate", "notes", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return failed[models.RoomRate]("save", s.Rates.Label(), err)
	}
	return s.Rates.first(ctx, "get", "room_type_id = ? AND date = ?", row.RoomTypeID, row.Date)
}

// RatesBetween lists rate rows in [from, to]
func (s *Store) RatesBetween(ctx context.Context, roomTypeID, from, to string) Result[[]models.RoomRate] {
	return s.Rates.where(ctx, "list", betweenDays(roomTypeID, from, to))
}

func betweenDays(roomTypeID, from, to string) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		// YYYY-MM-DD strings order like dates
		q = q.Where("date >= ? AND date <= ?", from, to)
		if roomTypeID != "" {
			q = q.Where("room_type_id = ?", roomTypeID)
		}
		return q
	}
}
