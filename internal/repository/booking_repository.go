package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/siakad-go/room-booking-api/internal/models"
)

const bookingColumns = `id, course_id, term_id, section_id, group_id, room_id, day_of_week, start_minute, end_minute, duration_minutes, created_at`

// BookingRepository provides persistence for room bookings. All writes go
// through a conflict-checked transaction so the no-double-booking invariant
// holds even under concurrent writers.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new booking repository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// List returns bookings with optional filtering and pagination.
func (r *BookingRepository) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error) {
	base := "FROM bookings WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.RoomID != nil {
		conditions = append(conditions, fmt.Sprintf("room_id = $%d", len(args)+1))
		args = append(args, *filter.RoomID)
	}
	if filter.CourseID != nil {
		conditions = append(conditions, fmt.Sprintf("course_id = $%d", len(args)+1))
		args = append(args, *filter.CourseID)
	}
	if filter.TermID != nil {
		conditions = append(conditions, fmt.Sprintf("term_id = $%d", len(args)+1))
		args = append(args, *filter.TermID)
	}
	if filter.DayOfWeek != nil {
		conditions = append(conditions, fmt.Sprintf("day_of_week = $%d", len(args)+1))
		args = append(args, *filter.DayOfWeek)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"room_id":      true,
		"day_of_week":  true,
		"start_minute": true,
		"created_at":   true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "day_of_week"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s, start_minute ASC LIMIT %d OFFSET %d", bookingColumns, base, sortBy, order, size, offset)
	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}

	return bookings, total, nil
}

// FindByID loads a booking by id.
func (r *BookingRepository) FindByID(ctx context.Context, id int64) (*models.Booking, error) {
	query := fmt.Sprintf("SELECT %s FROM bookings WHERE id = $1", bookingColumns)
	var booking models.Booking
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		return nil, err
	}
	return &booking, nil
}

// ListForRooms returns bookings for the given rooms within an inclusive
// day-of-week range, ordered by room, day and start. The scheduler turns
// this snapshot into its initial tentative reservation set.
func (r *BookingRepository) ListForRooms(ctx context.Context, roomIDs []int64, dayStart, dayEnd int) ([]models.Booking, error) {
	query := fmt.Sprintf("SELECT %s FROM bookings WHERE room_id = ANY($1) AND day_of_week BETWEEN $2 AND $3 ORDER BY room_id ASC, day_of_week ASC, start_minute ASC", bookingColumns)
	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, pq.Array(roomIDs), dayStart, dayEnd); err != nil {
		return nil, fmt.Errorf("list bookings for rooms: %w", err)
	}
	return bookings, nil
}

// FindOverlapping returns the first committed booking overlapping the
// half-open interval [start, end) on the given room/day, or nil when the
// slot is free. excludeID skips one booking so an update does not collide
// with its own prior placement. This read takes no lock; writers re-check.
func (r *BookingRepository) FindOverlapping(ctx context.Context, roomID int64, day, start, end int, excludeID int64) (*models.Booking, error) {
	query := fmt.Sprintf("SELECT %s FROM bookings WHERE room_id = $1 AND day_of_week = $2 AND start_minute < $4 AND end_minute > $3 AND id <> $5 ORDER BY start_minute ASC LIMIT 1", bookingColumns)
	var booking models.Booking
	if err := r.db.GetContext(ctx, &booking, query, roomID, day, start, end, excludeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find overlapping booking: %w", err)
	}
	return &booking, nil
}

// CreateChecked inserts the booking inside a transaction that first takes an
// advisory lock on the (room, day) key and re-validates against committed
// rows. When an overlap exists the transaction rolls back and the conflicting
// booking is returned; the second of two racing writers always observes the
// first writer's row.
func (r *BookingRepository) CreateChecked(ctx context.Context, booking *models.Booking) (*models.BookingConflict, error) {
	return r.writeChecked(ctx, booking, false)
}

// UpdateChecked re-runs the same lock-check-write sequence for an existing
// booking, excluding the booking's own row from the overlap check.
func (r *BookingRepository) UpdateChecked(ctx context.Context, booking *models.Booking) (*models.BookingConflict, error) {
	return r.writeChecked(ctx, booking, true)
}

func (r *BookingRepository) writeChecked(ctx context.Context, booking *models.Booking, update bool) (conflict *models.BookingConflict, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin booking write: %w", err)
	}
	defer func() {
		if err != nil || conflict != nil {
			_ = tx.Rollback()
		}
	}()

	// One advisory key per (room, day); day < 8 keeps the key injective.
	lockKey := (booking.RoomID << 3) | int64(booking.DayOfWeek)
	if _, err = tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", lockKey); err != nil {
		return nil, fmt.Errorf("acquire booking lock: %w", err)
	}

	excludeID := int64(0)
	if update {
		excludeID = booking.ID
	}
	query := fmt.Sprintf("SELECT %s FROM bookings WHERE room_id = $1 AND day_of_week = $2 AND start_minute < $4 AND end_minute > $3 AND id <> $5 ORDER BY start_minute ASC LIMIT 1", bookingColumns)
	var existing models.Booking
	err = tx.GetContext(ctx, &existing, query, booking.RoomID, booking.DayOfWeek, booking.StartMinute, booking.EndMinute, excludeID)
	switch {
	case err == nil:
		conflict = &models.BookingConflict{
			BookingID:   existing.ID,
			RoomID:      existing.RoomID,
			DayOfWeek:   existing.DayOfWeek,
			StartMinute: existing.StartMinute,
			EndMinute:   existing.EndMinute,
		}
		return conflict, nil
	case errors.Is(err, sql.ErrNoRows):
		err = nil
	default:
		return nil, fmt.Errorf("check booking conflict: %w", err)
	}

	if update {
		const updateQuery = `UPDATE bookings SET course_id = $1, term_id = $2, section_id = $3, group_id = $4, room_id = $5, day_of_week = $6, start_minute = $7, end_minute = $8, duration_minutes = $9 WHERE id = $10`
		if _, err = tx.ExecContext(ctx, updateQuery,
			booking.CourseID, booking.TermID, booking.SectionID, booking.GroupID,
			booking.RoomID, booking.DayOfWeek, booking.StartMinute, booking.EndMinute,
			booking.DurationMinutes, booking.ID,
		); err != nil {
			return nil, fmt.Errorf("update booking: %w", err)
		}
	} else {
		if booking.CreatedAt.IsZero() {
			booking.CreatedAt = time.Now().UTC()
		}
		const insertQuery = `INSERT INTO bookings (course_id, term_id, section_id, group_id, room_id, day_of_week, start_minute, end_minute, duration_minutes, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
		if err = tx.GetContext(ctx, &booking.ID, insertQuery,
			booking.CourseID, booking.TermID, booking.SectionID, booking.GroupID,
			booking.RoomID, booking.DayOfWeek, booking.StartMinute, booking.EndMinute,
			booking.DurationMinutes, booking.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("insert booking: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit booking write: %w", err)
	}
	return nil, nil
}

// Delete removes a booking by id.
func (r *BookingRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	return nil
}
