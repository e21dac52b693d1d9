package models

import "time"

// Booking binds a course session to a room, weekday and time interval.
// Times are minutes since midnight; the interval is half-open [start, end).
type Booking struct {
	ID              int64     `db:"id" json:"id"`
	CourseID        int64     `db:"course_id" json:"course_id"`
	TermID          *int64    `db:"term_id" json:"term_id,omitempty"`
	SectionID       *int64    `db:"section_id" json:"section_id,omitempty"`
	GroupID         *int64    `db:"group_id" json:"group_id,omitempty"`
	RoomID          int64     `db:"room_id" json:"room_id"`
	DayOfWeek       int       `db:"day_of_week" json:"day_of_week"`
	StartMinute     int       `db:"start_minute" json:"start_minute"`
	EndMinute       int       `db:"end_minute" json:"end_minute"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// BookingFilter describes query params for listing bookings.
type BookingFilter struct {
	RoomID    *int64
	CourseID  *int64
	TermID    *int64
	DayOfWeek *int
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// BookingConflict describes the existing booking an interval collides with.
type BookingConflict struct {
	BookingID   int64 `json:"booking_id"`
	RoomID      int64 `json:"room_id"`
	DayOfWeek   int   `json:"day_of_week"`
	StartMinute int   `json:"start_minute"`
	EndMinute   int   `json:"end_minute"`
}

// BookingConflictError is returned when a write collides with a committed booking.
type BookingConflictError struct {
	Message  string          `json:"message"`
	Conflict BookingConflict `json:"conflict"`
}

// Error implements the error interface for conflict errors.
func (e *BookingConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
