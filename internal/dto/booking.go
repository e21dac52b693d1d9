package dto

// BookingRow is one proposed booking, as produced by the scheduler or
// entered manually. Times are "HH:MM" wall-clock strings.
type BookingRow struct {
	CourseID        int64  `json:"courseId" validate:"required,min=1"`
	RoomID          int64  `json:"roomId" validate:"required,min=1"`
	DayOfWeek       int    `json:"dayOfWeek" validate:"min=0,max=6"`
	StartTime       string `json:"startTime" validate:"required"`
	EndTime         string `json:"endTime" validate:"required"`
	DurationMinutes int    `json:"durationMinutes" validate:"omitempty,min=1,max=600"`
	TermID          *int64 `json:"termId"`
	SectionID       *int64 `json:"sectionId"`
	GroupID         *int64 `json:"groupId"`
}

// CommitBookingsRequest commits a batch of rows; rows are independent.
type CommitBookingsRequest struct {
	Rows []BookingRow `json:"rows" validate:"required,min=1,dive"`
}

// CommitRowResult reports the outcome for a single batch row.
type CommitRowResult struct {
	OK        bool       `json:"ok"`
	BookingID *int64     `json:"bookingId,omitempty"`
	Reason    string     `json:"reason,omitempty"`
	Row       BookingRow `json:"row"`
}

// CommitBookingsResponse aggregates per-row outcomes.
type CommitBookingsResponse struct {
	Results []CommitRowResult `json:"results"`
	Created int               `json:"created"`
	Failed  int               `json:"failed"`
}

// UpdateBookingRequest moves or edits an existing booking. All fields are
// optional; omitted fields keep their stored values.
type UpdateBookingRequest struct {
	CourseID        *int64  `json:"courseId" validate:"omitempty,min=1"`
	RoomID          *int64  `json:"roomId" validate:"omitempty,min=1"`
	DayOfWeek       *int    `json:"dayOfWeek" validate:"omitempty,min=0,max=6"`
	StartTime       *string `json:"startTime"`
	EndTime         *string `json:"endTime"`
	DurationMinutes *int    `json:"durationMinutes" validate:"omitempty,min=1,max=600"`
	TermID          *int64  `json:"termId"`
	SectionID       *int64  `json:"sectionId"`
	GroupID         *int64  `json:"groupId"`
}

// CheckAvailabilityRequest asks whether a room is free for an interval.
// The interval is either explicit start/end times or a named fixed slot.
type CheckAvailabilityRequest struct {
	RoomID           int64  `json:"roomId" validate:"required,min=1"`
	DayIndex         int    `json:"dayIndex" validate:"min=0,max=6"`
	StartTime        string `json:"startTime"`
	EndTime          string `json:"endTime"`
	TimeSlotID       *int   `json:"timeSlotId" validate:"omitempty,min=1"`
	ExcludeBookingID *int64 `json:"excludeBookingId" validate:"omitempty,min=1"`
}

// AvailabilityConflict identifies the booking blocking the requested interval.
type AvailabilityConflict struct {
	BookingID int64  `json:"bookingId"`
	DayIndex  int    `json:"dayIndex"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

// CheckAvailabilityResponse reports the availability verdict. The verdict
// may be stale by the time a commit is attempted; commits re-validate.
type CheckAvailabilityResponse struct {
	Free     bool                  `json:"free"`
	Conflict *AvailabilityConflict `json:"conflict,omitempty"`
}
