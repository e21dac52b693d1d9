package dto

// SuggestScheduleRequest asks the auto-scheduler for one placement per course.
type SuggestScheduleRequest struct {
	CourseIDs   []int64 `json:"courseIds" validate:"required,min=1,dive,min=1"`
	DayStart    int     `json:"dayStart" validate:"min=0,max=6"`
	DayEnd      int     `json:"dayEnd" validate:"min=0,max=6"`
	WorkStart   string  `json:"workStart" validate:"required"`
	WorkEnd     string  `json:"workEnd" validate:"required"`
	SlotMinutes int     `json:"slotMinutes" validate:"omitempty,min=1,max=600"`
	RoomIDs     []int64 `json:"roomIds" validate:"omitempty,dive,min=1"`
	TermID      *int64  `json:"termId"`
	SectionID   *int64  `json:"sectionId"`
	GroupID     *int64  `json:"groupId"`
}

// DayRange echoes the requested inclusive day-of-week bounds.
type DayRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// WorkWindow echoes the requested working window as "HH:MM" strings.
type WorkWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// SlotSuggestion is the placement result for a single course. Placement
// fields are nil when no free slot was found (OK is false).
type SlotSuggestion struct {
	CourseID        int64   `json:"courseId"`
	TermID          *int64  `json:"termId,omitempty"`
	SectionID       *int64  `json:"sectionId,omitempty"`
	GroupID         *int64  `json:"groupId,omitempty"`
	RoomID          *int64  `json:"roomId"`
	DayOfWeek       *int    `json:"dayOfWeek"`
	StartTime       *string `json:"startTime"`
	EndTime         *string `json:"endTime"`
	DurationMinutes int     `json:"durationMinutes"`
	OK              bool    `json:"ok"`
	Reason          string  `json:"reason,omitempty"`
}

// SuggestScheduleResponse returns one suggestion per requested course in
// input order, plus the echoed request parameters.
type SuggestScheduleResponse struct {
	SuggestionID string           `json:"suggestionId"`
	Days         DayRange         `json:"days"`
	WorkWindow   WorkWindow       `json:"workWindow"`
	SlotMinutes  int              `json:"slotMinutes"`
	Rooms        []int64          `json:"rooms"`
	Suggestions  []SlotSuggestion `json:"suggestions"`
}
