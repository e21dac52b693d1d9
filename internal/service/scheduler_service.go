package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/siakad-go/room-booking-api/internal/dto"
	"github.com/siakad-go/room-booking-api/internal/models"
	"github.com/siakad-go/room-booking-api/pkg/clock"
	appErrors "github.com/siakad-go/room-booking-api/pkg/errors"
)

const reasonNoFreeSlot = "No free slot within working window"

type schedulerBookingReader interface {
	ListForRooms(ctx context.Context, roomIDs []int64, dayStart, dayEnd int) ([]models.Booking, error)
}

type schedulerRoomDirectory interface {
	ListIDs(ctx context.Context) ([]int64, error)
	FilterExisting(ctx context.Context, ids []int64) ([]int64, error)
}

type schedulerCourseChecker interface {
	CourseExists(ctx context.Context, id int64) (bool, error)
}

// SchedulerService proposes conflict-free placements for unscheduled courses.
// It reads a snapshot of committed bookings, never writes, and holds no
// locks; commits re-validate against live state so stale suggestions are safe.
type SchedulerService struct {
	bookings  schedulerBookingReader
	rooms     schedulerRoomDirectory
	refs      schedulerCourseChecker
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	defaults  SchedulerDefaults
}

// SchedulerDefaults carries configured fallbacks for suggestion requests.
type SchedulerDefaults struct {
	SlotMinutes int
}

// NewSchedulerService wires scheduler dependencies.
func NewSchedulerService(
	bookings schedulerBookingReader,
	rooms schedulerRoomDirectory,
	refs schedulerCourseChecker,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	defaults SchedulerDefaults,
) *SchedulerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaults.SlotMinutes <= 0 {
		defaults.SlotMinutes = 90
	}
	return &SchedulerService{
		bookings:  bookings,
		rooms:     rooms,
		refs:      refs,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		defaults:  defaults,
	}
}

// Suggest places each requested course into the first free gap, scanning
// days ascending and rooms in candidate order. Placements made earlier in
// the same request are reserved in memory so later courses see them as
// occupied. A course that cannot be placed yields an ok:false suggestion;
// it never fails the request.
func (s *SchedulerService) Suggest(ctx context.Context, req dto.SuggestScheduleRequest) (*dto.SuggestScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid suggestion payload")
	}
	if req.DayStart > req.DayEnd {
		return nil, appErrors.Clone(appErrors.ErrInvalidDayRange, fmt.Sprintf("dayStart %d must not exceed dayEnd %d", req.DayStart, req.DayEnd))
	}

	workStart, err := clock.ParseClock(req.WorkStart)
	if err != nil {
		return nil, err
	}
	workEnd, err := clock.ParseClock(req.WorkEnd)
	if err != nil {
		return nil, err
	}
	if workEnd <= workStart {
		return nil, appErrors.Clone(appErrors.ErrInvalidTimeRange, "workEnd must be after workStart")
	}

	slotMinutes := req.SlotMinutes
	if slotMinutes == 0 {
		slotMinutes = s.defaults.SlotMinutes
	}
	if slotMinutes <= 0 || slotMinutes > 600 {
		return nil, appErrors.Clone(appErrors.ErrInvalidDuration, fmt.Sprintf("slotMinutes %d outside 1-600", slotMinutes))
	}

	if err := s.ensureCoursesExist(ctx, req.CourseIDs); err != nil {
		return nil, err
	}

	roomIDs, err := s.resolveRooms(ctx, req.RoomIDs)
	if err != nil {
		return nil, err
	}

	grid, err := s.loadReservations(ctx, roomIDs, req.DayStart, req.DayEnd, workStart, workEnd)
	if err != nil {
		return nil, err
	}

	suggestionID := uuid.NewString()
	suggestions := make([]dto.SlotSuggestion, 0, len(req.CourseIDs))
	placed := 0
	for _, courseID := range req.CourseIDs {
		suggestion := dto.SlotSuggestion{
			CourseID:        courseID,
			TermID:          req.TermID,
			SectionID:       req.SectionID,
			GroupID:         req.GroupID,
			DurationMinutes: slotMinutes,
		}

		roomID, day, start, ok := placeFirstFit(grid, roomIDs, req.DayStart, req.DayEnd, workStart, workEnd, slotMinutes)
		if ok {
			end := start + slotMinutes
			grid.add(roomID, day, interval{start: start, end: end})
			startText := clock.FormatMinutes(start)
			endText := clock.FormatMinutes(end)
			suggestion.RoomID = &roomID
			suggestion.DayOfWeek = &day
			suggestion.StartTime = &startText
			suggestion.EndTime = &endText
			suggestion.OK = true
			placed++
		} else {
			suggestion.Reason = reasonNoFreeSlot
		}
		suggestions = append(suggestions, suggestion)

		if s.metrics != nil {
			s.metrics.CountSuggestion(suggestion.OK)
		}
	}

	s.logger.Info("schedule suggested",
		zap.String("suggestion_id", suggestionID),
		zap.Int("courses", len(req.CourseIDs)),
		zap.Int("placed", placed),
		zap.Int("rooms", len(roomIDs)),
	)

	return &dto.SuggestScheduleResponse{
		SuggestionID: suggestionID,
		Days:         dto.DayRange{Start: req.DayStart, End: req.DayEnd},
		WorkWindow:   dto.WorkWindow{Start: clock.FormatMinutes(workStart), End: clock.FormatMinutes(workEnd)},
		SlotMinutes:  slotMinutes,
		Rooms:        roomIDs,
		Suggestions:  suggestions,
	}, nil
}

// placeFirstFit scans days ascending, then rooms in candidate order, and
// returns the first gap large enough for the slot. Ties break purely on
// iteration order.
func placeFirstFit(grid *reservationGrid, roomIDs []int64, dayStart, dayEnd, workStart, workEnd, slotMinutes int) (int64, int, int, bool) {
	for day := dayStart; day <= dayEnd; day++ {
		for _, roomID := range roomIDs {
			if start, ok := firstGap(grid.intervals(roomID, day), workStart, workEnd, slotMinutes); ok {
				return roomID, day, start, true
			}
		}
	}
	return 0, 0, 0, false
}

func (s *SchedulerService) ensureCoursesExist(ctx context.Context, courseIDs []int64) error {
	if s.refs == nil {
		return nil
	}
	checked := make(map[int64]bool, len(courseIDs))
	for _, id := range courseIDs {
		if checked[id] {
			continue
		}
		found, err := s.refs.CourseExists(ctx, id)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to verify course reference")
		}
		if !found {
			return appErrors.Clone(appErrors.ErrInvalidReference, fmt.Sprintf("course %d does not exist", id))
		}
		checked[id] = true
	}
	return nil
}

// resolveRooms returns the candidate room set. An explicit request keeps its
// order after dropping unknown ids and duplicates; otherwise all rooms are
// used ordered by id ascending.
func (s *SchedulerService) resolveRooms(ctx context.Context, requested []int64) ([]int64, error) {
	if len(requested) == 0 {
		ids, err := s.rooms.ListIDs(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to load room directory")
		}
		if len(ids) == 0 {
			return nil, appErrors.Clone(appErrors.ErrNoRoomsAvailable, "room directory is empty")
		}
		return ids, nil
	}

	existing, err := s.rooms.FilterExisting(ctx, requested)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to resolve candidate rooms")
	}
	known := make(map[int64]bool, len(existing))
	for _, id := range existing {
		known[id] = true
	}

	resolved := make([]int64, 0, len(requested))
	seen := make(map[int64]bool, len(requested))
	for _, id := range requested {
		if !known[id] || seen[id] {
			continue
		}
		resolved = append(resolved, id)
		seen[id] = true
	}
	if len(resolved) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNoRoomsAvailable, "none of the requested rooms exist")
	}
	return resolved, nil
}

func (s *SchedulerService) loadReservations(ctx context.Context, roomIDs []int64, dayStart, dayEnd, workStart, workEnd int) (*reservationGrid, error) {
	bookings, err := s.bookings.ListForRooms(ctx, roomIDs, dayStart, dayEnd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to load existing bookings")
	}

	grid := newReservationGrid()
	for _, booking := range bookings {
		grid.addClamped(booking.RoomID, booking.DayOfWeek, interval{
			start:     booking.StartMinute,
			end:       booking.EndMinute,
			bookingID: booking.ID,
		}, workStart, workEnd)
	}
	return grid, nil
}
