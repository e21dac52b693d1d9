package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/siakad-go/room-booking-api/internal/dto"
	"github.com/siakad-go/room-booking-api/internal/models"
	"github.com/siakad-go/room-booking-api/pkg/clock"
	appErrors "github.com/siakad-go/room-booking-api/pkg/errors"
)

type bookingRepository interface {
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error)
	FindByID(ctx context.Context, id int64) (*models.Booking, error)
	FindOverlapping(ctx context.Context, roomID int64, day, start, end int, excludeID int64) (*models.Booking, error)
	CreateChecked(ctx context.Context, booking *models.Booking) (*models.BookingConflict, error)
	UpdateChecked(ctx context.Context, booking *models.Booking) (*models.BookingConflict, error)
	Delete(ctx context.Context, id int64) error
}

type bookingRoomDirectory interface {
	FindByID(ctx context.Context, id int64) (*models.Room, error)
}

type referenceChecker interface {
	CourseExists(ctx context.Context, id int64) (bool, error)
	TermExists(ctx context.Context, id int64) (bool, error)
	SectionExists(ctx context.Context, id int64) (bool, error)
	GroupExists(ctx context.Context, id int64) (bool, error)
}

type fixedSlot struct {
	start int
	end   int
}

// BookingService owns the booking write path and availability checks. Every
// write re-validates against committed state inside the repository's locked
// transaction, so suggestions computed on stale snapshots can never create a
// double booking.
type BookingService struct {
	repo       bookingRepository
	rooms      bookingRoomDirectory
	refs       referenceChecker
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	fixedSlots []fixedSlot
}

// BookingServiceConfig carries booking-service tunables.
type BookingServiceConfig struct {
	// FixedSlots are named periods as "HH:MM-HH:MM"; availability checks may
	// reference them by 1-based index instead of explicit times.
	FixedSlots []string
}

// NewBookingService wires booking dependencies.
func NewBookingService(
	repo bookingRepository,
	rooms bookingRoomDirectory,
	refs referenceChecker,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg BookingServiceConfig,
) *BookingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &BookingService{
		repo:      repo,
		rooms:     rooms,
		refs:      refs,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
	for _, raw := range cfg.FixedSlots {
		slot, err := parseFixedSlot(raw)
		if err != nil {
			logger.Warn("skipping malformed fixed slot", zap.String("slot", raw), zap.Error(err))
			continue
		}
		svc.fixedSlots = append(svc.fixedSlots, slot)
	}
	return svc
}

func parseFixedSlot(raw string) (fixedSlot, error) {
	parts := strings.SplitN(raw, "-", 2)
	if len(parts) != 2 {
		return fixedSlot{}, fmt.Errorf("expected HH:MM-HH:MM, got %q", raw)
	}
	start, err := clock.ParseClock(parts[0])
	if err != nil {
		return fixedSlot{}, err
	}
	end, err := clock.ParseClock(parts[1])
	if err != nil {
		return fixedSlot{}, err
	}
	if end <= start {
		return fixedSlot{}, fmt.Errorf("slot %q ends before it starts", raw)
	}
	return fixedSlot{start: start, end: end}, nil
}

// List returns bookings with pagination metadata.
func (s *BookingService) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, *models.Pagination, error) {
	bookings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to list bookings")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return bookings, pagination, nil
}

// Get loads a single booking.
func (s *BookingService) Get(ctx context.Context, id int64) (*models.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrBookingNotFound, fmt.Sprintf("booking %d not found", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to load booking")
	}
	return booking, nil
}

// Create commits a single booking, re-validating against live state inside
// the locked transaction.
func (s *BookingService) Create(ctx context.Context, row dto.BookingRow) (*models.Booking, error) {
	if err := s.validator.Struct(row); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}
	booking, err := s.resolveRow(row)
	if err != nil {
		return nil, err
	}
	if err := s.validateReferences(ctx, booking); err != nil {
		return nil, err
	}

	conflict, err := s.repo.CreateChecked(ctx, booking)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to create booking")
	}
	if conflict != nil {
		if s.metrics != nil {
			s.metrics.CountCommit(false)
		}
		return nil, conflictError(conflict)
	}

	if s.metrics != nil {
		s.metrics.CountCommit(true)
	}
	s.logger.Info("booking created",
		zap.Int64("booking_id", booking.ID),
		zap.Int64("room_id", booking.RoomID),
		zap.Int("day", booking.DayOfWeek),
		zap.String("start", clock.FormatMinutes(booking.StartMinute)),
		zap.String("end", clock.FormatMinutes(booking.EndMinute)),
	)
	return booking, nil
}

// Commit processes a batch of rows independently; one row's conflict never
// aborts its siblings. The response reports per-row outcomes and aggregate
// counts.
func (s *BookingService) Commit(ctx context.Context, req dto.CommitBookingsRequest) (*dto.CommitBookingsResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid commit payload")
	}

	resp := &dto.CommitBookingsResponse{Results: make([]dto.CommitRowResult, 0, len(req.Rows))}
	for _, row := range req.Rows {
		result := dto.CommitRowResult{Row: row}
		booking, err := s.Create(ctx, row)
		if err != nil {
			result.Reason = appErrors.FromError(err).Message
			resp.Failed++
		} else {
			result.OK = true
			result.BookingID = &booking.ID
			resp.Created++
		}
		resp.Results = append(resp.Results, result)
	}
	return resp, nil
}

// Update moves or edits an existing booking. Omitted fields keep their
// stored values; the conflict re-check excludes the booking's own row.
func (s *BookingService) Update(ctx context.Context, id int64, req dto.UpdateBookingRequest) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrBookingNotFound, fmt.Sprintf("booking %d not found", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to load booking")
	}

	merged, err := s.mergeUpdate(existing, req)
	if err != nil {
		return nil, err
	}
	if err := s.validateReferences(ctx, merged); err != nil {
		return nil, err
	}

	conflict, err := s.repo.UpdateChecked(ctx, merged)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to update booking")
	}
	if conflict != nil {
		if s.metrics != nil {
			s.metrics.CountCommit(false)
		}
		return nil, conflictError(conflict)
	}

	if s.metrics != nil {
		s.metrics.CountCommit(true)
	}
	s.logger.Info("booking moved",
		zap.Int64("booking_id", merged.ID),
		zap.Int64("room_id", merged.RoomID),
		zap.Int("day", merged.DayOfWeek),
		zap.String("start", clock.FormatMinutes(merged.StartMinute)),
		zap.String("end", clock.FormatMinutes(merged.EndMinute)),
	)
	return merged, nil
}

// Delete removes a booking.
func (s *BookingService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrBookingNotFound, fmt.Sprintf("booking %d not found", id))
		}
		return appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to load booking")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to delete booking")
	}
	return nil
}

// Check answers whether a room is free for an interval. The verdict is
// advisory: it takes no lock and may be stale immediately, so callers must
// rely on the commit-time re-check for correctness.
func (s *BookingService) Check(ctx context.Context, req dto.CheckAvailabilityRequest) (*dto.CheckAvailabilityResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability payload")
	}

	start, end, err := s.resolveCheckInterval(req)
	if err != nil {
		return nil, err
	}

	if _, err := s.rooms.FindByID(ctx, req.RoomID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidReference, fmt.Sprintf("room %d does not exist", req.RoomID))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to load room")
	}

	excludeID := int64(0)
	if req.ExcludeBookingID != nil {
		excludeID = *req.ExcludeBookingID
	}
	blocking, err := s.repo.FindOverlapping(ctx, req.RoomID, req.DayIndex, start, end, excludeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to check availability")
	}
	if blocking == nil {
		return &dto.CheckAvailabilityResponse{Free: true}, nil
	}
	return &dto.CheckAvailabilityResponse{
		Free: false,
		Conflict: &dto.AvailabilityConflict{
			BookingID: blocking.ID,
			DayIndex:  blocking.DayOfWeek,
			Start:     clock.FormatMinutes(blocking.StartMinute),
			End:       clock.FormatMinutes(blocking.EndMinute),
		},
	}, nil
}

func (s *BookingService) resolveCheckInterval(req dto.CheckAvailabilityRequest) (int, int, error) {
	if req.TimeSlotID != nil {
		idx := *req.TimeSlotID
		if idx < 1 || idx > len(s.fixedSlots) {
			return 0, 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown time slot %d", idx))
		}
		slot := s.fixedSlots[idx-1]
		return slot.start, slot.end, nil
	}
	if req.StartTime == "" || req.EndTime == "" {
		return 0, 0, appErrors.Clone(appErrors.ErrValidation, "either timeSlotId or startTime and endTime are required")
	}
	start, err := clock.ParseClock(req.StartTime)
	if err != nil {
		return 0, 0, err
	}
	end, err := clock.ParseClock(req.EndTime)
	if err != nil {
		return 0, 0, err
	}
	if end <= start {
		return 0, 0, appErrors.Clone(appErrors.ErrInvalidTimeRange, "endTime must be after startTime")
	}
	return start, end, nil
}

// resolveRow turns a wire row into a booking model, deriving the duration
// from the half-open interval.
func (s *BookingService) resolveRow(row dto.BookingRow) (*models.Booking, error) {
	start, err := clock.ParseClock(row.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := clock.ParseClock(row.EndTime)
	if err != nil {
		return nil, err
	}
	if end <= start {
		return nil, appErrors.Clone(appErrors.ErrInvalidTimeRange, "endTime must be after startTime")
	}
	duration := end - start
	if duration > 600 {
		return nil, appErrors.Clone(appErrors.ErrInvalidDuration, fmt.Sprintf("duration %d outside 1-600 minutes", duration))
	}

	return &models.Booking{
		CourseID:        row.CourseID,
		TermID:          row.TermID,
		SectionID:       row.SectionID,
		GroupID:         row.GroupID,
		RoomID:          row.RoomID,
		DayOfWeek:       row.DayOfWeek,
		StartMinute:     start,
		EndMinute:       end,
		DurationMinutes: duration,
	}, nil
}

func (s *BookingService) mergeUpdate(existing *models.Booking, req dto.UpdateBookingRequest) (*models.Booking, error) {
	merged := *existing
	if req.CourseID != nil {
		merged.CourseID = *req.CourseID
	}
	if req.RoomID != nil {
		merged.RoomID = *req.RoomID
	}
	if req.DayOfWeek != nil {
		merged.DayOfWeek = *req.DayOfWeek
	}
	if req.TermID != nil {
		merged.TermID = req.TermID
	}
	if req.SectionID != nil {
		merged.SectionID = req.SectionID
	}
	if req.GroupID != nil {
		merged.GroupID = req.GroupID
	}
	if req.StartTime != nil {
		start, err := clock.ParseClock(*req.StartTime)
		if err != nil {
			return nil, err
		}
		merged.StartMinute = start
	}
	if req.EndTime != nil {
		end, err := clock.ParseClock(*req.EndTime)
		if err != nil {
			return nil, err
		}
		merged.EndMinute = end
	}
	if merged.EndMinute <= merged.StartMinute {
		return nil, appErrors.Clone(appErrors.ErrInvalidTimeRange, "endTime must be after startTime")
	}
	merged.DurationMinutes = merged.EndMinute - merged.StartMinute
	if merged.DurationMinutes > 600 {
		return nil, appErrors.Clone(appErrors.ErrInvalidDuration, fmt.Sprintf("duration %d outside 1-600 minutes", merged.DurationMinutes))
	}
	return &merged, nil
}

func (s *BookingService) validateReferences(ctx context.Context, booking *models.Booking) error {
	if _, err := s.rooms.FindByID(ctx, booking.RoomID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrInvalidReference, fmt.Sprintf("room %d does not exist", booking.RoomID))
		}
		return appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to load room")
	}

	if s.refs == nil {
		return nil
	}
	checks := []struct {
		name string
		id   *int64
		fn   func(context.Context, int64) (bool, error)
	}{
		{name: "course", id: &booking.CourseID, fn: s.refs.CourseExists},
		{name: "term", id: booking.TermID, fn: s.refs.TermExists},
		{name: "section", id: booking.SectionID, fn: s.refs.SectionExists},
		{name: "group", id: booking.GroupID, fn: s.refs.GroupExists},
	}
	for _, check := range checks {
		if check.id == nil {
			continue
		}
		found, err := check.fn(ctx, *check.id)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, fmt.Sprintf("failed to verify %s reference", check.name))
		}
		if !found {
			return appErrors.Clone(appErrors.ErrInvalidReference, fmt.Sprintf("%s %d does not exist", check.name, *check.id))
		}
	}
	return nil
}

func conflictError(conflict *models.BookingConflict) error {
	domainErr := &models.BookingConflictError{
		Message: fmt.Sprintf("room %d already booked on day %d between %s and %s",
			conflict.RoomID, conflict.DayOfWeek,
			clock.FormatMinutes(conflict.StartMinute), clock.FormatMinutes(conflict.EndMinute)),
		Conflict: *conflict,
	}
	return appErrors.Wrap(domainErr, appErrors.ErrRoomSlotConflict.Code, appErrors.ErrRoomSlotConflict.Status, domainErr.Message)
}
