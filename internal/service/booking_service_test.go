package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siakad-go/room-booking-api/internal/dto"
	"github.com/siakad-go/room-booking-api/internal/models"
	appErrors "github.com/siakad-go/room-booking-api/pkg/errors"
)

type bookingRepoStub struct {
	stored      map[int64]*models.Booking
	conflict    *models.BookingConflict
	overlapping *models.Booking
	nextID      int64
	lastWrite   *models.Booking
	lastExclude int64
}

func newBookingRepoStub() *bookingRepoStub {
	return &bookingRepoStub{stored: make(map[int64]*models.Booking), nextID: 100}
}

func (s *bookingRepoStub) List(_ context.Context, _ models.BookingFilter) ([]models.Booking, int, error) {
	var out []models.Booking
	for _, b := range s.stored {
		out = append(out, *b)
	}
	return out, len(out), nil
}

func (s *bookingRepoStub) FindByID(_ context.Context, id int64) (*models.Booking, error) {
	b, ok := s.stored[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *b
	return &clone, nil
}

func (s *bookingRepoStub) FindOverlapping(_ context.Context, _ int64, _, _, _ int, excludeID int64) (*models.Booking, error) {
	s.lastExclude = excludeID
	if s.overlapping != nil && s.overlapping.ID != excludeID {
		clone := *s.overlapping
		return &clone, nil
	}
	return nil, nil
}

func (s *bookingRepoStub) CreateChecked(_ context.Context, booking *models.Booking) (*models.BookingConflict, error) {
	if s.conflict != nil {
		return s.conflict, nil
	}
	for _, existing := range s.stored {
		if existing.RoomID == booking.RoomID && existing.DayOfWeek == booking.DayOfWeek &&
			existing.StartMinute < booking.EndMinute && booking.StartMinute < existing.EndMinute {
			return &models.BookingConflict{
				BookingID:   existing.ID,
				RoomID:      existing.RoomID,
				DayOfWeek:   existing.DayOfWeek,
				StartMinute: existing.StartMinute,
				EndMinute:   existing.EndMinute,
			}, nil
		}
	}
	s.nextID++
	booking.ID = s.nextID
	clone := *booking
	s.stored[booking.ID] = &clone
	s.lastWrite = &clone
	return nil, nil
}

func (s *bookingRepoStub) UpdateChecked(_ context.Context, booking *models.Booking) (*models.BookingConflict, error) {
	if s.conflict != nil {
		return s.conflict, nil
	}
	clone := *booking
	s.stored[booking.ID] = &clone
	s.lastWrite = &clone
	return nil, nil
}

func (s *bookingRepoStub) Delete(_ context.Context, id int64) error {
	delete(s.stored, id)
	return nil
}

type roomFinderStub struct {
	missing map[int64]bool
}

func (s *roomFinderStub) FindByID(_ context.Context, id int64) (*models.Room, error) {
	if s.missing[id] {
		return nil, sql.ErrNoRows
	}
	return &models.Room{ID: id, Name: "R"}, nil
}

type refCheckerStub struct {
	missingCourses map[int64]bool
	missingTerms   map[int64]bool
}

func (s *refCheckerStub) CourseExists(_ context.Context, id int64) (bool, error) {
	return !s.missingCourses[id], nil
}

func (s *refCheckerStub) TermExists(_ context.Context, id int64) (bool, error) {
	return !s.missingTerms[id], nil
}

func (s *refCheckerStub) SectionExists(_ context.Context, _ int64) (bool, error) { return true, nil }
func (s *refCheckerStub) GroupExists(_ context.Context, _ int64) (bool, error)   { return true, nil }

var testFixedSlots = []string{"07:00-08:30", "08:30-10:00", "10:15-11:45"}

func newBookingFixture(repo *bookingRepoStub, rooms *roomFinderStub, refs *refCheckerStub) *BookingService {
	if rooms == nil {
		rooms = &roomFinderStub{}
	}
	if refs == nil {
		refs = &refCheckerStub{}
	}
	return NewBookingService(repo, rooms, refs, nil, nil, nil, BookingServiceConfig{FixedSlots: testFixedSlots})
}

func validRow() dto.BookingRow {
	return dto.BookingRow{
		CourseID:  10,
		RoomID:    1,
		DayOfWeek: 2,
		StartTime: "08:00",
		EndTime:   "09:30",
	}
}

func TestBookingCreateSuccess(t *testing.T) {
	repo := newBookingRepoStub()
	svc := newBookingFixture(repo, nil, nil)

	booking, err := svc.Create(context.Background(), validRow())
	require.NoError(t, err)
	assert.NotZero(t, booking.ID)
	assert.Equal(t, 480, booking.StartMinute)
	assert.Equal(t, 570, booking.EndMinute)
	assert.Equal(t, 90, booking.DurationMinutes, "duration derives from the interval")
}

func TestBookingCreateConflict(t *testing.T) {
	repo := newBookingRepoStub()
	repo.conflict = &models.BookingConflict{BookingID: 7, RoomID: 1, DayOfWeek: 2, StartMinute: 480, EndMinute: 570}
	svc := newBookingFixture(repo, nil, nil)

	_, err := svc.Create(context.Background(), validRow())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrRoomSlotConflict.Code, appErr.Code)
	assert.Equal(t, 409, appErr.Status)

	var conflictErr *models.BookingConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, int64(7), conflictErr.Conflict.BookingID)
}

func TestBookingCreateRejectsBadInput(t *testing.T) {
	svc := newBookingFixture(newBookingRepoStub(), nil, nil)

	cases := []struct {
		name   string
		mutate func(*dto.BookingRow)
		code   string
	}{
		{"malformed time", func(r *dto.BookingRow) { r.StartTime = "morning" }, appErrors.ErrInvalidTimeFormat.Code},
		{"inverted interval", func(r *dto.BookingRow) { r.StartTime = "10:00"; r.EndTime = "09:00" }, appErrors.ErrInvalidTimeRange.Code},
		{"zero-length interval", func(r *dto.BookingRow) { r.EndTime = r.StartTime }, appErrors.ErrInvalidTimeRange.Code},
		{"duration over cap", func(r *dto.BookingRow) { r.StartTime = "07:00"; r.EndTime = "17:30" }, appErrors.ErrInvalidDuration.Code},
		{"missing course", func(r *dto.BookingRow) { r.CourseID = 0 }, appErrors.ErrValidation.Code},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			row := validRow()
			tc.mutate(&row)
			_, err := svc.Create(context.Background(), row)
			require.Error(t, err)
			assert.Equal(t, tc.code, appErrors.FromError(err).Code)
		})
	}
}

func TestBookingCreateUnknownReferences(t *testing.T) {
	t.Run("unknown room", func(t *testing.T) {
		svc := newBookingFixture(newBookingRepoStub(), &roomFinderStub{missing: map[int64]bool{1: true}}, nil)
		_, err := svc.Create(context.Background(), validRow())
		require.Error(t, err)
		appErr := appErrors.FromError(err)
		assert.Equal(t, appErrors.ErrInvalidReference.Code, appErr.Code)
		assert.Equal(t, 422, appErr.Status)
	})

	t.Run("unknown term", func(t *testing.T) {
		svc := newBookingFixture(newBookingRepoStub(), nil, &refCheckerStub{missingTerms: map[int64]bool{5: true}})
		row := validRow()
		termID := int64(5)
		row.TermID = &termID
		_, err := svc.Create(context.Background(), row)
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrInvalidReference.Code, appErrors.FromError(err).Code)
	})
}

func TestBookingCommitRowsAreIndependent(t *testing.T) {
	repo := newBookingRepoStub()
	repo.overlapping = &models.Booking{ID: 1, RoomID: 1, DayOfWeek: 2, StartMinute: 480, EndMinute: 570}
	svc := newBookingFixture(repo, nil, nil)

	badRow := validRow()
	badRow.EndTime = "08:00"
	badRow.StartTime = "09:00"

	laterRow := validRow()
	laterRow.StartTime = "10:00"
	laterRow.EndTime = "11:30"

	resp, err := svc.Commit(context.Background(), dto.CommitBookingsRequest{
		Rows: []dto.BookingRow{validRow(), badRow, laterRow},
	})
	require.NoError(t, err, "a failing row must not abort the batch")
	require.Len(t, resp.Results, 3)

	assert.True(t, resp.Results[0].OK)
	require.NotNil(t, resp.Results[0].BookingID)

	assert.False(t, resp.Results[1].OK)
	assert.Nil(t, resp.Results[1].BookingID)
	assert.NotEmpty(t, resp.Results[1].Reason)

	assert.True(t, resp.Results[2].OK)
	assert.Equal(t, 2, resp.Created)
	assert.Equal(t, 1, resp.Failed)
}

func TestBookingCommitDuplicateRowsRaceForOneSlot(t *testing.T) {
	repo := newBookingRepoStub()
	svc := newBookingFixture(repo, nil, nil)

	row := validRow()
	resp, err := svc.Commit(context.Background(), dto.CommitBookingsRequest{
		Rows: []dto.BookingRow{row, row},
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)

	assert.True(t, resp.Results[0].OK)
	require.NotNil(t, resp.Results[0].BookingID)
	assert.False(t, resp.Results[1].OK, "the second identical row must observe the first row's booking")
	assert.Contains(t, resp.Results[1].Reason, "already booked")
	assert.Equal(t, 1, resp.Created)
	assert.Equal(t, 1, resp.Failed)
}

func TestBookingCommitReportsConflictReason(t *testing.T) {
	repo := newBookingRepoStub()
	repo.conflict = &models.BookingConflict{BookingID: 7, RoomID: 1, DayOfWeek: 2, StartMinute: 480, EndMinute: 570}
	svc := newBookingFixture(repo, nil, nil)

	resp, err := svc.Commit(context.Background(), dto.CommitBookingsRequest{Rows: []dto.BookingRow{validRow()}})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.False(t, resp.Results[0].OK)
	assert.Contains(t, resp.Results[0].Reason, "already booked")
	assert.Equal(t, 1, resp.Failed)
}

func TestBookingUpdateMergesPartialFields(t *testing.T) {
	repo := newBookingRepoStub()
	repo.stored[50] = &models.Booking{
		ID: 50, CourseID: 10, RoomID: 1, DayOfWeek: 2,
		StartMinute: 480, EndMinute: 570, DurationMinutes: 90,
	}
	svc := newBookingFixture(repo, nil, nil)

	newStart := "10:00"
	newEnd := "11:00"
	updated, err := svc.Update(context.Background(), 50, dto.UpdateBookingRequest{
		StartTime: &newStart,
		EndTime:   &newEnd,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.RoomID, "omitted fields keep stored values")
	assert.Equal(t, 600, updated.StartMinute)
	assert.Equal(t, 660, updated.EndMinute)
	assert.Equal(t, 60, updated.DurationMinutes)
	assert.Equal(t, int64(50), repo.lastWrite.ID, "write targets the existing row")
}

func TestBookingUpdateNotFound(t *testing.T) {
	svc := newBookingFixture(newBookingRepoStub(), nil, nil)

	_, err := svc.Update(context.Background(), 999, dto.UpdateBookingRequest{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrBookingNotFound.Code, appErr.Code)
	assert.Equal(t, 404, appErr.Status)
}

func TestBookingUpdateConflict(t *testing.T) {
	repo := newBookingRepoStub()
	repo.stored[50] = &models.Booking{
		ID: 50, CourseID: 10, RoomID: 1, DayOfWeek: 2,
		StartMinute: 480, EndMinute: 570, DurationMinutes: 90,
	}
	repo.conflict = &models.BookingConflict{BookingID: 60, RoomID: 1, DayOfWeek: 2, StartMinute: 600, EndMinute: 690}
	svc := newBookingFixture(repo, nil, nil)

	newStart := "10:00"
	newEnd := "11:30"
	_, err := svc.Update(context.Background(), 50, dto.UpdateBookingRequest{StartTime: &newStart, EndTime: &newEnd})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrRoomSlotConflict.Code, appErrors.FromError(err).Code)
}

func TestBookingDelete(t *testing.T) {
	repo := newBookingRepoStub()
	repo.stored[50] = &models.Booking{ID: 50, RoomID: 1}
	svc := newBookingFixture(repo, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), 50))
	assert.NotContains(t, repo.stored, int64(50))

	err := svc.Delete(context.Background(), 50)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrBookingNotFound.Code, appErrors.FromError(err).Code)
}

func TestBookingCheckFree(t *testing.T) {
	svc := newBookingFixture(newBookingRepoStub(), nil, nil)

	verdict, err := svc.Check(context.Background(), dto.CheckAvailabilityRequest{
		RoomID: 1, DayIndex: 2, StartTime: "08:00", EndTime: "09:30",
	})
	require.NoError(t, err)
	assert.True(t, verdict.Free)
	assert.Nil(t, verdict.Conflict)
}

func TestBookingCheckBlocked(t *testing.T) {
	repo := newBookingRepoStub()
	repo.overlapping = &models.Booking{ID: 9, RoomID: 1, DayOfWeek: 2, StartMinute: 510, EndMinute: 600}
	svc := newBookingFixture(repo, nil, nil)

	verdict, err := svc.Check(context.Background(), dto.CheckAvailabilityRequest{
		RoomID: 1, DayIndex: 2, StartTime: "08:00", EndTime: "09:30",
	})
	require.NoError(t, err)
	assert.False(t, verdict.Free)
	require.NotNil(t, verdict.Conflict)
	assert.Equal(t, int64(9), verdict.Conflict.BookingID)
	assert.Equal(t, "08:30", verdict.Conflict.Start)
	assert.Equal(t, "10:00", verdict.Conflict.End)
}

func TestBookingCheckFixedSlot(t *testing.T) {
	repo := newBookingRepoStub()
	svc := newBookingFixture(repo, nil, nil)

	slotID := 2
	verdict, err := svc.Check(context.Background(), dto.CheckAvailabilityRequest{
		RoomID: 1, DayIndex: 2, TimeSlotID: &slotID,
	})
	require.NoError(t, err)
	assert.True(t, verdict.Free)

	unknown := 9
	_, err = svc.Check(context.Background(), dto.CheckAvailabilityRequest{
		RoomID: 1, DayIndex: 2, TimeSlotID: &unknown,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestBookingCheckRequiresInterval(t *testing.T) {
	svc := newBookingFixture(newBookingRepoStub(), nil, nil)

	_, err := svc.Check(context.Background(), dto.CheckAvailabilityRequest{RoomID: 1, DayIndex: 2})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestBookingCheckExcludesOwnBooking(t *testing.T) {
	repo := newBookingRepoStub()
	repo.overlapping = &models.Booking{ID: 9, RoomID: 1, DayOfWeek: 2, StartMinute: 480, EndMinute: 570}
	svc := newBookingFixture(repo, nil, nil)

	excludeID := int64(9)
	verdict, err := svc.Check(context.Background(), dto.CheckAvailabilityRequest{
		RoomID: 1, DayIndex: 2, StartTime: "08:00", EndTime: "09:30", ExcludeBookingID: &excludeID,
	})
	require.NoError(t, err)
	assert.True(t, verdict.Free, "a booking must not block its own move")
	assert.Equal(t, int64(9), repo.lastExclude)
}
