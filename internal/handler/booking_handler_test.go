package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siakad-go/room-booking-api/internal/dto"
	"github.com/siakad-go/room-booking-api/internal/models"
	"github.com/siakad-go/room-booking-api/internal/service"
)

type bookingStoreMock struct {
	stored   map[int64]*models.Booking
	conflict *models.BookingConflict
	nextID   int64
}

func newBookingStoreMock() *bookingStoreMock {
	return &bookingStoreMock{stored: make(map[int64]*models.Booking), nextID: 100}
}

func (m *bookingStoreMock) List(_ context.Context, _ models.BookingFilter) ([]models.Booking, int, error) {
	var out []models.Booking
	for _, b := range m.stored {
		out = append(out, *b)
	}
	return out, len(out), nil
}

func (m *bookingStoreMock) FindByID(_ context.Context, id int64) (*models.Booking, error) {
	b, ok := m.stored[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *b
	return &clone, nil
}

func (m *bookingStoreMock) FindOverlapping(_ context.Context, _ int64, _, _, _ int, _ int64) (*models.Booking, error) {
	return nil, nil
}

func (m *bookingStoreMock) CreateChecked(_ context.Context, booking *models.Booking) (*models.BookingConflict, error) {
	if m.conflict != nil {
		return m.conflict, nil
	}
	m.nextID++
	booking.ID = m.nextID
	clone := *booking
	m.stored[booking.ID] = &clone
	return nil, nil
}

func (m *bookingStoreMock) UpdateChecked(_ context.Context, booking *models.Booking) (*models.BookingConflict, error) {
	if m.conflict != nil {
		return m.conflict, nil
	}
	clone := *booking
	m.stored[booking.ID] = &clone
	return nil, nil
}

func (m *bookingStoreMock) Delete(_ context.Context, id int64) error {
	delete(m.stored, id)
	return nil
}

type roomLookupMock struct{}

func (roomLookupMock) FindByID(_ context.Context, id int64) (*models.Room, error) {
	return &models.Room{ID: id, Name: "R"}, nil
}

type refsMock struct{}

func (refsMock) CourseExists(_ context.Context, _ int64) (bool, error)  { return true, nil }
func (refsMock) TermExists(_ context.Context, _ int64) (bool, error)    { return true, nil }
func (refsMock) SectionExists(_ context.Context, _ int64) (bool, error) { return true, nil }
func (refsMock) GroupExists(_ context.Context, _ int64) (bool, error)   { return true, nil }

func newBookingHandlerFixture(store *bookingStoreMock) *BookingHandler {
	svc := service.NewBookingService(store, roomLookupMock{}, refsMock{}, nil, nil, nil,
		service.BookingServiceConfig{FixedSlots: []string{"07:00-08:30", "08:30-10:00"}})
	return NewBookingHandler(svc)
}

func jsonRequest(t *testing.T, method, path string, payload interface{}) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req, err := http.NewRequest(method, path, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestBookingHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newBookingHandlerFixture(newBookingStoreMock())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/bookings", dto.BookingRow{
		CourseID: 10, RoomID: 1, DayOfWeek: 2, StartTime: "08:00", EndTime: "09:30",
	})

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope struct {
		Data models.Booking `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.NotZero(t, envelope.Data.ID)
	assert.Equal(t, 480, envelope.Data.StartMinute)
}

func TestBookingHandlerCreateConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := newBookingStoreMock()
	store.conflict = &models.BookingConflict{BookingID: 7, RoomID: 1, DayOfWeek: 2, StartMinute: 480, EndMinute: 570}
	handler := newBookingHandlerFixture(store)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/bookings", dto.BookingRow{
		CourseID: 10, RoomID: 1, DayOfWeek: 2, StartTime: "08:00", EndTime: "09:30",
	})

	handler.Create(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestBookingHandlerCreateInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newBookingHandlerFixture(newBookingStoreMock())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/bookings", bytes.NewReader([]byte(`not json`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingHandlerBulkReportsPerRowOutcomes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newBookingHandlerFixture(newBookingStoreMock())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/bookings/bulk", dto.CommitBookingsRequest{
		Rows: []dto.BookingRow{
			{CourseID: 10, RoomID: 1, DayOfWeek: 2, StartTime: "08:00", EndTime: "09:30"},
			{CourseID: 11, RoomID: 1, DayOfWeek: 2, StartTime: "09:00", EndTime: "08:00"},
		},
	})

	handler.Bulk(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data dto.CommitBookingsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.Data.Created)
	assert.Equal(t, 1, envelope.Data.Failed)
	require.Len(t, envelope.Data.Results, 2)
	assert.True(t, envelope.Data.Results[0].OK)
	assert.False(t, envelope.Data.Results[1].OK)
}

func TestBookingHandlerCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newBookingHandlerFixture(newBookingStoreMock())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/bookings/check", dto.CheckAvailabilityRequest{
		RoomID: 1, DayIndex: 2, StartTime: "08:00", EndTime: "09:30",
	})

	handler.Check(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data dto.CheckAvailabilityResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.Free)
}

func TestBookingHandlerGetRejectsBadID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newBookingHandlerFixture(newBookingStoreMock())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/bookings/abc", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	handler.Get(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingHandlerUpdateNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newBookingHandlerFixture(newBookingStoreMock())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPut, "/bookings/999", dto.UpdateBookingRequest{})
	c.Params = gin.Params{{Key: "id", Value: "999"}}

	handler.Update(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
