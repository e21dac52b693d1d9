package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/siakad-go/room-booking-api/internal/dto"
	"github.com/siakad-go/room-booking-api/internal/models"
	"github.com/siakad-go/room-booking-api/internal/service"
	appErrors "github.com/siakad-go/room-booking-api/pkg/errors"
	"github.com/siakad-go/room-booking-api/pkg/response"
)

// BookingHandler exposes booking endpoints.
type BookingHandler struct {
	service *service.BookingService
}

// NewBookingHandler constructs a booking handler.
func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	return &BookingHandler{service: svc}
}

// List godoc
// @Summary List bookings
// @Description List bookings with filters
// @Tags Bookings
// @Produce json
// @Param roomId query int false "Filter by room"
// @Param courseId query int false "Filter by course"
// @Param termId query int false "Filter by term"
// @Param dayOfWeek query int false "Filter by day of week (0-6)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	var filter models.BookingFilter
	if roomID, err := strconv.ParseInt(c.Query("roomId"), 10, 64); err == nil {
		filter.RoomID = &roomID
	}
	if courseID, err := strconv.ParseInt(c.Query("courseId"), 10, 64); err == nil {
		filter.CourseID = &courseID
	}
	if termID, err := strconv.ParseInt(c.Query("termId"), 10, 64); err == nil {
		filter.TermID = &termID
	}
	if day, err := strconv.Atoi(c.Query("dayOfWeek")); err == nil {
		filter.DayOfWeek = &day
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	bookings, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bookings, pagination)
}

// Get godoc
// @Summary Get booking
// @Tags Bookings
// @Produce json
// @Param id path int true "Booking ID"
// @Success 200 {object} response.Envelope
// @Router /bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	booking, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, booking, nil)
}

// Create godoc
// @Summary Create booking
// @Description Commit a single booking; the slot is re-checked against live state
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body dto.BookingRow true "Booking payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	var row dto.BookingRow
	if err := c.ShouldBindJSON(&row); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	booking, err := h.service.Create(c.Request.Context(), row)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, booking)
}

// Bulk godoc
// @Summary Commit bookings in bulk
// @Description Commit a batch of rows; rows succeed or fail independently
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body dto.CommitBookingsRequest true "Batch payload"
// @Success 200 {object} response.Envelope
// @Router /bookings/bulk [post]
func (h *BookingHandler) Bulk(c *gin.Context) {
	var req dto.CommitBookingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.Commit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Update godoc
// @Summary Update booking
// @Description Move or edit a booking; the new slot is re-checked excluding the booking itself
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path int true "Booking ID"
// @Param payload body dto.UpdateBookingRequest true "Booking payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings/{id} [put]
func (h *BookingHandler) Update(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	booking, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, booking, nil)
}

// Delete godoc
// @Summary Delete booking
// @Tags Bookings
// @Produce json
// @Param id path int true "Booking ID"
// @Success 204
// @Router /bookings/{id} [delete]
func (h *BookingHandler) Delete(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Check godoc
// @Summary Check room availability
// @Description Advisory availability check; commits still re-validate
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body dto.CheckAvailabilityRequest true "Availability payload"
// @Success 200 {object} response.Envelope
// @Router /bookings/check [post]
func (h *BookingHandler) Check(c *gin.Context) {
	var req dto.CheckAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	verdict, err := h.service.Check(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, verdict, nil)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "id must be a positive integer")
	}
	return id, nil
}
