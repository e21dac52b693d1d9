package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/siakad-go/room-booking-api/internal/dto"
	"github.com/siakad-go/room-booking-api/internal/service"
	appErrors "github.com/siakad-go/room-booking-api/pkg/errors"
	"github.com/siakad-go/room-booking-api/pkg/response"
)

// SchedulerHandler exposes auto-scheduler endpoints.
type SchedulerHandler struct {
	service *service.SchedulerService
}

// NewSchedulerHandler constructs a scheduler handler.
func NewSchedulerHandler(svc *service.SchedulerService) *SchedulerHandler {
	return &SchedulerHandler{service: svc}
}

// Suggest godoc
// @Summary Suggest a schedule
// @Description Propose one conflict-free placement per course using first-fit; nothing is persisted
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param payload body dto.SuggestScheduleRequest true "Suggestion payload"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /scheduler/suggest [post]
func (h *SchedulerHandler) Suggest(c *gin.Context) {
	var req dto.SuggestScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.Suggest(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
