package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable/internal/service"
	"github.com/noah-isme/sma-timetable/internal/validation"
	"github.com/noah-isme/sma-timetable/pkg/response"
)

// ScheduleHandler exposes the assignment engine.
type ScheduleHandler struct {
	service *service.ScheduleService
}

// NewScheduleHandler constructs a schedule handler.
func NewScheduleHandler(svc *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

// CreateForDivision godoc
// @Summary Assign a division slot
// @Description Places a subject and an optional teacher in a weekday slot of the division. The shift defaults to the division's shift.
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path int true "Division ID"
// @Param payload body service.CreateForDivisionRequest true "Slot payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /divisions/{id}/schedules [post]
func (h *ScheduleHandler) CreateForDivision(c *gin.Context) {
	if _, ok := pathID(c, "id"); !ok {
		return
	}
	var req service.CreateForDivisionRequest
	if !bindJSON(c, &req) {
		return
	}
	req.DivisionID = validation.Raw(c.Param("id"))

	schedule, err := h.service.CreateForDivision(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, schedule)
}

// ListForDivision godoc
// @Summary List the timetable of a division
// @Tags Schedules
// @Produce json
// @Param id path int true "Division ID"
// @Success 200 {object} response.Envelope
// @Router /divisions/{id}/schedules [get]
func (h *ScheduleHandler) ListForDivision(c *gin.Context) {
	listBy(c, h.service.ListForDivision)
}

// CreateForTeacher godoc
// @Summary Assign a teacher slot
// @Description Places the teacher in a shift slot, optionally inside a division.
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path int true "Teacher ID"
// @Param payload body service.CreateForTeacherRequest true "Slot payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /teachers/{id}/schedules [post]
func (h *ScheduleHandler) CreateForTeacher(c *gin.Context) {
	if _, ok := pathID(c, "id"); !ok {
		return
	}
	var req service.CreateForTeacherRequest
	if !bindJSON(c, &req) {
		return
	}
	req.TeacherID = validation.Raw(c.Param("id"))

	schedule, err := h.service.CreateForTeacher(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, schedule)
}

// ListForTeacher godoc
// @Summary List the timetable of a teacher in a shift
// @Tags Schedules
// @Produce json
// @Param id path int true "Teacher ID"
// @Param shiftId query int true "Shift ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/schedules [get]
func (h *ScheduleHandler) ListForTeacher(c *gin.Context) {
	teacherID, ok := pathID(c, "id")
	if !ok {
		return
	}
	shiftID, ok := queryID(c, "shiftId")
	if !ok {
		return
	}
	schedules, err := h.service.ListForTeacher(c.Request.Context(), teacherID, shiftID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules)
}

// Get godoc
// @Summary Get schedule by id
// @Tags Schedules
// @Produce json
// @Param id path int true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedules/{id} [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	schedule, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule)
}

// Delete godoc
// @Summary Delete schedule
// @Description Removes the assignment and gives its hour back to the subject and allocation counters.
// @Tags Schedules
// @Param id path int true "Schedule ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /schedules/{id} [delete]
func (h *ScheduleHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
