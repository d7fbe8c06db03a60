package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable/internal/models"
	"github.com/noah-isme/sma-timetable/internal/service"
	"github.com/noah-isme/sma-timetable/internal/validation"
	"github.com/noah-isme/sma-timetable/pkg/response"
)

// TeacherHandler handles teacher endpoints, including shift membership and subject allocations.
type TeacherHandler struct {
	namedHandler[models.Teacher]
	service *service.TeacherService
}

// NewTeacherHandler constructs a teacher handler.
func NewTeacherHandler(svc *service.TeacherService) *TeacherHandler {
	return &TeacherHandler{namedHandler: namedHandler[models.Teacher]{catalog: svc}, service: svc}
}

type teacherShiftRequest struct {
	ShiftID validation.Raw `json:"shift_id"`
}

// AssignShift godoc
// @Summary Assign teacher to a shift
// @Tags Teachers
// @Accept json
// @Param id path int true "Teacher ID"
// @Param payload body teacherShiftRequest true "Shift"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /teachers/{id}/shifts [post]
func (h *TeacherHandler) AssignShift(c *gin.Context) {
	teacherID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req teacherShiftRequest
	if !bindJSON(c, &req) {
		return
	}
	shiftID, err := validation.RequireID(req.ShiftID.String(), "shift_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.AssignShift(c.Request.Context(), teacherID, shiftID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// RemoveShift godoc
// @Summary Remove teacher from a shift
// @Tags Teachers
// @Param id path int true "Teacher ID"
// @Param shiftId path int true "Shift ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /teachers/{id}/shifts/{shiftId} [delete]
func (h *TeacherHandler) RemoveShift(c *gin.Context) {
	unlink(c, "shiftId", h.service.RemoveShift)
}

// ListShifts godoc
// @Summary List the shifts of a teacher
// @Tags Teachers
// @Produce json
// @Param id path int true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/shifts [get]
func (h *TeacherHandler) ListShifts(c *gin.Context) {
	listBy(c, h.service.ListShifts)
}

// RegisterSubject godoc
// @Summary Register teacher for a subject
// @Tags Teachers
// @Accept json
// @Produce json
// @Param id path int true "Teacher ID"
// @Param payload body service.AllocationRequest true "Allocation"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /teachers/{id}/subjects [post]
func (h *TeacherHandler) RegisterSubject(c *gin.Context) {
	teacherID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.AllocationRequest
	if !bindJSON(c, &req) {
		return
	}
	allocation, err := h.service.RegisterSubject(c.Request.Context(), teacherID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, allocation)
}

// UpdateSubject godoc
// @Summary Change the base hours of an allocation
// @Tags Teachers
// @Accept json
// @Produce json
// @Param id path int true "Teacher ID"
// @Param subjectId path int true "Subject ID"
// @Param payload body service.AllocationRequest true "Allocation"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/subjects/{subjectId} [put]
func (h *TeacherHandler) UpdateSubject(c *gin.Context) {
	teacherID, ok := pathID(c, "id")
	if !ok {
		return
	}
	subjectID, ok := pathID(c, "subjectId")
	if !ok {
		return
	}
	var req service.AllocationRequest
	if !bindJSON(c, &req) {
		return
	}
	allocation, err := h.service.UpdateAllocationBase(c.Request.Context(), teacherID, subjectID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, allocation)
}

// RemoveSubject godoc
// @Summary Remove an allocation
// @Tags Teachers
// @Param id path int true "Teacher ID"
// @Param subjectId path int true "Subject ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /teachers/{id}/subjects/{subjectId} [delete]
func (h *TeacherHandler) RemoveSubject(c *gin.Context) {
	unlink(c, "subjectId", h.service.RemoveSubject)
}

// ListSubjects godoc
// @Summary List the allocations of a teacher
// @Tags Teachers
// @Produce json
// @Param id path int true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/subjects [get]
func (h *TeacherHandler) ListSubjects(c *gin.Context) {
	listBy(c, h.service.ListAllocations)
}
