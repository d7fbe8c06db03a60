package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable/internal/service"
	"github.com/noah-isme/sma-timetable/pkg/response"
)

// TimetableHandler streams timetable grids as files.
type TimetableHandler struct {
	service *service.ExportService
}

// NewTimetableHandler constructs a timetable export handler.
func NewTimetableHandler(svc *service.ExportService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// Division godoc
// @Summary Export the timetable of a division
// @Tags Timetables
// @Produce text/csv
// @Produce application/pdf
// @Param id path int true "Division ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /divisions/{id}/timetable [get]
func (h *TimetableHandler) Division(c *gin.Context) {
	divisionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	file, err := h.service.Division(c.Request.Context(), divisionID, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

// Teacher godoc
// @Summary Export the timetable of a teacher in a shift
// @Tags Timetables
// @Produce text/csv
// @Produce application/pdf
// @Param id path int true "Teacher ID"
// @Param shiftId query int true "Shift ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /teachers/{id}/timetable [get]
func (h *TimetableHandler) Teacher(c *gin.Context) {
	teacherID, ok := pathID(c, "id")
	if !ok {
		return
	}
	shiftID, ok := queryID(c, "shiftId")
	if !ok {
		return
	}
	file, err := h.service.Teacher(c.Request.Context(), teacherID, shiftID, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}
