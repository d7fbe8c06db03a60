package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable/internal/models"
	"github.com/noah-isme/sma-timetable/internal/service"
	"github.com/noah-isme/sma-timetable/pkg/response"
)

// DivisionHandler handles class section endpoints.
type DivisionHandler struct {
	service *service.DivisionService
}

// NewDivisionHandler constructs a division handler.
func NewDivisionHandler(svc *service.DivisionService) *DivisionHandler {
	return &DivisionHandler{service: svc}
}

// List godoc
// @Summary List divisions
// @Tags Divisions
// @Produce json
// @Param shiftId query int false "Shift ID"
// @Param planId query int false "Plan ID"
// @Param cycleId query int false "Cycle ID"
// @Success 200 {object} response.Envelope
// @Router /divisions [get]
func (h *DivisionHandler) List(c *gin.Context) {
	var filter models.DivisionFilter
	var ok bool
	if filter.ShiftID, ok = optionalQueryID(c, "shiftId"); !ok {
		return
	}
	if filter.PlanID, ok = optionalQueryID(c, "planId"); !ok {
		return
	}
	if filter.CycleID, ok = optionalQueryID(c, "cycleId"); !ok {
		return
	}
	divisions, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, divisions)
}

// Get godoc
// @Summary Get division by id
// @Tags Divisions
// @Produce json
// @Param id path int true "Division ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /divisions/{id} [get]
func (h *DivisionHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	division, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, division)
}

// Create godoc
// @Summary Create division
// @Description The plan must be offered in the shift and the cycle must belong to the plan.
// @Tags Divisions
// @Accept json
// @Produce json
// @Param payload body service.DivisionRequest true "Division payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /divisions [post]
func (h *DivisionHandler) Create(c *gin.Context) {
	var req service.DivisionRequest
	if !bindJSON(c, &req) {
		return
	}
	division, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, division)
}

// Update godoc
// @Summary Rename division
// @Tags Divisions
// @Accept json
// @Produce json
// @Param id path int true "Division ID"
// @Param payload body service.NameRequest true "Name"
// @Success 200 {object} response.Envelope
// @Router /divisions/{id} [put]
func (h *DivisionHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.NameRequest
	if !bindJSON(c, &req) {
		return
	}
	division, err := h.service.Rename(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, division)
}

// Delete godoc
// @Summary Delete division
// @Tags Divisions
// @Param id path int true "Division ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /divisions/{id} [delete]
func (h *DivisionHandler) Delete(c *gin.Context) {
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
