package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable/internal/models"
	"github.com/noah-isme/sma-timetable/internal/service"
)

// PlanHandler handles study plan endpoints.
type PlanHandler struct {
	namedHandler[models.Plan]
	plans    *service.PlanService
	cycles   *service.CycleService
	subjects *service.SubjectService
}

// NewPlanHandler constructs a plan handler.
func NewPlanHandler(plans *service.PlanService, cycles *service.CycleService, subjects *service.SubjectService) *PlanHandler {
	return &PlanHandler{namedHandler: namedHandler[models.Plan]{catalog: plans}, plans: plans, cycles: cycles, subjects: subjects}
}

// LinkSubject godoc
// @Summary Add a subject to a plan
// @Tags Plans
// @Accept json
// @Param id path int true "Plan ID"
// @Param payload body service.LinkRequest true "Subject"
// @Success 204
// @Router /plans/{id}/subjects [post]
func (h *PlanHandler) LinkSubject(c *gin.Context) {
	link(c, h.plans.LinkSubject)
}

// UnlinkSubject godoc
// @Summary Remove a subject from a plan
// @Tags Plans
// @Param id path int true "Plan ID"
// @Param subjectId path int true "Subject ID"
// @Success 204
// @Router /plans/{id}/subjects/{subjectId} [delete]
func (h *PlanHandler) UnlinkSubject(c *gin.Context) {
	unlink(c, "subjectId", h.plans.UnlinkSubject)
}

// ListSubjects godoc
// @Summary List the subjects of a plan
// @Tags Plans
// @Produce json
// @Param id path int true "Plan ID"
// @Success 200 {object} response.Envelope
// @Router /plans/{id}/subjects [get]
func (h *PlanHandler) ListSubjects(c *gin.Context) {
	listBy(c, h.subjects.ListByPlan)
}

// LinkCycle godoc
// @Summary Offer a cycle under a plan
// @Tags Plans
// @Accept json
// @Param id path int true "Plan ID"
// @Param payload body service.LinkRequest true "Cycle"
// @Success 204
// @Router /plans/{id}/cycles [post]
func (h *PlanHandler) LinkCycle(c *gin.Context) {
	link(c, h.plans.LinkCycle)
}

// UnlinkCycle godoc
// @Summary Withdraw a cycle from a plan
// @Tags Plans
// @Param id path int true "Plan ID"
// @Param cycleId path int true "Cycle ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /plans/{id}/cycles/{cycleId} [delete]
func (h *PlanHandler) UnlinkCycle(c *gin.Context) {
	unlink(c, "cycleId", h.plans.UnlinkCycle)
}

// ListCycles godoc
// @Summary List the cycles of a plan
// @Tags Plans
// @Produce json
// @Param id path int true "Plan ID"
// @Success 200 {object} response.Envelope
// @Router /plans/{id}/cycles [get]
func (h *PlanHandler) ListCycles(c *gin.Context) {
	listBy(c, h.cycles.ListByPlan)
}

// CycleHandler handles cycle endpoints.
type CycleHandler struct {
	namedHandler[models.Cycle]
	cycles   *service.CycleService
	subjects *service.SubjectService
}

// NewCycleHandler constructs a cycle handler.
func NewCycleHandler(cycles *service.CycleService, subjects *service.SubjectService) *CycleHandler {
	return &CycleHandler{namedHandler: namedHandler[models.Cycle]{catalog: cycles}, cycles: cycles, subjects: subjects}
}

// LinkSubject godoc
// @Summary Record a subject obligation of a cycle
// @Tags Cycles
// @Accept json
// @Param id path int true "Cycle ID"
// @Param payload body service.LinkRequest true "Subject"
// @Success 204
// @Router /cycles/{id}/subjects [post]
func (h *CycleHandler) LinkSubject(c *gin.Context) {
	link(c, h.cycles.LinkSubject)
}

// UnlinkSubject godoc
// @Summary Remove a subject obligation
// @Tags Cycles
// @Param id path int true "Cycle ID"
// @Param subjectId path int true "Subject ID"
// @Success 204
// @Router /cycles/{id}/subjects/{subjectId} [delete]
func (h *CycleHandler) UnlinkSubject(c *gin.Context) {
	unlink(c, "subjectId", h.cycles.UnlinkSubject)
}

// ListSubjects godoc
// @Summary List the subject obligations of a cycle
// @Tags Cycles
// @Produce json
// @Param id path int true "Cycle ID"
// @Success 200 {object} response.Envelope
// @Router /cycles/{id}/subjects [get]
func (h *CycleHandler) ListSubjects(c *gin.Context) {
	listBy(c, h.subjects.ListByCycle)
}

// ShiftHandler handles shift endpoints.
type ShiftHandler struct {
	namedHandler[models.Shift]
	shifts *service.ShiftService
	plans  *service.PlanService
}

// NewShiftHandler constructs a shift handler.
func NewShiftHandler(shifts *service.ShiftService, plans *service.PlanService) *ShiftHandler {
	return &ShiftHandler{namedHandler: namedHandler[models.Shift]{catalog: shifts}, shifts: shifts, plans: plans}
}

// LinkPlan godoc
// @Summary Offer a plan in a shift
// @Tags Shifts
// @Accept json
// @Param id path int true "Shift ID"
// @Param payload body service.LinkRequest true "Plan"
// @Success 204
// @Router /shifts/{id}/plans [post]
func (h *ShiftHandler) LinkPlan(c *gin.Context) {
	link(c, h.shifts.LinkPlan)
}

// UnlinkPlan godoc
// @Summary Withdraw a plan from a shift
// @Tags Shifts
// @Param id path int true "Shift ID"
// @Param planId path int true "Plan ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /shifts/{id}/plans/{planId} [delete]
func (h *ShiftHandler) UnlinkPlan(c *gin.Context) {
	unlink(c, "planId", h.shifts.UnlinkPlan)
}

// ListPlans godoc
// @Summary List the plans offered in a shift
// @Tags Shifts
// @Produce json
// @Param id path int true "Shift ID"
// @Success 200 {object} response.Envelope
// @Router /shifts/{id}/plans [get]
func (h *ShiftHandler) ListPlans(c *gin.Context) {
	listBy(c, h.plans.ListByShift)
}
